package extract

import (
	"context"
	"database/sql"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/dialect"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

const KindExtractSequences migstep.Kind = "oracle.sequence.extract"

func init() {
	migstep.Register(KindExtractSequences, func(deps migstep.Deps) migstep.Step {
		return &sequenceStep{db: deps.OracleDB, cat: deps.Catalog}
	})
}

type sequenceStep struct {
	db  *sql.DB
	cat *catalog.Catalog
}

func (s *sequenceStep) Kind() migstep.Kind { return KindExtractSequences }

func (s *sequenceStep) Footprint() migstep.Footprint {
	return migstep.Footprint{Writes: []catalog.EntityKind{catalog.KindSequence}}
}

func (s *sequenceStep) Run(ctx context.Context, progress migstep.Progress) migstep.Result {
	var d dialect.Oracle
	q := d.SequenceMetadata()

	var sequences []*catalog.Sequence
	err := func() error {
		rows, err := s.db.QueryContext(ctx, q.ListSequences)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				owner, name  string
				min, max     int64
				increment    int64
				cache        int64
				cycle        string
				lastNumber   int64
			)
			if err := rows.Scan(&owner, &name, &min, &max, &increment, &cache, &cycle, &lastNumber); err != nil {
				return err
			}
			sequences = append(sequences, &catalog.Sequence{
				Name:      catalog.QualifiedName{Schema: owner, Name: name},
				Start:     lastNumber,
				Increment: increment,
				Min:       min,
				Max:       max,
				Cache:     cache,
				Cycle:     cycle == "Y",
			})
		}
		return rows.Err()
	}()
	if err != nil {
		return fail(s.Kind(), migerr.Metadata, "all_sequences", err)
	}

	s.cat.ReplaceSequences(sequences)
	progress(len(sequences), -1, "sequences extracted")
	return migstep.Result{Counts: map[string]int{"sequences": len(sequences)}}
}
