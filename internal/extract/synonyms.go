package extract

import (
	"context"
	"database/sql"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/dialect"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

const KindExtractSynonyms migstep.Kind = "oracle.synonym.extract"

func init() {
	migstep.Register(KindExtractSynonyms, func(deps migstep.Deps) migstep.Step {
		return &synonymStep{db: deps.OracleDB, cat: deps.Catalog}
	})
}

type synonymStep struct {
	db  *sql.DB
	cat *catalog.Catalog
}

func (s *synonymStep) Kind() migstep.Kind { return KindExtractSynonyms }

func (s *synonymStep) Footprint() migstep.Footprint {
	return migstep.Footprint{Writes: []catalog.EntityKind{catalog.KindSynonym}}
}

func (s *synonymStep) Run(ctx context.Context, progress migstep.Progress) migstep.Result {
	var d dialect.Oracle
	q := d.SynonymMetadata()

	var synonyms []*catalog.Synonym
	err := func() error {
		rows, err := s.db.QueryContext(ctx, q.ListSynonyms)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var owner, name, targetOwner, targetName string
			if err := rows.Scan(&owner, &name, &targetOwner, &targetName); err != nil {
				return err
			}
			synonyms = append(synonyms, &catalog.Synonym{
				Owner:  owner,
				Name:   name,
				Target: catalog.QualifiedName{Schema: targetOwner, Name: targetName},
			})
		}
		return rows.Err()
	}()
	if err != nil {
		return fail(s.Kind(), migerr.Metadata, "all_synonyms", err)
	}

	s.cat.ReplaceSynonyms(synonyms)
	progress(len(synonyms), -1, "synonyms extracted")
	return migstep.Result{Counts: map[string]int{"synonyms": len(synonyms)}}
}
