package transfer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/ddl"
	"github.com/Sayiza/orapgsync-sub005/internal/migerr"
	"github.com/Sayiza/orapgsync-sub005/internal/migstep"
)

const KindTransferData migstep.Kind = "postgres.data.transfer"

func init() {
	migstep.Register(KindTransferData, func(deps migstep.Deps) migstep.Step {
		return &dataTransferStep{
			cat:      deps.Catalog,
			producer: NewProducer(deps.OracleDB, deps.Catalog),
			consumer: NewConsumer(deps.PostgresDB),
			pool:     deps.Pool,
		}
	})
}

type dataTransferStep struct {
	cat      *catalog.Catalog
	producer *Producer
	consumer *Consumer
	pool     migstep.Pool
}

func (s *dataTransferStep) Kind() migstep.Kind { return KindTransferData }

func (s *dataTransferStep) Footprint() migstep.Footprint {
	return migstep.Footprint{
		Reads:  []catalog.EntityKind{catalog.KindTable, catalog.KindRowCount},
		Writes: []catalog.EntityKind{},
	}
}

// poolWeight is the acquisition cost charged per concurrent table
// transfer; one unit approximates one worker slot (spec.md §5's single
// shared pool, sized in internal/transfer.NewPool).
const poolWeight = 1

func (s *dataTransferStep) Run(ctx context.Context, progress migstep.Progress) migstep.Result {
	tables := s.cat.Tables()
	counts := map[string]int{}

	for i, t := range tables {
		if err := s.pool.Acquire(ctx, poolWeight); err != nil {
			return migstep.Result{Err: migerr.Wrap(migerr.Cancellation, t.Name.String(), "acquiring transfer slot", err)}
		}

		n, err := s.transferTable(ctx, t)
		s.pool.Release(poolWeight)
		if err != nil {
			return migstep.Result{Err: migerr.Wrap(migerr.Data, t.Name.String(), "table transfer failed", err)}
		}
		counts[t.Name.String()] = int(n)

		progress(i+1, len(tables), fmt.Sprintf("transferred %s (%d rows)", t.Name.String(), n))
	}

	return migstep.Result{Counts: map[string]int{"tables_transferred": len(tables)}}
}

func (s *dataTransferStep) transferTable(ctx context.Context, t *catalog.Table) (int64, error) {
	expected, known := s.cat.RowCount(t.Name)
	if !known {
		expected = -1
	}

	colNames := make([]string, len(t.Columns))
	query := selectQuery(t)
	for i, c := range t.Columns {
		colNames[i] = ddl.QuoteIdent(c.Name)
	}

	pr, pw := NewBoundedPipe(4 << 20) // 4 MiB in-flight cap

	errCh := make(chan error, 1)
	go func() {
		_, err := s.producer.Stream(ctx, query, t.Columns, pw)
		pw.Close()
		errCh <- err
	}()

	loaded, loadErr := s.consumer.Load(ctx, t.Name.Schema, t.Name.Name, colNames, pr, expected)
	pr.Close()

	if streamErr := <-errCh; streamErr != nil && streamErr != sql.ErrNoRows {
		return loaded, streamErr
	}
	return loaded, loadErr
}

func selectQuery(t *catalog.Table) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.Name
	}
	q := "SELECT "
	for i, c := range cols {
		if i > 0 {
			q += ", "
		}
		q += c
	}
	return q + fmt.Sprintf(` FROM %s.%s`, t.Name.Schema, t.Name.Name)
}
