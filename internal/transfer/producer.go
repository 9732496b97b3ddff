package transfer

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/serialize"
)

// Producer streams one Oracle table's rows into w as PostgreSQL COPY
// TEXT format, one line per row, tab-separated (the format pq.CopyIn's
// consumer side expects via its Scan-based Exec loop, see consumer.go).
// godror's array/prefetch size is expected to already be tuned on the
// *sql.DB handed in (via godror.FetchRowCount in the connector options
// built at startup) — this package does not reconfigure it per table.
type Producer struct {
	db       *sql.DB
	resolver serialize.Resolver
}

func NewProducer(db *sql.DB, resolver serialize.Resolver) *Producer {
	return &Producer{db: db, resolver: resolver}
}

// Stream runs query and writes each row to w, closing w when done (or on
// error, via w.Close() in the caller — Stream itself never closes w so
// callers using io.Pipe can distinguish "producer done" from "consumer
// should stop reading").
func (p *Producer) Stream(ctx context.Context, query string, cols []catalog.Column, w io.Writer) (int64, error) {
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("transfer: query failed: %w", err)
	}
	defer rows.Close()

	dest := make([]any, len(cols))
	raw := make([]sql.NullString, len(cols))
	for i := range dest {
		dest[i] = &raw[i]
	}

	var n int64
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := rows.Scan(dest...); err != nil {
			return n, fmt.Errorf("transfer: scan failed: %w", err)
		}

		for i, c := range cols {
			tok, err := serialize.Serialize(valueFrom(raw[i]), c.Type, p.resolver)
			if err != nil {
				return n, fmt.Errorf("transfer: serializing column %s: %w", c.Name, err)
			}
			if i > 0 {
				if _, err := w.Write([]byte{'\t'}); err != nil {
					return n, err
				}
			}
			if _, err := io.WriteString(w, tok); err != nil {
				return n, err
			}
		}
		if _, err := w.Write([]byte{'\n'}); err != nil {
			return n, err
		}
		n++
	}
	return n, rows.Err()
}

func valueFrom(ns sql.NullString) serialize.Value {
	if !ns.Valid {
		return serialize.Value{Null: true}
	}
	return serialize.Value{Scalar: ns.String}
}
