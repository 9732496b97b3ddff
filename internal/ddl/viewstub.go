package ddl

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
	"github.com/Sayiza/orapgsync-sub005/internal/typemap"
)

// ViewStub emits `CREATE VIEW q AS SELECT NULL::T1 AS c1, ... WHERE
// false` (spec.md §4.6): a placeholder with the view's final column
// shape. No step registered in this repository replaces it with the
// translated view body.
func ViewStub(v *catalog.View, resolver typemap.Resolver) (string, error) {
	cols := make([]string, 0, len(v.Columns))
	for _, c := range v.Columns {
		pgType, err := typemap.MapType(c.Type, typemap.ContextView, resolver)
		if err != nil {
			return "", err
		}
		cols = append(cols, fmt.Sprintf("NULL::%s AS %s", pgType, QuoteIdent(c.Name)))
	}

	return fmt.Sprintf("CREATE VIEW %s AS\nSELECT %s\nWHERE false;",
		QualifyIdent(v.Name.Schema, v.Name.Name), strings.Join(cols, ", ")), nil
}
