package ddl

import (
	"fmt"

	"github.com/Sayiza/orapgsync-sub005/internal/catalog"
)

// Sequence emits a CREATE SEQUENCE statement preserving Oracle's
// start/increment/min/max/cache/cycle settings.
func Sequence(s *catalog.Sequence) string {
	stmt := fmt.Sprintf("CREATE SEQUENCE %s\n\tSTART WITH %d\n\tINCREMENT BY %d\n\tMINVALUE %d\n\tMAXVALUE %d\n\tCACHE %d",
		QualifyIdent(s.Name.Schema, s.Name.Name), s.Start, s.Increment, s.Min, s.Max, maxCache(s.Cache))
	if s.Cycle {
		stmt += "\n\tCYCLE"
	} else {
		stmt += "\n\tNO CYCLE"
	}
	return stmt + ";"
}

func maxCache(cache int64) int64 {
	if cache < 1 {
		return 1
	}
	return cache
}
