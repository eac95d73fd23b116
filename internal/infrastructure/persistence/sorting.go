package persistence

import (
	"strings"

	"github.com/qbic/datamanager/internal/domain/shared"
)

// sortable lists the columns a listing may be ordered by. Anything else
// requested by a client falls back to the default column, so the clause never
// carries user input.
type sortable struct {
	columns    []string
	fallback   string
	defaultAsc bool
}

var (
	projectSorting     = sortable{columns: []string{"code", "title", "last_modified", "created_at"}, fallback: "last_modified"}
	sampleSorting      = sortable{columns: []string{"code", "label", "biological_replicate", "analysis_method", "created_at"}, fallback: "code", defaultAsc: true}
	measurementSorting = sortable{columns: []string{"code", "facility", "registered_at"}, fallback: "registered_at"}
)

func (s sortable) column(requested string) string {
	requested = strings.TrimSpace(requested)
	for _, c := range s.columns {
		if c == requested {
			return c
		}
	}
	return s.fallback
}

func (s sortable) direction(requested string) string {
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case "asc":
		return "ASC"
	case "desc":
		return "DESC"
	}
	if s.defaultAsc {
		return "ASC"
	}
	return "DESC"
}

// orderBy builds the ORDER BY clause for filter, qualifying the column with
// alias when one is given
func (s sortable) orderBy(filter shared.Filter, alias string) string {
	col := s.column(filter.OrderBy)
	if alias != "" {
		col = alias + "." + col
	}
	return col + " " + s.direction(filter.OrderDir)
}
