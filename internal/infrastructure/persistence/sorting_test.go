package persistence

import (
	"testing"

	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestSortable_OrderBy(t *testing.T) {
	cases := []struct {
		name    string
		sorting sortable
		filter  shared.Filter
		alias   string
		want    string
	}{
		{"defaults for projects", projectSorting, shared.Filter{}, "", "last_modified DESC"},
		{"defaults for samples", sampleSorting, shared.Filter{}, "", "code ASC"},
		{"allowed column", sampleSorting, shared.Filter{OrderBy: "label", OrderDir: "desc"}, "", "label DESC"},
		{"padded input", measurementSorting, shared.Filter{OrderBy: " facility ", OrderDir: " ASC "}, "", "facility ASC"},
		{"qualified", projectSorting, shared.Filter{OrderBy: "title", OrderDir: "asc"}, "p", "p.title ASC"},
		{"unknown column", projectSorting, shared.Filter{OrderBy: "password_hash"}, "", "last_modified DESC"},
		{"injected column", sampleSorting, shared.Filter{OrderBy: "code; DROP TABLE samples;--"}, "", "code ASC"},
		{"injected direction", measurementSorting, shared.Filter{OrderDir: "ASC; DELETE FROM users"}, "", "registered_at DESC"},
		{"column names are case sensitive", sampleSorting, shared.Filter{OrderBy: "LABEL"}, "", "code ASC"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.sorting.orderBy(tc.filter, tc.alias))
		})
	}
}

func TestSortable_ColumnsAreIdentifiers(t *testing.T) {
	for _, s := range []sortable{projectSorting, sampleSorting, measurementSorting} {
		assert.Contains(t, s.columns, s.fallback)
		for _, c := range s.columns {
			assert.Regexp(t, `^[a-z_]+$`, c)
		}
	}
}
