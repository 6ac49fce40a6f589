package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/yamdb/internal/model"
)

func TestTitleWhere(t *testing.T) {
	year := 2021
	tests := []struct {
		name      string
		filter    model.TitleFilter
		wantConds []string
		wantArgs  []any
	}{
		{
			name:   "empty",
			filter: model.TitleFilter{},
		},
		{
			name:      "name substring",
			filter:    model.TitleFilter{Name: "Dune"},
			wantConds: []string{"t.name LIKE ?"},
			wantArgs:  []any{"%Dune%"},
		},
		{
			name:      "wildcards are escaped",
			filter:    model.TitleFilter{Name: "100%_real"},
			wantConds: []string{"t.name LIKE ?"},
			wantArgs:  []any{`%100\%\_real%`},
		},
		{
			name:      "all filters are AND-ed",
			filter:    model.TitleFilter{Name: "du", Year: &year, Category: "movie", Genre: "sci-fi"},
			wantConds: []string{"t.name LIKE ?", "t.year = ?", "c.slug = ?", "g.slug = ?"},
			wantArgs:  []any{"%du%", 2021, "movie", "sci-fi"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := titleWhere(tt.filter)
			if len(tt.wantConds) == 0 {
				assert.Empty(t, where)
				assert.Empty(t, args)
				return
			}
			assert.True(t, strings.HasPrefix(where, " WHERE "))
			for _, c := range tt.wantConds {
				assert.Contains(t, where, c)
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
