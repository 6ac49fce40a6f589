package repository

import (
	"strings"

	"github.com/iliyamo/yamdb/internal/model"
)

// titleWhere renders f as a WHERE clause over `titles t` joined with
// `categories c`. Every set field adds one AND-ed condition.
func titleWhere(f model.TitleFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Name != "" {
		conds = append(conds, "t.name LIKE ?")
		args = append(args, containsPattern(f.Name))
	}
	if f.Year != nil {
		conds = append(conds, "t.year = ?")
		args = append(args, *f.Year)
	}
	if f.Category != "" {
		conds = append(conds, "c.slug = ?")
		args = append(args, f.Category)
	}
	if f.Genre != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM title_genres tg
			JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = t.id AND g.slug = ?)`)
		args = append(args, f.Genre)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
