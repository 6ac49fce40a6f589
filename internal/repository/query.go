package repository

import (
	"strings"

	"github.com/iliyamo/yamdb/internal/model"
)

// likeEscaper escapes LIKE wildcards so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns s into a LIKE pattern matching any value that
// contains s.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// pageArgs appends LIMIT/OFFSET arguments for p.
func pageArgs(args []any, p model.Page) []any {
	return append(args, p.Limit, p.Offset)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
