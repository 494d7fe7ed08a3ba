// Package internal holds query helpers shared by the SQL backends.
package internal

import (
	"fmt"
	"strings"

	"github.com/Rifqialba/urilaga"
)

// EscapeLikePattern escapes the LIKE wildcards % and _ and the escape
// character itself so that pattern matches literally.
func EscapeLikePattern(pattern string) string {
	pattern = strings.ReplaceAll(pattern, `\`, `\\`)
	pattern = strings.ReplaceAll(pattern, `%`, `\%`)
	pattern = strings.ReplaceAll(pattern, `_`, `\_`)
	return pattern
}

// Dialect describes how a backend spells a case-insensitive match.
type Dialect struct {
	// Like is the case-insensitive match operator, e.g. ILIKE.
	Like string
	// Escape is appended after each pattern, e.g. ` ESCAPE '\'`.
	Escape string
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
}

// ImageWhere builds the WHERE clause selecting the images matched by q and
// its bind arguments. The clause is empty when q has neither filter nor
// search.
//
// Filter is passed through as a pattern so callers may use wildcards.
// Search is escaped and wrapped in % so it matches as a plain substring.
func ImageWhere(q urilaga.ImageQuery, d Dialect) (string, []any) {
	var conds []string
	var args []any

	if q.Filter != "" {
		args = append(args, q.Filter)
		conds = append(conds, fmt.Sprintf(`"by" %s %s%s`, d.Like, d.Placeholder(len(args)), d.Escape))
	}

	if q.Search != "" {
		args = append(args, "%"+EscapeLikePattern(q.Search)+"%")
		conds = append(conds, fmt.Sprintf(`judul %s %s%s`, d.Like, d.Placeholder(len(args)), d.Escape))
	}

	if len(conds) == 0 {
		return "", nil
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}
