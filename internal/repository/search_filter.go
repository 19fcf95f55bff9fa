package repository

import (
	"strings"
)

// SearchFilter carries the predicates and page window shared by every search
// source.  Count queries ignore Offset and Limit so that totals reflect all
// matches.
type SearchFilter struct {
	Query      string // raw substring to match; empty matches everything
	CityID     uint64 // 0 disables city scoping
	CategoryID string // empty disables category filtering
	Offset     int
	Limit      int
}

// whereBuilder accumulates AND-ed conditions and their placeholders.
type whereBuilder struct {
	parts []string
	args  []any
}

func (w *whereBuilder) add(cond string, args ...any) {
	w.parts = append(w.parts, cond)
	w.args = append(w.args, args...)
}

// contains adds a case-insensitive substring match of q against any of cols.
// Blank queries add nothing.
func (w *whereBuilder) contains(q string, cols ...string) {
	q = strings.TrimSpace(q)
	if q == "" || len(cols) == 0 {
		return
	}
	pattern := likePattern(q)
	ors := make([]string, 0, len(cols))
	for _, col := range cols {
		ors = append(ors, "LOWER("+col+") LIKE ?")
		w.args = append(w.args, pattern)
	}
	w.parts = append(w.parts, "("+strings.Join(ors, " OR ")+")")
}

func (w *whereBuilder) sql() string {
	if len(w.parts) == 0 {
		return "1=1"
	}
	return strings.Join(w.parts, " AND ")
}

const defaultPageSize = 20

// pageSize is the LIMIT actually sent for a requested limit.
func pageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	return limit
}

// pageArgs appends LIMIT/OFFSET values to a copy of the WHERE args.
func (w *whereBuilder) pageArgs(limit, offset int) []any {
	limit = pageSize(limit)
	if offset < 0 {
		offset = 0
	}
	return append(append([]any{}, w.args...), limit, offset)
}

// likePattern lowercases q, escapes LIKE wildcards and wraps it in %...%.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

// placeholders returns "?, ?, ?" for n values.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
