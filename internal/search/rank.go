package search

import (
	"sort"
	"strings"

	"github.com/kiddeo/kiddeo-core/internal/model"
)

const (
	tierExact = iota
	tierPrefix
	tierOther
)

func rankTier(title, query string) int {
	t := lower(strings.TrimSpace(title))
	switch {
	case t == query:
		return tierExact
	case strings.HasPrefix(t, query):
		return tierPrefix
	default:
		return tierOther
	}
}

// Rank orders results in place: exact case-insensitive title matches first,
// then titles starting with the query, then everything else.  The sort is
// stable, so ties keep their fan-out order.
func Rank(results []model.SearchResult, query string) {
	q := lower(strings.TrimSpace(query))
	if q == "" || len(results) < 2 {
		return
	}
	sort.SliceStable(results, func(i, j int) bool {
		return rankTier(results[i].Title, q) < rankTier(results[j].Title, q)
	})
}

// dedupe drops repeated (type, id) pairs, keeping the first occurrence.
func dedupe(results []model.SearchResult) []model.SearchResult {
	seen := make(map[string]struct{}, len(results))
	out := results[:0]
	for _, r := range results {
		k := r.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
