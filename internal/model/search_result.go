package model

import (
	"strings"
	"time"
)

// ResultType discriminates the source entity of a SearchResult and controls
// how its optional fields are interpreted.
type ResultType string

const (
	ResultListing    ResultType = "listing"    // generic marketplace listing
	ResultEvent      ResultType = "event"      // afisha event
	ResultPlace      ResultType = "place"      // venue partner
	ResultBlog       ResultType = "blog"       // CMS content / blog post
	ResultCollection ResultType = "collection" // curated collection
)

// ResultTypes lists every result type in fan-out order.  Merged search
// results keep this order between ranking ties.
var ResultTypes = []ResultType{ResultListing, ResultEvent, ResultPlace, ResultBlog, ResultCollection}

// ParseResultType converts a raw query value into a ResultType.  The second
// return value is false for unknown values; an empty string is not a type.
func ParseResultType(raw string) (ResultType, bool) {
	t := ResultType(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range ResultTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// SearchResult is the read projection every search source is normalized
// into.  It is built fresh per request and never mutated after
// construction.  ID is only unique within Type.
//
// Fields:
//
//	Price     – normalized minimum price; nil is unknown, 0 is free.
//	Location  – address, venue or city text depending on Type.
//	Href      – deep link to the entity's detail page.
type SearchResult struct {
	ID          string     `json:"id"`
	Type        ResultType `json:"type"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Price       *float64   `json:"price"`
	Image       *string    `json:"image"`
	Category    *string    `json:"category"`
	Location    *string    `json:"location"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Href        *string    `json:"href"`
}

// Key returns the (type, id) identity used for deduplication.
func (r SearchResult) Key() string {
	return string(r.Type) + ":" + r.ID
}

// Pagination describes the page returned to the client.  Total counts every
// match across all sources, not only the rows present on this page.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// NewPagination builds a Pagination and derives the page count.
func NewPagination(page, limit int, total int64) Pagination {
	p := Pagination{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		p.Pages = (total + int64(limit) - 1) / int64(limit)
	}
	return p
}

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Query          string         `json:"query"`
	City           string         `json:"city"`
	Results        []SearchResult `json:"results"`
	Pagination     Pagination     `json:"pagination"`
	PopularQueries []string       `json:"popularQueries"`
	Synonyms       []string       `json:"synonyms"`
}

// StringPtr returns nil for empty strings and a pointer otherwise.  Search
// sources use it to map empty columns onto JSON nulls.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
