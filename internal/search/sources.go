package search

import (
	"context"

	"github.com/kiddeo/kiddeo-core/internal/model"
	"github.com/kiddeo/kiddeo-core/internal/pricing"
	"github.com/kiddeo/kiddeo-core/internal/repository"
)

// Source is one independently shaped data source of the aggregator.  Search
// returns normalized results for the filter's page window; Count applies the
// same predicates without paging.
type Source interface {
	Type() model.ResultType
	Search(ctx context.Context, f repository.SearchFilter) ([]model.SearchResult, error)
	Count(ctx context.Context, f repository.SearchFilter) (int64, error)
}

// Finder is the repository shape every search source wraps.
type Finder[R any] interface {
	Search(ctx context.Context, f repository.SearchFilter) ([]R, error)
	Count(ctx context.Context, f repository.SearchFilter) (int64, error)
}

type source[R any] struct {
	typ       model.ResultType
	finder    Finder[R]
	normalize func(R) model.SearchResult
}

func (s *source[R]) Type() model.ResultType { return s.typ }

func (s *source[R]) Search(ctx context.Context, f repository.SearchFilter) ([]model.SearchResult, error) {
	rows, err := s.finder.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]model.SearchResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, s.normalize(r))
	}
	return out, nil
}

func (s *source[R]) Count(ctx context.Context, f repository.SearchFilter) (int64, error) {
	return s.finder.Count(ctx, f)
}

// NewListingSource wraps generic listings.
func NewListingSource(f Finder[repository.ListingRecord]) Source {
	return &source[repository.ListingRecord]{typ: model.ResultListing, finder: f, normalize: normalizeListing}
}

// NewEventSource wraps afisha events.
func NewEventSource(f Finder[repository.AfishaEventRecord]) Source {
	return &source[repository.AfishaEventRecord]{typ: model.ResultEvent, finder: f, normalize: normalizeEvent}
}

// NewContentSource wraps CMS content.
func NewContentSource(f Finder[repository.ContentRecord]) Source {
	return &source[repository.ContentRecord]{typ: model.ResultBlog, finder: f, normalize: normalizeContent}
}

// NewCollectionSource wraps curated collections.
func NewCollectionSource(f Finder[repository.CollectionRecord]) Source {
	return &source[repository.CollectionRecord]{typ: model.ResultCollection, finder: f, normalize: normalizeCollection}
}

// PlaceFinder is the venue partner repository: search plus the city browse
// listing used for empty queries.
type PlaceFinder interface {
	Finder[repository.VenuePartnerRecord]
	ListActiveByCity(ctx context.Context, cityID uint64, limit, offset int) ([]repository.VenuePartnerRecord, error)
	CountActiveByCity(ctx context.Context, cityID uint64) (int64, error)
}

// PlaceSource wraps venue partners and also serves the empty-query browse.
type PlaceSource struct {
	source[repository.VenuePartnerRecord]
	finder PlaceFinder
}

// NewPlaceSource wraps venue partners.
func NewPlaceSource(f PlaceFinder) *PlaceSource {
	return &PlaceSource{
		source: source[repository.VenuePartnerRecord]{typ: model.ResultPlace, finder: f, normalize: normalizePlace},
		finder: f,
	}
}

// ListActiveByCity returns active partners of a city, newest first.
func (p *PlaceSource) ListActiveByCity(ctx context.Context, cityID uint64, limit, offset int) ([]model.SearchResult, error) {
	rows, err := p.finder.ListActiveByCity(ctx, cityID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]model.SearchResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, normalizePlace(r))
	}
	return out, nil
}

// CountActiveByCity counts active partners of a city.
func (p *PlaceSource) CountActiveByCity(ctx context.Context, cityID uint64) (int64, error) {
	return p.finder.CountActiveByCity(ctx, cityID)
}

func cityPath(citySlug, rest string) string {
	if citySlug == "" {
		return "/" + rest
	}
	return "/" + citySlug + "/" + rest
}

func normalizeListing(l repository.ListingRecord) model.SearchResult {
	slug := l.Slug
	if slug == "" {
		slug = l.ID
	}
	href := "/listing/" + slug
	return model.SearchResult{
		ID:          l.ID,
		Type:        model.ResultListing,
		Title:       l.Title,
		Description: model.StringPtr(l.Description),
		Price:       pricing.Normalize(pricing.FromNullable(l.Price.Valid, l.Price.Decimal)),
		Image:       model.StringPtr(l.Image),
		Category:    model.StringPtr(l.Category),
		Location:    model.StringPtr(l.Address),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
		Href:        &href,
	}
}

func normalizeEvent(e repository.AfishaEventRecord) model.SearchResult {
	href := cityPath(e.CitySlug, "event/"+e.Slug)
	return model.SearchResult{
		ID:          e.ID,
		Type:        model.ResultEvent,
		Title:       e.Title,
		Description: model.StringPtr(e.Description),
		Price:       pricing.Normalize(pricing.MinActivePrice(e.Tiers)),
		Image:       model.StringPtr(e.CoverImage),
		Category:    model.StringPtr(e.Category),
		Location:    model.StringPtr(e.Venue),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Href:        &href,
	}
}

func normalizePlace(v repository.VenuePartnerRecord) model.SearchResult {
	href := cityPath(v.CitySlug, "venue/"+v.Slug)
	return model.SearchResult{
		ID:          v.ID,
		Type:        model.ResultPlace,
		Title:       v.Name,
		Description: model.StringPtr(v.Description),
		Price:       pricing.Normalize(pricing.FromNullable(v.PriceFrom.Valid, v.PriceFrom.Decimal)),
		Image:       model.StringPtr(v.CoverImage),
		Category:    model.StringPtr(v.Category),
		Location:    model.StringPtr(v.Address),
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
		Href:        &href,
	}
}

func normalizeContent(c repository.ContentRecord) model.SearchResult {
	href := "/blog/" + c.Slug
	return model.SearchResult{
		ID:          c.ID,
		Type:        model.ResultBlog,
		Title:       c.Title,
		Description: model.StringPtr(c.Excerpt),
		Image:       model.StringPtr(c.CoverImage),
		Category:    model.StringPtr(c.Category),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Href:        &href,
	}
}

func normalizeCollection(k repository.CollectionRecord) model.SearchResult {
	href := cityPath(k.CitySlug, "collections/"+k.Slug)
	return model.SearchResult{
		ID:          k.ID,
		Type:        model.ResultCollection,
		Title:       k.Title,
		Description: model.StringPtr(k.Description),
		Image:       model.StringPtr(k.CoverImage),
		Location:    model.StringPtr(k.CitySlug),
		CreatedAt:   k.CreatedAt,
		UpdatedAt:   k.UpdatedAt,
		Href:        &href,
	}
}
