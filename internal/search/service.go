// Package search implements the multi-entity search aggregator: it fans a
// query out to five sources, normalizes and merges their rows, ranks them by
// title relevance and paginates the merged view.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kiddeo/kiddeo-core/internal/config"
	"github.com/kiddeo/kiddeo-core/internal/model"
	"github.com/kiddeo/kiddeo-core/internal/repository"
)

// CityResolver maps a city slug onto its internal id.  A missing city must be
// reported as repository.ErrNotFound.
type CityResolver interface {
	GetBySlug(ctx context.Context, slug string) (model.City, error)
}

// PlaceLister serves the empty-query browse of venue partners.
type PlaceLister interface {
	ListActiveByCity(ctx context.Context, cityID uint64, limit, offset int) ([]model.SearchResult, error)
	CountActiveByCity(ctx context.Context, cityID uint64) (int64, error)
}

// Request is the aggregator input.  Type is empty when no type filter is set.
type Request struct {
	Query      string
	City       string
	CategoryID string
	Type       model.ResultType
	Page       int
	Limit      int
}

// Service is the search aggregator.  It holds no mutable state and is safe
// for concurrent use.
type Service struct {
	cities  CityResolver
	places  PlaceLister
	sources []Source
	cfg     config.SearchConfig
	log     *slog.Logger
}

// NewService builds an aggregator.  Sources are queried concurrently and
// merged in the order given here.
func NewService(cities CityResolver, places PlaceLister, cfg config.SearchConfig, log *slog.Logger, sources ...Source) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cities:  cities,
		places:  places,
		sources: sources,
		cfg:     cfg,
		log:     log.With("component", "search"),
	}
}

func (s *Service) normalize(req Request) Request {
	req.Query = strings.TrimSpace(req.Query)
	req.City = strings.ToLower(strings.TrimSpace(req.City))
	if req.City == "" {
		req.City = s.cfg.DefaultCity
	}
	req.CategoryID = strings.TrimSpace(req.CategoryID)
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = s.cfg.DefaultLimit
	}
	if req.Limit > s.cfg.MaxLimit {
		req.Limit = s.cfg.MaxLimit
	}
	if last := s.lastPage(req.Limit); req.Page > last {
		req.Page = last
	}
	return req
}

// lastPage is the highest page whose offset still fits in the merge window.
// Later pages would be empty anyway, and capping keeps page*limit from
// overflowing.
func (s *Service) lastPage(limit int) int {
	window := s.cfg.MaxWindow
	if window <= 0 {
		window = math.MaxInt32
	}
	return window/limit + 1
}

// Search runs one aggregated search.  An unknown city yields an empty
// response, not an error.  Any source failure fails the whole request; no
// partial results are returned.
func (s *Service) Search(ctx context.Context, req Request) (*model.SearchResponse, error) {
	req = s.normalize(req)
	resp := &model.SearchResponse{
		Query:          req.Query,
		City:           req.City,
		Results:        []model.SearchResult{},
		Pagination:     model.NewPagination(req.Page, req.Limit, 0),
		PopularQueries: PopularQueries(),
		Synonyms:       LookupSynonyms(req.Query),
	}

	if req.Query == "" && req.Type != model.ResultPlace {
		return resp, nil
	}

	city, err := s.cities.GetBySlug(ctx, req.City)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Debug("city not resolved", "city", req.City)
		return resp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve city %q: %w", req.City, err)
	}

	if req.Query == "" {
		return s.browsePlaces(ctx, req, city, resp)
	}

	results, total, err := s.fanOut(ctx, req, city)
	if err != nil {
		return nil, err
	}
	resp.Results = results
	resp.Pagination = model.NewPagination(req.Page, req.Limit, total)

	s.log.Debug("search complete",
		"query", req.Query,
		"tokens", Tokenize(req.Query),
		"city", req.City,
		"type", string(req.Type),
		"returned", len(results),
		"total", total,
	)
	return resp, nil
}

func (s *Service) browsePlaces(ctx context.Context, req Request, city model.City, resp *model.SearchResponse) (*model.SearchResponse, error) {
	var (
		items []model.SearchResult
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.places.ListActiveByCity(gctx, city.ID, req.Limit, (req.Page-1)*req.Limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.places.CountActiveByCity(gctx, city.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("browse places: %w", err)
	}
	if items == nil {
		items = []model.SearchResult{}
	}
	resp.Results = items
	resp.Pagination = model.NewPagination(req.Page, req.Limit, total)
	return resp, nil
}

// fanOut queries every eligible source and its count concurrently, then
// merges, dedupes, ranks and re-slices the requested page.  Each source is
// asked for the first page*limit rows so the merged view covers the page.
func (s *Service) fanOut(ctx context.Context, req Request, city model.City) ([]model.SearchResult, int64, error) {
	window := req.Page * req.Limit
	if s.cfg.MaxWindow > 0 && window > s.cfg.MaxWindow {
		window = s.cfg.MaxWindow
	}
	filter := repository.SearchFilter{
		Query:      req.Query,
		CityID:     city.ID,
		CategoryID: req.CategoryID,
		Offset:     0,
		Limit:      window,
	}

	perSource := make([][]model.SearchResult, len(s.sources))
	counts := make([]int64, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		if req.Type != "" && src.Type() != req.Type {
			continue
		}
		g.Go(func() error {
			rows, err := src.Search(gctx, filter)
			if err != nil {
				return fmt.Errorf("search %s: %w", src.Type(), err)
			}
			perSource[i] = rows
			return nil
		})
		g.Go(func() error {
			n, err := src.Count(gctx, filter)
			if err != nil {
				return fmt.Errorf("count %s: %w", src.Type(), err)
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var merged []model.SearchResult
	var total int64
	for i := range s.sources {
		merged = append(merged, perSource[i]...)
		total += counts[i]
	}
	merged = dedupe(merged)
	Rank(merged, req.Query)

	return paginate(merged, req.Page, req.Limit), total, nil
}

func paginate(results []model.SearchResult, page, limit int) []model.SearchResult {
	start := (page - 1) * limit
	if start >= len(results) {
		return []model.SearchResult{}
	}
	end := start + limit
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}
