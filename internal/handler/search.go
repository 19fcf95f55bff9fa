// Package handler exposes the HTTP endpoints of the public search API and
// the cart.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kiddeo/kiddeo-core/internal/middleware"
	"github.com/kiddeo/kiddeo-core/internal/model"
	"github.com/kiddeo/kiddeo-core/internal/search"
)

// Searcher runs an aggregated search.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*model.SearchResponse, error)
}

// SearchHandler serves GET /api/search.
type SearchHandler struct {
	Search Searcher
	Log    *slog.Logger
}

var internalError = echo.Map{"error": "Internal server error"}

func queryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(c.QueryParam(name)))
	return n
}

// Get reads q, city, category, type, page and limit.  Out-of-range paging is
// normalized by the aggregator.  An unknown type matches no source.
func (h *SearchHandler) Get(c echo.Context) error {
	rawType := strings.TrimSpace(c.QueryParam("type"))
	typ, ok := model.ParseResultType(rawType)
	if !ok && rawType != "" {
		typ = model.ResultType(strings.ToLower(rawType))
	}

	req := search.Request{
		Query:      c.QueryParam("q"),
		City:       c.QueryParam("city"),
		CategoryID: c.QueryParam("category"),
		Type:       typ,
		Page:       queryInt(c, "page"),
		Limit:      queryInt(c, "limit"),
	}

	resp, err := h.Search.Search(c.Request().Context(), req)
	if err != nil {
		h.Log.Error("search failed",
			"request_id", middleware.RequestID(c),
			"query", req.Query,
			"city", req.City,
			"err", err,
		)
		return c.JSON(http.StatusInternalServerError, internalError)
	}
	return c.JSON(http.StatusOK, resp)
}
