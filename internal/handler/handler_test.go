package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiddeo/kiddeo-core/internal/cart"
	"github.com/kiddeo/kiddeo-core/internal/model"
	"github.com/kiddeo/kiddeo-core/internal/search"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubSearcher struct {
	got  search.Request
	resp *model.SearchResponse
	err  error
}

func (s *stubSearcher) Search(_ context.Context, req search.Request) (*model.SearchResponse, error) {
	s.got = req
	return s.resp, s.err
}

func get(t *testing.T, h echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestSearchHandlerMapsQuery(t *testing.T) {
	stub := &stubSearcher{resp: &model.SearchResponse{
		Query:          "кино",
		City:           "spb",
		Results:        []model.SearchResult{},
		Pagination:     model.NewPagination(2, 10, 0),
		PopularQueries: search.PopularQueries(),
		Synonyms:       []string{},
	}}
	h := &SearchHandler{Search: stub, Log: quietLog}

	rec := get(t, h.Get, "/api/search?q=%D0%BA%D0%B8%D0%BD%D0%BE&city=spb&category=7&type=Event&page=2&limit=10")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, search.Request{Query: "кино", City: "spb", CategoryID: "7", Type: model.ResultEvent, Page: 2, Limit: 10}, stub.got)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, k := range []string{"query", "city", "results", "pagination", "popularQueries", "synonyms"} {
		assert.Contains(t, body, k)
	}
}

func TestSearchHandlerUnknownTypePassesThrough(t *testing.T) {
	stub := &stubSearcher{resp: &model.SearchResponse{}}
	h := &SearchHandler{Search: stub, Log: quietLog}
	get(t, h.Get, "/api/search?q=x&type=movies&page=abc")
	assert.Equal(t, model.ResultType("movies"), stub.got.Type)
	assert.Equal(t, 0, stub.got.Page)
}

func TestSearchHandlerFailureIs500(t *testing.T) {
	h := &SearchHandler{Search: &stubSearcher{err: errors.New("db down")}, Log: quietLog}
	rec := get(t, h.Get, "/api/search?q=x")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

type stubTickets struct{ opts cart.EventTickets }

func (s stubTickets) TicketOptions(_ context.Context, eventID string) (cart.EventTickets, error) {
	s.opts.EventID = eventID
	return s.opts, nil
}

func TestCatalogHandler(t *testing.T) {
	minPrice := 300.0
	h := &CatalogHandler{Log: quietLog, Tickets: stubTickets{opts: cart.EventTickets{
		Tickets: []model.TicketType{
			{ID: "A", Name: "Взрослый", Price: decimal.NewFromInt(500), IsActive: true, MaxPerOrder: 4},
			{ID: "B", Name: "Детский", Price: decimal.NewFromInt(300), IsActive: true},
		},
		MinPrice: &minPrice,
	}}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("E")
	require.NoError(t, h.EventTickets(c))

	assert.JSONEq(t, `{
		"eventId": "E",
		"minPrice": 300,
		"tickets": [
			{"id":"A","name":"Взрослый","price":"500.00","isActive":true,"maxPerOrder":4},
			{"id":"B","name":"Детский","price":"300.00","isActive":true,"maxPerOrder":null}
		]
	}`, rec.Body.String())
}

func TestDecodeQuantity(t *testing.T) {
	cases := map[string]int{
		`3`:       3,
		`"4"`:     4,
		`-2`:      0,
		`"-2"`:    0,
		`1.5`:     0,
		`"abc"`:   0,
		`null`:    0,
		`true`:    0,
		`[1]`:     0,
		`1e20`:    0,
		``:        0,
		`  7  `:   7,
		`"  8 "`:  8,
	}
	for in, want := range cases {
		assert.Equal(t, want, decodeQuantity(json.RawMessage(in)), in)
	}
}
