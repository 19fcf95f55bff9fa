package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiddeo/kiddeo-core/internal/config"
	"github.com/kiddeo/kiddeo-core/internal/utils"
)

const testSecret = "test-secret"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func serve(e *echo.Echo, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func protectedEcho() *echo.Echo {
	e := echo.New()
	g := e.Group("", JWTAuth(testSecret), RequireRole(utils.RoleGuest, utils.RoleCustomer))
	g.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, OwnerID(c)+"|"+Role(c))
	})
	return e
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "owner-1", utils.RoleGuest, time.Hour)
	require.NoError(t, err)

	rec := serve(protectedEcho(), http.MethodGet, "/me", tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "owner-1|GUEST", rec.Body.String())
}

func TestJWTAuthRejects(t *testing.T) {
	wrongSecret, _ := utils.NewAccessToken("other", "owner-1", utils.RoleGuest, time.Hour)
	expired, _ := utils.NewAccessToken(testSecret, "owner-1", utils.RoleGuest, -time.Minute)
	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": utils.RoleGuest,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "owner-1", "role": utils.RoleGuest,
	}).SignedString([]byte(testSecret))

	for name, token := range map[string]string{
		"missing":      "",
		"wrong secret": wrongSecret.Token,
		"expired":      expired.Token,
		"no subject":   noSub,
		"no expiry":    noExp,
		"garbage":      "abc.def.ghi",
	} {
		rec := serve(protectedEcho(), http.MethodGet, "/me", token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "owner-1", "OWNER", time.Hour)
	require.NoError(t, err)
	rec := serve(protectedEcho(), http.MethodGet, "/me", tok.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestLogAssignsID(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLog(slog.New(slog.NewJSONHandler(&buf, nil))))
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, RequestID(c))
	})

	rec := serve(e, http.MethodGet, "/ping", "")
	id := rec.Header().Get(echo.HeaderXRequestID)
	assert.Len(t, id, 36)
	assert.Equal(t, id, rec.Body.String())
	assert.Contains(t, buf.String(), `"request_id":"`+id+`"`)
	assert.Contains(t, buf.String(), `"status":200`)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "0b7c3c4e-9d34-4d5c-8d2a-3c4f0a1b2c3d")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "0b7c3c4e-9d34-4d5c-8d2a-3c4f0a1b2c3d", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "not a uuid")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.NotEqual(t, "not a uuid", rec.Body.String())
}

func TestRequestLogRecordsHandlerErrors(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLog(slog.New(slog.NewJSONHandler(&buf, nil))))
	e.GET("/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, "upstream")
	})

	rec := serve(e, http.MethodGet, "/fail", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestTokenBucketThrottles(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "test:rl",
	}
	e := echo.New()
	e.GET("/api/search", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		NewTokenBucket(cfg, newRedis(t), discardLogger()))

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/search", "").Code)
	second := serve(e, http.MethodGet, "/api/search", "")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := serve(e, http.MethodGet, "/api/search", "")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "60", third.Header().Get("Retry-After"))
}

func TestTokenBucketDisabledWithoutRedis(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1}
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(cfg, nil, discardLogger()))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/x", "").Code)
	}
}

func TestRedisCacheHitsOnReorderedQuery(t *testing.T) {
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "test:cache",
	}
	calls := 0
	e := echo.New()
	e.GET("/api/search", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"query": c.QueryParam("q"), "n": calls})
	}, NewRedisCache(cfg, newRedis(t), discardLogger()))

	first := serve(e, http.MethodGet, "/api/search?q=kino&city=moscow", "")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := serve(e, http.MethodGet, "/api/search?city=moscow&q=kino", "")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, first.Header().Get(echo.HeaderContentType), second.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 1, calls)

	third := serve(e, http.MethodGet, "/api/search?q=teatr", "")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestRedisCacheSkipsErrors(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Minute, Prefix: "test:cache"}
	calls := 0
	e := echo.New()
	e.GET("/boom", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}, NewRedisCache(cfg, newRedis(t), discardLogger()))

	serve(e, http.MethodGet, "/boom", "")
	serve(e, http.MethodGet, "/boom", "")
	assert.Equal(t, 2, calls)
}
