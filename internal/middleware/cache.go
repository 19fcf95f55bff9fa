package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kiddeo/kiddeo-core/internal/config"
)

// bodyRecorder tees the response body into a bounded buffer.
type bodyRecorder struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (r *bodyRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	if !r.truncated {
		if r.limit > 0 && r.buf.Len()+len(b) > r.limit {
			r.truncated = true
		} else {
			r.buf.Write(b)
		}
	}
	return r.ResponseWriter.Write(b)
}

// cachedResponse is the stored form of a 200 response.
type cachedResponse struct {
	Status int         `json:"s"`
	Header http.Header `json:"h"`
	Body   []byte      `json:"b"`
}

// responseCacheKey hashes the parts selected by the key strategy.  Query
// parameters are re-encoded so that ?q=a&city=b and ?city=b&q=a share a key.
func responseCacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	query := r.URL.Query().Encode()

	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{"route", c.Path()}
	case "method_route":
		parts = []string{r.Method, c.Path()}
	case "method_route_query":
		parts = []string{r.Method, c.Path(), query}
	default:
		parts = []string{"route", c.Path(), query}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "\x00")))
	return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

// NewRedisCache caches successful responses of the wrapped routes in Redis.
// Responses carry X-Cache: HIT or MISS.  Redis errors are logged and the
// request is served uncached.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, log *slog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	log = log.With("component", "response-cache")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := responseCacheKey(cfg, c)

			raw, err := rdb.Get(ctx, key).Bytes()
			switch {
			case err == nil:
				var hit cachedResponse
				if jerr := json.Unmarshal(raw, &hit); jerr == nil {
					h := c.Response().Header()
					for k, vals := range hit.Header {
						if strings.EqualFold(k, echo.HeaderContentLength) || strings.EqualFold(k, echo.HeaderXRequestID) {
							continue
						}
						h[k] = vals
					}
					h.Set("X-Cache", "HIT")
					c.Response().WriteHeader(hit.Status)
					_, _ = c.Response().Write(hit.Body)
					return nil
				}
			case !errors.Is(err, redis.Nil):
				log.Warn("cache read failed", "err", err)
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.truncated {
				return nil
			}

			header := c.Response().Header().Clone()
			header.Del("X-Cache")
			payload, err := json.Marshal(cachedResponse{Status: rec.status, Header: header, Body: rec.buf.Bytes()})
			if err != nil {
				return nil
			}
			// the request context may already be cancelled once the body is flushed
			if err := rdb.Set(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
				log.Warn("cache write failed", "err", err)
			}
			return nil
		}
	}
}
