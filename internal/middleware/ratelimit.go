package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kiddeo/kiddeo-core/internal/config"
)

// tokenBucketScript refills and takes one token atomically.  It returns
// {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
  tokens = capacity
  ts = now_ms
end

local steps = math.floor(math.max(0, now_ms - ts) / interval_ms)
if steps > 0 then
  tokens = math.min(capacity, tokens + steps * refill)
  ts = ts + steps * interval_ms
end

local allowed = 0
local retry = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  retry = math.max(0, interval_ms - (now_ms - ts))
end

redis.call('HSET', key, 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', key, ttl)
return {allowed, tokens, retry}
`)

type bucketDecision struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

type tokenBucket struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
	now func() time.Time
}

func (b *tokenBucket) take(ctx context.Context, key string) (bucketDecision, error) {
	res, err := tokenBucketScript.Run(ctx, b.rdb, []string{key},
		b.now().UnixMilli(),
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		int64(math.Ceil(b.cfg.TTL.Seconds())),
	).Int64Slice()
	if err != nil {
		return bucketDecision{}, err
	}
	if len(res) != 3 {
		return bucketDecision{}, fmt.Errorf("unexpected limiter reply %v", res)
	}
	return bucketDecision{
		allowed:   res[0] == 1,
		remaining: res[1],
		retry:     time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// NewTokenBucket limits requests per key (see config.RateLimitConfig.KeyStrategy)
// with a Redis token bucket.  The limiter fails open: Redis errors let the
// request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *slog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	bucket := &tokenBucket{cfg: cfg, rdb: rdb, now: time.Now}
	log = log.With("component", "ratelimit")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			d, err := bucket.take(c.Request().Context(), key)
			if err != nil {
				log.Warn("limiter unavailable", "key", key, "err", err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if d.allowed {
				return next(c)
			}

			secs := int(math.Ceil(d.retry.Seconds()))
			h.Set("Retry-After", strconv.Itoa(secs))
			log.Debug("request throttled", "key", key, "retry_after", secs)
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too_many_requests",
				"retry_after": secs,
			})
		}
	}
}

func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	owner := ownerOrAnon(c)
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", owner)
	case "route":
		parts = append(parts, "route", route)
	case "user_route":
		parts = append(parts, "user", owner, "route", route)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", owner, "route", route)
	}
	return strings.Join(parts, ":")
}
