package config

import (
	"context"
	"crypto/tls"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds the shared Redis client used by the search cache, the
// rate limiter and the cart store.  REDIS_URL wins when set; otherwise
// REDIS_ADDR (or REDIS_HOST + REDIS_PORT), REDIS_PASSWORD, REDIS_DB and
// REDIS_TLS are read.  It returns nil when the server does not answer a ping,
// and callers degrade to in-process fallbacks.
func NewRedisClient(log *slog.Logger) *redis.Client {
	opts, err := redisOptions()
	if err != nil {
		log.Warn("invalid redis configuration", "err", err)
		return nil
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, falling back", "addr", opts.Addr, "err", err)
		_ = client.Close()
		return nil
	}
	return client
}

func redisOptions() (*redis.Options, error) {
	if u := os.Getenv("REDIS_URL"); u != "" {
		return redis.ParseURL(u)
	}
	addr := envStr("REDIS_ADDR", "localhost:6379")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	opts := &redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       envInt("REDIS_DB", 0),
	}
	if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}
