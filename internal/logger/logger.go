// Package logger builds the process-wide slog.Logger: a tint (or JSON)
// console handler, optionally fanned out to Fluent Bit.
package logger

import (
	"io"
	"log/slog"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/lmittmann/tint"

	"github.com/kiddeo/kiddeo-core/internal/config"
)

// New returns the logger and a close func that flushes Fluent forwarding.
// A Fluent connection failure is not fatal: the console logger is returned
// together with the error so the caller can report it.
func New(cfg config.LogConfig, w io.Writer) (*slog.Logger, func() error, error) {
	var console slog.Handler
	if cfg.JSON {
		console = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.Level})
	} else {
		console = tint.NewHandler(w, &tint.Options{
			Level:      cfg.Level,
			TimeFormat: time.TimeOnly,
			NoColor:    cfg.NoColor,
		})
	}
	noop := func() error { return nil }

	if !cfg.FluentEnabled {
		return slog.New(console), noop, nil
	}
	client, err := fluent.New(fluent.Config{
		FluentHost:    cfg.FluentHost,
		FluentPort:    cfg.FluentPort,
		Async:         true,
		MarshalAsJSON: true,
	})
	if err != nil {
		return slog.New(console), noop, err
	}
	fh := NewFluentHandler(client, cfg.FluentTag, cfg.Level)
	return slog.New(Fanout(console, fh)), client.Close, nil
}
