package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestLog assigns every request an id (reusing a well-formed
// X-Request-ID from the client) and writes one access log record when the
// handler returns.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	log = log.With("component", "http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			id := req.Header.Get(echo.HeaderXRequestID)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			c.Set(ctxRequestID, id)
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			attrs := []any{
				"request_id", id,
				"method", req.Method,
				"path", c.Path(),
				"uri", req.RequestURI,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"ip", c.RealIP(),
			}
			if err != nil {
				attrs = append(attrs, "err", err)
			}
			log.Log(req.Context(), level, "request", attrs...)
			return nil
		}
	}
}
