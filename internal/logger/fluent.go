package logger

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Poster is the subset of *fluent.Fluent the handler needs.
type Poster interface {
	Post(tag string, message interface{}) error
}

// FluentHandler forwards records to Fluent Bit as flat maps.  Grouped
// attributes use dotted keys.  The tag is "<prefix>.<level>".
type FluentHandler struct {
	client Poster
	prefix string
	level  slog.Leveler
	attrs  []slog.Attr
	group  string
}

func NewFluentHandler(client Poster, tagPrefix string, level slog.Leveler) *FluentHandler {
	return &FluentHandler{client: client, prefix: tagPrefix, level: level}
}

func (h *FluentHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *FluentHandler) Handle(_ context.Context, r slog.Record) error {
	data := make(map[string]interface{}, len(h.attrs)+r.NumAttrs()+3)
	for _, a := range h.attrs {
		flatten(data, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		flatten(data, h.group, a)
		return true
	})
	data["level"] = r.Level.String()
	data["message"] = r.Message
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	data["timestamp"] = ts.UTC().Format(time.RFC3339Nano)

	return h.client.Post(h.prefix+"."+strings.ToLower(r.Level.String()), data)
}

func (h *FluentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *FluentHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if h.group != "" {
		name = h.group + "." + name
	}
	next.group = name
	return &next
}

func flatten(dst map[string]interface{}, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			flatten(dst, key, ga)
		}
		return
	}
	switch v := a.Value.Any().(type) {
	case error:
		dst[key] = v.Error()
	case time.Duration:
		dst[key] = v.String()
	case time.Time:
		dst[key] = v.UTC().Format(time.RFC3339Nano)
	default:
		dst[key] = v
	}
}
