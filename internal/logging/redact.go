package logging

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

const redacted = "[REDACTED]"

// secretKeys are attribute keys whose values are never logged.
var secretKeys = map[string]struct{}{
	"password":   {},
	"secret":     {},
	"token":      {},
	"secret_key": {},
}

// urlKeys are attribute keys holding URLs that may embed credentials.
var urlKeys = map[string]struct{}{
	"database_url": {},
	"nats_url":     {},
	"url":          {},
}

// RedactingHandler strips secrets and URL passwords from attributes before
// passing records to the inner handler.
type RedactingHandler struct {
	inner slog.Handler
}

func NewRedactingHandler(inner slog.Handler) *RedactingHandler {
	return &RedactingHandler{inner: inner}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(redactAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		clean = append(clean, redactAttr(attr))
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(clean)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name)}
}

func redactAttr(attr slog.Attr) slog.Attr {
	key := strings.ToLower(attr.Key)
	if _, ok := secretKeys[key]; ok {
		return slog.String(attr.Key, redacted)
	}
	if _, ok := urlKeys[key]; ok {
		return slog.String(attr.Key, RedactURL(attr.Value.String()))
	}

	if attr.Value.Kind() == slog.KindGroup {
		group := attr.Value.Group()
		clean := make([]slog.Attr, 0, len(group))
		for _, nested := range group {
			clean = append(clean, redactAttr(nested))
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(clean...)}
	}

	return attr
}

// RedactURL replaces the password in a URL's userinfo. Values that are not
// URLs with credentials are returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), redacted)
	return u.String()
}
