// Kunhua Huang 2026

package logger

import (
	"context"
	"log"
	"log/slog"
	"strings"
)

// NewSlogHandler forwards slog records to l, flattening attributes into
// key=value pairs after the message.
func NewSlogHandler(l *Logger) slog.Handler {
	return &slogHandler{log: l}
}

// StdLogger returns a *log.Logger writing at error level through l, for
// packages such as net/http that only accept the standard logger.
func StdLogger(l *Logger) *log.Logger {
	return slog.NewLogLogger(NewSlogHandler(l), slog.LevelError)
}

type slogHandler struct {
	log    *Logger
	groups []string
	// attrs added through WithAttrs, already rendered with the groups that
	// were open at the time.
	attrs string
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	lvl := h.log.GetLevel()
	return lvl != LevelNone && fromSlog(level) >= lvl
}

func (h *slogHandler) Handle(_ context.Context, record slog.Record) error {
	var b strings.Builder
	b.WriteString(record.Message)
	b.WriteString(h.attrs)
	record.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.groups, a)
		return true
	})

	h.log.logf(fromSlog(record.Level), "%s", b.String())
	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		writeAttr(&b, h.groups, a)
	}
	return &slogHandler{
		log:    h.log,
		groups: h.groups,
		attrs:  b.String(),
	}
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &slogHandler{
		log:    h.log,
		groups: append(append([]string(nil), h.groups...), name),
		attrs:  h.attrs,
	}
}

func fromSlog(level slog.Level) Level {
	switch {
	case level >= slog.LevelError:
		return LevelError
	case level >= slog.LevelWarn:
		return LevelWarn
	case level >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}

func writeAttr(b *strings.Builder, groups []string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		nested := append(append([]string(nil), groups...), a.Key)
		for _, ga := range a.Value.Group() {
			writeAttr(b, nested, ga)
		}
		return
	}

	b.WriteByte(' ')
	for _, g := range groups {
		b.WriteString(g)
		b.WriteByte('.')
	}
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(a.Value.String())
}
