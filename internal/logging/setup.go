package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/Olprog59/go-prodtrack/internal/config"
)

// ParseLevel maps a config level to slog, info when unknown.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New builds the logger described by conf, writing console output to w.
// The returned close function flushes Loki when enabled.
// Construit le logger décrit par conf; la fonction retournée vide le lot Loki.
func New(conf *config.Config, w io.Writer) (*slog.Logger, func() error) {
	level := ParseLevel(conf.Logging.Level)

	var console slog.Handler
	if strings.EqualFold(conf.Logging.Format, "json") {
		console = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: conf.IsProduction()})
	} else {
		console = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}

	if !conf.Logging.LokiEnabled {
		return slog.New(console), func() error { return nil }
	}

	labels := map[string]string{"env": conf.Environment}
	for k, v := range conf.Logging.LokiLabels {
		labels[k] = v
	}
	loki := NewLokiHandler(conf.Logging.LokiURL, labels, conf.Logging.LokiBatchSize, level)
	return slog.New(Fanout(console, loki)), loki.Close
}

// Fanout sends every record to all handlers / Diffuse chaque log à tous les handlers
func Fanout(handlers ...slog.Handler) slog.Handler {
	return fanout(handlers)
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
