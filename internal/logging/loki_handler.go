// Package logging builds the slog handlers of the server: console output and
// an optional batched push to Grafana Loki.
package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const flushInterval = 5 * time.Second

// LokiHandler is a slog.Handler pushing JSON lines to Loki over HTTP.
// Records are batched and a failed push never fails the caller.
// Envoie les logs en JSON à Loki par lots, sans jamais bloquer l'appelant.
type LokiHandler struct {
	sink   *lokiSink
	level  slog.Leveler
	attrs  []boundAttr
	groups []string
}

// boundAttr is an attribute added by WithAttrs under the groups open at the time.
type boundAttr struct {
	groups []string
	attr   slog.Attr
}

// lokiSink is shared by every handler derived through WithAttrs/WithGroup.
type lokiSink struct {
	url       string
	labels    map[string]string
	client    *http.Client
	batchSize int

	mu     sync.Mutex
	batch  []lokiEntry
	timer  *time.Timer
	closed bool

	// dropped counts pushes Loki rejected or never received.
	dropped int
}

type lokiEntry struct {
	timestamp time.Time
	line      string
}

type lokiPushRequest struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

// NewLokiHandler creates a handler pushing to baseURL (e.g. "http://loki:3100").
// A batchSize of 0 pushes every record immediately; otherwise records are also
// flushed every 5 seconds.
func NewLokiHandler(baseURL string, labels map[string]string, batchSize int, level slog.Leveler) *LokiHandler {
	copied := make(map[string]string, len(labels))
	for k, v := range labels {
		copied[k] = v
	}
	sink := &lokiSink{
		url:       baseURL + "/loki/api/v1/push",
		labels:    copied,
		client:    &http.Client{Timeout: 5 * time.Second},
		batchSize: batchSize,
		batch:     make([]lokiEntry, 0, max(batchSize, 1)),
	}
	if batchSize > 0 {
		sink.timer = time.AfterFunc(flushInterval, sink.periodicFlush)
	}
	return &LokiHandler{sink: sink, level: level}
}

func (h *LokiHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle renders r as one JSON object, groups become nested objects.
func (h *LokiHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"time":  r.Time.UTC().Format(time.RFC3339Nano),
		"level": r.Level.String(),
		"msg":   r.Message,
	}

	for _, b := range h.attrs {
		addAttr(descend(data, b.groups), b.attr)
	}
	target := descend(data, h.groups)
	r.Attrs(func(a slog.Attr) bool {
		addAttr(target, a)
		return true
	})

	line, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal log to JSON: %w", err)
	}
	return h.sink.add(lokiEntry{timestamp: r.Time, line: string(line)})
}

// descend returns the nested object of path, creating it when missing.
func descend(m map[string]any, path []string) map[string]any {
	for _, g := range path {
		next, ok := m[g].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[g] = next
		}
		m = next
	}
	return m
}

func addAttr(m map[string]any, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		sub := make(map[string]any)
		for _, ga := range v.Group() {
			addAttr(sub, ga)
		}
		if a.Key == "" {
			for k, val := range sub {
				m[k] = val
			}
			return
		}
		m[a.Key] = sub
		return
	}
	if a.Key == "" {
		return
	}
	if err, ok := v.Any().(error); ok {
		m[a.Key] = err.Error()
		return
	}
	m[a.Key] = v.Any()
}

func (h *LokiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]boundAttr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(clone.attrs, h.attrs)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, boundAttr{groups: h.groups, attr: a})
	}
	return &clone
}

func (h *LokiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// Flush pushes the pending batch now.
func (h *LokiHandler) Flush() error {
	return h.sink.flush()
}

// Close stops the periodic flush and pushes what is left.
func (h *LokiHandler) Close() error {
	h.sink.mu.Lock()
	h.sink.closed = true
	if h.sink.timer != nil {
		h.sink.timer.Stop()
	}
	h.sink.mu.Unlock()
	return h.sink.flush()
}

// Dropped returns how many pushes failed.
func (h *LokiHandler) Dropped() int {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return h.sink.dropped
}

func (s *lokiSink) add(e lokiEntry) error {
	s.mu.Lock()
	s.batch = append(s.batch, e)
	full := len(s.batch) >= s.batchSize
	s.mu.Unlock()

	if full {
		return s.flush()
	}
	return nil
}

func (s *lokiSink) flush() error {
	s.mu.Lock()
	if len(s.batch) == 0 {
		s.mu.Unlock()
		return nil
	}
	entries := s.batch
	s.batch = make([]lokiEntry, 0, cap(entries))
	s.mu.Unlock()

	values := make([][]string, len(entries))
	for i, e := range entries {
		// Loki expects [unix nanoseconds, line]
		values[i] = []string{strconv.FormatInt(e.timestamp.UnixNano(), 10), e.line}
	}
	body, err := json.Marshal(lokiPushRequest{Streams: []lokiStream{{Stream: s.labels, Values: values}}})
	if err != nil {
		return fmt.Errorf("failed to marshal push request: %w", err)
	}

	if err := s.push(body); err != nil {
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
	return nil
}

func (s *lokiSink) push(body []byte) error {
	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("loki returned %d", resp.StatusCode)
	}
	return nil
}

func (s *lokiSink) periodicFlush() {
	_ = s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.timer.Reset(flushInterval)
	}
}
