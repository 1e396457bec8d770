package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alfredjeanlab/records/internal/events"
)

const (
	// streamBacklog is how many recent events are kept for Last-Event-ID replay.
	streamBacklog = 256

	// streamKeepalive is how often an idle stream gets a comment line.
	streamKeepalive = 15 * time.Second

	// streamClientBuffer is the per-client queue length. Events for a full
	// queue are dropped.
	streamClientBuffer = 64
)

// streamEvent is one published event as sent over server-sent events.
type streamEvent struct {
	Seq   uint64
	Topic string
	Data  []byte
}

// Stream fans published events out to HTTP clients. It implements
// events.Publisher so it can sit beside the bus publisher.
type Stream struct {
	mu      sync.Mutex
	seq     uint64
	backlog []streamEvent
	clients map[chan streamEvent][]string

	closeOnce sync.Once
	done      chan struct{}
}

var _ events.Publisher = (*Stream)(nil)

// NewStream returns an empty Stream.
func NewStream() *Stream {
	return &Stream{
		clients: make(map[chan streamEvent][]string),
		done:    make(chan struct{}),
	}
}

// Publish implements events.Publisher.
func (h *Stream) Publish(_ context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", topic, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	evt := streamEvent{Seq: h.seq, Topic: topic, Data: data}
	h.backlog = append(h.backlog, evt)
	if len(h.backlog) > streamBacklog {
		h.backlog = h.backlog[len(h.backlog)-streamBacklog:]
	}
	for ch, patterns := range h.clients {
		if !matchAny(patterns, topic) {
			continue
		}
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

// Close implements events.Publisher. It ends every open stream response.
func (h *Stream) Close() error {
	h.closeOnce.Do(func() { close(h.done) })
	return nil
}

// subscribe registers a client and returns its queue plus any backlog
// events newer than after. Both are filtered by patterns.
func (h *Stream) subscribe(patterns []string, after uint64) (chan streamEvent, []streamEvent) {
	ch := make(chan streamEvent, streamClientBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[ch] = patterns

	var replay []streamEvent
	if after > 0 {
		for _, evt := range h.backlog {
			if evt.Seq > after && matchAny(patterns, evt.Topic) {
				replay = append(replay, evt)
			}
		}
	}
	return ch, replay
}

func (h *Stream) unsubscribe(ch chan streamEvent) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

// matchAny reports whether topic matches one of patterns. No patterns
// matches everything.
func matchAny(patterns []string, topic string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if MatchTopic(p, topic) {
			return true
		}
	}
	return false
}

// MatchTopic matches a dot-separated topic against a NATS-style pattern:
// "*" matches one segment and a trailing ">" matches one or more.
func MatchTopic(pattern, topic string) bool {
	pat := strings.Split(pattern, ".")
	top := strings.Split(topic, ".")
	for i, p := range pat {
		if p == ">" {
			return i == len(pat)-1 && i < len(top)
		}
		if i >= len(top) || (p != "*" && p != top[i]) {
			return false
		}
	}
	return len(pat) == len(top)
}

// handleEventStream handles GET /api/events/stream. Optional query
// parameter topics is a comma-separated list of patterns.
func (s *RecordsServer) handleEventStream(w http.ResponseWriter, r *http.Request) {
	if s.stream == nil {
		writeError(w, http.StatusNotFound, "event stream is not enabled")
		return
	}

	var patterns []string
	for _, p := range strings.Split(r.URL.Query().Get("topics"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	var after uint64
	if v := r.Header.Get("Last-Event-ID"); v != "" {
		after, _ = strconv.ParseUint(v, 10, 64)
	}

	ch, replay := s.stream.subscribe(patterns, after)
	defer s.stream.unsubscribe(ch)

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	for _, evt := range replay {
		writeStreamEvent(w, evt)
	}
	if err := rc.Flush(); err != nil {
		s.logger.Warn("event stream flush failed", "error", err)
		return
	}

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.stream.done:
			return
		case evt := <-ch:
			writeStreamEvent(w, evt)
		case <-keepalive.C:
			_, _ = io.WriteString(w, ":keepalive\n\n")
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeStreamEvent(w io.Writer, evt streamEvent) {
	fmt.Fprintf(w, "id:%d\nevent:%s\ndata:%s\n\n", evt.Seq, evt.Topic, evt.Data)
}
