package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultSinkSize is the number of entries the daemon keeps for the UI.
const DefaultSinkSize = 100

// Entry is one formatted log line held by a Sink.
type Entry struct {
	ID      uint64    `json:"id"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Sink is an append-only ring of log entries. When full, the oldest entry is
// evicted. It is safe for concurrent use.
type Sink struct {
	mu     sync.Mutex
	buf    []Entry
	start  int
	size   int
	nextID uint64
}

// NewSink returns a Sink holding at most capacity entries.
func NewSink(capacity int) *Sink {
	if capacity <= 0 {
		capacity = DefaultSinkSize
	}
	return &Sink{buf: make([]Entry, capacity)}
}

// Append records msg and returns the stored entry.
func (s *Sink) Append(msg string, at time.Time) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	e := Entry{ID: s.nextID, Message: msg, Time: at}
	if s.size < len(s.buf) {
		s.buf[(s.start+s.size)%len(s.buf)] = e
		s.size++
	} else {
		s.buf[s.start] = e
		s.start = (s.start + 1) % len(s.buf)
	}
	return e
}

// Entries returns the buffered entries, oldest first.
func (s *Sink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, s.size)
	for i := range out {
		out[i] = s.buf[(s.start+i)%len(s.buf)]
	}
	return out
}

// teeHandler forwards records to an inner handler and copies them into a Sink.
type teeHandler struct {
	inner  slog.Handler
	sink   *Sink
	level  slog.Leveler
	prefix string // pre-rendered attrs from WithAttrs
	group  string
}

// Tee wraps inner so that records at or above level are also appended to sink.
func Tee(inner slog.Handler, sink *Sink, level slog.Leveler) slog.Handler {
	return &teeHandler{inner: inner, sink: sink, level: level}
}

func (h *teeHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level() || h.inner.Enabled(ctx, l)
}

func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level.Level() {
		at := r.Time
		if at.IsZero() {
			at = time.Now()
		}
		h.sink.Append(h.format(r), at)
	}
	if !h.inner.Enabled(ctx, r.Level) {
		return nil
	}
	return h.inner.Handle(ctx, r)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.prefix)
	for _, a := range attrs {
		writeAttr(&b, h.group, a)
	}
	return &teeHandler{
		inner:  h.inner.WithAttrs(attrs),
		sink:   h.sink,
		level:  h.level,
		prefix: b.String(),
		group:  h.group,
	}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &teeHandler{
		inner:  h.inner.WithGroup(name),
		sink:   h.sink,
		level:  h.level,
		prefix: h.prefix,
		group:  h.group + name + ".",
	}
}

func (h *teeHandler) format(r slog.Record) string {
	var b strings.Builder
	b.WriteString(r.Level.String())
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.group, a)
		return true
	})
	return b.String()
}

func writeAttr(b *strings.Builder, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		sub := group
		if a.Key != "" {
			sub += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, sub, ga)
		}
		return
	}
	fmt.Fprintf(b, " %s%s=%v", group, a.Key, a.Value.Any())
}
