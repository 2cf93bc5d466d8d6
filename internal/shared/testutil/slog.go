package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogRecord is a captured log record with its attributes flattened.
// Grouped keys are joined with dots.
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Attr returns the value of key rendered as a string.
func (r LogRecord) Attr(key string) (string, bool) {
	v, ok := r.Attrs[key]
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return slog.AnyValue(v).String(), true
}

type logStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// LogRecorder is a slog.Handler that keeps every record in memory.
// Handlers derived with WithAttrs or WithGroup share the same store.
type LogRecorder struct {
	store  *logStore
	attrs  []slog.Attr
	prefix string
	level  slog.Leveler
	t      testing.TB
}

// NewLogRecorder creates a recorder capturing records at level and above.
// When t is not nil every record is echoed with t.Logf.
func NewLogRecorder(t testing.TB, level slog.Leveler) *LogRecorder {
	if level == nil {
		level = slog.LevelDebug
	}
	return &LogRecorder{store: &logStore{}, level: level, t: t}
}

// NewTestLogger returns a logger writing into a fresh recorder.
func NewTestLogger(t testing.TB) (*slog.Logger, *LogRecorder) {
	rec := NewLogRecorder(t, slog.LevelDebug)
	return slog.New(rec), rec
}

// Enabled implements slog.Handler
func (h *LogRecorder) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler
func (h *LogRecorder) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		flatten(attrs, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		flatten(attrs, h.prefix, a)
		return true
	})

	h.store.mu.Lock()
	h.store.records = append(h.store.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	h.store.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs implements slog.Handler
func (h *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr{}, h.attrs...), prefixed(h.prefix, attrs)...)
	return &c
}

// WithGroup implements slog.Handler
func (h *LogRecorder) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

// Records returns a copy of the captured records in arrival order.
func (h *LogRecorder) Records() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	out := make([]LogRecord, len(h.store.records))
	copy(out, h.store.records)
	return out
}

// Find returns the records at level whose message contains msg and
// which carry every key/value pair of kv.
func (h *LogRecorder) Find(level slog.Level, msg string, kv ...string) []LogRecord {
	var found []LogRecord
	for _, r := range h.Records() {
		if r.Level != level || !strings.Contains(r.Message, msg) {
			continue
		}
		if matches(r, kv) {
			found = append(found, r)
		}
	}
	return found
}

// Messages lists the captured messages in arrival order.
func (h *LogRecorder) Messages() []string {
	records := h.Records()
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Message
	}
	return out
}

// Reset drops the captured records.
func (h *LogRecorder) Reset() {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.records = nil
}

// AssertLogged fails t unless a record at level matches msg and kv.
func AssertLogged(t testing.TB, h *LogRecorder, level slog.Level, msg string, kv ...string) bool {
	t.Helper()
	if len(h.Find(level, msg, kv...)) > 0 {
		return true
	}
	t.Errorf("no %s record %q with %v", level, msg, kv)
	for _, r := range h.Records() {
		t.Logf("  [%s] %s %v", r.Level, r.Message, r.Attrs)
	}
	return false
}

// AssertNoErrors fails t if any error record was captured.
func AssertNoErrors(t testing.TB, h *LogRecorder) bool {
	t.Helper()
	errs := h.Find(slog.LevelError, "")
	for _, r := range errs {
		t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
	}
	return len(errs) == 0
}

func matches(r LogRecord, kv []string) bool {
	for i := 0; i+1 < len(kv); i += 2 {
		if v, ok := r.Attr(kv[i]); !ok || v != kv[i+1] {
			return false
		}
	}
	return true
}

func flatten(dst map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range v.Group() {
			flatten(dst, p, ga)
		}
		return
	}
	dst[prefix+a.Key] = v.Any()
}

func prefixed(prefix string, attrs []slog.Attr) []slog.Attr {
	if prefix == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}
	return out
}
