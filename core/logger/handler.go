package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

type logFormat int

const (
	formatJSON logFormat = iota
	formatKV
)

// keyOrder fixes the attribute ordering so log lines stay grep-friendly and
// diffable. Unknown keys follow in insertion order.
var keyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"update_id",
	"user_id",
	"chat_id",
	"handler",
	"dialog",
	"state",
	"depth",
	"cb_key",
	"page",
	"pages",
	"count",
	"song_id",
	"person_id",
	"participation_id",
	"pending_role_id",
	"role",
	"delivered",
	"failed",
	"duration_ms",
	"err",
	"err_code",
	"cause",
}

type handlerConfig struct {
	level  slog.Leveler
	out    []io.Writer
	format logFormat
}

// structuredHandler renders records as either key=value lines or single-line
// JSON with a deterministic key order, fanning out to every configured sink
// under one mutex.
type structuredHandler struct {
	cfg   handlerConfig
	attrs []slog.Attr
	mu    *sync.Mutex
	rank  map[string]int
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	rank := make(map[string]int, len(keyOrder))
	for i, k := range keyOrder {
		rank[k] = i
	}
	return &structuredHandler{cfg: cfg, mu: &sync.Mutex{}, rank: rank}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.cfg.level != nil {
		min = h.cfg.level.Level()
	}
	return level >= min
}

func (h *structuredHandler) Handle(ctx context.Context, rec slog.Record) error {
	pairs := make([]slog.Attr, 0, rec.NumAttrs()+len(h.attrs)+8)
	pairs = append(pairs,
		slog.String("ts", rec.Time.Format(time.RFC3339Nano)),
		slog.String("level", rec.Level.String()),
	)
	pairs = append(pairs, h.attrs...)
	rec.Attrs(func(a slog.Attr) bool {
		pairs = append(pairs, a)
		return true
	})
	if rec.Message != "" && !hasKey(pairs, "event") {
		pairs = append(pairs, slog.String("event", rec.Message))
	}
	pairs = append(pairs, contextAttrs(ctx, pairs)...)
	h.sort(pairs)

	var line []byte
	switch h.cfg.format {
	case formatKV:
		line = renderKV(pairs)
	default:
		line = renderJSON(pairs)
	}
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, w := range h.cfg.out {
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	// Groups are flattened; the fixed key schema has no nested scopes.
	return h
}

// sort is a stable insertion sort by schema rank; attr lists are short.
func (h *structuredHandler) sort(pairs []slog.Attr) {
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && h.less(pairs[j], pairs[j-1]); j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
}

func (h *structuredHandler) less(a, b slog.Attr) bool {
	ra, aok := h.rank[a.Key]
	rb, bok := h.rank[b.Key]
	switch {
	case aok && bok:
		return ra < rb
	case aok:
		return true
	default:
		return false
	}
}

func hasKey(pairs []slog.Attr, key string) bool {
	for _, a := range pairs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// contextAttrs lifts request metadata stored in ctx into attributes unless
// the record already carries them.
func contextAttrs(ctx context.Context, existing []slog.Attr) []slog.Attr {
	var out []slog.Attr
	if rid := RIDFrom(ctx); rid != "" && !hasKey(existing, "rid") {
		out = append(out, slog.String("rid", rid))
	}
	if id := UpdateIDFrom(ctx); id != 0 && !hasKey(existing, "update_id") {
		out = append(out, slog.Int("update_id", id))
	}
	if id := UserIDFrom(ctx); id != 0 && !hasKey(existing, "user_id") {
		out = append(out, slog.Int64("user_id", id))
	}
	if id := ChatIDFrom(ctx); id != 0 && !hasKey(existing, "chat_id") {
		out = append(out, slog.Int64("chat_id", id))
	}
	if handler := HandlerFrom(ctx); handler != "" && !hasKey(existing, "handler") {
		out = append(out, slog.String("handler", handler))
	}
	return out
}

func renderKV(pairs []slog.Attr) []byte {
	var b strings.Builder
	for i, a := range pairs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(kvValue(a.Value))
	}
	return []byte(b.String())
}

func kvValue(v slog.Value) string {
	s := v.String()
	if s == "" || strings.ContainsAny(s, " \t\"=") {
		return strconv.Quote(s)
	}
	return s
}

func renderJSON(pairs []slog.Attr) []byte {
	var b strings.Builder
	b.WriteByte('{')
	for i, a := range pairs {
		if i > 0 {
			b.WriteByte(',')
		}
		key, _ := json.Marshal(a.Key)
		b.Write(key)
		b.WriteByte(':')
		b.Write(jsonValue(a.Value))
	}
	b.WriteByte('}')
	return []byte(b.String())
}

func jsonValue(v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindInt64:
		return []byte(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return []byte(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindBool:
		return []byte(strconv.FormatBool(v.Bool()))
	case slog.KindFloat64:
		return []byte(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindDuration:
		data, _ := json.Marshal(v.Duration().String())
		return data
	default:
		data, err := json.Marshal(v.Any())
		if err != nil {
			data, _ = json.Marshal(fmt.Sprint(v.Any()))
		}
		return data
	}
}
