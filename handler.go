package traceview

import (
	"context"
	"log/slog"
	"strings"

	"github.com/traceview/traceview/event"
)

// LevelTrace is the slog level captured as event.LevelTrace. slog has
// no trace constant of its own; this follows the usual convention of
// one step below debug.
const LevelTrace = slog.LevelDebug - 4

// HandlerOptions configures a capture Handler.
type HandlerOptions struct {
	// Origin is the base origin recorded for captured events. Logger
	// groups (slog.Logger.WithGroup) extend it segment by segment,
	// joined with the origin delimiter: a handler with Origin "svc"
	// used through WithGroup("db") captures origin "svc::db".
	Origin string
	// IgnoreOrigins suppresses capture for events whose origin equals
	// one of the entries or descends from it. Use it to keep the
	// console's own transport from feeding back into the store.
	IgnoreOrigins []string
}

// Handler is a slog.Handler that captures every record into a Console.
// It never reports an error to the logger and never blocks beyond the
// capture path's short exclusive sections, so it is safe on the host's
// request path. Pair it with any other handler via a fan-out wrapper
// if records should also reach the process log.
type Handler struct {
	console *Console
	opts    HandlerOptions
	attrs   []slog.Attr
	groups  []string
}

// NewHandler creates a capture handler bound to c.
func NewHandler(c *Console, opts HandlerOptions) *Handler {
	return &Handler{console: c, opts: opts}
}

// Enabled reports true for every level: severity filtering is a query
// concern, not a capture concern.
func (h *Handler) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle captures the record. It always returns nil.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	origin := h.origin()
	if h.ignored(origin) {
		return nil
	}

	fields := make(event.Fields, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields = appendAttr(fields, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, "", a)
		return true
	})

	h.console.Capture(levelFromSlog(r.Level), origin, r.Message, fields, ScopeFrom(ctx))
	return nil
}

// WithAttrs returns a handler that records attrs on every event.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &h2
}

// WithGroup returns a handler whose origin gains one more segment.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string(nil), h.groups...), name)
	return &h2
}

func (h *Handler) origin() string {
	if len(h.groups) == 0 {
		return h.opts.Origin
	}
	segments := make([]string, 0, len(h.groups)+1)
	if h.opts.Origin != "" {
		segments = append(segments, h.opts.Origin)
	}
	segments = append(segments, h.groups...)
	return strings.Join(segments, event.OriginDelimiter)
}

func (h *Handler) ignored(origin string) bool {
	for _, prefix := range h.opts.IgnoreOrigins {
		if origin == prefix || strings.HasPrefix(origin, prefix+event.OriginDelimiter) {
			return true
		}
	}
	return false
}

// appendAttr flattens a into fields. Group values flatten with a
// dotted key prefix; inline (empty-key) groups keep their members'
// keys unqualified.
func appendAttr(fields event.Fields, prefix string, a slog.Attr) event.Fields {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		next := prefix
		if a.Key != "" {
			next = prefix + a.Key + "."
		}
		for _, member := range a.Value.Group() {
			fields = appendAttr(fields, next, member)
		}
		return fields
	}
	if a.Key == "" {
		return fields
	}
	return fields.Set(prefix+a.Key, a.Value.String())
}

func levelFromSlog(l slog.Level) event.Level {
	switch {
	case l < slog.LevelDebug:
		return event.LevelTrace
	case l < slog.LevelInfo:
		return event.LevelDebug
	case l < slog.LevelWarn:
		return event.LevelInfo
	case l < slog.LevelError:
		return event.LevelWarn
	default:
		return event.LevelError
	}
}
