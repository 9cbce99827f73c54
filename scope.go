package traceview

import (
	"context"

	"github.com/traceview/traceview/event"
)

type scopeKey struct{}

// WithScope returns a context carrying a named capture scope. Events
// captured through Handler while the context is active carry the
// scope as their context record.
func WithScope(ctx context.Context, name string, fields event.Fields) context.Context {
	return context.WithValue(ctx, scopeKey{}, &event.Scope{Name: name, Fields: fields})
}

// ScopeFrom returns the active capture scope, or nil when the context
// carries none.
func ScopeFrom(ctx context.Context) *event.Scope {
	if ctx == nil {
		return nil
	}
	scope, _ := ctx.Value(scopeKey{}).(*event.Scope)
	return scope
}
