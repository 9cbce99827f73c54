// Package event defines the immutable record type that flows through
// the telemetry console: a leveled, origin-tagged message with ordered
// string attributes and an optional capture-time scope.
package event

import "time"

// OriginDelimiter separates the segments of a hierarchical origin,
// e.g. "svc::db::pool".
const OriginDelimiter = "::"

// Scope describes the logical operation that was active when an event
// was captured.
type Scope struct {
	Name   string `json:"name"`
	Fields Fields `json:"fields"`
}

// Event is a single captured telemetry record. Events are never
// mutated after creation; Sequence is assigned by the store at capture
// time and strictly increases for the lifetime of one store instance,
// independent of wall-clock time.
type Event struct {
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Origin    string    `json:"target"`
	Message   string    `json:"message"`
	Fields    Fields    `json:"fields"`
	Scope     *Scope    `json:"context,omitempty"`
}
