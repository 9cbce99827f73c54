package traceview

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/traceview/traceview/hub"
)

// DefaultCapacity is the default bound of the event store.
const DefaultCapacity = 10_000

const (
	defaultMaxFields        = 64
	defaultMaxFieldValueLen = 4096
)

// Options configures a Console. The zero value is usable; every zero
// field falls back to its default.
type Options struct {
	// Capacity bounds the event store; the oldest event is evicted
	// once it is exceeded. Values below 1 are clamped to 1.
	Capacity int `env:"TRACEVIEW_CAPACITY" envDefault:"10000"`
	// StreamBuffer is the per-subscriber live delivery queue bound.
	StreamBuffer int `env:"TRACEVIEW_STREAM_BUFFER" envDefault:"256"`
	// StreamMaxDrops is the consecutive-overflow count after which a
	// slow live subscriber is forcibly unsubscribed.
	StreamMaxDrops int `env:"TRACEVIEW_STREAM_MAX_DROPS" envDefault:"64"`
	// MaxFields caps the number of fields kept per event; extra fields
	// are dropped at capture, never reported as an error.
	MaxFields int `env:"TRACEVIEW_MAX_FIELDS" envDefault:"64"`
	// MaxFieldValueLen caps the byte length of a single field value.
	MaxFieldValueLen int `env:"TRACEVIEW_MAX_FIELD_VALUE_LEN" envDefault:"4096"`
}

// OptionsFromEnv loads Options from TRACEVIEW_* environment variables,
// applying the documented defaults for unset ones.
func OptionsFromEnv() (Options, error) {
	var opts Options
	if err := env.Parse(&opts); err != nil {
		return Options{}, fmt.Errorf("parse env: %w", err)
	}
	return opts, nil
}

func (o Options) withDefaults() Options {
	if o.Capacity == 0 {
		o.Capacity = DefaultCapacity
	}
	if o.StreamBuffer == 0 {
		o.StreamBuffer = hub.DefaultQueueSize
	}
	if o.StreamMaxDrops == 0 {
		o.StreamMaxDrops = hub.DefaultMaxConsecutiveDrops
	}
	if o.MaxFields == 0 {
		o.MaxFields = defaultMaxFields
	}
	if o.MaxFieldValueLen == 0 {
		o.MaxFieldValueLen = defaultMaxFieldValueLen
	}
	return o
}
