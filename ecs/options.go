package ecs

import "go.uber.org/zap"

const (
	// DefaultMaxTypes is the number of distinct component types a registry
	// accepts unless WithMaxTypes says otherwise.
	DefaultMaxTypes = 64

	// DefaultEntityBatchSize is how many entity rows are added each time the
	// entity index runs out of room.
	DefaultEntityBatchSize = 100

	// wordSize is the arena backing granularity and the largest alignment
	// a slot can honour.
	wordSize = 8
)

// Option configures a ComponentRegistry or a Storage.
type Option func(*options)

type options struct {
	maxTypes        int
	entityBatchSize int
	logger          *zap.Logger
}

// WithMaxTypes sets the registry capacity. Values below 1 are ignored.
func WithMaxTypes(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxTypes = n
		}
	}
}

// WithEntityBatchSize sets the entity index growth step. Values below 1 are ignored.
func WithEntityBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.entityBatchSize = n
		}
	}
}

// WithLogger sets the logger used for registration and misuse reports.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		maxTypes:        DefaultMaxTypes,
		entityBatchSize: DefaultEntityBatchSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// loggerOr returns the configured logger, or fallback when none was given.
func (o options) loggerOr(fallback *zap.Logger) *zap.Logger {
	if o.logger != nil {
		return o.logger
	}
	if fallback != nil {
		return fallback
	}
	return zap.NewNop()
}
