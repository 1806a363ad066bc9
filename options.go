package gdbmi

import "github.com/dshills/gdbmi/adapters"

// DefaultEventBuffer is the default capacity of the event channel.
const DefaultEventBuffer = 128

type options struct {
	logger      *Logger
	adapter     adapters.Adapter
	eventBuffer int
}

// Option configures a session.
type Option func(*options)

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAdapter selects the debugger adapter to launch. The default is
// the GDB adapter with its binary resolved from the GDB_BINARY
// environment variable.
func WithAdapter(a adapters.Adapter) Option {
	return func(o *options) {
		o.adapter = a
	}
}

// WithEventBuffer sets the event channel capacity. Dispatch blocks when
// the buffer is full, so a slow consumer applies backpressure to the
// debugger's output instead of losing events.
func WithEventBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.eventBuffer = n
		}
	}
}

func applyOptions(opts []Option) *options {
	o := &options{
		logger:      NullLogger,
		eventBuffer: DefaultEventBuffer,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
