package gdbmi

import "github.com/dshills/gdbmi/mi"

// Event is something the debugger reported on its own initiative, as
// opposed to a direct reply to a command. Events are delivered in the
// order their records arrived on the wire.
type Event interface {
	event()
}

// AsyncEvent carries an exec, status or notify record.
type AsyncEvent struct {
	Record *mi.Async
}

func (*AsyncEvent) event() {}

// StreamEvent carries console, target or log output. Debugger stderr
// is forwarded as log stream output.
type StreamEvent struct {
	Record *mi.Stream
}

func (*StreamEvent) event() {}

// DiagnosticEvent reports a protocol anomaly: a line that failed to
// parse, or a result record with no matching pending command. The raw
// line is kept so nothing is silently dropped.
type DiagnosticEvent struct {
	Line string
	Err  error
}

func (*DiagnosticEvent) event() {}
