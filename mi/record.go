package mi

import (
	"fmt"
	"strconv"
)

// ResultClass classifies a result record's outcome.
type ResultClass string

// Result classes defined by the MI grammar.
const (
	ResultDone      ResultClass = "done"
	ResultRunning   ResultClass = "running"
	ResultConnected ResultClass = "connected"
	ResultError     ResultClass = "error"
	ResultExit      ResultClass = "exit"
)

// valid reports whether the class is one the grammar allows.
func (c ResultClass) valid() bool {
	switch c {
	case ResultDone, ResultRunning, ResultConnected, ResultError, ResultExit:
		return true
	default:
		return false
	}
}

// AsyncKind distinguishes the three async record categories.
type AsyncKind int

const (
	// AsyncExec ("*") reports execution state changes of the debuggee.
	AsyncExec AsyncKind = iota
	// AsyncStatus ("+") reports progress of a long-running operation.
	AsyncStatus
	// AsyncNotify ("=") reports notifications such as thread-group events.
	AsyncNotify
)

// String returns the kind's prefix character.
func (k AsyncKind) String() string {
	switch k {
	case AsyncExec:
		return "*"
	case AsyncStatus:
		return "+"
	case AsyncNotify:
		return "="
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// StreamKind distinguishes the three stream record categories.
type StreamKind int

const (
	// StreamConsole ("~") is console output intended for the user.
	StreamConsole StreamKind = iota
	// StreamTarget ("@") is output produced by the debuggee.
	StreamTarget
	// StreamLog ("&") is GDB's own log/echo output.
	StreamLog
)

// String returns the kind's prefix character.
func (k StreamKind) String() string {
	switch k {
	case StreamConsole:
		return "~"
	case StreamTarget:
		return "@"
	case StreamLog:
		return "&"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Record is one parsed MI output line.
type Record interface {
	record()
}

// Result is a response to a sent command.
type Result struct {
	// Token is the correlation token echoed from the command, if any.
	Token uint64

	// HasToken reports whether the record carried a token prefix.
	HasToken bool

	// Class is the result class (done, running, connected, error, exit).
	Class ResultClass

	// Data holds the record's key/value payload. Never nil.
	Data *Tuple
}

func (r *Result) record() {}

// String renders the record in MI wire syntax. Token and class round-trip
// losslessly through ParseLine.
func (r *Result) String() string {
	var prefix string
	if r.HasToken {
		prefix = strconv.FormatUint(r.Token, 10)
	}
	s := prefix + "^" + string(r.Class)
	if r.Data.Len() > 0 {
		s += "," + r.Data.renderBody()
	}
	return s
}

// ErrorMessage returns the "msg" field of an error result, or the empty
// string when absent. Only meaningful when Class is ResultError.
func (r *Result) ErrorMessage() string {
	msg, _ := r.Data.GetString("msg")
	return msg
}

// Async is a spontaneous notification not tied to a command's result.
type Async struct {
	// Kind is the async category (exec, status, notify).
	Kind AsyncKind

	// Class is the MI async class name, e.g. "stopped" or "running".
	Class string

	// Data holds the record's key/value payload. Never nil.
	Data *Tuple
}

func (r *Async) record() {}

// String renders the record in MI wire syntax.
func (r *Async) String() string {
	s := r.Kind.String() + r.Class
	if r.Data.Len() > 0 {
		s += "," + r.Data.renderBody()
	}
	return s
}

// Stream is raw text output for display.
type Stream struct {
	// Kind is the stream category (console, target, log).
	Kind StreamKind

	// Text is the decoded payload.
	Text string
}

func (r *Stream) record() {}

// String renders the record in MI wire syntax.
func (r *Stream) String() string {
	return r.Kind.String() + String(r.Text).String()
}

// Prompt is the "(gdb)" end-of-output marker. It frames record groups and
// is not forwarded to consumers.
type Prompt struct{}

func (Prompt) record() {}

// String returns the literal prompt line.
func (Prompt) String() string { return "(gdb)" }

// ParseError reports a line that does not match the MI grammar.
type ParseError struct {
	// Line is the offending input, trailing newline stripped.
	Line string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed mi record: %q", e.Line)
}
