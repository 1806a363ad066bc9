package gdbmi

import "errors"

// Standard errors returned by the engine.
var (
	// ErrNotReady indicates a command was rejected because the debuggee
	// is running. Nothing is written to the debugger in that case.
	ErrNotReady = errors.New("debuggee is running, commands not accepted")

	// ErrTransportClosed indicates the debugger process exited or its
	// pipes broke. Every pending command resolves with this exactly once.
	ErrTransportClosed = errors.New("debugger transport closed")

	// ErrSessionClosed indicates the session has been closed.
	ErrSessionClosed = errors.New("session closed")

	// ErrUnmatchedResult indicates a result record arrived with no token
	// or an unknown token. A protocol anomaly, surfaced as a diagnostic
	// event rather than a failure.
	ErrUnmatchedResult = errors.New("result record matches no pending command")

	// ErrEmptyCommand indicates a command with no text was submitted.
	ErrEmptyCommand = errors.New("empty command")
)
