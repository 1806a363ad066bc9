package gdbmi

import (
	"strconv"
	"sync"

	"github.com/dshills/gdbmi/mi"
)

// ExecutionState describes what the debuggee is doing right now.
type ExecutionState int

const (
	// StateIdle means no debuggee has been started yet.
	StateIdle ExecutionState = iota
	// StateRunning means the debuggee is executing. The debugger does
	// not accept commands in this state.
	StateRunning
	// StateStopped means the debuggee is halted at a breakpoint, signal
	// or step boundary. Commands are accepted.
	StateStopped
	// StateExited means the debuggee has terminated. Terminal state.
	StateExited
)

// String returns the string representation of the execution state.
func (s ExecutionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// stateMachine tracks the debuggee's execution state from the record
// stream. State only changes in response to observed records, never
// speculatively when a command is sent.
type stateMachine struct {
	mu          sync.RWMutex
	state       ExecutionState
	pid         int
	exitCode    int
	hasExitCode bool
}

func newStateMachine() *stateMachine {
	return &stateMachine{state: StateIdle}
}

// current returns the execution state.
func (m *stateMachine) current() ExecutionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// canSend reports whether the debugger accepts commands in the current
// state.
func (m *stateMachine) canSend() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateIdle || m.state == StateStopped
}

// debuggeePID returns the debuggee process ID, if one has been observed.
func (m *stateMachine) debuggeePID() (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pid, m.pid > 0
}

// exitStatus returns the debuggee exit code, if one was reported.
func (m *stateMachine) exitStatus() (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.exitCode, m.hasExitCode
}

// apply updates the state from a parsed record and reports the
// transition. Exited is terminal, later records never leave it.
func (m *stateMachine) apply(rec mi.Record) (from, to ExecutionState, changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from = m.state
	if m.state == StateExited {
		return from, from, false
	}

	switch r := rec.(type) {
	case *mi.Result:
		switch r.Class {
		case mi.ResultRunning:
			m.state = StateRunning
		case mi.ResultExit:
			m.state = StateExited
		}

	case *mi.Async:
		switch {
		case r.Kind == mi.AsyncExec && r.Class == "running":
			m.state = StateRunning
		case r.Kind == mi.AsyncExec && r.Class == "stopped":
			m.state = StateStopped
		case r.Kind == mi.AsyncNotify && r.Class == "thread-group-exited":
			m.state = StateExited
			if code, ok := r.Data.GetString("exit-code"); ok {
				// GDB reports exit-code in octal with a leading zero.
				if n, err := strconv.ParseInt(code, 0, 32); err == nil {
					m.exitCode = int(n)
					m.hasExitCode = true
				}
			}
		case r.Kind == mi.AsyncNotify && m.pid == 0:
			if text, ok := r.Data.GetString("pid"); ok {
				if n, err := strconv.Atoi(text); err == nil && n > 0 {
					m.pid = n
				}
			}
		}
	}

	return from, m.state, m.state != from
}

// forceExited moves to the terminal state without an exit code. Used
// when the transport dies underneath a live session.
func (m *stateMachine) forceExited() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateExited
}
