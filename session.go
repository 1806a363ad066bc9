package gdbmi

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/dshills/gdbmi/adapters"
	"github.com/dshills/gdbmi/mi"
	"github.com/dshills/gdbmi/process"
)

// shutdownTimeout bounds how long a closing session waits for the
// debugger process to exit before killing it.
const shutdownTimeout = 5 * time.Second

// Session is a live connection to one MI debugger. It owns the
// transport, correlates command replies by token, tracks the debuggee's
// execution state and delivers unsolicited records as events.
//
// All methods are safe for concurrent use.
type Session struct {
	id        string
	transport Transport
	logger    *Logger

	proc *process.Process
	sup  *process.Supervisor

	tokens  atomic.Uint64
	writeMu sync.Mutex

	pending *pendingTable
	machine *stateMachine

	events chan Event
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// Start launches a debugger process and returns a session attached to
// it. The debugger is the GDB adapter unless WithAdapter overrides it.
func Start(opts ...Option) (*Session, error) {
	o := applyOptions(opts)

	adapter := o.adapter
	if adapter == nil {
		a, err := adapters.NewGDB(adapters.Config{Type: adapters.TypeGDB})
		if err != nil {
			return nil, fmt.Errorf("default adapter: %w", err)
		}
		adapter = a
	}
	if err := adapter.Validate(); err != nil {
		return nil, fmt.Errorf("adapter config: %w", err)
	}

	cmd, err := adapter.Command()
	if err != nil {
		return nil, fmt.Errorf("adapter command: %w", err)
	}

	sup := process.NewSupervisor()
	proc, err := sup.Start(adapter.Name(), cmd)
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", adapter.Name(), err)
	}

	s := newSession(NewStdioTransport(proc), o, proc, sup)
	s.logger.Info("debugger started: %s pid=%d session=%s", adapter.Name(), proc.PID(), s.id)
	return s, nil
}

// NewSession attaches a session to an already-connected transport, such
// as a socket to a remote MI endpoint. The caller owns the lifetime of
// whatever is on the other end.
func NewSession(t Transport, opts ...Option) *Session {
	return newSession(t, applyOptions(opts), nil, nil)
}

func newSession(t Transport, o *options, proc *process.Process, sup *process.Supervisor) *Session {
	s := &Session{
		id:        uuid.New().String(),
		transport: t,
		logger:    o.logger,
		proc:      proc,
		sup:       sup,
		pending:   newPendingTable(),
		machine:   newStateMachine(),
		events:    make(chan Event, o.eventBuffer),
		done:      make(chan struct{}),
	}

	s.wg.Add(1)
	go s.dispatch()

	if proc != nil {
		s.wg.Add(1)
		go s.drainStderr()
	}

	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Events returns the channel of unsolicited debugger activity. It is
// closed after the session terminates and all events are delivered.
func (s *Session) Events() <-chan Event {
	return s.events
}

// ExecutionState returns the debuggee's current execution state.
func (s *Session) ExecutionState() ExecutionState {
	return s.machine.current()
}

// CanSendCommands reports whether a command sent now would be accepted.
func (s *Session) CanSendCommands() bool {
	select {
	case <-s.done:
		return false
	default:
	}
	return s.machine.canSend()
}

// DebuggeePID returns the debuggee's process ID once the debugger has
// reported one.
func (s *Session) DebuggeePID() (int, bool) {
	return s.machine.debuggeePID()
}

// ExitCode returns the debuggee's exit code once it has exited with a
// reported code.
func (s *Session) ExitCode() (int, bool) {
	return s.machine.exitStatus()
}

// Send submits one MI command and blocks until its result record
// arrives, the context is done, or the transport dies. A leading dash
// on the command text is optional.
//
// An ^error result is a successful round trip: the debugger's refusal
// comes back in the record, inspect Result.Class and ErrorMessage.
func (s *Session) Send(ctx context.Context, command string) (*mi.Result, error) {
	_, waiter, err := s.SendRaw(command)
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res, ok := <-waiter:
		if !ok {
			return nil, ErrTransportClosed
		}
		return res, nil
	}
}

// SendRaw submits one MI command without waiting. It returns the token
// assigned to the command and a channel that receives the result record,
// or is closed without a value if the transport dies first.
//
// Commands are rejected with ErrNotReady while the debuggee is running.
// Rejected commands write nothing to the transport.
func (s *Session) SendRaw(command string) (uint64, <-chan *mi.Result, error) {
	command = strings.TrimSpace(command)
	command = strings.TrimPrefix(command, "-")
	if command == "" {
		return 0, nil, ErrEmptyCommand
	}

	// Token assignment and the write happen under one lock so wire
	// order matches token order.
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	select {
	case <-s.done:
		return 0, nil, ErrSessionClosed
	default:
	}
	if !s.machine.canSend() {
		return 0, nil, ErrNotReady
	}

	token := s.tokens.Add(1)
	waiter, err := s.pending.register(token)
	if err != nil {
		return 0, nil, err
	}

	line := fmt.Sprintf("%d-%s", token, command)
	s.logger.Debug("send: %s", line)
	if err := s.transport.WriteLine(line); err != nil {
		s.pending.discard(token)
		return 0, nil, fmt.Errorf("writing command: %w", err)
	}
	return token, waiter, nil
}

// Interrupt sends SIGINT to the debuggee to halt it. It reports whether
// a signal was delivered: false when the debuggee is not running, its
// PID is not yet known, or the signal failed. The halt itself shows up
// later as a stopped event.
func (s *Session) Interrupt() bool {
	if s.machine.current() != StateRunning {
		return false
	}
	pid, ok := s.machine.debuggeePID()
	if !ok {
		s.logger.Warn("interrupt: debuggee pid unknown")
		return false
	}
	if err := unix.Kill(pid, unix.SIGINT); err != nil {
		s.logger.Warn("interrupt pid %d: %v", pid, err)
		return false
	}
	s.logger.Debug("interrupt: SIGINT to pid %d", pid)
	return true
}

// Close terminates the session: fails pending commands, closes the
// event channel once delivery finishes, and blocks until a debugger
// process this session launched has been reaped. Safe to call more
// than once.
func (s *Session) Close() error {
	s.terminate()
	s.wg.Wait()
	if s.sup != nil {
		s.sup.Shutdown(shutdownTimeout)
	}
	return nil
}

// dispatch is the single reader of the transport. Every line is parsed
// and routed here, which is what makes event order match wire order.
func (s *Session) dispatch() {
	defer s.wg.Done()

	for {
		line, err := s.transport.ReadLine()
		if err != nil {
			s.logger.Debug("transport closed: %v", err)
			s.terminate()
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := mi.ParseLine(line)
		if err != nil {
			s.logger.Warn("unparseable line: %q", line)
			s.emit(&DiagnosticEvent{Line: line, Err: err})
			continue
		}

		if from, to, changed := s.machine.apply(rec); changed {
			s.logger.Debug("execution state: %s -> %s", from, to)
		}

		switch r := rec.(type) {
		case mi.Prompt:
			// Ready marker, carries no information beyond pacing.
		case *mi.Result:
			if !r.HasToken || !s.pending.resolve(r.Token, r) {
				s.logger.Warn("unmatched result: %q", line)
				s.emit(&DiagnosticEvent{Line: line, Err: ErrUnmatchedResult})
			}
		case *mi.Async:
			s.emit(&AsyncEvent{Record: r})
		case *mi.Stream:
			s.emit(&StreamEvent{Record: r})
		}
	}
}

// drainStderr forwards debugger stderr as log stream events.
func (s *Session) drainStderr() {
	defer s.wg.Done()

	scanner := bufio.NewScanner(s.proc.Stderr)
	for scanner.Scan() {
		s.emit(&StreamEvent{Record: &mi.Stream{
			Kind: mi.StreamLog,
			Text: scanner.Text() + "\n",
		}})
	}
}

// emit delivers an event, blocking on a full buffer but never past
// session termination.
func (s *Session) emit(ev Event) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// terminate tears the session down exactly once: marks it closed, fails
// pending commands, reaps processes and arranges for the event channel
// to close after the reader goroutines finish.
func (s *Session) terminate() {
	s.once.Do(func() {
		close(s.done)
		s.machine.forceExited()
		s.pending.drain()

		if s.proc != nil {
			// The debuggee can outlive the debugger. Only sessions
			// that launched the debugger own its debuggee.
			if pid, ok := s.machine.debuggeePID(); ok {
				_ = unix.Kill(pid, unix.SIGKILL)
			}
		}

		_ = s.transport.Close()

		if s.sup != nil {
			go s.sup.Shutdown(shutdownTimeout)
		}

		go func() {
			s.wg.Wait()
			close(s.events)
		}()
	})
}
