package gdbmi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/gdbmi/mi"
	"github.com/dshills/gdbmi/process"
)

// mockTransport scripts debugger output and records every command the
// session writes.
type mockTransport struct {
	mu      sync.Mutex
	written []string
	lines   chan string
	once    sync.Once
	onWrite func(m *mockTransport, line string)
}

func newMockTransport() *mockTransport {
	return &mockTransport{lines: make(chan string, 64)}
}

func (m *mockTransport) WriteLine(line string) error {
	m.mu.Lock()
	m.written = append(m.written, line)
	hook := m.onWrite
	m.mu.Unlock()

	if hook != nil {
		hook(m, line)
	}
	return nil
}

func (m *mockTransport) ReadLine() (string, error) {
	line, ok := <-m.lines
	if !ok {
		return "", io.EOF
	}
	return line, nil
}

func (m *mockTransport) Close() error {
	m.once.Do(func() { close(m.lines) })
	return nil
}

func (m *mockTransport) queue(lines ...string) {
	for _, line := range lines {
		m.lines <- line
	}
}

func (m *mockTransport) writtenLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.written))
	copy(out, m.written)
	return out
}

// respondDone answers every command with a ^done carrying its token.
func respondDone(m *mockTransport, line string) {
	token, _, _ := strings.Cut(line, "-")
	m.queue(fmt.Sprintf(`%s^done,value="42"`, token), "(gdb)")
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func TestSendResolvesResult(t *testing.T) {
	tr := newMockTransport()
	tr.onWrite = respondDone
	s := NewSession(tr)
	defer s.Close()

	res, err := s.Send(context.Background(), "-data-evaluate-expression 42")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.Class != mi.ResultDone {
		t.Errorf("expected ^done, got %s", res.Class)
	}
	if v, _ := res.Data.GetString("value"); v != "42" {
		t.Errorf("expected value 42, got %q", v)
	}

	written := tr.writtenLines()
	if len(written) != 1 || written[0] != "1-data-evaluate-expression 42" {
		t.Errorf("unexpected wire output: %v", written)
	}
}

func TestTokensIncreaseInWireOrder(t *testing.T) {
	tr := newMockTransport()
	tr.onWrite = respondDone
	s := NewSession(tr)
	defer s.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := s.Send(ctx, "gdb-version"); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	written := tr.writtenLines()
	for i, line := range written {
		want := fmt.Sprintf("%d-gdb-version", i+1)
		if line != want {
			t.Errorf("line %d: expected %q, got %q", i, want, line)
		}
	}
}

func TestErrorResultIsNotAnError(t *testing.T) {
	tr := newMockTransport()
	tr.onWrite = func(m *mockTransport, line string) {
		token, _, _ := strings.Cut(line, "-")
		m.queue(fmt.Sprintf(`%s^error,msg="No symbol \"x\" in current context."`, token))
	}
	s := NewSession(tr)
	defer s.Close()

	res, err := s.Send(context.Background(), "data-evaluate-expression x")
	if err != nil {
		t.Fatalf("expected ^error to round trip, got error: %v", err)
	}
	if res.Class != mi.ResultError {
		t.Fatalf("expected ^error, got %s", res.Class)
	}
	if msg := res.ErrorMessage(); !strings.Contains(msg, "No symbol") {
		t.Errorf("unexpected error message: %q", msg)
	}
}

func TestNotReadyWritesNothing(t *testing.T) {
	tr := newMockTransport()
	s := NewSession(tr)
	defer s.Close()

	tr.queue(`*running,thread-id="all"`)
	waitFor(t, "running state", func() bool {
		return s.ExecutionState() == StateRunning
	})

	if s.CanSendCommands() {
		t.Error("expected CanSendCommands false while running")
	}
	if _, _, err := s.SendRaw("exec-step"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if written := tr.writtenLines(); len(written) != 0 {
		t.Errorf("rejected command reached the wire: %v", written)
	}
}

func TestAsyncRecordsDriveStateAndEvents(t *testing.T) {
	tr := newMockTransport()
	s := NewSession(tr)
	defer s.Close()

	tr.queue(
		`=thread-group-started,id="i1",pid="123"`,
		`*running,thread-id="all"`,
		`*stopped,reason="breakpoint-hit",bkptno="1"`,
	)

	var classes []string
	for i := 0; i < 3; i++ {
		ev := <-s.Events()
		async, ok := ev.(*AsyncEvent)
		if !ok {
			t.Fatalf("event %d: expected AsyncEvent, got %T", i, ev)
		}
		classes = append(classes, async.Record.Class)
	}
	want := []string{"thread-group-started", "running", "stopped"}
	for i := range want {
		if classes[i] != want[i] {
			t.Errorf("event %d: expected class %s, got %s", i, want[i], classes[i])
		}
	}

	if s.ExecutionState() != StateStopped {
		t.Errorf("expected stopped, got %s", s.ExecutionState())
	}
	if !s.CanSendCommands() {
		t.Error("expected commands accepted while stopped")
	}
	if pid, ok := s.DebuggeePID(); !ok || pid != 123 {
		t.Errorf("expected debuggee pid 123, got %d (known=%v)", pid, ok)
	}
}

func TestStreamAndDiagnosticEvents(t *testing.T) {
	tr := newMockTransport()
	s := NewSession(tr)
	defer s.Close()

	tr.queue(
		`~"Reading symbols...\n"`,
		"(gdb) ",
		"complete garbage here",
		`&"warning: core truncated\n"`,
	)

	ev := <-s.Events()
	stream, ok := ev.(*StreamEvent)
	if !ok || stream.Record.Kind != mi.StreamConsole {
		t.Fatalf("expected console stream event, got %#v", ev)
	}
	if stream.Record.Text != "Reading symbols...\n" {
		t.Errorf("unexpected stream text: %q", stream.Record.Text)
	}

	// The prompt produces no event, so the diagnostic comes next.
	ev = <-s.Events()
	diag, ok := ev.(*DiagnosticEvent)
	if !ok {
		t.Fatalf("expected DiagnosticEvent, got %T", ev)
	}
	var perr *mi.ParseError
	if !errors.As(diag.Err, &perr) {
		t.Errorf("expected ParseError, got %v", diag.Err)
	}
	if diag.Line != "complete garbage here" {
		t.Errorf("expected raw line preserved, got %q", diag.Line)
	}

	ev = <-s.Events()
	if stream, ok := ev.(*StreamEvent); !ok || stream.Record.Kind != mi.StreamLog {
		t.Fatalf("expected log stream event, got %#v", ev)
	}
}

func TestUnmatchedResultsBecomeDiagnostics(t *testing.T) {
	tr := newMockTransport()
	s := NewSession(tr)
	defer s.Close()

	tr.queue(`99^done`, `^done`)

	for i := 0; i < 2; i++ {
		ev := <-s.Events()
		diag, ok := ev.(*DiagnosticEvent)
		if !ok {
			t.Fatalf("event %d: expected DiagnosticEvent, got %T", i, ev)
		}
		if !errors.Is(diag.Err, ErrUnmatchedResult) {
			t.Errorf("event %d: expected ErrUnmatchedResult, got %v", i, diag.Err)
		}
	}
}

func TestResultResolvedExactlyOnce(t *testing.T) {
	tr := newMockTransport()
	s := NewSession(tr)
	defer s.Close()

	token, waiter, err := s.SendRaw("break-insert main")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	line := fmt.Sprintf(`%d^done,bkpt={number="1"}`, token)
	tr.queue(line, line)

	res, ok := <-waiter
	if !ok || res.Class != mi.ResultDone {
		t.Fatalf("expected done result, got %#v (ok=%v)", res, ok)
	}

	// The duplicate token resolves nothing and surfaces as an anomaly.
	ev := <-s.Events()
	diag, ok := ev.(*DiagnosticEvent)
	if !ok || !errors.Is(diag.Err, ErrUnmatchedResult) {
		t.Fatalf("expected unmatched-result diagnostic, got %#v", ev)
	}
}

func TestTransportDeathFailsPending(t *testing.T) {
	tr := newMockTransport()
	s := NewSession(tr)

	_, waiter, err := s.SendRaw("exec-run")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	tr.Close()

	if _, ok := <-waiter; ok {
		t.Fatal("expected pending command to fail on transport death")
	}

	waitFor(t, "exited state", func() bool {
		return s.ExecutionState() == StateExited
	})
	if s.CanSendCommands() {
		t.Error("expected CanSendCommands false after transport death")
	}
	if _, _, err := s.SendRaw("gdb-version"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}

	waitFor(t, "event channel close", func() bool {
		select {
		case _, ok := <-s.Events():
			return !ok
		default:
			return false
		}
	})

	s.Close()
}

func TestSendContextCancellation(t *testing.T) {
	tr := newMockTransport()
	s := NewSession(tr)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := s.Send(ctx, "exec-run"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}

	// The abandoned command's late reply is absorbed without fuss and
	// the session keeps working.
	tr.queue(`1^done`)
	tr.onWrite = respondDone

	res, err := s.Send(context.Background(), "gdb-version")
	if err != nil {
		t.Fatalf("send after cancellation: %v", err)
	}
	if res.Token != 2 {
		t.Errorf("expected token 2, got %d", res.Token)
	}
}

func TestSendRejectsEmptyCommand(t *testing.T) {
	tr := newMockTransport()
	s := NewSession(tr)
	defer s.Close()

	for _, cmd := range []string{"", "   ", "-"} {
		if _, _, err := s.SendRaw(cmd); !errors.Is(err, ErrEmptyCommand) {
			t.Errorf("command %q: expected ErrEmptyCommand, got %v", cmd, err)
		}
	}
}

func TestExitCodeAndTerminalState(t *testing.T) {
	tr := newMockTransport()
	s := NewSession(tr)
	defer s.Close()

	tr.queue(`=thread-group-exited,id="i1",exit-code="01"`)
	waitFor(t, "exited state", func() bool {
		return s.ExecutionState() == StateExited
	})

	code, ok := s.ExitCode()
	if !ok || code != 1 {
		t.Errorf("expected exit code 1, got %d (known=%v)", code, ok)
	}
	if _, _, err := s.SendRaw("exec-run"); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady after exit, got %v", err)
	}
}

func TestInterruptRequiresRunningAndPID(t *testing.T) {
	tr := newMockTransport()
	s := NewSession(tr)
	defer s.Close()

	if s.Interrupt() {
		t.Error("expected interrupt to report false while idle")
	}

	tr.queue(`*running,thread-id="all"`)
	waitFor(t, "running state", func() bool {
		return s.ExecutionState() == StateRunning
	})

	// Running but the debuggee pid was never reported.
	if s.Interrupt() {
		t.Error("expected interrupt to report false with unknown pid")
	}
}

func TestInterruptSignalsDebuggee(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start sleep: %v", err)
	}
	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	tr := newMockTransport()
	s := NewSession(tr)
	defer s.Close()

	tr.queue(
		fmt.Sprintf(`=thread-group-started,id="i1",pid="%d"`, cmd.Process.Pid),
		`*running,thread-id="all"`,
	)
	waitFor(t, "running with known pid", func() bool {
		_, ok := s.DebuggeePID()
		return ok && s.ExecutionState() == StateRunning
	})

	if !s.Interrupt() {
		t.Fatal("expected interrupt to deliver a signal")
	}

	select {
	case err := <-exited:
		if err == nil {
			t.Error("expected sleep to die from the signal")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the debuggee to die")
	}
}

func TestCloseReapsDebugger(t *testing.T) {
	sup := process.NewSupervisor()
	proc, err := sup.Start("cat", exec.Command("cat"))
	if err != nil {
		t.Fatalf("start cat: %v", err)
	}

	s := newSession(NewStdioTransport(proc), applyOptions(nil), proc, sup)

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !proc.HasExited() {
		t.Error("expected debugger process reaped before Close returned")
	}
	if n := sup.Count(); n != 0 {
		t.Errorf("expected supervisor empty after Close, got %d", n)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	tr := newMockTransport()
	s := NewSession(tr)

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	if _, ok := <-s.Events(); ok {
		t.Error("expected event channel closed after Close")
	}
	if s.ID() == "" {
		t.Error("expected a session id")
	}
}

func TestEventBufferOption(t *testing.T) {
	tr := newMockTransport()
	s := NewSession(tr, WithEventBuffer(1), WithLogger(NullLogger))
	defer s.Close()

	if cap(s.events) != 1 {
		t.Errorf("expected event buffer 1, got %d", cap(s.events))
	}

	// A full buffer blocks dispatch rather than dropping events.
	tr.queue(`~"one\n"`, `~"two\n"`, `~"three\n"`)
	for _, want := range []string{"one\n", "two\n", "three\n"} {
		ev := <-s.Events()
		stream, ok := ev.(*StreamEvent)
		if !ok || stream.Record.Text != want {
			t.Fatalf("expected stream %q, got %#v", want, ev)
		}
	}
}
