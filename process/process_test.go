package process

import (
	"bufio"
	"errors"
	"io"
	"os/exec"
	"testing"
	"time"
)

func TestProcessLifecycle(t *testing.T) {
	proc := New("p1", "cat", exec.Command("cat"))

	if proc.State() != StateCreated {
		t.Fatalf("expected created state, got %s", proc.State())
	}
	if proc.ExitCode() != -1 {
		t.Errorf("expected exit code -1 before start, got %d", proc.ExitCode())
	}

	if err := proc.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	if !proc.IsRunning() {
		t.Error("expected process running after start")
	}
	if proc.PID() <= 0 {
		t.Errorf("expected positive pid, got %d", proc.PID())
	}
	if proc.Stdin == nil || proc.Stdout == nil || proc.Stderr == nil {
		t.Fatal("expected all three streams piped")
	}

	// cat exits when stdin closes.
	proc.Stdin.Close()

	select {
	case <-proc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for exit")
	}

	if proc.State() != StateExited {
		t.Errorf("expected exited state, got %s", proc.State())
	}
	if proc.ExitCode() != 0 {
		t.Errorf("expected exit code 0, got %d", proc.ExitCode())
	}
	if !proc.HasExited() {
		t.Error("expected HasExited true")
	}
}

func TestProcessDoubleStart(t *testing.T) {
	proc := New("p1", "cat", exec.Command("cat"))
	if err := proc.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() {
		proc.Stdin.Close()
		<-proc.Done()
	}()

	if err := proc.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestProcessStartFailure(t *testing.T) {
	proc := New("p1", "missing", exec.Command("/nonexistent/definitely-missing-binary"))
	if err := proc.Start(); err == nil {
		t.Fatal("expected start error for missing binary")
	}
	if proc.State() != StateCreated {
		t.Errorf("expected created state after failed start, got %s", proc.State())
	}
}

func TestProcessExitCode(t *testing.T) {
	proc := New("p1", "sh", exec.Command("sh", "-c", "exit 3"))
	if err := proc.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-proc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for exit")
	}

	if proc.ExitCode() != 3 {
		t.Errorf("expected exit code 3, got %d", proc.ExitCode())
	}
	if proc.ExitError() == nil {
		t.Error("expected non-nil exit error for non-zero exit")
	}
}

func TestProcessKill(t *testing.T) {
	proc := New("p1", "sleep", exec.Command("sleep", "60"))
	if err := proc.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := proc.Kill(); err != nil {
		t.Fatalf("kill: %v", err)
	}

	select {
	case <-proc.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for killed process")
	}

	if proc.State() != StateKilled {
		t.Errorf("expected killed state, got %s", proc.State())
	}
}

func TestProcessSignalNotRunning(t *testing.T) {
	proc := New("p1", "cat", exec.Command("cat"))
	if err := proc.Interrupt(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}

func TestProcessPipes(t *testing.T) {
	proc := New("p1", "cat", exec.Command("cat"))
	if err := proc.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := io.WriteString(proc.Stdin, "hello\n"); err != nil {
		t.Fatalf("write stdin: %v", err)
	}

	line, err := bufio.NewReader(proc.Stdout).ReadString('\n')
	if err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	if line != "hello\n" {
		t.Errorf("expected echo of %q, got %q", "hello\n", line)
	}

	proc.Stdin.Close()
	<-proc.Done()
}
