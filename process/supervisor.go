package process

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a process ID is unknown.
	ErrNotFound = errors.New("process not found")

	// ErrShutdown is returned when the supervisor is shutting down.
	ErrShutdown = errors.New("supervisor is shutting down")
)

// Supervisor tracks the debugger processes a session tree owns and
// guarantees their cleanup on shutdown. It is safe for concurrent use.
type Supervisor struct {
	mu        sync.RWMutex
	processes map[string]*Process

	closed       atomic.Bool
	monitors     sync.WaitGroup
	shutdownOnce sync.Once

	// onExit is invoked from the monitor goroutine when a process exits.
	onExit func(p *Process)
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithExitCallback registers a callback invoked whenever a managed
// process exits. The callback runs on the monitor goroutine.
func WithExitCallback(fn func(p *Process)) Option {
	return func(s *Supervisor) {
		s.onExit = fn
	}
}

// NewSupervisor creates a supervisor with no managed processes.
func NewSupervisor(opts ...Option) *Supervisor {
	s := &Supervisor{
		processes: make(map[string]*Process),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start spawns cmd as a managed process with a generated ID.
func (s *Supervisor) Start(name string, cmd *exec.Cmd) (*Process, error) {
	return s.StartWithID(uuid.New().String(), name, cmd)
}

// StartWithID spawns cmd as a managed process with a caller-chosen ID.
// Useful for deterministic tests.
func (s *Supervisor) StartWithID(id, name string, cmd *exec.Cmd) (*Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, ErrShutdown
	}
	if _, exists := s.processes[id]; exists {
		return nil, fmt.Errorf("process ID already exists: %s", id)
	}

	proc := New(id, name, cmd)
	if err := proc.Start(); err != nil {
		return nil, err
	}

	s.processes[id] = proc
	s.monitors.Add(1)
	go s.monitor(proc)
	return proc, nil
}

// monitor waits for a process to exit, fires the exit callback, and
// removes the process from tracking.
func (s *Supervisor) monitor(proc *Process) {
	defer s.monitors.Done()

	<-proc.Done()

	if s.onExit != nil {
		func() {
			defer func() {
				// A panicking callback must not take down the monitor.
				_ = recover()
			}()
			s.onExit(proc)
		}()
	}

	s.mu.Lock()
	delete(s.processes, proc.ID)
	s.mu.Unlock()
}

// Get returns the process with the given ID, or nil.
func (s *Supervisor) Get(id string) *Process {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processes[id]
}

// Count returns the number of live managed processes.
func (s *Supervisor) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.processes)
}

// Kill sends SIGKILL to the process with the given ID.
func (s *Supervisor) Kill(id string) error {
	proc := s.Get(id)
	if proc == nil {
		return ErrNotFound
	}
	if !proc.IsRunning() {
		return nil
	}
	return proc.Kill()
}

// Terminate sends SIGTERM to the process with the given ID.
func (s *Supervisor) Terminate(id string) error {
	proc := s.Get(id)
	if proc == nil {
		return ErrNotFound
	}
	if !proc.IsRunning() {
		return nil
	}
	return proc.Terminate()
}

// IsShuttingDown reports whether Shutdown has been called.
func (s *Supervisor) IsShuttingDown() bool {
	return s.closed.Load()
}

// Shutdown terminates all managed processes and blocks until they are
// gone. Processes get SIGTERM first; anything still alive after the
// timeout gets SIGKILL. Concurrent and repeated calls all block until
// the one shutdown pass completes.
func (s *Supervisor) Shutdown(timeout time.Duration) {
	s.shutdownOnce.Do(func() {
		s.closed.Store(true)

		s.mu.RLock()
		procs := make([]*Process, 0, len(s.processes))
		for _, p := range s.processes {
			procs = append(procs, p)
		}
		s.mu.RUnlock()

		for _, p := range procs {
			if p.IsRunning() {
				_ = p.Terminate()
			}
		}

		if len(procs) > 0 {
			done := make(chan struct{})
			go func() {
				for _, p := range procs {
					<-p.Done()
				}
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(timeout):
				for _, p := range procs {
					if p.IsRunning() {
						_ = p.Kill()
					}
				}
				<-done
			}
		}

		// The monitor goroutines remove their entries, so Count
		// reports zero once they finish.
		s.monitors.Wait()
	})
}
