// Package adapters provides launch configurations for MI-speaking debuggers.
package adapters

import (
	"fmt"
	"os"
	"os/exec"
)

// Type identifies a debugger adapter.
type Type string

const (
	// TypeGDB is the GNU debugger in MI mode.
	TypeGDB Type = "gdb"
	// TypeLLDB is the LLDB machine-interface driver (lldb-mi).
	TypeLLDB Type = "lldb"
	// TypeGeneric is any executable that speaks MI on its stdio.
	TypeGeneric Type = "generic"
)

// Config describes how to launch a debugger.
type Config struct {
	// Type is the adapter type.
	Type Type `toml:"type" yaml:"type"`

	// Name is a human-readable name for this configuration.
	Name string `toml:"name" yaml:"name"`

	// Path is the debugger executable. Empty means the adapter's default
	// resolution (PATH lookup, environment override).
	Path string `toml:"path" yaml:"path"`

	// Args are extra arguments appended after the adapter's own.
	Args []string `toml:"args" yaml:"args"`

	// Env are additional environment variables for the debugger.
	Env map[string]string `toml:"env" yaml:"env"`

	// Cwd is the working directory for the debugger.
	Cwd string `toml:"cwd" yaml:"cwd"`
}

// Adapter builds the command that starts a debugger in MI mode.
type Adapter interface {
	// Type returns the adapter type.
	Type() Type

	// Name returns a human-readable adapter name.
	Name() string

	// Validate validates the configuration.
	Validate() error

	// Command returns the command to start the debugger. The command is
	// not started; its stdio is wired by the caller.
	Command() (*exec.Cmd, error)
}

// Registry manages available adapter factories.
type Registry struct {
	factories map[Type]func(Config) (Adapter, error)
}

// NewRegistry creates a registry with the built-in adapters registered.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[Type]func(Config) (Adapter, error)),
	}
	r.Register(TypeGDB, NewGDB)
	r.Register(TypeLLDB, NewLLDB)
	r.Register(TypeGeneric, NewGeneric)
	return r
}

// Register registers an adapter factory, replacing any previous one.
func (r *Registry) Register(t Type, factory func(Config) (Adapter, error)) {
	r.factories[t] = factory
}

// Create builds an adapter from configuration.
func (r *Registry) Create(cfg Config) (Adapter, error) {
	factory, ok := r.factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown adapter type: %s", cfg.Type)
	}
	return factory(cfg)
}

// Available returns the registered adapter types.
func (r *Registry) Available() []Type {
	types := make([]Type, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	return types
}

// buildCommand assembles an exec.Cmd from a resolved binary and config.
func buildCommand(binary string, args []string, cfg Config) *exec.Cmd {
	cmd := exec.Command(binary, append(args, cfg.Args...)...)
	if cfg.Cwd != "" {
		cmd.Dir = cfg.Cwd
	}
	if len(cfg.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range cfg.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}
	return cmd
}
