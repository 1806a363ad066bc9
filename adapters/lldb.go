package adapters

import (
	"fmt"
	"os"
	"os/exec"
)

// LLDBBinaryEnv overrides the lldb-mi executable used when Config.Path is
// empty.
const LLDBBinaryEnv = "LLDB_MI_BINARY"

// LLDB launches lldb-mi, LLDB's machine-interface driver. lldb-mi speaks
// the same MI grammar gdb does, so the engine drives it unchanged.
type LLDB struct {
	config Config
}

// NewLLDB creates an lldb-mi adapter from cfg.
func NewLLDB(cfg Config) (Adapter, error) {
	if cfg.Type == "" {
		cfg.Type = TypeLLDB
	}
	if cfg.Name == "" {
		cfg.Name = "lldb-mi"
	}
	a := &LLDB{config: cfg}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Type returns TypeLLDB.
func (a *LLDB) Type() Type { return TypeLLDB }

// Name returns the configured name.
func (a *LLDB) Name() string { return a.config.Name }

// Validate checks the configuration.
func (a *LLDB) Validate() error {
	if a.config.Type != TypeLLDB {
		return fmt.Errorf("config type %q is not %q", a.config.Type, TypeLLDB)
	}
	return nil
}

// Binary resolves the lldb-mi executable: explicit path, then the
// LLDB_MI_BINARY environment variable, then "lldb-mi" from PATH.
func (a *LLDB) Binary() string {
	if a.config.Path != "" {
		return a.config.Path
	}
	if env := os.Getenv(LLDBBinaryEnv); env != "" {
		return env
	}
	return "lldb-mi"
}

// Command returns the lldb-mi command. lldb-mi enters MI mode by default.
func (a *LLDB) Command() (*exec.Cmd, error) {
	return buildCommand(a.Binary(), nil, a.config), nil
}
