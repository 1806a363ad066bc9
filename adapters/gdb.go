package adapters

import (
	"fmt"
	"os"
	"os/exec"
)

// GDBBinaryEnv overrides the gdb executable used when Config.Path is empty.
const GDBBinaryEnv = "GDB_BINARY"

// GDB launches the GNU debugger with its machine interface enabled.
type GDB struct {
	config Config
}

// NewGDB creates a gdb adapter from cfg.
func NewGDB(cfg Config) (Adapter, error) {
	if cfg.Type == "" {
		cfg.Type = TypeGDB
	}
	if cfg.Name == "" {
		cfg.Name = "gdb"
	}
	a := &GDB{config: cfg}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Type returns TypeGDB.
func (a *GDB) Type() Type { return TypeGDB }

// Name returns the configured name.
func (a *GDB) Name() string { return a.config.Name }

// Validate checks the configuration.
func (a *GDB) Validate() error {
	if a.config.Type != TypeGDB {
		return fmt.Errorf("config type %q is not %q", a.config.Type, TypeGDB)
	}
	return nil
}

// Binary resolves the gdb executable: explicit path, then the GDB_BINARY
// environment variable, then "gdb" from PATH.
func (a *GDB) Binary() string {
	if a.config.Path != "" {
		return a.config.Path
	}
	if env := os.Getenv(GDBBinaryEnv); env != "" {
		return env
	}
	return "gdb"
}

// Command returns the gdb command with MI mode enabled.
func (a *GDB) Command() (*exec.Cmd, error) {
	return buildCommand(a.Binary(), []string{"--interpreter=mi"}, a.config), nil
}
