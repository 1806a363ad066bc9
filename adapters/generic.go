package adapters

import (
	"fmt"
	"os/exec"
)

// Generic launches any executable that speaks MI on its standard streams,
// for example a gdb wrapper script. The path must be configured.
type Generic struct {
	config Config
}

// NewGeneric creates a generic adapter from cfg.
func NewGeneric(cfg Config) (Adapter, error) {
	if cfg.Type == "" {
		cfg.Type = TypeGeneric
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Path
	}
	a := &Generic{config: cfg}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Type returns TypeGeneric.
func (a *Generic) Type() Type { return TypeGeneric }

// Name returns the configured name.
func (a *Generic) Name() string { return a.config.Name }

// Validate checks the configuration.
func (a *Generic) Validate() error {
	if a.config.Path == "" {
		return fmt.Errorf("generic adapter requires a path")
	}
	return nil
}

// Command returns the configured command verbatim.
func (a *Generic) Command() (*exec.Cmd, error) {
	return buildCommand(a.config.Path, nil, a.config), nil
}
