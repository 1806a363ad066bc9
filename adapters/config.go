package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// configFile is the on-disk shape of a debugger configuration file.
type configFile struct {
	Debuggers map[string]Config `toml:"debuggers" yaml:"debuggers"`
}

// LoadFile reads named debugger configurations from a TOML or YAML file,
// chosen by extension (.toml, .yaml, .yml).
//
// File shape (TOML):
//
//	[debuggers.gdb]
//	type = "gdb"
//	path = "/usr/bin/gdb"
//	args = ["--nx"]
//
// A configuration's Name defaults to its map key.
func LoadFile(path string) (map[string]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parseConfig(path, data)
}

func parseConfig(path string, data []byte) (map[string]Config, error) {
	var file configFile

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing TOML config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing YAML config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}

	configs := make(map[string]Config, len(file.Debuggers))
	for key, cfg := range file.Debuggers {
		if cfg.Name == "" {
			cfg.Name = key
		}
		configs[key] = cfg
	}
	return configs, nil
}
