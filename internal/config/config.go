// Package config loads the optional per-project orbc.yaml (SPEC_FULL.md's
// ambient-stack addition): default optimizer level, default output name,
// and extra linker inputs. Absence of the file is not an error — every
// field simply keeps its zero value and the CLI layer's own flag
// defaults apply instead.
//
// Grounded on the same "small declarative config struct with yaml
// tags" shape the pack uses for its own project config files (e.g.
// funvibe-funxy's internal/ext.Config for funxy.yaml), here parsed with
// github.com/goccy/go-yaml per SPEC_FULL.md's domain-stack table.
package config

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// FileName is the project config file's fixed name.
const FileName = "orbc.yaml"

// Config is orbc.yaml's shape.
type Config struct {
	// OptLevel is the default -O<n> optimizer level when the CLI flag
	// is not given explicitly.
	OptLevel int `yaml:"optLevel,omitempty"`

	// Output is the default -o output path.
	Output string `yaml:"output,omitempty"`

	// LinkerInputs are extra non-source paths always passed to the
	// linker, appended after the CLI's own positional linker inputs.
	LinkerInputs []string `yaml:"linkerInputs,omitempty"`
}

// Load searches dir (and, if dir is empty, the current working
// directory) for orbc.yaml and parses it. A missing file returns a
// zero Config and a nil error — the project config is purely additive.
func Load(dir string) (*Config, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return &Config{}, nil
		}
		dir = wd
	}

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
