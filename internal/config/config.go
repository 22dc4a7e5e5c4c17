// Package config loads the on-disk YAML configuration. Precedence is
// CLI flag > environment > repo-local file > global file; credentials are
// never read from or written to config files.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for keygate. Pointer
// fields distinguish "unset" from zero values so the pick helpers in cmd can
// layer CLI > local > global.
type FileConfig struct {
	URL            *string `yaml:"url"`
	Allowlist      *string `yaml:"allowlist"` // path to the table allowlist file
	Include        *string `yaml:"include"`
	Exclude        *string `yaml:"exclude"`
	Discovery      *bool   `yaml:"discovery"`
	NoAuth         *bool   `yaml:"no_auth"`
	Matrix         *bool   `yaml:"matrix"`
	RPC            *bool   `yaml:"rpc"`
	Mutations      *bool   `yaml:"mutations"`
	Inserts        *bool   `yaml:"inserts"`
	Storage        *bool   `yaml:"storage"`
	Sample         *bool   `yaml:"sample"`
	SampleRows     *int    `yaml:"sample_rows"`
	Strict         *bool   `yaml:"strict"`
	SensitiveTerms *string `yaml:"sensitive_terms"`
	MutationFilter *string `yaml:"mutation_filter"`
	MinDelay       *string `yaml:"min_delay"` // duration, e.g. 250ms
	Timeout        *string `yaml:"timeout"`
	NoColor        *bool   `yaml:"no_color"`
	ReportFile     *string `yaml:"report_file"`
	BaselineFile   *string `yaml:"baseline_file"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a project-local config file in the given directory.
// It supports .keygate.yml/.yaml and keygate.yml/.yaml, dotfile first.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".keygate.yml", ".keygate.yaml", "keygate.yml", "keygate.yaml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "keygate", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}
