// Package config loads editor configuration from a TOML file and
// watches it for changes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/snipline/snipline/internal/expand"
	"github.com/snipline/snipline/internal/linecount"
)

// Editor holds editing behavior settings.
type Editor struct {
	TabWidth   int    `toml:"tab_width"`
	LineEnding string `toml:"line_ending"`
}

// Status holds line count display settings.
type Status struct {
	Format  string `toml:"format"`
	Enabled bool   `toml:"enabled"`
}

// Expansion holds trigger expander settings.
type Expansion struct {
	Catalog  string `toml:"catalog"`
	Policy   string `toml:"policy"`
	Enabled  bool   `toml:"enabled"`
	RulesDir string `toml:"rules_dir"`
	Script   string `toml:"script"`
}

// Log holds logging settings.
type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Config is the full configuration tree.
type Config struct {
	Editor    Editor    `toml:"editor"`
	Status    Status    `toml:"status"`
	Expansion Expansion `toml:"expansion"`
	Log       Log       `toml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Editor: Editor{
			TabWidth:   4,
			LineEnding: "lf",
		},
		Status: Status{
			Format:  linecount.DefaultFormat,
			Enabled: true,
		},
		Expansion: Expansion{
			Catalog: expand.CatalogExtended,
			Policy:  expand.PolicyAll.String(),
			Enabled: true,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// ParseError reports a configuration file that could not be used.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads the configuration at path and validates it. Keys not
// present keep their defaults, and a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Default(), &ParseError{Path: path, Err: err}
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), &ParseError{Path: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Default(), &ParseError{Path: path, Err: err}
	}
	return cfg, nil
}

// Validate checks every setting that later stages depend on.
func (c *Config) Validate() error {
	if c.Editor.TabWidth < 1 || c.Editor.TabWidth > 16 {
		return fmt.Errorf("editor.tab_width: %d out of range 1..16", c.Editor.TabWidth)
	}
	switch c.Editor.LineEnding {
	case "lf", "crlf":
	default:
		return fmt.Errorf("editor.line_ending: %q is not lf or crlf", c.Editor.LineEnding)
	}

	if _, err := linecount.NewFormatter(c.Status.Format); err != nil {
		return fmt.Errorf("status.format: %w", err)
	}

	if _, err := expand.Catalog(c.Expansion.Catalog); err != nil {
		return fmt.Errorf("expansion.catalog: %w", err)
	}
	if _, err := expand.ParsePolicy(c.Expansion.Policy); err != nil {
		return fmt.Errorf("expansion.policy: %w", err)
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: %q is not a level", c.Log.Level)
	}
	return nil
}
