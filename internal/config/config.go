// Package config resolves print and input settings from docprint.toml and
// the environment.
//
// Precedence, lowest first: built-in defaults, the nearest docprint.toml,
// DOCPRINT_* environment variables (optionally loaded from a .env file).
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"docprint/internal/codec"
	"docprint/internal/printer"
)

// FileName is the name of the project configuration file.
const FileName = "docprint.toml"

// Config is the resolved configuration.
type Config struct {
	Print PrintConfig `toml:"print"`
	Input InputConfig `toml:"input"`

	// Path is the docprint.toml that was loaded, empty when none was.
	Path string `toml:"-"`
}

// PrintConfig mirrors printer.Options.
type PrintConfig struct {
	PrintWidth int    `toml:"print_width" env:"DOCPRINT_PRINT_WIDTH"`
	TabWidth   int    `toml:"tab_width" env:"DOCPRINT_TAB_WIDTH"`
	UseTabs    bool   `toml:"use_tabs" env:"DOCPRINT_USE_TABS"`
	EndOfLine  string `toml:"end_of_line" env:"DOCPRINT_END_OF_LINE"`
}

// InputConfig controls how doc files are decoded.
type InputConfig struct {
	// Format forces one input format; empty picks it from the extension.
	Format    string `toml:"format" env:"DOCPRINT_INPUT_FORMAT"`
	Validate  bool   `toml:"validate" env:"DOCPRINT_INPUT_VALIDATE"`
	Normalize bool   `toml:"normalize" env:"DOCPRINT_INPUT_NORMALIZE"`
}

// Default returns the built-in configuration.
func Default() Config {
	opts := printer.DefaultOptions()
	return Config{
		Print: PrintConfig{
			PrintWidth: opts.PrintWidth,
			TabWidth:   opts.TabWidth,
			UseTabs:    opts.UseTabs,
			EndOfLine:  string(opts.EndOfLine),
		},
	}
}

// LoadOptions says where Load looks.
type LoadOptions struct {
	// StartDir is where the upward search for docprint.toml begins.
	StartDir string
	// ConfigPath names a config file explicitly and disables the search.
	ConfigPath string
	// EnvFile is a dotenv file loaded into the process environment before
	// overrides are read. Variables already set are kept.
	EnvFile string
}

// Load resolves the configuration.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	path := opts.ConfigPath
	if path == "" {
		found, ok, err := Find(opts.StartDir)
		if err != nil {
			return Config{}, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
		cfg.Path = path
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Find looks for docprint.toml in startDir and its parents.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

func decodeFile(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate reports settings the printer or decoder would reject.
func (c Config) Validate() error {
	if _, err := c.PrintOptions(); err != nil {
		return c.located(err)
	}
	if _, err := c.InputFormat(); err != nil {
		return c.located(err)
	}
	return nil
}

func (c Config) located(err error) error {
	if c.Path == "" {
		return err
	}
	return fmt.Errorf("%s: %w", c.Path, err)
}

// PrintOptions converts the [print] section.
func (c Config) PrintOptions() (printer.Options, error) {
	eol, err := printer.ParseEndOfLine(c.Print.EndOfLine)
	if err != nil {
		return printer.Options{}, err
	}
	opts := printer.Options{
		PrintWidth: c.Print.PrintWidth,
		TabWidth:   c.Print.TabWidth,
		UseTabs:    c.Print.UseTabs,
		EndOfLine:  eol,
	}
	if err := opts.Validate(); err != nil {
		return printer.Options{}, err
	}
	return opts, nil
}

// InputFormat returns the forced input format, or "" to pick by extension.
func (c Config) InputFormat() (codec.Format, error) {
	if strings.TrimSpace(c.Input.Format) == "" {
		return "", nil
	}
	return codec.ParseFormat(c.Input.Format)
}

// DecodeOptions converts the [input] section.
func (c Config) DecodeOptions() codec.DecodeOptions {
	return codec.DecodeOptions{
		Validate:      c.Input.Validate,
		NormalizeText: c.Input.Normalize,
	}
}
