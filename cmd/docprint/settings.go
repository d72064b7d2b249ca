package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docprint/internal/codec"
	"docprint/internal/config"
	"docprint/internal/logging"
	"docprint/internal/printer"
)

// settings is the configuration a command runs with: docprint.toml and
// DOCPRINT_* variables first, then any flag the user set explicitly.
type settings struct {
	print       printer.Options
	decode      codec.DecodeOptions
	inputFormat codec.Format
	configPath  string
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	envFile, err := cmd.Root().PersistentFlags().GetString("env-file")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get env-file flag: %w", err)
	}
	cfg, err := config.Load(config.LoadOptions{
		StartDir:   ".",
		ConfigPath: configPath,
		EnvFile:    envFile,
	})
	if err != nil {
		return config.Config{}, err
	}
	if cfg.Path != "" {
		logging.FromContext(cmd.Context()).Debug("config loaded", zap.String("path", cfg.Path))
	}
	return cfg, nil
}

// resolveSettings merges the loaded config with the layout and input flags
// registered by addPrintFlags and addInputFlags. Commands that only take
// input flags pass withPrint=false.
func resolveSettings(cmd *cobra.Command, withPrint bool) (settings, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return settings{}, err
	}
	flags := cmd.Flags()

	if withPrint {
		if flags.Changed("width") {
			if cfg.Print.PrintWidth, err = flags.GetInt("width"); err != nil {
				return settings{}, fmt.Errorf("failed to get width flag: %w", err)
			}
		}
		if flags.Changed("tab-width") {
			if cfg.Print.TabWidth, err = flags.GetInt("tab-width"); err != nil {
				return settings{}, fmt.Errorf("failed to get tab-width flag: %w", err)
			}
		}
		if flags.Changed("use-tabs") {
			if cfg.Print.UseTabs, err = flags.GetBool("use-tabs"); err != nil {
				return settings{}, fmt.Errorf("failed to get use-tabs flag: %w", err)
			}
		}
		if flags.Changed("end-of-line") {
			if cfg.Print.EndOfLine, err = flags.GetString("end-of-line"); err != nil {
				return settings{}, fmt.Errorf("failed to get end-of-line flag: %w", err)
			}
		}
	}
	if flags.Changed("input-format") {
		if cfg.Input.Format, err = flags.GetString("input-format"); err != nil {
			return settings{}, fmt.Errorf("failed to get input-format flag: %w", err)
		}
	}
	if flags.Changed("validate") {
		if cfg.Input.Validate, err = flags.GetBool("validate"); err != nil {
			return settings{}, fmt.Errorf("failed to get validate flag: %w", err)
		}
	}
	if flags.Changed("normalize") {
		if cfg.Input.Normalize, err = flags.GetBool("normalize"); err != nil {
			return settings{}, fmt.Errorf("failed to get normalize flag: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return settings{}, err
	}

	s := settings{decode: cfg.DecodeOptions(), configPath: cfg.Path}
	if withPrint {
		if s.print, err = cfg.PrintOptions(); err != nil {
			return settings{}, err
		}
	}
	if s.inputFormat, err = cfg.InputFormat(); err != nil {
		return settings{}, err
	}
	query, err := flags.GetString("query")
	if err != nil {
		return settings{}, fmt.Errorf("failed to get query flag: %w", err)
	}
	s.decode.Query = query
	return s, nil
}

func addPrintFlags(cmd *cobra.Command) {
	cmd.Flags().Int("width", printer.DefaultPrintWidth, "column limit for groups (negative disables the limit)")
	cmd.Flags().Int("tab-width", printer.DefaultTabWidth, "width of one indentation level")
	cmd.Flags().Bool("use-tabs", false, "indent with tabs")
	cmd.Flags().String("end-of-line", "lf", "newline sequence (lf|crlf|cr|auto)")
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("input-format", "", "force the input format (json|yaml|msgpack)")
	cmd.Flags().String("query", "", "jq expression selecting the doc inside each input")
	cmd.Flags().Bool("validate", false, "check inputs against the doc JSON schema before decoding")
	cmd.Flags().Bool("normalize", false, "NFC-normalize text nodes")
}
