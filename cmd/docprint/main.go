package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"docprint/internal/logging"
	"docprint/internal/trace"
	"docprint/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "docprint",
	Short: "Lay out document trees into text",
	Long: `docprint reads serialized doc trees (JSON, YAML or MessagePack) and prints
them with a width-aware layout engine: groups break only when they do not
fit, fills wrap greedily, and conditional content follows group modes.`,
	PersistentPreRunE: setupRun,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		finishRun(nil)
	},
}

var (
	finishOnce sync.Once
	finishers  []func(runErr error)
)

// onFinish registers cleanup that runs once, after the command returns or
// fails.
func onFinish(fn func(runErr error)) {
	finishers = append(finishers, fn)
}

func finishRun(runErr error) {
	finishOnce.Do(func() {
		for i := len(finishers) - 1; i >= 0; i-- {
			finishers[i](runErr)
		}
	})
}

func setupRun(cmd *cobra.Command, args []string) error {
	root := cmd.Root()

	colorFlag, err := root.PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	if err := applyColorMode(colorFlag); err != nil {
		return err
	}

	verbose, err := root.PersistentFlags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	quiet, err := root.PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	logger, err := logging.New(logging.Options{Verbose: verbose, Quiet: quiet})
	if err != nil {
		return err
	}
	onFinish(func(error) {
		_ = logger.Sync()
	})
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	logger.Debug("command started", zap.String("command", cmd.CommandPath()), zap.Strings("args", args))

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	onFinish(cleanup)

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	onFinish(stopProfiling)
	return nil
}

// autoSwitch is the value of an auto|on|off flag such as --color or --ui.
type autoSwitch uint8

const (
	switchAuto autoSwitch = iota
	switchOn
	switchOff
)

func parseAutoSwitch(flag, value string) (autoSwitch, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return switchAuto, nil
	case "on":
		return switchOn, nil
	case "off":
		return switchOff, nil
	default:
		return switchAuto, fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
}

// enabled resolves the switch; auto means f is a terminal.
func (s autoSwitch) enabled(f *os.File) bool {
	switch s {
	case switchOn:
		return true
	case switchOff:
		return false
	default:
		return isTerminal(f)
	}
}

func applyColorMode(value string) error {
	mode, err := parseAutoSwitch("color", value)
	if err != nil {
		return err
	}
	color.NoColor = !mode.enabled(os.Stdout)
	return nil
}

// main registers subcommands and persistent flags, then executes the root
// command. A failed command exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(printCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "path to docprint.toml (default: search upward from the working directory)")
	pf.String("env-file", "", "load DOCPRINT_* variables from a dotenv file")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.BoolP("verbose", "v", false, "log debug information to stderr")
	pf.String("trace", "", "write trace events to a file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson|chrome)")
	pf.Int("trace-ring-size", trace.DefaultRingSize, "events kept in the trace ring buffer")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	finishRun(err)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
