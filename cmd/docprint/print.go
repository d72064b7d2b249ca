package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"docprint/internal/driver"
	"docprint/internal/observ"
)

var printCmd = &cobra.Command{
	Use:   "print [flags] <path> [path...]",
	Short: "Print doc files to text",
	Long: `print lays out every doc file under the given paths and writes <name>.txt
next to each input. Directories are searched recursively for .json, .yaml,
.yml, .msgpack and .mpk files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPrint,
}

func init() {
	addPrintFlags(printCmd)
	addInputFlags(printCmd)
	printCmd.Flags().Bool("check", false, "report outputs that are out of date without writing them")
	printCmd.Flags().Bool("stdout", false, "print to stdout instead of writing files")
	printCmd.Flags().String("format", "text", "output format (text|json)")
	printCmd.Flags().Int("jobs", 0, "max parallel files (0=auto)")
	printCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
	printCmd.Flags().Bool("cache", false, "reuse layouts cached from earlier runs")
	printCmd.Flags().String("cache-dir", "", "layout cache directory (default: $XDG_CACHE_HOME/docprint)")
	printCmd.Flags().Bool("watch", false, "keep running and reprint inputs when they change")
}

func runPrint(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}
	writeToStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}
	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return err
	}

	if writeToStdout && check {
		return reportError(fmt.Errorf("print: --stdout cannot be used with --check"))
	}
	if writeToStdout && outputFormat != "text" {
		return reportError(fmt.Errorf("print: --stdout is only supported with text output"))
	}
	if outputFormat != "text" && outputFormat != "json" {
		return reportError(fmt.Errorf("print: unsupported output format %q", outputFormat))
	}
	if watch && (check || outputFormat != "text") {
		return reportError(fmt.Errorf("print: --watch only supports writing or --stdout with text output"))
	}
	ui, err := parseAutoSwitch("ui", uiFlag)
	if err != nil {
		return reportError(err)
	}

	s, err := resolveSettings(cmd, true)
	if err != nil {
		return reportError(err)
	}
	cache, err := openCache(cmd)
	if err != nil {
		return reportError(err)
	}

	mode := driver.ModeWrite
	switch {
	case check:
		mode = driver.ModeCheck
	case writeToStdout:
		mode = driver.ModeStdout
	}
	timer := observ.NewTimer()
	opts := driver.PrintOptions{
		Print:       s.print,
		Decode:      s.decode,
		InputFormat: s.inputFormat,
		Mode:        mode,
		Jobs:        jobs,
		RunID:       uuid.New(),
		Timer:       timer,
		Cache:       cache,
	}

	if watch {
		return runWatch(cmd, args, opts, quiet)
	}

	var report *driver.Report
	useUI := !quiet && outputFormat == "text" && mode != driver.ModeStdout && ui.enabled(os.Stdout)
	if useUI {
		report, err = runPrintWithUI(cmd.Context(), "printing", args, opts)
	} else {
		report, err = driver.Run(cmd.Context(), args, opts)
	}
	if err != nil {
		return reportError(fmt.Errorf("print: %w", err))
	}

	var hasErrors, hasChanges bool
	switch {
	case outputFormat == "json":
		if err := renderPrintJSON(cmd.OutOrStdout(), report, mode, showTimings); err != nil {
			return err
		}
		hasErrors = report.Failed() > 0
		for _, res := range report.Results {
			hasChanges = hasChanges || res.Changed
		}
	case mode == driver.ModeStdout:
		renderPrintStdout(cmd.OutOrStdout(), report.Results, &hasErrors)
	default:
		renderPrintText(cmd.OutOrStdout(), report.Results, check, quiet, &hasErrors, &hasChanges)
	}
	if showTimings && outputFormat == "text" {
		printTimings(os.Stderr, timer, report)
	}

	if hasErrors {
		return fmt.Errorf("print: failed to print some files")
	}
	if check && hasChanges {
		return fmt.Errorf("print: outputs are out of date")
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string, opts driver.PrintOptions, quiet bool) error {
	out := cmd.OutOrStdout()
	err := driver.Watch(cmd.Context(), args, opts, driver.WatchOptions{
		OnReport: func(report *driver.Report, err error) {
			if err != nil {
				fmt.Fprintf(os.Stderr, "print: %v\n", err)
				return
			}
			var hasErrors, hasChanges bool
			if opts.Mode == driver.ModeStdout {
				renderPrintStdout(out, report.Results, &hasErrors)
				return
			}
			renderPrintText(out, report.Results, false, quiet, &hasErrors, &hasChanges)
		},
	})
	if err != nil {
		return reportError(fmt.Errorf("print: %w", err))
	}
	return nil
}

// reportError prints err for commands that silence cobra's own error
// output, and returns it.
func reportError(err error) error {
	fmt.Fprintln(os.Stderr, err)
	return err
}

func renderPrintStdout(out io.Writer, results []driver.PrintResult, hasErrors *bool) {
	for _, res := range results {
		if res.Err != nil {
			*hasErrors = true
			fmt.Fprintf(os.Stderr, "print: %s: %v\n", res.Path, res.Err)
			continue
		}
		_, _ = out.Write(res.Formatted)
	}
}

func renderPrintText(out io.Writer, results []driver.PrintResult, check, quiet bool, hasErrors, hasChanges *bool) {
	for _, res := range results {
		if res.Err != nil {
			*hasErrors = true
			fmt.Fprintf(os.Stderr, "print: %s: %v\n", res.Path, res.Err)
			continue
		}
		if !res.Changed {
			continue
		}
		*hasChanges = true
		if quiet {
			continue
		}
		if check {
			fmt.Fprintln(out, res.OutputPath)
			continue
		}
		fmt.Fprintf(out, "printed %s -> %s\n", res.Path, res.OutputPath)
	}
}

func openCache(cmd *cobra.Command) (*driver.Cache, error) {
	enabled, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if !enabled && dir == "" {
		return nil, nil
	}
	if dir != "" {
		return driver.NewCache(dir)
	}
	return driver.OpenCache("docprint")
}

type jsonCursor struct {
	Start int    `json:"start"`
	Text  string `json:"text"`
}

type jsonPrintResult struct {
	Path      string      `json:"path"`
	Output    string      `json:"output"`
	Changed   bool        `json:"changed"`
	Cached    bool        `json:"cached,omitempty"`
	Formatted *string     `json:"formatted,omitempty"`
	Cursor    *jsonCursor `json:"cursor,omitempty"`
	Error     string      `json:"error,omitempty"`
	ElapsedMS float64     `json:"elapsed_ms"`
}

type jsonPrintReport struct {
	RunID   string            `json:"run_id"`
	Mode    string            `json:"mode"`
	Results []jsonPrintResult `json:"results"`
	Timings *observ.Report    `json:"timings,omitempty"`
}

func renderPrintJSON(out io.Writer, report *driver.Report, mode driver.Mode, withTimings bool) error {
	payload := jsonPrintReport{
		RunID:   report.RunID.String(),
		Mode:    mode.String(),
		Results: make([]jsonPrintResult, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		jr := jsonPrintResult{
			Path:      res.Path,
			Output:    res.OutputPath,
			Changed:   res.Changed,
			Cached:    res.Cached,
			ElapsedMS: float64(res.Elapsed.Microseconds()) / 1000,
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		} else if mode == driver.ModeStdout {
			text := string(res.Formatted)
			jr.Formatted = &text
		}
		if res.CursorNode != nil {
			jr.Cursor = &jsonCursor{Start: res.CursorNode.Start, Text: res.CursorNode.Text}
		}
		payload.Results = append(payload.Results, jr)
	}
	if withTimings {
		timing := report.Timing
		payload.Timings = &timing
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return errors.Join(errors.New("print: failed to write json report"), err)
	}
	return nil
}
