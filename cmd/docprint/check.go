package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docprint/internal/doc"
	"docprint/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <path> [path...]",
	Short: "Validate doc files without printing them",
	Long: `check decodes every doc file under the given paths, validates it against
the doc JSON schema and checks the structural rules the printer relies on.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	addInputFlags(checkCmd)
	checkCmd.Flags().String("format", "text", "output format (text|json)")
}

type checkResult struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if outputFormat != "text" && outputFormat != "json" {
		return reportError(fmt.Errorf("check: unsupported output format %q", outputFormat))
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	s, err := resolveSettings(cmd, false)
	if err != nil {
		return reportError(err)
	}
	s.decode.Validate = true

	files, err := driver.CollectFiles(cmd.Context(), args, s.inputFormat != "")
	if err != nil {
		return reportError(fmt.Errorf("check: %w", err))
	}
	if len(files) == 0 {
		return reportError(fmt.Errorf("check: %w", driver.ErrNoFiles))
	}

	results := make([]checkResult, 0, len(files))
	failed := 0
	for _, path := range files {
		res := checkResult{Path: path, Valid: true}
		if err := checkFile(cmd, path, s); err != nil {
			res.Valid = false
			res.Error = err.Error()
			failed++
		}
		results = append(results, res)
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			if !res.Valid {
				fmt.Fprintf(os.Stderr, "check: %s\n", res.Error)
				continue
			}
			if !quiet {
				fmt.Fprintf(out, "ok %s\n", res.Path)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("check: %d of %d files are invalid", failed, len(files))
	}
	return nil
}

func checkFile(cmd *cobra.Command, path string, s settings) error {
	d, err := decodeFile(cmd, path, s)
	if err != nil {
		return err
	}
	if err := doc.Validate(d); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
