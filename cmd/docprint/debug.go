package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docprint/internal/codec"
	"docprint/internal/doc"
)

var debugCmd = &cobra.Command{
	Use:   "debug [flags] <file>",
	Short: "Show a doc file as builder calls",
	Long: `debug decodes a doc file and prints it as the builder expression that
would construct it. With --encode the decoded doc is written back out in
another serialization instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runDebug,
}

func init() {
	addInputFlags(debugCmd)
	debugCmd.Flags().Bool("clean", false, "simplify the doc before showing it")
	debugCmd.Flags().String("encode", "", "re-encode the doc (json|yaml|msgpack) instead of showing builder calls")
	debugCmd.Flags().Bool("breaks", false, "report groups broken by propagation")
}

func runDebug(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	clean, err := cmd.Flags().GetBool("clean")
	if err != nil {
		return fmt.Errorf("failed to get clean flag: %w", err)
	}
	encodeTo, err := cmd.Flags().GetString("encode")
	if err != nil {
		return fmt.Errorf("failed to get encode flag: %w", err)
	}
	showBreaks, err := cmd.Flags().GetBool("breaks")
	if err != nil {
		return fmt.Errorf("failed to get breaks flag: %w", err)
	}

	s, err := resolveSettings(cmd, false)
	if err != nil {
		return err
	}
	d, err := decodeFile(cmd, args[0], s)
	if err != nil {
		return err
	}
	if clean {
		if d, err = doc.CleanDoc(d); err != nil {
			return fmt.Errorf("debug: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if encodeTo != "" {
		f, err := codec.ParseFormat(encodeTo)
		if err != nil {
			return err
		}
		data, err := codec.Encode(d, f)
		if err != nil {
			return fmt.Errorf("debug: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	text, err := doc.Debug(d)
	if err != nil {
		return fmt.Errorf("debug: %w", err)
	}
	fmt.Fprintln(out, text)

	if showBreaks {
		breaks, err := doc.PropagateBreaks(d)
		if err != nil {
			return fmt.Errorf("debug: %w", err)
		}
		willBreak, err := doc.WillBreak(d)
		if err != nil {
			return fmt.Errorf("debug: %w", err)
		}
		fmt.Fprintf(out, "// propagated breaks: %d, will break: %t\n", breaks.Len(), willBreak)
	}
	return nil
}

// decodeFile reads one doc file with the resolved input settings.
func decodeFile(cmd *cobra.Command, path string, s settings) (doc.Doc, error) {
	f := s.inputFormat
	if f == "" {
		var err error
		if f, err = codec.FormatFromPath(path); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := codec.DecodeContext(cmd.Context(), data, f, s.decode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}
