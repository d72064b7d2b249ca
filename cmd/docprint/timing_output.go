package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"docprint/internal/driver"
	"docprint/internal/observ"
)

const slowestFiles = 5

// printTimings writes the stage table followed by the slowest files.
func printTimings(out io.Writer, timer *observ.Timer, report *driver.Report) {
	if out == nil || timer == nil || report == nil {
		return
	}
	_, _ = io.WriteString(out, timer.Summary())

	results := append([]driver.PrintResult(nil), report.Results...)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Elapsed > results[j].Elapsed
	})
	if len(results) > slowestFiles {
		results = results[:slowestFiles]
	}
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(out, "slowest files:")
	for _, res := range results {
		fmt.Fprintf(out, "  %-32s %8s\n", res.Path, res.Elapsed.Round(time.Microsecond))
	}
}
