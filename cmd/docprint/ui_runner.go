package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"docprint/internal/driver"
	"docprint/internal/ui"
)

type runOutcome struct {
	report *driver.Report
	err    error
}

// runPrintWithUI runs the batch in the background while a progress view
// renders its events. Quitting the view cancels the batch.
func runPrintWithUI(ctx context.Context, title string, paths []string, opts driver.PrintOptions) (*driver.Report, error) {
	files, err := driver.CollectFiles(ctx, paths, opts.InputFormat != "")
	if err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		report, err := driver.Run(runCtx, paths, optsCopy)
		outcomeCh <- runOutcome{report: report, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	final, uiErr := program.Run()
	interrupted := ui.Interrupted(final)
	if uiErr != nil || interrupted {
		cancel()
		// keep the worker unblocked once the view is gone
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if interrupted {
		return outcome.report, ui.ErrInterrupted
	}
	if uiErr != nil && outcome.err == nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}
