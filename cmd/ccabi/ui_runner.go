package main

import (
	"context"
	"os"

	"ccabi/internal/driver"
	"ccabi/internal/source"
	"ccabi/internal/ui"
)

type layoutOutcome struct {
	fileSet *source.FileSet
	results []driver.FileResult
	err     error
}

// runLayoutWithUI lays out files while a progress view is drawn on stderr,
// keeping stdout for the report.
func runLayoutWithUI(ctx context.Context, title string, files []string, opts driver.Options) (*source.FileSet, []driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan layoutOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		fs, results, err := driver.LayoutFiles(ctx, files, optsCopy)
		outcomeCh <- layoutOutcome{fileSet: fs, results: results, err: err}
		close(events)
	}()

	uiErr := ui.Run(title, files, events, os.Stderr)
	// the view may quit early; the workers must not block on a full channel
	for range events {
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}
