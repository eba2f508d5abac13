package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/KaramelBytes/qip-spc-cli/internal/session"
	"github.com/KaramelBytes/qip-spc-cli/internal/workbook"
	"github.com/spf13/cobra"
)

const stopTimeout = 5 * time.Second

// openSession starts a session and loads path into it. The returned func
// stops the session.
func openSession(cmd *cobra.Command, path string) (*session.Session, func(), error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c := config()
	s := session.New(logger, session.Options{
		Workbook:  c.WorkbookOptions(),
		Engine:    c.EngineOptions(),
		QueueSize: c.QueueSize,
	})
	s.Start(ctx)
	stop := func() { _ = s.Stop(stopTimeout) }
	if _, err := s.Load(ctx, path); err != nil {
		stop()
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, stop, nil
}

// selector resolves --cavity/--average. No flag means the average.
func selector(cavity string, average bool) (workbook.CavitySelector, error) {
	if cavity != "" && average {
		return workbook.CavitySelector{}, fmt.Errorf("--cavity and --average are mutually exclusive")
	}
	if cavity != "" {
		return workbook.Named(cavity), nil
	}
	return workbook.AverageAll(), nil
}

// filter builds the batch filter from --start/--end/--exclude.
func filter(start, end int, exclude []int) (workbook.Filter, error) {
	if start < 0 || end < 0 {
		return workbook.Filter{}, fmt.Errorf("--start and --end must be non-negative")
	}
	return workbook.Filter{Range: workbook.BatchRange{Start: start, End: end}, Excluded: exclude}, nil
}
