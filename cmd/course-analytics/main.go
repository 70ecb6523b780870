package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/open-insights/course-analytics/internal/app"
	"github.com/open-insights/course-analytics/internal/config"
	"github.com/open-insights/course-analytics/internal/store"
)

var (
	fetchMode    = flag.Bool("fetch", false, "Fetch course metrics from the analytics API")
	reportMode   = flag.Bool("report", false, "Generate report instead of fetching")
	reportFormat = flag.String("format", "markdown", "Report format: markdown, csv, jsonl")
	reportOutput = flag.String("output", "./report.md", "Report output base path (timestamp suffix appended before extension)")
	reportCourse = flag.String("course", "", "Filter report by course ID (empty = all)")
	reportDiff   = flag.Bool("diff", false, "Generate differential report (only new/changed metrics)")
	helpMode     = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		log.Fatalf("error: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	if *helpMode || (!*fetchMode && !*reportMode) {
		app.ShowHelp()
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := store.NewStore(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("new store: %w", err)
	}
	defer st.Close()

	if *reportMode {
		return app.GenerateReport(ctx, st, app.ReportOptions{
			Format: *reportFormat,
			Output: *reportOutput,
			Course: *reportCourse,
			Diff:   *reportDiff,
		})
	}

	if *fetchMode {
		return app.Fetch(ctx, cfg, st)
	}

	return nil
}
