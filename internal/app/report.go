package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/open-insights/course-analytics/internal/report"
	"github.com/open-insights/course-analytics/internal/store"
)

// ReportOptions holds options for report generation.
type ReportOptions struct {
	Format string
	Output string
	Course string
	Diff   bool
}

// GenerateReport creates a course metrics report from the database.
func GenerateReport(ctx context.Context, st *store.Store, opts ReportOptions) error {
	outputPath := resolveOutputPath(opts.Output, time.Now().UTC())
	slog.Info("generating report", "format", opts.Format, "output", outputPath, "course", opts.Course, "diff", opts.Diff)

	var entries []store.MetricEntry
	var err error

	if opts.Diff {
		entries, err = st.GetUnreportedMetrics(ctx, opts.Course)
		if err != nil {
			return fmt.Errorf("get unreported metrics: %w", err)
		}
	} else {
		entries, err = st.GetMetricsForReport(ctx, opts.Course)
		if err != nil {
			return fmt.Errorf("get metrics: %w", err)
		}
	}

	slog.Info("fetched metrics", "count", len(entries))

	if len(entries) == 0 {
		slog.Warn("no metrics found in database")
		return nil
	}

	reportEntries := convertToReportEntries(entries)
	writer := report.NewWriter()

	switch opts.Format {
	case "markdown":
		err = writer.WriteMarkdown(ctx, outputPath, reportEntries)
	case "csv":
		err = writer.WriteCSV(ctx, outputPath, reportEntries)
	case "jsonl":
		err = writer.WriteJSONL(ctx, outputPath, reportEntries)
	default:
		return fmt.Errorf("unknown report format: %s (supported: markdown, csv, jsonl)", opts.Format)
	}

	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	slog.Info("report generated successfully", "output", outputPath)

	if opts.Diff {
		allEntries, err := st.GetMetricsForReport(ctx, opts.Course)
		if err != nil {
			return fmt.Errorf("get all metrics for snapshot: %w", err)
		}
		if err := st.SaveReportSnapshot(ctx, allEntries); err != nil {
			return fmt.Errorf("save report snapshot: %w", err)
		}
		slog.Info("saved report snapshot", "count", len(allEntries))
	}

	return nil
}

func resolveOutputPath(base string, now time.Time) string {
	if base == "" {
		return base
	}

	dir := filepath.Dir(base)
	filename := filepath.Base(base)
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)
	timestamp := now.Format("20060102T150405Z")

	newName := fmt.Sprintf("%s_%s%s", name, timestamp, ext)
	return filepath.Join(dir, newName)
}

func convertToReportEntries(entries []store.MetricEntry) []report.MetricEntry {
	result := make([]report.MetricEntry, len(entries))
	for i, e := range entries {
		result[i] = report.MetricEntry{
			Course:   e.Course,
			Metric:   e.Metric,
			Category: e.Category,
			Date:     e.Date,
			Count:    e.Count,
		}
	}
	return result
}
