package report_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/open-insights/course-analytics/internal/report"
)

var testEntries = []report.MetricEntry{
	{
		Course:   "edX/DemoX/Demo_Course",
		Metric:   "enrollment",
		Category: "gender:m",
		Date:     "2025-10-04",
		Count:    40,
	},
}

func TestWriter_WriteMarkdown(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "report.md")

	writer := report.NewWriter()
	ctx := context.Background()

	if err := writer.WriteMarkdown(ctx, outputPath, testEntries); err != nil {
		t.Fatalf("WriteMarkdown() error = %v", err)
	}

	// Verify file exists
	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		t.Errorf("output file was not created at %s", outputPath)
	}

	// Verify content
	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read output file: %v", err)
	}

	if len(data) == 0 {
		t.Errorf("output file is empty")
	}
}

func TestWriter_WriteCSV(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "report.csv")

	writer := report.NewWriter()
	ctx := context.Background()

	if err := writer.WriteCSV(ctx, outputPath, testEntries); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		t.Errorf("output file was not created at %s", outputPath)
	}
}

func TestWriter_WriteJSONL(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "report.jsonl")

	writer := report.NewWriter()
	ctx := context.Background()

	if err := writer.WriteJSONL(ctx, outputPath, testEntries); err != nil {
		t.Fatalf("WriteJSONL() error = %v", err)
	}

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		t.Errorf("output file was not created at %s", outputPath)
	}
}

func TestWriter_FilePermissions0600(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "report-perm.csv")

	writer := report.NewWriter()
	ctx := context.Background()

	if err := writer.WriteCSV(ctx, outputPath, testEntries); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		t.Fatalf("failed to stat output file: %v", err)
	}

	mode := info.Mode().Perm()
	if mode != 0o600 {
		t.Errorf("file permissions = %04o, want 0600", mode)
	}
}
