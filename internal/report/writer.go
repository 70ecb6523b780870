package report

import (
	"context"
	"fmt"
	"os"
)

// MetricEntry is one reportable metric row.
type MetricEntry struct {
	Course   string
	Metric   string
	Category string
	Date     string
	Count    int
}

// Writer renders metric entries into report files.
type Writer struct{}

// NewWriter creates a new report writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteMarkdown writes metric entries to a Markdown file.
func (w *Writer) WriteMarkdown(ctx context.Context, path string, entries []MetricEntry) error {
	content := FormatMarkdown(entries)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// WriteCSV writes metric entries to a CSV file.
func (w *Writer) WriteCSV(ctx context.Context, path string, entries []MetricEntry) error {
	content := FormatCSV(entries)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteJSONL writes metric entries to a JSONL file.
func (w *Writer) WriteJSONL(ctx context.Context, path string, entries []MetricEntry) error {
	content := FormatJSONL(entries)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("write jsonl: %w", err)
	}
	return nil
}

// formatString returns "NA" if val is empty, otherwise returns val.
func formatString(val string) string {
	if val == "" {
		return "NA"
	}
	return val
}
