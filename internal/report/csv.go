package report

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FormatCSV generates CSV output from metric entries.
func FormatCSV(entries []MetricEntry) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"course", "metric", "category", "date", "count"}
	if err := w.Write(header); err != nil {
		return ""
	}

	for _, e := range entries {
		record := []string{
			escapeCSVInjection(e.Course),
			escapeCSVInjection(e.Metric),
			escapeCSVInjection(formatString(e.Category)),
			escapeCSVInjection(formatString(e.Date)),
			strconv.Itoa(e.Count),
		}
		if err := w.Write(record); err != nil {
			return ""
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return ""
	}

	return buf.String()
}

// escapeCSVInjection prevents CSV formula injection by prefixing dangerous
// characters with a single quote.
func escapeCSVInjection(s string) string {
	if s == "" {
		return s
	}

	trimmed := strings.TrimLeftFunc(s, unicode.IsSpace)
	if trimmed == "" {
		return s
	}

	first, _ := utf8.DecodeRuneInString(trimmed)
	dangerous := []rune{'=', '+', '-', '@'}
	for _, d := range dangerous {
		if first == d {
			return "'" + s
		}
	}

	return s
}
