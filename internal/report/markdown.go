package report

import (
	"fmt"
	"strings"
)

// markdownReplacer is used to escape special Markdown characters.
var markdownReplacer = strings.NewReplacer(
	"|", "\\|", // Pipe breaks table structure
	"*", "\\*", // Asterisk for emphasis/bold
	"_", "\\_", // Underscore for emphasis/bold
	"[", "\\[", // Opening bracket for links
	"]", "\\]", // Closing bracket for links
	"<", "\\<", // Opening angle bracket for HTML tags
	">", "\\>", // Closing angle bracket for HTML tags
	"`", "\\`", // Backtick for code
	"#", "\\#", // Hash for headers
	"\\", "\\\\", // Backslash itself
)

// FormatMarkdown generates a Markdown table from metric entries.
func FormatMarkdown(entries []MetricEntry) string {
	var sb strings.Builder

	sb.WriteString("| Course | Metric | Category | Date | Count |\n")
	sb.WriteString("| --- | --- | --- | --- | --- |\n")

	for _, e := range entries {
		course := escapeMarkdown(e.Course)
		metric := escapeMarkdown(e.Metric)
		category := escapeMarkdown(formatString(e.Category))
		date := escapeMarkdown(formatString(e.Date))

		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d |\n",
			course, metric, category, date, e.Count))
	}

	return sb.String()
}

// escapeMarkdown escapes special characters that could break Markdown table
// formatting or be interpreted as Markdown syntax.
func escapeMarkdown(s string) string {
	return markdownReplacer.Replace(s)
}
