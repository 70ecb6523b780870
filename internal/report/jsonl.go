package report

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatJSONL converts metric entries to a JSONL string.
func FormatJSONL(entries []MetricEntry) string {
	var sb strings.Builder

	for _, e := range entries {
		obj := map[string]interface{}{
			"course":   e.Course,
			"metric":   e.Metric,
			"category": formatString(e.Category),
			"date":     formatString(e.Date),
			"count":    e.Count,
		}

		data, err := json.Marshal(obj)
		if err != nil {
			// Should not happen with simple map
			panic(fmt.Sprintf("marshal error: %v", err))
		}

		sb.Write(data)
		sb.WriteString("\n")
	}

	return sb.String()
}
