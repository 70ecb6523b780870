// Package engagement derives viewer-engagement metrics from raw video view
// counts before they are stored.
package engagement

import "math"

// CompletionRate returns the fraction of viewers who reached the end of a
// video, clamped to [0, 1]. A video nobody started has a rate of 0.
func CompletionRate(startViews, endViews int) float64 {
	if startViews <= 0 || endViews <= 0 {
		return 0
	}

	rate := float64(endViews) / float64(startViews)
	return math.Min(rate, 1)
}

// CompletionPercent returns the completion rate as a whole percentage,
// rounded to the nearest integer.
func CompletionPercent(startViews, endViews int) int {
	return int(math.Round(CompletionRate(startViews, endViews) * 100))
}
