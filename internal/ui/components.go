package ui

import (
	"fmt"
	"strings"
	"time"
)

// formatDuration formats a duration as m:ss.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100+0.5))
}

func renderRotation(speed float64) string {
	return fmt.Sprintf("%.2f rad/s", speed)
}

// progressRatio is elapsed over total clamped to [0, 1].
func progressRatio(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return min(max(elapsed.Seconds()/total.Seconds(), 0), 1)
}

// spread lays left and right out across width with at least two spaces
// between them.
func spread(left, right string, leftWidth, rightWidth, width int) string {
	gap := max(width-leftWidth-rightWidth, 2)
	return left + strings.Repeat(" ", gap) + right
}
