package utils

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration in a short human-readable form, for
// status endpoints and log lines.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dd%dh", int(d.Hours())/24, int(d.Hours())%24)
}

// Since is time.Since truncated to whole seconds.
func Since(t time.Time) time.Duration {
	return time.Since(t).Truncate(time.Second)
}
