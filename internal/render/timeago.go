package render

import (
	"fmt"
	"math"
	"time"
)

// TimeAgo formats t relative to now the way the dashboard does: "just now"
// under five seconds, then seconds, minutes and hours up to two days, then
// a short date.
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	secs := now.Sub(t).Seconds()
	switch {
	case secs < 0:
		return "Future Date"
	case secs < 5:
		return "just now"
	case secs < 60:
		return fmt.Sprintf("%.0fs ago", math.Round(secs))
	case secs < 3600:
		return fmt.Sprintf("%.0fm ago", math.Round(secs/60))
	case secs <= 2*86400:
		return fmt.Sprintf("%.0fh ago", math.Round(secs/3600))
	default:
		return t.Local().Format("Jan 2, 2006")
	}
}
