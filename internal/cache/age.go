package cache

import (
	"fmt"
	"time"
)

// FormatAge converts an RFC3339 generation timestamp into a coarse freshness
// label. Unparseable input yields "unknown".
func FormatAge(generatedAt string) string {
	t, err := time.Parse(time.RFC3339, generatedAt)
	if err != nil {
		return "unknown"
	}
	return AgeLabel(time.Since(t))
}

// AgeLabel buckets an elapsed duration into "just now", "{n}m ago",
// "{n}h ago" or "{n}d ago" using integer truncation.
func AgeLabel(elapsed time.Duration) string {
	secs := int64(elapsed.Seconds())
	switch {
	case secs < 60:
		return "just now"
	case secs < 3600:
		return fmt.Sprintf("%dm ago", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%dh ago", secs/3600)
	default:
		return fmt.Sprintf("%dd ago", secs/86400)
	}
}
