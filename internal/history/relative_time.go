package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"horse.fit/lingo/internal/globaltime"
)

// InvalidDateSentinel is rendered for timestamps that cannot be parsed.
// Display code never gets an error for a bad server timestamp, only this.
const InvalidDateSentinel = "invalid date"

const absoluteDateLayout = "Jan 2, 2006 3:04 PM"

// FormatRelativeTime buckets a raw server timestamp against the current
// instant: "just now" under a minute, then minutes, hours and days, and an
// absolute date once the entry is a week old.
func FormatRelativeTime(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return InvalidDateSentinel
	}

	ts, err := dateparse.ParseAny(trimmed)
	if err != nil {
		return InvalidDateSentinel
	}

	elapsed := globaltime.Since(ts.UTC())
	if elapsed < 0 {
		elapsed = 0
	}

	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return pluralize(int(elapsed/time.Minute), "minute")
	case elapsed < 24*time.Hour:
		return pluralize(int(elapsed/time.Hour), "hour")
	case elapsed < 7*24*time.Hour:
		return pluralize(int(elapsed/(24*time.Hour)), "day")
	default:
		return ts.Local().Format(absoluteDateLayout)
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
