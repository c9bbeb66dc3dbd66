package history

import (
	"testing"
	"time"

	"horse.fit/lingo/internal/globaltime"
)

func TestFormatRelativeTimeBuckets(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	globaltime.SetMockTime(now)
	defer globaltime.ResetTime()

	const layout = "2006-01-02T15:04:05"

	cases := []struct {
		name string
		age  time.Duration
		want string
	}{
		{name: "seconds old is just now", age: 30 * time.Second, want: "just now"},
		{name: "under a minute boundary", age: 59 * time.Second, want: "just now"},
		{name: "single minute", age: 90 * time.Second, want: "1 minute ago"},
		{name: "minutes", age: 5 * time.Minute, want: "5 minutes ago"},
		{name: "floor division of minutes", age: 59*time.Minute + 59*time.Second, want: "59 minutes ago"},
		{name: "single hour", age: time.Hour + 10*time.Minute, want: "1 hour ago"},
		{name: "hours", age: 7 * time.Hour, want: "7 hours ago"},
		{name: "single day from 26 hours", age: 26 * time.Hour, want: "1 day ago"},
		{name: "days", age: 3 * 24 * time.Hour, want: "3 days ago"},
		{name: "six days", age: 6*24*time.Hour + 23*time.Hour, want: "6 days ago"},
	}

	for _, tc := range cases {
		raw := now.Add(-tc.age).Format(layout)
		if got := FormatRelativeTime(raw); got != tc.want {
			t.Errorf("%s: FormatRelativeTime(%q) = %q, want %q", tc.name, raw, got, tc.want)
		}
	}
}

func TestFormatRelativeTimeWeekOldUsesAbsoluteDate(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	globaltime.SetMockTime(now)
	defer globaltime.ResetTime()

	raw := now.Add(-8 * 24 * time.Hour).Format("2006-01-02T15:04:05")
	got := FormatRelativeTime(raw)
	if got == "" || got == InvalidDateSentinel {
		t.Fatalf("expected an absolute date, got %q", got)
	}
	if got == "7 days ago" || got == "8 days ago" {
		t.Fatalf("week-old entries must render absolutely, got %q", got)
	}
}

func TestFormatRelativeTimeFutureTimestampIsJustNow(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	globaltime.SetMockTime(now)
	defer globaltime.ResetTime()

	raw := now.Add(2 * time.Minute).Format("2006-01-02T15:04:05")
	if got := FormatRelativeTime(raw); got != "just now" {
		t.Fatalf("clock skew must clamp to just now, got %q", got)
	}
}

func TestFormatRelativeTimeInvalidInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "not-a-date", "2026-13-45T99:99:99"} {
		if got := FormatRelativeTime(raw); got != InvalidDateSentinel {
			t.Errorf("FormatRelativeTime(%q) = %q, want sentinel", raw, got)
		}
	}
}
