package streak

import (
	"testing"
	"time"
)

func TestDueToday(t *testing.T) {
	monday := day(2024, time.January, 8)
	tuesday := day(2024, time.January, 9)

	cases := []struct {
		name  string
		freq  Frequency
		today time.Time
		want  bool
	}{
		{"daily always due", Frequency{Type: Daily}, monday, true},
		{"weekly without pinned days", Frequency{Type: Weekly, TimesPerPeriod: 3}, tuesday, true},
		{"weekly pinned to today", Frequency{Type: Weekly, SpecificDays: []time.Weekday{time.Monday}}, monday, true},
		{"weekly pinned elsewhere", Frequency{Type: Weekly, SpecificDays: []time.Weekday{time.Monday}}, tuesday, false},
		{"specific day matches", Frequency{Type: SpecificDays, SpecificDays: []time.Weekday{time.Monday, time.Friday}}, monday, true},
		{"specific day misses", Frequency{Type: SpecificDays, SpecificDays: []time.Weekday{time.Friday}}, tuesday, false},
		{"specific days empty degrades to daily", Frequency{Type: SpecificDays}, tuesday, true},
	}
	for _, c := range cases {
		if got := DueToday(c.freq, c.today); got != c.want {
			t.Errorf("%s: DueToday = %v, want %v", c.name, got, c.want)
		}
	}
}
