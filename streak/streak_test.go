package streak

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func days(ds ...time.Time) []time.Time { return ds }

func daysRange(from, to time.Time) []time.Time {
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func TestCompute_EmptyHistory(t *testing.T) {
	today := day(2024, time.January, 10)
	freqs := []Frequency{
		{Type: Daily},
		{Type: Weekly, TimesPerPeriod: 3},
		{Type: SpecificDays, SpecificDays: []time.Weekday{time.Monday}},
	}
	for _, f := range freqs {
		res, err := Compute(f, nil, today)
		if err != nil {
			t.Fatalf("Compute(%s) failed: %v", f.Type, err)
		}
		if res.Current != 0 || res.Longest != 0 {
			t.Errorf("Compute(%s) empty history = %+v, want {0 0}", f.Type, res)
		}
	}
}

func TestCompute_UnknownFrequencyFails(t *testing.T) {
	_, err := Compute(Frequency{Type: "biweekly"}, days(day(2024, time.January, 1)), day(2024, time.January, 2))
	if !errors.Is(err, ErrUnknownFrequency) {
		t.Fatalf("err = %v, want ErrUnknownFrequency", err)
	}

	// Unknown type must fail even with an empty history; only valid
	// configurations get the zero-result shortcut.
	if _, err := Compute(Frequency{Type: "biweekly"}, nil, day(2024, time.January, 2)); !errors.Is(err, ErrUnknownFrequency) {
		t.Fatalf("empty history err = %v, want ErrUnknownFrequency", err)
	}
}

func TestDaily_GapRestartsCurrentStreak(t *testing.T) {
	// Habit started 2024-01-01, completed Jan 1-5, missed Jan 6,
	// completed Jan 7-10, evaluated on Jan 10.
	history := append(
		daysRange(day(2024, time.January, 1), day(2024, time.January, 5)),
		daysRange(day(2024, time.January, 7), day(2024, time.January, 10))...,
	)

	res, err := Compute(Frequency{Type: Daily}, history, day(2024, time.January, 10))
	if err != nil {
		t.Fatal(err)
	}
	if res.Current != 4 {
		t.Errorf("Current = %d, want 4 (Jan 7-10 only, not across the gap)", res.Current)
	}
	if res.Longest != 5 {
		t.Errorf("Longest = %d, want 5 (Jan 1-5)", res.Longest)
	}
}

func TestDaily_UnbrokenRunCountsEveryDay(t *testing.T) {
	start := day(2024, time.March, 3)
	today := day(2024, time.March, 19)
	res, err := Compute(Frequency{Type: Daily}, daysRange(start, today), today)
	if err != nil {
		t.Fatal(err)
	}
	want := DaysBetween(start, today) + 1
	if res.Current != want || res.Longest != want {
		t.Errorf("got %+v, want current=longest=%d", res, want)
	}
}

func TestDaily_YesterdayKeepsStreakAlive(t *testing.T) {
	history := daysRange(day(2024, time.January, 5), day(2024, time.January, 9))

	// Exactly one day since the last completion: still alive.
	res, err := Compute(Frequency{Type: Daily}, history, day(2024, time.January, 10))
	if err != nil {
		t.Fatal(err)
	}
	if res.Current != 5 {
		t.Errorf("one day since last completion: Current = %d, want 5", res.Current)
	}

	// Two days since the last completion: broken.
	res, err = Compute(Frequency{Type: Daily}, history, day(2024, time.January, 11))
	if err != nil {
		t.Fatal(err)
	}
	if res.Current != 0 {
		t.Errorf("two days since last completion: Current = %d, want 0", res.Current)
	}
	if res.Longest != 5 {
		t.Errorf("Longest = %d, want 5 (history is unchanged)", res.Longest)
	}
}

func TestDaily_DuplicateTimestampsCollapse(t *testing.T) {
	d := day(2024, time.January, 9)
	history := []time.Time{
		d.Add(8 * time.Hour),
		d.Add(21 * time.Hour),
		day(2024, time.January, 10).Add(6 * time.Hour),
	}
	res, err := Compute(Frequency{Type: Daily}, history, day(2024, time.January, 10))
	if err != nil {
		t.Fatal(err)
	}
	if res.Current != 2 || res.Longest != 2 {
		t.Errorf("got %+v, want {2 2}", res)
	}
}

func TestWeekly_QuotaDecidesWhetherWeekCounts(t *testing.T) {
	// timesPerPeriod=2. Week of Jan 7: Mon 8th + Wed 10th. Week of
	// Jan 14: Tue 16th + Thu 18th. Both meet the quota.
	history := days(
		day(2024, time.January, 8), day(2024, time.January, 10),
		day(2024, time.January, 16), day(2024, time.January, 18),
	)
	freq := Frequency{Type: Weekly, TimesPerPeriod: 2}

	res, err := Compute(freq, history, day(2024, time.January, 18))
	if err != nil {
		t.Fatal(err)
	}
	if res.Current != 2 || res.Longest != 2 {
		t.Errorf("got %+v, want {2 2}", res)
	}

	// Only one completion in the second week: below quota, week does
	// not count.
	short := days(
		day(2024, time.January, 8), day(2024, time.January, 10),
		day(2024, time.January, 16),
	)
	res, err = Compute(freq, short, day(2024, time.January, 18))
	if err != nil {
		t.Fatal(err)
	}
	if res.Longest != 1 {
		t.Errorf("Longest = %d, want 1 (second week misses quota)", res.Longest)
	}
}

func TestWeekly_PreviousWeekAnchorsUntilQuotaMet(t *testing.T) {
	// Two qualifying weeks, then "today" falls in a fresh week with no
	// completions yet. The streak must not be voided mid-week.
	history := days(
		day(2024, time.January, 8), day(2024, time.January, 10),
		day(2024, time.January, 16), day(2024, time.January, 18),
	)
	res, err := Compute(Frequency{Type: Weekly, TimesPerPeriod: 2}, history, day(2024, time.January, 24))
	if err != nil {
		t.Fatal(err)
	}
	if res.Current != 2 {
		t.Errorf("Current = %d, want 2 (anchored on last complete week)", res.Current)
	}

	// A week later with still nothing recorded, the streak is gone.
	res, err = Compute(Frequency{Type: Weekly, TimesPerPeriod: 2}, history, day(2024, time.January, 31))
	if err != nil {
		t.Fatal(err)
	}
	if res.Current != 0 {
		t.Errorf("Current = %d, want 0 (neither current nor previous week counts)", res.Current)
	}
}

func TestWeekly_SkippedWeekBreaksRun(t *testing.T) {
	// Weeks of Jan 7 and Jan 14 qualify, nothing in the week of Jan 21,
	// week of Jan 28 qualifies again.
	history := days(
		day(2024, time.January, 8),
		day(2024, time.January, 16),
		day(2024, time.January, 29),
	)
	res, err := Compute(Frequency{Type: Weekly, TimesPerPeriod: 1}, history, day(2024, time.January, 29))
	if err != nil {
		t.Fatal(err)
	}
	if res.Longest != 2 {
		t.Errorf("Longest = %d, want 2 (gap week splits the runs)", res.Longest)
	}
	if res.Current != 1 {
		t.Errorf("Current = %d, want 1 (only the current week counts)", res.Current)
	}
}

func TestSpecificDays_EveryConfiguredDayRequired(t *testing.T) {
	monWedFri := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	// Week of Jan 7: Mon 8, Wed 10, Fri 12 — complete. Week of Jan 14:
	// Mon 15, Wed 17, Friday missed.
	history := days(
		day(2024, time.January, 8), day(2024, time.January, 10), day(2024, time.January, 12),
		day(2024, time.January, 15), day(2024, time.January, 17),
	)

	res, err := Compute(Frequency{Type: SpecificDays, SpecificDays: monWedFri}, history, day(2024, time.January, 20))
	if err != nil {
		t.Fatal(err)
	}
	if res.Longest != 1 {
		t.Errorf("Longest = %d, want 1 (missing Friday voids the second week)", res.Longest)
	}
	if res.Current != 1 {
		t.Errorf("Current = %d, want 1 (anchored on the last complete week)", res.Current)
	}
}

func TestSpecificDays_DueSoFarKeepsCurrentWeekAlive(t *testing.T) {
	monWedFri := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	// Same history but evaluated on Wednesday the 17th: Friday is not
	// due yet, Monday and Wednesday are both done.
	history := days(
		day(2024, time.January, 8), day(2024, time.January, 10), day(2024, time.January, 12),
		day(2024, time.January, 15), day(2024, time.January, 17),
	)

	res, err := Compute(Frequency{Type: SpecificDays, SpecificDays: monWedFri}, history, day(2024, time.January, 17))
	if err != nil {
		t.Fatal(err)
	}
	if res.Current != 2 {
		t.Errorf("Current = %d, want 2 (in-progress week plus the complete one)", res.Current)
	}

	// Miss Monday of the current week instead: the complete previous
	// week anchors alone.
	behind := days(
		day(2024, time.January, 8), day(2024, time.January, 10), day(2024, time.January, 12),
		day(2024, time.January, 17),
	)
	res, err = Compute(Frequency{Type: SpecificDays, SpecificDays: monWedFri}, behind, day(2024, time.January, 17))
	if err != nil {
		t.Fatal(err)
	}
	if res.Current != 1 {
		t.Errorf("Current = %d, want 1 (current week already missed Monday)", res.Current)
	}
}

func TestSpecificDays_EmptyConfigFallsBackToDaily(t *testing.T) {
	history := daysRange(day(2024, time.January, 8), day(2024, time.January, 10))
	res, err := Compute(Frequency{Type: SpecificDays}, history, day(2024, time.January, 10))
	if err != nil {
		t.Fatal(err)
	}
	if res.Current != 3 || res.Longest != 3 {
		t.Errorf("got %+v, want {3 3} (daily semantics)", res)
	}
}

func TestLongest_MonotonicAsHistoryGrows(t *testing.T) {
	// At a fixed reference day, adding check-ins must never lower the
	// longest streak, regardless of gaps, for every frequency type.
	today := day(2024, time.January, 16)
	additions := days(
		day(2024, time.January, 1),
		day(2024, time.January, 2),
		day(2024, time.January, 3),
		day(2024, time.January, 5), // gap
		day(2024, time.January, 6),
		day(2024, time.January, 7),
		day(2024, time.January, 8),
		day(2024, time.January, 15), // bigger gap
		day(2024, time.January, 16),
	)
	freqs := []Frequency{
		{Type: Daily},
		{Type: Weekly, TimesPerPeriod: 2},
		{Type: SpecificDays, SpecificDays: []time.Weekday{time.Monday, time.Tuesday}},
	}

	for _, freq := range freqs {
		var history []time.Time
		prevLongest := 0
		for _, d := range additions {
			history = append(history, d)
			res, err := Compute(freq, history, today)
			if err != nil {
				t.Fatal(err)
			}
			if res.Longest < prevLongest {
				t.Errorf("%s: Longest regressed %d -> %d after adding %s",
					freq.Type, prevLongest, res.Longest, d.Format("2006-01-02"))
			}
			prevLongest = res.Longest
		}
	}
}

func TestCompute_LongestNeverBelowCurrent(t *testing.T) {
	// The specific-days current streak can include a week that is only
	// partially due; Longest must still cover it.
	monWedFri := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	history := days(
		day(2024, time.January, 8), day(2024, time.January, 10), day(2024, time.January, 12),
		day(2024, time.January, 15), day(2024, time.January, 17),
	)
	res, err := Compute(Frequency{Type: SpecificDays, SpecificDays: monWedFri}, history, day(2024, time.January, 17))
	if err != nil {
		t.Fatal(err)
	}
	if res.Longest < res.Current {
		t.Errorf("Longest %d < Current %d", res.Longest, res.Current)
	}
}
