// Package streak contains the pure computation core of the habit tracker:
// current/longest streak calculation for the three frequency modes, plus the
// completion aggregates built on the same check-in history. Nothing in this
// package touches storage; the services layer feeds it data and persists the
// results.
package streak

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// FrequencyType selects which streak algorithm applies to a habit.
type FrequencyType string

const (
	Daily        FrequencyType = "daily"
	Weekly       FrequencyType = "weekly"
	SpecificDays FrequencyType = "specific_days"
)

// ErrUnknownFrequency is returned when a frequency type is not one of the
// supported values. Misconfiguration must surface as an error, never as a
// silent zero streak.
var ErrUnknownFrequency = errors.New("unknown frequency type")

// Frequency is a habit's schedule configuration.
type Frequency struct {
	Type FrequencyType
	// SpecificDays lists the weekdays the habit is bound to. Only read for
	// the specific_days type; an empty list degrades to daily semantics.
	SpecificDays []time.Weekday
	// TimesPerPeriod is the minimum completions per week for the weekly
	// type. Values below 1 are treated as 1.
	TimesPerPeriod int
}

func (f Frequency) minPerWeek() int {
	if f.TimesPerPeriod < 1 {
		return 1
	}
	return f.TimesPerPeriod
}

// Validate checks the frequency type is a known value.
func (f Frequency) Validate() error {
	switch f.Type {
	case Daily, Weekly, SpecificDays:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFrequency, f.Type)
	}
}

// Result is a computed streak pair. Longest is never less than Current.
type Result struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Compute derives the current and longest streak from the completed check-in
// dates of one habit. The input may be unordered and may contain multiple
// timestamps within one calendar day; duplicates collapse to a single
// occurrence. An empty history yields {0, 0}. today fixes the reference
// clock so callers and tests control what "now" means.
func Compute(freq Frequency, completions []time.Time, today time.Time) (Result, error) {
	if err := freq.Validate(); err != nil {
		return Result{}, err
	}

	days := dedupeDays(completions)
	if len(days) == 0 {
		return Result{}, nil
	}
	today = DayStart(today)

	switch freq.Type {
	case Weekly:
		return weeklyStreak(days, freq.minPerWeek(), today), nil
	case SpecificDays:
		if len(freq.SpecificDays) > 0 {
			return specificDaysStreak(days, freq.SpecificDays, today), nil
		}
		// No configured days: fall back to daily semantics.
		return dailyStreak(days, today), nil
	default:
		return dailyStreak(days, today), nil
	}
}

// dedupeDays normalizes timestamps to calendar days, removes duplicates and
// returns the days sorted ascending.
func dedupeDays(ts []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(ts))
	days := make([]time.Time, 0, len(ts))
	for _, t := range ts {
		d := DayStart(t)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// dailyStreak treats every calendar day as due. A gap of more than one day
// before today voids the current streak; exactly one day (yesterday) keeps
// it alive.
func dailyStreak(days []time.Time, today time.Time) Result {
	longest := longestDailyRun(days)

	current := 0
	mostRecent := days[len(days)-1]
	if DaysBetween(mostRecent, today) <= 1 {
		current = 1
		for i := len(days) - 2; i >= 0; i-- {
			if DaysBetween(days[i], days[i+1]) != 1 {
				break
			}
			current++
		}
	}

	if current > longest {
		longest = current
	}
	return Result{Current: current, Longest: longest}
}

// longestDailyRun finds the longest run of consecutive calendar days in the
// sorted, deduplicated history.
func longestDailyRun(days []time.Time) int {
	longest, run := 0, 0
	for i := range days {
		if i > 0 && DaysBetween(days[i-1], days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// weekData accumulates one calendar week's completions.
type weekData struct {
	completions int
	weekdays    map[time.Weekday]bool
}

// bucketWeeks groups completed days by their Sunday week start.
func bucketWeeks(days []time.Time) map[time.Time]*weekData {
	byWeek := make(map[time.Time]*weekData)
	for _, d := range days {
		ws := WeekStart(d)
		w := byWeek[ws]
		if w == nil {
			w = &weekData{weekdays: make(map[time.Weekday]bool)}
			byWeek[ws] = w
		}
		w.completions++
		w.weekdays[d.Weekday()] = true
	}
	return byWeek
}

func sortedWeeks(byWeek map[time.Time]*weekData) []time.Time {
	weeks := make([]time.Time, 0, len(byWeek))
	for ws := range byWeek {
		weeks = append(weeks, ws)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	return weeks
}

// longestWeekRun finds the longest run of consecutive qualifying weeks.
// A skipped calendar week breaks the run even if the weeks around it qualify.
func longestWeekRun(weeks []time.Time, counts func(time.Time) bool) int {
	longest, run := 0, 0
	var prev time.Time
	for _, ws := range weeks {
		if !counts(ws) {
			run = 0
			continue
		}
		if run > 0 && ws.Equal(prev.AddDate(0, 0, 7)) {
			run++
		} else {
			run = 1
		}
		prev = ws
		if run > longest {
			longest = run
		}
	}
	return longest
}

// runEndingAt counts qualifying weeks walking backward in exact one-week
// steps from anchor (inclusive). Returns 0 when the anchor itself does not
// qualify.
func runEndingAt(anchor time.Time, counts func(time.Time) bool) int {
	n := 0
	for ws := anchor; counts(ws); ws = ws.AddDate(0, 0, -7) {
		n++
	}
	return n
}

// weeklyStreak: a week qualifies when it holds at least minPerWeek
// completions. The current streak anchors on the current week when its quota
// is already met, otherwise on the previous week; a week that has not fully
// elapsed does not break the streak by itself.
func weeklyStreak(days []time.Time, minPerWeek int, today time.Time) Result {
	byWeek := bucketWeeks(days)
	counts := func(ws time.Time) bool {
		w := byWeek[ws]
		return w != nil && w.completions >= minPerWeek
	}

	longest := longestWeekRun(sortedWeeks(byWeek), counts)

	thisWeek := WeekStart(today)
	current := 0
	switch {
	case counts(thisWeek):
		current = runEndingAt(thisWeek, counts)
	case counts(thisWeek.AddDate(0, 0, -7)):
		current = runEndingAt(thisWeek.AddDate(0, 0, -7), counts)
	}

	if current > longest {
		longest = current
	}
	return Result{Current: current, Longest: longest}
}

// specificDaysStreak: a week qualifies only when every configured weekday has
// a completion. For the in-progress week only the weekdays due so far matter:
// satisfying them keeps the streak alive before the week has elapsed.
func specificDaysStreak(days []time.Time, specific []time.Weekday, today time.Time) Result {
	byWeek := bucketWeeks(days)
	full := func(ws time.Time) bool {
		w := byWeek[ws]
		if w == nil {
			return false
		}
		for _, d := range specific {
			if !w.weekdays[d] {
				return false
			}
		}
		return true
	}

	longest := longestWeekRun(sortedWeeks(byWeek), full)

	thisWeek := WeekStart(today)
	prevWeek := thisWeek.AddDate(0, 0, -7)

	// Weekdays already due this week (index <= today's index, Sunday-first).
	var due []time.Weekday
	for _, d := range specific {
		if d <= today.Weekday() {
			due = append(due, d)
		}
	}
	dueSatisfied := false
	if w := byWeek[thisWeek]; w != nil && len(due) > 0 {
		dueSatisfied = true
		for _, d := range due {
			if !w.weekdays[d] {
				dueSatisfied = false
				break
			}
		}
	}

	current := 0
	switch {
	case dueSatisfied, len(due) == 0 && full(prevWeek):
		// Current week anchors the streak; completed prior weeks extend it.
		current = 1 + runEndingAt(prevWeek, full)
	case full(prevWeek):
		// Current week is behind on its due days but has not fully elapsed;
		// the last complete week anchors instead.
		current = runEndingAt(prevWeek, full)
	}

	if current > longest {
		longest = current
	}
	return Result{Current: current, Longest: longest}
}
