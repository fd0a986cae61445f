package streak

import (
	"sort"
	"time"
)

// Record is one check-in as the aggregation functions see it: a calendar day
// and whether the habit was actually performed.
type Record struct {
	Date      time.Time
	Completed bool
}

// Bucket is a completion tally for one time bucket (weekday, week or month).
type Bucket struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Rate      float64 `json:"rate"`
}

func (b Bucket) withRate() Bucket {
	if b.Total > 0 {
		b.Rate = float64(b.Completed) / float64(b.Total) * 100
	}
	return b
}

// CompletionByDay tallies completions per weekday. Every weekday is present
// in the result; weekdays with no recorded check-ins report a zero bucket.
func CompletionByDay(records []Record) map[time.Weekday]Bucket {
	out := make(map[time.Weekday]Bucket, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		out[wd] = Bucket{}
	}
	for _, r := range records {
		wd := r.Date.Weekday()
		b := out[wd]
		b.Total++
		if r.Completed {
			b.Completed++
		}
		out[wd] = b
	}
	for wd, b := range out {
		out[wd] = b.withRate()
	}
	return out
}

// CompletionByWeek groups check-ins by Sunday week start, keyed 2006-01-02.
func CompletionByWeek(records []Record) map[string]Bucket {
	out := make(map[string]Bucket)
	for _, r := range records {
		key := WeekStart(r.Date).Format("2006-01-02")
		b := out[key]
		b.Total++
		if r.Completed {
			b.Completed++
		}
		out[key] = b
	}
	for key, b := range out {
		out[key] = b.withRate()
	}
	return out
}

// CompletionByMonth groups check-ins by calendar month, keyed 2006-01.
func CompletionByMonth(records []Record) map[string]Bucket {
	out := make(map[string]Bucket)
	for _, r := range records {
		key := MonthStart(r.Date).Format("2006-01")
		b := out[key]
		b.Total++
		if r.Completed {
			b.Completed++
		}
		out[key] = b
	}
	for key, b := range out {
		out[key] = b.withRate()
	}
	return out
}

// Overall is the lifetime completion rate of a habit: completed days over
// the days the habit has existed.
type Overall struct {
	Rate          float64 `json:"rate"`
	TotalDays     int     `json:"total_days"`
	CompletedDays int     `json:"completed_days"`
}

// OverallCompletion computes the lifetime rate since createdAt, inclusive of
// both endpoints. Duplicate completed days collapse to one.
func OverallCompletion(records []Record, createdAt, today time.Time) Overall {
	totalDays := DaysBetween(createdAt, today) + 1
	if totalDays < 1 {
		totalDays = 1
	}

	completed := make(map[time.Time]struct{})
	for _, r := range records {
		if r.Completed {
			completed[DayStart(r.Date)] = struct{}{}
		}
	}

	o := Overall{TotalDays: totalDays, CompletedDays: len(completed)}
	o.Rate = float64(o.CompletedDays) / float64(o.TotalDays) * 100
	return o
}

// BestDay returns the weekday with the highest completion rate among
// weekdays that have at least one recorded check-in. ok is false when no
// weekday qualifies.
func BestDay(records []Record) (time.Weekday, Bucket, bool) {
	return pickDay(records, func(candidate, best float64) bool { return candidate > best })
}

// WorstDay is the counterpart of BestDay for the lowest rate.
func WorstDay(records []Record) (time.Weekday, Bucket, bool) {
	return pickDay(records, func(candidate, best float64) bool { return candidate < best })
}

func pickDay(records []Record, better func(candidate, best float64) bool) (time.Weekday, Bucket, bool) {
	byDay := CompletionByDay(records)
	var (
		bestDay time.Weekday
		best    Bucket
		found   bool
	)
	// Deterministic order regardless of map iteration.
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		b := byDay[wd]
		if b.Total == 0 {
			continue
		}
		if !found || better(b.Rate, best.Rate) {
			bestDay, best, found = wd, b, true
		}
	}
	return bestDay, best, found
}

// Performance averages the non-empty bucket rates per granularity.
type Performance struct {
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
}

// AveragePerformance reports the mean completion rate across weekday, week
// and month buckets that contain data.
func AveragePerformance(records []Record) Performance {
	if len(records) == 0 {
		return Performance{}
	}

	var p Performance
	var sum float64
	var n int
	for _, b := range CompletionByDay(records) {
		if b.Total > 0 {
			sum += b.Rate
			n++
		}
	}
	if n > 0 {
		p.Daily = sum / float64(n)
	}

	sum, n = 0, 0
	for _, b := range CompletionByWeek(records) {
		sum += b.Rate
		n++
	}
	if n > 0 {
		p.Weekly = sum / float64(n)
	}

	sum, n = 0, 0
	for _, b := range CompletionByMonth(records) {
		sum += b.Rate
		n++
	}
	if n > 0 {
		p.Monthly = sum / float64(n)
	}
	return p
}

// Span is one historical run of consecutive completed days.
type Span struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Length int       `json:"length"`
}

// StreakHistory lists every run of consecutive completed days in
// chronological order, including the run still in progress.
func StreakHistory(records []Record) []Span {
	var completions []time.Time
	for _, r := range records {
		if r.Completed {
			completions = append(completions, r.Date)
		}
	}
	days := dedupeDays(completions)
	if len(days) == 0 {
		return nil
	}

	var spans []Span
	start := days[0]
	length := 1
	for i := 1; i < len(days); i++ {
		if DaysBetween(days[i-1], days[i]) == 1 {
			length++
			continue
		}
		spans = append(spans, Span{Start: start, End: days[i-1], Length: length})
		start = days[i]
		length = 1
	}
	spans = append(spans, Span{Start: start, End: days[len(days)-1], Length: length})
	return spans
}

// Consistency is the share of days with a completion within the observed
// date range, 0-100. Empty history scores 0.
func Consistency(records []Record) float64 {
	var days []time.Time
	completed := make(map[time.Time]struct{})
	for _, r := range records {
		d := DayStart(r.Date)
		days = append(days, d)
		if r.Completed {
			completed[d] = struct{}{}
		}
	}
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	rangeDays := DaysBetween(days[0], days[len(days)-1]) + 1
	return float64(len(completed)) / float64(rangeDays) * 100
}

// HabitState is the slice of habit data the consistency score needs.
type HabitState struct {
	CreatedAt     time.Time
	ArchivedAt    *time.Time
	CurrentStreak int
}

// ScoreFactors are the normalized 0-100 components of the consistency score.
type ScoreFactors struct {
	Streak     float64 `json:"streak"`
	Completion float64 `json:"completion"`
	Regularity float64 `json:"regularity"`
}

// Score is the composite consistency metric.
type Score struct {
	Score   float64      `json:"score"`
	Level   string       `json:"level"`
	Factors ScoreFactors `json:"factors"`
}

// scoreWindowDays is the trailing window the completion factor looks at.
const scoreWindowDays = 30

// ConsistencyScore blends three 0-100 factors into one deterministic score:
//
//	streak     — the best current streak across habits, saturating at 30 days
//	completion — completed check-ins over active habit-days in the trailing
//	             30-day window
//	regularity — mean per-day ratio of completed to recorded check-ins
//
// weighted 0.4 / 0.4 / 0.2. Levels: score < 40 building, < 70 steady,
// otherwise strong. Empty input yields a zero score at level building.
func ConsistencyScore(records []Record, habits []HabitState, today time.Time) Score {
	today = DayStart(today)
	f := ScoreFactors{
		Streak:     streakFactor(habits),
		Completion: completionFactor(records, habits, today),
		Regularity: regularityFactor(records),
	}

	s := Score{
		Score:   0.4*f.Streak + 0.4*f.Completion + 0.2*f.Regularity,
		Factors: f,
	}
	switch {
	case s.Score < 40:
		s.Level = "building"
	case s.Score < 70:
		s.Level = "steady"
	default:
		s.Level = "strong"
	}
	return s
}

func streakFactor(habits []HabitState) float64 {
	best := 0
	for _, h := range habits {
		if h.CurrentStreak > best {
			best = h.CurrentStreak
		}
	}
	if best > scoreWindowDays {
		best = scoreWindowDays
	}
	return float64(best) / scoreWindowDays * 100
}

func completionFactor(records []Record, habits []HabitState, today time.Time) float64 {
	windowStart := today.AddDate(0, 0, -(scoreWindowDays - 1))

	potential := 0
	for _, h := range habits {
		start := DayStart(h.CreatedAt)
		if start.Before(windowStart) {
			start = windowStart
		}
		end := today
		if h.ArchivedAt != nil && DayStart(*h.ArchivedAt).Before(end) {
			end = DayStart(*h.ArchivedAt)
		}
		if end.Before(start) {
			continue
		}
		potential += DaysBetween(start, end) + 1
	}
	if potential == 0 {
		return 0
	}

	completed := 0
	for _, r := range records {
		d := DayStart(r.Date)
		if r.Completed && !d.Before(windowStart) && !d.After(today) {
			completed++
		}
	}

	rate := float64(completed) / float64(potential) * 100
	if rate > 100 {
		rate = 100
	}
	return rate
}

func regularityFactor(records []Record) float64 {
	type tally struct{ total, completed int }
	byDate := make(map[time.Time]*tally)
	for _, r := range records {
		d := DayStart(r.Date)
		t := byDate[d]
		if t == nil {
			t = &tally{}
			byDate[d] = t
		}
		t.total++
		if r.Completed {
			t.completed++
		}
	}
	if len(byDate) == 0 {
		return 0
	}

	var sum float64
	for _, t := range byDate {
		sum += float64(t.completed) / float64(t.total)
	}
	return sum / float64(len(byDate)) * 100
}
