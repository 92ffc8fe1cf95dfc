package calendar

import (
	"fmt"
	"time"
)

// WeekRange is a business "active week": Monday 00:00:00.000 through the
// following Sunday 23:59:59.999.
type WeekRange struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	WeekNumber int       `json:"weekNumber"`
	Year       int       `json:"year"`
}

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

const (
	daysPerWeek     = 7
	weekdaysPerWeek = 5
	endOfDayNanos   = 999_000_000
)

// WeekStart returns Monday 00:00:00 of the week containing date, in date's location.
// Sunday belongs to the week that started six days earlier.
func WeekStart(date time.Time) time.Time {
	offset := int(date.Weekday()) - 1
	if date.Weekday() == time.Sunday {
		offset = 6
	}

	y, m, d := date.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, date.Location())
}

// WeekEnd returns the Sunday 23:59:59.999 closing the week that starts at weekStart.
func WeekEnd(weekStart time.Time) time.Time {
	y, m, d := weekStart.Date()
	return time.Date(y, m, d+6, 23, 59, 59, endOfDayNanos, weekStart.Location())
}

// ISOWeekNumber returns the ISO-8601 week number. Display only.
func ISOWeekNumber(date time.Time) int {
	_, week := date.ISOWeek()
	return week
}

// ActiveWeekRange returns the business week containing date.
func ActiveWeekRange(date time.Time) WeekRange {
	start := WeekStart(date)
	year, week := start.ISOWeek()

	return WeekRange{
		Start:      start,
		End:        WeekEnd(start),
		WeekNumber: week,
		Year:       year,
	}
}

// IsDateInWeek reports whether date falls inside week, bounds included.
func IsDateInWeek(date time.Time, week WeekRange) bool {
	return !date.Before(week.Start) && !date.After(week.End)
}

// IsInActiveWeek reports whether date falls in the business week containing now.
func IsInActiveWeek(date, now time.Time) bool {
	return IsDateInWeek(date, ActiveWeekRange(now.In(date.Location())))
}

// PreviousWeek returns the week immediately before week.
func PreviousWeek(week WeekRange) WeekRange {
	return ActiveWeekRange(addDays(week.Start, -daysPerWeek))
}

// NextWeek returns the week immediately after week.
func NextWeek(week WeekRange) WeekRange {
	return ActiveWeekRange(addDays(week.Start, daysPerWeek))
}

// FormatWeekRange renders a week as "dd/mm/yyyy - dd/mm/yyyy".
func FormatWeekRange(week WeekRange) string {
	return fmt.Sprintf("%s - %s", week.Start.Format("02/01/2006"), week.End.Format("02/01/2006"))
}

// WeekBelongsToMonth decides which month owns the week starting at weekStart:
// the month holding more of its Monday–Friday days. A tie keeps the month
// seen first, i.e. the earlier one.
func WeekBelongsToMonth(weekStart time.Time) MonthKey {
	start := WeekStart(weekStart)

	days := make([]time.Time, 0, weekdaysPerWeek)
	for i := 0; i < weekdaysPerWeek; i++ {
		days = append(days, addDays(start, i))
	}
	return majorityMonth(days)
}

// majorityMonth returns the month holding most of days; ties go to the month
// of the earliest day.
func majorityMonth(days []time.Time) MonthKey {
	var (
		order  []MonthKey
		counts = make(map[MonthKey]int, 2)
	)
	for _, day := range days {
		key := MonthKey{Year: day.Year(), Month: day.Month()}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	if len(order) == 0 {
		return MonthKey{}
	}
	owner := order[0]
	for _, key := range order[1:] {
		if counts[key] > counts[owner] {
			owner = key
		}
	}
	return owner
}

// WeeksInMonth lists, in chronological order, every business week owned by
// the given month. Weeks are built in loc.
func WeeksInMonth(year int, month time.Month, loc *time.Location) []WeekRange {
	if loc == nil {
		loc = time.UTC
	}

	target := MonthKey{Year: year, Month: month}
	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	limit := addDays(lastDay, daysPerWeek)

	var weeks []WeekRange
	for start := WeekStart(firstDay); !start.After(limit); start = addDays(start, daysPerWeek) {
		if WeekBelongsToMonth(start) == target {
			weeks = append(weeks, ActiveWeekRange(start))
		}
	}
	return weeks
}

// MonthPeriod returns the span covered by the weeks owned by a month, from
// the first Monday to the last Sunday. ok is false when the month owns no weeks.
func MonthPeriod(year int, month time.Month, loc *time.Location) (start, end time.Time, ok bool) {
	weeks := WeeksInMonth(year, month, loc)
	if len(weeks) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return weeks[0].Start, weeks[len(weeks)-1].End, true
}

func addDays(t time.Time, days int) time.Time {
	y, m, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, m, d+days, h, mi, s, t.Nanosecond(), t.Location())
}
