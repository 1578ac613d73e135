// Package stats implements the time-window statistics engine behind the
// violations dashboard: window resolution, grouped-maximum aggregation and
// interval histograms. Everything here is pure date arithmetic and in-memory
// counting; fetching records is the store's job.
package stats

import (
	"fmt"
	"time"
)

// DateLayout is the canonical calendar-date format for stored violations.
const DateLayout = "2006-01-02"

// Period is a symbolic period relative to "now".
type Period string

const (
	PeriodDay   Period = "daily"
	PeriodWeek  Period = "weekly"
	PeriodMonth Period = "monthly"
	PeriodYear  Period = "yearly"
)

// ParsePeriod accepts both the noun and the adjective form used by clients
// ("day" and "daily", etc.).
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "day", "daily":
		return PeriodDay, nil
	case "week", "weekly":
		return PeriodWeek, nil
	case "month", "monthly":
		return PeriodMonth, nil
	case "year", "yearly":
		return PeriodYear, nil
	}
	return "", ValidationError{Field: "period", Message: fmt.Sprintf("unknown period %q, expected one of daily, weekly, monthly, yearly", s)}
}

// Window is a closed [From, To] calendar-date range, From <= To.
// Both bounds are dates at midnight UTC; compare and filter on the
// YYYY-MM-DD representation.
type Window struct {
	From time.Time
	To   time.Time
}

// NewWindow builds a window from two YYYY-MM-DD strings.
func NewWindow(from, to string) (Window, error) {
	f, err := ParseDate(from)
	if err != nil {
		return Window{}, ValidationError{Field: "from", Message: err.Error()}
	}
	t, err := ParseDate(to)
	if err != nil {
		return Window{}, ValidationError{Field: "to", Message: err.Error()}
	}
	if t.Before(f) {
		return Window{}, ValidationError{Field: "from", Message: "from is after to"}
	}
	return Window{From: f, To: t}, nil
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight instant.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FromString returns the lower bound as YYYY-MM-DD.
func (w Window) FromString() string { return w.From.Format(DateLayout) }

// ToString returns the upper bound as YYYY-MM-DD.
func (w Window) ToString() string { return w.To.Format(DateLayout) }

// Contains reports whether the YYYY-MM-DD date falls inside the window.
// Lexicographic comparison is correct for this format.
func (w Window) Contains(date string) bool {
	return date >= w.FromString() && date <= w.ToString()
}

// ShiftDays moves both bounds by n days.
func (w Window) ShiftDays(n int) Window {
	return Window{From: w.From.AddDate(0, 0, n), To: w.To.AddDate(0, 0, n)}
}

// truncate drops any time-of-day component, keeping the calendar date in UTC.
func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weekStart returns the most recent Saturday on or before ref. The business
// week runs Saturday through Friday, not the Sunday-based library default.
func weekStart(ref time.Time) time.Time {
	daysBack := (int(ref.Weekday()) + 1) % 7
	return truncate(ref).AddDate(0, 0, -daysBack)
}

// CurrentWindow resolves the rolling-to-date window for a period: the window
// starts at the period's boundary and ends at the reference date itself, never
// in the future. "Current week" means Saturday through today, not Saturday
// through Friday.
func CurrentWindow(p Period, ref time.Time) Window {
	today := truncate(ref)
	switch p {
	case PeriodDay:
		return Window{From: today, To: today}
	case PeriodWeek:
		return Window{From: weekStart(ref), To: today}
	case PeriodMonth:
		return Window{From: time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC), To: today}
	case PeriodYear:
		return Window{From: time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), To: today}
	}
	return Window{From: today, To: today}
}

// BoundedWindow resolves the full fixed block containing ref: the whole
// Saturday-to-Friday week, the whole calendar month, the whole year.
func BoundedWindow(p Period, ref time.Time) Window {
	today := truncate(ref)
	switch p {
	case PeriodDay:
		return Window{From: today, To: today}
	case PeriodWeek:
		from := weekStart(ref)
		return Window{From: from, To: from.AddDate(0, 0, 6)}
	case PeriodMonth:
		from := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Window{From: from, To: from.AddDate(0, 1, -1)}
	case PeriodYear:
		return Window{
			From: time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(ref.Year(), time.December, 31, 0, 0, 0, 0, time.UTC),
		}
	}
	return Window{From: today, To: today}
}

// PreviousWindow resolves the fixed block immediately preceding the current
// window, with no gap and no overlap: PreviousWindow(p, ref).To + 1 day is
// always CurrentWindow(p, ref).From. Unlike the current window, the previous
// one is always a full bounded block.
func PreviousWindow(p Period, ref time.Time) Window {
	switch p {
	case PeriodDay:
		prev := truncate(ref).AddDate(0, 0, -1)
		return Window{From: prev, To: prev}
	case PeriodWeek:
		cur := weekStart(ref)
		return Window{From: cur.AddDate(0, 0, -7), To: cur.AddDate(0, 0, -1)}
	case PeriodMonth:
		// First-of-month arithmetic sidesteps the day-31 overflow: previous
		// month of March 31 is all of February, not March 2.
		first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Window{From: first.AddDate(0, -1, 0), To: first.AddDate(0, 0, -1)}
	case PeriodYear:
		y := ref.Year() - 1
		return Window{
			From: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC),
		}
	}
	prev := truncate(ref).AddDate(0, 0, -1)
	return Window{From: prev, To: prev}
}

// CorrectClientDates applies the one-day forward shift that compensates for
// browsers serializing local-time dates which land one day behind the stored
// UTC dates. It must be applied exactly once per request path, and only when
// the dates actually came from a browser on a non-local deployment; applying
// it twice silently skews every result by two days. Callers pass the two
// conditions separately so the decision is visible at the call site.
func CorrectClientDates(w Window, fromFrontend, production bool) Window {
	if !fromFrontend || !production {
		return w
	}
	return w.ShiftDays(1)
}
