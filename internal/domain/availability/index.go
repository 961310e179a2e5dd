package availability

import (
	"fmt"
	"time"

	"stayhub/internal/domain/shared/daterange"
)

// Index is the per-listing set of booked calendar days, kept as a sparse
// year → zero-based month → day-of-month mapping. Only booked days are
// materialized; a missing level at any depth means the day is available.
type Index map[int]map[int]map[int]bool

// DateConflictError reports the first already-booked day encountered while
// extending an index.
type DateConflictError struct {
	Day time.Time
}

func (e *DateConflictError) Error() string {
	return fmt.Sprintf("availability: %s is already booked", e.Day.Format(time.DateOnly))
}

// IsBooked looks the day up in the three-level mapping. Absence at any level
// means available. Pure; never materializes missing levels.
func (idx Index) IsBooked(day time.Time) bool {
	day = daterange.Day(day)
	months, ok := idx[day.Year()]
	if !ok {
		return false
	}
	days, ok := months[int(day.Month())-1]
	if !ok {
		return false
	}
	return days[day.Day()]
}

// Extend returns a new index covering the receiver's bookings plus every day
// of the inclusive range. The range is walked in ascending order and the
// first already-booked day aborts the whole extension with a
// *DateConflictError; the receiver is never mutated, so a failed extension
// leaves no partial day-set behind.
func (idx Index) Extend(dr daterange.DateRange) (Index, error) {
	if err := dr.Validate(); err != nil {
		return nil, err
	}
	next := idx.clone()
	var conflict *DateConflictError
	dr.EachDay(func(day time.Time) bool {
		year, month, dom := day.Year(), int(day.Month())-1, day.Day()
		months, ok := next[year]
		if !ok {
			months = make(map[int]map[int]bool)
			next[year] = months
		}
		days, ok := months[month]
		if !ok {
			days = make(map[int]bool)
			months[month] = days
		}
		if days[dom] {
			conflict = &DateConflictError{Day: day}
			return false
		}
		days[dom] = true
		return true
	})
	if conflict != nil {
		return nil, conflict
	}
	return next, nil
}

// BookedDays returns every booked day in no particular order. Intended for
// diffing in tests and for projections, not for conflict checks.
func (idx Index) BookedDays() []time.Time {
	var out []time.Time
	for year, months := range idx {
		for month, days := range months {
			for dom, booked := range days {
				if booked {
					out = append(out, time.Date(year, time.Month(month+1), dom, 0, 0, 0, 0, time.UTC))
				}
			}
		}
	}
	return out
}

func (idx Index) clone() Index {
	next := make(Index, len(idx))
	for year, months := range idx {
		nextMonths := make(map[int]map[int]bool, len(months))
		for month, days := range months {
			nextDays := make(map[int]bool, len(days))
			for dom, booked := range days {
				nextDays[dom] = booked
			}
			nextMonths[month] = nextDays
		}
		next[year] = nextMonths
	}
	return next
}
