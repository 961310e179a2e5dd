package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: check-out must not be before check-in")

// DateRange is an inclusive interval of calendar days [CheckIn, CheckOut]
// at day granularity in UTC. Both boundary nights belong to the range.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New truncates both dates to UTC midnight and validates ordering.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Day normalizes a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if dr.CheckOut.Before(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts the charged nights; both boundary days are charged, so a
// one-day range still counts as one night.
func (dr DateRange) Nights() int64 {
	return int64(dr.CheckOut.Sub(dr.CheckIn).Hours()/24) + 1
}

// EachDay visits every day of the range in ascending order. The walk stops
// early when fn returns false.
func (dr DateRange) EachDay(fn func(day time.Time) bool) {
	for cursor := dr.CheckIn; !cursor.After(dr.CheckOut); cursor = cursor.AddDate(0, 0, 1) {
		if !fn(cursor) {
			return
		}
	}
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	day := Day(t)
	return !day.Before(dr.CheckIn) && !day.After(dr.CheckOut)
}

// Overlaps reports whether two inclusive ranges share at least one day.
func (dr DateRange) Overlaps(other DateRange) bool {
	return !dr.CheckIn.After(other.CheckOut) && !other.CheckIn.After(dr.CheckOut)
}
