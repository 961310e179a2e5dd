package availability

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"stayhub/internal/domain/shared/daterange"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, checkIn, checkOut time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(checkIn, checkOut)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	return dr
}

func TestIsBookedMissingLevels(t *testing.T) {
	var empty Index
	if empty.IsBooked(day(2024, time.March, 1)) {
		t.Fatal("empty index reports booked day")
	}

	idx := Index{2024: {2: {2: true}}}
	cases := []struct {
		name   string
		day    time.Time
		booked bool
	}{
		{"booked day", day(2024, time.March, 2), true},
		{"same month other day", day(2024, time.March, 3), false},
		{"other month", day(2024, time.April, 2), false},
		{"other year", day(2025, time.March, 2), false},
	}
	for _, tc := range cases {
		if got := idx.IsBooked(tc.day); got != tc.booked {
			t.Errorf("%s: IsBooked = %v, want %v", tc.name, got, tc.booked)
		}
	}
}

func TestExtendMarksEveryDayInclusive(t *testing.T) {
	idx := Index{}
	next, err := idx.Extend(mustRange(t, day(2024, time.March, 1), day(2024, time.March, 3)))
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	for d := 1; d <= 3; d++ {
		if !next.IsBooked(day(2024, time.March, d)) {
			t.Errorf("day %d not booked after extend", d)
		}
	}
	if next.IsBooked(day(2024, time.March, 4)) {
		t.Error("day outside range marked booked")
	}
	if idx.IsBooked(day(2024, time.March, 1)) {
		t.Error("receiver mutated by extend")
	}
}

func TestExtendConflictIdentifiesFirstDay(t *testing.T) {
	idx := Index{2024: {2: {2: true}}}
	_, err := idx.Extend(mustRange(t, day(2024, time.March, 1), day(2024, time.March, 3)))
	var conflict *DateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected DateConflictError, got %v", err)
	}
	if !conflict.Day.Equal(day(2024, time.March, 2)) {
		t.Fatalf("conflict day = %s, want 2024-03-02", conflict.Day.Format(time.DateOnly))
	}
}

func TestExtendAllOrNothing(t *testing.T) {
	idx := Index{2024: {2: {5: true}}}
	before := idx.clone()

	_, err := idx.Extend(mustRange(t, day(2024, time.March, 3), day(2024, time.March, 7)))
	if err == nil {
		t.Fatal("expected conflict")
	}
	if !reflect.DeepEqual(idx, before) {
		t.Fatal("failed extend left a partial day-set in the input index")
	}
}

func TestExtendSpansMonthAndYearBoundaries(t *testing.T) {
	idx := Index{}
	next, err := idx.Extend(mustRange(t, day(2024, time.December, 30), day(2025, time.January, 2)))
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	for _, d := range []time.Time{
		day(2024, time.December, 30),
		day(2024, time.December, 31),
		day(2025, time.January, 1),
		day(2025, time.January, 2),
	} {
		if !next.IsBooked(d) {
			t.Errorf("%s not booked", d.Format(time.DateOnly))
		}
	}
	if len(next.BookedDays()) != 4 {
		t.Errorf("booked %d days, want 4", len(next.BookedDays()))
	}
}

func TestWireRoundTripKeepsSparseStructure(t *testing.T) {
	idx := Index{
		2024: {2: {1: true, 2: true}, 11: {31: true}},
		2025: {0: {1: true}},
	}
	wire := idx.ToWire()
	if _, ok := wire["2024"]["2"]["1"]; !ok {
		t.Fatal("wire form missing booked day")
	}

	back, err := FromWire(wire)
	if err != nil {
		t.Fatalf("from wire: %v", err)
	}
	if !reflect.DeepEqual(back, idx) {
		t.Fatalf("round trip mismatch: %v != %v", back, idx)
	}
}

func TestWireNeverMaterializesEmptyLevels(t *testing.T) {
	idx := Index{2024: {2: {}}, 2026: {}}
	wire := idx.ToWire()
	if len(wire) != 0 {
		t.Fatalf("empty levels leaked into wire form: %v", wire)
	}
}

func TestFromWireRejectsBadKeys(t *testing.T) {
	if _, err := FromWire(Wire{"twenty": {"0": {"1": true}}}); err == nil {
		t.Error("bad year key accepted")
	}
	if _, err := FromWire(Wire{"2024": {"12": {"1": true}}}); err == nil {
		t.Error("out-of-range month key accepted")
	}
}
