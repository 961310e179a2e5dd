package daterange

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewTruncatesToUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	checkIn := time.Date(2024, time.March, 1, 23, 45, 0, 0, loc)
	checkOut := time.Date(2024, time.March, 3, 1, 15, 0, 0, loc)

	dr, err := New(checkIn, checkOut)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !dr.CheckIn.Equal(date(2024, time.March, 1)) {
		t.Errorf("check in = %v, want 2024-03-01 UTC midnight", dr.CheckIn)
	}
	if !dr.CheckOut.Equal(date(2024, time.March, 2)) {
		t.Errorf("check out = %v, want 2024-03-02 UTC midnight", dr.CheckOut)
	}
}

func TestNewRejectsReversedRange(t *testing.T) {
	_, err := New(date(2024, time.March, 5), date(2024, time.March, 1))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("err = %v, want ErrInvalidRange", err)
	}
}

func TestNightsAreInclusive(t *testing.T) {
	cases := []struct {
		name     string
		in, out  time.Time
		expected int64
	}{
		{"single day", date(2024, time.March, 1), date(2024, time.March, 1), 1},
		{"three days", date(2024, time.March, 1), date(2024, time.March, 3), 3},
		{"across month end", date(2024, time.January, 31), date(2024, time.February, 1), 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dr, err := New(tc.in, tc.out)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := dr.Nights(); got != tc.expected {
				t.Errorf("Nights() = %d, want %d", got, tc.expected)
			}
		})
	}
}

func TestEachDayWalksAscendingAndStops(t *testing.T) {
	dr, err := New(date(2024, time.December, 30), date(2025, time.January, 2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var visited []time.Time
	dr.EachDay(func(day time.Time) bool {
		visited = append(visited, day)
		return true
	})
	if len(visited) != 4 {
		t.Fatalf("visited %d days, want 4", len(visited))
	}
	for i := 1; i < len(visited); i++ {
		if !visited[i].After(visited[i-1]) {
			t.Errorf("walk not ascending at %d: %v then %v", i, visited[i-1], visited[i])
		}
	}

	var count int
	dr.EachDay(func(time.Time) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("early stop visited %d days, want 2", count)
	}
}

func TestOverlaps(t *testing.T) {
	a, _ := New(date(2024, time.March, 1), date(2024, time.March, 3))
	b, _ := New(date(2024, time.March, 3), date(2024, time.March, 5))
	c, _ := New(date(2024, time.March, 4), date(2024, time.March, 5))

	if !a.Overlaps(b) {
		t.Error("ranges sharing a boundary day should overlap")
	}
	if a.Overlaps(c) {
		t.Error("disjoint ranges should not overlap")
	}
}
