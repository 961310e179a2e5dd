package availability

import (
	"fmt"
	"strconv"
)

// Wire is the transport encoding of an Index: nested string-keyed maps with
// true marking a booked day. Empty levels are never materialized, so the
// sparse structure survives the persistence and API boundaries intact.
// Clients must treat it as opaque; the server-side index stays authoritative.
type Wire map[string]map[string]map[string]bool

// ToWire converts the index to its transport form.
func (idx Index) ToWire() Wire {
	wire := make(Wire, len(idx))
	for year, months := range idx {
		if len(months) == 0 {
			continue
		}
		wireMonths := make(map[string]map[string]bool, len(months))
		for month, days := range months {
			if len(days) == 0 {
				continue
			}
			wireDays := make(map[string]bool, len(days))
			for dom, booked := range days {
				if booked {
					wireDays[strconv.Itoa(dom)] = true
				}
			}
			if len(wireDays) > 0 {
				wireMonths[strconv.Itoa(month)] = wireDays
			}
		}
		if len(wireMonths) > 0 {
			wire[strconv.Itoa(year)] = wireMonths
		}
	}
	return wire
}

// FromWire parses the transport form back into an Index.
func FromWire(wire Wire) (Index, error) {
	idx := make(Index, len(wire))
	for yearKey, months := range wire {
		year, err := strconv.Atoi(yearKey)
		if err != nil {
			return nil, fmt.Errorf("availability: bad year key %q: %w", yearKey, err)
		}
		idxMonths := make(map[int]map[int]bool, len(months))
		for monthKey, days := range months {
			month, err := strconv.Atoi(monthKey)
			if err != nil {
				return nil, fmt.Errorf("availability: bad month key %q: %w", monthKey, err)
			}
			if month < 0 || month > 11 {
				return nil, fmt.Errorf("availability: month key %q out of range", monthKey)
			}
			idxDays := make(map[int]bool, len(days))
			for dayKey, booked := range days {
				dom, err := strconv.Atoi(dayKey)
				if err != nil {
					return nil, fmt.Errorf("availability: bad day key %q: %w", dayKey, err)
				}
				if booked {
					idxDays[dom] = true
				}
			}
			if len(idxDays) > 0 {
				idxMonths[month] = idxDays
			}
		}
		if len(idxMonths) > 0 {
			idx[year] = idxMonths
		}
	}
	return idx, nil
}
