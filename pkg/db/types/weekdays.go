package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Weekdays stores a recurrence set of weekdays (0=Sunday..6=Saturday) as a JSON array.
// A nil or empty set means no day restriction.
type Weekdays []int

func (w *Weekdays) Scan(src any) error {
	if src == nil {
		*w = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("Weekdays: unsupported Scan type %T", src)
	}
	if len(raw) == 0 {
		*w = nil
		return nil
	}

	var days []int
	if err := json.Unmarshal(raw, &days); err != nil {
		return fmt.Errorf("Weekdays: decode %q: %w", string(raw), err)
	}
	*w = Weekdays(days)
	return nil
}

func (w Weekdays) Value() (driver.Value, error) {
	if len(w) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal([]int(w.Normalize()))
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// Normalize returns a sorted copy without duplicates.
func (w Weekdays) Normalize() Weekdays {
	if len(w) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(w))
	out := make(Weekdays, 0, len(w))
	for _, day := range w {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	sort.Ints(out)
	return out
}

// Validate reports whether every entry is a weekday index.
func (w Weekdays) Validate() error {
	for _, day := range w {
		if day < int(time.Sunday) || day > int(time.Saturday) {
			return fmt.Errorf("weekday %d out of range 0-6", day)
		}
	}
	return nil
}

// IsRestricted reports whether the set limits recurrence to specific days.
func (w Weekdays) IsRestricted() bool {
	return len(w) > 0
}

// Contains reports whether day is a member of the set.
func (w Weekdays) Contains(day time.Weekday) bool {
	for _, candidate := range w {
		if candidate == int(day) {
			return true
		}
	}
	return false
}
