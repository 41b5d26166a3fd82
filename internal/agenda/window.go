// Package agenda implements the multi-source aggregation engine: civil-day
// window resolution, concurrent per-calendar fan-out, event normalization,
// chronological merging, and text search over the merged timeline.
package agenda

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayKind selects which variant of a DaySpec is active.
type DayKind int

const (
	DayToday DayKind = iota
	DayTomorrow
	DayWeekday
	DayDate
)

// DaySpec is a loose day specifier: today, tomorrow, the nearest given
// weekday (today included), or an explicit civil date.
type DaySpec struct {
	Kind    DayKind
	Weekday time.Weekday

	// Explicit date fields, used when Kind is DayDate. Out-of-range values
	// are not validated; date arithmetic normalizes them (Feb 30 rolls into
	// March), matching the upstream list behavior.
	Year  int
	Month time.Month
	Day   int
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseDaySpec interprets the "when" and "date" request parameters.
// An explicit date wins over "when"; absence of both means today. A "when"
// value that is neither today, tomorrow, nor a weekday name falls back to
// today. A malformed date is a caller input error.
func ParseDaySpec(when, date string) (DaySpec, error) {
	if date != "" {
		parts := strings.Split(date, "-")
		if len(parts) != 3 {
			return DaySpec{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
		}
		nums := make([]int, 3)
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return DaySpec{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
			}
			nums[i] = n
		}
		return DaySpec{Kind: DayDate, Year: nums[0], Month: time.Month(nums[1]), Day: nums[2]}, nil
	}

	switch w := strings.ToLower(strings.TrimSpace(when)); w {
	case "", "today":
		return DaySpec{Kind: DayToday}, nil
	case "tomorrow":
		return DaySpec{Kind: DayTomorrow}, nil
	default:
		if wd, ok := weekdayNames[w]; ok {
			return DaySpec{Kind: DayWeekday, Weekday: wd}, nil
		}
		return DaySpec{Kind: DayToday}, nil
	}
}

// Window is one civil day (or an arbitrary instant range, for search)
// expressed as absolute UTC instants.
type Window struct {
	// Start is the instant of civil 00:00:00.000 in the window's zone.
	Start time.Time
	// End is the instant of civil 23:59:59.999 in the window's zone.
	End time.Time
	// Label is the civil date, YYYY-MM-DD.
	Label string
	// Timezone is the IANA zone name the boundaries were resolved in.
	Timezone string
}

// Resolve turns a day specifier into the UTC window covering that civil day
// in loc. The target date is selected from the reference instant's own
// wall-clock fields; only the boundary conversion uses loc, which handles
// DST through the zone database (a fixed-offset shortcut would be wrong on
// transition days).
func Resolve(spec DaySpec, loc *time.Location, now time.Time) Window {
	y, m, d := now.Date()

	switch spec.Kind {
	case DayTomorrow:
		d++
	case DayWeekday:
		d += (int(spec.Weekday) - int(now.Weekday()) + 7) % 7
	case DayDate:
		y, m, d = spec.Year, spec.Month, spec.Day
	}

	// Normalize overflowing components before building the boundaries.
	civil := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	cy, cm, cd := civil.Date()

	start := time.Date(cy, cm, cd, 0, 0, 0, 0, loc)
	end := time.Date(cy, cm, cd, 23, 59, 59, 999_000_000, loc)

	return Window{
		Start:    start.UTC(),
		End:      end.UTC(),
		Label:    civil.Format("2006-01-02"),
		Timezone: loc.String(),
	}
}
