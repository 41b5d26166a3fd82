package agenda

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrEmptyQuery is returned when the search text is blank after trimming.
var ErrEmptyQuery = errors.New("missing q")

// SearchResult holds the filtered timeline and the nearest match relative to
// the reference instant.
type SearchResult struct {
	Matches Timeline
	// Next is the first match starting at or after the reference instant.
	// With only past matches it is the chronologically last one; it is nil
	// only when no match exists at all.
	Next *Event

	TimeMin time.Time
	TimeMax time.Time
}

// Search aggregates events in [now - daysBack, now + daysForward] (an
// absolute instant range, not civil days) and filters them by a
// case-insensitive substring match over title, description, and location.
func Search(ctx context.Context, lister Lister, sources []string, query string, daysBack, daysForward int, now time.Time) (*SearchResult, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, ErrEmptyQuery
	}

	min := now.Add(-time.Duration(daysBack) * 24 * time.Hour)
	max := now.Add(time.Duration(daysForward) * 24 * time.Hour)

	timeline, err := Aggregate(ctx, lister, sources, min, max)
	if err != nil {
		return nil, err
	}

	var matches Timeline
	for _, ev := range timeline {
		if matchesQuery(ev, q) {
			matches = append(matches, ev)
		}
	}

	result := &SearchResult{Matches: matches, TimeMin: min, TimeMax: max}

	nowMs := now.UnixMilli()
	for i := range matches {
		if sortKey(matches[i]) >= nowMs {
			result.Next = &matches[i]
			break
		}
	}
	if result.Next == nil && len(matches) > 0 {
		result.Next = &matches[len(matches)-1]
	}

	return result, nil
}

func matchesQuery(ev Event, loweredQuery string) bool {
	text := strings.ToLower(ev.Title + " " + ev.Description + " " + ev.Location)
	return strings.Contains(text, loweredQuery)
}
