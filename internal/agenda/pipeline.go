package agenda

import (
	"context"
	"sort"
	"time"
)

// Timeline is the merged, chronologically sorted sequence of normalized
// events. Built per request and discarded with the response.
type Timeline []Event

// sortKey substitutes 0 for a missing start timestamp, so events without a
// parseable start sort first.
func sortKey(e Event) int64 {
	if e.StartTs == nil {
		return 0
	}
	return *e.StartTs
}

// Aggregate composes fanout, normalization, and a stable ascending sort by
// start timestamp. Stability keeps equal-key records in their fanout order.
func Aggregate(ctx context.Context, lister Lister, sources []string, min, max time.Time) (Timeline, error) {
	raws, err := Fanout(ctx, lister, sources, min, max)
	if err != nil {
		return nil, err
	}

	timeline := make(Timeline, 0, len(raws))
	for _, raw := range raws {
		timeline = append(timeline, Normalize(raw))
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		return sortKey(timeline[i]) < sortKey(timeline[j])
	})

	return timeline, nil
}
