package agenda

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	calendar "google.golang.org/api/calendar/v3"
)

// Lister reads one calendar's events within an instant window. Implemented
// by the calendar client; faked in tests.
type Lister interface {
	ListWindow(ctx context.Context, calendarID string, min, max time.Time) ([]*calendar.Event, error)
}

// SourceError reports a failed per-source read. It wraps the upstream error
// so status codes stay reachable through errors.As.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Fanout issues one read per source concurrently and joins the results,
// tagging each record with its origin. If any source fails, the whole
// operation fails; partial results are never returned. Results come back in
// configured source order, but ordering guarantees only exist after the
// pipeline's sort.
func Fanout(ctx context.Context, lister Lister, sources []string, min, max time.Time) ([]Raw, error) {
	g, ctx := errgroup.WithContext(ctx)
	perSource := make([][]Raw, len(sources))

	for i, id := range sources {
		g.Go(func() error {
			items, err := lister.ListWindow(ctx, id, min, max)
			if err != nil {
				return &SourceError{Source: id, Err: err}
			}
			rows := make([]Raw, 0, len(items))
			for _, ev := range items {
				rows = append(rows, Raw{Event: ev, Source: id})
			}
			perSource[i] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Raw
	for _, rows := range perSource {
		all = append(all, rows...)
	}
	return all, nil
}
