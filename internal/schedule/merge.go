package schedule

import (
	"fmt"
	"sort"
	"time"
)

// MergeOptions carries the optional knobs of Merge.
type MergeOptions struct {
	// AllowOverlap skips the overlap check, restoring the platform's
	// permissive behavior.
	AllowOverlap bool
	// Location interprets the wall-clock time strings. Defaults to UTC.
	Location *time.Location
}

// Merge appends new entries to an existing schedule and returns the combined
// set in chronological order.
//
// Entries whose time windows overlap fail wrapping ErrValidation unless
// AllowOverlap is set: two beeps competing for the same window on one
// connection is almost always a scheduling mistake.
func Merge(existing, latest []Entry, opts MergeOptions) ([]Entry, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	combined := make([]Entry, 0, len(existing)+len(latest))
	combined = append(combined, existing...)
	combined = append(combined, latest...)

	// The platform time format sorts lexicographically in chronological order.
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].StartTime < combined[j].StartTime
	})

	if opts.AllowOverlap {
		return combined, nil
	}

	type window struct {
		entry      Entry
		start, end time.Time
	}
	windows := make([]window, 0, len(combined))
	for _, e := range combined {
		start, end, ok, err := e.Window(loc)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		windows = append(windows, window{entry: e, start: start, end: end})
	}

	// Sorted by start, so only adjacent windows can overlap.
	for i := 1; i < len(windows); i++ {
		prev, cur := windows[i-1], windows[i]
		if cur.start.Before(prev.end) {
			return nil, fmt.Errorf("%w: entries %q (%s) and %q (%s) overlap",
				ErrValidation,
				prev.entry.LocalID, prev.entry.StartTime,
				cur.entry.LocalID, cur.entry.StartTime)
		}
	}

	return combined, nil
}
