package schedule

import (
	"fmt"
	"time"
)

// BuildOptions carries the optional knobs of BuildEntries.
type BuildOptions struct {
	// Labels become the localId of each entry. A single label is broadcast
	// to all entries; missing labels are generated as auto_N.
	Labels []string
	// ExpirationInterval, in seconds, substitutes for a missing end time.
	ExpirationInterval *int
	// ReminderIntervals are copied to every entry.
	ReminderIntervals []int
	// RandomizationScheme is copied to every entry.
	RandomizationScheme int
	// Location interprets the wall-clock time strings. Defaults to UTC.
	Location *time.Location
}

// BuildEntries constructs new beep entries from parallel start/end slices.
//
// It fails fast wrapping ErrValidation on length mismatch, unparsable
// timestamps, or inverted ranges; no entries are produced on error.
func BuildEntries(starts, ends []string, itemID string, opts BuildOptions) ([]Entry, error) {
	if itemID == "" {
		return nil, fmt.Errorf("%w: itemId is required", ErrValidation)
	}
	if len(starts) == 0 {
		return nil, fmt.Errorf("%w: no start times given", ErrValidation)
	}
	if len(starts) != len(ends) {
		return nil, fmt.Errorf("%w: %d starts but %d ends", ErrValidation, len(starts), len(ends))
	}

	labels, err := expandLabels(opts.Labels, len(starts))
	if err != nil {
		return nil, err
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	entries := make([]Entry, 0, len(starts))
	for i, st := range starts {
		start, err := ParseTime(st, loc)
		if err != nil {
			return nil, err
		}

		e := Entry{
			ItemID:              itemID,
			LocalID:             labels[i],
			StartTime:           st,
			ScheduledTime:       st,
			BeepID:              0,
			RandomizationScheme: opts.RandomizationScheme,
		}

		switch {
		case ends[i] != "":
			end, err := ParseTime(ends[i], loc)
			if err != nil {
				return nil, err
			}
			if !start.Before(end) {
				return nil, fmt.Errorf("%w: start %q is not before end %q", ErrValidation, st, ends[i])
			}
			e.EndTime = ends[i]
		case opts.ExpirationInterval != nil:
			e.ExpirationInterval = opts.ExpirationInterval
		default:
			return nil, fmt.Errorf("%w: entry %d needs an end time or an expiration interval", ErrValidation, i+1)
		}

		if len(opts.ReminderIntervals) > 0 {
			e.ReminderIntervals = append([]int{}, opts.ReminderIntervals...)
		}

		entries = append(entries, e)
	}
	return entries, nil
}

// expandLabels broadcasts or autogenerates labels to length n.
func expandLabels(labels []string, n int) ([]string, error) {
	switch {
	case len(labels) == n:
		return labels, nil
	case len(labels) == 1:
		out := make([]string, n)
		for i := range out {
			out[i] = labels[0]
		}
		return out, nil
	case len(labels) == 0:
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("auto_%d", i+1)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d labels for %d entries", ErrValidation, len(labels), n)
	}
}
