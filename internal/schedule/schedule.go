// Package schedule implements the schedule entry model, the beep builder and
// the merge step used before pushing a schedule back to the platform.
package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mpath-tools/mpathkit/internal/constants"
)

// ErrValidation is returned for malformed local input: bad timestamp ranges,
// mismatched argument lengths, or entries that don't match the platform schema.
var ErrValidation = errors.New("schedule validation failed")

// Entry is one scheduled beep. Field order matches the key order the
// platform's setSchedule endpoint conventionally receives.
//
// A locally built entry has BeepID 0; the platform assigns the real beep ID
// on upload and reports it in the reply's new2id mapping.
type Entry struct {
	ItemID              string `json:"itemId"`
	LocalID             string `json:"localId,omitempty"`
	EndTime             string `json:"endTime,omitempty"`
	StartTime           string `json:"startTime,omitempty"`
	BeepID              int    `json:"beepId"`
	ScheduledTime       string `json:"scheduledTime,omitempty"`
	ReminderIntervals   []int  `json:"reminderIntervals,omitempty"`
	RandomizationScheme int    `json:"randomizationScheme"`
	ExpirationInterval  *int   `json:"expirationInterval,omitempty"`

	// Optional platform metadata carried through merges.
	UseAsButton  *bool `json:"useAsButton,omitempty"`
	SingleUse    *bool `json:"singleUse,omitempty"`
	Required     *bool `json:"required,omitempty"`
	Passed       *bool `json:"passed,omitempty"`
	ScheduleType *int  `json:"scheduleType,omitempty"`
}

// ParseTime parses a platform wall-clock time string in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(constants.TimeFormat, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: unparsable time %q: %v", ErrValidation, s, err)
	}
	return t, nil
}

// Window returns the entry's start and end instants in loc.
//
// When the end time is absent the window is derived from the expiration
// interval in seconds. ok is false when no window can be derived.
func (e Entry) Window(loc *time.Location) (start, end time.Time, ok bool, err error) {
	if e.StartTime == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	start, err = ParseTime(e.StartTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}

	switch {
	case e.EndTime != "":
		end, err = ParseTime(e.EndTime, loc)
		if err != nil {
			return time.Time{}, time.Time{}, false, err
		}
	case e.ExpirationInterval != nil:
		end = start.Add(time.Duration(*e.ExpirationInterval) * time.Second)
	default:
		return time.Time{}, time.Time{}, false, nil
	}

	return start, end, true, nil
}

// FromMap converts a fetched schedule record into a typed Entry, dropping
// any keys outside the platform schema. This is the cleaning step applied to
// existing rows before a merged push.
func FromMap(rec map[string]any) (Entry, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("%w: record does not match the schedule entry schema: %v", ErrValidation, err)
	}
	return e, nil
}

// FromMaps converts a fetched schedule payload into typed entries.
func FromMaps(recs []map[string]any) ([]Entry, error) {
	entries := make([]Entry, 0, len(recs))
	for _, rec := range recs {
		e, err := FromMap(rec)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
