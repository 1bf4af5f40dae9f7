package flatten

import (
	"strings"
	"time"

	"github.com/mpath-tools/mpathkit/internal/constants"
)

// timestampColumn reports whether a column carries epoch-millisecond values
// by platform naming convention.
func timestampColumn(name string) bool {
	return strings.Contains(name, "timeStamp") ||
		strings.Contains(name, "timeStart") ||
		strings.Contains(name, "timeEnd")
}

// ConvertTimestamps rewrites numeric epoch-millisecond cells in timestamp
// columns to wall-clock strings in loc.
//
// The source zone is fixed (the platform reports UTC milliseconds), so the
// conversion is explicit rather than guessed from cell contents. String
// cells are left untouched.
func ConvertTimestamps(t *Table, loc *time.Location) {
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if timestampColumn(c) {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return
	}

	for _, row := range t.Rows {
		for _, c := range cols {
			ms, ok := row[c].(float64)
			if !ok {
				continue
			}
			row[c] = time.UnixMilli(int64(ms)).In(loc).Format(constants.TimeFormat)
		}
	}
}
