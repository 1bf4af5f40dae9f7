package flatten

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
)

// Row is one flattened record, keyed by column name.
type Row map[string]any

// Table is an ordered collection of flattened rows.
//
// Columns are the union of all row keys: within a row keys are sorted, across
// rows first-seen order wins, except that reserved leading columns (like the
// interaction path) stay in front.
type Table struct {
	Columns []string
	Rows    []Row

	seen map[string]bool
}

// Append adds a row and merges its columns into the table.
// lead columns, if present in the row, are placed before the sorted remainder.
func (t *Table) Append(r Row, lead ...string) {
	if t.seen == nil {
		t.seen = make(map[string]bool, len(r))
	}

	isLead := make(map[string]bool, len(lead))
	for _, c := range lead {
		isLead[c] = true
		if _, ok := r[c]; ok && !t.seen[c] {
			t.seen[c] = true
			t.Columns = append(t.Columns, c)
		}
	}

	rest := make([]string, 0, len(r))
	for c := range r {
		if !isLead[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	for _, c := range rest {
		if !t.seen[c] {
			t.seen[c] = true
			t.Columns = append(t.Columns, c)
		}
	}

	t.Rows = append(t.Rows, r)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// WriteCSV writes the table with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			rec[i] = CellString(row[c])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
