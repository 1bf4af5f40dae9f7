package flatten

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// RenderPreview writes a human-readable preview of the table, truncated to
// maxRows rows and maxCols columns.
func (t *Table) RenderPreview(w io.Writer, maxRows, maxCols int) error {
	cols := t.Columns
	truncatedCols := false
	if maxCols > 0 && len(cols) > maxCols {
		cols = cols[:maxCols]
		truncatedCols = true
	}

	rows := t.Rows
	truncatedRows := false
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
		truncatedRows = true
	}

	table := tablewriter.NewWriter(w)
	table.Header(cols)

	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		rec := make([]string, len(cols))
		for i, c := range cols {
			rec[i] = CellString(row[c])
		}
		data = append(data, rec)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if truncatedRows || truncatedCols {
		if _, err := fmt.Fprintf(w, "Showing %d of %d rows, %d of %d columns\n",
			len(rows), t.Len(), len(cols), len(t.Columns)); err != nil {
			return err
		}
	}
	return nil
}
