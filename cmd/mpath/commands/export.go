package commands

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/mpath-tools/mpathkit/internal/fileutils"
	"github.com/mpath-tools/mpathkit/internal/flatten"
)

// previewRows and previewCols cap terminal previews to a readable size.
const (
	previewRows = 15
	previewCols = 8
)

// saveCSV writes the flattened table below dir, with the row count baked
// into the file name. An empty dir disables writing.
func saveCSV(t *flatten.Table, dir, stem, stamp string) (string, error) {
	if dir == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return "", fmt.Errorf("could not render %s table: %v", stem, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s_%drows.csv", stem, stamp, t.Len()))
	if err := fileutils.AtomicWrite(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("could not write %s table: %v", stem, err)
	}
	return path, nil
}

// report prints a one line summary for each artifact written.
func (a *App) report(what, path string) {
	if path == "" {
		return
	}
	fmt.Fprintf(a.cmd.OutOrStdout(), "%s: %s\n", what, path)
}

func (a *App) preview(t *flatten.Table) error {
	return t.RenderPreview(a.cmd.OutOrStdout(), previewRows, previewCols)
}
