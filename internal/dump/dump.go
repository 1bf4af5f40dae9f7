// Package dump persists raw API payloads verbatim to disk.
// One file is written per fetch, named after the resource and a UTC
// timestamp, so every transformation can be audited or replayed later.
package dump

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/mpath-tools/mpathkit/internal/constants"
	"github.com/mpath-tools/mpathkit/internal/fileutils"
)

// Writer writes timestamped payload dumps below a base directory.
// The zero value is a no-op writer, used when no output directory is configured.
type Writer struct {
	dir string
}

// New returns a Writer rooted at dir.
func New(dir string) Writer {
	return Writer{dir: dir}
}

// Enabled reports whether this writer persists anything.
func (w Writer) Enabled() bool {
	return w.dir != ""
}

// Dir returns the base directory dumps are written under.
func (w Writer) Dir() string {
	return w.dir
}

// Sub returns a Writer for a subdirectory, typically a connection ID.
func (w Writer) Sub(name string) Writer {
	if !w.Enabled() {
		return w
	}
	return Writer{dir: filepath.Join(w.dir, name)}
}

// Write persists body as <stem>_<stamp>.json and returns the path written.
// It creates the directory if needed. A disabled writer returns "" and no error.
func (w Writer) Write(stem string, stamp string, body []byte) (string, error) {
	if !w.Enabled() {
		return "", nil
	}

	if err := os.MkdirAll(w.dir, 0750); err != nil {
		return "", fmt.Errorf("could not create dump directory: %v", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("%s_%s%s", stem, stamp, constants.DumpExt))
	if err := fileutils.AtomicWrite(path, body); err != nil {
		return "", fmt.Errorf("could not write dump: %v", err)
	}

	slog.Info("Raw payload saved", "path", path)
	return path, nil
}

// Stamp formats t as the UTC filename timestamp shared by dumps and CSVs.
func Stamp(t time.Time) string {
	return t.UTC().Format(constants.StampFormat)
}

var slugPattern = regexp.MustCompile(`[^\w\-]+`)

// Slug sanitizes a title into a filename fragment, capped at 48 runes.
func Slug(title string) string {
	s := slugPattern.ReplaceAllString(title, "_")
	if s == "" {
		return "root"
	}
	runes := []rune(s)
	if len(runes) > 48 {
		s = string(runes[:48])
	}
	return s
}
