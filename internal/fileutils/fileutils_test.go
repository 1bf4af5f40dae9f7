package fileutils_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/mpath-tools/mpathkit/internal/fileutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWrite(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		data            []byte
		fileExists      bool
		fileExistsPerms os.FileMode
		invalidDir      bool

		wantError bool
	}{
		"Empty file":              {data: []byte{}},
		"Non-empty file":          {data: []byte("data")},
		"Override file":           {data: []byte("data"), fileExistsPerms: 0600, fileExists: true},
		"Override empty file":     {data: []byte{}, fileExistsPerms: 0600, fileExists: true},
		"Override read-only file": {data: []byte("data"), fileExistsPerms: 0400, fileExists: true, wantError: runtime.GOOS == "windows"},
		"Invalid Dir":             {data: []byte("data"), invalidDir: true, wantError: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			oldFile := []byte("Old File!")
			tempDir := t.TempDir()
			path := filepath.Join(tempDir, "file")
			if tc.invalidDir {
				path = filepath.Join(path, "fake_dir")
			}

			if tc.fileExists {
				err := os.WriteFile(path, oldFile, tc.fileExistsPerms)
				require.NoError(t, err, "Setup: WriteFile should not return an error")
				t.Cleanup(func() { _ = os.Chmod(path, 0600) })
			}

			err := fileutils.AtomicWrite(path, tc.data)
			if tc.wantError {
				require.Error(t, err, "AtomicWrite should return an error")

				if !tc.fileExists {
					return
				}
				if tc.invalidDir {
					path = filepath.Dir(path)
				}

				data, err := os.ReadFile(path)
				require.NoError(t, err, "ReadFile should not return an error")
				require.Equal(t, oldFile, data, "AtomicWrite should not overwrite the file")
				return
			}
			require.NoError(t, err, "AtomicWrite should not return an error")

			data, err := os.ReadFile(path)
			require.NoError(t, err, "ReadFile should not return an error")
			require.Equal(t, tc.data, data, "AtomicWrite should write the data to the file")
		})
	}
}

func TestJSONFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.json")
	in := map[string]any{"alias": "p07", "connectionId": float64(42)}

	err := fileutils.WriteJSONFile(path, in)
	require.NoError(t, err, "WriteJSONFile should not return an error")

	var out map[string]any
	err = fileutils.ReadJSONFile(path, &out)
	require.NoError(t, err, "ReadJSONFile should not return an error")
	assert.Equal(t, in, out, "the document should survive the file round trip")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"alias\"", "WriteJSONFile should indent the document")
}

func TestReadJSONFileErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content *string
	}{
		"Missing file":  {},
		"Corrupt JSON":  {content: strPtr(`{"alias": `)},
		"Empty content": {content: strPtr("")},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "doc.json")
			if tc.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tc.content), 0600), "Setup: WriteFile should not return an error")
			}

			var out map[string]any
			err := fileutils.ReadJSONFile(path, &out)
			require.Error(t, err, "ReadJSONFile should return an error")
		})
	}
}

func strPtr(s string) *string { return &s }
