package fileutils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ParseJSON unmarshals the data in r into v.
func ParseJSON(r io.Reader, v any) error {
	// Read the entire content of the io.Reader first to check for errors even if valid json is first.
	buf, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("error reading from io.Reader: %v", err)
	}

	err = json.Unmarshal(buf, v)
	if err != nil {
		return fmt.Errorf("couldn't parse JSON: %v", err)
	}
	return nil
}

// ReadJSONFile reads the file at path and unmarshals it into v.
func ReadJSONFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("couldn't open %s: %v", path, err)
	}
	defer f.Close()

	return ParseJSON(f, v)
}

// WriteJSONFile marshals v with indentation and writes it atomically to path.
func WriteJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("couldn't marshal JSON: %v", err)
	}
	return AtomicWrite(path, append(data, '\n'))
}
