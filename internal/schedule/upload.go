package schedule

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mpath-tools/mpathkit/internal/fileutils"
)

// allowedKeys is the set of keys the setSchedule endpoint accepts.
var allowedKeys = map[string]bool{
	"startTime": true, "endTime": true, "scheduledTime": true,
	"itemId": true, "beepId": true, "localId": true,
	"randomizationScheme": true, "reminderIntervals": true,
	"expirationInterval": true, "useAsButton": true, "singleUse": true,
	"required": true, "passed": true, "scheduleType": true,
}

// Minimalize strips keys outside the platform schedule schema from raw
// entries, reducing the upload payload to required fields only.
func Minimalize(entries []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		m := make(map[string]any, len(e))
		for k, v := range e {
			if allowedKeys[k] {
				m[k] = v
			}
		}
		out = append(out, m)
	}
	return out
}

// ValidateUpload checks that raw entries match the shape setSchedule expects
// before anything is sent. It fails wrapping ErrValidation.
func ValidateUpload(entries []map[string]any) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: upload must contain at least one entry", ErrValidation)
	}
	for i, e := range entries {
		if s, _ := e["itemId"].(string); s == "" {
			return fmt.Errorf("%w: entry %d is missing itemId", ErrValidation, i+1)
		}
		if s, _ := e["startTime"].(string); s == "" {
			return fmt.Errorf("%w: entry %d is missing startTime", ErrValidation, i+1)
		}
		_, hasEnd := e["endTime"]
		_, hasExp := e["expirationInterval"]
		if !hasEnd && !hasExp {
			return fmt.Errorf("%w: entry %d needs endTime or expirationInterval", ErrValidation, i+1)
		}
	}
	return nil
}

// ToMaps converts typed entries into the raw form used for upload payloads.
func ToMaps(entries []Entry) ([]map[string]any, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return out, nil
}

// SaveUploadJSON writes an upload-ready schedule JSON with a timestamped
// filename under dir and returns the path written.
func SaveUploadJSON(entries []Entry, dir, prefix string, now time.Time) (string, error) {
	if prefix == "" {
		prefix = "upload_ready_"
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("could not create directory %s: %v", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s%s.json", prefix, now.Format("20060102T150405")))
	if err := fileutils.WriteJSONFile(path, entries); err != nil {
		return "", err
	}
	return path, nil
}
