package mpath

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mpath-tools/mpathkit/internal/constants"
	"github.com/mpath-tools/mpathkit/internal/dump"
	"github.com/mpath-tools/mpathkit/internal/schedule"
)

// FetchResult is the outcome of a resource fetch: the parsed payload rows,
// the raw response, and where the raw payload was persisted (empty when
// dumping is disabled).
type FetchResult struct {
	Rows     []map[string]any
	Raw      RawResponse
	DumpPath string
	DumpDir  string
}

// ClientsQuery filters a client metadata fetch.
type ClientsQuery struct {
	// ChangedAfterUTC keeps only connections changed after this UTC time,
	// in "YYYY-MM-DD" or "YYYY-MM-DD HH:MM:SS" form. Empty means the
	// default window.
	ChangedAfterUTC string
	// All omits the changedAfterUTC filter entirely.
	All bool
}

// NormalizeChangedAfter normalizes a user-supplied datetime string to
// "YYYY-MM-DD HH:MM:SS" UTC. Empty input yields the default window.
func NormalizeChangedAfter(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return constants.DefaultChangedAfterUTC, nil
	}
	if d, err := time.Parse(constants.DateFormat, s); err == nil {
		return d.Format(constants.DateFormat) + " 00:00:00", nil
	}
	if d, err := time.Parse(constants.TimeFormat, s); err == nil {
		return d.Format(constants.TimeFormat), nil
	}
	return "", fmt.Errorf("changedAfterUTC must be %q or %q, got %q",
		"YYYY-MM-DD", "YYYY-MM-DD HH:MM:SS", s)
}

// GetClients fetches client metadata for the practitioner, stamps each row
// with the download time and persists the raw payload.
func (c *Client) GetClients(ctx context.Context, q ClientsQuery) (FetchResult, error) {
	query := url.Values{}
	suffix := "all"
	if !q.All {
		changedAfter, err := NormalizeChangedAfter(q.ChangedAfterUTC)
		if err != nil {
			return FetchResult{}, err
		}
		query.Set("changedAfterUTC", changedAfter)
		suffix = strings.NewReplacer(" ", "_", ":", "").Replace(changedAfter)
	}

	return c.fetch(ctx, fetchSpec{
		endpoint: "getClients",
		query:    query,
		keys:     []string{"clients", "data"},
		stem:     "clients_" + suffix,
		stamped:  true,
		wholeDoc: true,
		dumps:    c.dumps,
	})
}

// ClientIDsAndAliases reduces a client fetch to (connectionId, alias) pairs.
func ClientIDsAndAliases(rows []map[string]any) []ClientRef {
	refs := make([]ClientRef, 0, len(rows))
	for _, r := range rows {
		ref := ClientRef{}
		if id, ok := r["connectionId"].(float64); ok {
			ref.ConnectionID = int(id)
		}
		ref.Alias, _ = r["alias"].(string)
		refs = append(refs, ref)
	}
	return refs
}

// ClientRef identifies one participant connection.
type ClientRef struct {
	ConnectionID int
	Alias        string
}

// GetData fetches the raw data points of one connection, stamps each row
// with the download time and persists the raw payload under the
// connection's subdirectory.
func (c *Client) GetData(ctx context.Context, connectionID int) (FetchResult, error) {
	return c.fetch(ctx, fetchSpec{
		endpoint: "getData",
		query:    connQuery(connectionID),
		keys:     []string{"data"},
		stem:     fmt.Sprintf("data_%d", connectionID),
		stamped:  true,
		wholeDoc: true,
		dumps:    c.dumps.Sub(strconv.Itoa(connectionID)),
	})
}

// GetInteractions fetches the interaction forest of one connection. Each
// returned row is one independent root container.
func (c *Client) GetInteractions(ctx context.Context, connectionID int) (FetchResult, error) {
	return c.fetch(ctx, fetchSpec{
		endpoint: "getInteractions",
		query:    connQuery(connectionID),
		keys:     []string{"interactions"},
		stem:     fmt.Sprintf("interactions_%d", connectionID),
		dumps:    c.dumps.Sub(strconv.Itoa(connectionID)),
	})
}

// GetSchedule fetches the schedule entries of one connection.
func (c *Client) GetSchedule(ctx context.Context, connectionID int) (FetchResult, error) {
	return c.fetch(ctx, fetchSpec{
		endpoint: "getSchedule",
		query:    connQuery(connectionID),
		keys:     []string{"schedule"},
		stem:     fmt.Sprintf("schedule_%d", connectionID),
		dumps:    c.dumps.Sub(strconv.Itoa(connectionID)),
	})
}

// PushResult is the platform's reply to a schedule upload.
type PushResult struct {
	Raw RawResponse
	// New2ID maps the localId of each newly created beep to its
	// platform-assigned beep ID.
	New2ID map[string]int
}

// SetSchedule uploads a full replacement schedule for one connection.
//
// With minimal set, keys outside the platform schema are stripped first.
// The entry shape is validated before anything is sent.
func (c *Client) SetSchedule(ctx context.Context, connectionID int, entries []map[string]any, minimal bool) (PushResult, error) {
	if minimal {
		entries = schedule.Minimalize(entries)
	}
	if err := schedule.ValidateUpload(entries); err != nil {
		return PushResult{}, err
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return PushResult{}, fmt.Errorf("could not encode schedule: %v", err)
	}

	form := url.Values{}
	form.Set("scheduleJSON", string(payload))

	raw, env, err := c.call(ctx, http.MethodPost, "setSchedule", connQuery(connectionID), form)
	if err != nil {
		return PushResult{}, err
	}
	return PushResult{Raw: raw, New2ID: env.New2ID}, nil
}

// MergeAndPush fetches the connection's current schedule, cleans it against
// the platform schema, merges in the new entries and pushes the combined set.
func (c *Client) MergeAndPush(ctx context.Context, connectionID int, latest []schedule.Entry, opts schedule.MergeOptions) (PushResult, error) {
	fetched, err := c.GetSchedule(ctx, connectionID)
	if err != nil {
		return PushResult{}, fmt.Errorf("could not fetch current schedule: %w", err)
	}

	existing, err := schedule.FromMaps(fetched.Rows)
	if err != nil {
		return PushResult{}, err
	}

	combined, err := schedule.Merge(existing, latest, opts)
	if err != nil {
		return PushResult{}, err
	}

	raw, err := schedule.ToMaps(combined)
	if err != nil {
		return PushResult{}, err
	}
	return c.SetSchedule(ctx, connectionID, raw, false)
}

// SetInteractions uploads a replacement interaction list for one connection.
func (c *Client) SetInteractions(ctx context.Context, connectionID int, interactions []any) (PushResult, error) {
	if len(interactions) == 0 {
		return PushResult{}, fmt.Errorf("%w: interactions upload must be a non-empty list", schedule.ErrValidation)
	}

	payload, err := json.Marshal(interactions)
	if err != nil {
		return PushResult{}, fmt.Errorf("could not encode interactions: %v", err)
	}

	form := url.Values{}
	form.Set("interactionsJSON", string(payload))

	raw, _, err := c.call(ctx, http.MethodPost, "setInteractions", connQuery(connectionID), form)
	if err != nil {
		return PushResult{}, err
	}
	return PushResult{Raw: raw}, nil
}

// fetchSpec describes how one resource fetch extracts and persists its rows.
type fetchSpec struct {
	endpoint string
	query    url.Values
	keys     []string
	stem     string
	// stamped adds a downloadedAt field to every row before dumping.
	stamped bool
	// wholeDoc dumps the entire response document rather than the row list.
	wholeDoc bool
	dumps    dump.Writer
}

func (c *Client) fetch(ctx context.Context, spec fetchSpec) (FetchResult, error) {
	raw, _, err := c.call(ctx, http.MethodGet, spec.endpoint, spec.query, nil)
	if err != nil {
		return FetchResult{}, err
	}

	var doc map[string]any
	if err := json.Unmarshal(raw.Body, &doc); err != nil {
		return FetchResult{}, fmt.Errorf("%w: could not decode %s payload: %v", ErrClient, spec.endpoint, err)
	}

	var rows []map[string]any
	for _, key := range spec.keys {
		if arr, ok := doc[key].([]any); ok {
			rows = asMaps(arr)
			break
		}
	}

	stamp := dump.Stamp(raw.RequestedAt)
	if spec.stamped {
		for _, r := range rows {
			r["downloadedAt"] = stamp
		}
	}

	result := FetchResult{Rows: rows, Raw: raw, DumpDir: spec.dumps.Dir()}
	if !spec.dumps.Enabled() {
		return result, nil
	}

	var dumped any = rows
	if spec.wholeDoc {
		dumped = doc
	}
	data, err := json.MarshalIndent(dumped, "", "  ")
	if err != nil {
		return FetchResult{}, fmt.Errorf("could not encode dump: %v", err)
	}
	result.DumpPath, err = spec.dumps.Write(spec.stem, stamp, data)
	if err != nil {
		return FetchResult{}, err
	}
	return result, nil
}

// asMaps filters a decoded JSON array down to its object elements.
func asMaps(arr []any) []map[string]any {
	rows := make([]map[string]any, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			rows = append(rows, m)
		}
	}
	return rows
}

func connQuery(connectionID int) url.Values {
	q := url.Values{}
	q.Set("connectionId", strconv.Itoa(connectionID))
	return q
}
