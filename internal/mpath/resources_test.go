package mpath_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mpath-tools/mpathkit/internal/dump"
	"github.com/mpath-tools/mpathkit/internal/mpath"
	"github.com/mpath-tools/mpathkit/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeChangedAfter(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in string

		want    string
		wantErr bool
	}{
		"Empty uses default window": {in: "", want: "2024-01-01 00:00:00"},
		"Whitespace only":           {in: "  ", want: "2024-01-01 00:00:00"},
		"Date gets midnight":        {in: "2025-03-10", want: "2025-03-10 00:00:00"},
		"Datetime passes through":   {in: "2025-03-10 09:30:00", want: "2025-03-10 09:30:00"},
		"Garbage":                   {in: "last tuesday", wantErr: true},
		"Wrong separator":           {in: "2025/03/10", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := mpath.NormalizeChangedAfter(tc.in)
			if tc.wantErr {
				require.Error(t, err, "NormalizeChangedAfter should return an error")
				return
			}
			require.NoError(t, err, "NormalizeChangedAfter should not return an error")
			assert.Equal(t, tc.want, got)
		})
	}
}

// testClient builds a client against srv with dumping rooted at a temp dir.
func testClient(t *testing.T, srv *httptest.Server) (*mpath.Client, string) {
	t.Helper()

	issuer, _ := newIssuer(t)
	dir := t.TempDir()
	client, err := mpath.New(issuer, "abc12",
		mpath.WithBaseURL(srv.URL),
		mpath.WithDumps(dump.New(dir)),
	)
	require.NoError(t, err, "Setup: New should not return an error")
	return client, dir
}

func TestGetClients(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		query mpath.ClientsQuery

		wantChangedAfter string
		wantDumpStem     string
	}{
		"All connections": {
			query:        mpath.ClientsQuery{All: true},
			wantDumpStem: "clients_all_",
		},
		"Default window": {
			query:            mpath.ClientsQuery{},
			wantChangedAfter: "2024-01-01 00:00:00",
			wantDumpStem:     "clients_2024-01-01_000000_",
		},
		"Explicit date": {
			query:            mpath.ClientsQuery{ChangedAfterUTC: "2025-03-10"},
			wantChangedAfter: "2025-03-10 00:00:00",
			wantDumpStem:     "clients_2025-03-10_000000_",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/getClients", r.URL.Path)
				assert.Equal(t, tc.wantChangedAfter, r.URL.Query().Get("changedAfterUTC"))
				fmt.Fprint(w, `{"status": 1, "clients": [{"connectionId": 42, "alias": "p07"}, {"connectionId": 43, "alias": "p08"}]}`)
			}))
			t.Cleanup(srv.Close)

			client, dir := testClient(t, srv)
			res, err := client.GetClients(context.Background(), tc.query)
			require.NoError(t, err, "GetClients should not return an error")

			require.Len(t, res.Rows, 2)
			for _, row := range res.Rows {
				assert.NotEmpty(t, row["downloadedAt"], "each row should be stamped with the download time")
			}

			require.NotEmpty(t, res.DumpPath, "the raw payload should be persisted")
			assert.Equal(t, dir, res.DumpDir)
			name := filepath.Base(res.DumpPath)
			assert.True(t, len(name) > len(tc.wantDumpStem) && name[:len(tc.wantDumpStem)] == tc.wantDumpStem,
				"dump %q should start with %q", name, tc.wantDumpStem)

			// The dump holds the whole reply document, stamps included.
			var doc map[string]any
			data, err := os.ReadFile(res.DumpPath)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(data, &doc))
			assert.EqualValues(t, 1, doc["status"])

			refs := mpath.ClientIDsAndAliases(res.Rows)
			assert.Equal(t, []mpath.ClientRef{{ConnectionID: 42, Alias: "p07"}, {ConnectionID: 43, Alias: "p08"}}, refs)
		})
	}
}

func TestGetDataDumpsUnderConnection(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getData", r.URL.Path)
		fmt.Fprint(w, `{"status": 1, "data": [{"beepId": 7, "timeStampStart": 1700000000000}]}`)
	}))
	t.Cleanup(srv.Close)

	client, dir := testClient(t, srv)
	res, err := client.GetData(context.Background(), 42)
	require.NoError(t, err, "GetData should not return an error")

	require.Len(t, res.Rows, 1)
	assert.NotEmpty(t, res.Rows[0]["downloadedAt"])

	assert.Equal(t, filepath.Join(dir, "42"), res.DumpDir, "data dumps should live under the connection's subdirectory")
	assert.Equal(t, res.DumpDir, filepath.Dir(res.DumpPath))
}

func TestGetScheduleRowsOnlyDump(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getSchedule", r.URL.Path)
		fmt.Fprint(w, `{"status": 1, "schedule": [{"itemId": "survey1", "beepId": 12, "startTime": "2025-03-10 09:00:00", "endTime": "2025-03-10 09:15:00"}]}`)
	}))
	t.Cleanup(srv.Close)

	client, _ := testClient(t, srv)
	res, err := client.GetSchedule(context.Background(), 42)
	require.NoError(t, err, "GetSchedule should not return an error")

	require.Len(t, res.Rows, 1)
	assert.NotContains(t, res.Rows[0], "downloadedAt", "schedule rows should stay upload-clean")

	// The dump is the bare entry list, ready to edit and re-upload.
	var dumped []map[string]any
	data, err := os.ReadFile(res.DumpPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &dumped))
	require.Len(t, dumped, 1)
	assert.Equal(t, "survey1", dumped[0]["itemId"])
}

func TestSetSchedule(t *testing.T) {
	t.Parallel()

	valid := map[string]any{
		"itemId": "survey1", "startTime": "2025-03-10 09:00:00", "endTime": "2025-03-10 09:15:00",
		"localId": "m1", "beepId": float64(0), "extraneousKey": "zap",
	}

	tests := map[string]struct {
		entries []map[string]any
		minimal bool

		wantRequest    bool
		wantExtraneous bool
		wantErr        bool
	}{
		"Full entries pass through": {entries: []map[string]any{valid}, wantRequest: true, wantExtraneous: true},
		"Minimal strips extras":     {entries: []map[string]any{valid}, minimal: true, wantRequest: true},
		"Empty upload rejected":     {wantErr: true},
		"Invalid entry rejected":    {entries: []map[string]any{{"itemId": "survey1"}}, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			requested := false
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requested = true
				assert.Equal(t, "/setSchedule", r.URL.Path)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
				assert.Equal(t, "42", r.URL.Query().Get("connectionId"))

				require.NoError(t, r.ParseForm())
				var sent []map[string]any
				require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("scheduleJSON")), &sent), "scheduleJSON should be a JSON array")
				require.Len(t, sent, 1)
				if tc.wantExtraneous {
					assert.Contains(t, sent[0], "extraneousKey")
				} else {
					assert.NotContains(t, sent[0], "extraneousKey", "minimal uploads should strip unknown keys")
				}

				fmt.Fprint(w, `{"status": 1, "new2id": {"m1": 9001}}`)
			}))
			t.Cleanup(srv.Close)

			client, _ := testClient(t, srv)
			res, err := client.SetSchedule(context.Background(), 42, tc.entries, tc.minimal)
			if tc.wantErr {
				require.Error(t, err, "SetSchedule should return an error")
				assert.ErrorIs(t, err, schedule.ErrValidation)
				assert.False(t, requested, "nothing should be sent when validation fails")
				return
			}
			require.NoError(t, err, "SetSchedule should not return an error")
			assert.True(t, requested)
			assert.Equal(t, map[string]int{"m1": 9001}, res.New2ID, "the platform's beep ID assignments should be surfaced")
		})
	}
}

func TestMergeAndPush(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		existing string
		latest   []schedule.Entry
		opts     schedule.MergeOptions

		wantOrder []string
		wantPush  bool
		wantErr   bool
	}{
		"New beep lands between existing": {
			existing: `[
				{"itemId": "survey1", "beepId": 11, "localId": "old1", "startTime": "2025-03-10 09:00:00", "endTime": "2025-03-10 09:15:00"},
				{"itemId": "survey1", "beepId": 12, "localId": "old2", "startTime": "2025-03-10 10:00:00", "endTime": "2025-03-10 10:15:00"}
			]`,
			latest: []schedule.Entry{entryFor("new1", "2025-03-10 09:30:00", "2025-03-10 09:45:00")},

			wantOrder: []string{"old1", "new1", "old2"},
			wantPush:  true,
		},
		"Empty platform schedule": {
			existing: `[]`,
			latest:   []schedule.Entry{entryFor("new1", "2025-03-10 09:30:00", "2025-03-10 09:45:00")},

			wantOrder: []string{"new1"},
			wantPush:  true,
		},
		"Overlap with live beep rejected": {
			existing: `[{"itemId": "survey1", "beepId": 11, "localId": "old1", "startTime": "2025-03-10 09:00:00", "endTime": "2025-03-10 09:40:00"}]`,
			latest:   []schedule.Entry{entryFor("new1", "2025-03-10 09:30:00", "2025-03-10 09:45:00")},

			wantErr: true,
		},
		"Overlap pushed when allowed": {
			existing: `[{"itemId": "survey1", "beepId": 11, "localId": "old1", "startTime": "2025-03-10 09:00:00", "endTime": "2025-03-10 09:40:00"}]`,
			latest:   []schedule.Entry{entryFor("new1", "2025-03-10 09:30:00", "2025-03-10 09:45:00")},
			opts:     schedule.MergeOptions{AllowOverlap: true},

			wantOrder: []string{"old1", "new1"},
			wantPush:  true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pushed := false
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/getSchedule":
					fmt.Fprintf(w, `{"status": 1, "schedule": %s}`, tc.existing)
				case "/setSchedule":
					pushed = true
					require.NoError(t, r.ParseForm())
					var sent []map[string]any
					require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("scheduleJSON")), &sent))

					got := make([]string, 0, len(sent))
					for _, e := range sent {
						id, _ := e["localId"].(string)
						got = append(got, id)
					}
					assert.Equal(t, tc.wantOrder, got, "the pushed schedule should be merged in chronological order")

					fmt.Fprint(w, `{"status": 1, "new2id": {"new1": 9001}}`)
				default:
					t.Errorf("unexpected request to %s", r.URL.Path)
				}
			}))
			t.Cleanup(srv.Close)

			client, _ := testClient(t, srv)
			res, err := client.MergeAndPush(context.Background(), 42, tc.latest, tc.opts)
			if tc.wantErr {
				require.Error(t, err, "MergeAndPush should return an error")
				assert.ErrorIs(t, err, schedule.ErrValidation)
				assert.False(t, pushed, "an invalid merge should never reach the platform")
				return
			}
			require.NoError(t, err, "MergeAndPush should not return an error")
			assert.Equal(t, tc.wantPush, pushed)
			assert.Equal(t, map[string]int{"new1": 9001}, res.New2ID)
		})
	}
}

func TestSetInteractions(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/setInteractions", r.URL.Path)
		require.NoError(t, r.ParseForm())

		var sent []any
		require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("interactionsJSON")), &sent), "interactionsJSON should be a JSON array")
		assert.Len(t, sent, 1)

		fmt.Fprint(w, `{"status": 1}`)
	}))
	t.Cleanup(srv.Close)

	client, _ := testClient(t, srv)

	_, err := client.SetInteractions(context.Background(), 42, nil)
	require.Error(t, err, "SetInteractions should reject an empty upload")
	assert.ErrorIs(t, err, schedule.ErrValidation)

	_, err = client.SetInteractions(context.Background(), 42, []any{map[string]any{"itemId": "root1"}})
	require.NoError(t, err, "SetInteractions should not return an error")
}

func entryFor(localID, start, end string) schedule.Entry {
	return schedule.Entry{ItemID: "survey1", LocalID: localID, StartTime: start, EndTime: end}
}
