package flatten_test

import (
	"testing"

	"github.com/mpath-tools/mpathkit/internal/flatten"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionRoots(t *testing.T) {
	t.Parallel()

	roots := decodeList(t, `[
		{
			"typeQuestion": "container",
			"fullQuestion": "Morning survey",
			"shortQuestion": "morning",
			"items": [
				{
					"typeQuestion": "container",
					"shortQuestion": "sleep",
					"items": [
						{"typeQuestion": "sliderQuestion", "shortQuestion": "quality", "options": {"min": 0, "max": 10}}
					]
				},
				{"typeQuestion": "openQuestion", "shortQuestion": "notes"}
			]
		},
		{"typeQuestion": "yesnoQuestion", "itemId": "standalone"}
	]`)

	tables := flatten.InteractionRoots(roots)
	require.Len(t, tables, 2, "each root should yield its own table")

	morning := tables[0]
	assert.Equal(t, "Morning survey", morning.Title, "the full question should title the root")
	require.Equal(t, 2, morning.Table.Len(), "containers should emit no rows of their own")

	assert.Equal(t, flatten.PathColumn, morning.Table.Columns[0], "the path column should lead")
	assert.Equal(t, "morning/sleep/quality", morning.Table.Rows[0][flatten.PathColumn])
	assert.Equal(t, "morning/notes", morning.Table.Rows[1][flatten.PathColumn])

	// Nested option objects expand into dotted columns.
	assert.Equal(t, float64(10), morning.Table.Rows[0]["options.max"])

	standalone := tables[1]
	assert.Equal(t, "standalone", standalone.Title, "the item ID should title an unnamed root")
	require.Equal(t, 1, standalone.Table.Len(), "a question root should emit one row")
	assert.Equal(t, "standalone", standalone.Table.Rows[0][flatten.PathColumn])
}

func TestInteractionRootsFallbackTitle(t *testing.T) {
	t.Parallel()

	roots := decodeList(t, `[{"typeQuestion": "openQuestion"}]`)

	tables := flatten.InteractionRoots(roots)
	require.Len(t, tables, 1)
	assert.Equal(t, "root1", tables[0].Title, "a root without names should get a positional title")
}

func TestInteractionRootsEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, flatten.InteractionRoots(nil), "no roots should yield no tables")
}
