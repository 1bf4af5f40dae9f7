// Package flatten converts nested m-Path JSON payloads into row-oriented
// tables suitable for CSV export.
//
// Traversal is driven by a small variant model: every decoded JSON value is
// a scalar, an object, or an array. Objects are expanded into dotted or
// prefixed columns, arrays are either exploded into rows (answers, tree
// children) or serialized into a single cell, and scalars become cells.
package flatten

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind discriminates the three JSON shapes traversal has to handle.
type Kind int

const (
	// Scalar is a string, number, bool or null leaf.
	Scalar Kind = iota
	// Object is a JSON object.
	Object
	// Array is a JSON array.
	Array
)

// KindOf classifies a decoded JSON value.
func KindOf(v any) Kind {
	switch v.(type) {
	case map[string]any:
		return Object
	case []any:
		return Array
	default:
		return Scalar
	}
}

// Cell collapses v into a single cell value: scalars pass through, objects
// and arrays are serialized into compact JSON strings.
func Cell(v any) any {
	switch KindOf(v) {
	case Object, Array:
		b, err := json.Marshal(v)
		if err != nil {
			// Decoded JSON always re-marshals; guard anyway.
			return ""
		}
		return string(b)
	default:
		return v
	}
}

// CellString renders a cell value for CSV output.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		if KindOf(x) == Scalar {
			return fmt.Sprint(x)
		}
		return Cell(x).(string)
	}
}
