package flatten

// FlattenObject flattens a nested object into a single row using dot notation
// for nested objects. Arrays and any other composites collapse into JSON cells.
//
// Flattening an already-flat object is the identity on its keys: the result
// is one row whose columns are exactly the top-level keys.
func FlattenObject(obj map[string]any) Row {
	row := make(Row, len(obj))
	flattenInto(obj, "", row)
	return row
}

func flattenInto(obj map[string]any, prefix string, row Row) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if KindOf(v) == Object {
			flattenInto(v.(map[string]any), key, row)
			continue
		}
		row[key] = Cell(v)
	}
}

// Objects flattens a list of records into a table, one row per record.
// Used for schedule entries and client rows.
func Objects(records []map[string]any) Table {
	var t Table
	for _, rec := range records {
		t.Append(FlattenObject(rec))
	}
	return t
}
