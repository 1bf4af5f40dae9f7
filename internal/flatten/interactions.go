package flatten

import (
	"fmt"
	"strings"
)

// PathColumn is the leading column of interaction tables, holding the
// slash-joined ancestry of each question node.
const PathColumn = "path"

// RootTable is the flattened form of one interaction root container.
// Roots are logically independent, so each produces its own table.
type RootTable struct {
	Title string
	Table Table
}

// InteractionRoots flattens an interaction forest, one table per root.
//
// Container nodes recurse into their items and emit no row of their own;
// question leaves emit one row each, carrying the ancestry path and their
// own fields, with nested objects expanded as key.subkey columns.
func InteractionRoots(roots []map[string]any) []RootTable {
	tables := make([]RootTable, 0, len(roots))
	for i, root := range roots {
		rt := RootTable{Title: rootTitle(root, i+1)}
		walkInteraction(root, nil, &rt.Table)
		tables = append(tables, rt)
	}
	return tables
}

func walkInteraction(item map[string]any, path []string, t *Table) {
	name := nodeName(item)
	cur := path
	if name != "" {
		cur = append(append([]string{}, path...), name)
	}

	if item["typeQuestion"] == "container" {
		children, _ := item["items"].([]any)
		for _, c := range children {
			child, ok := c.(map[string]any)
			if !ok {
				continue
			}
			walkInteraction(child, cur, t)
		}
		return
	}

	row := Row{PathColumn: strings.Join(cur, "/")}
	for k, v := range item {
		if k == "items" {
			continue
		}
		if obj, ok := v.(map[string]any); ok {
			for sk, sv := range obj {
				row[k+"."+sk] = Cell(sv)
			}
			continue
		}
		row[k] = Cell(v)
	}
	t.Append(row, PathColumn)
}

func nodeName(item map[string]any) string {
	if sq, ok := item["shortQuestion"].(string); ok && sq != "" {
		return sq
	}
	if id, ok := item["itemId"].(string); ok {
		return id
	}
	return ""
}

func rootTitle(root map[string]any, idx int) string {
	for _, key := range []string{"fullQuestion", "shortQuestion", "itemId"} {
		if s, ok := root[key].(string); ok && s != "" {
			return s
		}
	}
	return fmt.Sprintf("root%d", idx)
}
