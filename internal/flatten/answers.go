package flatten

// DataRows flattens raw m-Path data rows into a table, one row per data point.
//
// Top-level scalars stay as-is, fields of the nested "data" object get a
// data_ prefix, and each answer is expanded into columns prefixed by the
// answer's short question. Container answers recurse, extending the prefix
// with each child's short question.
func DataRows(rows []map[string]any) Table {
	var t Table
	for _, entry := range rows {
		row := make(Row)

		for k, v := range entry {
			if k == "data" {
				continue
			}
			row[k] = Cell(v)
		}

		inner, _ := entry["data"].(map[string]any)
		for k, v := range inner {
			if k == "answers" {
				continue
			}
			row["data_"+k] = Cell(v)
		}

		answers, _ := inner["answers"].([]any)
		for _, a := range answers {
			ans, ok := a.(map[string]any)
			if !ok {
				continue
			}
			flattenAnswer(ans, row, shortQuestion(ans, "Q")+"_")
		}

		t.Append(row)
	}
	return t
}

// flattenAnswer expands one answer block into row under prefix.
func flattenAnswer(ans map[string]any, row Row, prefix string) {
	for k, v := range ans {
		if k == "basicQuestion" || k == "cAnswer" {
			continue
		}
		row[prefix+k] = Cell(v)
	}

	if bq, ok := ans["basicQuestion"].(map[string]any); ok {
		for k, v := range bq {
			row[prefix+"basicQuestion_"+k] = Cell(v)
		}
	}

	// The first populated answer slot carries the actual value.
	for _, key := range []string{"iAnswer", "dAnswer", "sAnswer"} {
		if vals, ok := ans[key].([]any); ok && len(vals) > 0 {
			row[prefix+"value"] = vals[0]
			break
		}
	}

	if ans["typeAnswer"] == "containerAnswer" {
		children, _ := ans["cAnswer"].([]any)
		for _, c := range children {
			child, ok := c.(map[string]any)
			if !ok {
				continue
			}
			flattenAnswer(child, row, prefix+shortQuestion(child, "container")+"_")
		}
	}
}

// shortQuestion returns the answer's basicQuestion.shortQuestion, or fallback.
func shortQuestion(ans map[string]any, fallback string) string {
	if bq, ok := ans["basicQuestion"].(map[string]any); ok {
		if sq, ok := bq["shortQuestion"].(string); ok && sq != "" {
			return sq
		}
	}
	return fallback
}
