package synthesis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mrsinham/dicomschema/internal/schema"
)

// SplitConstantFields buckets field names by whether their value is the
// same across every row. Constant fields map to that single value; the
// rest are returned in input order.
func SplitConstantFields(rows []Row, order []string) (map[string]any, []string) {
	constants := map[string]any{}
	var varying []string

	if len(rows) == 0 {
		return constants, varying
	}

	for _, name := range order {
		first := rows[0][name]
		constant := true
		for _, row := range rows[1:] {
			if !schema.ValuesEqual(first, row[name]) {
				constant = false
				break
			}
		}
		if constant {
			constants[name] = first
		} else {
			varying = append(varying, name)
		}
	}
	return constants, varying
}

// CodeBody renders the current rows as an editable code body. Constant
// fields appear once; varying fields carry one value per row. The body's
// final expression evaluates to a mapping of field name to a value array,
// one element per row, which is what ApplyCode expects back.
func CodeBody(rows []Row, order []string) string {
	constants, varying := SplitConstantFields(rows, order)

	var b strings.Builder
	b.WriteString("// Edit the test values below.\n")
	b.WriteString("// Constant fields hold a single value used for every row;\n")
	b.WriteString("// per-row fields hold one value per row.\n\n")
	fmt.Fprintf(&b, "var rowCount = %d;\n\n", len(rows))

	b.WriteString("var constant = {\n")
	for _, name := range order {
		v, ok := constants[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %s: %s,\n", jsonLiteral(name), jsonLiteral(v))
	}
	b.WriteString("};\n\n")

	b.WriteString("var perRow = {\n")
	for _, name := range varying {
		column := make([]any, len(rows))
		for i, row := range rows {
			column[i] = row[name]
		}
		fmt.Fprintf(&b, "  %s: %s,\n", jsonLiteral(name), jsonLiteral(column))
	}
	b.WriteString("};\n\n")

	b.WriteString(`(function () {
  var out = {};
  Object.keys(constant).forEach(function (name) {
    out[name] = [];
    for (var i = 0; i < rowCount; i++) { out[name].push(constant[name]); }
  });
  Object.keys(perRow).forEach(function (name) { out[name] = perRow[name]; });
  return out;
})();
`)
	return b.String()
}

// jsonLiteral renders v as a JSON literal, which is also a valid literal
// in the sandbox language.
func jsonLiteral(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

// rowsFromCodeResult validates a sandbox result and converts it back into
// rows. The result must be a mapping of field name to array with every
// array the same length; any violation is an ExecutionError and no rows
// are produced (no truncation, no padding).
func rowsFromCodeResult(result any) ([]Row, error) {
	mapping, ok := result.(map[string]any)
	if !ok {
		return nil, &ExecutionError{Reason: fmt.Sprintf("result must be a mapping of field name to value array, got %T", result)}
	}
	if len(mapping) == 0 {
		return nil, &ExecutionError{Reason: "result mapping is empty"}
	}

	length := -1
	var lengthField string
	columns := map[string][]any{}
	for name, v := range mapping {
		column, ok := v.([]any)
		if !ok {
			return nil, &ExecutionError{Reason: fmt.Sprintf("field %q must map to an array, got %T", name, v)}
		}
		if length == -1 {
			length, lengthField = len(column), name
		} else if len(column) != length {
			return nil, &ExecutionError{Reason: fmt.Sprintf(
				"length mismatch: field %q has %d values but field %q has %d", name, len(column), lengthField, length)}
		}
		columns[name] = column
	}
	if length == 0 {
		return nil, &ExecutionError{Reason: "field arrays are empty; at least one row is required"}
	}

	rows := make([]Row, length)
	for i := range rows {
		row := Row{}
		for name, column := range columns {
			row[name] = column[i]
		}
		rows[i] = row
	}
	return rows, nil
}
