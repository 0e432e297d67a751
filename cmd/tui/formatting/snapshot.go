package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/robert-malhotra/go-postgrest-client/pkg/model"
)

// RowDocument renders rows[index] as indented JSON, or the whole result when
// index is negative. Records are written in their wire form: references as
// their key, UUIDs as hex and timestamps in ISO-8601.
func RowDocument(rows []any, index int) ([]byte, error) {
	if index < 0 {
		return IndentJSON(rows)
	}
	if index >= len(rows) {
		return nil, fmt.Errorf("row %d out of range (%d rows)", index+1, len(rows))
	}
	return IndentJSON(rows[index])
}

// RowHeader describes what a row view shows: the entity, the position of the
// row in the result and the declared schema, if any.
func RowHeader(entity string, schema *model.Schema, index, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[green]%s[white]  ", tview.Escape(entity))
	if index < 0 {
		fmt.Fprintf(&b, "all %d rows\n", total)
	} else {
		fmt.Fprintf(&b, "row %d of %d\n", index+1, total)
	}

	if schema == nil {
		b.WriteString("[gray]not declared in the profile, shown as returned[white]")
		return b.String()
	}
	fields := make([]string, 0, len(schema.FieldNames()))
	for _, name := range schema.FieldNames() {
		ft, _ := schema.FieldType(name)
		fields = append(fields, "[yellow]"+tview.Escape(name)+"[white] "+tview.Escape(ft.String()))
	}
	b.WriteString(strings.Join(fields, "  "))
	return b.String()
}

// SnapshotFilename names a saved row view after its entity and row number,
// e.g. "pets-row-3_20240102-150405.json", or "pets-rows_..." for a whole
// result.
func SnapshotFilename(entity string, index int, now time.Time) string {
	name := fileSafe(entity)
	if name == "" {
		name = "result"
	}
	if index < 0 {
		name += "-rows"
	} else {
		name += fmt.Sprintf("-row-%d", index+1)
	}
	return name + "_" + now.Format("20060102-150405") + ".json"
}

// fileSafe keeps ASCII letters, digits, '-' and '_', mapping anything else
// (schema dots, slashes) to '_'.
func fileSafe(s string) string {
	return strings.Trim(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s), "_")
}
