// Package formatting renders rows and schemas for the terminal UI.
package formatting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rivo/tview"

	"github.com/robert-malhotra/go-postgrest-client/internal/wire"
	"github.com/robert-malhotra/go-postgrest-client/pkg/filter"
	"github.com/robert-malhotra/go-postgrest-client/pkg/model"
)

// titleColumns are tried in order when naming a row in a list.
var titleColumns = []string{"name", "title", "id"}

const maxValueWidth = 80

// RowMap returns the columns of a row, flattening records so references show
// their key.
func RowMap(row any) map[string]any {
	switch r := row.(type) {
	case *model.Record:
		if r == nil {
			return nil
		}
		return r.ShallowMap()
	case map[string]any:
		return r
	}
	return nil
}

// RowTitle names a row for list display: the first of name, title or id
// that is present, else its position.
func RowTitle(row map[string]any, index int) string {
	for _, col := range titleColumns {
		if v, ok := row[col]; ok && v != nil {
			return fmt.Sprintf("%d. %s", index+1, FormatValue(v))
		}
	}
	return fmt.Sprintf("Row %d", index+1)
}

// FormatRowSummary renders one line per column in key order.
func FormatRowSummary(row map[string]any) string {
	if len(row) == 0 {
		return "[gray]empty row[white]"
	}
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "[yellow]%s:[white] ", tview.Escape(k))
		if row[k] == nil {
			b.WriteString("[gray]null[white]\n")
			continue
		}
		b.WriteString(tview.Escape(FormatValue(row[k])))
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatValue renders a column value on a single line.
func FormatValue(v any) string {
	var s string
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		s = val
	case json.Number:
		s = val.String()
	case bool:
		s = strconv.FormatBool(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	case float64:
		s = strconv.FormatFloat(val, 'g', -1, 64)
	case uuid.UUID:
		s = filter.FormatUUID(val)
	case time.Time:
		s = filter.FormatTimestamp(val)
	case *model.Record:
		return FormatValue(val.ShallowMap())
	default:
		data, err := wire.Marshal(val)
		if err != nil {
			s = fmt.Sprint(val)
		} else {
			s = string(data)
		}
	}
	if len(s) > maxValueWidth {
		s = s[:maxValueWidth-1] + "…"
	}
	return s
}

// FormatSchema lists the fields of schema with their types.
func FormatSchema(schema *model.Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[green]%s[white]\n\n", tview.Escape(schema.EntityType()))
	for _, name := range schema.FieldNames() {
		ft, _ := schema.FieldType(name)
		fmt.Fprintf(&b, "[yellow]%s[white] %s\n", tview.Escape(name), tview.Escape(ft.String()))
	}
	return b.String()
}

// FormatEntityList lists the declared entity types.
func FormatEntityList(names []string) string {
	if len(names) == 0 {
		return "[gray]No entities declared. Rows are shown as returned.[white]"
	}
	var b strings.Builder
	b.WriteString("[green]Declared entities[white]\n\n")
	for _, name := range names {
		b.WriteString(tview.Escape(name))
		b.WriteByte('\n')
	}
	return b.String()
}

// IndentJSON encodes v the way it travels on the wire, indented.
func IndentJSON(v any) ([]byte, error) {
	data, err := wire.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
