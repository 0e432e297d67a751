package formatting

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-postgrest-client/pkg/model"
)

func TestRowTitle(t *testing.T) {
	assert.Equal(t, "1. Tom", RowTitle(map[string]any{"id": json.Number("4"), "name": "Tom"}, 0))
	assert.Equal(t, "3. 4", RowTitle(map[string]any{"id": json.Number("4")}, 2))
	assert.Equal(t, "Row 2", RowTitle(map[string]any{"name": nil}, 1))
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "null"},
		{"string", "Tom", "Tom"},
		{"number", json.Number("1.5"), "1.5"},
		{"bool", true, "true"},
		{"int", int64(7), "7"},
		{"float", 2.25, "2.25"},
		{"uuid", uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), "6ba7b8109dad11d180b400c04fd430c8"},
		{"timestamp", ts, "2024-05-01T12:00:00+00:00"},
		{"object", map[string]any{"a": []any{1, "x"}}, `{"a":[1,"x"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.value))
		})
	}

	long := FormatValue(strings.Repeat("x", 200))
	assert.Len(t, []rune(long), maxValueWidth)
}

func TestFormatRowSummary(t *testing.T) {
	summary := FormatRowSummary(map[string]any{"name": "[red]Tom", "age": json.Number("3"), "owner": nil})
	lines := strings.Split(strings.TrimSpace(summary), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "[yellow]age:"))
	assert.Contains(t, lines[1], "[red[]Tom")
	assert.Contains(t, lines[2], "null")

	assert.Contains(t, FormatRowSummary(nil), "empty row")
}

func TestRowMapFlattensRecords(t *testing.T) {
	owners := model.MustNewSchema("owners", model.Field{Name: "id", Type: model.Primitive{Kind: model.KindInt}})
	pets := model.MustNewSchema("pets",
		model.Field{Name: "name", Type: model.Primitive{Kind: model.KindString}},
		model.Field{Name: "owner", Type: model.Reference{Schema: owners, Field: "id"}},
	)
	rec, err := model.FromJSON(pets, nil, map[string]any{"name": "Tom", "owner": json.Number("9")})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"name": "Tom", "owner": int64(9)}, RowMap(rec))
	assert.Equal(t, map[string]any{"a": 1}, RowMap(map[string]any{"a": 1}))
	assert.Nil(t, RowMap("nope"))

	schema := FormatSchema(pets)
	assert.Contains(t, schema, "[yellow]name[white] string")
	assert.Contains(t, FormatEntityList(nil), "No entities")
}

func TestIndentJSON(t *testing.T) {
	data, err := IndentJSON([]any{map[string]any{"id": uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")}})
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"id\": \"6ba7b8109dad11d180b400c04fd430c8\"\n  }\n]", string(data))
}
