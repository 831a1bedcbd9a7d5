package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ionc/internal/ir"
)

func failedRuns() Select {
	return Select{
		From:    TableRuns,
		Columns: []string{"id", "seq"},
		Filter:  Equals{Field: "status", Value: ir.Str("error")},
	}
}

func TestValidate_Select(t *testing.T) {
	result := Validate(failedRuns())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)

	sel := failedRuns()
	result = Validate(&sel)
	assert.True(t, result.Valid, "pointer forms are accepted")
}

func TestValidate_SelectErrors(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{
			name:  "nil query",
			query: nil,
			want:  "nil query",
		},
		{
			name:  "unknown table",
			query: Select{From: "events", Columns: []string{"id"}},
			want:  `unknown table "events"`,
		},
		{
			name:  "no columns",
			query: Select{From: TableRuns},
			want:  "explicit columns required",
		},
		{
			name:  "unknown column",
			query: Select{From: TableRuns, Columns: []string{"id; DROP TABLE runs"}},
			want:  "unknown column",
		},
		{
			name: "nil value",
			query: Select{From: TableRuns, Columns: []string{"id"},
				Filter: Equals{Field: "status"}},
			want: `field "status" compared to nil`,
		},
		{
			name: "list value",
			query: Select{From: TableRuns, Columns: []string{"id"},
				Filter: Equals{Field: "status", Value: ir.List{ir.Str("ok")}}},
			want: "non-scalar",
		},
		{
			name: "unnamed parameter",
			query: Select{From: TableRuns, Columns: []string{"id"},
				Filter: &ParamEquals{Field: "circuit_name"}},
			want: "unnamed parameter",
		},
		{
			name: "nested unknown column",
			query: Select{From: TableReplays, Columns: []string{"id"},
				Filter: And{Predicates: []Predicate{
					Equals{Field: "matched", Value: ir.Bool(false)},
					Equals{Field: "circuit_name", Value: ir.Str("bell")},
				}}},
			want: `unknown column "circuit_name"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.query)
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, result.Errors[0], tt.want)
		})
	}
}

func TestValidate_Join(t *testing.T) {
	join := Join{
		Left:  Select{From: TableRuns, Columns: []string{"id"}},
		Right: Select{From: TableReplays, Filter: Equals{Field: "matched", Value: ir.Bool(false)}},
		On:    ColumnEquals{Left: "runs.id", Right: "replays.run_id"},
	}
	result := Validate(join)
	assert.True(t, result.Valid, "%v", result.Errors)
}

func TestValidate_JoinErrors(t *testing.T) {
	runs := Select{From: TableRuns, Columns: []string{"id"}}
	replays := Select{From: TableReplays}

	tests := []struct {
		name string
		join Join
		want string
	}{
		{"missing on", Join{Left: runs, Right: replays}, "requires an on condition"},
		{"self join", Join{Left: runs, Right: runs, On: ColumnEquals{Left: "runs.id", Right: "runs.id"}}, "self join"},
		{"nested join", Join{Left: Join{}, Right: replays}, "join sides must be selects"},
		{"unqualified", Join{Left: runs, Right: replays, On: ColumnEquals{Left: "id", Right: "replays.run_id"}}, "must be qualified"},
		{"outside table", Join{Left: runs, Right: replays, On: ColumnEquals{Left: "runs.id", Right: "events.run_id"}}, "outside the query"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(&tt.join)
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, result.Errors[0], tt.want)
		})
	}
}

func TestHasColumn(t *testing.T) {
	assert.True(t, HasColumn(TableRuns, "circuit_name"))
	assert.True(t, HasColumn(TableReplays, "matched"))
	assert.False(t, HasColumn(TableReplays, "circuit_name"))
	assert.False(t, HasColumn("events", "id"))
}

func TestAsSelect(t *testing.T) {
	sel := failedRuns()
	got, ok := AsSelect(&sel)
	require.True(t, ok)
	assert.Equal(t, TableRuns, got.From)

	_, ok = AsSelect((*Select)(nil))
	assert.False(t, ok)
	_, ok = AsSelect(Join{})
	assert.False(t, ok)
}
