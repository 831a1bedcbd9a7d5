package queryir

import "github.com/roach88/ionc/internal/ir"

// Log tables.
const (
	TableRuns    = "runs"
	TableReplays = "replays"
)

// Query is a relational query over the log tables.
//
// Query types:
//   - Select: access to one table with filtering and a column list
//   - Join: inner join of two queries
type Query interface {
	queryNode()
}

// Predicate is a row filter.
//
// Predicate types:
//   - Equals: column = literal
//   - ParamEquals: column = named parameter supplied at compile time
//   - ColumnEquals: column = column (join conditions)
//   - And: all predicates hold
type Predicate interface {
	predicateNode()
}

// Select reads Columns from one table, keeping rows that satisfy Filter.
//
//	Select{
//	  From:    "runs",
//	  Columns: []string{"id", "seq"},
//	  Filter:  Equals{Field: "status", Value: ir.Str("error")},
//	}
//
// compiles to
//
//	SELECT id, seq FROM runs WHERE status = ? ORDER BY seq ASC, id COLLATE BINARY ASC
type Select struct {
	From    string    // TableRuns or TableReplays
	Columns []string  // selected columns, in order
	Filter  Predicate // nil keeps every row
}

func (Select) queryNode() {}

// Join combines two Selects. The result carries the left side's columns;
// rows are the distinct left rows with at least one right row satisfying
// On. Inside a Join, fields may be qualified ("replays.matched").
type Join struct {
	Left  Query
	Right Query
	On    Predicate // required
}

func (Join) queryNode() {}

// Equals compares a column to a literal.
type Equals struct {
	Field string
	Value ir.Value // Str, Int or Bool
}

func (Equals) predicateNode() {}

// ParamEquals compares a column to a parameter bound by name when the
// query is compiled. Queries built once can then be reused with different
// values.
type ParamEquals struct {
	Field string
	Param string
}

func (ParamEquals) predicateNode() {}

// ColumnEquals compares two columns, typically one from each side of a
// Join.
type ColumnEquals struct {
	Left  string
	Right string
}

func (ColumnEquals) predicateNode() {}

// And is a conjunction. An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}
