// Package queryir describes queries over the conversion log as data.
//
// The store answers "which runs" questions (runs of a circuit, failed runs,
// runs whose replay diverged) by building a query value and handing it to a
// backend compiler (see package querysql) instead of assembling SQL text by
// hand:
//
//	[RunFilter] → [Query IR] → [querysql] → parameterized SQL
//
// FRAGMENT:
//
// The supported fragment is deliberately small:
//   - Select(from, columns, filter) over the runs or replays table
//   - Join(left, right, on), inner joins only
//   - Predicates: Equals, ParamEquals, ColumnEquals, And
//   - Explicit column lists (no SELECT *)
//
// Literal values are ir.Value scalars (Str, Int, Bool). Column names are
// checked against the log schema by Validate, so a query that validates
// never interpolates untrusted text into SQL.
//
// SEALED INTERFACES:
//
// Query and Predicate use the marker method pattern; only this package
// implements them, so backends can switch exhaustively:
//
//	switch q := query.(type) {
//	case *Select:
//	case *Join:
//	}
package queryir
