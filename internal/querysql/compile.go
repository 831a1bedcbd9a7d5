// Package querysql compiles queryir queries to parameterized SQLite SQL.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/ionc/internal/ir"
	"github.com/roach88/ionc/internal/queryir"
)

// SQLCompiler compiles queries to SQL with ? placeholders.
//
// Every query is validated first and carries an ORDER BY on (seq, id), so
// results come back in log order. Values are never interpolated.
type SQLCompiler struct {
	// Params holds the values for ParamEquals predicates.
	Params map[string]any
}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{Params: make(map[string]any)}
}

// Bind sets a named parameter and returns the compiler.
func (c *SQLCompiler) Bind(name string, value any) *SQLCompiler {
	c.Params[name] = value
	return c
}

// Compile converts a query to parameterized SQL.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if res := queryir.Validate(q); !res.Valid {
		return "", nil, fmt.Errorf("invalid query: %s", strings.Join(res.Errors, "; "))
	}
	if sel, ok := queryir.AsSelect(q); ok {
		return c.compileSelect(sel)
	}
	switch query := q.(type) {
	case queryir.Join:
		return c.compileJoin(query)
	case *queryir.Join:
		return c.compileJoin(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	var where string
	var params []any
	if q.Filter != nil {
		sql, p, err := c.compilePredicate(q.Filter, "")
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		where = " WHERE " + sql
		params = p
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		strings.Join(q.Columns, ", "),
		q.From,
		where,
		stableOrderKey(""))
	return sql, params, nil
}

// compileJoin emits a semi-join: distinct left rows with a matching right
// row. Parameters follow clause order: ON first, then the left and right
// filters.
func (c *SQLCompiler) compileJoin(j queryir.Join) (string, []any, error) {
	left, _ := queryir.AsSelect(j.Left)
	right, _ := queryir.AsSelect(j.Right)

	cols := make([]string, len(left.Columns))
	for i, col := range left.Columns {
		cols[i] = left.From + "." + col
	}

	onSQL, params, err := c.compilePredicate(j.On, "")
	if err != nil {
		return "", nil, fmt.Errorf("compile join on: %w", err)
	}

	var conds []string
	for _, side := range []queryir.Select{left, right} {
		if side.Filter == nil {
			continue
		}
		sql, p, err := c.compilePredicate(side.Filter, side.From)
		if err != nil {
			return "", nil, fmt.Errorf("compile %s filter: %w", side.From, err)
		}
		conds = append(conds, sql)
		params = append(params, p...)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	sql := fmt.Sprintf("SELECT DISTINCT %s FROM %s INNER JOIN %s ON %s%s ORDER BY %s",
		strings.Join(cols, ", "),
		left.From,
		right.From,
		onSQL,
		where,
		stableOrderKey(left.From))
	return sql, params, nil
}

// stableOrderKey orders by log position with a binary-collated tiebreak.
func stableOrderKey(table string) string {
	prefix := ""
	if table != "" {
		prefix = table + "."
	}
	return prefix + "seq ASC, " + prefix + "id COLLATE BINARY ASC"
}

// compilePredicate compiles a predicate to a WHERE fragment. Unqualified
// fields are prefixed with table when it is non-empty.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate, table string) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case queryir.Equals:
		return c.compileEquals(pred, table)
	case *queryir.Equals:
		return c.compileEquals(*pred, table)
	case queryir.ParamEquals:
		return c.compileParamEquals(pred, table)
	case *queryir.ParamEquals:
		return c.compileParamEquals(*pred, table)
	case queryir.ColumnEquals:
		return qualify(pred.Left, table) + " = " + qualify(pred.Right, table), nil, nil
	case *queryir.ColumnEquals:
		return qualify(pred.Left, table) + " = " + qualify(pred.Right, table), nil, nil
	case queryir.And:
		return c.compileAnd(pred, table)
	case *queryir.And:
		return c.compileAnd(*pred, table)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileEquals(eq queryir.Equals, table string) (string, []any, error) {
	param, err := valueToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("field %s: %w", eq.Field, err)
	}
	return qualify(eq.Field, table) + " = ?", []any{param}, nil
}

func (c *SQLCompiler) compileParamEquals(pe queryir.ParamEquals, table string) (string, []any, error) {
	val, ok := c.Params[pe.Param]
	if !ok {
		return "", nil, fmt.Errorf("parameter %q is not bound", pe.Param)
	}
	return qualify(pe.Field, table) + " = ?", []any{val}, nil
}

func (c *SQLCompiler) compileAnd(and queryir.And, table string) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}
	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, pred := range and.Predicates {
		sql, p, err := c.compilePredicate(pred, table)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, p...)
	}
	return strings.Join(parts, " AND "), params, nil
}

func qualify(field, table string) string {
	if table == "" || strings.Contains(field, ".") {
		return field
	}
	return table + "." + field
}

// valueToParam converts a scalar ir.Value to a driver value.
func valueToParam(v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.Str:
		return string(val), nil
	case ir.Int:
		return int64(val), nil
	case ir.Bool:
		return bool(val), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
