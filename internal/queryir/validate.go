package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/ionc/internal/ir"
)

// schema lists the queryable columns of each log table.
var schema = map[string][]string{
	TableRuns: {
		"id", "seq", "circuit_name", "input_hash", "input", "options", "status",
		"output_hash", "output", "error", "ops_in", "ops_out", "entanglers",
		"passed_through", "engine_version", "ir_version",
	},
	TableReplays: {"id", "run_id", "seq", "status", "output_hash", "matched"},
}

// ValidationResult lists the problems found in a query.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Validate checks that a query stays inside the supported fragment and
// only names tables and columns of the log schema.
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{errors: []string{}}
	v.validateQuery(query)
	return ValidationResult{
		Valid:  len(v.errors) == 0,
		Errors: v.errors,
	}
}

// HasColumn reports whether table has the named column.
func HasColumn(table, column string) bool {
	for _, c := range schema[table] {
		if c == column {
			return true
		}
	}
	return false
}

// AsSelect unwraps a Select given by value or pointer.
func AsSelect(q Query) (Select, bool) {
	switch s := q.(type) {
	case Select:
		return s, true
	case *Select:
		if s == nil {
			return Select{}, false
		}
		return *s, true
	default:
		return Select{}, false
	}
}

type validator struct {
	errors []string
}

func (v *validator) addError(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	if q == nil {
		v.addError("nil query")
		return
	}
	if sel, ok := AsSelect(q); ok {
		v.validateSelect(sel)
		return
	}
	switch query := q.(type) {
	case Join:
		v.validateJoin(query)
	case *Join:
		v.validateJoin(*query)
	default:
		v.addError("unknown query type %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if _, ok := schema[sel.From]; !ok {
		v.addError("unknown table %q", sel.From)
		return
	}
	if len(sel.Columns) == 0 {
		v.addError("select from %s: explicit columns required", sel.From)
	}
	for _, c := range sel.Columns {
		if !HasColumn(sel.From, c) {
			v.addError("select from %s: unknown column %q", sel.From, c)
		}
	}
	v.validatePredicate(sel.Filter, []string{sel.From})
}

func (v *validator) validateJoin(join Join) {
	left, lok := AsSelect(join.Left)
	right, rok := AsSelect(join.Right)
	if !lok || !rok {
		v.addError("join sides must be selects")
		return
	}
	if left.From == right.From {
		v.addError("self join on %s is not supported", left.From)
		return
	}
	v.validateSelect(left)
	if _, ok := schema[right.From]; !ok {
		v.addError("unknown table %q", right.From)
		return
	}
	v.validatePredicate(right.Filter, []string{right.From})

	if join.On == nil {
		v.addError("join requires an on condition")
		return
	}
	v.validatePredicate(join.On, []string{left.From, right.From})
}

func (v *validator) validatePredicate(p Predicate, scope []string) {
	if p == nil {
		return
	}
	switch pred := p.(type) {
	case Equals:
		v.validateEquals(pred, scope)
	case *Equals:
		v.validateEquals(*pred, scope)
	case ParamEquals:
		v.validateParamEquals(pred, scope)
	case *ParamEquals:
		v.validateParamEquals(*pred, scope)
	case ColumnEquals:
		v.checkField(pred.Left, scope)
		v.checkField(pred.Right, scope)
	case *ColumnEquals:
		v.checkField(pred.Left, scope)
		v.checkField(pred.Right, scope)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub, scope)
		}
	case *And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub, scope)
		}
	default:
		v.addError("unknown predicate type %T", p)
	}
}

func (v *validator) validateEquals(eq Equals, scope []string) {
	v.checkField(eq.Field, scope)
	switch eq.Value.(type) {
	case ir.Str, ir.Int, ir.Bool:
	case nil:
		v.addError("field %q compared to nil", eq.Field)
	default:
		v.addError("field %q compared to non-scalar %T", eq.Field, eq.Value)
	}
}

func (v *validator) validateParamEquals(pe ParamEquals, scope []string) {
	v.checkField(pe.Field, scope)
	if pe.Param == "" {
		v.addError("field %q compared to unnamed parameter", pe.Field)
	}
}

// checkField resolves a column name against the tables in scope.
// Qualified names ("runs.id") are required when more than one table is in
// scope.
func (v *validator) checkField(field string, scope []string) {
	table, column, qualified := strings.Cut(field, ".")
	if !qualified {
		if len(scope) != 1 {
			v.addError("field %q must be qualified in a join condition", field)
			return
		}
		table, column = scope[0], field
	}
	for _, t := range scope {
		if t == table {
			if !HasColumn(table, column) {
				v.addError("unknown column %q", field)
			}
			return
		}
	}
	v.addError("field %q refers to table %q outside the query", field, table)
}
