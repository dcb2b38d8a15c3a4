// Package predicate is a small boolean expression tree over logical field names.
// The same tree renders to a SQL WHERE fragment for the relational store and to a
// bool query for the search index, so both backends filter on identical terms.
package predicate

// Expr is a node of the expression tree.
type Expr interface {
	isExpr()
}

// Op is a comparison operator.
type Op string

const (
	OpEq  Op = "="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpLt  Op = "<"
	OpLte Op = "<="
)

type constant bool

type and struct{ terms []Expr }

type or struct{ terms []Expr }

type not struct{ term Expr }

type compare struct {
	field string
	op    Op
	value any
}

type in struct {
	field  string
	values []any
}

type isNull struct{ field string }

type match struct {
	text   string
	fields []string
}

func (constant) isExpr() {}
func (and) isExpr()      {}
func (or) isExpr()       {}
func (not) isExpr()      {}
func (compare) isExpr()  {}
func (in) isExpr()       {}
func (isNull) isExpr()   {}
func (match) isExpr()    {}

var (
	True  Expr = constant(true)
	False Expr = constant(false)
)

// And joins terms. Nested conjunctions are flattened, True terms dropped and a
// False term collapses the whole conjunction.
func And(terms ...Expr) Expr {
	out := make([]Expr, 0, len(terms))
	for _, t := range terms {
		switch v := t.(type) {
		case nil:
			continue
		case constant:
			if !v {
				return False
			}
			continue
		case and:
			out = append(out, v.terms...)
		default:
			out = append(out, t)
		}
	}
	switch len(out) {
	case 0:
		return True
	case 1:
		return out[0]
	}
	return and{terms: out}
}

// Or joins terms. An empty disjunction is False.
func Or(terms ...Expr) Expr {
	out := make([]Expr, 0, len(terms))
	for _, t := range terms {
		switch v := t.(type) {
		case nil:
			continue
		case constant:
			if v {
				return True
			}
			continue
		case or:
			out = append(out, v.terms...)
		default:
			out = append(out, t)
		}
	}
	switch len(out) {
	case 0:
		return False
	case 1:
		return out[0]
	}
	return or{terms: out}
}

func Not(term Expr) Expr {
	switch v := term.(type) {
	case constant:
		return constant(!v)
	case not:
		return v.term
	}
	return not{term: term}
}

func Eq(field string, value any) Expr  { return compare{field: field, op: OpEq, value: value} }
func Gt(field string, value any) Expr  { return compare{field: field, op: OpGt, value: value} }
func Gte(field string, value any) Expr { return compare{field: field, op: OpGte, value: value} }
func Lt(field string, value any) Expr  { return compare{field: field, op: OpLt, value: value} }
func Lte(field string, value any) Expr { return compare{field: field, op: OpLte, value: value} }

// In is a membership test. An empty value list matches nothing.
func In[T any](field string, values []T) Expr {
	if len(values) == 0 {
		return False
	}
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return in{field: field, values: vs}
}

func IsNull(field string) Expr  { return isNull{field: field} }
func NotNull(field string) Expr { return Not(isNull{field: field}) }

// NonZero matches when the field is strictly positive or strictly negative.
func NonZero(field string) Expr {
	return Or(Gt(field, 0), Lt(field, 0))
}

// Match is a case-insensitive free-text match against any of fields.
func Match(text string, fields ...string) Expr {
	if text == "" {
		return True
	}
	if len(fields) == 0 {
		return False
	}
	return match{text: text, fields: fields}
}
