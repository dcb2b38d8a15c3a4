package predicate

import (
	"fmt"
	"strings"
	"time"
)

// Columns maps a logical field name to a backend column or document path.
type Columns interface {
	Column(field string) string
}

// ColumnMap resolves fields through a lookup table. Unknown fields containing
// "__" are treated as "<alias>__<column>" join references; anything else is
// returned unchanged.
type ColumnMap map[string]string

func (m ColumnMap) Column(field string) string {
	if c, ok := m[field]; ok {
		return c
	}
	if alias, col, ok := strings.Cut(field, "__"); ok {
		return alias + "." + col
	}
	return field
}

// Overlay resolves through each map in turn, falling back to the last one.
type Overlay []ColumnMap

func (o Overlay) Column(field string) string {
	for _, m := range o {
		if c, ok := m[field]; ok {
			return c
		}
	}
	if len(o) == 0 {
		return field
	}
	return o[len(o)-1].Column(field)
}

// SQL renders e as a WHERE fragment with "?" placeholders, ready for gorm's
// Where/Select. Slice arguments are expanded by gorm.
func SQL(e Expr, cols Columns) (string, []any) {
	var b strings.Builder
	var args []any
	writeSQL(&b, &args, e, cols)
	return b.String(), args
}

func writeSQL(b *strings.Builder, args *[]any, e Expr, cols Columns) {
	switch v := e.(type) {
	case constant:
		if v {
			b.WriteString("1 = 1")
		} else {
			b.WriteString("1 = 0")
		}
	case and:
		joinSQL(b, args, v.terms, " AND ", cols)
	case or:
		joinSQL(b, args, v.terms, " OR ", cols)
	case not:
		b.WriteString("NOT (")
		writeSQL(b, args, v.term, cols)
		b.WriteString(")")
	case compare:
		fmt.Fprintf(b, "%s %s ?", cols.Column(v.field), v.op)
		*args = append(*args, v.value)
	case in:
		fmt.Fprintf(b, "%s IN ?", cols.Column(v.field))
		*args = append(*args, v.values)
	case isNull:
		fmt.Fprintf(b, "%s IS NULL", cols.Column(v.field))
	case match:
		b.WriteString("(")
		for i, f := range v.fields {
			if i > 0 {
				b.WriteString(" OR ")
			}
			fmt.Fprintf(b, "LOWER(%s) LIKE ?", cols.Column(f))
			*args = append(*args, "%"+strings.ToLower(v.text)+"%")
		}
		b.WriteString(")")
	default:
		panic(fmt.Sprintf("predicate: unknown node %T", e))
	}
}

func joinSQL(b *strings.Builder, args *[]any, terms []Expr, sep string, cols Columns) {
	b.WriteString("(")
	for i, t := range terms {
		if i > 0 {
			b.WriteString(sep)
		}
		writeSQL(b, args, t, cols)
	}
	b.WriteString(")")
}

// Search renders e as an Elasticsearch query clause.
func Search(e Expr, cols Columns) map[string]any {
	switch v := e.(type) {
	case constant:
		if v {
			return map[string]any{"match_all": map[string]any{}}
		}
		return map[string]any{"bool": map[string]any{"must_not": []map[string]any{{"match_all": map[string]any{}}}}}
	case and:
		return map[string]any{"bool": map[string]any{"filter": searchTerms(v.terms, cols)}}
	case or:
		return map[string]any{"bool": map[string]any{"should": searchTerms(v.terms, cols), "minimum_should_match": 1}}
	case not:
		return map[string]any{"bool": map[string]any{"must_not": []map[string]any{Search(v.term, cols)}}}
	case compare:
		field := cols.Column(v.field)
		if v.op == OpEq {
			return map[string]any{"term": map[string]any{field: searchValue(v.value)}}
		}
		return map[string]any{"range": map[string]any{field: map[string]any{rangeOp(v.op): searchValue(v.value)}}}
	case in:
		values := make([]any, len(v.values))
		for i, x := range v.values {
			values[i] = searchValue(x)
		}
		return map[string]any{"terms": map[string]any{cols.Column(v.field): values}}
	case isNull:
		return map[string]any{"bool": map[string]any{"must_not": []map[string]any{{"exists": map[string]any{"field": cols.Column(v.field)}}}}}
	case match:
		fields := make([]string, len(v.fields))
		for i, f := range v.fields {
			fields[i] = cols.Column(f)
		}
		return map[string]any{"multi_match": map[string]any{"query": v.text, "type": "phrase_prefix", "fields": fields}}
	}
	panic(fmt.Sprintf("predicate: unknown node %T", e))
}

func searchTerms(terms []Expr, cols Columns) []map[string]any {
	out := make([]map[string]any, len(terms))
	for i, t := range terms {
		out[i] = Search(t, cols)
	}
	return out
}

func rangeOp(op Op) string {
	switch op {
	case OpGt:
		return "gt"
	case OpGte:
		return "gte"
	case OpLt:
		return "lt"
	default:
		return "lte"
	}
}

func searchValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.DateOnly)
	}
	return v
}
