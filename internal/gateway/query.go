package gateway

import (
	"fmt"
	"sort"
	"strings"
)

// Pseudo-fields addressing document metadata.
const (
	FieldID        = "$id"
	FieldCreatedAt = "$createdAt"
	FieldUpdatedAt = "$updatedAt"
)

// QueryKind discriminates Query.
type QueryKind int

const (
	QueryEqual QueryKind = iota + 1
	QueryOrderAsc
	QueryOrderDesc
	QueryLimit
)

// Query is one list constraint.
type Query struct {
	Kind   QueryKind
	Field  string
	Values []string
	N      int
}

// Equal matches documents whose field equals any of values.
func Equal(field string, values ...string) Query {
	return Query{Kind: QueryEqual, Field: field, Values: values}
}

// OrderAsc sorts ascending by field.
func OrderAsc(field string) Query { return Query{Kind: QueryOrderAsc, Field: field} }

// OrderDesc sorts descending by field.
func OrderDesc(field string) Query { return Query{Kind: QueryOrderDesc, Field: field} }

// Limit caps the number of results.
func Limit(n int) Query { return Query{Kind: QueryLimit, N: n} }

// Plan is a compiled list of queries. Without an order the result is sorted
// by creation time ascending.
type Plan struct {
	Filters []Query
	OrderBy string
	Desc    bool
	Limit   int
}

// Compile folds queries into a Plan. Later orders and limits override earlier ones.
func Compile(queries []Query) (Plan, error) {
	p := Plan{OrderBy: FieldCreatedAt}
	for _, q := range queries {
		switch q.Kind {
		case QueryEqual:
			if q.Field == "" {
				return Plan{}, fmt.Errorf("equal query without field")
			}
			p.Filters = append(p.Filters, q)
		case QueryOrderAsc, QueryOrderDesc:
			if q.Field == "" {
				return Plan{}, fmt.Errorf("order query without field")
			}
			p.OrderBy = q.Field
			p.Desc = q.Kind == QueryOrderDesc
		case QueryLimit:
			if q.N < 0 {
				return Plan{}, fmt.Errorf("negative limit %d", q.N)
			}
			p.Limit = q.N
		default:
			return Plan{}, fmt.Errorf("unknown query kind %d", q.Kind)
		}
	}
	return p, nil
}

// value returns the comparable value of field on doc.
func value(doc *Document, field string) any {
	switch field {
	case FieldID:
		return doc.ID
	case FieldCreatedAt:
		return FormatTime(doc.CreatedAt)
	case FieldUpdatedAt:
		return FormatTime(doc.UpdatedAt)
	default:
		return doc.Fields[field]
	}
}

// Match reports whether doc satisfies every filter of p.
func (p Plan) Match(doc *Document) bool {
	for _, f := range p.Filters {
		got := stringify(value(doc, f.Field))
		ok := false
		for _, want := range f.Values {
			if got == want {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Apply filters, sorts and truncates docs in memory.
func (p Plan) Apply(docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for i := range docs {
		if p.Match(&docs[i]) {
			out = append(out, docs[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(value(&out[i], p.OrderBy), value(&out[j], p.OrderBy))
		if p.Desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		// Ties fall back to creation order.
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out
}

func compare(a, b any) int {
	fa, aNum := asFloat(a)
	fb, bNum := asFloat(b)
	if aNum && bNum {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(stringify(a), stringify(b))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
