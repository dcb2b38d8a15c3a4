// Package pagination orders, slices and describes already aggregated results.
package pagination

import (
	"sort"
	"strings"

	"spending-backend/internal/aggregation"
	"spending-backend/internal/pkg/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultSort  = "id"
	DefaultOrder = "desc"
)

// Params are the caller supplied paging options. Zero values take defaults.
type Params struct {
	Page  int    `json:"page" validate:"omitempty,min=1"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=100"`
	Sort  string `json:"sort" validate:"omitempty,oneof=id code description count obligation outlay total_budgetary_resources face_value_of_loan"`
	Order string `json:"order" validate:"omitempty,oneof=asc desc"`
}

// WithDefaults fills unset fields.
func (p Params) WithDefaults() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Sort == "" {
		p.Sort = DefaultSort
	}
	p.Order = strings.ToLower(p.Order)
	if p.Order == "" {
		p.Order = DefaultOrder
	}
	return p
}

// Metadata describes the page that was returned.
type Metadata struct {
	Page        int  `json:"page"`
	Total       int  `json:"total"`
	Limit       int  `json:"limit"`
	Next        *int `json:"next"`
	Previous    *int `json:"previous"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// NewMetadata computes page links for total items.
func NewMetadata(total int, p Params) Metadata {
	p = p.WithDefaults()
	m := Metadata{Page: p.Page, Total: total, Limit: p.Limit}
	if p.Page*p.Limit < total {
		next := p.Page + 1
		m.Next, m.HasNext = &next, true
	}
	if p.Page > 1 {
		prev := p.Page - 1
		m.Previous, m.HasPrevious = &prev, true
	}
	return m
}

// Slice returns the page of items selected by p.
func Slice[T any](items []T, p Params) []T {
	p = p.WithDefaults()
	lo := (p.Page - 1) * p.Limit
	if lo >= len(items) {
		return items[:0]
	}
	hi := lo + p.Limit
	if hi > len(items) {
		hi = len(items)
	}
	return items[lo:hi]
}

// Sort orders results by the requested field. Equal keys fall back to id in
// the same direction, so the order is total. A null value sorts below any number.
func Sort(results []aggregation.Result, field, order string) error {
	cmp, ok := comparators[field]
	if !ok {
		return apperr.Invalid("Field 'pagination|sort' must be one of the result fields, got %q", field)
	}
	desc := strings.EqualFold(order, "desc")
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Row, results[j].Row
		c := cmp(a, b)
		if c == 0 {
			c = compareInt(a.ID, b.ID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
	return nil
}

// Page sorts, slices and describes results in one step.
func Page(results []aggregation.Result, p Params) ([]aggregation.Result, Metadata, error) {
	p = p.WithDefaults()
	if err := Sort(results, p.Sort, p.Order); err != nil {
		return nil, Metadata{}, err
	}
	return Slice(results, p), NewMetadata(len(results), p), nil
}

type comparator func(a, b aggregation.Row) int

var comparators = map[string]comparator{
	"id":                        func(a, b aggregation.Row) int { return compareInt(a.ID, b.ID) },
	"code":                      func(a, b aggregation.Row) int { return strings.Compare(a.Code, b.Code) },
	"description":               func(a, b aggregation.Row) int { return strings.Compare(a.Description, b.Description) },
	"count":                     func(a, b aggregation.Row) int { return compareInt(a.Count, b.Count) },
	"obligation":                func(a, b aggregation.Row) int { return compareFloat(a.Obligation, b.Obligation) },
	"outlay":                    func(a, b aggregation.Row) int { return compareFloat(a.Outlay, b.Outlay) },
	"total_budgetary_resources": func(a, b aggregation.Row) int { return compareNullable(a.TotalBudgetaryResources, b.TotalBudgetaryResources) },
	"face_value_of_loan":        func(a, b aggregation.Row) int { return compareNullable(a.FaceValueOfLoan, b.FaceValueOfLoan) },
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareNullable(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return compareFloat(*a, *b)
}
