// Package aggregation computes grouped spending totals over either the
// relational warehouse or the search index. Both backends return the same
// Result shape with the same rounding.
package aggregation

import (
	"context"
	"sort"

	"spending-backend/internal/predicate"

	"github.com/shopspring/decimal"
)

// Row is one grouped total.
type Row struct {
	ID                      int64    `json:"id"`
	Code                    string   `json:"code"`
	Description             string   `json:"description"`
	Count                   int64    `json:"count"`
	Obligation              float64  `json:"obligation"`
	Outlay                  float64  `json:"outlay"`
	TotalBudgetaryResources *float64 `json:"total_budgetary_resources"`
	FaceValueOfLoan         *float64 `json:"face_value_of_loan,omitempty"`
}

// Result is a top level row with its children, ordered by code.
type Result struct {
	Row
	Children []Row `json:"children"`
}

// Grouping is the dimension results are grouped by.
type Grouping string

const (
	ByAgency         Grouping = "agency"
	ByFederalAccount Grouping = "federal_account"
	ByObjectClass    Grouping = "object_class"
	ByCFDA           Grouping = "cfda"
	ByRecipient      Grouping = "recipient"
)

// Source is the line item family a query reads.
type Source int

const (
	// AccountLines are File C rows.
	AccountLines Source = iota
	// AwardLines are File D rows.
	AwardLines
)

func (s Source) String() string {
	if s == AwardLines {
		return "award"
	}
	return "account"
}

// Logical field names shared by predicates and both backends.
const (
	FieldDEFC            = "defc"
	FieldObligation      = "obligation"
	FieldOutlay          = "outlay"
	FieldFinalOfFY       = "final_of_fy"
	FieldTreasuryAccount = "treasury_account"
	FieldFundingAgency   = "funding_toptier_agency"
	FieldAward           = "award"
	FieldAwardType       = "award_type"
	FieldLoanValue       = "loan_value"
	FieldDescription     = "description"
)

// Query is one aggregation request.
type Query struct {
	Grouping Grouping
	Source   Source
	// Where selects the rows that take part in the aggregation.
	Where predicate.Expr
	// Obligation and Outlay select the rows each sum accumulates. A nil or
	// True expression sums every row.
	Obligation predicate.Expr
	Outlay     predicate.Expr
	// Loans adds face_value_of_loan and counts distinct awards.
	Loans bool
}

// Backend executes a Query in a single round trip to its store.
type Backend interface {
	Aggregate(ctx context.Context, q Query) ([]Result, error)
}

var hundred = decimal.NewFromInt(100)

// Money converts a stored amount to the response value, rounded to cents.
func Money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// FromCents converts a minor unit sum returned by the index to the response
// value under the same rounding as Money.
func FromCents(v float64) float64 {
	return Money(decimal.NewFromFloat(v).Round(0).Div(hundred))
}

func moneyPtr(d decimal.Decimal) *float64 {
	f := Money(d)
	return &f
}

func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Code != rows[j].Code {
			return rows[i].Code < rows[j].Code
		}
		return rows[i].ID < rows[j].ID
	})
}

func sumsAll(e predicate.Expr) bool {
	return e == nil || e == predicate.True
}
