package aggregation

import (
	"context"
	"fmt"
	"strings"

	"spending-backend/internal/predicate"
	"spending-backend/internal/submission"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Relational aggregates File C or File D line items with one grouped query.
type Relational struct {
	DB *gorm.DB
}

var _ Backend = (*Relational)(nil)

type lineSource struct {
	table   string
	columns predicate.ColumnMap
}

var lineSources = map[Source]lineSource{
	AccountLines: {
		table: "financial_accounts_by_program_activity_object_class",
		columns: predicate.ColumnMap{
			FieldObligation: "li.obligations_incurred_by_program_object_class_cpe",
			FieldOutlay:     "li.gross_outlay_amount_by_program_object_class_cpe",
			FieldFinalOfFY:  "li.final_of_fy",
		},
	},
	AwardLines: {
		table: "financial_accounts_by_awards",
		columns: predicate.ColumnMap{
			FieldObligation: "li.transaction_obligated_amount",
			FieldOutlay:     "li.gross_outlay_amount_by_award_cpe",
			FieldAward:      "li.award_id",
			FieldAwardType:  "aw.type",
		},
	},
}

var sharedColumns = predicate.ColumnMap{
	FieldDEFC:                     "li.disaster_emergency_fund_code",
	FieldTreasuryAccount:          "li.treasury_account_id",
	FieldFundingAgency:            "taa.funding_toptier_agency_id",
	submission.FieldSubmission:    "li.submission_id",
	submission.FieldFiscalYear:    "sa.reporting_fiscal_year",
	submission.FieldFiscalPeriod:  "sa.reporting_fiscal_period",
	submission.FieldQuarterFormat: "sa.quarter_format_flag",
	submission.FieldPeriodStart:   "sa.reporting_period_start",
}

// dimension describes how rows of a grouping are identified and named.
type dimension struct {
	join                             string
	parentKey                        string
	parentID, parentCode, parentName string
	childID, childCode, childName    string
	budgetary                        bool
}

func (d dimension) hasChildren() bool { return d.childID != "" }

const toptierAgencyRow = "COALESCE((SELECT MIN(ag.id) FROM agency ag WHERE ag.toptier_agency_id = fta.toptier_agency_id AND ag.toptier_flag), fta.toptier_agency_id)"

func dimensionFor(g Grouping, src Source) (dimension, error) {
	switch g {
	case ByAgency:
		d := dimension{
			join:       "INNER JOIN toptier_agency fta ON fta.toptier_agency_id = taa.funding_toptier_agency_id",
			parentKey:  "fta.toptier_agency_id",
			parentID:   "fta.toptier_agency_id",
			parentCode: "fta.toptier_code",
			parentName: "fta.name",
			budgetary:  true,
		}
		if src == AwardLines {
			d.parentID = toptierAgencyRow
		}
		return d, nil
	case ByFederalAccount:
		return dimension{
			join:       "INNER JOIN federal_account fa ON fa.id = taa.federal_account_id",
			parentKey:  "fa.id",
			parentID:   "fa.id",
			parentCode: "fa.federal_account_code",
			parentName: "fa.account_title",
			childID:    "taa.treasury_account_identifier",
			childCode:  "taa.tas_rendering_label",
			childName:  "taa.account_title",
			budgetary:  true,
		}, nil
	case ByObjectClass:
		return dimension{
			join:       "INNER JOIN object_class oc ON oc.id = li.object_class_id",
			parentKey:  "oc.major_object_class",
			parentID:   "CAST(oc.major_object_class AS INTEGER)",
			parentCode: "oc.major_object_class",
			parentName: "oc.major_object_class_name",
			childID:    "oc.id",
			childCode:  "oc.object_class",
			childName:  "oc.object_class_name",
		}, nil
	}
	return dimension{}, fmt.Errorf("relational backend cannot group by %q", g)
}

// Columns returns the column map used to render predicates for a query.
func (r *Relational) Columns(g Grouping, src Source) predicate.Columns {
	d, _ := dimensionFor(g, src)
	return predicate.Overlay{
		lineSources[src].columns,
		predicate.ColumnMap{FieldDescription: d.parentName},
		sharedColumns,
	}
}

type groupRow struct {
	ParentID   int64           `gorm:"column:parent_id"`
	ParentCode string          `gorm:"column:parent_code"`
	ParentName string          `gorm:"column:parent_name"`
	ChildID    int64           `gorm:"column:child_id"`
	ChildCode  string          `gorm:"column:child_code"`
	ChildName  string          `gorm:"column:child_name"`
	TASID      int64           `gorm:"column:tas_id"`
	AwardID    *int64          `gorm:"column:award_id"`
	LoanValue  decimal.Decimal `gorm:"column:loan_value"`
	Obligation decimal.Decimal `gorm:"column:obligation"`
	Outlay     decimal.Decimal `gorm:"column:outlay"`
	Budgetary  decimal.Decimal `gorm:"column:budgetary"`
}

// Aggregate runs the grouped query and rolls the rows up in memory.
func (r *Relational) Aggregate(ctx context.Context, q Query) ([]Result, error) {
	d, err := dimensionFor(q.Grouping, q.Source)
	if err != nil {
		return nil, err
	}
	src := lineSources[q.Source]
	cols := r.Columns(q.Grouping, q.Source)

	var args []any
	sum := func(field string, when predicate.Expr) string {
		col := cols.Column(field)
		if sumsAll(when) {
			return fmt.Sprintf("COALESCE(SUM(%s), 0)", col)
		}
		cond, condArgs := predicate.SQL(when, cols)
		args = append(args, condArgs...)
		return fmt.Sprintf("COALESCE(SUM(CASE WHEN %s THEN %s ELSE 0 END), 0)", cond, col)
	}

	budgetary := q.Source == AccountLines && d.budgetary
	selects := []string{
		d.parentID + " AS parent_id",
		d.parentCode + " AS parent_code",
		d.parentName + " AS parent_name",
	}
	groups := []string{d.parentKey, d.parentCode, d.parentName}
	if d.hasChildren() {
		selects = append(selects, d.childID+" AS child_id", d.childCode+" AS child_code", d.childName+" AS child_name")
		groups = append(groups, d.childID, d.childCode, d.childName)
	}
	selects = append(selects, "li.treasury_account_id AS tas_id")
	groups = append(groups, "li.treasury_account_id")
	if q.Loans {
		selects = append(selects, "aw.id AS award_id", "COALESCE(aw.total_loan_value, 0) AS loan_value")
		groups = append(groups, "aw.id", "aw.total_loan_value")
	}
	selects = append(selects,
		sum(FieldObligation, q.Obligation)+" AS obligation",
		sum(FieldOutlay, q.Outlay)+" AS outlay",
	)
	if budgetary {
		selects = append(selects, "(SELECT COALESCE(SUM(g.budget_authority_appropriation_amount_cpe), 0) FROM gtas_sf133_balances g WHERE g.treasury_account_identifier = li.treasury_account_id) AS budgetary")
	}

	where, whereArgs := predicate.SQL(q.Where, cols)
	args = append(args, whereArgs...)

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s li", strings.Join(selects, ", "), src.table)
	b.WriteString(" INNER JOIN submission_attributes sa ON sa.submission_id = li.submission_id")
	b.WriteString(" INNER JOIN treasury_appropriation_account taa ON taa.treasury_account_identifier = li.treasury_account_id")
	b.WriteString(" " + d.join)
	if q.Source == AwardLines {
		b.WriteString(" LEFT OUTER JOIN awards aw ON aw.id = li.award_id")
		b.WriteString(" LEFT OUTER JOIN transaction_normalized latest_tx ON latest_tx.id = aw.latest_transaction_id")
		b.WriteString(" LEFT OUTER JOIN references_location pop ON pop.location_id = latest_tx.place_of_performance_id")
		b.WriteString(" LEFT OUTER JOIN references_location recipient_location ON recipient_location.location_id = latest_tx.recipient_location_id")
	}
	fmt.Fprintf(&b, " WHERE %s GROUP BY %s", where, strings.Join(groups, ", "))

	var rows []groupRow
	if err := r.DB.WithContext(ctx).Raw(b.String(), args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rollup(rows, d, q, budgetary), nil
}

type accumulator struct {
	row        Row
	obligation decimal.Decimal
	outlay     decimal.Decimal
	budgetary  decimal.Decimal
	loans      decimal.Decimal
	accounts   map[int64]bool
	awards     map[int64]bool
	children   map[int64]*accumulator
	order      []int64
}

func newAccumulator(id int64, code, name string) *accumulator {
	return &accumulator{
		row:      Row{ID: id, Code: code, Description: name},
		accounts: map[int64]bool{},
		awards:   map[int64]bool{},
		children: map[int64]*accumulator{},
	}
}

func (a *accumulator) add(r groupRow) {
	a.obligation = a.obligation.Add(r.Obligation)
	a.outlay = a.outlay.Add(r.Outlay)
	if !a.accounts[r.TASID] {
		a.accounts[r.TASID] = true
		a.budgetary = a.budgetary.Add(r.Budgetary)
	}
	if r.AwardID != nil && !a.awards[*r.AwardID] {
		a.awards[*r.AwardID] = true
		a.loans = a.loans.Add(r.LoanValue)
	}
}

func (a *accumulator) finish(q Query, budgetary bool, count int64) Row {
	row := a.row
	row.Obligation = Money(a.obligation)
	row.Outlay = Money(a.outlay)
	row.Count = count
	if budgetary {
		row.TotalBudgetaryResources = moneyPtr(a.budgetary)
	}
	if q.Loans {
		row.FaceValueOfLoan = moneyPtr(a.loans)
		row.Count = int64(len(a.awards))
	}
	return row
}

// rollup folds grouped rows into parents and children. Parent sums are the
// sums of their children, budgetary resources count each treasury account
// once, and loan face value counts each award once.
func rollup(rows []groupRow, d dimension, q Query, budgetary bool) []Result {
	parents := map[int64]*accumulator{}
	var order []int64
	for _, r := range rows {
		p, ok := parents[r.ParentID]
		if !ok {
			p = newAccumulator(r.ParentID, r.ParentCode, r.ParentName)
			parents[r.ParentID] = p
			order = append(order, r.ParentID)
		}
		p.add(r)
		if !d.hasChildren() {
			continue
		}
		c, ok := p.children[r.ChildID]
		if !ok {
			c = newAccumulator(r.ChildID, r.ChildCode, r.ChildName)
			p.children[r.ChildID] = c
			p.order = append(p.order, r.ChildID)
		}
		c.add(r)
	}

	results := make([]Result, 0, len(order))
	for _, id := range order {
		p := parents[id]
		children := make([]Row, 0, len(p.order))
		for _, cid := range p.order {
			children = append(children, p.children[cid].finish(q, budgetary, 1))
		}
		sortRows(children)
		var count int64
		if d.hasChildren() {
			count = int64(len(children))
		}
		results = append(results, Result{Row: p.finish(q, budgetary, count), Children: children})
	}
	return results
}
