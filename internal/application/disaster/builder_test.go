package disaster

import (
	"testing"

	"spending-backend/internal/aggregation"
	"spending-backend/internal/location"
	"spending-backend/internal/predicate"
	"spending-backend/internal/submission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var plainCols = predicate.ColumnMap{
	aggregation.FieldDEFC:       "defc",
	aggregation.FieldObligation: "obl",
	aggregation.FieldOutlay:     "out",
	aggregation.FieldAwardType:  "type",
	aggregation.FieldAward:      "award_id",
	aggregation.FieldFinalOfFY:  "final",
}

func render(e predicate.Expr) string {
	sql, _ := predicate.SQL(e, plainCols)
	return sql
}

var snapshot = submission.Snapshot{
	Periods:     []submission.Period{{FiscalYear: 2020, FiscalMonth: 7}},
	Submissions: []int64{1},
}

func TestBuilder_AwardTypesDefaultToTrue(t *testing.T) {
	assert.Equal(t, predicate.True, Builder{Filter: Filter{}}.AwardTypes())
	assert.Equal(t, predicate.True, Builder{Filter: Filter{AwardTypeCodes: codes()}}.AwardTypes())
	assert.Equal(t, "type IN ?", render(Builder{Filter: Filter{AwardTypeCodes: codes("A")}}.AwardTypes()))
}

func TestBuilder_EmptyDefCodesMatchNothing(t *testing.T) {
	assert.Equal(t, predicate.False, Builder{Filter: Filter{DefCodes: codes()}}.DEFC())
}

func TestBuilder_NonZero(t *testing.T) {
	assert.Equal(t, "(obl > ? OR obl < ? OR out > ? OR out < ?)", render(Builder{}.NonZero()))
}

func TestBuilder_LocationsUseBackendFormat(t *testing.T) {
	f := Filter{
		PlaceOfPerformanceLocations: []location.Entry{{"country": "USA", "state": "TX"}},
		RecipientLocations:          []location.Entry{{"country": "CAN"}},
	}

	expr, err := Builder{Filter: f, Backend: AwardScoped}.Locations()
	require.NoError(t, err)
	assert.Equal(t, "(pop.location_country_code = ? AND pop.state_code = ? AND recipient_location.location_country_code = ?)", render(expr))

	expr, err = Builder{Filter: f, Backend: SearchIndex}.Locations()
	require.NoError(t, err)
	assert.Equal(t, "(pop_country_code = ? AND pop_state_code = ? AND recipient_location_country_code = ?)", render(expr))
}

func TestBuilder_NoLocationsIsTrue(t *testing.T) {
	expr, err := Builder{}.Locations()
	require.NoError(t, err)
	assert.Equal(t, predicate.True, expr)
}

func TestBuilder_FederalAccountTotalReadsFinalOfFY(t *testing.T) {
	b := Builder{Filter: Filter{DefCodes: codes("M")}, Backend: AccountScoped, Periods: snapshot}
	q, err := b.Build(FederalAccountSpending)
	require.NoError(t, err)

	assert.Equal(t, aggregation.ByFederalAccount, q.Grouping)
	assert.Equal(t, aggregation.AccountLines, q.Source)
	assert.Nil(t, q.Obligation)
	assert.Nil(t, q.Outlay)
	assert.Contains(t, render(q.Where), "final = ?")
	assert.Contains(t, render(q.Where), "reporting_fiscal_period <= ?")
}

func TestBuilder_AgencyTotalSumsFinalPeriod(t *testing.T) {
	b := Builder{Filter: Filter{DefCodes: codes("M")}, Backend: AccountScoped, Periods: snapshot}
	q, err := b.Build(AgencySpending)
	require.NoError(t, err)

	assert.Equal(t, snapshot.Final(), q.Obligation)
	assert.Equal(t, snapshot.Final(), q.Outlay)
	assert.NotContains(t, render(q.Where), "final = ?")
}

func TestBuilder_AwardSpendingSumsObligationsDirectly(t *testing.T) {
	b := Builder{Filter: Filter{DefCodes: codes("M")}, Backend: AwardScoped, Periods: snapshot}
	q, err := b.Build(ObjectClassSpending)
	require.NoError(t, err)

	assert.Equal(t, aggregation.AwardLines, q.Source)
	assert.Nil(t, q.Obligation)
	assert.Equal(t, snapshot.Final(), q.Outlay)
	assert.Contains(t, render(q.Where), "obl > ?")

	q, err = b.Build(AgencySpending)
	require.NoError(t, err)
	assert.NotContains(t, render(q.Where), "obl > ?")
}

func TestBuilder_LoansRestrictToLoanAwards(t *testing.T) {
	b := Builder{Filter: Filter{DefCodes: codes("M")}, Backend: AwardScoped, Periods: snapshot}
	q, err := b.Build(FederalAccountLoans)
	require.NoError(t, err)

	assert.True(t, q.Loans)
	where, args := predicate.SQL(q.Where, plainCols)
	assert.Contains(t, where, "NOT (award_id IS NULL)")
	assert.Contains(t, args, []any{"07", "08"})
}

func TestBuilder_RejectsBadLocation(t *testing.T) {
	b := Builder{Filter: Filter{DefCodes: codes("M"), RecipientLocations: []location.Entry{{"district": "01"}}}, Backend: AwardScoped}
	_, err := b.Build(AgencySpending)
	assert.Error(t, err)
}
