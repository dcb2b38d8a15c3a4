package predicate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testCols = ColumnMap{
	"defc":       "li.disaster_emergency_fund_code",
	"obligation": "li.transaction_obligated_amount",
	"start":      "sa.reporting_period_start",
}

func TestAnd_FlattensAndShortCircuits(t *testing.T) {
	assert.Equal(t, True, And())
	assert.Equal(t, True, And(True, True))
	assert.Equal(t, False, And(Eq("a", 1), False))

	e := And(Eq("a", 1), And(Eq("b", 2), True), nil)
	sql, args := SQL(e, testCols)
	assert.Equal(t, "(a = ? AND b = ?)", sql)
	assert.Equal(t, []any{1, 2}, args)
}

func TestOr_EmptyIsFalse(t *testing.T) {
	assert.Equal(t, False, Or())
	assert.Equal(t, True, Or(Eq("a", 1), True))
	assert.Equal(t, Eq("a", 1), Or(False, Eq("a", 1)))
}

func TestNot_Constants(t *testing.T) {
	assert.Equal(t, False, Not(True))
	assert.Equal(t, Eq("a", 1), Not(Not(Eq("a", 1))))
}

func TestIn_EmptyMatchesNothing(t *testing.T) {
	assert.Equal(t, False, In[string]("defc", nil))
}

func TestSQL_ResolvesColumns(t *testing.T) {
	e := And(In("defc", []string{"L", "M"}), NonZero("obligation"), NotNull("taa__treasury_account_identifier"))
	sql, args := SQL(e, testCols)
	assert.Equal(t,
		"(li.disaster_emergency_fund_code IN ? AND (li.transaction_obligated_amount > ? OR li.transaction_obligated_amount < ?) AND NOT (taa.treasury_account_identifier IS NULL))",
		sql)
	assert.Equal(t, []any{[]any{"L", "M"}, 0, 0}, args)
}

func TestSQL_Match(t *testing.T) {
	sql, args := SQL(Match("Gifts", "fa.account_title"), testCols)
	assert.Equal(t, "(LOWER(fa.account_title) LIKE ?)", sql)
	assert.Equal(t, []any{"%gifts%"}, args)
	assert.Equal(t, True, Match(""))
}

func TestSearch_MirrorsSQL(t *testing.T) {
	start := time.Date(2016, 10, 1, 0, 0, 0, 0, time.UTC)
	e := And(In("defc", []string{"M"}), Or(Gte("start", start), IsNull("defc")))
	got := Search(e, ColumnMap{"defc": "disaster_emergency_fund_code", "start": "reporting_period_start"})
	want := map[string]any{"bool": map[string]any{"filter": []map[string]any{
		{"terms": map[string]any{"disaster_emergency_fund_code": []any{"M"}}},
		{"bool": map[string]any{
			"should": []map[string]any{
				{"range": map[string]any{"reporting_period_start": map[string]any{"gte": "2016-10-01"}}},
				{"bool": map[string]any{"must_not": []map[string]any{{"exists": map[string]any{"field": "disaster_emergency_fund_code"}}}}},
			},
			"minimum_should_match": 1,
		}},
	}}}
	assert.Equal(t, want, got)
}

func TestSearch_Constants(t *testing.T) {
	assert.Equal(t, map[string]any{"match_all": map[string]any{}}, Search(True, ColumnMap{}))
	assert.Contains(t, Search(False, ColumnMap{}), "bool")
}

func TestOverlay_FallsBackToLast(t *testing.T) {
	cols := Overlay{ColumnMap{"description": "fta.name"}, testCols}
	assert.Equal(t, "fta.name", cols.Column("description"))
	assert.Equal(t, "li.disaster_emergency_fund_code", cols.Column("defc"))
	assert.Equal(t, "pop.state_code", cols.Column("pop__state_code"))
	assert.Equal(t, "plain", cols.Column("plain"))
}
