package location

import (
	"testing"

	"spending-backend/internal/pkg/apperr"
	"spending-backend/internal/predicate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(nil))
	assert.NoError(t, Validate([]Entry{}))

	for _, bad := range []Entry{
		{},
		{"district": ""},
		{"county": ""},
		{"country": "", "county": ""},
		{"country": "", "district": ""},
		{"country": "USA", "state": "", "county": "001"},
		{"country": "USA", "state": "  ", "district": "07"},
	} {
		err := Validate([]Entry{bad})
		require.Error(t, err, "%v", bad)
		assert.True(t, apperr.IsInvalid(err))
	}

	for _, ok := range []Entry{
		{"country": ""},
		{"state": ""},
		{"country": "", "state": ""},
		{"country": "", "state": "", "feet": ""},
		{"country": "", "state": "", "county": "", "district": ""},
		{"country": "", "state": "", "county": "", "district": "", "feet": ""},
	} {
		assert.NoError(t, Validate([]Entry{ok}), "%v", ok)
	}

	assert.NoError(t, Validate([]Entry{
		{"country": "USA", "zip": "12345", "city": "Chicago", "state": "IL", "county": "Yes", "district": "Also Yes"},
		{"country": "USA", "zip": "12345", "city": "Chicago"},
	}))
}

func TestNormalize_NestsByCountryAndState(t *testing.T) {
	tree, err := Normalize([]Entry{
		{"country": "USA", "zip": "12345", "city": "Chicago", "state": "IL", "county": "Yes", "district": "Also Yes"},
		{"country": "USA", "zip": "12345", "city": "Chicago"},
	})
	require.NoError(t, err)
	assert.Equal(t, Tree{
		"USA": {
			City: Set{"CHICAGO"},
			Zip:  Set{"12345"},
			States: map[string]*State{
				"IL": {County: Set{"YES"}, District: Set{"ALSO YES"}, City: Set{"CHICAGO"}},
			},
		},
	}, tree)
}

func TestNormalize_RejectsCountyWithoutState(t *testing.T) {
	_, err := Normalize([]Entry{{"county": ""}})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalid(err))
}

func TestNormalize_BlankStateDoesNotWidenCounty(t *testing.T) {
	_, err := Normalize([]Entry{{"country": "USA", "state": "", "county": "001"}})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalid(err))
	assert.Contains(t, err.Error(), "state")
}

func TestNormalize_DefaultsCountry(t *testing.T) {
	tree, err := Normalize([]Entry{{"state": "tx"}})
	require.NoError(t, err)
	require.Contains(t, tree, DefaultCountry)
	assert.Contains(t, tree[DefaultCountry].States, "TX")
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := [][]Entry{
		{{"country": "USA"}},
		{{"country": "usa", "state": "tx", "city": "austin"}, {"country": "USA", "state": "TX", "county": "01"}},
		{{"country": "CAN", "city": "Toronto"}, {"country": "USA", "zip": "90210"}, {"country": "USA", "zip": "90210"}},
		{{"country": "USA", "state": "IL", "district": "07"}, {"country": "USA", "state": "CA"}},
	}
	for _, in := range inputs {
		first, err := Normalize(in)
		require.NoError(t, err)
		second, err := Normalize(first.Entries())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestFieldsList(t *testing.T) {
	assert.Equal(t, []string{"1", "01", "1.0"}, FieldsList("congressional_code", "01"))
	assert.Equal(t, []string{"1", "01", "1.0"}, FieldsList("county_code", "01"))
	assert.Equal(t, []string{"01"}, FieldsList("feet", "01"))
	assert.Equal(t, []string{"abc"}, FieldsList("congressional_code", "abc"))
	assert.Equal(t, []string{"-1"}, FieldsList("congressional_code", "-1"))
	assert.Equal(t, []string{"+1"}, FieldsList("congressional_code", "+1"))
	assert.Equal(t, []string{""}, FieldsList("county_code", ""))
	assert.Equal(t, []string{"0", "00", "0.0"}, FieldsList("county_code", "00"))
	assert.Equal(t,
		[]string{"99999999999999999999", "0099999999999999999999", "99999999999999999999.0"},
		FieldsList("county_code", "0099999999999999999999"))
}

func TestQueryFormat(t *testing.T) {
	format, country := QueryFormat(true)
	assert.Equal(t, "{0}_{1}", format)
	assert.Equal(t, "country_code", country)

	format, country = QueryFormat(false)
	assert.Equal(t, "{0}__{1}", format)
	assert.Equal(t, "location_country_code", country)
}

func TestPredicate_CurrentSnapshot(t *testing.T) {
	tree, err := Normalize([]Entry{{"country": "USA", "state": "TX", "district": "01"}})
	require.NoError(t, err)

	sql, args := predicate.SQL(Predicate(ScopePlaceOfPerformance, tree, true), predicate.ColumnMap{})
	assert.Equal(t, "(pop_country_code = ? AND pop_state_code = ? AND pop_congressional_code IN ?)", sql)
	assert.Equal(t, []any{"USA", "TX", []any{"01", "1", "1.0"}}, args)
}

func TestPredicate_HistoricalJoin(t *testing.T) {
	tree, err := Normalize([]Entry{
		{"country": "USA", "city": "Houston", "state": "TX"},
		{"country": "USA", "city": "Burbank", "state": "CA"},
	})
	require.NoError(t, err)

	sql, args := predicate.SQL(Predicate(ScopeRecipient, tree, false), predicate.ColumnMap{})
	assert.Equal(t,
		"(recipient_location.location_country_code = ? AND ((recipient_location.state_code = ? AND recipient_location.city_name IN ?) OR (recipient_location.state_code = ? AND recipient_location.city_name IN ?)))",
		sql)
	assert.Equal(t, []any{"USA", "CA", []any{"BURBANK"}, "TX", []any{"HOUSTON"}}, args)
}

func TestPredicate_EmptyTreeIsTrue(t *testing.T) {
	assert.Equal(t, predicate.True, Predicate(ScopeRecipient, nil, true))
}
