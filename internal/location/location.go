// Package location validates geographic filter entries and turns them into a
// country → state tree and the matching query predicate.
package location

import (
	"sort"
	"strings"

	"spending-backend/internal/pkg/apperr"
	"spending-backend/internal/predicate"
)

// Recognized entry keys. Anything else is carried but ignored.
const (
	KeyCountry  = "country"
	KeyState    = "state"
	KeyCounty   = "county"
	KeyDistrict = "district"
	KeyCity     = "city"
	KeyZip      = "zip"
)

// Role prefixes used when naming predicate fields.
const (
	ScopePlaceOfPerformance = "pop"
	ScopeRecipient          = "recipient_location"
)

// DefaultCountry is used for entries that name a state or city without a country.
const DefaultCountry = "USA"

// Entry is one location filter as supplied by the caller.
type Entry map[string]string

// Set is a sorted, de-duplicated list of values.
type Set []string

func (s Set) add(vs ...string) Set {
	for _, v := range vs {
		i := sort.SearchStrings(s, v)
		if i < len(s) && s[i] == v {
			continue
		}
		s = append(s, "")
		copy(s[i+1:], s[i:])
		s[i] = v
	}
	return s
}

// State holds the values collected beneath a state.
type State struct {
	County   Set
	District Set
	City     Set
}

// Country holds the values collected beneath a country.
type Country struct {
	City   Set
	Zip    Set
	States map[string]*State
}

// Tree is the normalized form of a list of entries, keyed by country code.
type Tree map[string]*Country

// Validate checks every entry. An empty entry is rejected, and county or
// district requires a state to disambiguate. A blank state does not count
// when the county or district carries a value, since Normalize would file
// the entry at country level and drop it.
func Validate(entries []Entry) error {
	for _, e := range entries {
		if len(e) == 0 {
			return apperr.Invalid("Invalid filter: location entry is empty")
		}
		state, hasState := e[KeyState]
		county, hasCounty := e[KeyCounty]
		district, hasDistrict := e[KeyDistrict]
		if !hasState && (hasCounty || hasDistrict) {
			return apperr.Invalid("Invalid filter: Missing necessary location field: state.")
		}
		if blank(state) && (!blank(county) || !blank(district)) {
			return apperr.Invalid("Invalid filter: Missing necessary location field: state.")
		}
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Normalize validates entries and folds them into a Tree. Values are upper-cased.
func Normalize(entries []Entry) (Tree, error) {
	if err := Validate(entries); err != nil {
		return nil, err
	}
	tree := Tree{}
	for _, e := range entries {
		v := func(key string) string { return strings.ToUpper(strings.TrimSpace(e[key])) }
		code := v(KeyCountry)
		if code == "" {
			code = DefaultCountry
		}
		country := tree[code]
		if country == nil {
			country = &Country{States: map[string]*State{}}
			tree[code] = country
		}
		if zip := v(KeyZip); zip != "" {
			country.Zip = country.Zip.add(zip)
		}
		state := v(KeyState)
		if state == "" {
			if city := v(KeyCity); city != "" {
				country.City = country.City.add(city)
			}
			continue
		}
		st := country.States[state]
		if st == nil {
			st = &State{}
			country.States[state] = st
		}
		if county := v(KeyCounty); county != "" {
			st.County = st.County.add(county)
		}
		if district := v(KeyDistrict); district != "" {
			st.District = st.District.add(district)
		}
		if city := v(KeyCity); city != "" {
			st.City = st.City.add(city)
		}
	}
	return tree, nil
}

// Entries flattens the tree back into one entry per collected value.
func (t Tree) Entries() []Entry {
	var out []Entry
	for _, code := range sortedKeys(t) {
		c := t[code]
		if len(c.City) == 0 && len(c.Zip) == 0 && len(c.States) == 0 {
			out = append(out, Entry{KeyCountry: code})
		}
		for _, city := range c.City {
			out = append(out, Entry{KeyCountry: code, KeyCity: city})
		}
		for _, zip := range c.Zip {
			out = append(out, Entry{KeyCountry: code, KeyZip: zip})
		}
		for _, name := range sortedKeys(c.States) {
			st := c.States[name]
			if len(st.County) == 0 && len(st.District) == 0 && len(st.City) == 0 {
				out = append(out, Entry{KeyCountry: code, KeyState: name})
			}
			for _, county := range st.County {
				out = append(out, Entry{KeyCountry: code, KeyState: name, KeyCounty: county})
			}
			for _, district := range st.District {
				out = append(out, Entry{KeyCountry: code, KeyState: name, KeyDistrict: district})
			}
			for _, city := range st.City {
				out = append(out, Entry{KeyCountry: code, KeyState: name, KeyCity: city})
			}
		}
	}
	return out
}

// FieldsList returns the stored representations to search for a value.
// County and congressional codes appear as "01", "1" and "1.0" in source data.
// Only plain digit strings are expanded; signs and anything else stay literal.
func FieldsList(field, value string) []string {
	if (field == "congressional_code" || field == "county_code") && digits(value) {
		stripped := strings.TrimLeft(value, "0")
		if stripped == "" {
			stripped = "0"
		}
		return []string{stripped, value, stripped + ".0"}
	}
	return []string{value}
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// QueryFormat returns the field name template and the country column for the
// join context. The current location snapshot uses "{0}_{1}" with
// "country_code"; the historical location join uses "{0}__{1}" with
// "location_country_code".
func QueryFormat(current bool) (string, string) {
	if current {
		return "{0}_{1}", "country_code"
	}
	return "{0}__{1}", "location_country_code"
}

func fieldName(format, scope, field string) string {
	return strings.NewReplacer("{0}", scope, "{1}", field).Replace(format)
}

// Predicate builds the disjunction of the tree's locations for a role.
func Predicate(scope string, tree Tree, current bool) predicate.Expr {
	if len(tree) == 0 {
		return predicate.True
	}
	format, countryField := QueryFormat(current)
	f := func(field string) string { return fieldName(format, scope, field) }

	var countries []predicate.Expr
	for _, code := range sortedKeys(tree) {
		c := tree[code]
		var inner []predicate.Expr
		if len(c.City) > 0 {
			inner = append(inner, predicate.In(f("city_name"), c.City))
		}
		if len(c.Zip) > 0 {
			inner = append(inner, predicate.In(f("zip5"), c.Zip))
		}
		for _, name := range sortedKeys(c.States) {
			st := c.States[name]
			var within []predicate.Expr
			if len(st.County) > 0 {
				within = append(within, predicate.In(f("county_code"), expand("county_code", st.County)))
			}
			if len(st.District) > 0 {
				within = append(within, predicate.In(f("congressional_code"), expand("congressional_code", st.District)))
			}
			if len(st.City) > 0 {
				within = append(within, predicate.In(f("city_name"), st.City))
			}
			stateExpr := predicate.Eq(f("state_code"), name)
			if len(within) > 0 {
				stateExpr = predicate.And(stateExpr, predicate.Or(within...))
			}
			inner = append(inner, stateExpr)
		}
		countryExpr := predicate.Eq(f(countryField), code)
		if len(inner) > 0 {
			countryExpr = predicate.And(countryExpr, predicate.Or(inner...))
		}
		countries = append(countries, countryExpr)
	}
	return predicate.Or(countries...)
}

func expand(field string, values Set) Set {
	var out Set
	for _, v := range values {
		out = out.add(FieldsList(field, v)...)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
