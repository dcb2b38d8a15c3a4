package disaster

import (
	"spending-backend/internal/aggregation"
	"spending-backend/internal/location"
	"spending-backend/internal/predicate"
	"spending-backend/internal/submission"
)

// LoanTypes are the award types that carry a face value of loan.
var LoanTypes = []string{"07", "08"}

// Builder turns a request filter into predicates over logical fields. The
// backend decides how each field is resolved, so the same predicate applies
// to File C, File D and index documents.
type Builder struct {
	Filter  Filter
	Backend Backend
	Periods submission.Snapshot
}

// DEFC matches the requested disaster codes.
func (b Builder) DEFC() predicate.Expr {
	return predicate.In(aggregation.FieldDEFC, b.Filter.Codes())
}

// NonZero drops rows whose obligation and outlay are both zero.
func (b Builder) NonZero() predicate.Expr {
	return predicate.Or(
		predicate.NonZero(aggregation.FieldObligation),
		predicate.NonZero(aggregation.FieldOutlay),
	)
}

// AwardTypes matches the requested award types. The award type is read from
// the linked award for File D rows and from the document itself in the index.
// Without award types every row matches.
func (b Builder) AwardTypes() predicate.Expr {
	if b.Filter.AwardTypeCodes == nil || len(*b.Filter.AwardTypeCodes) == 0 {
		return predicate.True
	}
	return predicate.In(aggregation.FieldAwardType, *b.Filter.AwardTypeCodes)
}

// Closed keeps rows from closed submission periods.
func (b Builder) Closed() predicate.Expr {
	return b.Periods.Closed()
}

// Locations matches the place of performance and recipient location filters.
// The index stores a current location snapshot; the relational store joins
// through the award's latest transaction.
func (b Builder) Locations() (predicate.Expr, error) {
	current := b.Backend == SearchIndex
	terms := make([]predicate.Expr, 0, 2)
	for _, loc := range []struct {
		scope   string
		entries []location.Entry
	}{
		{location.ScopePlaceOfPerformance, b.Filter.PlaceOfPerformanceLocations},
		{location.ScopeRecipient, b.Filter.RecipientLocations},
	} {
		if len(loc.entries) == 0 {
			continue
		}
		tree, err := location.Normalize(loc.entries)
		if err != nil {
			return nil, err
		}
		terms = append(terms, location.Predicate(loc.scope, tree, current))
	}
	return predicate.And(terms...), nil
}

// Query matches the free text query against the grouping's name.
func (b Builder) Query() predicate.Expr {
	return predicate.Match(b.Filter.Query, aggregation.FieldDescription)
}

// Where is the conjunction shared by every endpoint.
func (b Builder) Where() (predicate.Expr, error) {
	locations, err := b.Locations()
	if err != nil {
		return nil, err
	}
	return predicate.And(b.DEFC(), b.AwardTypes(), b.Closed(), locations, b.Query()), nil
}

// Build assembles the aggregation for one endpoint. Each endpoint keeps its own
// rule for which rows feed the published totals:
//   - federal account totals read only final_of_fy rows and sum them directly;
//   - agency and object class totals sum only rows of the authoritative final
//     period submissions;
//   - award scoped obligations sum every closed row while outlays, being
//     cumulative, come from the final period only.
func (b Builder) Build(e Endpoint) (aggregation.Query, error) {
	where, err := b.Where()
	if err != nil {
		return aggregation.Query{}, err
	}
	q := aggregation.Query{
		Grouping: e.Grouping(),
		Source:   b.Backend.Source(),
	}
	final := b.Periods.Final()

	switch {
	case e.Kind() == KindLoans:
		q.Where = predicate.And(where,
			predicate.In(aggregation.FieldAwardType, LoanTypes),
			predicate.NotNull(aggregation.FieldAward))
		q.Outlay = final
		q.Loans = true
	case b.Backend == AccountScoped && e.Grouping() == aggregation.ByFederalAccount:
		q.Where = predicate.And(where, b.NonZero(), predicate.Eq(aggregation.FieldFinalOfFY, true))
	case b.Backend == AccountScoped:
		q.Where = predicate.And(where, b.NonZero())
		q.Obligation = final
		q.Outlay = final
	case b.Backend == AwardScoped && e.Grouping() == aggregation.ByAgency:
		q.Where = where
		q.Outlay = final
	default:
		q.Where = predicate.And(where, b.NonZero())
		q.Outlay = final
	}
	return q, nil
}
