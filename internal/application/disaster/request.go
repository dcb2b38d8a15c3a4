package disaster

import (
	"spending-backend/internal/location"
	"spending-backend/internal/pagination"
	"spending-backend/internal/pkg/validation"
)

// Spending types accepted by the spending endpoints.
const (
	SpendingTotal = "total"
	SpendingAward = "award"
)

// Filter is the "filter" object of a request body. A nil AwardTypeCodes means
// the key was absent, which is not the same as an empty list.
type Filter struct {
	DefCodes                    *[]string        `json:"def_codes" validate:"required"`
	AwardTypeCodes              *[]string        `json:"award_type_codes"`
	Query                       string           `json:"query" validate:"max=1000"`
	PlaceOfPerformanceLocations []location.Entry `json:"place_of_performance_locations"`
	RecipientLocations          []location.Entry `json:"recipient_locations"`
}

// Codes returns the requested DEFC codes.
func (f Filter) Codes() []string {
	if f.DefCodes == nil {
		return nil
	}
	return *f.DefCodes
}

// HasAwardTypes reports whether award_type_codes was supplied at all.
func (f Filter) HasAwardTypes() bool { return f.AwardTypeCodes != nil }

func (f Filter) hasLocations() bool {
	return len(f.PlaceOfPerformanceLocations) > 0 || len(f.RecipientLocations) > 0
}

// Request is the body shared by every disaster endpoint.
type Request struct {
	Filter       Filter            `json:"filter"`
	SpendingType string            `json:"spending_type" validate:"omitempty,oneof=total award"`
	Pagination   pagination.Params `json:"pagination"`
}

// Validate rejects malformed requests before any store is consulted.
func (r Request) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	if err := location.Validate(r.Filter.PlaceOfPerformanceLocations); err != nil {
		return err
	}
	return location.Validate(r.Filter.RecipientLocations)
}

// Spending returns the requested spending type, defaulting to total.
func (r Request) Spending() string {
	if r.SpendingType == "" {
		return SpendingTotal
	}
	return r.SpendingType
}
