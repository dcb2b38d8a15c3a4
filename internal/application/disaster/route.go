package disaster

import (
	"spending-backend/internal/aggregation"
)

// Endpoint names a disaster aggregation route relative to /api/v2/disaster.
type Endpoint string

const (
	AgencySpending         Endpoint = "agency/spending"
	AgencyLoans            Endpoint = "agency/loans"
	AgencyCount            Endpoint = "agency/count"
	FederalAccountSpending Endpoint = "federal_account/spending"
	FederalAccountLoans    Endpoint = "federal_account/loans"
	FederalAccountCount    Endpoint = "federal_account/count"
	ObjectClassSpending    Endpoint = "object_class/spending"
	ObjectClassLoans       Endpoint = "object_class/loans"
	ObjectClassCount       Endpoint = "object_class/count"
	CFDASpending           Endpoint = "cfda/spending"
	CFDALoans              Endpoint = "cfda/loans"
	CFDACount              Endpoint = "cfda/count"
	RecipientSpending      Endpoint = "recipient/spending"
	RecipientLoans         Endpoint = "recipient/loans"
	RecipientCount         Endpoint = "recipient/count"
)

// Kind is what an endpoint returns.
type Kind int

const (
	KindSpending Kind = iota
	KindLoans
	KindCount
)

type endpointInfo struct {
	grouping aggregation.Grouping
	kind     Kind
}

var endpoints = map[Endpoint]endpointInfo{
	AgencySpending:         {aggregation.ByAgency, KindSpending},
	AgencyLoans:            {aggregation.ByAgency, KindLoans},
	AgencyCount:            {aggregation.ByAgency, KindCount},
	FederalAccountSpending: {aggregation.ByFederalAccount, KindSpending},
	FederalAccountLoans:    {aggregation.ByFederalAccount, KindLoans},
	FederalAccountCount:    {aggregation.ByFederalAccount, KindCount},
	ObjectClassSpending:    {aggregation.ByObjectClass, KindSpending},
	ObjectClassLoans:       {aggregation.ByObjectClass, KindLoans},
	ObjectClassCount:       {aggregation.ByObjectClass, KindCount},
	CFDASpending:           {aggregation.ByCFDA, KindSpending},
	CFDALoans:              {aggregation.ByCFDA, KindLoans},
	CFDACount:              {aggregation.ByCFDA, KindCount},
	RecipientSpending:      {aggregation.ByRecipient, KindSpending},
	RecipientLoans:         {aggregation.ByRecipient, KindLoans},
	RecipientCount:         {aggregation.ByRecipient, KindCount},
}

// Endpoints lists every supported endpoint.
func Endpoints() []Endpoint {
	return []Endpoint{
		AgencySpending, AgencyLoans, AgencyCount,
		FederalAccountSpending, FederalAccountLoans, FederalAccountCount,
		ObjectClassSpending, ObjectClassLoans, ObjectClassCount,
		CFDASpending, CFDALoans, CFDACount,
		RecipientSpending, RecipientLoans, RecipientCount,
	}
}

// Kind returns what e produces.
func (e Endpoint) Kind() Kind { return endpoints[e].kind }

// Grouping returns the dimension e groups by.
func (e Endpoint) Grouping() aggregation.Grouping { return endpoints[e].grouping }

// Backend is the store family that serves a request.
type Backend int

const (
	// AccountScoped aggregates File C rows in the relational store.
	AccountScoped Backend = iota
	// AwardScoped aggregates File D rows in the relational store.
	AwardScoped
	// SearchIndex aggregates award line item documents in the search index.
	SearchIndex
)

func (b Backend) String() string {
	switch b {
	case AwardScoped:
		return "award_scoped"
	case SearchIndex:
		return "search_index"
	}
	return "account_scoped"
}

// Route picks the backend for a request. CFDA and recipient groupings exist
// only in the index. Award type codes force award scoped data because File C
// rows carry no award type; agency spending with award types groups by the
// awarding subtier and therefore needs the index.
func Route(e Endpoint, f Filter, spendingType string) Backend {
	switch {
	case e.Grouping() == aggregation.ByCFDA || e.Grouping() == aggregation.ByRecipient:
		return SearchIndex
	case e == AgencySpending && f.HasAwardTypes():
		return SearchIndex
	case e.Kind() == KindLoans:
		return AwardScoped
	case f.HasAwardTypes(), f.hasLocations():
		return AwardScoped
	case e.Kind() == KindSpending && spendingType == SpendingAward:
		return AwardScoped
	}
	return AccountScoped
}

// Source maps a relational backend to the line item family it reads.
func (b Backend) Source() aggregation.Source {
	if b == AccountScoped {
		return aggregation.AccountLines
	}
	return aggregation.AwardLines
}
