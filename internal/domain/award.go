package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Award is the latest state of an obligation to a recipient.
type Award struct {
	ID                  int64           `gorm:"column:id;primaryKey" json:"id"`
	Type                *string         `gorm:"column:type;type:varchar(2);index" json:"type"`
	Category            *string         `gorm:"column:category" json:"category"`
	TotalLoanValue      decimal.Decimal `gorm:"column:total_loan_value;type:numeric(23,2);not null;default:0" json:"total_loan_value"`
	LatestTransactionID *int64          `gorm:"column:latest_transaction_id" json:"latest_transaction_id"`
	FundingAgencyID     *int64          `gorm:"column:funding_agency_id" json:"funding_agency_id"`
	PIID                *string         `gorm:"column:piid" json:"piid"`
	FAIN                *string         `gorm:"column:fain" json:"fain"`
	URI                 *string         `gorm:"column:uri" json:"uri"`
}

func (Award) TableName() string {
	return "awards"
}

// TransactionNormalized is a point-in-time action on an award.
type TransactionNormalized struct {
	ID                      int64           `gorm:"column:id;primaryKey" json:"id"`
	AwardID                 int64           `gorm:"column:award_id;not null;index" json:"award_id"`
	ActionDate              datatypes.Date  `gorm:"column:action_date" json:"action_date"`
	FederalActionObligation decimal.Decimal `gorm:"column:federal_action_obligation;type:numeric(23,2);not null;default:0" json:"federal_action_obligation"`
	PlaceOfPerformanceID    *int64          `gorm:"column:place_of_performance_id" json:"place_of_performance_id"`
	RecipientLocationID     *int64          `gorm:"column:recipient_location_id" json:"recipient_location_id"`
}

func (TransactionNormalized) TableName() string {
	return "transaction_normalized"
}

// Location is a historical address referenced by transactions.
type Location struct {
	LocationID          int64  `gorm:"column:location_id;primaryKey" json:"location_id"`
	LocationCountryCode string `gorm:"column:location_country_code;type:varchar(3)" json:"location_country_code"`
	StateCode           string `gorm:"column:state_code;type:varchar(2)" json:"state_code"`
	CountyCode          string `gorm:"column:county_code" json:"county_code"`
	CongressionalCode   string `gorm:"column:congressional_code" json:"congressional_code"`
	CityName            string `gorm:"column:city_name" json:"city_name"`
	Zip5                string `gorm:"column:zip5;type:varchar(5)" json:"zip5"`
}

func (Location) TableName() string {
	return "references_location"
}
