package domain

import "github.com/shopspring/decimal"

// FederalAccount groups one or more treasury accounts.
type FederalAccount struct {
	ID                 int64  `gorm:"column:id;primaryKey" json:"id"`
	FederalAccountCode string `gorm:"column:federal_account_code;not null" json:"federal_account_code"`
	AccountTitle       string `gorm:"column:account_title" json:"account_title"`
	AgencyIdentifier   string `gorm:"column:agency_identifier" json:"agency_identifier"`
	MainAccountCode    string `gorm:"column:main_account_code" json:"main_account_code"`
}

func (FederalAccount) TableName() string {
	return "federal_account"
}

// TreasuryAppropriationAccount is a TAS. Every line item references exactly one.
type TreasuryAppropriationAccount struct {
	TreasuryAccountIdentifier int64  `gorm:"column:treasury_account_identifier;primaryKey" json:"treasury_account_identifier"`
	FederalAccountID          *int64 `gorm:"column:federal_account_id;index" json:"federal_account_id"`
	FundingToptierAgencyID    *int64 `gorm:"column:funding_toptier_agency_id;index" json:"funding_toptier_agency_id"`
	TASRenderingLabel         string `gorm:"column:tas_rendering_label" json:"tas_rendering_label"`
	AccountTitle              string `gorm:"column:account_title" json:"account_title"`
}

func (TreasuryAppropriationAccount) TableName() string {
	return "treasury_appropriation_account"
}

// GTASSF133Balances carries the budgetary resources reported for a TAS.
type GTASSF133Balances struct {
	ID                                    int64           `gorm:"column:id;primaryKey" json:"id"`
	TreasuryAccountIdentifier             int64           `gorm:"column:treasury_account_identifier;not null;index" json:"treasury_account_identifier"`
	FiscalYear                            int             `gorm:"column:fiscal_year" json:"fiscal_year"`
	FiscalPeriod                          int             `gorm:"column:fiscal_period" json:"fiscal_period"`
	DisasterEmergencyFundCode             *string         `gorm:"column:disaster_emergency_fund_code;type:varchar(2)" json:"disaster_emergency_fund_code"`
	BudgetAuthorityAppropriationAmountCPE decimal.Decimal `gorm:"column:budget_authority_appropriation_amount_cpe;type:numeric(23,2);not null;default:0" json:"budget_authority_appropriation_amount_cpe"`
}

func (GTASSF133Balances) TableName() string {
	return "gtas_sf133_balances"
}

// ObjectClass rows roll up to a major object class.
type ObjectClass struct {
	ID                   int64  `gorm:"column:id;primaryKey" json:"id"`
	MajorObjectClass     string `gorm:"column:major_object_class;type:varchar(2);not null" json:"major_object_class"`
	MajorObjectClassName string `gorm:"column:major_object_class_name" json:"major_object_class_name"`
	ObjectClass          string `gorm:"column:object_class;type:varchar(4);not null" json:"object_class"`
	ObjectClassName      string `gorm:"column:object_class_name" json:"object_class_name"`
}

func (ObjectClass) TableName() string {
	return "object_class"
}

// DisasterEmergencyFundCode classifies a funding stream, e.g. group "covid_19".
type DisasterEmergencyFundCode struct {
	Code      string  `gorm:"column:code;type:varchar(2);primaryKey" json:"code"`
	PublicLaw string  `gorm:"column:public_law" json:"public_law"`
	Title     string  `gorm:"column:title" json:"title"`
	GroupName *string `gorm:"column:group_name" json:"group_name"`
}

func (DisasterEmergencyFundCode) TableName() string {
	return "disaster_emergency_fund_code"
}
