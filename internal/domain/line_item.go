package domain

import "github.com/shopspring/decimal"

// FinancialAccountsByProgramActivityObjectClass is a File C line item: account
// level spending that is not attributable to any single award.
type FinancialAccountsByProgramActivityObjectClass struct {
	ID                                         int64           `gorm:"column:financial_accounts_by_program_activity_object_class_id;primaryKey" json:"id"`
	SubmissionID                               int64           `gorm:"column:submission_id;not null;index" json:"submission_id"`
	TreasuryAccountID                          *int64          `gorm:"column:treasury_account_id;index" json:"treasury_account_id"`
	ObjectClassID                              *int64          `gorm:"column:object_class_id" json:"object_class_id"`
	DisasterEmergencyFundCode                  *string         `gorm:"column:disaster_emergency_fund_code;type:varchar(2);index" json:"disaster_emergency_fund_code"`
	FinalOfFY                                  bool            `gorm:"column:final_of_fy;not null;default:false" json:"final_of_fy"`
	ObligationsIncurredByProgramObjectClassCPE decimal.Decimal `gorm:"column:obligations_incurred_by_program_object_class_cpe;type:numeric(23,2);not null;default:0" json:"obligations_incurred_by_program_object_class_cpe"`
	GrossOutlayAmountByProgramObjectClassCPE   decimal.Decimal `gorm:"column:gross_outlay_amount_by_program_object_class_cpe;type:numeric(23,2);not null;default:0" json:"gross_outlay_amount_by_program_object_class_cpe"`
}

func (FinancialAccountsByProgramActivityObjectClass) TableName() string {
	return "financial_accounts_by_program_activity_object_class"
}

// FinancialAccountsByAwards is a File D line item. AwardID is nil when the row
// could not be linked to an award.
type FinancialAccountsByAwards struct {
	ID                          int64           `gorm:"column:financial_accounts_by_awards_id;primaryKey" json:"id"`
	SubmissionID                int64           `gorm:"column:submission_id;not null;index" json:"submission_id"`
	TreasuryAccountID           *int64          `gorm:"column:treasury_account_id;index" json:"treasury_account_id"`
	ObjectClassID               *int64          `gorm:"column:object_class_id" json:"object_class_id"`
	AwardID                     *int64          `gorm:"column:award_id;index" json:"award_id"`
	DisasterEmergencyFundCode   *string         `gorm:"column:disaster_emergency_fund_code;type:varchar(2);index" json:"disaster_emergency_fund_code"`
	PIID                        *string         `gorm:"column:piid" json:"piid"`
	ParentAwardID               *string         `gorm:"column:parent_award_id" json:"parent_award_id"`
	FAIN                        *string         `gorm:"column:fain" json:"fain"`
	URI                         *string         `gorm:"column:uri" json:"uri"`
	TransactionObligatedAmount  decimal.Decimal `gorm:"column:transaction_obligated_amount;type:numeric(23,2);not null;default:0" json:"transaction_obligated_amount"`
	GrossOutlayAmountByAwardCPE decimal.Decimal `gorm:"column:gross_outlay_amount_by_award_cpe;type:numeric(23,2);not null;default:0" json:"gross_outlay_amount_by_award_cpe"`
}

func (FinancialAccountsByAwards) TableName() string {
	return "financial_accounts_by_awards"
}

// Models lists every table the aggregation layer reads, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&ToptierAgency{},
		&SubtierAgency{},
		&Agency{},
		&FederalAccount{},
		&TreasuryAppropriationAccount{},
		&GTASSF133Balances{},
		&ObjectClass{},
		&DisasterEmergencyFundCode{},
		&SubmissionAttributes{},
		&DABSSubmissionWindowSchedule{},
		&Location{},
		&Award{},
		&TransactionNormalized{},
		&FinancialAccountsByProgramActivityObjectClass{},
		&FinancialAccountsByAwards{},
	}
}
