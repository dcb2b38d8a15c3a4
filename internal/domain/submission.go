package domain

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionAttributes is one agency's report for a fiscal period. Monthly
// submissions have QuarterFormatFlag false.
type SubmissionAttributes struct {
	SubmissionID           int64          `gorm:"column:submission_id;primaryKey" json:"submission_id"`
	ToptierCode            string         `gorm:"column:toptier_code;type:varchar(4);index" json:"toptier_code"`
	ReportingFiscalYear    int            `gorm:"column:reporting_fiscal_year;not null" json:"reporting_fiscal_year"`
	ReportingFiscalQuarter int            `gorm:"column:reporting_fiscal_quarter;not null" json:"reporting_fiscal_quarter"`
	ReportingFiscalPeriod  int            `gorm:"column:reporting_fiscal_period;not null" json:"reporting_fiscal_period"`
	QuarterFormatFlag      bool           `gorm:"column:quarter_format_flag;not null" json:"quarter_format_flag"`
	ReportingPeriodStart   datatypes.Date `gorm:"column:reporting_period_start" json:"reporting_period_start"`
	ReportingPeriodEnd     datatypes.Date `gorm:"column:reporting_period_end" json:"reporting_period_end"`
}

func (SubmissionAttributes) TableName() string {
	return "submission_attributes"
}

// DABSSubmissionWindowSchedule publishes a period once its reveal date passes.
type DABSSubmissionWindowSchedule struct {
	ID                      int64     `gorm:"column:id;primaryKey" json:"id"`
	SubmissionFiscalYear    int       `gorm:"column:submission_fiscal_year;not null" json:"submission_fiscal_year"`
	SubmissionFiscalQuarter int       `gorm:"column:submission_fiscal_quarter;not null" json:"submission_fiscal_quarter"`
	SubmissionFiscalMonth   int       `gorm:"column:submission_fiscal_month;not null" json:"submission_fiscal_month"`
	IsQuarter               bool      `gorm:"column:is_quarter;not null" json:"is_quarter"`
	SubmissionRevealDate    time.Time `gorm:"column:submission_reveal_date;not null" json:"submission_reveal_date"`
}

func (DABSSubmissionWindowSchedule) TableName() string {
	return "dabs_submission_window_schedule"
}
