package aggregation

import (
	"testing"
	"time"

	"spending-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Models()...))
	return db
}

func ptr[T any](v T) *T { return &v }

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func date(y int, m time.Month, d int) datatypes.Date {
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// seedAccounts builds one federal account "gifts" with three treasury
// accounts and File C / File D rows in a single FY2020 P7 submission.
func seedAccounts(t *testing.T, db *gorm.DB) {
	create := func(v interface{}) { require.NoError(t, db.Create(v).Error) }

	create(&domain.ToptierAgency{ToptierAgencyID: 1, ToptierCode: "012", Name: "Department of Agriculture"})
	create(&domain.Agency{ID: 100, ToptierAgencyID: 1, ToptierFlag: true})
	create(&domain.FederalAccount{ID: 21, FederalAccountCode: "000-0000", AccountTitle: "gifts"})
	for _, tas := range []domain.TreasuryAppropriationAccount{
		{TreasuryAccountIdentifier: 22, TASRenderingLabel: "2020/99", AccountTitle: "flowers"},
		{TreasuryAccountIdentifier: 23, TASRenderingLabel: "2020/98", AccountTitle: "evergreens"},
		{TreasuryAccountIdentifier: 24, TASRenderingLabel: "2020/52", AccountTitle: "ferns"},
	} {
		tas.FederalAccountID = ptr(int64(21))
		tas.FundingToptierAgencyID = ptr(int64(1))
		create(&tas)
	}
	create(&[]domain.GTASSF133Balances{
		{ID: 1, TreasuryAccountIdentifier: 22, FiscalYear: 2020, FiscalPeriod: 7, BudgetAuthorityAppropriationAmountCPE: dec(4358)},
		{ID: 2, TreasuryAccountIdentifier: 23, FiscalYear: 2020, FiscalPeriod: 7, BudgetAuthorityAppropriationAmountCPE: dec(109237)},
		{ID: 3, TreasuryAccountIdentifier: 24, FiscalYear: 2020, FiscalPeriod: 7, BudgetAuthorityAppropriationAmountCPE: dec(39248)},
	})
	create(&domain.SubmissionAttributes{
		SubmissionID:           1,
		ToptierCode:            "012",
		ReportingFiscalYear:    2020,
		ReportingFiscalQuarter: 3,
		ReportingFiscalPeriod:  7,
		QuarterFormatFlag:      false,
		ReportingPeriodStart:   date(2020, 5, 15),
		ReportingPeriodEnd:     date(2020, 5, 29),
	})
	create(&[]domain.ObjectClass{
		{ID: 1, MajorObjectClass: "10", MajorObjectClassName: "Personnel compensation and benefits", ObjectClass: "111", ObjectClassName: "Full-time permanent"},
		{ID: 2, MajorObjectClass: "10", MajorObjectClassName: "Personnel compensation and benefits", ObjectClass: "113", ObjectClassName: "Other than full-time permanent"},
		{ID: 3, MajorObjectClass: "40", MajorObjectClassName: "Grants and fixed charges", ObjectClass: "410", ObjectClassName: "Grants, subsidies, and contributions"},
	})

	fileC := []struct {
		defc        string
		tas, oc     int64
		obl, outlay float64
	}{
		{"M", 22, 1, 100, 111},
		{"L", 23, 1, 200, 222},
		{"9", 23, 2, 2, 2},
		{"O", 23, 2, 1, 1},
		{"N", 24, 3, 3, 333},
	}
	for i, r := range fileC {
		create(&domain.FinancialAccountsByProgramActivityObjectClass{
			ID:                                         int64(i + 1),
			SubmissionID:                               1,
			TreasuryAccountID:                          ptr(r.tas),
			ObjectClassID:                              ptr(r.oc),
			DisasterEmergencyFundCode:                  ptr(r.defc),
			FinalOfFY:                                  true,
			ObligationsIncurredByProgramObjectClassCPE: dec(r.obl),
			GrossOutlayAmountByProgramObjectClassCPE:   dec(r.outlay),
		})
	}

	create(&[]domain.Award{
		{ID: 111, Type: ptr("A"), TotalLoanValue: dec(1111)},
		{ID: 222, Type: ptr("A"), TotalLoanValue: dec(2222)},
		{ID: 333, Type: ptr("07"), TotalLoanValue: dec(3333)},
		{ID: 444, Type: ptr("08"), TotalLoanValue: dec(4444)},
	})
	fileD := []struct {
		defc        string
		tas, oc     int64
		award       *int64
		obl, outlay float64
	}{
		{"M", 22, 1, nil, 100, 111},
		{"L", 23, 1, ptr(int64(111)), 200, 222},
		{"9", 23, 2, ptr(int64(222)), 2, 2},
		{"O", 23, 2, ptr(int64(333)), 1, 1},
		{"N", 24, 3, ptr(int64(333)), 3, 333},
		{"N", 24, 3, ptr(int64(444)), 5, 8},
	}
	for i, r := range fileD {
		create(&domain.FinancialAccountsByAwards{
			ID:                          int64(i + 1),
			SubmissionID:                1,
			TreasuryAccountID:           ptr(r.tas),
			ObjectClassID:               ptr(r.oc),
			AwardID:                     r.award,
			DisasterEmergencyFundCode:   ptr(r.defc),
			TransactionObligatedAmount:  dec(r.obl),
			GrossOutlayAmountByAwardCPE: dec(r.outlay),
		})
	}
}
