// Package submission decides which reporting periods are closed and which
// submissions are authoritative for published totals.
package submission

import (
	"sort"
	"time"

	"spending-backend/internal/domain"
	"spending-backend/internal/predicate"
)

// Logical submission fields used in predicates.
const (
	FieldSubmission    = "submission_id"
	FieldFiscalYear    = "reporting_fiscal_year"
	FieldFiscalPeriod  = "reporting_fiscal_period"
	FieldQuarterFormat = "quarter_format_flag"
	FieldPeriodStart   = "reporting_period_start"
)

// Disaster reporting begins with fiscal year 2020 period 7.
const (
	DisasterStartYear   = 2020
	DisasterStartPeriod = 7
)

// ReportingPeriodMin is the earliest reporting period start the data set supports.
var ReportingPeriodMin = time.Date(2016, time.October, 1, 0, 0, 0, 0, time.UTC)

// Period is the latest closed fiscal month of a fiscal year for one
// reporting format.
type Period struct {
	FiscalYear  int
	FiscalMonth int
	IsQuarter   bool
}

type periodKey struct {
	year      int
	isQuarter bool
}

// Closed returns, per fiscal year and format, the latest month whose reveal
// date is on or before now.
func Closed(schedules []domain.DABSSubmissionWindowSchedule, now time.Time) []Period {
	latest := map[periodKey]int{}
	for _, s := range schedules {
		if s.SubmissionRevealDate.After(now) {
			continue
		}
		k := periodKey{s.SubmissionFiscalYear, s.IsQuarter}
		if s.SubmissionFiscalMonth > latest[k] {
			latest[k] = s.SubmissionFiscalMonth
		}
	}
	out := make([]Period, 0, len(latest))
	for k, m := range latest {
		out = append(out, Period{FiscalYear: k.year, FiscalMonth: m, IsQuarter: k.isQuarter})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FiscalYear != out[j].FiscalYear {
			return out[i].FiscalYear < out[j].FiscalYear
		}
		return !out[i].IsQuarter && out[j].IsQuarter
	})
	return out
}

// DEFCPeriods keeps the periods that fall inside the disaster reporting era.
func DEFCPeriods(periods []Period) []Period {
	var out []Period
	for _, p := range periods {
		if p.FiscalYear > DisasterStartYear || (p.FiscalYear == DisasterStartYear && p.FiscalMonth >= DisasterStartPeriod) {
			out = append(out, p)
		}
	}
	return out
}

// AllClosed matches line items whose submission falls in a closed period.
// It is False when nothing has closed.
func AllClosed(periods []Period) predicate.Expr {
	terms := make([]predicate.Expr, 0, len(periods))
	for _, p := range periods {
		terms = append(terms, predicate.And(
			predicate.Eq(FieldFiscalYear, p.FiscalYear),
			predicate.Eq(FieldQuarterFormat, p.IsQuarter),
			predicate.Lte(FieldFiscalPeriod, p.FiscalMonth),
		))
	}
	return predicate.And(predicate.Or(terms...), predicate.Gte(FieldPeriodStart, ReportingPeriodMin))
}

// FinalPeriod matches line items from the latest closed period of each
// fiscal year and format.
func FinalPeriod(periods []Period) predicate.Expr {
	terms := make([]predicate.Expr, 0, len(periods))
	for _, p := range periods {
		terms = append(terms, predicate.And(
			predicate.Eq(FieldFiscalYear, p.FiscalYear),
			predicate.Eq(FieldQuarterFormat, p.IsQuarter),
			predicate.Eq(FieldFiscalPeriod, p.FiscalMonth),
		))
	}
	return predicate.Or(terms...)
}

type agencyYear struct {
	agency string
	year   int
}

// Authoritative selects, per agency and fiscal year, the one submission whose
// cumulative amounts are published: a submission from the final closed period
// of its format, preferring the later period, and the quarterly submission
// when both formats end on the same period. Monthly and quarterly submissions
// covering the same period are never both selected.
func Authoritative(subs []domain.SubmissionAttributes, periods []Period) []int64 {
	final := make(map[periodKey]int, len(periods))
	for _, p := range periods {
		final[periodKey{p.FiscalYear, p.IsQuarter}] = p.FiscalMonth
	}
	best := map[agencyYear]domain.SubmissionAttributes{}
	for _, s := range subs {
		m, ok := final[periodKey{s.ReportingFiscalYear, s.QuarterFormatFlag}]
		if !ok || s.ReportingFiscalPeriod != m {
			continue
		}
		k := agencyYear{s.ToptierCode, s.ReportingFiscalYear}
		if cur, ok := best[k]; !ok || supersedes(s, cur) {
			best[k] = s
		}
	}
	ids := make([]int64, 0, len(best))
	for _, s := range best {
		ids = append(ids, s.SubmissionID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func supersedes(a, b domain.SubmissionAttributes) bool {
	if a.ReportingFiscalPeriod != b.ReportingFiscalPeriod {
		return a.ReportingFiscalPeriod > b.ReportingFiscalPeriod
	}
	if a.QuarterFormatFlag != b.QuarterFormatFlag {
		return a.QuarterFormatFlag
	}
	return a.SubmissionID > b.SubmissionID
}
