package aggregation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"spending-backend/internal/predicate"
)

// SearchClient runs a query body against an index and returns the raw
// "aggregations" object of the response.
type SearchClient interface {
	Search(ctx context.Context, index string, body map[string]any) ([]byte, error)
}

// DefaultMaxBuckets caps the number of groups requested from the index.
const DefaultMaxBuckets = 1000

const (
	groupAgg      = "group_by_agg_key"
	subGroupAgg   = "group_by_sub_agg_key"
	obligationAgg = "sum_obligation"
	outlayAgg     = "sum_outlay"
	filteredAgg   = "filtered"
	awardsAgg     = "group_by_award"
	loanAgg       = "loan_value"
	loanSumAgg    = "sum_loan_value"
	awardCountAgg = "count_awards"
	centsScript   = "_value * 100"
)

// awardPrecision is the cardinality threshold below which award counts are exact.
const awardPrecision = 40000

type searchKeys struct {
	agg, sub, query string
}

var searchGroupings = map[Grouping]searchKeys{
	ByAgency:    {agg: "funding_toptier_agency_agg_key", sub: "funding_subtier_agency_agg_key", query: "funding_toptier_agency_name"},
	ByCFDA:      {agg: "cfda_agg_key", query: "cfda_title"},
	ByRecipient: {agg: "recipient_agg_key", query: "recipient_name"},
}

var searchColumns = predicate.ColumnMap{
	FieldDEFC:            "disaster_emergency_fund_code",
	FieldObligation:      "transaction_obligated_amount",
	FieldOutlay:          "gross_outlay_amount_by_award_cpe",
	FieldTreasuryAccount: "treasury_account_id",
	FieldFundingAgency:   "funding_toptier_agency_id",
	FieldAward:           "award_id",
	FieldAwardType:       "type",
	FieldLoanValue:       "total_loan_value",
}

// Search aggregates award line item documents with a two level terms
// aggregation. Sums come back in cents. Loan queries add the face value of
// loan, taken once per award, and the distinct award count to every level.
type Search struct {
	Client     SearchClient
	Index      string
	MaxBuckets int
}

var _ Backend = (*Search)(nil)

// Columns returns the document fields used to render predicates for a grouping.
func (s *Search) Columns(g Grouping) predicate.Columns {
	return predicate.Overlay{
		predicate.ColumnMap{FieldDescription: searchGroupings[g].query},
		searchColumns,
	}
}

// Body builds the request body for q.
func (s *Search) Body(q Query) (map[string]any, error) {
	keys, ok := searchGroupings[q.Grouping]
	if !ok {
		return nil, fmt.Errorf("search backend cannot group by %q", q.Grouping)
	}
	cols := s.Columns(q.Grouping)
	size := s.MaxBuckets
	if size <= 0 {
		size = DefaultMaxBuckets
	}

	sums := func() map[string]any {
		m := map[string]any{
			obligationAgg: sumAgg(cols.Column(FieldObligation), q.Obligation, cols),
			outlayAgg:     sumAgg(cols.Column(FieldOutlay), q.Outlay, cols),
		}
		if q.Loans {
			award := cols.Column(FieldAward)
			m[awardsAgg] = map[string]any{
				"terms": map[string]any{"field": award, "size": size},
				"aggs": map[string]any{
					loanAgg: map[string]any{"max": map[string]any{
						"field":  cols.Column(FieldLoanValue),
						"script": map[string]any{"source": centsScript},
					}},
				},
			}
			m[loanSumAgg] = map[string]any{"sum_bucket": map[string]any{"buckets_path": awardsAgg + ">" + loanAgg}}
			m[awardCountAgg] = map[string]any{"cardinality": map[string]any{"field": award, "precision_threshold": awardPrecision}}
		}
		return m
	}
	aggs := sums()
	if keys.sub != "" {
		aggs[subGroupAgg] = map[string]any{
			"terms": map[string]any{"field": keys.sub, "size": size},
			"aggs":  sums(),
		}
	}
	return map[string]any{
		"size":  0,
		"query": predicate.Search(q.Where, cols),
		"aggs": map[string]any{
			groupAgg: map[string]any{
				"terms": map[string]any{"field": keys.agg, "size": size},
				"aggs":  aggs,
			},
		},
	}, nil
}

func sumAgg(field string, when predicate.Expr, cols predicate.Columns) map[string]any {
	sum := map[string]any{"sum": map[string]any{
		"field":  field,
		"script": map[string]any{"source": centsScript},
	}}
	if sumsAll(when) {
		return sum
	}
	return map[string]any{
		"filter": predicate.Search(when, cols),
		"aggs":   map[string]any{filteredAgg: sum},
	}
}

// Aggregate issues the query and reshapes the buckets.
func (s *Search) Aggregate(ctx context.Context, q Query) ([]Result, error) {
	body, err := s.Body(q)
	if err != nil {
		return nil, err
	}
	raw, err := s.Client.Search(ctx, s.Index, body)
	if err != nil {
		return nil, err
	}
	return ParseBuckets(raw)
}

type metric struct {
	Value    *float64 `json:"value"`
	Filtered *metric  `json:"filtered"`
}

func (m *metric) value() float64 {
	switch {
	case m == nil:
		return 0
	case m.Filtered != nil:
		return m.Filtered.value()
	case m.Value != nil:
		return *m.Value
	}
	return 0
}

type bucket struct {
	Key        string  `json:"key"`
	DocCount   int64   `json:"doc_count"`
	Obligation *metric `json:"sum_obligation"`
	Outlay     *metric `json:"sum_outlay"`
	LoanValue  *metric `json:"sum_loan_value"`
	Awards     *metric `json:"count_awards"`
	Sub        *struct {
		Buckets []bucket `json:"buckets"`
	} `json:"group_by_sub_agg_key"`
}

type bucketKey struct {
	ID   json.RawMessage `json:"id"`
	Code string          `json:"code"`
	Name string          `json:"name"`
}

// ParseBuckets turns an aggregations object into results. Bucket keys are
// JSON objects carrying id, code and name.
func ParseBuckets(raw []byte) ([]Result, error) {
	var aggs map[string]struct {
		Buckets []bucket `json:"buckets"`
	}
	if err := json.Unmarshal(raw, &aggs); err != nil {
		return nil, fmt.Errorf("decode aggregations: %w", err)
	}
	buckets := aggs[groupAgg].Buckets
	results := make([]Result, 0, len(buckets))
	for _, b := range buckets {
		row, err := b.row()
		if err != nil {
			return nil, err
		}
		children := []Row{}
		if b.Sub != nil {
			for _, cb := range b.Sub.Buckets {
				child, err := cb.row()
				if err != nil {
					return nil, err
				}
				children = append(children, child)
			}
		}
		sortRows(children)
		results = append(results, Result{Row: row, Children: children})
	}
	return results, nil
}

func (b bucket) row() (Row, error) {
	var key bucketKey
	if err := json.Unmarshal([]byte(b.Key), &key); err != nil {
		return Row{}, fmt.Errorf("decode bucket key %q: %w", b.Key, err)
	}
	id, err := strconv.ParseInt(strings.Trim(string(key.ID), `"`), 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("bucket key %q has no integer id", b.Key)
	}
	row := Row{
		ID:          id,
		Code:        key.Code,
		Description: key.Name,
		Count:       b.DocCount,
		Obligation:  FromCents(b.Obligation.value()),
		Outlay:      FromCents(b.Outlay.value()),
	}
	if b.LoanValue != nil {
		face := FromCents(b.LoanValue.value())
		row.FaceValueOfLoan = &face
		row.Count = int64(b.Awards.value())
	}
	return row, nil
}
