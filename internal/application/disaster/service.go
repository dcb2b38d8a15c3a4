// Package disaster serves the disaster spending aggregations: it validates the
// request, routes it to one backend, builds the endpoint's query and pages the
// result.
package disaster

import (
	"context"
	"errors"
	"time"

	"spending-backend/internal/aggregation"
	"spending-backend/internal/pagination"
	"spending-backend/internal/pkg/apperr"
	"spending-backend/internal/submission"

	"github.com/rs/zerolog/log"
)

// ErrSearchUnavailable is returned for index routed requests when no index is configured.
var ErrSearchUnavailable = errors.New("search index is not configured")

// Periods resolves closed submission periods as of a reference time.
type Periods interface {
	Resolve(ctx context.Context, now time.Time) (submission.Snapshot, error)
}

// Service answers disaster endpoint requests.
type Service struct {
	Periods    Periods
	Relational aggregation.Backend
	Search     aggregation.Backend
	// Now supplies the reference date for closed periods. Defaults to time.Now.
	Now func() time.Time
}

// NewService wires a service. search may be nil.
func NewService(periods Periods, relational, search aggregation.Backend) *Service {
	return &Service{Periods: periods, Relational: relational, Search: search, Now: time.Now}
}

// SpendingResponse is the body of spending and loans endpoints.
type SpendingResponse struct {
	Results      []aggregation.Result `json:"results"`
	PageMetadata pagination.Metadata  `json:"page_metadata"`
}

// CountResponse is the body of count endpoints.
type CountResponse struct {
	Count int `json:"count"`
}

// Spending serves spending and loans endpoints.
func (s *Service) Spending(ctx context.Context, e Endpoint, req Request) (*SpendingResponse, error) {
	if e.Kind() == KindCount {
		return nil, apperr.Invalid("Endpoint %q does not return spending", e)
	}
	results, err := s.aggregate(ctx, e, req)
	if err != nil {
		return nil, err
	}
	page, meta, err := pagination.Page(results, req.Pagination)
	if err != nil {
		return nil, err
	}
	return &SpendingResponse{Results: page, PageMetadata: meta}, nil
}

// Count serves count endpoints: the number of distinct groups in scope. Object
// classes are counted at the object class level, not the major class.
func (s *Service) Count(ctx context.Context, e Endpoint, req Request) (*CountResponse, error) {
	if e.Kind() != KindCount {
		return nil, apperr.Invalid("Endpoint %q does not return a count", e)
	}
	results, err := s.aggregate(ctx, e, req)
	if err != nil {
		return nil, err
	}
	if e.Grouping() != aggregation.ByObjectClass {
		return &CountResponse{Count: len(results)}, nil
	}
	var n int
	for _, r := range results {
		n += len(r.Children)
	}
	return &CountResponse{Count: n}, nil
}

func (s *Service) aggregate(ctx context.Context, e Endpoint, req Request) ([]aggregation.Result, error) {
	if _, ok := endpoints[e]; !ok {
		return nil, apperr.Invalid("Unrecognized grouping dimension %q", e)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(req.Filter.Codes()) == 0 {
		return []aggregation.Result{}, nil
	}

	route := Route(e, req.Filter, req.Spending())
	backend := s.Relational
	if route == SearchIndex {
		if s.Search == nil {
			return nil, apperr.Upstream(ErrSearchUnavailable)
		}
		backend = s.Search
	}

	snap, err := s.Periods.Resolve(ctx, s.now())
	if err != nil {
		log.Error().Err(err).Str("endpoint", string(e)).Msg("resolve submission periods failed")
		return nil, apperr.Upstream(err)
	}
	b := Builder{Filter: req.Filter, Backend: route, Periods: snap}
	q, err := b.Build(e)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("endpoint", string(e)).
		Str("backend", route.String()).
		Str("source", q.Source.String()).
		Msg("disaster aggregation routed")

	results, err := backend.Aggregate(ctx, q)
	if err != nil {
		log.Error().Err(err).Str("endpoint", string(e)).Str("backend", route.String()).Msg("aggregation failed")
		return nil, apperr.Upstream(err)
	}
	if results == nil {
		results = []aggregation.Result{}
	}
	return results, nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
