package submission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"spending-backend/internal/domain"
	"spending-backend/internal/predicate"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Snapshot is the resolved submission state for one request.
type Snapshot struct {
	// Periods are the closed periods of the disaster era.
	Periods []Period
	// Submissions are the authoritative submission ids for those periods.
	Submissions []int64
}

// Closed matches line items from any closed period.
func (s Snapshot) Closed() predicate.Expr {
	return AllClosed(s.Periods)
}

// Final matches line items from authoritative submissions only.
func (s Snapshot) Final() predicate.Expr {
	return predicate.In(FieldSubmission, s.Submissions)
}

// Resolver loads the schedule and submission tables and keeps them for TTL.
// A zero TTL reloads on every call. The reference date is always supplied by
// the caller.
type Resolver struct {
	DB  *gorm.DB
	TTL time.Duration

	mu          sync.Mutex
	loadedAt    time.Time
	schedules   []domain.DABSSubmissionWindowSchedule
	submissions []domain.SubmissionAttributes
}

// Resolve returns the closed periods and authoritative submissions as of now.
func (r *Resolver) Resolve(ctx context.Context, now time.Time) (Snapshot, error) {
	schedules, subs, err := r.load(ctx, now)
	if err != nil {
		return Snapshot{}, err
	}
	periods := DEFCPeriods(Closed(schedules, now))
	return Snapshot{Periods: periods, Submissions: Authoritative(subs, periods)}, nil
}

// ClosedPeriods returns every closed period as of now, disaster era or not.
func (r *Resolver) ClosedPeriods(ctx context.Context, now time.Time) ([]Period, error) {
	schedules, _, err := r.load(ctx, now)
	if err != nil {
		return nil, err
	}
	return Closed(schedules, now), nil
}

func (r *Resolver) load(ctx context.Context, now time.Time) ([]domain.DABSSubmissionWindowSchedule, []domain.SubmissionAttributes, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.schedules != nil && now.Sub(r.loadedAt) >= 0 && now.Sub(r.loadedAt) < r.TTL {
		return r.schedules, r.submissions, nil
	}

	var schedules []domain.DABSSubmissionWindowSchedule
	if err := r.DB.WithContext(ctx).Find(&schedules).Error; err != nil {
		return nil, nil, fmt.Errorf("load submission windows: %w", err)
	}
	var subs []domain.SubmissionAttributes
	if err := r.DB.WithContext(ctx).
		Where("reporting_fiscal_year >= ?", DisasterStartYear).
		Find(&subs).Error; err != nil {
		return nil, nil, fmt.Errorf("load submissions: %w", err)
	}
	if schedules == nil {
		schedules = []domain.DABSSubmissionWindowSchedule{}
	}
	log.Debug().Int("schedules", len(schedules)).Int("submissions", len(subs)).Msg("submission state loaded")
	r.schedules, r.submissions, r.loadedAt = schedules, subs, now
	return schedules, subs, nil
}

// Invalidate drops the cached rows.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.schedules, r.submissions = nil, nil
	r.mu.Unlock()
}
