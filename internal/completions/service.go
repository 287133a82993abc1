package completions

import (
	"context"

	"github.com/azelenovic/fitcoach/internal/telemetry/metrics"
	"github.com/azelenovic/fitcoach/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

const DefaultFeedLimit = 20

type completionsRepo interface {
	Record(ctx context.Context, completion Completion) (*Completion, error)
	ListByUser(ctx context.Context, userID int) ([]Completion, error)
	ListByProgram(ctx context.Context, programID int) ([]Completion, error)
	ListBySession(ctx context.Context, sessionID int) ([]Completion, error)
	UserProgramStats(ctx context.Context, userID, programID int) (*UserProgramStats, error)
	ActivityFeed(ctx context.Context, programID, limit int) ([]FeedItem, error)
	Delete(ctx context.Context, id int) error
	Get(ctx context.Context, id int) (*Completion, error)
}

type Service struct {
	repo    completionsRepo
	metrics *metrics.Manager
}

func NewService(repo completionsRepo, metrics *metrics.Manager) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
	}
}

// Record validates optional attributes and inserts the completion. The
// feeling value is checked here so the row never carries an unknown one.
func (s *Service) Record(ctx context.Context, completion Completion) (_ *Completion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.completions.record")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if completion.Feeling != nil {
		if _, err := ParseFeeling(string(*completion.Feeling)); err != nil {
			return nil, err
		}
	}

	recorded, err := s.repo.Record(ctx, completion)
	if err != nil {
		return nil, err
	}

	s.metrics.CounterCompletions.Inc()
	log.Debugf("user %d completed session %d of program %d",
		recorded.UserID, recorded.SessionID, recorded.ProgramID)

	return recorded, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int) (_ []Completion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.completions.listbyuser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListByProgram(ctx context.Context, programID int) (_ []Completion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.completions.listbyprogram")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.ListByProgram(ctx, programID)
}

func (s *Service) ListBySession(ctx context.Context, sessionID int) (_ []Completion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.completions.listbysession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.ListBySession(ctx, sessionID)
}

func (s *Service) UserProgramStats(ctx context.Context, userID, programID int) (_ *UserProgramStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.completions.userprogramstats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.UserProgramStats(ctx, userID, programID)
}

func (s *Service) ActivityFeed(ctx context.Context, programID, limit int) (_ []FeedItem, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.completions.activityfeed")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	return s.repo.ActivityFeed(ctx, programID, limit)
}

// Delete removes one completion. The caller must own the row or hold the
// coach tier, checked against the stored record.
func (s *Service) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.completions.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int) (_ *Completion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.completions.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.Get(ctx, id)
}
