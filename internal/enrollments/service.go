package enrollments

import (
	"context"

	"github.com/azelenovic/fitcoach/internal/telemetry/metrics"
	"github.com/azelenovic/fitcoach/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=service.go -destination=mock_repo.go -package=enrollments

type enrollmentsRepo interface {
	Enroll(ctx context.Context, userID, programID int) (*Enrollment, error)
	Unenroll(ctx context.Context, userID, programID int) error
	UpdateStatus(ctx context.Context, userID, programID int, status Status) error
	IsEnrolled(ctx context.Context, userID, programID int) (bool, error)
	UsersByProgram(ctx context.Context, programID int) ([]EnrolledUser, error)
	ProgramsByUser(ctx context.Context, userID int) ([]UserProgram, error)
	ProgramStats(ctx context.Context, programID int) (*ProgramStats, error)
}

// Service sits between the HTTP handler and the repo: status validation,
// domain metrics, tracing.
type Service struct {
	repo    enrollmentsRepo
	metrics *metrics.Manager
}

func NewService(repo enrollmentsRepo, metrics *metrics.Manager) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
	}
}

func (s *Service) Enroll(ctx context.Context, userID, programID int) (_ *Enrollment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.enrollments.enroll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	enrollment, err := s.repo.Enroll(ctx, userID, programID)
	if err != nil {
		return nil, err
	}

	s.metrics.CounterEnrollments.Inc()
	log.Debugf("user %d enrolled in program %d", userID, programID)

	return enrollment, nil
}

func (s *Service) Unenroll(ctx context.Context, userID, programID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.enrollments.unenroll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.repo.Unenroll(ctx, userID, programID); err != nil {
		return err
	}

	s.metrics.CounterUnenrollments.Inc()
	log.Debugf("user %d unenrolled from program %d", userID, programID)

	return nil
}

// UpdateStatus validates the raw status value before touching the repo,
// so an invalid value never reaches the row.
func (s *Service) UpdateStatus(ctx context.Context, userID, programID int, rawStatus string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.enrollments.updatestatus")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	status, err := ParseStatus(rawStatus)
	if err != nil {
		return err
	}

	return s.repo.UpdateStatus(ctx, userID, programID, status)
}

func (s *Service) IsEnrolled(ctx context.Context, userID, programID int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.enrollments.isenrolled")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.IsEnrolled(ctx, userID, programID)
}

func (s *Service) UsersByProgram(ctx context.Context, programID int) (_ []EnrolledUser, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.enrollments.usersbyprogram")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.UsersByProgram(ctx, programID)
}

func (s *Service) ProgramsByUser(ctx context.Context, userID int) (_ []UserProgram, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.enrollments.programsbyuser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.ProgramsByUser(ctx, userID)
}

func (s *Service) ProgramStats(ctx context.Context, programID int) (_ *ProgramStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.enrollments.programstats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.repo.ProgramStats(ctx, programID)
}
