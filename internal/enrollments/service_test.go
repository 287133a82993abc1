package enrollments

import (
	"context"
	"errors"
	"testing"

	"github.com/azelenovic/fitcoach/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestService_Enroll_IncrementsCounter(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockenrollmentsRepo(ctrl)
	mm := metrics.NewTestManager()
	service := NewService(repo, mm)

	repo.EXPECT().
		Enroll(gomock.Any(), 7, 3).
		Return(&Enrollment{ID: 1, UserID: 7, ProgramID: 3, Status: StatusActive}, nil)

	enrollment, err := service.Enroll(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, enrollment.Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(mm.CounterEnrollments))
}

func TestService_Enroll_DuplicateLeavesCounter(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockenrollmentsRepo(ctrl)
	mm := metrics.NewTestManager()
	service := NewService(repo, mm)

	repo.EXPECT().
		Enroll(gomock.Any(), 7, 3).
		Return(nil, ErrDuplicateEnrollment)

	_, err := service.Enroll(context.Background(), 7, 3)
	require.ErrorIs(t, err, ErrDuplicateEnrollment)
	assert.Equal(t, float64(0), testutil.ToFloat64(mm.CounterEnrollments))
}

func TestService_Unenroll(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockenrollmentsRepo(ctrl)
	mm := metrics.NewTestManager()
	service := NewService(repo, mm)

	repo.EXPECT().Unenroll(gomock.Any(), 7, 3).Return(nil)
	require.NoError(t, service.Unenroll(context.Background(), 7, 3))
	assert.Equal(t, float64(1), testutil.ToFloat64(mm.CounterUnenrollments))

	repo.EXPECT().Unenroll(gomock.Any(), 7, 4).Return(ErrEnrollmentNotFound)
	assert.ErrorIs(t, service.Unenroll(context.Background(), 7, 4), ErrEnrollmentNotFound)
	assert.Equal(t, float64(1), testutil.ToFloat64(mm.CounterUnenrollments))
}

func TestService_UpdateStatus_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockenrollmentsRepo(ctrl)
	service := NewService(repo, metrics.NewTestManager())

	// invalid status never reaches the repo
	err := service.UpdateStatus(context.Background(), 7, 3, "vanished")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	for _, status := range []Status{StatusActive, StatusPaused, StatusCompleted, StatusAbandoned} {
		repo.EXPECT().UpdateStatus(gomock.Any(), 7, 3, status).Return(nil)
		assert.NoError(t, service.UpdateStatus(context.Background(), 7, 3, string(status)))
	}
}

func TestService_UpdateStatus_RepoFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockenrollmentsRepo(ctrl)
	service := NewService(repo, metrics.NewTestManager())

	dbErr := errors.New("connection reset")
	repo.EXPECT().UpdateStatus(gomock.Any(), 7, 3, StatusPaused).Return(dbErr)

	err := service.UpdateStatus(context.Background(), 7, 3, "paused")
	assert.ErrorIs(t, err, dbErr)
}

func TestService_EnrollCheckUnenroll_Flow(t *testing.T) {
	repo := newRepoMock()
	service := NewService(repo, metrics.NewTestManager())
	ctx := context.Background()

	enrolled, err := service.IsEnrolled(ctx, 7, 3)
	require.NoError(t, err)
	assert.False(t, enrolled)

	_, err = service.Enroll(ctx, 7, 3)
	require.NoError(t, err)

	enrolled, err = service.IsEnrolled(ctx, 7, 3)
	require.NoError(t, err)
	assert.True(t, enrolled)

	require.NoError(t, service.Unenroll(ctx, 7, 3))

	enrolled, err = service.IsEnrolled(ctx, 7, 3)
	require.NoError(t, err)
	assert.False(t, enrolled)
}
