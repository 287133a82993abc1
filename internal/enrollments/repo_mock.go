package enrollments

import (
	"context"
	"sync"
	"time"
)

// repoMock keeps enrollments and completion counts in memory, enough to
// drive the handler and service tests without a database.
type repoMock struct {
	mutex       sync.Mutex
	enrollments map[int]Enrollment
	completions map[[2]int]int // (userID, programID) -> count
	nextID      int
}

func newRepoMock() *repoMock {
	return &repoMock{
		enrollments: make(map[int]Enrollment),
		completions: make(map[[2]int]int),
		nextID:      1,
	}
}

func (r *repoMock) find(userID, programID int) (Enrollment, bool) {
	for _, e := range r.enrollments {
		if e.UserID == userID && e.ProgramID == programID {
			return e, true
		}
	}
	return Enrollment{}, false
}

func (r *repoMock) Enroll(_ context.Context, userID, programID int) (*Enrollment, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.find(userID, programID); exists {
		return nil, ErrDuplicateEnrollment
	}

	enrollment := Enrollment{
		ID:         r.nextID,
		UserID:     userID,
		ProgramID:  programID,
		EnrolledAt: time.Now(),
		Status:     StatusActive,
	}
	r.nextID++
	r.enrollments[enrollment.ID] = enrollment
	return &enrollment, nil
}

func (r *repoMock) Unenroll(_ context.Context, userID, programID int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	enrollment, exists := r.find(userID, programID)
	if !exists {
		return ErrEnrollmentNotFound
	}
	delete(r.enrollments, enrollment.ID)
	return nil
}

func (r *repoMock) UpdateStatus(_ context.Context, userID, programID int, status Status) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	enrollment, exists := r.find(userID, programID)
	if !exists {
		return ErrEnrollmentNotFound
	}
	enrollment.Status = status
	r.enrollments[enrollment.ID] = enrollment
	return nil
}

func (r *repoMock) IsEnrolled(_ context.Context, userID, programID int) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	_, exists := r.find(userID, programID)
	return exists, nil
}

func (r *repoMock) UsersByProgram(_ context.Context, programID int) ([]EnrolledUser, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	users := make([]EnrolledUser, 0)
	for _, e := range r.enrollments {
		if e.ProgramID != programID {
			continue
		}
		users = append(users, EnrolledUser{
			UserID:      e.UserID,
			Status:      e.Status,
			EnrolledAt:  e.EnrolledAt,
			Completions: r.completions[[2]int{e.UserID, e.ProgramID}],
		})
	}
	return users, nil
}

func (r *repoMock) ProgramsByUser(_ context.Context, userID int) ([]UserProgram, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	programs := make([]UserProgram, 0)
	for _, e := range r.enrollments {
		if e.UserID != userID {
			continue
		}
		programs = append(programs, UserProgram{
			ProgramID:   e.ProgramID,
			Status:      e.Status,
			EnrolledAt:  e.EnrolledAt,
			Completions: r.completions[[2]int{e.UserID, e.ProgramID}],
		})
	}
	return programs, nil
}

func (r *repoMock) ProgramStats(_ context.Context, programID int) (*ProgramStats, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var stats ProgramStats
	for _, e := range r.enrollments {
		if e.ProgramID != programID {
			continue
		}
		stats.TotalEnrolled++
		if e.Status == StatusActive {
			stats.ActiveUsers++
		}
	}
	for key, count := range r.completions {
		if key[1] == programID {
			stats.TotalCompletions += count
		}
	}
	return &stats, nil
}
