package enrollments

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a user's enrollment in a program.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

var (
	ErrInvalidStatus       = errors.New("invalid enrollment status")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrDuplicateEnrollment = errors.New("user already enrolled in program")
	ErrProgramNotFound     = errors.New("program not found")
)

// ParseStatus validates a raw status value. Any of the four statuses is
// reachable from any other, there is no transition graph on top of this.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusPaused, StatusCompleted, StatusAbandoned:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

type Enrollment struct {
	ID         int       `json:"id"`
	UserID     int       `json:"userId"`
	ProgramID  int       `json:"programId"`
	EnrolledAt time.Time `json:"enrolledAt"`
	Status     Status    `json:"status"`
}

// EnrolledUser is one row of a program's member listing, enriched with
// that member's completion count for the program.
type EnrolledUser struct {
	UserID      int       `json:"userId"`
	DisplayName string    `json:"displayName"`
	Status      Status    `json:"status"`
	EnrolledAt  time.Time `json:"enrolledAt"`
	Completions int       `json:"completions"`
}

// UserProgram is one row of a user's program listing.
type UserProgram struct {
	ProgramID   int       `json:"programId"`
	Title       string    `json:"title"`
	Difficulty  string    `json:"difficulty"`
	Status      Status    `json:"status"`
	EnrolledAt  time.Time `json:"enrolledAt"`
	Completions int       `json:"completions"`
}

// ProgramStats is computed on read, never stored.
type ProgramStats struct {
	TotalEnrolled    int `json:"total_enrolled"`
	ActiveUsers      int `json:"active_users"`
	TotalCompletions int `json:"total_completions"`
}
