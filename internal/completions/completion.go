package completions

import (
	"errors"
	"time"
)

// Feeling is the optional, ordinal self-assessment attached to a completion.
type Feeling string

const (
	FeelingTerrible  Feeling = "terrible"
	FeelingBad       Feeling = "bad"
	FeelingOkay      Feeling = "okay"
	FeelingGood      Feeling = "good"
	FeelingExcellent Feeling = "excellent"
)

var (
	ErrInvalidFeeling     = errors.New("invalid feeling")
	ErrCompletionNotFound = errors.New("completion not found")
)

func ParseFeeling(f string) (Feeling, error) {
	switch Feeling(f) {
	case FeelingTerrible, FeelingBad, FeelingOkay, FeelingGood, FeelingExcellent:
		return Feeling(f), nil
	default:
		return "", ErrInvalidFeeling
	}
}

// Completion is an immutable record that a user finished one session of
// a program. There is no update operation, only record and delete.
type Completion struct {
	ID              int       `json:"id"`
	UserID          int       `json:"userId"`
	ProgramID       int       `json:"programId"`
	SessionID       int       `json:"sessionId"`
	CompletedAt     time.Time `json:"completedAt"`
	DurationMinutes *int      `json:"durationMinutes,omitempty"`
	PhotoURL        *string   `json:"photoUrl,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	Feeling         *Feeling  `json:"feeling,omitempty"`
}

// UserProgramStats is computed from raw completion rows on every read.
type UserProgramStats struct {
	TotalCompletions        int        `json:"total_completions"`
	UniqueSessionsCompleted int        `json:"unique_sessions_completed"`
	TotalMinutes            int        `json:"total_minutes"`
	LastCompletion          *time.Time `json:"last_completion"`
}

// FeedItem is one row of a program's activity feed.
type FeedItem struct {
	CompletionID    int       `json:"completionId"`
	UserID          int       `json:"userId"`
	UserDisplayName string    `json:"userDisplayName"`
	SessionID       int       `json:"sessionId"`
	SessionTitle    string    `json:"sessionTitle"`
	CompletedAt     time.Time `json:"completedAt"`
	DurationMinutes *int      `json:"durationMinutes,omitempty"`
	Feeling         *Feeling  `json:"feeling,omitempty"`
}
