package programs

import (
	"errors"
	"time"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

var ErrInvalidDifficulty = errors.New("invalid difficulty")

func ParseDifficulty(d string) (Difficulty, error) {
	switch Difficulty(d) {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return Difficulty(d), nil
	default:
		return "", ErrInvalidDifficulty
	}
}

type Program struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Difficulty    Difficulty `json:"difficulty"`
	DurationWeeks int        `json:"durationWeeks"`
	CoachID       int        `json:"coachId"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Session is one workout unit of a program, ordered by day number.
type Session struct {
	ID              int       `json:"id"`
	ProgramID       int       `json:"programId"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DayNumber       int       `json:"dayNumber"`
	DurationMinutes int       `json:"durationMinutes"`
	CreatedAt       time.Time `json:"createdAt"`
}
