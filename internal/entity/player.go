package entity

import (
	"errors"
	"math"
)

const (
	GradeGood = "good"
	GradeFair = "fair"
	GradePoor = "poor"
)

var (
	ErrScoreExceedsAttempts = errors.New("score exceeds total attempts")
	ErrNegativeTotals       = errors.New("score and attempts must be non-negative")
)

// PlayerSession - the local view of who is playing and their backend-confirmed totals.
// An empty Username means nobody is logged in.
type PlayerSession struct {
	Username      string `json:"username"`
	Score         int    `json:"score"`
	TotalAttempts int    `json:"total_attempts"`
}

func (that PlayerSession) IsLoggedIn() bool {
	return that.Username != ""
}

func (that PlayerSession) Accuracy() int {
	return Accuracy(that.Score, that.TotalAttempts)
}

// Validate - checks the score invariants.
func (that PlayerSession) Validate() error {
	return ValidateTotals(that.Score, that.TotalAttempts)
}

func ValidateTotals(score, attempts int) error {
	if score < 0 || attempts < 0 {
		return ErrNegativeTotals
	}

	if score > attempts {
		return ErrScoreExceedsAttempts
	}

	return nil
}

// Accuracy - percentage of correct guesses, rounded half away from zero. Zero attempts gives zero.
func Accuracy(score, attempts int) int {
	if attempts <= 0 {
		return 0
	}

	return int(math.Round(100 * float64(score) / float64(attempts)))
}

// AccuracyGrade - buckets an accuracy percentage the way the score badge is colored.
func AccuracyGrade(accuracy int) string {
	switch {
	case accuracy > 70:
		return GradeGood
	case accuracy > 40:
		return GradeFair
	default:
		return GradePoor
	}
}

// SolvedDestination - short summary of a destination a player has guessed correctly.
type SolvedDestination struct {
	City    string `json:"city"`
	Country string `json:"country,omitempty"`
}

// Profile - the backend's snapshot of a user.
type Profile struct {
	Username           string              `json:"username"`
	Score              int                 `json:"score"`
	TotalAttempts      int                 `json:"total_attempts"`
	DestinationsSolved []SolvedDestination `json:"destinations_solved"`
}
