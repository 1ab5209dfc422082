package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		attempts int
		want     int
	}{
		{name: "no attempts", score: 0, attempts: 0, want: 0},
		{name: "three of four", score: 3, attempts: 4, want: 75},
		{name: "two of three rounds up", score: 2, attempts: 3, want: 67},
		{name: "one of three rounds down", score: 1, attempts: 3, want: 33},
		{name: "half rounds up", score: 1, attempts: 8, want: 13},
		{name: "perfect", score: 9, attempts: 9, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accuracy(tt.score, tt.attempts))
		})
	}
}

func TestAccuracyGrade(t *testing.T) {
	assert.Equal(t, GradeGood, AccuracyGrade(71))
	assert.Equal(t, GradeFair, AccuracyGrade(70))
	assert.Equal(t, GradeFair, AccuracyGrade(41))
	assert.Equal(t, GradePoor, AccuracyGrade(40))
	assert.Equal(t, GradePoor, AccuracyGrade(0))
}

func TestPlayerSession_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		session := &PlayerSession{Username: "alice", Score: 3, TotalAttempts: 3}

		require.NoError(t, session.Validate())
		assert.True(t, session.IsLoggedIn())
		assert.Equal(t, 100, session.Accuracy())
	})

	t.Run("Score above attempts", func(t *testing.T) {
		session := &PlayerSession{Score: 4, TotalAttempts: 3}

		require.ErrorIs(t, session.Validate(), ErrScoreExceedsAttempts)
	})

	t.Run("Negative totals", func(t *testing.T) {
		require.ErrorIs(t, ValidateTotals(-1, 0), ErrNegativeTotals)
	})
}

func TestPlayerSession_Snapshot(t *testing.T) {
	snapshot := func(session PlayerSession) PlayerSession { return session }

	t.Run("Logged in", func(t *testing.T) {
		// Given: a session handed out by value
		// When: its helpers are called directly on the returned copy
		// Then: they work without taking an address
		assert.True(t, snapshot(PlayerSession{Username: "alice", Score: 2, TotalAttempts: 3}).IsLoggedIn())
		assert.Equal(t, 67, snapshot(PlayerSession{Username: "alice", Score: 2, TotalAttempts: 3}).Accuracy())
		require.NoError(t, snapshot(PlayerSession{Username: "alice", Score: 2, TotalAttempts: 3}).Validate())
	})

	t.Run("Empty", func(t *testing.T) {
		assert.False(t, PlayerSession{}.IsLoggedIn())
		assert.Equal(t, 0, PlayerSession{}.Accuracy())
	})
}

func TestInviterContext_Highlights(t *testing.T) {
	inviter := NewInviterContext("carol", &Profile{
		Score:         4,
		TotalAttempts: 5,
		DestinationsSolved: []SolvedDestination{
			{City: "Paris"}, {City: "Rome"}, {City: "Tokyo"}, {City: "Cairo"},
		},
	})

	cities, more := inviter.Highlights(3)

	assert.Equal(t, []string{"Paris", "Rome", "Tokyo"}, cities)
	assert.True(t, more)

	cities, more = inviter.Highlights(10)
	assert.Len(t, cities, 4)
	assert.False(t, more)
}
