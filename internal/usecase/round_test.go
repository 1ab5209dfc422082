package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/globetrotter/internal/apperror"
	"github.com/rocketscienceinc/globetrotter/internal/entity"
	mocks "github.com/rocketscienceinc/globetrotter/mocks/usecase"
)

var parisRound = &entity.DestinationRound{
	Clues:       []string{"City of light.", "Home of the Louvre."},
	Options:     []string{"Rome", "Paris", "Tokyo", "Cairo"},
	CorrectCity: "Paris",
}

func intPtr(v int) *int {
	return &v
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type roundFixture struct {
	gateway    *mocks.Gateway
	store      *Store
	clock      *fakeClock
	controller *RoundController
}

// newRoundFixture - a controller over a store where alice is logged in with score/attempts.
func newRoundFixture(t *testing.T, score, attempts int) *roundFixture {
	t.Helper()

	gateway := mocks.NewGateway(t)
	identity := mocks.NewIdentityRepo(t)
	identity.On("Save", mock.Anything, "alice").Return(nil).Once()

	store := NewStore(discardLogger(), gateway, identity)
	require.NoError(t, store.Register(context.Background(), "alice", score, attempts))

	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	controller := NewRoundController(discardLogger(), gateway, store, WithClock(clock.Now))

	return &roundFixture{gateway: gateway, store: store, clock: clock, controller: controller}
}

func (f *roundFixture) startRound(t *testing.T, round *entity.DestinationRound) {
	t.Helper()

	f.gateway.On("FetchRandomDestination", mock.Anything).Return(round, nil).Once()
	require.NoError(t, f.controller.NextRound(context.Background()))
	require.Equal(t, entity.RoundAwaitingGuess, f.controller.State())
}

func guessResult(correct bool, city string, score, attempts int) *entity.GuessResult {
	return &entity.GuessResult{
		Correct:          correct,
		City:             city,
		Country:          "France",
		FunFact:          "It has a tower.",
		NewScore:         intPtr(score),
		NewTotalAttempts: intPtr(attempts),
	}
}

func TestRoundController_NextRound(t *testing.T) {
	ctx := context.Background()

	t.Run("Starts idle and loads a round", func(t *testing.T) {
		f := newRoundFixture(t, 0, 0)
		assert.Equal(t, entity.RoundIdle, f.controller.State())

		f.startRound(t, parisRound)

		assert.Equal(t, parisRound, f.controller.Round())
		assert.Equal(t, entity.RoundUIState{}, f.controller.UIState())
		assert.Nil(t, f.controller.Result())
	})

	t.Run("Fetch failure returns to idle", func(t *testing.T) {
		f := newRoundFixture(t, 0, 0)
		f.gateway.On("FetchRandomDestination", mock.Anything).
			Return(nil, &apperror.APIError{Op: "random destination", Err: apperror.ErrNetwork}).
			Once()

		err := f.controller.NextRound(ctx)

		require.ErrorIs(t, err, apperror.ErrNetwork)
		assert.Equal(t, entity.RoundIdle, f.controller.State())
		assert.Nil(t, f.controller.Round())
	})

	t.Run("Invalid round is rejected", func(t *testing.T) {
		f := newRoundFixture(t, 0, 0)
		f.gateway.On("FetchRandomDestination", mock.Anything).
			Return(&entity.DestinationRound{Options: []string{"Paris", "Paris", "Rome", "Oslo"}, CorrectCity: "Paris"}, nil).
			Once()

		err := f.controller.NextRound(ctx)

		require.ErrorIs(t, err, apperror.ErrBackendData)
		require.ErrorIs(t, err, entity.ErrInvalidRound)
		assert.Equal(t, entity.RoundIdle, f.controller.State())
	})

	t.Run("Busy while loading", func(t *testing.T) {
		// Given: a fetch that blocks until released
		f := newRoundFixture(t, 0, 0)
		release := make(chan struct{})
		f.gateway.On("FetchRandomDestination", mock.Anything).
			Run(func(mock.Arguments) { <-release }).
			Return(parisRound, nil).
			Once()

		done := make(chan error, 1)
		go func() { done <- f.controller.NextRound(ctx) }()
		require.Eventually(t, func() bool {
			return f.controller.State() == entity.RoundLoading
		}, time.Second, time.Millisecond)

		// When: another round is requested meanwhile
		err := f.controller.NextRound(ctx)

		// Then: it is refused and the first fetch completes normally
		require.ErrorIs(t, err, apperror.ErrBusy)
		close(release)
		require.NoError(t, <-done)
		assert.Equal(t, entity.RoundAwaitingGuess, f.controller.State())
	})

	t.Run("Clears the previous result and signal", func(t *testing.T) {
		f := newRoundFixture(t, 0, 0)
		f.startRound(t, parisRound)
		f.gateway.On("SubmitGuess", mock.Anything, "Paris", "Rome", "alice").
			Return(guessResult(false, "Paris", 0, 1), nil).
			Once()
		_, err := f.controller.Guess(ctx, "Rome")
		require.NoError(t, err)

		f.startRound(t, parisRound)

		assert.Nil(t, f.controller.Result())
		assert.Equal(t, entity.RoundUIState{}, f.controller.UIState())
		_, active := f.controller.ActiveSignal()
		assert.False(t, active)
	})
}

func TestRoundController_Guess(t *testing.T) {
	ctx := context.Background()

	t.Run("Correct guess resolves and celebrates for five seconds", func(t *testing.T) {
		// Given: a round whose answer is Paris
		f := newRoundFixture(t, 0, 0)
		f.startRound(t, parisRound)
		f.gateway.On("SubmitGuess", mock.Anything, "Paris", "Paris", "alice").
			Return(guessResult(true, "Paris", 1, 1), nil).
			Once()

		// When: Paris is guessed
		outcome, err := f.controller.Guess(ctx, "Paris")

		// Then: the round is resolved with the backend totals applied
		require.NoError(t, err)
		assert.Equal(t, entity.RoundResolved, f.controller.State())
		assert.True(t, outcome.Result.Correct)
		assert.False(t, outcome.ChallengeBeaten)
		assert.Equal(t, entity.PlayerSession{Username: "alice", Score: 1, TotalAttempts: 1}, f.store.Session())
		assert.Equal(t, entity.RoundUIState{SelectedOption: "Paris", ResultVisible: true}, f.controller.UIState())

		// Then: a celebrate signal lives for exactly five seconds
		assert.Equal(t, entity.SignalCelebrate, outcome.Signal.Kind)
		assert.Equal(t, f.clock.Now().Add(5*time.Second), outcome.Signal.ExpiresAt)

		f.clock.Advance(4 * time.Second)
		signal, active := f.controller.ActiveSignal()
		require.True(t, active)
		assert.Equal(t, entity.SignalCelebrate, signal.Kind)

		f.clock.Advance(time.Second)
		_, active = f.controller.ActiveSignal()
		assert.False(t, active)
	})

	t.Run("Wrong guess shows a three second sad face", func(t *testing.T) {
		f := newRoundFixture(t, 2, 2)
		f.startRound(t, parisRound)
		f.gateway.On("SubmitGuess", mock.Anything, "Paris", "Tokyo", "alice").
			Return(guessResult(false, "Paris", 2, 3), nil).
			Once()

		outcome, err := f.controller.Guess(ctx, "Tokyo")

		require.NoError(t, err)
		assert.False(t, outcome.Result.Correct)
		assert.Equal(t, entity.SignalSadFace, outcome.Signal.Kind)
		assert.Equal(t, f.clock.Now().Add(3*time.Second), outcome.Signal.ExpiresAt)
		assert.Equal(t, entity.PlayerSession{Username: "alice", Score: 2, TotalAttempts: 3}, f.store.Session())

		// Then: options are marked by local comparison
		assert.Equal(t, entity.HighlightCorrect, f.controller.OptionHighlight("Paris"))
		assert.Equal(t, entity.HighlightWrong, f.controller.OptionHighlight("Tokyo"))
		assert.Equal(t, entity.HighlightNeutral, f.controller.OptionHighlight("Rome"))
	})

	t.Run("Only the first guess of a round counts", func(t *testing.T) {
		f := newRoundFixture(t, 0, 0)
		f.startRound(t, parisRound)
		f.gateway.On("SubmitGuess", mock.Anything, "Paris", "Rome", "alice").
			Return(guessResult(false, "Paris", 0, 1), nil).
			Once()
		_, err := f.controller.Guess(ctx, "Rome")
		require.NoError(t, err)

		// When: a second option is picked
		outcome, err := f.controller.Guess(ctx, "Paris")

		// Then: it is a no-op
		require.ErrorIs(t, err, apperror.ErrGuessNotAccepted)
		assert.Nil(t, outcome)
		assert.Equal(t, 1, f.store.Session().TotalAttempts)
	})

	t.Run("Guess before a round is loaded", func(t *testing.T) {
		f := newRoundFixture(t, 0, 0)

		_, err := f.controller.Guess(ctx, "Paris")

		require.ErrorIs(t, err, apperror.ErrGuessNotAccepted)
	})

	t.Run("Unknown option", func(t *testing.T) {
		f := newRoundFixture(t, 0, 0)
		f.startRound(t, parisRound)

		_, err := f.controller.Guess(ctx, "Lima")

		require.ErrorIs(t, err, apperror.ErrUnknownOption)
		assert.Equal(t, entity.RoundAwaitingGuess, f.controller.State())
	})

	t.Run("Submission failure allows another pick", func(t *testing.T) {
		// Given: the first submission fails
		f := newRoundFixture(t, 0, 0)
		f.startRound(t, parisRound)
		f.gateway.On("SubmitGuess", mock.Anything, "Paris", "Rome", "alice").
			Return(nil, &apperror.APIError{Op: "submit guess", Status: 500, Err: apperror.ErrServer}).
			Once()

		_, err := f.controller.Guess(ctx, "Rome")

		// Then: no result, selection cleared, still awaiting a guess
		require.ErrorIs(t, err, apperror.ErrServer)
		assert.Equal(t, entity.RoundAwaitingGuess, f.controller.State())
		assert.Equal(t, entity.RoundUIState{}, f.controller.UIState())
		assert.Equal(t, 0, f.store.Session().TotalAttempts)

		// When: the player picks again
		f.gateway.On("SubmitGuess", mock.Anything, "Paris", "Paris", "alice").
			Return(guessResult(true, "Paris", 1, 1), nil).
			Once()
		outcome, err := f.controller.Guess(ctx, "Paris")

		require.NoError(t, err)
		assert.True(t, outcome.Result.Correct)
	})

	t.Run("Missing totals leave the session alone", func(t *testing.T) {
		f := newRoundFixture(t, 1, 1)
		f.startRound(t, parisRound)
		f.gateway.On("SubmitGuess", mock.Anything, "Paris", "Paris", "alice").
			Return(&entity.GuessResult{Correct: true, City: "Paris"}, nil).
			Once()

		outcome, err := f.controller.Guess(ctx, "Paris")

		require.NoError(t, err)
		assert.False(t, outcome.ScoreRejected)
		assert.Equal(t, entity.RoundResolved, f.controller.State())
		assert.Equal(t, entity.PlayerSession{Username: "alice", Score: 1, TotalAttempts: 1}, f.store.Session())
	})

	t.Run("Inconsistent totals are rejected", func(t *testing.T) {
		f := newRoundFixture(t, 3, 4)
		f.startRound(t, parisRound)
		f.gateway.On("SubmitGuess", mock.Anything, "Paris", "Paris", "alice").
			Return(guessResult(true, "Paris", 2, 5), nil).
			Once()

		outcome, err := f.controller.Guess(ctx, "Paris")

		require.NoError(t, err)
		assert.True(t, outcome.ScoreRejected)
		assert.Equal(t, entity.PlayerSession{Username: "alice", Score: 3, TotalAttempts: 4}, f.store.Session())
	})

	t.Run("Requires a logged in player", func(t *testing.T) {
		gateway := mocks.NewGateway(t)
		store := NewStore(discardLogger(), gateway, mocks.NewIdentityRepo(t))
		controller := NewRoundController(discardLogger(), gateway, store)
		gateway.On("FetchRandomDestination", mock.Anything).Return(parisRound, nil).Once()
		require.NoError(t, controller.NextRound(ctx))

		_, err := controller.Guess(ctx, "Paris")

		require.ErrorIs(t, err, apperror.ErrNotLoggedIn)
		assert.Equal(t, entity.RoundAwaitingGuess, controller.State())
	})

	t.Run("Superseded submission is discarded", func(t *testing.T) {
		// Given: a submission that blocks until released
		f := newRoundFixture(t, 0, 0)
		f.startRound(t, parisRound)
		release := make(chan struct{})
		f.gateway.On("SubmitGuess", mock.Anything, "Paris", "Paris", "alice").
			Run(func(mock.Arguments) { <-release }).
			Return(guessResult(true, "Paris", 1, 1), nil).
			Once()

		done := make(chan error, 1)
		go func() {
			_, err := f.controller.Guess(ctx, "Paris")
			done <- err
		}()
		require.Eventually(t, func() bool {
			return f.controller.State() == entity.RoundSubmitting
		}, time.Second, time.Millisecond)
		assert.True(t, f.controller.UIState().IsSubmitting)

		// When: a new round starts before the submission resolves
		tokyoRound := &entity.DestinationRound{
			Clues:       []string{"Shibuya crossing."},
			Options:     []string{"Tokyo", "Seoul", "Osaka", "Kyoto"},
			CorrectCity: "Tokyo",
		}
		f.startRound(t, tokyoRound)
		close(release)

		// Then: the late result is ignored and the new round is untouched
		require.ErrorIs(t, <-done, apperror.ErrStaleResponse)
		assert.Equal(t, entity.RoundAwaitingGuess, f.controller.State())
		assert.Equal(t, tokyoRound, f.controller.Round())
		assert.Nil(t, f.controller.Result())
		assert.Equal(t, 0, f.store.Session().Score)
	})
}

func TestRoundController_ChallengeBeaten(t *testing.T) {
	ctx := context.Background()

	// Given: alice was invited by carol who has 5/6, and alice is at 5/6 too
	f := newRoundFixture(t, 5, 6)
	assert.False(t, f.controller.ChallengeBeaten())
	f.gateway.On("FetchUserProfile", mock.Anything, "carol").
		Return(&entity.Profile{Username: "carol", Score: 5, TotalAttempts: 6}, nil).
		Once()
	require.NoError(t, f.store.LoadInviter(ctx, "carol"))

	// When: a correct guess takes alice to 6/7
	f.startRound(t, parisRound)
	f.gateway.On("SubmitGuess", mock.Anything, "Paris", "Paris", "alice").
		Return(guessResult(true, "Paris", 6, 7), nil).
		Once()
	outcome, err := f.controller.Guess(ctx, "Paris")

	// Then: the challenge notification fires
	require.NoError(t, err)
	assert.True(t, outcome.ChallengeBeaten)
	require.NotNil(t, outcome.Inviter)
	assert.Equal(t, "carol", outcome.Inviter.Username)
	assert.True(t, f.controller.ChallengeBeaten())

	// When: another correct guess takes alice to 7/8
	f.startRound(t, parisRound)
	f.gateway.On("SubmitGuess", mock.Anything, "Paris", "Paris", "alice").
		Return(guessResult(true, "Paris", 7, 8), nil).
		Once()
	outcome, err = f.controller.Guess(ctx, "Paris")

	// Then: it does not fire again
	require.NoError(t, err)
	assert.False(t, outcome.ChallengeBeaten)
	assert.Nil(t, outcome.Inviter)
	assert.True(t, f.controller.ChallengeBeaten())
}
