package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/globetrotter/internal/apperror"
	"github.com/rocketscienceinc/globetrotter/internal/entity"
)

const (
	DefaultCorrectSignal   = 5 * time.Second
	DefaultIncorrectSignal = 3 * time.Second
)

type roundGateway interface {
	FetchRandomDestination(ctx context.Context) (*entity.DestinationRound, error)
	SubmitGuess(ctx context.Context, correctCity, guess, username string) (*entity.GuessResult, error)
}

type roundSession interface {
	Session() entity.PlayerSession
	Inviter() *entity.InviterContext
	ApplyResult(newScore, newAttempts int) error
}

// Signal - a transient feedback cue that clears itself at ExpiresAt.
type Signal struct {
	Kind      entity.SignalKind
	ExpiresAt time.Time
}

// Outcome - what resolving a guess produced.
type Outcome struct {
	Result entity.GuessResult
	Signal Signal
	// ChallengeBeaten is set on the one guess that took the score past the inviter's.
	ChallengeBeaten bool
	Inviter         *entity.InviterContext
	// ScoreRejected means the backend totals were inconsistent and the session was left unchanged.
	ScoreRejected bool
}

type RoundOption func(*RoundController)

func WithSignalDurations(correct, incorrect time.Duration) RoundOption {
	return func(that *RoundController) {
		that.correctSignal = correct
		that.incorrectSignal = incorrect
	}
}

func WithClock(now func() time.Time) RoundOption {
	return func(that *RoundController) {
		that.now = now
	}
}

// RoundController - drives one round at a time through
// idle -> loading -> awaiting guess -> submitting -> resolved -> loading.
type RoundController struct {
	logger  *slog.Logger
	gateway roundGateway
	session roundSession
	tracker *ChallengeTracker

	correctSignal   time.Duration
	incorrectSignal time.Duration
	now             func() time.Time

	mu       sync.Mutex
	state    entity.RoundState
	token    string
	round    *entity.DestinationRound
	result   *entity.GuessResult
	selected string
	signal   *Signal
}

func NewRoundController(logger *slog.Logger, gateway roundGateway, session roundSession, opts ...RoundOption) *RoundController {
	controller := &RoundController{
		logger:  logger.With("component", "round"),
		gateway: gateway,
		session: session,
		tracker: &ChallengeTracker{},

		correctSignal:   DefaultCorrectSignal,
		incorrectSignal: DefaultIncorrectSignal,
		now:             time.Now,

		state: entity.RoundIdle,
	}

	for _, opt := range opts {
		opt(controller)
	}

	return controller
}

// NextRound - discards the current round and fetches a new one. A submission still in flight is superseded
// and its response ignored. Fails with apperror.ErrBusy while a fetch is already running.
func (that *RoundController) NextRound(ctx context.Context) error {
	log := that.logger.With("method", "NextRound")

	that.mu.Lock()
	if that.state == entity.RoundLoading {
		that.mu.Unlock()
		return apperror.ErrBusy
	}

	token := uuid.NewString()
	that.token = token
	that.state = entity.RoundLoading
	that.round = nil
	that.result = nil
	that.selected = ""
	that.signal = nil
	that.mu.Unlock()

	round, err := that.gateway.FetchRandomDestination(ctx)

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.token != token {
		log.Debug("discarding superseded destination", "token", token)
		return apperror.ErrStaleResponse
	}

	if err != nil {
		that.state = entity.RoundIdle
		return fmt.Errorf("failed to fetch destination: %w", err)
	}

	if err = round.Validate(); err != nil {
		that.state = entity.RoundIdle
		log.Error("backend sent an invalid round", "error", err)
		return fmt.Errorf("%w: %w", apperror.ErrBackendData, err)
	}

	that.round = round
	that.state = entity.RoundAwaitingGuess

	return nil
}

// Guess - submits option for the current round. Only the first guess of a round is accepted.
func (that *RoundController) Guess(ctx context.Context, option string) (*Outcome, error) {
	log := that.logger.With("method", "Guess")

	that.mu.Lock()
	if that.state != entity.RoundAwaitingGuess {
		that.mu.Unlock()
		return nil, apperror.ErrGuessNotAccepted
	}

	if !that.round.HasOption(option) {
		that.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownOption, option)
	}

	session := that.session.Session()
	if !session.IsLoggedIn() {
		that.mu.Unlock()
		return nil, apperror.ErrNotLoggedIn
	}

	that.selected = option
	that.state = entity.RoundSubmitting
	token := that.token
	correctCity := that.round.CorrectCity
	that.mu.Unlock()

	result, err := that.gateway.SubmitGuess(ctx, correctCity, option, session.Username)

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.token != token || that.state != entity.RoundSubmitting {
		log.Debug("discarding superseded guess result", "token", token)
		return nil, apperror.ErrStaleResponse
	}

	if err != nil {
		that.state = entity.RoundAwaitingGuess
		that.selected = ""
		return nil, fmt.Errorf("failed to submit guess: %w", err)
	}

	outcome := &Outcome{Result: *result}

	if result.HasTotals() {
		newScore, newAttempts := result.Totals()
		if err = that.session.ApplyResult(newScore, newAttempts); err != nil {
			log.Error("rejected backend totals", "error", err)
			outcome.ScoreRejected = true
		}
	}

	that.result = result
	that.state = entity.RoundResolved

	if result.Correct {
		that.signal = &Signal{Kind: entity.SignalCelebrate, ExpiresAt: that.now().Add(that.correctSignal)}

		if result.HasTotals() && !outcome.ScoreRejected {
			newScore, _ := result.Totals()
			inviter := that.session.Inviter()
			if that.tracker.Observe(inviter, newScore) {
				outcome.ChallengeBeaten = true
				outcome.Inviter = inviter
				log.Info("challenge beaten", "inviter", inviter.Username, "score", newScore)
			}
		}
	} else {
		that.signal = &Signal{Kind: entity.SignalSadFace, ExpiresAt: that.now().Add(that.incorrectSignal)}
	}

	outcome.Signal = *that.signal

	return outcome, nil
}

func (that *RoundController) State() entity.RoundState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state
}

func (that *RoundController) Round() *entity.DestinationRound {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.round == nil {
		return nil
	}

	round := *that.round
	return &round
}

func (that *RoundController) Result() *entity.GuessResult {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.result == nil {
		return nil
	}

	result := *that.result
	return &result
}

func (that *RoundController) UIState() entity.RoundUIState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return entity.RoundUIState{
		SelectedOption: that.selected,
		IsSubmitting:   that.state == entity.RoundSubmitting,
		ResultVisible:  that.result != nil,
	}
}

// ChallengeBeaten - whether the inviter's score has been passed in this session.
func (that *RoundController) ChallengeBeaten() bool {
	return that.tracker.Fired()
}

// ActiveSignal - the current feedback cue, if it has not expired yet.
func (that *RoundController) ActiveSignal() (Signal, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.signal == nil || !that.now().Before(that.signal.ExpiresAt) {
		return Signal{}, false
	}

	return *that.signal, true
}

// OptionHighlight - how an option is marked once the round is resolved. The correct city is found by
// local comparison; the feedback text itself follows the backend's verdict.
func (that *RoundController) OptionHighlight(option string) entity.Highlight {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.result == nil || that.round == nil {
		return entity.HighlightNeutral
	}

	switch {
	case option == that.round.CorrectCity:
		return entity.HighlightCorrect
	case option == that.selected:
		return entity.HighlightWrong
	default:
		return entity.HighlightNeutral
	}
}
