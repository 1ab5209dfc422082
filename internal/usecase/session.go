package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rocketscienceinc/globetrotter/internal/apperror"
	"github.com/rocketscienceinc/globetrotter/internal/entity"
	"github.com/rocketscienceinc/globetrotter/internal/repository"
)

type profileGateway interface {
	FetchUserProfile(ctx context.Context, username string) (*entity.Profile, error)
	LoginOrCreateUser(ctx context.Context, username string) (*entity.Profile, bool, error)
}

type identityRepo interface {
	Get(ctx context.Context) (string, error)
	Save(ctx context.Context, username string) error
	Delete(ctx context.Context) error
}

// Store - owns the player session and the inviter context for the lifetime of the process.
type Store struct {
	logger   *slog.Logger
	gateway  profileGateway
	identity identityRepo

	mu      sync.RWMutex
	session entity.PlayerSession
	inviter *entity.InviterContext
}

func NewStore(logger *slog.Logger, gateway profileGateway, identity identityRepo) *Store {
	return &Store{
		logger: logger.With("component", "session"),

		gateway:  gateway,
		identity: identity,
	}
}

// Restore - reloads the stored identity and refreshes its totals from the backend.
// A username the backend no longer knows is forgotten.
func (that *Store) Restore(ctx context.Context) error {
	log := that.logger.With("method", "Restore")

	username, err := that.identity.Get(ctx)
	if errors.Is(err, repository.ErrIdentityNotFound) {
		that.setSession(entity.PlayerSession{})
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to read stored username: %w", err)
	}

	that.setSession(entity.PlayerSession{Username: username})

	profile, err := that.gateway.FetchUserProfile(ctx, username)
	if errors.Is(err, apperror.ErrNotFound) {
		log.Info("stored user no longer exists, clearing", "username", username)

		if err = that.identity.Delete(ctx); err != nil {
			log.Error("failed to delete stored username", "error", err)
		}

		that.setSession(entity.PlayerSession{})

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to fetch profile of %s: %w", username, err)
	}

	if err = entity.ValidateTotals(profile.Score, profile.TotalAttempts); err != nil {
		return fmt.Errorf("%w: profile of %s: %w", apperror.ErrBackendData, username, err)
	}

	that.setSession(entity.PlayerSession{
		Username:      username,
		Score:         profile.Score,
		TotalAttempts: profile.TotalAttempts,
	})

	log.Debug("session restored", "username", username, "score", profile.Score, "attempts", profile.TotalAttempts)

	return nil
}

// Login - logs in or registers username and makes it the current session.
func (that *Store) Login(ctx context.Context, username string) (*entity.Profile, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, false, apperror.ErrUsernameRequired
	}

	profile, isNew, err := that.gateway.LoginOrCreateUser(ctx, username)
	if err != nil {
		return nil, false, fmt.Errorf("failed to log in %s: %w", username, err)
	}

	if err = that.Register(ctx, username, profile.Score, profile.TotalAttempts); err != nil {
		return nil, false, err
	}

	return profile, isNew, nil
}

// Register - sets the session and persists the username.
func (that *Store) Register(ctx context.Context, username string, score, attempts int) error {
	if username == "" {
		return apperror.ErrUsernameRequired
	}

	if err := entity.ValidateTotals(score, attempts); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrBackendData, err)
	}

	if err := that.identity.Save(ctx, username); err != nil {
		return fmt.Errorf("failed to store username: %w", err)
	}

	that.setSession(entity.PlayerSession{
		Username:      username,
		Score:         score,
		TotalAttempts: attempts,
	})

	return nil
}

// ApplyResult - replaces both totals with the backend-confirmed values.
// Totals that go backwards or break score <= attempts are rejected untouched.
func (that *Store) ApplyResult(newScore, newAttempts int) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if newScore < that.session.Score || newAttempts < that.session.TotalAttempts {
		return fmt.Errorf("%w: totals went from %d/%d to %d/%d", apperror.ErrBackendData,
			that.session.Score, that.session.TotalAttempts, newScore, newAttempts)
	}

	if err := entity.ValidateTotals(newScore, newAttempts); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrBackendData, err)
	}

	that.session.Score = newScore
	that.session.TotalAttempts = newAttempts

	return nil
}

// LoadInviter - resolves the inviter's profile. On failure the inviter stays absent.
func (that *Store) LoadInviter(ctx context.Context, username string) error {
	log := that.logger.With("method", "LoadInviter", "inviter", username)

	profile, err := that.gateway.FetchUserProfile(ctx, username)
	if err != nil {
		log.Error("failed to fetch inviter profile", "error", err)
		return fmt.Errorf("failed to load inviter %s: %w", username, err)
	}

	inviter := entity.NewInviterContext(username, profile)

	that.mu.Lock()
	that.inviter = inviter
	that.mu.Unlock()

	log.Info("inviter loaded", "score", inviter.Score, "attempts", inviter.TotalAttempts)

	return nil
}

// Logout - forgets the stored identity.
func (that *Store) Logout(ctx context.Context) error {
	if err := that.identity.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete stored username: %w", err)
	}

	that.setSession(entity.PlayerSession{})

	return nil
}

func (that *Store) Session() entity.PlayerSession {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.session
}

func (that *Store) Inviter() *entity.InviterContext {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.inviter == nil {
		return nil
	}

	inviter := *that.inviter
	return &inviter
}

func (that *Store) setSession(session entity.PlayerSession) {
	that.mu.Lock()
	that.session = session
	that.mu.Unlock()
}
