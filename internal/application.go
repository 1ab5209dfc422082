package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/globetrotter/internal/config"
	"github.com/rocketscienceinc/globetrotter/internal/repository"
	"github.com/rocketscienceinc/globetrotter/internal/repository/storage"
	"github.com/rocketscienceinc/globetrotter/internal/share"
	"github.com/rocketscienceinc/globetrotter/internal/transport/api"
	"github.com/rocketscienceinc/globetrotter/internal/usecase"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// App - everything one client process needs, built once at startup and kept for its lifetime.
type App struct {
	Logger *slog.Logger
	Config *config.Config

	Client *api.Client
	Store  *usecase.Store
	Rounds *usecase.RoundController
	Sharer *usecase.Sharer

	closers []func() error
}

// New - wires storage, the backend client and the usecases from conf.
func New(ctx context.Context, logger *slog.Logger, conf *config.Config) (*App, error) {
	app := &App{
		Logger: logger,
		Config: conf,
	}

	identity, err := app.newIdentityRepository(ctx)
	if err != nil {
		return nil, err
	}

	app.Client = api.New(logger, conf.API.BaseURL,
		api.WithTimeout(conf.API.Timeout),
		api.WithRateLimit(conf.API.RateLimitRPS, conf.API.RateLimitBurst),
	)

	app.Store = usecase.NewStore(logger, app.Client, identity)
	app.Rounds = usecase.NewRoundController(logger, app.Client, app.Store,
		usecase.WithSignalDurations(conf.Signals.Correct, conf.Signals.Incorrect),
	)
	app.Sharer = usecase.NewSharer(logger, conf.Share.BaseURL, app.Store,
		share.NewRenderer(logger, conf.Share.QRSize, conf.Share.OutputDir),
		share.NewClipboard(),
	)

	return app, nil
}

func (that *App) newIdentityRepository(ctx context.Context) (repository.IdentityRepository, error) {
	conf := that.Config.Storage

	switch conf.Driver {
	case config.StorageRedis:
		addr := conf.Redis.GetRedisAddr()
		if addr == "" {
			return nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		that.closers = append(that.closers, redisStorage.Close)

		return repository.NewRedisIdentityRepository(redisStorage.Connection, conf.Key), nil
	case config.StorageFile:
		path := conf.Path
		if path == "" {
			defaultPath, err := storage.DefaultFilePath()
			if err != nil {
				return nil, err
			}

			path = defaultPath
		}

		fileStorage, err := storage.NewFileStorage(path)
		if err != nil {
			return nil, fmt.Errorf("could not open file storage: %w", err)
		}

		return repository.NewFileIdentityRepository(fileStorage, conf.Key), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStorageDriver, conf.Driver)
	}
}

// Start - restores the session and, when an inviter is given, loads it at the same time.
// An inviter that cannot be loaded is logged and ignored.
func (that *App) Start(ctx context.Context, inviter string) error {
	log := that.Logger.With("component", "app")

	var group errgroup.Group

	group.Go(func() error {
		return that.Store.Restore(ctx)
	})

	if inviter != "" {
		group.Go(func() error {
			if err := that.Store.LoadInviter(ctx, inviter); err != nil {
				log.Warn("continuing without inviter", "inviter", inviter, "error", err)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	return nil
}

func (that *App) Close() error {
	var errs []error

	for _, closer := range that.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
