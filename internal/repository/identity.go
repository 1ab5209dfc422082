package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/globetrotter/internal/repository/storage"
)

var ErrIdentityNotFound = errors.New("no stored username")

// IdentityRepository - the one durable record: which username this client plays as.
type IdentityRepository interface {
	Get(ctx context.Context) (string, error)
	Save(ctx context.Context, username string) error
	Delete(ctx context.Context) error
}

type redisIdentity struct {
	client *redis.Client
	key    string
}

func NewRedisIdentityRepository(client *redis.Client, key string) IdentityRepository {
	return &redisIdentity{
		client: client,
		key:    key,
	}
}

func (that *redisIdentity) Get(ctx context.Context) (string, error) {
	username, err := that.client.Get(ctx, that.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrIdentityNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to get username: %w", err)
	}

	if username == "" {
		return "", ErrIdentityNotFound
	}

	return username, nil
}

func (that *redisIdentity) Save(ctx context.Context, username string) error {
	if err := that.client.Set(ctx, that.key, username, 0).Err(); err != nil {
		return fmt.Errorf("failed to set username: %w", err)
	}

	return nil
}

func (that *redisIdentity) Delete(ctx context.Context) error {
	if err := that.client.Del(ctx, that.key).Err(); err != nil {
		return fmt.Errorf("failed to delete username: %w", err)
	}

	return nil
}

type fileIdentity struct {
	store *storage.FileStorage
	key   string
}

func NewFileIdentityRepository(store *storage.FileStorage, key string) IdentityRepository {
	return &fileIdentity{
		store: store,
		key:   key,
	}
}

func (that *fileIdentity) Get(_ context.Context) (string, error) {
	username, err := that.store.Get(that.key)
	if errors.Is(err, storage.ErrKeyNotFound) || (err == nil && username == "") {
		return "", ErrIdentityNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to get username: %w", err)
	}

	return username, nil
}

func (that *fileIdentity) Save(_ context.Context, username string) error {
	if err := that.store.Set(that.key, username); err != nil {
		return fmt.Errorf("failed to set username: %w", err)
	}

	return nil
}

func (that *fileIdentity) Delete(_ context.Context) error {
	if err := that.store.Delete(that.key); err != nil {
		return fmt.Errorf("failed to delete username: %w", err)
	}

	return nil
}
