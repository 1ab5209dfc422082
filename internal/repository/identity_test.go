package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/globetrotter/internal/repository/storage"
	"github.com/rocketscienceinc/globetrotter/testing/suite"
)

const testKey = "globetrotter_username"

func TestRedisIdentityRepository(t *testing.T) {
	t.Run("Save then Get", func(t *testing.T) {
		ctx, st := suite.New(t)

		repo := NewRedisIdentityRepository(st.Storage, testKey)

		// Given: a stored username
		require.NoError(t, repo.Save(ctx, "alice"))

		// When: Get is called
		username, err := repo.Get(ctx)

		// Then: the stored username is returned
		require.NoError(t, err)
		assert.Equal(t, "alice", username)
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		repo := NewRedisIdentityRepository(st.Storage, testKey)

		// When: nothing was stored
		username, err := repo.Get(ctx)

		// Then: ErrIdentityNotFound is returned
		require.ErrorIs(t, err, ErrIdentityNotFound)
		assert.Empty(t, username)
	})

	t.Run("Get_EmptyValue", func(t *testing.T) {
		ctx, st := suite.New(t)

		repo := NewRedisIdentityRepository(st.Storage, testKey)

		// Given: the key holds an empty string
		require.NoError(t, st.Storage.Set(ctx, testKey, "", 0).Err())

		// When: Get is called
		username, err := repo.Get(ctx)

		// Then: it is treated as no stored username
		require.ErrorIs(t, err, ErrIdentityNotFound)
		assert.Empty(t, username)
	})

	t.Run("Delete", func(t *testing.T) {
		ctx, st := suite.New(t)

		repo := NewRedisIdentityRepository(st.Storage, testKey)
		require.NoError(t, repo.Save(ctx, "alice"))

		// When: the record is deleted
		require.NoError(t, repo.Delete(ctx))

		// Then: it is gone
		_, err := repo.Get(ctx)
		require.ErrorIs(t, err, ErrIdentityNotFound)
	})
}

func TestFileIdentityRepository(t *testing.T) {
	ctx := context.Background()

	newRepo := func(t *testing.T) IdentityRepository {
		t.Helper()

		store, err := storage.NewFileStorage(filepath.Join(t.TempDir(), "storage.json"))
		require.NoError(t, err)

		return NewFileIdentityRepository(store, testKey)
	}

	t.Run("Get_NotFound", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Get(ctx)

		require.ErrorIs(t, err, ErrIdentityNotFound)
	})

	t.Run("Save, Get, Delete", func(t *testing.T) {
		repo := newRepo(t)

		// Given: a stored username
		require.NoError(t, repo.Save(ctx, "bob"))

		// Then: it can be read back
		username, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "bob", username)

		// When: it is deleted
		require.NoError(t, repo.Delete(ctx))

		// Then: it is gone
		_, err = repo.Get(ctx)
		require.ErrorIs(t, err, ErrIdentityNotFound)
	})
}
