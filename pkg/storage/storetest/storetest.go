// Package storetest runs a shared conformance suite against any
// storage.Store implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/pkg/storage"
)

// Run exercises the full storage.Store contract against store.
func Run(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("SessionRoundTrip", func(t *testing.T) {
		record := storage.SessionRecord{
			ID:        "sess-" + uuid.NewString(),
			Subject:   uuid.NewString(),
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		}
		require.NoError(t, store.PutSession(ctx, record))

		got, err := store.GetSession(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, record.Subject, got.Subject)
		assert.WithinDuration(t, record.CreatedAt, got.CreatedAt, time.Second)

		require.NoError(t, store.DeleteSession(ctx, record.ID))

		_, err = store.GetSession(ctx, record.ID)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("SessionOverwrite", func(t *testing.T) {
		id := "sess-" + uuid.NewString()
		require.NoError(t, store.PutSession(ctx, storage.SessionRecord{
			ID:        id,
			Subject:   "first",
			CreatedAt: time.Now().UTC(),
		}))
		require.NoError(t, store.PutSession(ctx, storage.SessionRecord{
			ID:        id,
			Subject:   "second",
			CreatedAt: time.Now().UTC(),
		}))

		got, err := store.GetSession(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "second", got.Subject)

		require.NoError(t, store.DeleteSession(ctx, id))
	})

	t.Run("DeleteUnknownSession", func(t *testing.T) {
		require.NoError(t, store.DeleteSession(ctx, "sess-"+uuid.NewString()))
	})

	t.Run("UserRoundTrip", func(t *testing.T) {
		record := storage.UserRecord{
			ID:           uuid.NewString(),
			DateAdded:    time.Now().UTC().Truncate(time.Microsecond),
			Email:        uuid.NewString() + "@example.com",
			PasswordHash: "hash",
		}
		require.NoError(t, store.PutUser(ctx, record))

		byID, err := store.GetUser(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, record.Email, byID.Email)

		byEmail, err := store.GetUserByEmail(ctx, record.Email)
		require.NoError(t, err)
		assert.Equal(t, record.ID, byEmail.ID)

		require.NoError(t, store.DeleteUser(ctx, record.ID))

		_, err = store.GetUser(ctx, record.ID)
		require.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.GetUserByEmail(ctx, record.Email)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UserResetToken", func(t *testing.T) {
		token := uuid.NewString()
		record := storage.UserRecord{
			ID:           uuid.NewString(),
			DateAdded:    time.Now().UTC(),
			Email:        uuid.NewString() + "@example.com",
			PasswordHash: "hash",
			ResetToken:   &token,
		}
		require.NoError(t, store.PutUser(ctx, record))

		got, err := store.GetUserByResetToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, record.ID, got.ID)

		_, err = store.GetUserByResetToken(ctx, "")
		require.ErrorIs(t, err, storage.ErrNotFound)

		// Clearing the token must drop the lookup.
		record.ResetToken = nil
		require.NoError(t, store.PutUser(ctx, record))

		_, err = store.GetUserByResetToken(ctx, token)
		require.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, store.DeleteUser(ctx, record.ID))
	})

	t.Run("DeleteUnknownUser", func(t *testing.T) {
		require.NoError(t, store.DeleteUser(ctx, uuid.NewString()))
	})
}
