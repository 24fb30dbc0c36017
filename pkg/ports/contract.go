package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(sessionID, false, domain.DefaultSettings())
		session.Inputs = session.Inputs.
			With(domain.FieldSumI, domain.Number(12.5)).
			With(domain.FieldR1, domain.Number(7)).
			With(domain.FieldQS3, domain.Missing())

		err := store.Save(ctx, sessionID, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, session.ID, loaded.ID)
		assert.Equal(t, session.UseSums, loaded.UseSums)
		assert.True(t, session.Inputs.Equal(loaded.Inputs), "inputs must round-trip, got %v", loaded.Inputs.ToMap())
	})

	t.Run("Loaded copy is isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Inputs = loaded.Inputs.With(domain.FieldSumI, domain.Number(-1))
		loaded.UseSums = true

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.True(t, again.Inputs.SumI.Equal(domain.Number(12.5)))
		assert.False(t, again.UseSums)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSession(sessionID, true, domain.DefaultSettings()))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1, true, domain.DefaultSettings()))
		_ = store.Save(ctx, id2, domain.NewSession(id2, false, domain.DefaultSettings()))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
