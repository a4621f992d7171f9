// Package persistencetest holds behaviour tests shared by every transcript store.
package persistencetest

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/eigenx-txsign-go/pkg/persistence"
	"github.com/Layr-Labs/eigenx-txsign-go/pkg/types"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) persistence.ITranscriptPersistence

// NewTranscript returns a verified transcript with a random id created at createdAt.
func NewTranscript(createdAt time.Time) *types.Transcript {
	return &types.Transcript{
		Id:             uuid.New().String(),
		Scheme:         types.SchemeEdDSA25519,
		KeyId:          "local-key-" + uuid.New().String(),
		PublicKeyHex:   "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a",
		Transaction:    types.TransactionRecord{Recipient: "Alice", Amount: 10, SchemeParam: "abc123"},
		FingerprintHex: "7b22726563697069656e74223a22416c696365227d",
		SignatureHex:   "e5564300c360ac72",
		Verified:       true,
		CreatedAt:      createdAt.UTC(),
	}
}

// Run exercises the ITranscriptPersistence contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("save and load", func(t *testing.T) {
		store := newStore(t)
		tr := NewTranscript(base)

		require.NoError(t, store.SaveTranscript(tr))

		loaded, err := store.LoadTranscript(tr.Id)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, tr.Id, loaded.Id)
		assert.Equal(t, tr.Scheme, loaded.Scheme)
		assert.Equal(t, tr.Transaction, loaded.Transaction)
		assert.Equal(t, tr.SignatureHex, loaded.SignatureHex)
		assert.True(t, tr.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("load missing returns nil", func(t *testing.T) {
		store := newStore(t)
		loaded, err := store.LoadTranscript("missing")
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("save rejects nil and empty id", func(t *testing.T) {
		store := newStore(t)
		require.Error(t, store.SaveTranscript(nil))
		require.Error(t, store.SaveTranscript(&types.Transcript{}))
	})

	t.Run("save overwrites", func(t *testing.T) {
		store := newStore(t)
		tr := NewTranscript(base)
		require.NoError(t, store.SaveTranscript(tr))

		tr.Verified = false
		require.NoError(t, store.SaveTranscript(tr))

		loaded, err := store.LoadTranscript(tr.Id)
		require.NoError(t, err)
		assert.False(t, loaded.Verified)

		all, err := store.ListTranscripts()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("list is sorted by creation time", func(t *testing.T) {
		store := newStore(t)

		empty, err := store.ListTranscripts()
		require.NoError(t, err)
		assert.Empty(t, empty)

		offsets := []int{3, 0, 2, 1}
		for _, off := range offsets {
			require.NoError(t, store.SaveTranscript(NewTranscript(base.Add(time.Duration(off)*time.Minute))))
		}

		all, err := store.ListTranscripts()
		require.NoError(t, err)
		require.Len(t, all, len(offsets))
		for i := 1; i < len(all); i++ {
			assert.True(t, all[i-1].CreatedAt.Before(all[i].CreatedAt), "transcripts out of order at %d", i)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store := newStore(t)
		tr := NewTranscript(base)
		require.NoError(t, store.SaveTranscript(tr))

		require.NoError(t, store.DeleteTranscript(tr.Id))
		loaded, err := store.LoadTranscript(tr.Id)
		require.NoError(t, err)
		assert.Nil(t, loaded)

		require.NoError(t, store.DeleteTranscript(tr.Id))
		require.NoError(t, store.DeleteTranscript("never-existed"))
	})

	t.Run("loaded copies are independent", func(t *testing.T) {
		store := newStore(t)
		tr := NewTranscript(base)
		require.NoError(t, store.SaveTranscript(tr))
		tr.Transaction.Recipient = "Mallory"

		loaded, err := store.LoadTranscript(tr.Id)
		require.NoError(t, err)
		assert.Equal(t, "Alice", loaded.Transaction.Recipient)

		loaded.Verified = false
		again, err := store.LoadTranscript(tr.Id)
		require.NoError(t, err)
		assert.True(t, again.Verified)
	})

	t.Run("close", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.HealthCheck())

		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		require.Error(t, store.HealthCheck())
		require.Error(t, store.SaveTranscript(NewTranscript(base)))
		_, err := store.LoadTranscript("x")
		require.Error(t, err)
		_, err = store.ListTranscripts()
		require.Error(t, err)
		require.Error(t, store.DeleteTranscript("x"))
	})

	t.Run("concurrent access", func(t *testing.T) {
		store := newStore(t)

		var wg sync.WaitGroup
		numGoroutines := 8
		numOperations := 20

		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for j := 0; j < numOperations; j++ {
					tr := NewTranscript(base.Add(time.Duration(g*numOperations+j) * time.Second))
					tr.KeyId = fmt.Sprintf("key-%d-%d", g, j)
					assert.NoError(t, store.SaveTranscript(tr))
					_, err := store.LoadTranscript(tr.Id)
					assert.NoError(t, err)
					_, err = store.ListTranscripts()
					assert.NoError(t, err)
				}
			}(i)
		}
		wg.Wait()

		all, err := store.ListTranscripts()
		require.NoError(t, err)
		assert.Len(t, all, numGoroutines*numOperations)
	})
}
