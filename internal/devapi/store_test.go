package devapi

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientcheckin/checkin-web/internal/domain/model"
	apperrors "github.com/clientcheckin/checkin-web/internal/errors"
)

func TestSeed_Idempotent(t *testing.T) {
	store := NewStore(nil)
	require.NoError(t, Seed(context.Background(), store, nil))
	require.NoError(t, Seed(context.Background(), store, nil))

	assert.Len(t, store.CheckIns(), 3, "visits are only seeded for new clients")
	c, err := store.Client("100001")
	require.NoError(t, err)
	assert.Equal(t, "Ada", c.FirstName)
}

func TestStore_PutClientRequiresBarcode(t *testing.T) {
	_, err := NewStore(nil).PutClient("  ", model.Client{})
	assert.Equal(t, "barcode", apperrors.GetField(err))
}

func TestStore_EmptyCheckIns(t *testing.T) {
	list := NewStore(nil).CheckIns()
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestStore_CreateAccountCaseInsensitive(t *testing.T) {
	store := NewStore(nil)
	require.NoError(t, store.CreateAccount("Ada@Example.org"))
	assert.Error(t, store.CreateAccount(" ada@example.org "))
}

func TestStore_ConcurrentCheckIns(t *testing.T) {
	store := NewStore(nil)
	_, err := store.PutClient("1", model.Client{ClientID: "1", FirstName: "Ada"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.RecordCheckIn("1")
		}()
	}
	wg.Wait()

	ids := map[string]bool{}
	for _, ci := range store.CheckIns() {
		ids[ci.ID] = true
	}
	assert.Len(t, ids, 20)
}
