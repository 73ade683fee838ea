package jsonfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/bnema/aula-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "aula", "skoleskema.json")
	store, err := NewStore(path, "parent01")
	require.NoError(t, err)

	payload := []byte(`{"status":{"code":0},"data":[]}`)
	require.NoError(t, store.Save(context.Background(), payload))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreExpandsUsername(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "skoleskema-{username}.json"), " parent01 ")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "skoleskema-parent01.json"), store.Path())
}

func TestStoreLoadMissingFile(t *testing.T) {
	t.Parallel()

	store, err := NewStore(filepath.Join(t.TempDir(), "missing.json"), "")
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStoreRejectsInvalidJSONAndEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := NewStore("  ", "parent01")
	require.ErrorIs(t, err, ErrEmptyPath)

	path := filepath.Join(t.TempDir(), "skoleskema.json")
	store, err := NewStore(path, "")
	require.NoError(t, err)
	require.ErrorIs(t, store.Save(context.Background(), []byte("<html>")), domain.ErrMalformedResponse)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestStoreSaveCanceledContext(t *testing.T) {
	t.Parallel()

	store, err := NewStore(filepath.Join(t.TempDir(), "s.json"), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, store.Save(ctx, []byte(`{}`)), context.Canceled)
}

func TestStoreConcurrentSavesAcrossInstancesLeaveValidJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "skoleskema.json")
	newStore := func() *Store {
		store, err := NewStore(path, "")
		require.NoError(t, err)
		return store
	}
	storeA, storeB := newStore(), newStore()

	const writes = 50
	errCh := make(chan error, writes*2)
	var wg sync.WaitGroup
	wg.Add(2)
	for _, store := range []*Store{storeA, storeB} {
		go func(store *Store) {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				errCh <- store.Save(context.Background(), []byte(`{"n":`+strconv.Itoa(i)+`}`))
			}
		}(store)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	data, err := storeA.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":49}`, string(data))
}
