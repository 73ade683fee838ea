package chain

import (
	"context"
	"errors"
	"testing"

	envstore "github.com/bnema/aula-cli/internal/adapters/secrets/env"
	"github.com/bnema/aula-cli/internal/domain"
	portmocks "github.com/bnema/aula-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var key = domain.PasswordKey("parent01")

func TestStoreGetUsesPrimaryWhenItSucceeds(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, key).Return("from-env", nil).Once()

	value, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)
}

func TestStoreGetWalksBackendsInOrder(t *testing.T) {
	t.Parallel()

	first := portmocks.NewMockSecretStore(t)
	second := portmocks.NewMockSecretStore(t)
	third := portmocks.NewMockSecretStore(t)
	store := NewStore(first, second, third)

	first.EXPECT().Get(mock.Anything, key).Return("", domain.ErrCredentialNotFound).Once()
	second.EXPECT().Get(mock.Anything, key).Return("", errors.New("pass unavailable")).Once()
	third.EXPECT().Get(mock.Anything, key).Return("from-file", nil).Once()

	value, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetReturnsCombinedErrorWhenAllBackendsFail(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, key).Return("", errors.New("pass failed")).Once()
	fallback.EXPECT().Get(mock.Anything, key).Return("", domain.ErrCredentialNotFound).Once()

	_, err := store.Get(context.Background(), key)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
	assert.ErrorContains(t, err, "backend 0")
	assert.ErrorContains(t, err, "backend 1")
	assert.ErrorContains(t, err, "pass failed")
}

func TestStorePutSkipsReadOnlyBackends(t *testing.T) {
	t.Parallel()

	readOnly := portmocks.NewMockSecretStore(t)
	writable := portmocks.NewMockSecretStore(t)
	store := NewStore(readOnly, writable)

	readOnly.EXPECT().Put(mock.Anything, key, "secret").Return(envstore.ErrReadOnly).Once()
	writable.EXPECT().Put(mock.Anything, key, "secret").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), key, "secret"))
}

func TestStorePutFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Put(mock.Anything, key, "secret").Return(errors.New("pass failed")).Once()
	fallback.EXPECT().Put(mock.Anything, key, "secret").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), key, "secret"))
}

func TestStorePutDoesNotCallFallbackWhenPrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Put(mock.Anything, key, "secret").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), key, "secret"))
}

func TestStorePutOnlyReadOnlyBackends(t *testing.T) {
	t.Parallel()

	readOnly := portmocks.NewMockSecretStore(t)
	store := NewStore(readOnly)

	readOnly.EXPECT().Put(mock.Anything, key, "secret").Return(envstore.ErrReadOnly).Once()

	require.ErrorIs(t, store.Put(context.Background(), key, "secret"), errNoneWritable)
}

func TestStoreDeleteReachesEveryWritableBackend(t *testing.T) {
	t.Parallel()

	readOnly := portmocks.NewMockSecretStore(t)
	pass := portmocks.NewMockSecretStore(t)
	file := portmocks.NewMockSecretStore(t)
	store := NewStore(readOnly, pass, file)

	readOnly.EXPECT().Delete(mock.Anything, key).Return(envstore.ErrReadOnly).Once()
	pass.EXPECT().Delete(mock.Anything, key).Return(errors.New("pass failed")).Once()
	file.EXPECT().Delete(mock.Anything, key).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), key))
}

func TestStoreGetDoesNotFallbackOnCanceledContextError(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, key).Return("", context.Canceled).Once()

	_, err := store.Get(context.Background(), key)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewStoreCheckedRejectsNilAndEmpty(t *testing.T) {
	t.Parallel()

	_, err := NewStoreChecked()
	require.ErrorIs(t, err, errNoStores)

	_, err = NewStoreChecked(portmocks.NewMockSecretStore(t), nil)
	require.ErrorIs(t, err, errNilStore)
}
