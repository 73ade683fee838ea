package chain

import (
	"context"
	"errors"
	"fmt"

	envstore "github.com/bnema/aula-cli/internal/adapters/secrets/env"
	filestore "github.com/bnema/aula-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/aula-cli/internal/adapters/secrets/pass"
	"github.com/bnema/aula-cli/internal/ports"
)

// Store consults its backends in order. Reads return the first hit, writes
// land in the first backend that accepts them, deletes reach every
// writable backend.
type Store struct {
	backends []ports.SecretStore
}

var _ ports.SecretStore = (*Store)(nil)

var (
	errNoStores     = errors.New("secret store chain is empty")
	errNilStore     = errors.New("secret store is nil")
	errNoneWritable = errors.New("no writable secret backend")
)

func NewStore(backends ...ports.SecretStore) *Store {
	store, err := NewStoreChecked(backends...)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(backends ...ports.SecretStore) (*Store, error) {
	if len(backends) == 0 {
		return nil, errNoStores
	}
	for i, backend := range backends {
		if backend == nil {
			return nil, fmt.Errorf("backend %d: %w", i, errNilStore)
		}
	}

	return &Store{backends: append([]ports.SecretStore(nil), backends...)}, nil
}

// NewDefault chains the environment, pass and a file store under fileRoot.
func NewDefault(fileRoot string) (*Store, error) {
	return NewStoreChecked(envstore.NewStore(), passstore.NewStore(), filestore.NewStore(fileRoot))
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	var errs []error
	for i, backend := range s.backends {
		err := backend.Put(ctx, key, value)
		if err == nil {
			return nil
		}
		if shouldSkipFallback(err) {
			return err
		}
		if errors.Is(err, envstore.ErrReadOnly) {
			continue
		}
		errs = append(errs, fmt.Errorf("backend %d put: %w", i, err))
	}
	if len(errs) == 0 {
		return errNoneWritable
	}

	return fmt.Errorf("all secret backends failed: %w", errors.Join(errs...))
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	for i, backend := range s.backends {
		value, err := backend.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if shouldSkipFallback(err) {
			return "", err
		}
		errs = append(errs, fmt.Errorf("backend %d get: %w", i, err))
	}

	return "", fmt.Errorf("all secret backends failed: %w", errors.Join(errs...))
}

func (s *Store) Delete(ctx context.Context, key string) error {
	var errs []error
	deleted := false
	for i, backend := range s.backends {
		err := backend.Delete(ctx, key)
		switch {
		case err == nil:
			deleted = true
		case shouldSkipFallback(err):
			return err
		case errors.Is(err, envstore.ErrReadOnly):
		default:
			errs = append(errs, fmt.Errorf("backend %d delete: %w", i, err))
		}
	}
	if deleted {
		return nil
	}
	if len(errs) == 0 {
		return errNoneWritable
	}

	return fmt.Errorf("all secret backends failed: %w", errors.Join(errs...))
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
