// Package env exposes a password from the environment as a read-only
// secret store.
package env

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bnema/aula-cli/internal/domain"
	"github.com/bnema/aula-cli/internal/ports"
)

const PasswordVariable = "AULA_PASSWORD"

var ErrReadOnly = errors.New("environment secret store is read-only")

type Store struct {
	variable string
	lookup   func(string) (string, bool)
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{variable: PasswordVariable, lookup: os.LookupEnv}
}

// Get answers password keys only; the variable applies to any username.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !strings.HasSuffix(key, "/password") {
		return "", fmt.Errorf("env secret %q: %w", key, domain.ErrCredentialNotFound)
	}

	value, ok := s.lookup(s.variable)
	if !ok || value == "" {
		return "", fmt.Errorf("env %s unset: %w", s.variable, domain.ErrCredentialNotFound)
	}
	return value, nil
}

func (s *Store) Put(context.Context, string, string) error {
	return ErrReadOnly
}

func (s *Store) Delete(context.Context, string) error {
	return ErrReadOnly
}
