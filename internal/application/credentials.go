package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/aula-cli/internal/domain"
	"github.com/bnema/aula-cli/internal/ports"
)

// VerifyFunc checks that freshly stored credentials work, typically by
// logging in.
type VerifyFunc func(ctx context.Context) error

type CredentialService struct {
	store ports.SecretStore
}

func NewCredentialService(store ports.SecretStore) *CredentialService {
	return &CredentialService{store: store}
}

// SetPassword stores the password and, when verify is given, restores the
// previous value if verification fails.
func (s *CredentialService) SetPassword(ctx context.Context, cmd SetPasswordCommand, verify VerifyFunc) error {
	username := strings.TrimSpace(cmd.Username)
	if username == "" {
		return errors.New("username is required")
	}
	if cmd.Password == "" {
		return errors.New("password is required")
	}
	key := domain.PasswordKey(username)

	previous, err := s.store.Get(ctx, key)
	hadPrevious := err == nil
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	if err := s.store.Put(ctx, key, cmd.Password); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	if verify == nil {
		return nil
	}

	verifyErr := verify(ctx)
	if verifyErr == nil {
		return nil
	}

	var rollbackErr error
	if hadPrevious {
		rollbackErr = s.store.Put(ctx, key, previous)
	} else {
		rollbackErr = s.store.Delete(ctx, key)
	}
	if rollbackErr != nil {
		return fmt.Errorf("verify password and restore previous secret: %w", errors.Join(verifyErr, rollbackErr))
	}
	return fmt.Errorf("verify password: %w", verifyErr)
}

func (s *CredentialService) RemovePassword(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	if err := s.store.Delete(ctx, domain.PasswordKey(username)); err != nil {
		return fmt.Errorf("delete password: %w", err)
	}
	return nil
}
