// Package jsonfile persists the raw calendar response for later reads.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/bnema/aula-cli/internal/adapters/atomicfile"
	"github.com/bnema/aula-cli/internal/domain"
	"github.com/bnema/aula-cli/internal/ports"
)

const (
	UsernamePlaceholder = "{username}"
	tempFilePattern     = ".skoleskema-*.json.tmp"
)

var ErrEmptyPath = errors.New("calendar snapshot path is empty")

type Store struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.LessonSnapshotStore = (*Store)(nil)

// NewStore expands {username} in path so each account can get its own
// snapshot file.
func NewStore(path string, username string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrEmptyPath
	}
	path = strings.ReplaceAll(path, UsernamePlaceholder, strings.TrimSpace(username))

	normalized, err := atomicfile.Normalize(path)
	if err != nil {
		return nil, err
	}

	return &Store{path: normalized, mu: atomicfile.LockForPath(normalized)}, nil
}

func (s *Store) Path() string { return s.path }

// Save replaces the snapshot. data must be a JSON document.
func (s *Store) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("save calendar snapshot: %w", domain.ErrMalformedResponse)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := atomicfile.Write(s.path, data, tempFilePattern); err != nil {
		return fmt.Errorf("save calendar snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or os.ErrNotExist when none was saved.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("load calendar snapshot: %w", err)
	}
	return data, nil
}
