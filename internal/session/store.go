// Package session holds the operator's bearer credential. Authenticated is
// derived from a non-empty credential and never stored on its own.
package session

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/matheus3301/botadmin/internal/bus"
	"github.com/matheus3301/botadmin/internal/logging"
)

// ErrEmptyCredential is returned by SetCredential for an empty token.
var ErrEmptyCredential = errors.New("session: empty credential")

// Persister is durable storage for the credential. store.Credentials
// implements it.
type Persister interface {
	LoadCredential() (string, error)
	SaveCredential(token string) error
	ClearCredential() error
}

// Store is the credential holder shared by the gateway, the feed and the UI.
type Store struct {
	mu      sync.RWMutex
	token   string
	persist Persister
	bus     *bus.Bus
	logger  *zap.Logger
}

// NewStore creates an unauthenticated store. A nil persister keeps the
// credential in memory only.
func NewStore(p Persister, b *bus.Bus, logger *zap.Logger) *Store {
	return &Store{
		persist: p,
		bus:     b,
		logger:  logging.OrNop(logger),
	}
}

// Initialize restores a previously persisted credential. Read failures are
// logged and leave the store unauthenticated.
func (s *Store) Initialize() {
	if s.persist == nil {
		return
	}
	token, err := s.persist.LoadCredential()
	if err != nil {
		s.logger.Warn("credential restore failed, continuing in memory", zap.Error(err))
		return
	}
	if token == "" {
		return
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.logger.Info("credential restored")
	s.bus.Emit(bus.SessionAuthenticated, nil)
}

// SetCredential stores token in memory and durably. A persistence failure
// is logged; the in-memory credential still takes effect.
func (s *Store) SetCredential(token string) error {
	if token == "" {
		return ErrEmptyCredential
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.SaveCredential(token); err != nil {
			s.logger.Warn("credential persist failed, continuing in memory", zap.Error(err))
		}
	}

	s.bus.Emit(bus.SessionAuthenticated, nil)
	return nil
}

// ClearCredential erases the credential from memory and storage and
// publishes session.logged_out. Clearing an empty store still publishes.
func (s *Store) ClearCredential() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.ClearCredential(); err != nil {
			s.logger.Warn("credential erase failed", zap.Error(err))
		}
	}

	s.logger.Info("credential cleared")
	s.bus.Emit(bus.SessionLoggedOut, nil)
}

// Credential returns the current token, or "" when unauthenticated.
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a credential is held.
func (s *Store) Authenticated() bool {
	return s.Credential() != ""
}
