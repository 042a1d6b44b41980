// Package console is the operator console's application state: one struct
// owning the session, message buffer, config cache and live feed, built by
// the fx module in this package and handed to the TUI and CLI.
package console

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/matheus3301/botadmin/internal/bus"
	"github.com/matheus3301/botadmin/internal/configcache"
	"github.com/matheus3301/botadmin/internal/configtree"
	"github.com/matheus3301/botadmin/internal/feed"
	"github.com/matheus3301/botadmin/internal/gateway"
	"github.com/matheus3301/botadmin/internal/logging"
	"github.com/matheus3301/botadmin/internal/messages"
	"github.com/matheus3301/botadmin/internal/session"
	"github.com/matheus3301/botadmin/internal/status"
)

// State is the single owner of console state.
type State struct {
	Session *session.Store
	Gateway *gateway.Client
	Buffer  *messages.Buffer
	Config  *configcache.Cache
	Feed    *feed.Adapter
	Bus     *bus.Bus
	Flash   *Flash
	Profile string
	logger  *zap.Logger

	mu       sync.RWMutex
	sessions []gateway.BotSession
}

// NewState assembles state from its parts.
func NewState(
	profileName string,
	sess *session.Store,
	gw *gateway.Client,
	buf *messages.Buffer,
	cache *configcache.Cache,
	fd *feed.Adapter,
	b *bus.Bus,
	logger *zap.Logger,
) *State {
	return &State{
		Session: sess,
		Gateway: gw,
		Buffer:  buf,
		Config:  cache,
		Feed:    fd,
		Bus:     b,
		Flash:   NewFlash(),
		Profile: profileName,
		logger:  logging.OrNop(logger),
	}
}

// Login authenticates against the backend and stores the credential.
func (s *State) Login(ctx context.Context, username, password string) error {
	token, err := s.Gateway.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := s.Session.SetCredential(token); err != nil {
		return err
	}
	s.logger.Info("operator logged in", zap.String("username", username))
	return nil
}

// Logout drops the live feed and the credential.
func (s *State) Logout() {
	s.Feed.Deactivate()
	s.Session.ClearCredential()
	s.logger.Info("operator logged out")
}

// Authenticated reports whether a credential is held.
func (s *State) Authenticated() bool {
	return s.Session.Authenticated()
}

// RefreshMessages replaces the buffer with the backend's history. While
// the live feed is active the feed owns the buffer and this is a no-op,
// including when the feed activates while the request is in flight.
func (s *State) RefreshMessages(ctx context.Context) error {
	if s.Feed.Active() {
		return nil
	}
	msgs, err := s.Gateway.Messages(ctx)
	if err != nil {
		return err
	}
	s.Feed.ReplaceHistory(msgs)
	return nil
}

// RefreshConfig re-fetches the configuration snapshot.
func (s *State) RefreshConfig(ctx context.Context) error {
	return s.Config.Fetch(ctx)
}

// SaveConfig pushes doc as the full configuration and reconciles.
func (s *State) SaveConfig(ctx context.Context, doc *configtree.Node) error {
	return s.Config.Push(ctx, doc)
}

// RefreshSessions reloads the bot's platform sessions.
func (s *State) RefreshSessions(ctx context.Context) error {
	list, err := s.Gateway.Sessions(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions = list
	s.mu.Unlock()
	return nil
}

// Sessions returns the last loaded platform sessions.
func (s *State) Sessions() []gateway.BotSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]gateway.BotSession(nil), s.sessions...)
}

// Refresh reloads everything the dashboard shows. Failures are reported
// through the flash and do not stop the other loads.
func (s *State) Refresh(ctx context.Context) {
	s.Report("history", s.RefreshMessages(ctx))
	if !s.Authenticated() {
		return
	}
	s.Report("config", s.RefreshConfig(ctx))
	s.Report("sessions", s.RefreshSessions(ctx))
}

// ActivateFeed starts the live feed.
func (s *State) ActivateFeed(ctx context.Context) error {
	return s.Feed.Activate(ctx)
}

// DeactivateFeed stops the live feed.
func (s *State) DeactivateFeed() {
	s.Feed.Deactivate()
}

// FeedState returns the live connection state.
func (s *State) FeedState() status.State {
	return s.Feed.State()
}

// Messages returns the buffer newest first.
func (s *State) Messages() []messages.ChatMessage {
	return s.Buffer.Snapshot()
}

// Report flashes err with a short context label. Unauthorized errors were
// already turned into a logout and are not flashed. It reports whether
// err was non-nil.
func (s *State) Report(what string, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gateway.ErrUnauthorized) {
		return true
	}
	s.logger.Warn(what+" failed", zap.Error(err))
	s.Flash.Err(fmt.Errorf("%s: %w", what, err))
	return true
}

// Toggle is a platform's enabled flag from the config document.
type Toggle struct {
	Platform string
	Enabled  bool
}

// Toggles lists top-level config sections that carry a boolean "enabled".
func (s *State) Toggles() []Toggle {
	return Toggles(s.Config.Snapshot())
}

// Toggles extracts platform toggles from doc in document order.
func Toggles(doc *configtree.Node) []Toggle {
	var out []Toggle
	for _, key := range doc.Keys() {
		section, _ := doc.Get(key)
		v, ok := section.Get("enabled")
		if !ok || v.Kind() != configtree.Bool {
			continue
		}
		out = append(out, Toggle{Platform: key, Enabled: v.Bool()})
	}
	return out
}
