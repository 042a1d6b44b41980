// Package feed connects the console to the backend's live event stream and
// folds incoming frames into the message buffer.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/matheus3301/botadmin/internal/bus"
	"github.com/matheus3301/botadmin/internal/gateway"
	"github.com/matheus3301/botadmin/internal/logging"
	"github.com/matheus3301/botadmin/internal/messages"
	"github.com/matheus3301/botadmin/internal/status"
)

// ErrAlreadyActive is returned by Activate while an activation is running.
var ErrAlreadyActive = errors.New("feed: already active")

// MaxFrameSize caps a single websocket frame; a larger one ends the
// connection.
const MaxFrameSize = 64 << 10

// History loads the message snapshot shown before live frames arrive.
type History interface {
	Messages(ctx context.Context) ([]messages.ChatMessage, error)
}

// Credentials supplies the bearer token for the handshake.
type Credentials interface {
	Credential() string
}

// Deps are the collaborators of an Adapter.
type Deps struct {
	History     History
	Credentials Credentials
	Buffer      *messages.Buffer
	Machine     *status.Machine
	Bus         *bus.Bus
	Logger      *zap.Logger

	// OnUnauthorized runs when the handshake is rejected with 401.
	OnUnauthorized func()

	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

// Adapter owns at most one websocket connection at a time. Every
// activation gets a generation number; results and frames belonging to an
// older generation are dropped.
type Adapter struct {
	url string
	d   Deps
	now func() time.Time

	mu     sync.Mutex
	gen    uint64
	active bool
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
	lastID int64
}

// New creates an inactive adapter for the websocket at url.
func New(url string, d Deps) *Adapter {
	d.Logger = logging.OrNop(d.Logger)
	if d.Dialer == nil {
		d.Dialer = websocket.DefaultDialer
	}
	return &Adapter{url: url, d: d, now: time.Now}
}

// State returns the connection state.
func (a *Adapter) State() status.State {
	return a.d.Machine.Current()
}

// Active reports whether an activation is in progress or connected.
func (a *Adapter) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Activate loads history into the buffer, then opens the live connection.
// It returns once the connection is established; frames are applied by a
// background reader until the connection drops or Deactivate is called.
// There is no automatic reconnect.
func (a *Adapter) Activate(ctx context.Context) error {
	a.mu.Lock()
	if a.active {
		a.mu.Unlock()
		return ErrAlreadyActive
	}
	a.active = true
	a.gen++
	gen := a.gen
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	if err := a.loadHistory(ctx, gen); err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			a.finish(gen)
			return err
		}
		a.d.Logger.Warn("history fetch failed", zap.Error(err))
		a.d.Bus.Emit(bus.FeedError, err)
	}
	if a.stale(gen) {
		return nil
	}

	if err := a.d.Machine.Transition(status.Connecting); err != nil {
		a.finish(gen)
		return err
	}

	header := http.Header{}
	if token := a.d.Credentials.Credential(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := a.d.Dialer.DialContext(ctx, a.url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if !a.finish(gen) {
			a.abandoned()
			return nil
		}
		a.disconnected()
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			a.d.Logger.Warn("feed handshake rejected credential")
			if a.d.OnUnauthorized != nil {
				a.d.OnUnauthorized()
			}
			return gateway.ErrUnauthorized
		}
		a.d.Logger.Warn("feed dial failed", zap.String("url", a.url), zap.Error(err))
		a.d.Bus.Emit(bus.FeedError, err)
		return fmt.Errorf("dial feed: %w", err)
	}

	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		_ = conn.Close()
		a.abandoned()
		return nil
	}
	done := make(chan struct{})
	a.conn = conn
	a.done = done
	a.mu.Unlock()

	if err := a.d.Machine.Transition(status.Connected); err != nil {
		a.d.Logger.Warn("feed state", zap.Error(err))
	}
	a.d.Logger.Info("feed connected", zap.String("url", a.url))

	go a.read(gen, conn, done)
	return nil
}

// Deactivate closes the connection and abandons any activation in flight.
// Once it returns no further frame reaches the buffer. Calling it when
// inactive is a no-op.
func (a *Adapter) Deactivate() {
	a.mu.Lock()
	if !a.active {
		a.mu.Unlock()
		return
	}
	a.active = false
	a.gen++
	a.cancel()
	conn, done := a.conn, a.done
	a.conn, a.done = nil, nil
	a.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
		<-done
	}
	a.d.Machine.Reset()
	a.d.Logger.Info("feed deactivated")
}

// ReplaceHistory replaces the buffer with msgs unless an activation is in
// progress or connected, in which case the feed owns the buffer and msgs
// are discarded. It reports whether the buffer was replaced.
func (a *Adapter) ReplaceHistory(msgs []messages.ChatMessage) bool {
	a.mu.Lock()
	if a.active {
		a.mu.Unlock()
		a.d.Logger.Debug("feed active, discarding history refresh", zap.Int("count", len(msgs)))
		return false
	}
	a.d.Buffer.ReplaceAll(msgs)
	a.mu.Unlock()

	a.d.Bus.Emit(bus.MessagesReplaced, len(msgs))
	return true
}

func (a *Adapter) loadHistory(ctx context.Context, gen uint64) error {
	msgs, err := a.d.History.Messages(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		a.d.Logger.Debug("discarding stale history", zap.Int("count", len(msgs)))
		return nil
	}
	a.d.Buffer.ReplaceAll(msgs)
	a.mu.Unlock()

	a.d.Bus.Emit(bus.MessagesReplaced, len(msgs))
	return nil
}

func (a *Adapter) read(gen uint64, conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	conn.SetReadLimit(MaxFrameSize)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if a.finish(gen) {
				a.d.Logger.Warn("feed connection lost", zap.Error(err))
				a.d.Bus.Emit(bus.FeedError, err)
				a.disconnected()
			}
			_ = conn.Close()
			return
		}
		a.apply(gen, data)
	}
}

func (a *Adapter) apply(gen uint64, data []byte) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		a.d.Logger.Warn("skipping malformed frame", zap.Error(err), zap.Int("bytes", len(data)))
		return
	}

	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		return
	}
	now := a.now()
	msg := ToChatMessage(f, a.nextID(now), now)
	a.d.Buffer.Prepend(msg)
	a.mu.Unlock()

	a.d.Bus.Emit(bus.FeedMessage, msg)
}

// nextID returns max(previous+1, now in unix millis). Caller holds a.mu.
func (a *Adapter) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= a.lastID {
		id = a.lastID + 1
	}
	a.lastID = id
	return id
}

func (a *Adapter) stale(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen != gen
}

// finish ends activation gen if it is still current.
func (a *Adapter) finish(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen != gen {
		return false
	}
	a.active = false
	a.conn, a.done = nil, nil
	a.cancel()
	a.gen++
	return true
}

func (a *Adapter) disconnected() {
	if err := a.d.Machine.Transition(status.Disconnected); err != nil {
		a.d.Logger.Warn("feed state", zap.Error(err))
	}
}

// abandoned settles the state machine after a Deactivate raced an
// activation that had already moved it to Connecting.
func (a *Adapter) abandoned() {
	if !a.Active() {
		a.d.Machine.Reset()
	}
}
