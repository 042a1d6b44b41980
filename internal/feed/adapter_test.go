package feed

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheus3301/botadmin/internal/bus"
	"github.com/matheus3301/botadmin/internal/gateway"
	"github.com/matheus3301/botadmin/internal/messages"
	"github.com/matheus3301/botadmin/internal/session"
	"github.com/matheus3301/botadmin/internal/status"
	"github.com/matheus3301/botadmin/internal/testbackend"
)

type fixture struct {
	srv     *testbackend.Server
	bus     *bus.Bus
	store   *session.Store
	gw      *gateway.Client
	buffer  *messages.Buffer
	adapter *Adapter
	logouts chan struct{}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		srv:     testbackend.New(t),
		bus:     bus.New(),
		buffer:  messages.NewBuffer(messages.DefaultCapacity),
		logouts: make(chan struct{}, 4),
	}
	f.store = session.NewStore(nil, f.bus, nil)
	require.NoError(t, f.store.SetCredential(f.srv.IssueToken()))
	f.gw = gateway.New(f.srv.APIURL(), f.store, gateway.WithForcedLogout(func() { f.logouts <- struct{}{} }))
	f.adapter = New(f.srv.FeedURL(), Deps{
		History:        f.gw,
		Credentials:    f.store,
		Buffer:         f.buffer,
		Machine:        status.NewMachine(f.bus),
		Bus:            f.bus,
		OnUnauthorized: f.gw.ForceLogout,
	})
	t.Cleanup(f.adapter.Deactivate)
	return f
}

// waitForMessage blocks until the adapter publishes a feed.message.
func waitForMessage(t *testing.T, events <-chan bus.Event) messages.ChatMessage {
	t.Helper()
	select {
	case evt := <-events:
		return evt.Payload.(messages.ChatMessage)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed.message")
	}
	return messages.ChatMessage{}
}

func TestHistoryThenLiveFrame(t *testing.T) {
	f := newFixture(t)
	f.srv.SetHistory([]messages.ChatMessage{{ID: 1, Sender: "bot", Content: "hi", MsgType: messages.Text}})
	events, unsub := f.bus.Subscribe(bus.FeedMessage, 8)
	defer unsub()

	require.NoError(t, f.adapter.Activate(context.Background()))
	assert.Equal(t, status.Connected, f.adapter.State())
	require.True(t, f.srv.WaitForFeedClients(1, 2*time.Second))

	f.srv.Broadcast(testbackend.Frame{Platform: "qq", Username: "alice", Content: "hey"})
	waitForMessage(t, events)

	got := f.buffer.Snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Sender)
	assert.Equal(t, "hey", got[0].Content)
	assert.Equal(t, messages.Text, got[0].MsgType)
	assert.True(t, got[0].Live)
	assert.Equal(t, int64(1), got[1].ID)
	assert.Equal(t, "bot", got[1].Sender)
	assert.Equal(t, "hi", got[1].Content)
	assert.False(t, got[1].Live)

	assert.Equal(t, []string{"Bearer " + f.store.Credential()}, f.srv.FeedAuthorizations())
}

func TestMalformedFrameSkipped(t *testing.T) {
	f := newFixture(t)
	events, unsub := f.bus.Subscribe(bus.FeedMessage, 8)
	defer unsub()

	require.NoError(t, f.adapter.Activate(context.Background()))
	require.True(t, f.srv.WaitForFeedClients(1, 2*time.Second))

	f.srv.BroadcastRaw("{not json")
	f.srv.Broadcast(testbackend.Frame{Content: "after"})
	msg := waitForMessage(t, events)

	assert.Equal(t, "after", msg.Content)
	assert.Equal(t, SystemSender, msg.Sender)
	assert.Equal(t, 1, f.buffer.Len())
	assert.Equal(t, status.Connected, f.adapter.State(), "a bad frame does not drop the connection")
}

func TestDeactivateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.adapter.Activate(context.Background()))
	require.True(t, f.srv.WaitForFeedClients(1, 2*time.Second))

	f.adapter.Deactivate()
	f.adapter.Deactivate()
	assert.Equal(t, status.Disconnected, f.adapter.State())
	assert.False(t, f.adapter.Active())
	assert.True(t, f.srv.WaitForFeedClients(0, 2*time.Second))

	f.srv.Broadcast(testbackend.Frame{Content: "late"})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, f.buffer.Len())
}

func TestOversizedFrameEndsConnection(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.adapter.Activate(context.Background()))
	require.True(t, f.srv.WaitForFeedClients(1, 2*time.Second))

	f.srv.BroadcastRaw(`{"Content":"` + strings.Repeat("x", MaxFrameSize) + `"}`)

	require.Eventually(t, func() bool { return !f.adapter.Active() }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, status.Disconnected, f.adapter.State())
	assert.Equal(t, 0, f.buffer.Len())
}

func TestReplaceHistory(t *testing.T) {
	f := newFixture(t)
	f.srv.SetHistory([]messages.ChatMessage{{ID: 1, Sender: "bot"}})

	assert.True(t, f.adapter.ReplaceHistory([]messages.ChatMessage{{ID: 5}, {ID: 4}}))
	assert.Equal(t, 2, f.buffer.Len())

	require.NoError(t, f.adapter.Activate(context.Background()))
	assert.False(t, f.adapter.ReplaceHistory(nil), "the active feed owns the buffer")
	require.Len(t, f.buffer.Snapshot(), 1)
	assert.Equal(t, "bot", f.buffer.Snapshot()[0].Sender)

	f.adapter.Deactivate()
	assert.True(t, f.adapter.ReplaceHistory(nil))
	assert.Equal(t, 0, f.buffer.Len())
}

func TestActivateTwice(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.adapter.Activate(context.Background()))
	assert.ErrorIs(t, f.adapter.Activate(context.Background()), ErrAlreadyActive)
}

func TestReactivateAfterDeactivate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.adapter.Activate(context.Background()))
	f.adapter.Deactivate()
	require.NoError(t, f.adapter.Activate(context.Background()))
	assert.Equal(t, status.Connected, f.adapter.State())
}

func TestServerDropMovesToDisconnected(t *testing.T) {
	f := newFixture(t)
	states, unsub := f.bus.Subscribe(bus.FeedStateChanged, 8)
	defer unsub()

	require.NoError(t, f.adapter.Activate(context.Background()))
	require.True(t, f.srv.WaitForFeedClients(1, 2*time.Second))
	f.srv.DropFeed()

	var seen []status.State
	deadline := time.After(2 * time.Second)
	for len(seen) < 3 {
		select {
		case evt := <-states:
			seen = append(seen, evt.Payload.(status.StatusChange).To)
		case <-deadline:
			t.Fatalf("states so far: %v", seen)
		}
	}
	assert.Equal(t, []status.State{status.Connecting, status.Connected, status.Disconnected}, seen)
	assert.False(t, f.adapter.Active(), "no automatic reconnect")
}

func TestHandshake401ForcesLogout(t *testing.T) {
	f := newFixture(t)
	f.srv.RejectFeed(http.StatusUnauthorized)

	err := f.adapter.Activate(context.Background())
	assert.ErrorIs(t, err, gateway.ErrUnauthorized)
	assert.False(t, f.store.Authenticated())
	assert.Equal(t, status.Disconnected, f.adapter.State())
	select {
	case <-f.logouts:
	default:
		t.Fatal("forced logout handler not run")
	}
}

func TestDialFailure(t *testing.T) {
	f := newFixture(t)
	f.srv.RejectFeed(http.StatusBadGateway)

	err := f.adapter.Activate(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, gateway.ErrUnauthorized))
	assert.True(t, f.store.Authenticated())
	assert.Equal(t, status.Disconnected, f.adapter.State())
	assert.False(t, f.adapter.Active())
}

type blockingHistory struct {
	release chan struct{}
	msgs    []messages.ChatMessage
}

func (h *blockingHistory) Messages(context.Context) ([]messages.ChatMessage, error) {
	<-h.release
	return h.msgs, nil
}

func TestStaleHistoryDiscarded(t *testing.T) {
	f := newFixture(t)
	h := &blockingHistory{release: make(chan struct{}), msgs: []messages.ChatMessage{{ID: 9}}}
	a := New(f.srv.FeedURL(), Deps{
		History:     h,
		Credentials: f.store,
		Buffer:      f.buffer,
		Machine:     status.NewMachine(f.bus),
		Bus:         f.bus,
	})

	done := make(chan error, 1)
	go func() { done <- a.Activate(context.Background()) }()

	require.Eventually(t, a.Active, time.Second, 5*time.Millisecond)
	a.Deactivate()
	close(h.release)

	require.NoError(t, <-done)
	assert.Equal(t, 0, f.buffer.Len())
	assert.Equal(t, 0, f.srv.FeedClients())
	assert.Equal(t, status.Disconnected, a.State())
}

func TestHistoryUnauthorizedStopsActivation(t *testing.T) {
	f := newFixture(t)
	f.srv.RevokeAll()

	err := f.adapter.Activate(context.Background())
	assert.ErrorIs(t, err, gateway.ErrUnauthorized)
	assert.False(t, f.adapter.Active())
	assert.Empty(t, f.srv.FeedAuthorizations(), "no dial after forced logout")
}

func TestLiveIDsIncrease(t *testing.T) {
	a := New("ws://unused", Deps{})
	at := time.UnixMilli(1_000)
	first := a.nextID(at)
	second := a.nextID(at)
	third := a.nextID(at.Add(-time.Second))
	assert.Equal(t, int64(1_000), first)
	assert.Equal(t, int64(1_001), second)
	assert.Equal(t, int64(1_002), third)
	assert.Equal(t, int64(5_000), a.nextID(time.UnixMilli(5_000)))
}

func TestToChatMessage(t *testing.T) {
	at := time.Unix(100, 0)
	tests := []struct {
		name  string
		frame Frame
		want  messages.ChatMessage
	}{
		{
			name:  "full frame",
			frame: Frame{Username: "alice", Content: "pic", MsgType: "image"},
			want:  messages.ChatMessage{ID: 7, Sender: "alice", Content: "pic", MsgType: messages.Image, CreatedAt: at, Live: true},
		},
		{
			name:  "defaults",
			frame: Frame{Content: "boot"},
			want:  messages.ChatMessage{ID: 7, Sender: SystemSender, Content: "boot", MsgType: messages.Text, CreatedAt: at, Live: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToChatMessage(tt.frame, 7, at))
		})
	}
}
