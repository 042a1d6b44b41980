package console

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/matheus3301/botadmin/internal/bus"
	"github.com/matheus3301/botadmin/internal/config"
	"github.com/matheus3301/botadmin/internal/configtree"
	"github.com/matheus3301/botadmin/internal/gateway"
	"github.com/matheus3301/botadmin/internal/messages"
	"github.com/matheus3301/botadmin/internal/profile"
	"github.com/matheus3301/botadmin/internal/status"
	"github.com/matheus3301/botadmin/internal/testbackend"
)

// startConsole runs the fx module against srv with an isolated home.
func startConsole(t *testing.T, srv *testbackend.Server, home string) *State {
	t.Helper()
	t.Setenv(profile.HomeEnv, home)

	var st *State
	app := fxtest.New(t,
		fx.NopLogger,
		Module(Params{Profile: "test", Config: testConfig(srv), Binary: "test", Exclusive: true}),
		fx.Populate(&st),
	)
	app.RequireStart()
	t.Cleanup(app.RequireStop)
	return st
}

func TestFxModuleWiring(t *testing.T) {
	srv := testbackend.New(t)
	st := startConsole(t, srv, t.TempDir())

	require.NotNil(t, st)
	assert.False(t, st.Authenticated())
	assert.Equal(t, status.Disconnected, st.FeedState())
	assert.Equal(t, messages.DefaultCapacity, st.Buffer.Cap())
}

func TestCredentialRestoredAcrossRuns(t *testing.T) {
	srv := testbackend.New(t)
	home := t.TempDir()
	t.Setenv(profile.HomeEnv, home)

	var st *State
	first := fxtest.New(t, fx.NopLogger,
		Module(Params{Profile: "test", Config: testConfig(srv), Binary: "test"}),
		fx.Populate(&st),
	)
	first.RequireStart()
	require.NoError(t, st.Login(context.Background(), testbackend.Username, testbackend.Password))
	token := st.Session.Credential()
	first.RequireStop()

	second := startConsole(t, srv, home)
	assert.True(t, second.Authenticated())
	assert.Equal(t, token, second.Session.Credential())
}

func testConfig(srv *testbackend.Server) *config.Config {
	cfg := config.Default()
	cfg.Server.APIURL = srv.APIURL()
	cfg.Server.FeedURL = srv.FeedURL()
	return cfg
}

func TestLoginRejected(t *testing.T) {
	srv := testbackend.New(t)
	st := startConsole(t, srv, t.TempDir())

	err := st.Login(context.Background(), "admin", "nope")
	assert.ErrorIs(t, err, gateway.ErrInvalidCredentials)
	assert.False(t, st.Authenticated())
}

func TestLogoutStopsFeedAndClearsCredential(t *testing.T) {
	srv := testbackend.New(t)
	st := startConsole(t, srv, t.TempDir())
	ctx := context.Background()
	events, unsub := st.Bus.Subscribe("session.", 4)
	defer unsub()

	require.NoError(t, st.Login(ctx, testbackend.Username, testbackend.Password))
	require.NoError(t, st.ActivateFeed(ctx))
	require.True(t, srv.WaitForFeedClients(1, 2*time.Second))

	st.Logout()
	assert.False(t, st.Authenticated())
	assert.Equal(t, status.Disconnected, st.FeedState())
	assert.True(t, srv.WaitForFeedClients(0, 2*time.Second))

	kinds := []string{(<-events).Kind, (<-events).Kind}
	assert.Equal(t, []string{bus.SessionAuthenticated, bus.SessionLoggedOut}, kinds)
}

func TestForced401EndsFeed(t *testing.T) {
	srv := testbackend.New(t)
	st := startConsole(t, srv, t.TempDir())
	ctx := context.Background()

	require.NoError(t, st.Login(ctx, testbackend.Username, testbackend.Password))
	require.NoError(t, st.ActivateFeed(ctx))
	srv.RevokeAll()

	err := st.RefreshConfig(ctx)
	assert.ErrorIs(t, err, gateway.ErrUnauthorized)
	assert.False(t, st.Authenticated())
	assert.False(t, st.Feed.Active())
	assert.True(t, srv.WaitForFeedClients(0, 2*time.Second))
}

func TestRefresh(t *testing.T) {
	srv := testbackend.New(t)
	st := startConsole(t, srv, t.TempDir())
	ctx := context.Background()
	require.NoError(t, st.Login(ctx, testbackend.Username, testbackend.Password))

	srv.SetHistory([]messages.ChatMessage{{ID: 2, Sender: "bot"}, {ID: 1, Sender: "alice"}})
	doc, err := configtree.ParseJSON([]byte(`{"qq":{"enabled":true},"discord":{"enabled":false},"llm":{"model":"m"}}`))
	require.NoError(t, err)
	srv.SetConfig(doc)
	srv.SetSessions([]testbackend.Session{{ID: 1, Platform: "qq"}})

	st.Refresh(ctx)

	assert.Nil(t, st.Flash.Current())
	assert.Len(t, st.Messages(), 2)
	assert.Len(t, st.Sessions(), 1)
	assert.Equal(t, []Toggle{{"qq", true}, {"discord", false}}, st.Toggles())
}

func TestRefreshFailureFlashes(t *testing.T) {
	srv := testbackend.New(t)
	st := startConsole(t, srv, t.TempDir())
	ctx := context.Background()
	require.NoError(t, st.Login(ctx, testbackend.Username, testbackend.Password))
	srv.Fail("GET /api/sessions", http.StatusInternalServerError)

	st.Refresh(ctx)

	msg := st.Flash.Current()
	require.NotNil(t, msg)
	assert.Equal(t, FlashErr, msg.Level)
	assert.Contains(t, msg.Text, "sessions")
	assert.True(t, st.Authenticated())
}

func TestReportSkipsUnauthorized(t *testing.T) {
	st := NewState("p", nil, nil, nil, nil, nil, nil, nil)
	assert.False(t, st.Report("x", nil))
	assert.True(t, st.Report("x", gateway.ErrUnauthorized))
	assert.Nil(t, st.Flash.Current())
}

func TestTogglesOnEmptyConfig(t *testing.T) {
	assert.Empty(t, Toggles(nil))
	assert.Empty(t, Toggles(configtree.NewObject()))
}

func TestRefreshLandingAfterFeedActivationKeepsLiveMessages(t *testing.T) {
	srv := testbackend.New(t)
	st := startConsole(t, srv, t.TempDir())
	ctx := context.Background()
	require.NoError(t, st.Login(ctx, testbackend.Username, testbackend.Password))
	srv.SetHistory([]messages.ChatMessage{{ID: 1, Sender: "bot", Content: "hi"}})

	entered, release := srv.HoldNext(t, "GET /api/messages")
	refreshed := make(chan error, 1)
	go func() { refreshed <- st.RefreshMessages(ctx) }()
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("history request never arrived")
	}

	live, unsub := st.Bus.Subscribe(bus.FeedMessage, 4)
	defer unsub()
	require.NoError(t, st.ActivateFeed(ctx))
	require.True(t, srv.WaitForFeedClients(1, 2*time.Second))
	srv.Broadcast(testbackend.Frame{Username: "alice", Content: "hey"})
	select {
	case <-live:
	case <-time.After(2 * time.Second):
		t.Fatal("live frame not applied")
	}

	release()
	require.NoError(t, <-refreshed)

	got := st.Messages()
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Sender)
	assert.True(t, got[0].Live)
	assert.Equal(t, "bot", got[1].Sender)
	assert.True(t, st.Feed.Active())
	assert.Equal(t, status.Connected, st.FeedState())
}
