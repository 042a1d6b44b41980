package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/botadmin/internal/bus"
	"github.com/matheus3301/botadmin/internal/store"
)

type memPersister struct {
	token   string
	loadErr error
	saveErr error
}

func (m *memPersister) LoadCredential() (string, error) { return m.token, m.loadErr }

func (m *memPersister) SaveCredential(token string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	return nil
}

func (m *memPersister) ClearCredential() error {
	m.token = ""
	return nil
}

func TestSetCredentialAuthenticates(t *testing.T) {
	p := &memPersister{}
	s := NewStore(p, bus.New(), nil)

	if s.Authenticated() {
		t.Fatal("new store is authenticated")
	}
	if err := s.SetCredential("abc"); err != nil {
		t.Fatal(err)
	}
	if !s.Authenticated() || s.Credential() != "abc" {
		t.Errorf("got (%v, %q), want (true, abc)", s.Authenticated(), s.Credential())
	}
	if p.token != "abc" {
		t.Errorf("persisted = %q, want abc", p.token)
	}
}

func TestSetCredentialRejectsEmpty(t *testing.T) {
	s := NewStore(nil, nil, nil)
	if err := s.SetCredential(""); !errors.Is(err, ErrEmptyCredential) {
		t.Errorf("err = %v, want ErrEmptyCredential", err)
	}
	if s.Authenticated() {
		t.Error("empty credential authenticated the store")
	}
}

func TestRestoreInFreshStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	db, _, err := store.OpenMigrated(path)
	if err != nil {
		t.Fatal(err)
	}
	first := NewStore(store.NewCredentials(db), nil, nil)
	if err := first.SetCredential("abc"); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	db, _, err = store.OpenMigrated(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	second := NewStore(store.NewCredentials(db), nil, nil)
	if second.Authenticated() {
		t.Fatal("authenticated before Initialize")
	}
	second.Initialize()
	if !second.Authenticated() || second.Credential() != "abc" {
		t.Errorf("restored (%v, %q), want (true, abc)", second.Authenticated(), second.Credential())
	}
}

func TestClearCredential(t *testing.T) {
	b := bus.New()
	events, unsub := b.Subscribe("session.", 4)
	defer unsub()

	p := &memPersister{}
	s := NewStore(p, b, nil)
	_ = s.SetCredential("abc")
	s.ClearCredential()

	if s.Authenticated() || s.Credential() != "" {
		t.Error("store still authenticated after clear")
	}
	if p.token != "" {
		t.Errorf("persisted = %q after clear", p.token)
	}

	fresh := NewStore(p, nil, nil)
	fresh.Initialize()
	if fresh.Authenticated() {
		t.Error("cleared credential restored in fresh store")
	}

	want := []string{bus.SessionAuthenticated, bus.SessionLoggedOut}
	for _, kind := range want {
		select {
		case evt := <-events:
			if evt.Kind != kind {
				t.Errorf("event = %s, want %s", evt.Kind, kind)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", kind)
		}
	}
}

func TestPersistenceFailureDegradesToMemory(t *testing.T) {
	tests := []struct {
		name string
		p    Persister
	}{
		{"no persister", nil},
		{"save fails", &memPersister{saveErr: errors.New("disk full")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(tt.p, nil, nil)
			if err := s.SetCredential("abc"); err != nil {
				t.Fatalf("SetCredential() = %v, want nil", err)
			}
			if !s.Authenticated() {
				t.Error("in-memory credential lost")
			}
		})
	}
}

func TestInitializeReadFailure(t *testing.T) {
	s := NewStore(&memPersister{token: "abc", loadErr: errors.New("locked")}, nil, nil)
	s.Initialize()
	if s.Authenticated() {
		t.Error("store authenticated despite read failure")
	}
}
