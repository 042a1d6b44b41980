package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matheus3301/botadmin/internal/config"
)

func TestDirUsesHomeOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnv, home)

	got := Dir("main")
	want := filepath.Join(home, "profiles", "main")
	if got != want {
		t.Errorf("Dir(main) = %q, want %q", got, want)
	}
}

func TestDefaultBaseDir(t *testing.T) {
	t.Setenv(HomeEnv, "")
	home, _ := os.UserHomeDir()
	if got, want := BaseDir(), filepath.Join(home, ".botadmin"); got != want {
		t.Errorf("BaseDir() = %q, want %q", got, want)
	}
}

func TestPathSuffixes(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"state", StatePath("ops"), filepath.Join("profiles", "ops", "state.db")},
		{"lock", LockPath("ops"), filepath.Join("profiles", "ops", "LOCK")},
		{"log", LogPath("ops", "botadmin"), filepath.Join("profiles", "ops", "logs", "botadmin.log")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasSuffix(tt.got, tt.want) {
				t.Errorf("path = %q, want suffix %q", tt.got, tt.want)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	t.Setenv(HomeEnv, t.TempDir())

	if err := EnsureDir("test"); err != nil {
		t.Fatal(err)
	}
	for _, d := range []string{Dir("test"), LogDir("test")} {
		info, err := os.Stat(d)
		if err != nil {
			t.Fatalf("%s not created: %v", d, err)
		}
		if perm := info.Mode().Perm(); perm != 0700 {
			t.Errorf("%s permission = %o, want 0700", d, perm)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		flag string
		cfg  *config.Config
		want string
	}{
		{"flag wins", "ops", &config.Config{DefaultProfile: "work"}, "ops"},
		{"config default", "", &config.Config{DefaultProfile: "work"}, "work"},
		{"nil config", "", nil, DefaultName},
		{"empty config", "", &config.Config{}, DefaultName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.flag, tt.cfg); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}
