package console

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/matheus3301/botadmin/internal/config"
	"github.com/matheus3301/botadmin/internal/profile"
)

// LoadEnv reads .env from the working directory and then from the base
// directory. Variables already set in the environment win.
func LoadEnv() error {
	for _, path := range []string{".env", filepath.Join(profile.BaseDir(), ".env")} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// LoadParams resolves the profile and client settings for a binary.
func LoadParams(profileFlag, binary string) (Params, error) {
	if err := LoadEnv(); err != nil {
		return Params{}, err
	}
	cfg, err := config.LoadOrDefault(profile.ConfigPath())
	if err != nil {
		return Params{}, err
	}
	name := profile.Resolve(profileFlag, cfg)
	if err := profile.ValidateName(name); err != nil {
		return Params{}, err
	}
	return Params{Profile: name, Config: cfg, Binary: binary}, nil
}

// App builds the fx application for p with fx's own events routed to the
// profile log file.
func App(p Params, opts ...fx.Option) *fx.App {
	return fx.New(append([]fx.Option{
		Module(p),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
	}, opts...)...)
}
