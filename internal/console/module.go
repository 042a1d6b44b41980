package console

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/botadmin/internal/bus"
	"github.com/matheus3301/botadmin/internal/config"
	"github.com/matheus3301/botadmin/internal/configcache"
	"github.com/matheus3301/botadmin/internal/feed"
	"github.com/matheus3301/botadmin/internal/gateway"
	"github.com/matheus3301/botadmin/internal/lock"
	"github.com/matheus3301/botadmin/internal/logging"
	"github.com/matheus3301/botadmin/internal/messages"
	"github.com/matheus3301/botadmin/internal/profile"
	"github.com/matheus3301/botadmin/internal/session"
	"github.com/matheus3301/botadmin/internal/status"
	"github.com/matheus3301/botadmin/internal/store"
)

// Params holds the resolved profile and client settings passed to the fx
// module.
type Params struct {
	Profile string
	Config  *config.Config
	Binary  string // log file name, e.g. "botadmin"

	// Console mirrors warnings to stderr. The TUI leaves it off.
	Console bool
	// Exclusive holds the profile lock for the process lifetime.
	Exclusive bool
}

// Module returns the fx module composing the console state and its
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("console",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideSession,
			provideGateway,
			provideBuffer,
			provideConfigCache,
			provideMachine,
			provideFeed,
			provideState,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	return logging.New(profile.LogPath(p.Profile, p.Binary), p.Profile, p.Config.Log.Level, p.Console)
}

func provideBus() *bus.Bus {
	return bus.New()
}

// provideLock returns a nil lock when the process does not need exclusivity.
func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if !p.Exclusive {
		return nil, nil
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

// provideStore returns a nil DB when the state database cannot be opened;
// the session then lives in memory only.
func provideStore(p Params, logger *zap.Logger) *store.DB {
	dbPath := profile.StatePath(p.Profile)
	db, result, err := store.OpenMigrated(dbPath)
	if err != nil {
		logger.Warn("local state unavailable, credential will not persist",
			zap.String("path", dbPath), zap.Error(err))
		return nil
	}
	if result.Changed() {
		logger.Info("migrations applied", zap.Uint("from", result.From), zap.Uint("to", result.To))
	} else {
		logger.Debug("migrations up to date", zap.Uint("version", result.To))
	}
	return db
}

func provideSession(db *store.DB, b *bus.Bus, logger *zap.Logger) *session.Store {
	if db == nil {
		return session.NewStore(nil, b, logger)
	}
	return session.NewStore(store.NewCredentials(db), b, logger)
}

func provideGateway(p Params, sess *session.Store, logger *zap.Logger) *gateway.Client {
	return gateway.New(p.Config.Server.APIURL, sess, gateway.WithLogger(logger))
}

func provideBuffer() *messages.Buffer {
	return messages.NewBuffer(messages.DefaultCapacity)
}

func provideConfigCache(gw *gateway.Client, b *bus.Bus, logger *zap.Logger) *configcache.Cache {
	return configcache.New(gw, b, logger)
}

func provideMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideFeed(p Params, gw *gateway.Client, sess *session.Store, buf *messages.Buffer, m *status.Machine, b *bus.Bus, logger *zap.Logger) *feed.Adapter {
	fd := feed.New(p.Config.Server.FeedURL, feed.Deps{
		History:        gw,
		Credentials:    sess,
		Buffer:         buf,
		Machine:        m,
		Bus:            b,
		Logger:         logger,
		OnUnauthorized: gw.ForceLogout,
	})
	// A 401 on any REST call also ends the live connection.
	gw.SetForcedLogout(fd.Deactivate)
	return fd
}

func provideState(p Params, sess *session.Store, gw *gateway.Client, buf *messages.Buffer, cache *configcache.Cache, fd *feed.Adapter, b *bus.Bus, logger *zap.Logger) *State {
	return NewState(p.Profile, sess, gw, buf, cache, fd, b, logger)
}

func registerLifecycle(lc fx.Lifecycle, sess *session.Store, fd *feed.Adapter, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sess.Initialize()
			logger.Info("console started", zap.Bool("authenticated", sess.Authenticated()))
			return nil
		},
		OnStop: func(_ context.Context) error {
			fd.Deactivate()
			if db != nil {
				if err := db.Close(); err != nil {
					logger.Warn("error closing state db", zap.Error(err))
				}
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("console stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
