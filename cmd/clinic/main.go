package main

import (
	"context"
	"os"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/config"
	"github.com/hackgods/clinic-scheduling/internal/db"
	"github.com/hackgods/clinic-scheduling/internal/logging"
	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
)

func main() {
	if err := newRootCmd(openSession).Execute(); err != nil {
		os.Exit(1)
	}
}

// openSession connects to Postgres and the configured lock backend.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// The shell talks to the user on stdout, so logs only surface warnings.
	logger := logging.New(cfg.Env, "warn").With().Str("service", "clinic").Logger()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, err
	}

	locker, rdb, err := redisclient.NewLocker(ctx, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &session{
		svc:     appointment.NewService(appointment.NewPgRepository(pool), locker, nil, logger),
		migrate: func(ctx context.Context) error { return db.Migrate(ctx, pool) },
		close: func() {
			if rdb != nil {
				_ = rdb.Close()
			}
			pool.Close()
		},
	}, nil
}
