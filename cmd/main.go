// Command centavo runs the personal finance API server.
//
// It exposes balance reporting and ledger endpoints over HTTP/JSON on
// top of PostgreSQL.
//
// Usage:
//
//	centavo --config config.yaml
//
// Environment overrides:
//
//	DATABASE_URL, LISTEN_ADDR, BASE_CURRENCY
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/centavo-app/centavo/config"
	"github.com/centavo-app/centavo/internal/services/balance"
	"github.com/centavo-app/centavo/internal/services/fx"
	"github.com/centavo-app/centavo/internal/services/ledger"
	"github.com/centavo-app/centavo/internal/services/snapshot"
	"github.com/centavo-app/centavo/internal/storage/postgres"
	"github.com/centavo-app/centavo/internal/web"
	"github.com/centavo-app/centavo/pkg/retrier"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The database may still be coming up when the service starts.
	pool, err := retrier.DoWithData(retrier.New(), ctx, func(ctx context.Context) (*pgxpool.Pool, error) {
		return postgres.Connect(ctx, cfg.DatabaseURL)
	})
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := postgres.ApplyMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}

	accounts := postgres.NewAccounts(pool)
	transactions := postgres.NewTransactions(pool)
	snapshots := postgres.NewSnapshots(pool)

	rates := fx.NewRateTable(cfg.FxRates, logger)

	snapshotService, err := snapshot.NewService(accounts, snapshots, transactions, logger)
	if err != nil {
		logger.Fatal("failed to build snapshot service", zap.Error(err))
	}

	ledgerService, err := ledger.NewService(accounts, transactions, snapshotService, logger)
	if err != nil {
		logger.Fatal("failed to build ledger service", zap.Error(err))
	}

	factory, err := balance.NewFactory(accounts, snapshots, transactions, rates)
	if err != nil {
		logger.Fatal("failed to build balance strategies", zap.Error(err))
	}

	balanceService, err := balance.NewService(balance.NewEngine(logger), factory, snapshotService)
	if err != nil {
		logger.Fatal("failed to build balance service", zap.Error(err))
	}

	server := web.NewServer(cfg.ListenAddr, cfg.BaseCurrency, balanceService, ledgerService, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if len(cfg.TLSDomains) > 0 {
			return server.StartWithAutoTLS(ctx, cfg.TLSDomains, cfg.TLSCacheDir)
		}
		return server.Start(ctx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}

	logger.Info("server stopped")
}
