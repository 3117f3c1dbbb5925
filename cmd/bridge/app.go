package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/TemirB/erp-order-bridge/internal/cache"
	"github.com/TemirB/erp-order-bridge/internal/config"
	"github.com/TemirB/erp-order-bridge/internal/database"
	"github.com/TemirB/erp-order-bridge/internal/erp"
	"github.com/TemirB/erp-order-bridge/internal/erp/sandbox"
	"github.com/TemirB/erp-order-bridge/internal/erp/servicelayer"
	"github.com/TemirB/erp-order-bridge/internal/ledger"
	"github.com/TemirB/erp-order-bridge/internal/masterdata"
	"github.com/TemirB/erp-order-bridge/internal/observability"
)

// app owns the long-lived resources shared by every command.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	pool    *pgxpool.Pool
	ledger  ledger.Store
	metrics observability.Metrics
	// metricsHandler is nil when metrics are disabled.
	metricsHandler http.Handler
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadE()
	if err != nil {
		return nil, err
	}
	logger, err := observability.NewLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, metrics: observability.NewNoop()}
	if cfg.MetricsEnabled {
		prom := observability.NewPrometheus()
		a.metrics, a.metricsHandler = prom, prom.Handler()
	}

	if cfg.NeedsPostgres() {
		a.pool, err = database.Connect(ctx, cfg.DSN(), logger)
		if err != nil {
			return nil, err
		}
	}

	a.ledger, err = openLedger(cfg, a.pool, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	if a.ledger != nil {
		if err := a.ledger.Close(); err != nil {
			a.logger.Warn("ledger close failed", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	_ = a.logger.Sync()
}

func openLedger(cfg config.Config, pool *pgxpool.Pool, logger *zap.Logger) (ledger.Store, error) {
	switch cfg.Ledger.Driver {
	case "postgres":
		if pool == nil {
			return nil, errors.New("postgres ledger without a pool")
		}
		return ledger.NewPostgres(pool, cfg.Ledger, logger), nil
	case "pebble":
		return ledger.OpenPebble(cfg.Ledger.PebbleDir, cfg.Ledger.Lease, logger)
	case "memory":
		logger.Warn("memory ledger: idempotency does not survive a restart")
		return ledger.NewMemory(cfg.Ledger.Lease), nil
	default:
		return nil, fmt.Errorf("unknown ledger driver %q", cfg.Ledger.Driver)
	}
}

func openMasterData(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, metrics observability.Metrics, logger *zap.Logger) (masterdata.Reader, error) {
	var src masterdata.Reader
	switch cfg.MasterData.Driver {
	case "postgres":
		if pool == nil {
			return nil, errors.New("postgres master data without a pool")
		}
		src = masterdata.NewPostgres(pool, cfg.MasterData.Schema)
	case "file":
		f, err := masterdata.LoadFile(cfg.MasterData.File)
		if err != nil {
			return nil, err
		}
		src = f
	default:
		return nil, fmt.Errorf("unknown master data driver %q", cfg.MasterData.Driver)
	}

	c := cache.New(src, cfg.MasterData.CacheCap, cfg.MasterData.CacheTTL, metrics)
	c.Warm(ctx)
	logger.Info("master data ready", zap.String("driver", cfg.MasterData.Driver))
	return c, nil
}

func openERP(cfg config.Config, logger *zap.Logger) (erp.Connector, error) {
	switch cfg.ERP.Driver {
	case "servicelayer":
		return servicelayer.New(cfg.ERP, logger.Named("servicelayer")), nil
	case "sandbox":
		logger.Warn("sandbox ERP: orders are not sent anywhere",
			zap.Int("first_doc_id", cfg.ERP.SandboxFirstDocID),
			zap.Int("first_doc_num", cfg.ERP.SandboxFirstDocNum),
		)
		return sandbox.New(cfg.ERP.SandboxFirstDocID, cfg.ERP.SandboxFirstDocNum), nil
	default:
		return nil, fmt.Errorf("unknown erp driver %q", cfg.ERP.Driver)
	}
}
