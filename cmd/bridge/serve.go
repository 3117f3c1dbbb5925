package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TemirB/erp-order-bridge/internal/application/handler"
	"github.com/TemirB/erp-order-bridge/internal/application/orchestrator"
	"github.com/TemirB/erp-order-bridge/internal/application/resolver"
	"github.com/TemirB/erp-order-bridge/internal/application/service"
	"github.com/TemirB/erp-order-bridge/internal/httpapi"
	"github.com/TemirB/erp-order-bridge/internal/kafka"
	"github.com/TemirB/erp-order-bridge/internal/ledger"
	"github.com/TemirB/erp-order-bridge/internal/pkg/breaker"
)

func newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when enabled, the Kafka consumer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

func serve(ctx context.Context, addr string) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	cfg, logger := a.cfg, a.logger
	if addr == "" {
		addr = cfg.HTTPAddr
	}
	if pg, ok := a.ledger.(*ledger.Postgres); ok {
		if err := pg.Migrate(ctx); err != nil {
			return err
		}
	}

	md, err := openMasterData(ctx, cfg, a.pool, a.metrics, logger)
	if err != nil {
		return err
	}
	connector, err := openERP(cfg, logger)
	if err != nil {
		return err
	}

	brk := breaker.New(cfg.Breaker)
	orch := orchestrator.New(connector, brk, logger.Named("orchestrator"), a.metrics)
	res := resolver.New(md, cfg.Defaults, logger.Named("resolver"))

	var (
		events    service.Publisher = kafka.Noop{}
		publisher *kafka.Publisher
	)
	if cfg.Kafka.Enabled {
		topics := []string{cfg.Kafka.Topic, cfg.Kafka.ResultsTopic}
		if cfg.Kafka.EventsTopic != "" {
			topics = append(topics, cfg.Kafka.EventsTopic)
		}
		if err := kafka.EnsureTopics(ctx, cfg.Kafka.Brokers, topics, cfg.Kafka.Workers, logger); err != nil {
			return err
		}

		var eventsWriter kafka.Writer
		if cfg.Kafka.EventsTopic != "" {
			eventsWriter = kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		}
		publisher = kafka.NewPublisher(eventsWriter, kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.ResultsTopic), logger.Named("publisher"))
		events = publisher
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("kafka writers close failed", zap.Error(err))
			}
		}()
	}

	svc := service.NewService(a.ledger, res, orch, events, brk, service.Settings{
		BatchWorkers: cfg.BatchWorkers,
		Retry:        cfg.Retry,
	}, logger.Named("service"), a.metrics)

	api := httpapi.New(svc, httpapi.Options{
		APIKey:         cfg.APIKey,
		Info:           httpapi.Info{Version: version, Environment: cfg.Env, Company: cfg.ERP.CompanyDB},
		MetricsHandler: a.metricsHandler,
	}, logger.Named("http"), a.metrics)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http listening", zap.String("addr", addr))
		return api.ListenAndServe(gctx, addr)
	})

	if publisher != nil {
		h := handler.NewHandler(svc, publisher, cfg.Retry, logger.Named("handler"), a.metrics)
		// One group member per worker; the group spreads partitions over them.
		for i := 0; i < max(cfg.Kafka.Workers, 1); i++ {
			reader := kafka.NewReader(cfg.Kafka)
			consumer := kafka.NewConsumer(h, reader, logger.Named("consumer").With(zap.Int("member", i)))
			g.Go(func() error {
				defer func() {
					if err := reader.Close(); err != nil {
						logger.Warn("kafka reader close failed", zap.Error(err))
					}
				}()
				consumer.Start(gctx)
				return nil
			})
		}
	}

	logger.Info("bridge started",
		zap.String("version", version),
		zap.String("env", cfg.Env),
		zap.String("ledger", cfg.Ledger.Driver),
		zap.String("master_data", cfg.MasterData.Driver),
		zap.String("erp", cfg.ERP.Driver),
		zap.Bool("kafka", cfg.Kafka.Enabled),
	)
	err = g.Wait()
	logger.Info("bridge stopped")
	return err
}
