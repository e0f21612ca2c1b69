package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"rewardledger/config"
	"rewardledger/core/epoch"
	"rewardledger/core/events"
	"rewardledger/core/state"
	"rewardledger/integrations/auditsink"
	"rewardledger/integrations/webhooks"
	"rewardledger/native/blocklist"
	"rewardledger/native/credits"
	"rewardledger/native/instruments"
	"rewardledger/native/rewards"
	"rewardledger/observability/logging"
	telemetry "rewardledger/observability/otel"
	"rewardledger/services/rewardsd/server"
	"rewardledger/storage"
)

const serviceName = "rewardsd"

func main() {
	cfgPath := flag.String("config", "./rewardsd.toml", "path to rewardsd configuration file")
	allowMigrate := flag.Bool("allow-state-migration", false, "start even when the stored schema version differs")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *cfgPath, *allowMigrate); err != nil {
		fmt.Fprintf(os.Stderr, "rewardsd: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string, allowMigrate bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, logCloser := logging.Setup(logging.Options{
		Service:    serviceName,
		Env:        cfg.Service.Environment,
		Level:      logging.ParseLevel(cfg.Logging.Level),
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer logCloser.Close()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: serviceName,
		Environment: cfg.Service.Environment,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Traces:      cfg.Telemetry.Traces,
		Metrics:     cfg.Telemetry.Metrics,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	params, err := cfg.RewardsParams()
	if err != nil {
		return err
	}
	launchAt, err := cfg.LaunchTime()
	if err != nil {
		return err
	}
	secret, err := cfg.JWTSecret()
	if err != nil {
		return err
	}

	db, err := storage.NewLevelDB(cfg.Service.DataDir)
	if err != nil {
		return fmt.Errorf("open data dir %s: %w", cfg.Service.DataDir, err)
	}
	defer db.Close()
	store := state.NewStore(db)
	if err := store.EnsureStateVersion(allowMigrate); err != nil {
		return err
	}

	emitters := events.MultiEmitter{events.LogEmitter{Logger: logger.With(slog.String("component", "events"))}}

	var audit *auditsink.Sink
	if dsn := cfg.Audit.DSN; dsn != "" {
		gdb, err := auditsink.Open(dsn)
		if err != nil {
			return err
		}
		audit, err = auditsink.New(gdb, logger.With(slog.String("component", "auditsink")))
		if err != nil {
			return err
		}
		defer audit.Close()
		logger.Info("audit sink enabled", slog.String("dsn", dsn))
		var replayed int
		err = store.View(func(m *state.Manager) error {
			var err error
			replayed, err = audit.Backfill(ctx, m)
			return err
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("audit backfill: %w", err)
		}
		if replayed > 0 {
			logger.Info("audit sink caught up", slog.Int("events", replayed))
		}
		emitters = append(emitters, audit)
	}

	if endpoint := cfg.Webhook.Endpoint; endpoint != "" {
		hookSecret, err := cfg.WebhookSecret()
		if err != nil {
			return err
		}
		dispatcher, err := webhooks.NewDispatcher(endpoint, hookSecret,
			webhooks.WithTopics(cfg.Webhook.Topics...),
			webhooks.WithRetryPolicy(cfg.Webhook.MaxAttempts, cfg.Webhook.MinBackoff.Duration, cfg.Webhook.MaxBackoff.Duration),
			webhooks.WithLogger(logger.With(slog.String("component", "webhooks"))),
		)
		if err != nil {
			return err
		}
		defer dispatcher.Close()
		emitters = append(emitters, dispatcher)
	}
	store.SetEmitter(emitters)

	engine, err := rewards.NewEngine(store, params, rewards.Deps{
		Clock:     epoch.NewClock(params.Admin),
		Launch:    epoch.StaticLaunch{At: launchAt},
		Gate:      blocklist.NewGate(params.Admin),
		PreLaunch: instruments.NewPreLaunch(params.Admin),
		Primary:   instruments.NewLaunch(),
		Escrow:    instruments.NewEscrow(params.Admin),
	})
	if err != nil {
		return err
	}
	engine.SetLogger(logger.With(slog.String("component", "rewards")))
	if err := engine.Initialize(ctx, params.Admin); err != nil {
		return err
	}

	auth, err := server.NewAuthenticator(server.AuthConfig{
		HMACSecret: secret,
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		ClockSkew:  cfg.Auth.ClockSkew.Duration,
	}, logger)
	if err != nil {
		return err
	}
	opts := []server.Option{server.WithLogger(logger)}
	if audit != nil {
		opts = append(opts, server.WithAuditSink(audit))
	}
	srv, err := server.New(server.Config{
		ListenAddress: cfg.Service.ListenAddress,
		ReadTimeout:   cfg.Service.ReadTimeout.Duration,
		WriteTimeout:  cfg.Service.WriteTimeout.Duration,
		RateLimit: server.RateLimit{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		},
	}, engine, store, credits.NewLedger(params.Accruers...), auth, opts...)
	if err != nil {
		return err
	}

	logger.Info("rewardsd starting",
		slog.String("listen", cfg.Service.ListenAddress),
		slog.String("dataDir", cfg.Service.DataDir),
		slog.Time("launch", launchAt))
	return srv.Run(ctx)
}
