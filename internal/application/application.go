package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"promo-engine/internal/config"
	service "promo-engine/internal/domain/service/deal"
	"promo-engine/internal/domain/service/usage"
	"promo-engine/internal/infrastructure/catalog"
	"promo-engine/internal/infrastructure/notifier"
	"promo-engine/internal/infrastructure/persistence"
	"promo-engine/internal/server"
	"promo-engine/internal/worker"
	"promo-engine/pkg/application/connectors"
	"promo-engine/pkg/application/modules"
	"promo-engine/pkg/contextx"
	"promo-engine/pkg/logx"
	"promo-engine/pkg/middlewarex"
)

const (
	appName        = "promo-engine"
	appVersion     = "1.0.0"
	logFieldMaxLen = 4096
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	rd := &connectors.Redis{
		Address:            cfg.Redis.Address,
		Username:           cfg.Redis.Username,
		Password:           cfg.Redis.Password,
		DatabaseNumber:     cfg.Redis.DatabaseNumber,
		PoolSize:           cfg.Redis.PoolSize,
		MinIdleConnections: cfg.Redis.MinIdleConnections,
		MaxIdleConnections: cfg.Redis.MaxIdleConnections,
	}
	redisClient := rd.Client(ctx)
	defer rd.Close(ctx)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DatabaseNumber,
	})
	defer asynqClient.Close()

	dealRepo := persistence.NewDealRepository(db)
	usageRepo := persistence.NewUsageRepository(db)
	tracker := usage.NewTracker(usageRepo)

	asynqHandlers := []modules.AsynqHandler{
		{Pattern: worker.TypeExpirySweep, Handle: worker.NewExpirySweepHandler(dealRepo).Handle},
	}

	var alerts service.AlertNotifier
	if cfg.Bot.Enabled() {
		alertBot, err := notifier.NewTelegramBot(cfg.Bot.Token, cfg.Bot.ChatID)
		if err != nil {
			return fmt.Errorf("notifier.NewTelegramBot: %w", err)
		}

		alerts = worker.NewEnqueuer(asynqClient)
		asynqHandlers = append(asynqHandlers, modules.AsynqHandler{
			Pattern: worker.TypeCapAlert,
			Handle:  worker.NewCapAlertHandler(dealRepo, alertBot).Handle,
		})
	} else {
		logger(ctx).Warn("telegram alerts disabled, BOT_TOKEN or BOT_CHAT_ID not set")
	}

	dealService := service.NewService(dealRepo, usageRepo, tracker, alerts)

	masker := logx.NewSensitiveDataMasker()
	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Token, masker)

	srv := server.NewServer(
		server.NewDealServer(dealService),
		server.NewCheckoutServer(dealService),
		server.NewStorefrontServer(dealService, catalogClient, redisClient),
	)

	router := chi.NewRouter()
	router.Use(
		middlewarex.Recovery,
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.RequestLogging(masker, logFieldMaxLen),
		middlewarex.ResponseLogging(masker, logFieldMaxLen),
	)
	srv.RegisterRoutes(router)

	g, ctx := errgroup.WithContext(ctx)

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(ctx, g, &http.Server{ //nolint:exhaustruct
		Addr:              cfg.HTTP.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	})

	modules.ProbeServer{
		Name:          appName,
		Version:       appVersion,
		ListenAddress: cfg.HTTP.ProbeListenAddress,
	}.Run(ctx, g)

	modules.MetricServer{
		ListenAddress: cfg.HTTP.MetricListenAddress,
	}.Run(ctx, g)

	modules.AsynqServer{
		RedisAddress:  cfg.Redis.Address,
		RedisUsername: cfg.Redis.Username,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DatabaseNumber,
	}.Run(ctx, g, worker.Queues(), asynqHandlers...)

	sweeper := worker.NewSweeper(asynqClient).WithInterval(cfg.Worker.SweepInterval)
	g.Go(func() error {
		if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("sweeper.Run: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}
