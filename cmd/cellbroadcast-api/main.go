package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/cellbroadcast-api/api/swagger"
	"github.com/noah-isme/cellbroadcast-api/internal/handler"
	internalmiddleware "github.com/noah-isme/cellbroadcast-api/internal/middleware"
	"github.com/noah-isme/cellbroadcast-api/internal/models"
	"github.com/noah-isme/cellbroadcast-api/internal/policy"
	"github.com/noah-isme/cellbroadcast-api/internal/repository"
	"github.com/noah-isme/cellbroadcast-api/internal/service"
	"github.com/noah-isme/cellbroadcast-api/pkg/cache"
	"github.com/noah-isme/cellbroadcast-api/pkg/config"
	"github.com/noah-isme/cellbroadcast-api/pkg/database"
	"github.com/noah-isme/cellbroadcast-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/cellbroadcast-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/cellbroadcast-api/pkg/middleware/requestid"
	"github.com/noah-isme/cellbroadcast-api/pkg/mqtt"
	"github.com/noah-isme/cellbroadcast-api/pkg/storage"
)

// @title Cell Broadcast API
// @version 1.0.0
// @description Receives decoded cell broadcasts, decides how each alert is presented and keeps the alert history.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	broadcastRepo := repository.NewBroadcastRepository(db, logr)
	if err := broadcastRepo.Migrate(ctx); err != nil {
		logr.Fatal("broadcast schema migration failed", zap.Error(err))
	}
	settingRepo := repository.NewSettingRepository(db)
	channelRepo := repository.NewChannelRepository(db)

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, reminder state kept in memory", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	reminderStore := repository.NewReminderStateRepository(redisClient, cfg.Reminder.StateTTL, logr)

	validate := validator.New()
	flags := models.CarrierFlags{
		ForceDisableTestAlerts:  cfg.Carrier.ForceDisableTestAlerts,
		AlwaysShowAlertToggle:   cfg.Carrier.AlwaysShowAlertToggle,
		PresidentialToneVibrate: cfg.Carrier.PresidentialToneVibrate,
		AlertToneEnable:         cfg.Carrier.AlertToneEnable,
		RegionalWEAReminder:     cfg.Carrier.RegionalWEAReminder,
	}
	table := policy.NewTable(cfg.Carrier.ChannelRanges, logr)

	var ingestSvc *service.IngestService
	gate := service.NewDedupGate(cfg.Pipeline.DedupCapacity)
	metricsSvc := service.NewMetricsService(service.GaugeSources{
		DedupKeys: gate.Len,
		IngestQueue: func() int {
			if ingestSvc == nil {
				return 0
			}
			return ingestSvc.Pending()
		},
	})

	settingSvc := service.NewSettingService(settingRepo, validate, logr)
	channelSvc := service.NewChannelService(channelRepo, settingSvc, validate, logr)
	carrierSvc := service.NewCarrierService(table, cfg.Carrier.ChannelRanges, flags, validate, logr)
	envLoader := service.NewEnvironmentLoader(settingSvc, carrierSvc, channelSvc, logr)
	classifier := service.NewClassifier(table, logr)

	presenter, closePresenter, presenterReady := buildPresenter(cfg.Presenter, logr)
	defer closePresenter()

	alarms := service.NewTimerScheduler()
	reminders := service.NewReminderScheduler(alarms, reminderStore, metricsSvc, logr, service.ReminderConfig{
		RegionalWEA: cfg.Carrier.RegionalWEAReminder,
	})
	pipeline := service.NewAlertPipeline(classifier, gate, broadcastRepo, envLoader, presenter, reminders, metricsSvc, logr)

	ingestSvc = service.NewIngestService(pipeline, validate, logr, service.IngestConfig{
		BufferSize:     cfg.Pipeline.BufferSize,
		ProcessTimeout: cfg.Pipeline.ProcessTimeout,
		Observe:        metricsSvc.ObserveIngest,
	})
	ingestSvc.Start(ctx)

	if err := reminders.Restore(ctx); err != nil {
		logr.Warn("failed to restore reminder", zap.Error(err))
	}

	broadcastSvc := service.NewBroadcastService(broadcastRepo, classifier, envLoader, metricsSvc, validate, logr)
	alertSvc := service.NewAlertService(reminders, broadcastSvc, logr)

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	exportSvc := service.NewExportService(broadcastRepo, exportStore, service.ExportConfig{Retention: cfg.Exports.Retention}, validate, logr, nil, nil, nil)

	var tokens *service.TokenService
	if cfg.Auth.Enabled {
		clients := make([]service.TokenClient, 0, len(cfg.Auth.Clients))
		for _, client := range cfg.Auth.Clients {
			clients = append(clients, service.TokenClient{ID: client.ID, Role: models.Role(client.Role), SecretHash: client.SecretHash})
		}
		tokens = service.NewTokenService(service.TokenConfig{
			Secret:  cfg.Auth.Secret,
			Issuer:  cfg.Auth.Issuer,
			Expiry:  cfg.Auth.Expiration,
			Clients: clients,
		})
	}
	ingestLimit := internalmiddleware.NewRateLimiter(cfg.Pipeline.IngestRate, cfg.Pipeline.IngestBurst)
	defer ingestLimit.Close()

	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	if presenterReady != nil {
		checks["mqtt"] = presenterReady
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/health", "/ready", "/metrics"))

	handler.RegisterRoutes(r, handler.Routes{
		Prefix:      cfg.APIPrefix,
		AuthEnabled: cfg.Auth.Enabled,
		Tokens:      tokens,
		IngestLimit: ingestLimit,
		AuditLog:    logr,
		Auth:        handler.NewAuthHandler(tokens),
		Broadcasts:  handler.NewBroadcastHandler(ingestSvc, broadcastSvc, exportSvc, logr),
		Alerts:      handler.NewAlertHandler(alertSvc),
		Settings:    handler.NewSettingHandler(settingSvc),
		Channels:    handler.NewChannelHandler(channelSvc),
		Carrier:     handler.NewCarrierHandler(carrierSvc),
		Metrics:     handler.NewMetricsHandler(metricsSvc, checks),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "auth", cfg.Auth.Enabled, "presenter", cfg.Presenter.Kind)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}

	if err := ingestSvc.Stop(shutdownCtx); err != nil {
		logr.Warn("ingest queue not drained", zap.Error(err))
	}
	reminders.Cancel(shutdownCtx, "shutdown")
	alarms.Close()
	stop()
}

func buildPresenter(cfg config.PresenterConfig, logr *zap.Logger) (service.Presenter, func(), handler.ReadinessCheck) {
	if cfg.Kind != config.PresenterMQTT {
		return service.NewLogPresenter(logr), func() {}, nil
	}
	client, err := mqtt.NewClient(mqtt.Options{
		Broker:   cfg.MQTTBroker,
		ClientID: cfg.MQTTClientID,
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
		Logger:   logr,
	})
	if err != nil {
		logr.Warn("mqtt presenter unavailable, presenting to log", zap.Error(err))
		return service.NewLogPresenter(logr), func() {}, nil
	}
	ready := func(ctx context.Context) error {
		if !client.IsConnected() {
			return errors.New("mqtt broker disconnected")
		}
		return nil
	}
	return service.NewMQTTPresenter(client, cfg.MQTTTopic, logr), client.Close, ready
}
