package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/analysis"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/api"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/api/handler"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/auth"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/chathub"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/clock"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/complaint"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/config"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/intake"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/logger"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/mediator"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/models"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/notify"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/storage"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/telegram"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		return nil, nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.PendingVerification{},
		&models.Complaint{},
		&models.SentEmail{},
		&models.SurveyResponse{},
	); err != nil {
		return nil, nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, nil, err
	}
	return db, rdb, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("arquivo .env não encontrado, usando somente o ambiente")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuração inválida", "err", err)
		os.Exit(1)
	}
	logger.Init(cfg.App.LogLevel, cfg.App.LogFile)

	db, rdb, err := setupDependencies(cfg)
	if err != nil {
		slog.Error("falha ao conectar dependências", "err", err)
		os.Exit(1)
	}
	store := storage.NewService(db, rdb)

	notifier := notify.NewService(cfg.SMTP, store)
	authSvc := auth.NewService(store, notifier, cfg.App.JWTSecret)
	complaints := complaint.NewService(store)
	classifier := analysis.NewKeywordClassifier()

	deps := intake.Deps{
		Classifier: classifier,
		Script:     mediator.NewScript(),
		Complaints: complaints,
		Notifier:   notifier,
		Storage:    store,
		Clock:      clock.New(),
		Options: intake.Options{
			QueueEnabled:       cfg.App.QueueEnabled,
			ConnectProbability: cfg.App.ConnectProbability,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telegram.BotToken != "" {
		alerter, err := telegram.New(cfg.Telegram, store)
		if err != nil {
			slog.Error("falha ao iniciar o bot de alertas", "err", err)
			os.Exit(1)
		}
		deps.Alerts = alerter
		go alerter.Run(ctx)
	}

	sessions := intake.NewManager(deps)
	hub := chathub.NewHub(sessions)
	go hub.RunMirror(ctx, store)

	h := handler.NewHandler(authSvc, complaints, classifier, hub, store)
	router := api.NewRouter(h, authSvc)

	srv := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("servidor Alô Consumidor no ar", "addr", cfg.App.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("servidor HTTP encerrou com erro", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("encerrando, aguardando atendimentos em andamento")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("encerramento forçado do servidor HTTP", "err", err)
	}
	hub.Shutdown()
}
