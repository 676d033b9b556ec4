package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/LessonsQueue/QueueManager/internal/api"
	"github.com/LessonsQueue/QueueManager/internal/core/service"
	"github.com/LessonsQueue/QueueManager/internal/core/token"
	"github.com/LessonsQueue/QueueManager/internal/infrastructure/config"
	mongodb "github.com/LessonsQueue/QueueManager/internal/infrastructure/db/mongo"
	redisdb "github.com/LessonsQueue/QueueManager/internal/infrastructure/db/redis"
	"github.com/LessonsQueue/QueueManager/internal/infrastructure/mail"
	"github.com/LessonsQueue/QueueManager/internal/infrastructure/mailqueue"
	"github.com/LessonsQueue/QueueManager/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "queue-manager",
		Pretty:  cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	var sender mail.Sender
	if cfg.SMTP.Host != "" {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		log.Warn().Msg("no SMTP host configured, mails go to the log")
		sender = mail.NewLogSender(log)
	}

	mailer := mailqueue.NewDispatcher(0, sender, redisdb.NewMailDedup(rdb, cfg.Redis.MailDedupTTL), log)
	mailer.Start(ctx)

	users := mongodb.NewUserRepository(db)
	queues := mongodb.NewQueueRepository(db)
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	authService := service.NewAuthService(users, mailer, issuer, cfg.FrontendURL, log)
	userService := service.NewUserService(users, mailer, cfg.FrontendURL, log)
	queueService := service.NewQueueService(queues, userService, log)

	e := api.NewRouter(api.Deps{
		AuthService:  authService,
		UserService:  userService,
		QueueService: queueService,
		Users:        users,
		Issuer:       issuer,
		Mongo:        db,
		Redis:        rdb,
		Log:          log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("server started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
