package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/yamdb/internal/config"
	"github.com/iliyamo/yamdb/internal/database"
	"github.com/iliyamo/yamdb/internal/handler"
	"github.com/iliyamo/yamdb/internal/logger"
	"github.com/iliyamo/yamdb/internal/mail"
	"github.com/iliyamo/yamdb/internal/queue"
	"github.com/iliyamo/yamdb/internal/repository"
	"github.com/iliyamo/yamdb/internal/router"
	"github.com/iliyamo/yamdb/internal/service"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient(ctx)
	if rdb != nil {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	categories := repository.NewCategoryRepo(db)
	genres := repository.NewGenreRepo(db)
	titles := repository.NewTitleRepo(db)
	reviews := repository.NewReviewRepo(db)
	comments := repository.NewCommentRepo(db)

	paging := handler.Paging{Default: cfg.PageSize, Max: cfg.MaxPageSize}
	publisher := service.NewCodePublisher(cfg.AMQPURL, cfg.MailQueue)

	e := router.New(router.Handlers{
		Auth:       handler.NewAuthHandler(users, publisher, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost),
		Users:      handler.NewUserHandler(users, paging),
		Categories: handler.NewCategoryHandler(categories, paging),
		Genres:     handler.NewGenreHandler(genres, paging),
		Titles:     handler.NewTitleHandler(titles, categories, genres, paging),
		Reviews:    handler.NewReviewHandler(titles, reviews, paging),
		Comments:   handler.NewCommentHandler(reviews, comments, paging),
	}, router.Options{
		JWTSecret:     cfg.JWTSecret,
		Users:         users,
		Redis:         rdb,
		RateLimit:     config.LoadRateLimitConfig(),
		AuthRateLimit: config.LoadAuthRateLimitConfig(),
		DB:            db,
	})

	mailCfg := config.LoadMailConfig()
	if mailCfg.Enabled {
		consumer := &queue.Consumer{URL: cfg.AMQPURL, Queue: cfg.MailQueue, Mailer: mail.NewSMTPMailer(mailCfg)}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("mail consumer stopped")
			}
		}()
	}

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
