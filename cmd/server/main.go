package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"formbox/internal/cache"
	"formbox/internal/config"
	"formbox/internal/logger"
	"formbox/internal/repository"
	"formbox/internal/service"
	"formbox/internal/transport/rest"
	"formbox/internal/transport/rest/handler"
	"formbox/internal/validation"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, readpref.Primary()); err != nil {
		log.Fatal().Err(err).Msg("failed to ping MongoDB")
	}
	log.Info().Str("db", cfg.MongoDB).Msg("connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping Redis")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")

	// Wiring
	submissionRepo := repository.NewSubmissionRepo(db)
	draftRepo := repository.NewDraftRepo(db)
	statsCache := cache.NewStatsCache(rdb)

	engine := validation.NewEngine(cfg.MaxQuestions, cfg.MaxAnswerLength)
	guard := service.NewSubmissionGuard(submissionRepo)
	submissionSvc := service.NewSubmissionService(submissionRepo, draftRepo, guard, engine, statsCache, log)
	draftSvc := service.NewDraftService(draftRepo, log)

	health := handler.NewHealthHandler(
		func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
		func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	)

	router := rest.NewRouter(&rest.Container{
		SubmissionService: submissionSvc,
		DraftService:      draftSvc,
		Health:            health,
		Log:               log,
		AllowedOrigins:    cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
