package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sauti/internal/cache"
	"sauti/internal/config"
	"sauti/internal/nlp"
	"sauti/internal/repository"
	"sauti/internal/service"
	"sauti/internal/transport/rest"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	if cfg.MongoURI == "" {
		log.Fatal("MONGO_URI not set")
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	logger.Info("connected to MongoDB")

	db := mongoClient.Database("sauti")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	logger.Info("connected to Redis")

	// Initialize repositories
	surveyRepo := repository.NewSurveyRepo(db)
	responseRepo := repository.NewResponseRepo(db)
	analysisRepo := repository.NewAnalysisRepo(db)

	// Initialize cache
	analysisCache := cache.NewAnalysisCache(rdb)

	// Semantic tier and translation are optional capabilities
	scorer := semanticScorer(cfg, logger)
	var translator service.Translator
	if tc := service.NewTranslateClient(cfg.TranslateEndpoint); tc != nil {
		translator = tc
		logger.Info("translation enabled", zap.String("endpoint", cfg.TranslateEndpoint))
	}

	container := &rest.Container{
		SurveyRepo:    surveyRepo,
		ResponseRepo:  responseRepo,
		AnalysisRepo:  analysisRepo,
		AnalysisCache: analysisCache,
		Scorer:        scorer,
		Translator:    translator,
		WorkingLang:   cfg.WorkingLang,
		FreeForm:      true,
		Log:           logger,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("server exited")
}

// semanticScorer returns the embedding-backed scorer when an endpoint is
// configured, nil otherwise. A nil scorer keeps every consumer on the
// lexical tier.
func semanticScorer(cfg *config.Config, logger *zap.Logger) nlp.SimilarityScorer {
	es := nlp.NewEmbeddingScorer(cfg.EmbedEndpoint)
	if es == nil {
		logger.Info("EMBED_ENDPOINT not set, semantic tier disabled")
		return nil
	}
	logger.Info("semantic tier enabled", zap.String("endpoint", cfg.EmbedEndpoint))
	return es
}

func newLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zcfg.Build()
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	return logger
}
