package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"triagem-llm/internal/config"
	"triagem-llm/internal/db"
	apihttp "triagem-llm/internal/http"
	"triagem-llm/internal/llm"
	"triagem-llm/internal/repository"
	"triagem-llm/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	locker := service.NewNoopSessionLocker()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			locker = service.NewRedisSessionLocker(redisClient, 30*time.Second)
		}
		cancel()
	}

	engine := llm.NewOpenAIClient(cfg.EngineBaseURL, cfg.EngineAPIKey, cfg.EngineModel, cfg.EngineTimeout())
	convRepo := repository.NewPgConversationRepository(pool)
	chatSvc := service.NewChatService(engine, convRepo, locker, logger, cfg.EngineTimeout())
	triageSvc := service.NewTriageService(engine, convRepo, logger, cfg.EngineTimeout())
	chatHandler := apihttp.NewChatHandler(logger, chatSvc, triageSvc)
	router := apihttp.NewRouter(logger, chatHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
