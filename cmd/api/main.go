package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/levanmartirosyan/Tbilink-BE/cmd/api/router/v1"
	"github.com/levanmartirosyan/Tbilink-BE/internal/config"
	cacheAdapter "github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/cache/adapter"
	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/database"
	queueAdapter "github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/queue/adapter"
	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/realtime"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/notify"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/session"
	msgAdapter "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/persistence/repository/adapter"
	userAdapter "github.com/levanmartirosyan/Tbilink-BE/internal/repository/adapter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisCache, err := cacheAdapter.NewRedisAdapter(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	queueClient, err := queueAdapter.NewAsynqClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to create queue client: %v", err)
	}
	defer queueClient.Close()

	messageRepo := msgAdapter.NewPgMessageRepository(pool)
	users := userAdapter.NewCachedUserRepository(userAdapter.NewPgUserRepository(pool), redisCache)

	registry := realtime.NewRegistry()
	relay := notify.NewRelay(registry)
	coordinator := session.NewCoordinator(messageRepo, users, registry, relay, queueClient, session.Config{
		MarkReadOnJoin: cfg.MarkReadOnJoin,
	})

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, cfg.JWTSecret, pool, coordinator, registry, relay, users)

	// Start HTTP server (blocks until shutdown)
	if err := r.Run(cfg.ServerAddress); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
