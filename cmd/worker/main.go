package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/levanmartirosyan/Tbilink-BE/internal/config"
	"github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/database"
	queueAdapter "github.com/levanmartirosyan/Tbilink-BE/internal/infrastructure/queue/adapter"
	"github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/application/task"
	msgAdapter "github.com/levanmartirosyan/Tbilink-BE/internal/pkg/messaging/persistence/repository/adapter"
)

// The worker drains the notification queue: tasks enqueued by the API when a
// message recipient is offline become persistent notification rows here.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := database.Connect(ctx, cfg.DBURL)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	srv, err := queueAdapter.NewAsynqServer(cfg.RedisURL, cfg.AsynqConcurrency, nil)
	if err != nil {
		log.Fatalf("failed to create queue server: %v", err)
	}

	task.RegisterRecordNotificationTask(srv, msgAdapter.NewPgNotificationRepository(pool))

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started, concurrency=%d", cfg.AsynqConcurrency)
	if err := srv.Run(runCtx); err != nil {
		log.Fatalf("worker stopped: %v", err)
	}
}
