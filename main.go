package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Performile1/Performile-Version-1-sub000/configs"
	"github.com/Performile1/Performile-Version-1-sub000/consumers"
	"github.com/Performile1/Performile-Version-1-sub000/rabbitmq"
	"github.com/Performile1/Performile-Version-1-sub000/routes"
	"github.com/Performile1/Performile-Version-1-sub000/services"
)

func main() {
	cfg := configs.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := configs.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("connect database failed: %v", err)
	}
	if err := configs.SetupDatabase(db); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}
	if err := configs.SeedLookups(db); err != nil {
		log.Fatalf("seed lookups failed: %v", err)
	}

	// RabbitMQ is optional; without it cache invalidation stays in-process.
	var mq *rabbitmq.RabbitMQ
	if cfg.RabbitURL != "" {
		mq, err = rabbitmq.NewRabbitMQ(cfg)
		if err != nil {
			log.Fatalf("rabbitmq connect failed: %v", err)
		}
		defer mq.Close()
		if err := mq.SetupQueues(); err != nil {
			log.Fatalf("rabbitmq setup failed: %v", err)
		}
	}

	// HTTP
	r := gin.Default()
	wiring := routes.RegisterRoutes(r, db, cfg, mq)

	if mq != nil {
		consumers.StartScoreConsumer(ctx, mq.Channel, cfg, wiring.Cache)
	}

	job := services.NewRefreshJob(cfg, wiring.Cache, wiring.Reviews)
	go job.Run(ctx)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
