package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-marketplace-escrow.git/internal/config"
	"github.com/ariefcatur/go-marketplace-escrow.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-marketplace-escrow.git/internal/kafka"
	"github.com/ariefcatur/go-marketplace-escrow.git/internal/market"
	"github.com/ariefcatur/go-marketplace-escrow.git/internal/memstore"
	"github.com/ariefcatur/go-marketplace-escrow.git/internal/postgres"
	"github.com/ariefcatur/go-marketplace-escrow.git/internal/redisx"
)

func newLogger(env string) *slog.Logger {
	if env == "production" || env == "prod" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := newLogger(cfg.AppEnv)
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store
	var store market.Store
	switch cfg.StoreDriver {
	case "memory":
		store = memstore.New()
		log.Warn("using in-memory store, data is not durable")
	default:
		pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		store = postgres.NewStore(pool)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers: order created + status changes
	createdProd := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderCreated, 1024, log)
	createdProd.Start(ctx)
	statusProd := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderStatus, 1024, log)
	statusProd.Start(ctx)

	// Service & router
	svc := market.NewService(store)
	router := httpx.NewRouter()
	h := &httpx.Handler{
		Service:         svc,
		JWTSecret:       []byte(cfg.JWTSecret),
		CreatedProducer: createdProd,
		StatusProducer:  statusProd,
		Redis:           rdb,
		ServiceName:     cfg.ServiceName,
		Log:             log,
	}
	h.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen failed", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	createdProd.Close()
	statusProd.Close()
	cancel()
	createdProd.WaitClosed()
	statusProd.WaitClosed()
}
