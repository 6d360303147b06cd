package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-marketplace-escrow.git/internal/config"
	kafkax "github.com/ariefcatur/go-marketplace-escrow.git/internal/kafka"
	"github.com/ariefcatur/go-marketplace-escrow.git/internal/market"
	"github.com/ariefcatur/go-marketplace-escrow.git/internal/notify"
	"github.com/ariefcatur/go-marketplace-escrow.git/internal/redisx"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil || i <= 0 {
		return def
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-notifier",
		Log:         log,
	}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := atoiDefault(os.Getenv("NOTIFIER_WORKERS"), 4)

	// One consumer per order topic, same handler.
	for _, topic := range []string{market.TopicOrderCreated, market.TopicOrderStatus} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers, log)
		go func(topic string) {
			log.Info("notifier consumer started", "topic", topic, "group", group, "workers", workers)
			if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
				log.Error("consumer exited", "topic", topic, "err", err)
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Info("shutting down notifier")
	case <-ctx.Done():
	}
	cancel()
	time.Sleep(500 * time.Millisecond)
}
