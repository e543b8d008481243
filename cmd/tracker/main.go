package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-khana-orders/internal/config"
	kafkax "github.com/ariefcatur/go-khana-orders/internal/kafka"
	"github.com/ariefcatur/go-khana-orders/internal/orders"
	"github.com/ariefcatur/go-khana-orders/internal/redisx"
	"github.com/ariefcatur/go-khana-orders/internal/tracker"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.RedisAddr == "" || len(cfg.KafkaBrokers) == 0 {
		log.Fatal("config: tracker needs REDIS_ADDR and KAFKA_BROKERS")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.Fatalf("redis: %v", err)
	}

	svc := &tracker.Service{
		Timeline:    redisx.NewTimeline(rdb),
		ServiceName: cfg.ServiceName + "-tracker",
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.TrackerGroup, orders.Topics, cfg.TrackerWorkers)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Printf("tracker consumer started: group=%s topics=%s workers=%d",
			cfg.TrackerGroup, strings.Join(orders.Topics, ","), cfg.TrackerWorkers)
		if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumer...")
	cancel()
	<-done
}
