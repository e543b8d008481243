package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-khana-orders/internal/carts"
	"github.com/ariefcatur/go-khana-orders/internal/config"
	"github.com/ariefcatur/go-khana-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-khana-orders/internal/kafka"
	"github.com/ariefcatur/go-khana-orders/internal/memory"
	"github.com/ariefcatur/go-khana-orders/internal/mongodb"
	"github.com/ariefcatur/go-khana-orders/internal/orders"
	"github.com/ariefcatur/go-khana-orders/internal/postgres"
	"github.com/ariefcatur/go-khana-orders/internal/receipt"
	"github.com/ariefcatur/go-khana-orders/internal/recipes"
	"github.com/ariefcatur/go-khana-orders/internal/redisx"
)

type stores struct {
	carts   carts.Store
	orders  orders.Store
	recipes recipes.Store
	close   func()
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return stores{}, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return stores{}, err
		}
		return stores{
			carts:   &postgres.CartStore{DB: db},
			orders:  &postgres.OrderStore{DB: db},
			recipes: &postgres.RecipeStore{DB: db},
			close:   db.Close,
		}, nil
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return stores{}, err
		}
		db := client.Database(cfg.MongoDB)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return stores{}, err
		}
		return stores{
			carts:   mongodb.NewCartStore(db),
			orders:  mongodb.NewOrderStore(db),
			recipes: mongodb.NewRecipeStore(db),
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(ctx)
			},
		}, nil
	default:
		return stores{
			carts:   memory.NewCartStore(),
			orders:  memory.NewOrderStore(),
			recipes: memory.NewRecipeStore(),
			close:   func() {},
		}, nil
	}
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stores
	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("store (%s): %v", cfg.StoreDriver, err)
	}
	defer st.close()

	// Redis (optional): order cache, idempotency, timeline
	var (
		orderCache orders.Cache
		idem       orders.IdempotencyIndex
		timeline   httpx.TimelineReader
	)
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := redisx.Ping(ctx, rdb); err != nil {
			log.Fatalf("redis: %v", err)
		}
		oc := redisx.NewOrders(rdb)
		orderCache, idem = oc, oc
		timeline = redisx.NewTimeline(rdb)
	}

	// Kafka producer (optional)
	var events orders.Publisher
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024)
		prod.Start(ctx)
		events = prod
	}

	router := httpx.NewRouter()
	router.Route("/api", func(r chi.Router) {
		(&httpx.CartsHandler{Service: carts.NewService(st.carts)}).Register(r)
		(&httpx.OrdersHandler{
			Service:  orders.NewService(st.orders, orderCache, idem, events, cfg.ServiceName),
			Timeline: timeline,
			QR:       receipt.QRGenerator{BaseURL: cfg.PublicBaseURL},
		}).Register(r)
		(&httpx.RecipesHandler{Service: recipes.NewService(st.recipes)}).Register(r)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s (store=%s)", cfg.HTTPAddr, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close() // flush the inbox, then close the writer
		prod.WaitClosed()
	}
	cancel()
}
