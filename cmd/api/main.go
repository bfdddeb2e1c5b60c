package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/notification"
	"github.com/example/ec-storefront/internal/query"
	"github.com/redis/go-redis/v9"
)

type stores struct {
	carts    cart.Repository
	products product.Ledger
	orders   order.Repository
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[API] %v", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		log.Fatalf("[API] %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] EC Storefront - Orders API")
	log.Println("[API] ========================================")

	s := openStores(ctx, cfg)

	// Cart cache (optional)
	var cartCache cart.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("[API] Redis unreachable at %s, cart cache disabled: %v", cfg.RedisAddr, err)
		} else {
			cartCache = cart.NewRedisCache(rdb, cfg.CartCacheTTL)
			log.Printf("[API] Cart cache: Redis %s (ttl %s)", cfg.RedisAddr, cfg.CartCacheTTL)
		}
	}

	// Journal publisher (optional)
	var publisher store.Publisher
	if cfg.KafkaEnabled() {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
		log.Printf("[API] Kafka: %v topic %s", cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	journal := openJournal(cfg, publisher)

	hub := notification.NewHub()
	go hub.Run()

	cartSvc := cart.NewService(s.carts, cartCache, s.products)
	orderSvc := order.NewService(s.orders)

	jwtService := auth.NewJWTService(cfg.JWTSecret, 15*time.Minute)

	cmdHandler := command.NewHandler(cartSvc, s.products, orderSvc, journal, hub)
	queryHandler := query.NewHandler(cartSvc, s.products, orderSvc)

	router := api.NewRouter(api.RouterConfig{
		Handlers:       api.NewHandlers(cmdHandler, queryHandler, hub),
		JWTService:     jwtService,
		RequestTimeout: cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}
	hub.Stop()
}

// openStores uses MongoDB when MONGO_URI is set and process memory otherwise
func openStores(ctx context.Context, cfg *config.Config) stores {
	if cfg.MongoURI == "" {
		log.Println("[API] Stores: in-memory (MONGO_URI not set)")
		return stores{
			carts:    cart.NewMemoryRepository(),
			products: product.NewMemoryLedger(),
			orders:   order.NewMemoryRepository(),
		}
	}

	connectCtx, connectCancel := context.WithTimeout(ctx, 15*time.Second)
	defer connectCancel()

	db, err := store.ConnectMongo(connectCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("[API] %v", err)
	}
	log.Printf("[API] Connected to MongoDB database %s", cfg.MongoDB)

	carts := cart.NewMongoRepository(db)
	products := product.NewMongoLedger(db)
	orders := order.NewMongoRepository(db)

	for name, indexer := range map[string]interface {
		CreateIndexes(context.Context) error
	}{"carts": carts, "products": products, "orders": orders} {
		if err := indexer.CreateIndexes(connectCtx); err != nil {
			log.Fatalf("[API] Failed to create %s indexes: %v", name, err)
		}
	}

	return stores{carts: carts, products: products, orders: orders}
}

// openJournal uses Postgres when DATABASE_URL is set and process memory otherwise
func openJournal(cfg *config.Config, publisher store.Publisher) store.EventStoreInterface {
	if cfg.DatabaseURL == "" {
		log.Println("[API] Journal: in-memory (DATABASE_URL not set)")
		return store.NewEventStore(publisher)
	}

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
	}
	if err := store.RunMigrations(db, cfg.MigrationsPath); err != nil {
		log.Fatalf("[API] Failed to run migrations: %v", err)
	}
	log.Println("[API] Journal: PostgreSQL order_events")
	return store.NewPostgresEventStore(db, publisher)
}
