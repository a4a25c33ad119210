package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/umami-pos/api/internal/accounting"
	"github.com/umami-pos/api/internal/catalog"
	"github.com/umami-pos/api/internal/collection"
	"github.com/umami-pos/api/internal/config"
	"github.com/umami-pos/api/internal/database"
	"github.com/umami-pos/api/internal/enum"
	"github.com/umami-pos/api/internal/messaging"
	"github.com/umami-pos/api/internal/order"
	"github.com/umami-pos/api/internal/router"
	"github.com/umami-pos/api/internal/seed"
	"github.com/umami-pos/api/internal/terminal"
	"github.com/umami-pos/api/internal/user"
	"github.com/umami-pos/api/internal/ws"
)

const (
	reapInterval    = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store database.DocumentStore
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Println("Connected to database")
		store = database.NewPostgresStore(pool)
	} else {
		log.Println("WARNING: DATABASE_URL not set, using in-memory store")
		mem := database.NewMemoryStore()
		if _, _, err := seed.Run(ctx, mem, mem, seed.Admin{
			Username: "admin",
			Name:     "Administrador",
			Email:    "admin@umamiapp.com",
			Password: "password123",
		}); err != nil {
			return fmt.Errorf("seed memory store: %w", err)
		}
		log.Println("WARNING: seeded default admin/password123")
		store = mem
	}

	products := collection.NewRemote[catalog.Product](ctx, store, enum.CollectionProducts)
	categories := collection.NewRemote[catalog.Category](ctx, store, enum.CollectionCategories)
	warehouse := collection.NewRemote[catalog.WarehouseItem](ctx, store, enum.CollectionWarehouse)
	users := user.NewDirectory(collection.NewRemote[user.User](ctx, store, enum.CollectionUsers))
	journal := accounting.NewJournal(collection.NewRemote[accounting.Entry](ctx, store, enum.CollectionEntries))
	billing := accounting.NewBilling(collection.NewRemote[accounting.Invoice](ctx, store, enum.CollectionInvoices))

	hub := ws.NewHub()
	go hub.Run(ctx)

	notifiers := order.Notifiers{hub, billing}
	if cfg.AMQPURL != "" {
		conn, err := messaging.Dial(cfg.AMQPURL)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		defer conn.Close()
		notifiers = append(notifiers, messaging.NewPublisher(messaging.ConnectionSource(conn)))
		log.Println("Kitchen tickets publishing to", messaging.OrdersExchange)
	}

	var orderStore collection.Store[order.Order]
	if cfg.OrderStore == enum.OrderStoreRemote {
		orderStore = collection.NewRemote[order.Order](ctx, store, enum.CollectionOrders)
	} else {
		orderStore = collection.NewLocal[order.Order](nil)
	}
	orders := order.NewBook(orderStore, notifiers)

	terminals := terminal.NewRegistry(orders, products, cfg.TableCount)
	go terminals.RunReaper(ctx, reapInterval, cfg.TerminalIdleTimeout)

	r := router.New(cfg, router.Deps{
		Products:   products,
		Categories: categories,
		Warehouse:  warehouse,
		Users:      users,
		Orders:     orders,
		Terminals:  terminals,
		Hub:        hub,
		Journal:    journal,
		Billing:    billing,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s (orders: %s)", cfg.Port, cfg.OrderStore)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
