package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/umami-pos/api/internal/accounting"
	"github.com/umami-pos/api/internal/catalog"
	"github.com/umami-pos/api/internal/config"
	"github.com/umami-pos/api/internal/enum"
	"github.com/umami-pos/api/internal/handler"
	mw "github.com/umami-pos/api/internal/middleware"
	"github.com/umami-pos/api/internal/order"
	"github.com/umami-pos/api/internal/terminal"
	"github.com/umami-pos/api/internal/user"
	"github.com/umami-pos/api/internal/ws"
)

// Deps are the long-lived services the routes are served from.
type Deps struct {
	Products   handler.RemoteStore[catalog.Product]
	Categories handler.RemoteStore[catalog.Category]
	Warehouse  handler.RemoteStore[catalog.WarehouseItem]
	Users      *user.Directory
	Orders     *order.Book
	Terminals  *terminal.Registry
	Hub        *ws.Hub
	Journal    *accounting.Journal
	Billing    *accounting.Billing
}

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, deps Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Collection-Error"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	authHandler := handler.NewAuthHandler(deps.Users, deps.Terminals, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Live order feed; authenticates its own handshake
	r.Method(http.MethodGet, "/ws/orders", ws.NewHandler(deps.Hub, cfg.JWTSecret, ws.TopicOrders, cfg.CORSOrigins))

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Post("/auth/logout", authHandler.Logout)

		r.Route("/products", handler.NewProductHandler(deps.Products).RegisterRoutes)
		r.Route("/categories", handler.NewCategoryHandler(deps.Categories).RegisterRoutes)
		r.Route("/warehouse", handler.NewWarehouseHandler(deps.Warehouse).RegisterRoutes)

		orderHandler := handler.NewOrderHandler(deps.Orders)
		r.Route("/orders", orderHandler.RegisterRoutes)
		r.Route("/terminals", handler.NewTerminalHandler(deps.Terminals, orderHandler).RegisterRoutes)

		// Back office
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin, enum.UserRoleManager))
			r.Route("/accounting", handler.NewAccountingHandler(deps.Journal).RegisterRoutes)
			r.Route("/invoices", handler.NewInvoiceHandler(deps.Billing).RegisterRoutes)
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleAdmin))
			r.Route("/users", handler.NewUserHandler(deps.Users).RegisterRoutes)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
