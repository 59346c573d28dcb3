package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendopos/api/internal/cache"
	"github.com/vendopos/api/internal/config"
	"github.com/vendopos/api/internal/handler"
	mw "github.com/vendopos/api/internal/middleware"
	"github.com/vendopos/api/internal/service"
	"github.com/vendopos/api/internal/store"
	"github.com/vendopos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and tenant scoping as needed.
func New(cfg *config.Config, queries *store.Queries, pool *pgxpool.Pool, hub *ws.Hub, posCache cache.POSConfigCache) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// WebSocket sale feed (auth via query-param token)
	r.Get("/ws/tenants/{tid}/sales", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/tenants/{tid}", func(r chi.Router) {
			r.Use(mw.RequireTenant)

			newSaleStore := func(db store.DBTX) service.SaleStore {
				return store.New(db)
			}
			saleService := service.NewSaleService(pool, newSaleStore, queries, posCache)
			saleHandler := handler.NewSaleHandler(saleService, hub)
			r.Route("/sales", saleHandler.RegisterRoutes)
		})
	})

	return r
}
