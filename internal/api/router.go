package api

import (
	"net/http"
	"time"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const maxRequestBodySize = 1 << 20

type RouterConfig struct {
	Handlers       *Handlers
	JWTService     *auth.JWTService
	RequestTimeout time.Duration
	// AccessLog receives one line per request; nil means stdout
	AccessLog chimw.LoggerInterface
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers
	authenticated := middleware.AuthMiddleware(cfg.JWTService)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(cfg.AccessLog))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Long-lived; kept outside the request timeout
	r.With(middleware.WSAuthMiddleware(cfg.JWTService)).Get("/ws", h.ServeWS)

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
		}
		r.Use(chimw.RequestSize(maxRequestBodySize))

		// Public
		r.Get("/products", h.GetProducts)
		r.Get("/products/{id}", h.GetProduct)

		// Customer
		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Use(middleware.RequireRole(auth.RoleCustomer))

			r.Get("/cart", h.GetCart)
			r.Post("/cart/add", h.AddToCart)
			r.Post("/cart/remove", h.RemoveFromCart)
			r.Post("/cart/update", h.UpdateCartItem)
			r.Post("/cart/clear", h.ClearCart)

			r.Post("/order", h.PlaceOrder)
			r.Get("/order/users", h.GetOrders)
		})

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Use(middleware.RequireRole(auth.RoleAdmin))

			r.Get("/order/admin", h.GetAllOrders)
			r.Put("/order/{id}", h.UpdateOrderStatus)
			r.Put("/products/{id}", h.UpsertProduct)
			r.Delete("/products/{id}", h.DeleteProduct)
		})
	})

	return r
}
