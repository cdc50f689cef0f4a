package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	RateLimitRPS       float64
	RateLimitBurst     int
}

type Handlers struct {
	Menu     *MenuHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
}

func NewRouter(cfg RouterConfig, hs Handlers, log zerolog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(TerminalMiddleware)
	r.Use(AccessLog(log))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
	}
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware)
		}

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", hs.Menu.ListMenu)
			r.Get("/{id}", hs.Menu.GetItem)
		})

		r.Route("/admin/menu", func(r chi.Router) {
			r.Get("/", hs.Menu.ListAll)
			r.Post("/", hs.Menu.CreateItem)
			r.Patch("/{id}", hs.Menu.UpdateItem)
			r.Delete("/{id}", hs.Menu.DeleteItem)
			r.Patch("/{id}/stock", hs.Menu.SetStock)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", hs.Cart.GetCart)
			r.Delete("/", hs.Cart.ClearCart)
			r.Post("/items", hs.Cart.AddItem)
			r.Put("/items/{key}", hs.Cart.UpdateQuantity)
			r.Delete("/items/{key}", hs.Cart.RemoveItem)
			r.Put("/discount", hs.Cart.SetDiscount)
			r.Delete("/discount", hs.Cart.ClearDiscount)
		})

		r.Post("/checkout", hs.Checkout.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", hs.Orders.ListOrders)
			r.Get("/summary/daily", hs.Orders.DailySummary)
			r.Get("/{id}", hs.Orders.GetOrder)
		})
	})

	return r
}
