package router

import (
	"net/http"
	"time"

	"printsociety/internal/handler"
	"printsociety/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers the router serves.
type Handlers struct {
	Products *handler.ProductHandler
	Carts    *handler.CartHandler
	Orders   *handler.OrderHandler
	Proofs   *handler.ProofHandler
}

// Options holds the router settings.
type Options struct {
	APIKey         string
	AdminKey       string
	RequestTimeout time.Duration
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Order: RequestID -> Recovery -> Logging -> CORS -> APIKeyAuth
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(opts.APIKey, logger))
	if opts.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(opts.RequestTimeout))
	}

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.GetAll)
			r.Get("/{id}", h.Products.GetByID)
			r.Post("/{id}/quote", h.Products.Quote)
		})

		r.Get("/shipping-options", h.Carts.ShippingOptions)

		r.Route("/carts", func(r chi.Router) {
			r.Post("/", h.Carts.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Carts.Get)
				r.Delete("/", h.Carts.Clear)
				r.Post("/items", h.Carts.AddItem)
				r.Patch("/items/{itemID}", h.Carts.UpdateItem)
				r.Delete("/items/{itemID}", h.Carts.RemoveItem)
				r.Put("/items/{itemID}/artwork", h.Carts.UploadArtwork)
				r.Post("/promo", h.Carts.ApplyPromo)
				r.Delete("/promo", h.Carts.RemovePromo)
				r.Put("/shipping", h.Carts.SetShipping)
				r.Put("/address", h.Carts.SetAddress)
				r.Put("/terms", h.Carts.AcceptTerms)
				r.Get("/summary", h.Carts.Summary)
				r.Post("/checkout", h.Carts.Checkout)
			})
		})

		r.Get("/orders/{id}", h.Orders.GetByID)

		r.Route("/proofs/{id}", func(r chi.Router) {
			r.Get("/", h.Proofs.GetByID)
			r.Post("/approve", h.Proofs.Approve)
			r.Post("/revisions", h.Proofs.RequestRevision)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminAuth(opts.AdminKey, logger))

			r.Get("/orders", h.Orders.List)
			r.Put("/orders/{id}/status", h.Orders.UpdateStatus)
			r.Put("/orders/{id}/tracking", h.Orders.SetTracking)
			r.Post("/orders/{id}/cancel", h.Orders.Cancel)

			r.Post("/proofs/{id}/versions", h.Proofs.AddVersion)
			r.Post("/proofs/{id}/revisions", h.Proofs.AdminRequestRevision)
			r.Post("/proofs/{id}/artwork-received", h.Proofs.MarkArtworkReceived)
		})
	})

	return r
}
