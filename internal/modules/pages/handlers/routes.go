package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all view routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/views", func(r chi.Router) {
		r.Post("/stock", h.HandleMountStock)         // Mount stock page (?symbol=)
		r.Post("/portfolio", h.HandleMountPortfolio) // Mount portfolio page (bearer token)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetView)
			r.Delete("/", h.HandleUnmount)
			r.Post("/refresh", h.HandleRefresh)
			r.Post("/timeframe", h.HandleSetTimeframe)
			r.Get("/trade", h.HandleTradeLink) // Buy/sell navigation (stock pages)
			r.Get("/stream", h.HandleStream)   // Chart and section events (websocket)
		})
	})
}
