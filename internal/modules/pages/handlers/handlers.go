// Package handlers provides HTTP handlers for mounting and driving dashboard views.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aristath/minty/internal/domain"
	"github.com/aristath/minty/internal/events"
	"github.com/aristath/minty/internal/modules/market"
	"github.com/aristath/minty/internal/modules/pages"
	"github.com/aristath/minty/internal/modules/portfolio"
	"github.com/aristath/minty/internal/modules/valuation"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Config holds handler configuration
type Config struct {
	Stock     market.Config
	Portfolio portfolio.Config
	// DefaultToken is used when a portfolio mount carries no bearer token
	DefaultToken string
}

// Handler handles view HTTP requests
type Handler struct {
	registry *pages.Registry
	sessions domain.SessionClients
	engine   *valuation.Engine
	bus      *events.Bus
	cfg      Config
	log      zerolog.Logger
}

// NewHandler creates a new view handler
func NewHandler(
	registry *pages.Registry,
	sessions domain.SessionClients,
	engine *valuation.Engine,
	bus *events.Bus,
	cfg Config,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		registry: registry,
		sessions: sessions,
		engine:   engine,
		bus:      bus,
		cfg:      cfg,
		log:      log.With().Str("handler", "views").Logger(),
	}
}

// HandleMountStock mounts a stock page for ?symbol= and renders it
// POST /api/views/stock
func (h *Handler) HandleMountStock(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")

	view, err := h.registry.Mount(func(id string) (pages.View, error) {
		return market.NewView(id, symbol, h.sessions.Market(), h.bus, h.cfg.Stock, h.log), nil
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := view.Refresh(r.Context(), true); err != nil {
		h.log.Warn().Err(err).Str("view", view.ID()).Msg("Initial stock refresh failed")
	}
	h.writeJSON(w, http.StatusCreated, view.Snapshot())
}

// HandleMountPortfolio mounts the portfolio page for the bearer token and renders it
// POST /api/views/portfolio
func (h *Handler) HandleMountPortfolio(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		token = h.cfg.DefaultToken
	}

	view, err := h.registry.Mount(func(id string) (pages.View, error) {
		return portfolio.NewView(id, token, h.sessions, h.engine, h.bus, h.cfg.Portfolio, h.log)
	})
	if err != nil {
		if portfolio.IsSessionError(err) {
			h.writeLoginRedirect(w)
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := view.Refresh(r.Context(), true); err != nil {
		if portfolio.IsSessionError(err) {
			_ = h.registry.UnmountFor(view.ID(), pages.ReasonSessionExpired)
			h.writeLoginRedirect(w)
			return
		}
		h.log.Warn().Err(err).Str("view", view.ID()).Msg("Initial portfolio refresh failed")
	}
	h.writeJSON(w, http.StatusCreated, view.Snapshot())
}

// HandleGetView returns the current rendered view
// GET /api/views/{id}
func (h *Handler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, view.Snapshot())
}

// HandleRefresh runs a refresh now
// POST /api/views/{id}/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
	force := r.URL.Query().Get("force") == "true"
	if err := view.Refresh(r.Context(), force); err != nil {
		h.writeViewError(w, view, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view.Snapshot())
}

type timeframeRequest struct {
	Timeframe string `json:"timeframe"`
}

// HandleSetTimeframe switches the view's timeframe
// POST /api/views/{id}/timeframe
func (h *Handler) HandleSetTimeframe(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}

	var req timeframeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := view.SetTimeframe(r.Context(), domain.ParseTimeframe(req.Timeframe)); err != nil {
		if errors.Is(err, pages.ErrInvalidTimeframe) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.writeViewError(w, view, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view.Snapshot())
}

// HandleTradeLink returns the trade page URL of a stock view
// GET /api/views/{id}/trade?side=buy
func (h *Handler) HandleTradeLink(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
	stock, ok := view.(*market.View)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "Trade links are only available on stock views")
		return
	}

	side := domain.OrderSide(strings.ToLower(r.URL.Query().Get("side")))
	if side != domain.OrderSideBuy && side != domain.OrderSideSell {
		h.writeError(w, http.StatusBadRequest, "side must be buy or sell")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"url": stock.TradeLink(side)})
}

// HandleUnmount unmounts a view and destroys its charts
// DELETE /api/views/{id}
func (h *Handler) HandleUnmount(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Unmount(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

func (h *Handler) view(w http.ResponseWriter, r *http.Request) (pages.View, bool) {
	view, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return view, true
}

func (h *Handler) writeViewError(w http.ResponseWriter, view pages.View, err error) {
	if portfolio.IsSessionError(err) {
		_ = h.registry.UnmountFor(view.ID(), pages.ReasonSessionExpired)
		h.writeLoginRedirect(w)
		return
	}
	h.log.Error().Err(err).Str("view", view.ID()).Msg("View refresh failed")
	h.writeError(w, http.StatusInternalServerError, err.Error())
}

func (h *Handler) writeLoginRedirect(w http.ResponseWriter) {
	h.writeJSON(w, http.StatusUnauthorized, map[string]string{"redirect": pages.LoginPage})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
