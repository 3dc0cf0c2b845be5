package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/minty/internal/events"
	"github.com/aristath/minty/internal/modules/pages"
	"nhooyr.io/websocket"
)

const writeWait = 10 * time.Second

// HandleStream streams a view's chart and section events over a websocket.
// The current charts and sections are replayed first so a late client starts complete.
// The stream ends with the VIEW_UNMOUNTED event, which carries a login redirect
// when the session expired.
// GET /api/views/{id}/stream
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		h.log.Warn().Err(err).Str("view", view.ID()).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream ended")

	// Subscribe before taking the snapshot so nothing falls in between
	ch, cancel := h.bus.Subscribe(view.ID(), events.DefaultBuffer)
	defer cancel()
	// The idle clock restarts when the last client leaves
	defer h.registry.Touch(view.ID())

	ctx := conn.CloseRead(r.Context())
	h.log.Info().Str("view", view.ID()).Msg("Client connected to view stream")

	for _, ev := range replay(view) {
		if err := writeEvent(ctx, conn, ev); err != nil {
			h.log.Debug().Err(err).Str("view", view.ID()).Msg("Stream replay aborted")
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Str("view", view.ID()).Msg("Client disconnected from view stream")
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := writeEvent(ctx, conn, ev); err != nil {
				h.log.Debug().Err(err).Str("view", view.ID()).Msg("Stream write failed")
				return
			}
			if ev.Type == events.ViewUnmounted {
				conn.Close(websocket.StatusNormalClosure, "view unmounted")
				return
			}
		}
	}
}

// replay builds created events for the live charts and rendered events for the sections
func replay(view pages.View) []events.Event {
	snap := view.Snapshot()
	now := time.Now()

	out := make([]events.Event, 0, len(snap.Charts)+len(snap.Sections))
	for _, c := range snap.Charts {
		out = append(out, events.Event{Type: events.ChartCreated, Scope: snap.ID, Timestamp: now, Data: c})
	}
	for section, model := range snap.Sections {
		out = append(out, events.Event{
			Type:      events.ViewRendered,
			Scope:     snap.ID,
			Timestamp: now,
			Data: &events.ViewRenderedData{
				ViewID:  snap.ID,
				Page:    snap.Page,
				Section: section,
				Model:   model,
			},
		})
	}
	return out
}

func writeEvent(ctx context.Context, conn *websocket.Conn, ev events.Event) error {
	data, err := json.Marshal(&ev)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
