package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"settlers/internal/engine"
	"settlers/internal/protocol"
	"settlers/internal/qrcode"
)

const (
	defaultHistory = 20
	maxHistory     = 100
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type createMatchResponse struct {
	MatchID string          `json:"match_id"`
	State   engine.Snapshot `json:"state"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleCreateMatch opens a match in MAP_BUILDING and returns its state.
func (s *Server) HandleCreateMatch(w http.ResponseWriter, r *http.Request) {
	hub := s.CreateMatch()
	writeJSON(w, http.StatusCreated, createMatchResponse{MatchID: hub.ID(), State: hub.Snapshot()})
}

// HandleListMatches lists live matches, oldest first.
func (s *Server) HandleListMatches(w http.ResponseWriter, r *http.Request) {
	out := []protocol.MatchSummary{}
	for _, m := range s.matches.List() {
		out = append(out, m.(*Hub).Summary())
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleQR generates a QR code PNG for joining the match.
func (s *Server) HandleQR(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.hub(id); !ok {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	base := s.cfg.PublicURL
	if base == "" {
		base = fmt.Sprintf("http://%s", r.Host)
	}
	png, err := qrcode.Generate(qrcode.JoinURL(base, id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "QR generation failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// HandleHistory lists archived results, newest first.
func (s *Server) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}
	limit := defaultHistory
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistory)
	}
	results, err := s.archive.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("load history")
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}
	if results == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// HandleWS attaches a websocket to a match. Without a match id the oldest
// joinable match is used, or a new one is opened.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	var hub *Hub
	if id := r.URL.Query().Get("match"); id != "" {
		h, ok := s.hub(id)
		if !ok {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}
		hub = h
	} else if m, ok := s.matches.FirstJoinable(); ok {
		hub = m.(*Hub)
	} else {
		hub = s.CreateMatch()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade")
		return
	}

	client := NewClient(hub, conn)
	if !hub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "match closed"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
