package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/antoniorme/minis-padel/brackets"
	"github.com/antoniorme/minis-padel/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub               *brackets.Hub
	tournamentService services.TournamentService
	allowedOrigins    []string
	logger            *slog.Logger
}

// NewWebSocketHandler. allowedOrigins "*" разрешает любой Origin.
func NewWebSocketHandler(hub *brackets.Hub, ts services.TournamentService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		allowedOrigins:    allowedOrigins,
		logger:            logger,
	}
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// ServeWs обрабатывает WebSocket запросы для конкретного турнира.
// Клиент должен подключаться к /ws/tournaments/{tournamentID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	ids, ok := urlIDs(w, r, "tournamentID")
	if !ok {
		return
	}
	tournamentID := ids[0]

	// Комната создаётся только для существующего турнира.
	if _, err := h.tournamentService.GetState(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту, так что здесь просто логируем.
		h.logger.Warn("websocket upgrade failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	roomID := brackets.TournamentRoom(tournamentID)
	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256), // Буферизированный канал
		Room: roomID,
	}
	if !client.Hub.Join(client) {
		h.logger.Warn("websocket hub stopped, closing client", slog.String("room", roomID))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("websocket client joined", slog.String("room", roomID))
}
