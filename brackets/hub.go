package brackets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/antoniorme/minis-padel/models"
	"github.com/gorilla/websocket"
)

type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Room     string
	IsClosed bool
	Mu       sync.Mutex
}

type WebSocketMessage struct {
	Type    string      `json:"type"`              // "MATCH_UPDATED", "ROUND_ADVANCED"
	Payload interface{} `json:"payload"`           // Полезная нагрузка
	RoomID  string      `json:"room_id,omitempty"` // Комната турнира
}

const (
	MessageMatchUpdated  = "MATCH_UPDATED"
	MessageRoundAdvanced = "ROUND_ADVANCED"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// RoundAdvancedPayload рассылается при переходе турнира в новый тур.
type RoundAdvancedPayload struct {
	TournamentID int            `json:"tournament_id"`
	Round        int            `json:"round"`
	Status       string         `json:"status"`
	NewMatches   []models.Match `json:"new_matches"`
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	logger     *slog.Logger
	done       chan struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// TournamentRoom: идентификатор комнаты турнира.
func TournamentRoom(tournamentID int) string {
	return fmt.Sprintf("tournament_%d", tournamentID)
}

// Run обслуживает регистрацию клиентов до отмены контекста.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.logger.Debug("client registered", slog.String("room", client.Room), slog.Int("clients", len(h.rooms[client.Room])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if roomClients, ok := h.rooms[client.Room]; ok {
				if _, okClient := roomClients[client]; okClient {
					client.Mu.Lock()
					if !client.IsClosed {
						close(client.Send)
						client.IsClosed = true
					}
					client.Mu.Unlock()
					delete(roomClients, client)
					if len(roomClients) == 0 {
						delete(h.rooms, client.Room)
						h.logger.Debug("room closed", slog.String("room", client.Room))
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Join передаёт клиента в Run. После остановки хаба возвращает false.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Leave снимает клиента с регистрации; после остановки хаба ничего не делает.
func (h *Hub) Leave(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// RoomSize возвращает число клиентов в комнате.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// BroadcastToRoom отправляет сообщение всем клиентам в указанной комнате.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal room message", slog.String("room", roomID), slog.Any("error", err))
		return
	}

	for client := range roomClients {
		client.Mu.Lock()
		if client.IsClosed {
			client.Mu.Unlock()
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			h.logger.Warn("client send buffer full, message dropped", slog.String("room", roomID))
		}
		client.Mu.Unlock()
	}
}

// OnScoreSubmitted отправляет обновлённый матч в комнату турнира.
func (h *Hub) OnScoreSubmitted(ctx context.Context, tournamentID int, match models.Match) {
	room := TournamentRoom(tournamentID)
	h.BroadcastToRoom(room, WebSocketMessage{Type: MessageMatchUpdated, Payload: match, RoomID: room})
}

// OnRoundAdvance отправляет новый тур и его матчи в комнату турнира.
func (h *Hub) OnRoundAdvance(ctx context.Context, tournament models.Tournament, newMatches []models.Match) {
	room := TournamentRoom(tournament.ID)
	payload := RoundAdvancedPayload{
		TournamentID: tournament.ID,
		Round:        tournament.CurrentRound,
		Status:       string(tournament.Status),
		NewMatches:   newMatches,
	}
	h.BroadcastToRoom(room, WebSocketMessage{Type: MessageRoundAdvanced, Payload: payload, RoomID: room})
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Leave(c)
		c.Conn.Close()
		c.Mu.Lock()
		c.IsClosed = true
		c.Mu.Unlock()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		// Клиенты только слушают; входящие сообщения игнорируются.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("websocket closed unexpectedly", slog.String("room", c.Room), slog.Any("error", err))
			}
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
