package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/puissance4/internal/domain"
	"github.com/iamasit07/puissance4/internal/service/game"
	"github.com/iamasit07/puissance4/pkg/auth"
	"github.com/iamasit07/puissance4/pkg/uid"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager    *ConnectionManager
	SessionManager *game.SessionManager
	Upgrader       websocket.Upgrader
}

// NewHandler creates a new WebSocket handler. An empty origin list accepts
// every origin.
func NewHandler(cm *ConnectionManager, sm *game.SessionManager, allowedOrigins []string) *Handler {
	return &Handler{
		ConnManager:    cm,
		SessionManager: sm,
		Upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == origin {
				return true
			}
		}
		log.Warn().Str("origin", origin).Msg("[WS] Origin rejected")
		return false
	}
}

// HandleWebSocket is the HTTP handler that upgrades the connection
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("[WS] Upgrade error")
		return
	}

	h.handleConnection(conn)
}

// handleConnection manages the lifecycle of a single WebSocket connection
func (h *Handler) handleConnection(conn *websocket.Conn) {
	connID := uid.NewConnectionID()
	h.ConnManager.AddConnection(connID, conn)
	log.Info().Str("conn_id", connID).Msg("[WS] Client connected")

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	joined := make(map[string]bool)

	defer func() {
		close(done)
		for gameID := range joined {
			if _, err := h.SessionManager.HandleLeave(gameID, connID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
				log.Error().Err(err).Str("game_id", gameID).Str("conn_id", connID).Msg("[WS] leave on disconnect failed")
			}
		}
		h.ConnManager.RemoveConnection(connID)
		log.Info().Str("conn_id", connID).Msg("[WS] Connection closed")
	}()

	h.ConnManager.SendMessage(connID, domain.ServerMessage{Type: domain.MsgConnected, ConnID: connID})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("conn_id", connID).Msg("[WS] Client disconnected unexpectedly")
			}
			return
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug().Err(err).Str("conn_id", connID).Msg("[WS] Invalid message format")
			h.sendError(connID, "invalid message format")
			continue
		}

		h.processMessage(connID, msg, joined)
	}
}

func (h *Handler) processMessage(connID string, msg domain.ClientMessage, joined map[string]bool) {
	switch msg.Type {
	case domain.MsgJoinGame:
		name, err := h.displayName(msg)
		if err != nil {
			h.sendError(connID, "invalid token")
			return
		}
		if _, err := h.SessionManager.HandleJoin(msg.GameID, connID, name); err != nil {
			h.sendError(connID, err.Error())
			return
		}
		joined[msg.GameID] = true

	case domain.MsgMakeMove:
		column := -1
		if msg.Column != nil {
			column = *msg.Column
		}
		if _, err := h.SessionManager.HandleMove(msg.GameID, connID, column); err != nil {
			h.sendError(connID, err.Error())
		}

	case domain.MsgResetGame:
		if !joined[msg.GameID] {
			h.sendError(connID, domain.ErrNotAParticipant.Error())
			return
		}
		if _, err := h.SessionManager.HandleReset(msg.GameID); err != nil {
			h.sendError(connID, err.Error())
		}

	case domain.MsgLeaveGame:
		delete(joined, msg.GameID)
		if _, err := h.SessionManager.HandleLeave(msg.GameID, connID); err != nil {
			h.sendError(connID, err.Error())
		}

	case domain.MsgPrivateChat:
		if err := h.SessionManager.HandlePrivateMessage(msg.GameID, connID, msg.TargetID, msg.Message); err != nil {
			h.sendError(connID, err.Error())
		}

	default:
		log.Debug().Str("conn_id", connID).Str("type", msg.Type).Msg("[WS] Unknown message type")
		h.sendError(connID, "unknown message type: "+msg.Type)
	}
}

// displayName prefers the name carried by a signed token over the one typed
// by the client.
func (h *Handler) displayName(msg domain.ClientMessage) (string, error) {
	if msg.Token == "" {
		return msg.PlayerName, nil
	}
	claims, err := auth.ValidateToken(msg.Token)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}

func (h *Handler) sendError(connID, message string) {
	h.ConnManager.SendMessage(connID, domain.ServerMessage{Type: domain.MsgError, Message: message})
}
