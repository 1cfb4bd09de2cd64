package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/puissance4/internal/domain"
)

const writeWait = 10 * time.Second

// messageWriter is the part of *websocket.Conn the manager writes through.
type messageWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v interface{}) error
	Close() error
}

type client struct {
	conn    messageWriter
	writeMu sync.Mutex // gorilla connections support one concurrent writer
}

// ConnectionManager handles active WebSocket connections and the session
// rooms they belong to.
type ConnectionManager struct {
	clients map[string]*client         // connID → client
	rooms   map[string]map[string]bool // gameID → connIDs
	mu      sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]bool),
	}
}

func (cm *ConnectionManager) AddConnection(connID string, conn *websocket.Conn) {
	cm.addWriter(connID, conn)
}

func (cm *ConnectionManager) addWriter(connID string, conn messageWriter) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if old, exists := cm.clients[connID]; exists {
		old.conn.Close()
	}
	cm.clients[connID] = &client{conn: conn}
}

// RemoveConnection closes the socket and drops it from every room.
func (cm *ConnectionManager) RemoveConnection(connID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if c, exists := cm.clients[connID]; exists {
		c.conn.Close()
		delete(cm.clients, connID)
	}
	for gameID, members := range cm.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(cm.rooms, gameID)
		}
	}
}

// SendMessage sends a JSON message to a single connection
func (cm *ConnectionManager) SendMessage(connID string, message domain.ServerMessage) error {
	cm.mu.RLock()
	c, exists := cm.clients[connID]
	cm.mu.RUnlock()

	if !exists {
		return nil // disconnected, ignore
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(message); err != nil {
		log.Debug().Err(err).Str("conn_id", connID).Str("type", message.Type).Msg("[WS] write failed")
		return err
	}
	return nil
}

// Broadcast sends message to every member of the room. A failing member
// does not stop the others.
func (cm *ConnectionManager) Broadcast(gameID string, message domain.ServerMessage) {
	cm.mu.RLock()
	members := make([]string, 0, len(cm.rooms[gameID]))
	for connID := range cm.rooms[gameID] {
		members = append(members, connID)
	}
	cm.mu.RUnlock()

	for _, connID := range members {
		cm.SendMessage(connID, message)
	}
}

func (cm *ConnectionManager) JoinRoom(gameID, connID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.rooms[gameID] == nil {
		cm.rooms[gameID] = make(map[string]bool)
	}
	cm.rooms[gameID][connID] = true
}

func (cm *ConnectionManager) LeaveRoom(gameID, connID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if members, ok := cm.rooms[gameID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(cm.rooms, gameID)
		}
	}
}

func (cm *ConnectionManager) CloseRoom(gameID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.rooms, gameID)
}

// RelayPrivateMessage delivers a chat line to one participant.
func (cm *ConnectionManager) RelayPrivateMessage(targetConnID string, message domain.ServerMessage) error {
	return cm.SendMessage(targetConnID, message)
}

func (cm *ConnectionManager) RoomSize(gameID string) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.rooms[gameID])
}
