package game

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iamasit07/puissance4/internal/domain"
	"github.com/iamasit07/puissance4/internal/service/bot"
	"github.com/iamasit07/puissance4/pkg/uid"
)

// Broadcaster delivers server messages to connections and session rooms.
type Broadcaster interface {
	SendMessage(connID string, message domain.ServerMessage) error
	Broadcast(gameID string, message domain.ServerMessage)
	JoinRoom(gameID, connID string)
	LeaveRoom(gameID, connID string)
	CloseRoom(gameID string)
}

// GameRepository receives one result per finished round.
type GameRepository interface {
	SaveGame(ctx context.Context, result domain.GameResult) error
}

// ChatRelay forwards a private message to a single connection.
type ChatRelay interface {
	RelayPrivateMessage(targetConnID string, message domain.ServerMessage) error
}

// StateCache mirrors the latest snapshot of every live session. Writes for
// one session arrive in order and the delete is always the last of them.
type StateCache interface {
	SaveState(ctx context.Context, gameID string, state domain.Snapshot) error
	DeleteState(ctx context.Context, gameID string) error
}

// SessionManager manages active game sessions
type SessionManager struct {
	sessions map[string]*Session // gameID → Session
	mu       sync.RWMutex
	conn     Broadcaster
	repo     GameRepository
	cache    StateCache
	relay    ChatRelay
	botDelay time.Duration

	newStrategy func(domain.Difficulty) bot.Strategy
}

func NewSessionManager(conn Broadcaster, repo GameRepository, botDelay time.Duration) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		conn:        conn,
		repo:        repo,
		botDelay:    botDelay,
		newStrategy: bot.NewStrategy,
	}
}

// SetStateCache must be called before the manager serves traffic.
func (sm *SessionManager) SetStateCache(cache StateCache) {
	sm.cache = cache
}

func (sm *SessionManager) SetChatRelay(relay ChatRelay) {
	sm.relay = relay
}

func (sm *SessionManager) CreateSession(aiEnabled bool, difficulty domain.Difficulty) string {
	gameID := uid.NewSessionID()
	strategy := sm.newStrategy(difficulty)
	session := newSession(gameID, aiEnabled, difficulty, strategy, sm)

	sm.mu.Lock()
	sm.sessions[gameID] = session
	sm.mu.Unlock()

	log.Info().Str("game_id", gameID).Bool("ai", aiEnabled).Str("difficulty", string(difficulty)).Msg("[SESSION] created")
	return gameID
}

func (sm *SessionManager) GetSession(gameID string) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[gameID]
	return session, exists
}

func (sm *SessionManager) lookup(gameID string) (*Session, error) {
	session, exists := sm.GetSession(gameID)
	if !exists {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (sm *SessionManager) HandleJoin(gameID, connID, name string) (JoinResult, error) {
	session, err := sm.lookup(gameID)
	if err != nil {
		return JoinResult{}, err
	}

	result, err := session.Join(connID, name)
	if err != nil {
		return result, err
	}
	if result.pendingBot != nil {
		sm.scheduleBotMove(gameID, *result.pendingBot)
	}
	return result, nil
}

// HandleMove applies a human move. When the AI owns the next turn its reply
// is scheduled before returning and arrives later as a broadcast.
func (sm *SessionManager) HandleMove(gameID, connID string, column int) (MoveResult, error) {
	session, err := sm.lookup(gameID)
	if err != nil {
		return MoveResult{}, err
	}

	result, err := session.Move(connID, column)
	if err != nil {
		log.Debug().Err(err).Str("game_id", gameID).Str("conn_id", connID).Int("column", column).Msg("[SESSION] move rejected")
		return result, err
	}
	if result.pendingBot != nil {
		sm.scheduleBotMove(gameID, *result.pendingBot)
	}
	return result, nil
}

// HandleLeave reports whether the departure terminated the session, in
// which case it is gone from the registry when this returns.
func (sm *SessionManager) HandleLeave(gameID, connID string) (bool, error) {
	session, err := sm.lookup(gameID)
	if err != nil {
		return false, err
	}

	result := session.Leave(connID)
	if result.Terminated {
		sm.removeSession(session)
	}
	return result.Terminated, nil
}

func (sm *SessionManager) HandleReset(gameID string) (domain.Snapshot, error) {
	session, err := sm.lookup(gameID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap, _, err := session.Reset()
	return snap, err
}

func (sm *SessionManager) Snapshot(gameID string) (domain.Snapshot, error) {
	session, err := sm.lookup(gameID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return session.Snapshot(), nil
}

// HandlePrivateMessage relays text from one participant to another in the
// same session.
func (sm *SessionManager) HandlePrivateMessage(gameID, fromConnID, toConnID, text string) error {
	session, err := sm.lookup(gameID)
	if err != nil {
		return err
	}

	senderName, err := session.Sender(fromConnID, toConnID)
	if err != nil {
		return err
	}

	message := domain.ServerMessage{
		Type:       domain.MsgPrivateMessage,
		GameID:     gameID,
		SenderID:   fromConnID,
		SenderName: senderName,
		Message:    text,
	}
	if sm.relay != nil {
		return sm.relay.RelayPrivateMessage(toConnID, message)
	}
	return sm.conn.SendMessage(toConnID, message)
}

// TerminateSession ends a session from outside, notifying its room.
func (sm *SessionManager) TerminateSession(gameID, message string) error {
	session, err := sm.lookup(gameID)
	if err != nil {
		return err
	}

	if message == "" {
		message = "This game was terminated by an administrator."
	}
	session.Terminate(message)
	sm.removeSession(session)

	log.Info().Str("game_id", gameID).Msg("[SESSION] terminated")
	return nil
}

// removeSession drops the session from the registry, then lets it close its
// room and mirrored state once its queued deliveries are out.
func (sm *SessionManager) removeSession(session *Session) {
	sm.mu.Lock()
	current, exists := sm.sessions[session.GameID]
	if exists && current == session {
		delete(sm.sessions, session.GameID)
	}
	sm.mu.Unlock()

	if !exists || current != session {
		return
	}

	log.Info().Str("game_id", session.GameID).Msg("[SESSION] removing session")
	session.retire()
}

// ListSessions returns a summary of every live session, oldest first.
func (sm *SessionManager) ListSessions() []domain.SessionSummary {
	sm.mu.RLock()
	sessions := make([]*Session, 0, len(sm.sessions))
	for _, session := range sm.sessions {
		sessions = append(sessions, session)
	}
	sm.mu.RUnlock()

	summaries := make([]domain.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, session.summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].GameID < summaries[j].GameID
		}
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries
}

// CleanupIdleSessions removes sessions nobody has occupied for longer than
// ttl and returns how many were removed.
func (sm *SessionManager) CleanupIdleSessions(ttl time.Duration) int {
	now := time.Now()

	sm.mu.RLock()
	var candidates []*Session
	for _, session := range sm.sessions {
		candidates = append(candidates, session)
	}
	sm.mu.RUnlock()

	removed := 0
	for _, session := range candidates {
		if !session.claimIdle(now, ttl) {
			continue
		}
		sm.removeSession(session)
		removed++
	}
	return removed
}

func (sm *SessionManager) ActiveSessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

func (sm *SessionManager) scheduleBotMove(gameID string, turn botTurn) {
	time.AfterFunc(sm.botDelay, func() {
		sm.runBotMove(gameID, turn)
	})
}

// runBotMove looks the session up again since it may have been removed
// while the timer was pending.
func (sm *SessionManager) runBotMove(gameID string, turn botTurn) {
	session, err := sm.lookup(gameID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			log.Error().Err(err).Str("game_id", gameID).Msg("[BOT] lookup failed")
		}
		return
	}
	if session.PlayBotMove(turn) {
		log.Debug().Str("game_id", gameID).Msg("[BOT] reply played")
	}
}
