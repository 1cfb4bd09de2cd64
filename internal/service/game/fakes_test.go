package game

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iamasit07/puissance4/internal/domain"
	"github.com/iamasit07/puissance4/internal/service/bot"
)

// recordingConn remembers everything the session layer sends out.
type recordingConn struct {
	mu         sync.Mutex
	sent       map[string][]domain.ServerMessage
	broadcasts map[string][]domain.ServerMessage
	rooms      map[string]map[string]bool
	closed     map[string]bool
}

func newRecordingConn() *recordingConn {
	return &recordingConn{
		sent:       make(map[string][]domain.ServerMessage),
		broadcasts: make(map[string][]domain.ServerMessage),
		rooms:      make(map[string]map[string]bool),
		closed:     make(map[string]bool),
	}
}

func (c *recordingConn) SendMessage(connID string, message domain.ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent[connID] = append(c.sent[connID], message)
	return nil
}

func (c *recordingConn) Broadcast(gameID string, message domain.ServerMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broadcasts[gameID] = append(c.broadcasts[gameID], message)
}

func (c *recordingConn) JoinRoom(gameID, connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rooms[gameID] == nil {
		c.rooms[gameID] = make(map[string]bool)
	}
	c.rooms[gameID][connID] = true
}

func (c *recordingConn) LeaveRoom(gameID, connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms[gameID], connID)
}

func (c *recordingConn) CloseRoom(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, gameID)
	c.closed[gameID] = true
}

func (c *recordingConn) broadcastsOf(gameID, msgType string) []domain.ServerMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.ServerMessage
	for _, m := range c.broadcasts[gameID] {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func (c *recordingConn) sentTo(connID string) []domain.ServerMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.ServerMessage(nil), c.sent[connID]...)
}

func (c *recordingConn) roomClosed(gameID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed[gameID]
}

type chanRepo struct {
	results chan domain.GameResult
}

func newChanRepo() *chanRepo {
	return &chanRepo{results: make(chan domain.GameResult, 16)}
}

func (r *chanRepo) SaveGame(_ context.Context, result domain.GameResult) error {
	r.results <- result
	return nil
}

func (r *chanRepo) expectResult(t *testing.T) domain.GameResult {
	t.Helper()
	select {
	case res := <-r.results:
		return res
	case <-time.After(2 * time.Second):
		t.Fatalf("no game result was saved")
	}
	return domain.GameResult{}
}

func (r *chanRepo) expectNoResult(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case res := <-r.results:
		t.Fatalf("unexpected game result saved: %+v", res)
	case <-time.After(wait):
	}
}

type relayRecorder struct {
	mu       sync.Mutex
	messages map[string][]domain.ServerMessage
}

func (r *relayRecorder) RelayPrivateMessage(target string, message domain.ServerMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.messages == nil {
		r.messages = make(map[string][]domain.ServerMessage)
	}
	r.messages[target] = append(r.messages[target], message)
	return nil
}

// gatedConn holds every broadcast until the gate is closed, once held is set.
type gatedConn struct {
	*recordingConn
	held    atomic.Bool
	gate    chan struct{}
	entered chan struct{}
}

func newGatedConn() *gatedConn {
	return &gatedConn{
		recordingConn: newRecordingConn(),
		gate:          make(chan struct{}),
		entered:       make(chan struct{}, 1),
	}
}

func (c *gatedConn) Broadcast(gameID string, message domain.ServerMessage) {
	if c.held.Load() {
		select {
		case c.entered <- struct{}{}:
		default:
		}
		<-c.gate
	}
	c.recordingConn.Broadcast(gameID, message)
}

// slowCache mirrors snapshots after a delay, like a congested Redis.
type slowCache struct {
	delay  time.Duration
	mu     sync.Mutex
	states map[string]domain.Snapshot
	ops    []string
}

func newSlowCache(delay time.Duration) *slowCache {
	return &slowCache{delay: delay, states: make(map[string]domain.Snapshot)}
}

func (c *slowCache) SaveState(_ context.Context, gameID string, state domain.Snapshot) error {
	time.Sleep(c.delay)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[gameID] = state
	c.ops = append(c.ops, "save")
	return nil
}

func (c *slowCache) DeleteState(_ context.Context, gameID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, gameID)
	c.ops = append(c.ops, "delete")
	return nil
}

func (c *slowCache) state(gameID string) (domain.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.states[gameID]
	return snap, ok
}

func (c *slowCache) lastOp() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.ops) == 0 {
		return ""
	}
	return c.ops[len(c.ops)-1]
}

// scriptedStrategy always plays the same column while it is open.
type scriptedStrategy struct {
	column int
	calls  atomic.Int32
}

func (s *scriptedStrategy) GetMove(board domain.Board, _ domain.PlayerID) (int, bool) {
	s.calls.Add(1)
	if board.IsValidMove(s.column) {
		return s.column, true
	}
	moves := board.ValidMoves()
	if len(moves) == 0 {
		return -1, false
	}
	return moves[0], true
}

type harness struct {
	sm   *SessionManager
	conn *recordingConn
	repo *chanRepo
	ai   *scriptedStrategy
}

func newHarness(botDelay time.Duration) *harness {
	h := &harness{
		conn: newRecordingConn(),
		repo: newChanRepo(),
		ai:   &scriptedStrategy{column: 0},
	}
	h.sm = NewSessionManager(h.conn, h.repo, botDelay)
	h.sm.newStrategy = func(domain.Difficulty) bot.Strategy { return h.ai }
	return h
}

func (h *harness) mustJoin(t *testing.T, gameID, connID, name string) JoinResult {
	t.Helper()
	res, err := h.sm.HandleJoin(gameID, connID, name)
	if err != nil {
		t.Fatalf("join %s: %v", connID, err)
	}
	return res
}

func (h *harness) mustMove(t *testing.T, gameID, connID string, column int) MoveResult {
	t.Helper()
	res, err := h.sm.HandleMove(gameID, connID, column)
	if err != nil {
		t.Fatalf("move %s column %d: %v", connID, column, err)
	}
	return res
}

func (h *harness) snapshot(t *testing.T, gameID string) domain.Snapshot {
	t.Helper()
	snap, err := h.sm.Snapshot(gameID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return snap
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
