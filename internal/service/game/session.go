package game

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iamasit07/puissance4/internal/domain"
	"github.com/iamasit07/puissance4/internal/service/bot"
)

const defaultPlayerName = "Anonymous"

// Session is one game room: the round being played, who sits where, and the
// score across rematches. Every exported method takes the session lock, so
// joins, moves, leaves, resets and bot replies never interleave. Messages and
// mirror writes are queued under the lock and delivered after it is released.
type Session struct {
	GameID     string
	Game       *domain.Game
	AIEnabled  bool
	Difficulty domain.Difficulty
	Score      domain.Score
	CreatedAt  time.Time
	StartedAt  time.Time // start of the current round

	lastActivity time.Time
	participants map[string]*participant // connID → participant
	joinSeq      int
	strategy     bot.Strategy
	epoch        int  // bumped on every reset, used to spot stale bot replies
	closed       bool // set once the session left the registry
	mu           sync.Mutex
	sm           *SessionManager

	out    outbox // socket deliveries, drained by the caller
	mirror outbox // state cache writes, drained in the background
}

type participant struct {
	domain.Participant
	seq int
}

// JoinResult tells the caller which role the connection got.
type JoinResult struct {
	Role  domain.Role
	Slot  int
	State domain.Snapshot

	pendingBot *botTurn
}

// MoveResult carries the state after a move attempt, accepted or not.
type MoveResult struct {
	Accepted bool
	Row      int
	State    domain.Snapshot

	pendingBot *botTurn
}

// LeaveResult describes what a departure did to the session.
type LeaveResult struct {
	WasParticipant bool
	Role           domain.Role
	Terminated     bool
}

// botTurn identifies the exact position a scheduled bot reply was planned for.
type botTurn struct {
	epoch int
	moves int
}

func newSession(gameID string, aiEnabled bool, difficulty domain.Difficulty, strategy bot.Strategy, sm *SessionManager) *Session {
	now := time.Now()
	return &Session{
		GameID:       gameID,
		Game:         domain.NewGame(),
		AIEnabled:    aiEnabled,
		Difficulty:   difficulty,
		CreatedAt:    now,
		StartedAt:    now,
		lastActivity: now,
		participants: make(map[string]*participant),
		strategy:     strategy,
		sm:           sm,
	}
}

func (s *Session) requiredPlayers() int {
	if s.AIEnabled {
		return 1
	}
	return 2
}

func (s *Session) counts() (players, spectators int) {
	for _, p := range s.participants {
		if p.Role == domain.RolePlayer {
			players++
		} else {
			spectators++
		}
	}
	return players, spectators
}

func (s *Session) status() domain.SessionStatus {
	if s.Game.Finished {
		return domain.StatusGameOver
	}
	if players, _ := s.counts(); players < s.requiredPlayers() {
		return domain.StatusWaiting
	}
	return domain.StatusInProgress
}

// openSlot returns the lowest free player slot, or 0 when all are taken.
func (s *Session) openSlot() int {
	taken := make(map[int]bool, 2)
	for _, p := range s.participants {
		if p.Role == domain.RolePlayer {
			taken[p.Slot] = true
		}
	}
	for slot := 1; slot <= s.requiredPlayers(); slot++ {
		if !taken[slot] {
			return slot
		}
	}
	return 0
}

func (s *Session) playerInSlot(slot domain.PlayerID) *participant {
	for _, p := range s.participants {
		if p.Role == domain.RolePlayer && p.Slot == int(slot) {
			return p
		}
	}
	return nil
}

func (s *Session) nameOf(slot domain.PlayerID) string {
	if s.AIEnabled && slot == domain.AIPlayer {
		return domain.GetBotName(s.Difficulty)
	}
	if p := s.playerInSlot(slot); p != nil {
		return p.Name
	}
	return ""
}

// Join seats the connection in the first open player slot, or makes it a
// spectator once the seats are taken. The board is never touched.
func (s *Session) Join(connID, name string) (JoinResult, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return JoinResult{}, domain.ErrSessionNotFound
	}
	if name == "" {
		name = defaultPlayerName
	}
	s.lastActivity = time.Now()

	if existing, ok := s.participants[connID]; ok {
		// same connection joining twice keeps its seat
		s.send(connID, s.assignedMessage(existing))
		return JoinResult{Role: existing.Role, Slot: existing.Slot, State: s.snapshotLocked()}, nil
	}

	s.joinSeq++
	p := &participant{
		Participant: domain.Participant{ConnID: connID, Name: name, Role: domain.RoleSpectator},
		seq:         s.joinSeq,
	}
	if slot := s.openSlot(); slot != 0 {
		p.Role = domain.RolePlayer
		p.Slot = slot
	}
	s.participants[connID] = p
	s.joinRoom(connID)
	s.send(connID, s.assignedMessage(p))

	players, spectators := s.counts()
	if p.Role == domain.RolePlayer {
		log.Info().Str("game_id", s.GameID).Str("conn_id", connID).Int("slot", p.Slot).Msg("[SESSION] player joined")
		s.broadcast(domain.ServerMessage{
			Type:            domain.MsgPlayerJoined,
			GameID:          s.GameID,
			PlayerName:      name,
			PlayerNumber:    domain.IntPtr(p.Slot),
			PlayersCount:    domain.IntPtr(players),
			SpectatorsCount: domain.IntPtr(spectators),
		})
	} else {
		log.Info().Str("game_id", s.GameID).Str("conn_id", connID).Msg("[SESSION] spectator joined")
		s.broadcast(domain.ServerMessage{
			Type:            domain.MsgSpectatorJoined,
			GameID:          s.GameID,
			Name:            name,
			Message:         domain.ErrRoleUnavailable.Error(),
			PlayersCount:    domain.IntPtr(players),
			SpectatorsCount: domain.IntPtr(spectators),
		})
	}

	s.broadcastState()

	result := JoinResult{Role: p.Role, Slot: p.Slot, State: s.snapshotLocked()}
	// a human taking over an idle AI game while the AI is to move
	if p.Role == domain.RolePlayer && s.botToMove() {
		result.pendingBot = s.nextBotTurn()
	}
	return result, nil
}

func (s *Session) assignedMessage(p *participant) domain.ServerMessage {
	msg := domain.ServerMessage{
		Type:   domain.MsgPlayerAssigned,
		GameID: s.GameID,
		ConnID: p.ConnID,
		Name:   p.Name,
		Role:   p.Role,
	}
	if p.Role == domain.RolePlayer {
		msg.PlayerNumber = domain.IntPtr(p.Slot)
	}
	return msg
}

// Move plays column for the connection. Rejected moves leave the session
// untouched and come back wrapped in domain.ErrIllegalMove.
func (s *Session) Move(connID string, column int) (MoveResult, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return MoveResult{}, domain.ErrSessionNotFound
	}

	if s.status() == domain.StatusWaiting {
		return s.rejectLocked(domain.ErrWaitingForPlayers)
	}

	p, exists := s.participants[connID]
	if !exists || p.Role != domain.RolePlayer {
		return s.rejectLocked(domain.ErrNotAPlayer)
	}

	slot := domain.PlayerID(p.Slot)
	row, err := s.Game.MakeMove(slot, column)
	if err != nil {
		return s.rejectLocked(err)
	}

	s.lastActivity = time.Now()
	s.afterMove(slot, p.Name, column, row)

	result := MoveResult{Accepted: true, Row: row, State: s.snapshotLocked()}
	if s.botToMove() {
		result.pendingBot = s.nextBotTurn()
	}
	return result, nil
}

func (s *Session) rejectLocked(reason error) (MoveResult, error) {
	return MoveResult{Accepted: false, Row: -1, State: s.snapshotLocked()},
		fmt.Errorf("%w: %w", domain.ErrIllegalMove, reason)
}

func (s *Session) botToMove() bool {
	return s.AIEnabled && s.status() == domain.StatusInProgress && s.Game.CurrentPlayer == domain.AIPlayer
}

func (s *Session) nextBotTurn() *botTurn {
	return &botTurn{epoch: s.epoch, moves: s.Game.MoveCount}
}

// PlayBotMove applies the AI reply planned for turn. It does nothing when
// the position moved on in the meantime (reset, leave, termination).
func (s *Session) PlayBotMove(turn botTurn) bool {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.botToMove() || turn.epoch != s.epoch || turn.moves != s.Game.MoveCount {
		log.Debug().Str("game_id", s.GameID).Msg("[BOT] stale reply abandoned")
		return false
	}

	col, ok := s.strategy.GetMove(s.Game.Board, domain.AIPlayer)
	if !ok {
		return false
	}

	row, err := s.Game.MakeMove(domain.AIPlayer, col)
	if err != nil {
		log.Error().Err(err).Str("game_id", s.GameID).Int("column", col).Msg("[BOT] strategy returned an unplayable column")
		return false
	}

	s.lastActivity = time.Now()
	s.afterMove(domain.AIPlayer, domain.GetBotName(s.Difficulty), col, row)
	return true
}

// afterMove announces an applied move and settles a finished round.
func (s *Session) afterMove(slot domain.PlayerID, name string, column, row int) {
	s.broadcast(domain.ServerMessage{
		Type:       domain.MsgMoveMade,
		GameID:     s.GameID,
		Player:     int(slot),
		Column:     domain.IntPtr(column),
		Row:        domain.IntPtr(row),
		PlayerName: name,
	})

	if s.Game.Finished {
		s.Score.Record(s.Game.Winner)
		reason := domain.ReasonConnectFour
		if s.Game.Winner == domain.OutcomeDraw {
			reason = domain.ReasonDraw
		}
		log.Info().Str("game_id", s.GameID).Int("winner", int(s.Game.Winner)).Str("reason", reason).Msg("[SESSION] game over")
		s.saveResultAsync(reason)
	}

	s.broadcastState()
}

// Leave removes the connection. A player quitting a two-human game ends
// and closes the session; everything else keeps it alive.
func (s *Session) Leave(connID string) LeaveResult {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.participants[connID]
	if s.closed || !exists {
		return LeaveResult{}
	}

	wasInProgress := s.status() == domain.StatusInProgress
	delete(s.participants, connID)
	s.lastActivity = time.Now()
	s.leaveRoom(connID)
	players, spectators := s.counts()

	if p.Role == domain.RoleSpectator {
		s.broadcast(domain.ServerMessage{
			Type:            domain.MsgSpectatorLeft,
			GameID:          s.GameID,
			Name:            p.Name,
			PlayersCount:    domain.IntPtr(players),
			SpectatorsCount: domain.IntPtr(spectators),
		})
		s.broadcastState()
		return LeaveResult{WasParticipant: true, Role: domain.RoleSpectator}
	}

	if s.AIEnabled {
		// the AI game stays around, idle, until someone takes the seat or it is reclaimed
		log.Info().Str("game_id", s.GameID).Str("conn_id", connID).Msg("[SESSION] player left AI game")
		s.broadcast(domain.ServerMessage{
			Type:            domain.MsgPlayerLeft,
			GameID:          s.GameID,
			PlayerName:      p.Name,
			PlayersCount:    domain.IntPtr(players),
			SpectatorsCount: domain.IntPtr(spectators),
		})
		s.broadcastState()
		return LeaveResult{WasParticipant: true, Role: domain.RolePlayer}
	}

	log.Info().Str("game_id", s.GameID).Str("conn_id", connID).Msg("[SESSION] player left, ending game")
	if wasInProgress {
		s.Game.Abort()
		s.saveResultAsync(domain.ReasonPlayerLeft, p.Participant)
	} else if !s.Game.Finished {
		s.Game.Abort()
	}
	s.broadcast(domain.ServerMessage{
		Type:     domain.MsgGameEnded,
		GameID:   s.GameID,
		Reason:   domain.ReasonPlayerLeft,
		Message:  fmt.Sprintf("%s left the game. The game is over.", p.Name),
		Redirect: true,
	})
	s.closed = true
	return LeaveResult{WasParticipant: true, Role: domain.RolePlayer, Terminated: true}
}

// Terminate force-closes the session, e.g. on admin request.
func (s *Session) Terminate(message string) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.status() == domain.StatusInProgress {
		s.Game.Abort()
		s.saveResultAsync(domain.ReasonTerminated)
	} else if !s.Game.Finished {
		s.Game.Abort()
	}
	s.broadcast(domain.ServerMessage{
		Type:     domain.MsgGameTerminated,
		GameID:   s.GameID,
		Reason:   domain.ReasonTerminated,
		Message:  message,
		Redirect: true,
	})
	s.closed = true
}

// Reset starts a new round once the current one is over. Seats and score
// are kept. Resetting a round still in play is a no-op and returns false.
func (s *Session) Reset() (domain.Snapshot, bool, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.Snapshot{}, false, domain.ErrSessionNotFound
	}
	if !s.Game.Finished {
		log.Debug().Err(domain.ErrSessionAlreadyTerminal).Str("game_id", s.GameID).Msg("[SESSION] reset ignored")
		return s.snapshotLocked(), false, nil
	}

	s.Game.Reset()
	s.epoch++
	s.StartedAt = time.Now()
	s.lastActivity = s.StartedAt
	log.Info().Str("game_id", s.GameID).Int("round", s.epoch+1).Msg("[SESSION] new round")
	s.broadcastState()
	return s.snapshotLocked(), true, nil
}

// Sender resolves the display name of from and checks that to is in the room.
func (s *Session) Sender(from, to string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.participants[from]
	if s.closed || !ok {
		return "", domain.ErrNotAParticipant
	}
	if _, ok := s.participants[to]; !ok {
		return "", domain.ErrNotAParticipant
	}
	return sender.Name, nil
}

func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() domain.Snapshot {
	players := make([]domain.Participant, 0, 2)
	spectators := make([]*participant, 0)
	for _, p := range s.participants {
		if p.Role == domain.RolePlayer {
			players = append(players, p.Participant)
		} else {
			spectators = append(spectators, p)
		}
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Slot < players[j].Slot })
	sort.Slice(spectators, func(i, j int) bool { return spectators[i].seq < spectators[j].seq })

	specs := make([]domain.Participant, len(spectators))
	for i, p := range spectators {
		specs[i] = p.Participant
	}

	snap := domain.Snapshot{
		GameID:          s.GameID,
		Board:           s.Game.Board.Cells(),
		CurrentPlayer:   int(s.Game.CurrentPlayer),
		Status:          s.status(),
		GameOver:        s.Game.Finished,
		Players:         players,
		Spectators:      specs,
		AIEnabled:       s.AIEnabled,
		Score:           s.Score,
		MoveCount:       s.Game.MoveCount,
		PlayersCount:    len(players),
		SpectatorsCount: len(specs),
	}
	if s.AIEnabled {
		snap.Difficulty = s.Difficulty
	}
	if s.Game.Finished && s.Game.Winner != domain.OutcomeNone {
		snap.Winner = domain.IntPtr(int(s.Game.Winner))
	}
	if line, ok := s.Game.Board.WinningLine(); ok {
		for _, pos := range line {
			snap.WinningLine = append(snap.WinningLine, [2]int{pos.Row, pos.Col})
		}
	}
	return snap
}

func (s *Session) summary() domain.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshotLocked()
	return domain.SessionSummary{
		GameID:          s.GameID,
		Players:         snap.Players,
		PlayersCount:    snap.PlayersCount,
		SpectatorsCount: snap.SpectatorsCount,
		CurrentPlayer:   snap.CurrentPlayer,
		GameOver:        snap.GameOver,
		AIEnabled:       s.AIEnabled,
		Difficulty:      snap.Difficulty,
		MoveCount:       snap.MoveCount,
		CreatedAt:       s.CreatedAt,
	}
}

// claimIdle closes the session and reports true when nobody is in it and
// nothing happened for longer than ttl. Checking and closing happen under one
// lock so a late join cannot slip in between.
func (s *Session) claimIdle(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if len(s.participants) > 0 || now.Sub(s.lastActivity) <= ttl {
		return false
	}
	s.closed = true
	return true
}

// retire queues the room teardown and the mirror cleanup behind everything
// the session already queued. The session is closed, so nothing can be
// queued after them.
func (s *Session) retire() {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	conn, gameID := s.sm.conn, s.GameID
	s.out.push(func() { conn.CloseRoom(gameID) })

	if cache := s.sm.cache; cache != nil {
		s.mirror.push(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := cache.DeleteState(ctx, gameID); err != nil {
				log.Warn().Err(err).Str("game_id", gameID).Msg("[SESSION] failed to clear mirrored state")
			}
		})
	}
}

// flush delivers what the last locked section queued. It must be called
// without holding s.mu.
func (s *Session) flush() {
	s.out.flush()
	if s.mirror.pending() {
		go s.mirror.flush()
	}
}

func (s *Session) send(connID string, message domain.ServerMessage) {
	conn := s.sm.conn
	s.out.push(func() {
		if err := conn.SendMessage(connID, message); err != nil {
			log.Debug().Err(err).Str("conn_id", connID).Msg("[SESSION] send failed")
		}
	})
}

func (s *Session) broadcast(message domain.ServerMessage) {
	conn, gameID := s.sm.conn, s.GameID
	s.out.push(func() { conn.Broadcast(gameID, message) })
}

func (s *Session) joinRoom(connID string) {
	conn, gameID := s.sm.conn, s.GameID
	s.out.push(func() { conn.JoinRoom(gameID, connID) })
}

func (s *Session) leaveRoom(connID string) {
	conn, gameID := s.sm.conn, s.GameID
	s.out.push(func() { conn.LeaveRoom(gameID, connID) })
}

// broadcastState queues the current snapshot for the room and the mirror.
// Mirror writes go through one queue per session, so an older snapshot never
// lands after a newer one or after the delete queued by retire.
func (s *Session) broadcastState() {
	snap := s.snapshotLocked()
	s.broadcast(domain.ServerMessage{
		Type:   domain.MsgGameState,
		GameID: s.GameID,
		State:  &snap,
	})

	if cache := s.sm.cache; cache != nil {
		s.mirror.push(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := cache.SaveState(ctx, snap.GameID, snap); err != nil {
				log.Warn().Err(err).Str("game_id", snap.GameID).Msg("[SESSION] failed to mirror state")
			}
		})
	}
}

// saveResultAsync hands the finished round to the result sink in the
// background so broadcasts are never held up by storage. departed is the
// player who already left the table, if any.
func (s *Session) saveResultAsync(reason string, departed ...domain.Participant) {
	repo := s.sm.repo
	if repo == nil {
		return
	}

	result := domain.GameResult{
		GameID:     s.GameID,
		Winner:     s.Game.Winner,
		Reason:     reason,
		AIEnabled:  s.AIEnabled,
		TotalMoves: s.Game.MoveCount,
		StartedAt:  s.StartedAt,
		FinishedAt: time.Now(),
		Board:      s.Game.Board.Cells(),
	}
	if s.AIEnabled {
		result.Difficulty = s.Difficulty
	}

	seat := func(slot domain.PlayerID) (string, string) {
		if p := s.playerInSlot(slot); p != nil {
			return p.ConnID, p.Name
		}
		for _, d := range departed {
			if d.Slot == int(slot) {
				return d.ConnID, d.Name
			}
		}
		return "", s.nameOf(slot)
	}
	result.Player1ID, result.Player1Name = seat(domain.Player1)
	result.Player2ID, result.Player2Name = seat(domain.Player2)
	switch result.Winner {
	case domain.OutcomePlayer1:
		result.WinnerName = result.Player1Name
	case domain.OutcomePlayer2:
		result.WinnerName = result.Player2Name
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.SaveGame(ctx, result); err != nil {
			log.Error().Err(err).Str("game_id", result.GameID).Msg("[GAME] error saving game")
			return
		}
		log.Debug().Str("game_id", result.GameID).Msg("[GAME] game saved")
	}()
}
