package domain

// PlayerID is the content of a board cell and also the slot number a player holds.
type PlayerID int

const (
	Empty   PlayerID = 0
	Player1 PlayerID = 1
	Player2 PlayerID = 2
)

// Opponent returns the other slot. Empty maps to Empty.
func (p PlayerID) Opponent() PlayerID {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	}
	return Empty
}

const (
	Rows    = 6
	Columns = 7
	ToWin   = 4
)

// AIPlayer is the slot the engine always occupies in a human-vs-AI session.
const AIPlayer = Player2

// Difficulty selects the AI strategy of a session.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty falls back to medium for anything it does not recognise.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s)
	}
	return DifficultyMedium
}

// Depth is the search depth associated with the tier. Only hard actually searches.
func (d Difficulty) Depth() int {
	switch d {
	case DifficultyEasy:
		return 2
	case DifficultyHard:
		return 6
	}
	return 4
}

var BotNames = map[Difficulty]string{
	DifficultyEasy:   "IA (facile)",
	DifficultyMedium: "IA",
	DifficultyHard:   "IA (difficile)",
}

func GetBotName(d Difficulty) string {
	if name, ok := BotNames[d]; ok {
		return name
	}
	return "IA"
}

// Role of a connection inside a session.
type Role string

const (
	RolePlayer    Role = "player"
	RoleSpectator Role = "spectator"
)

// SessionStatus is derived from the session contents, never stored.
type SessionStatus string

const (
	StatusWaiting    SessionStatus = "waiting_for_players"
	StatusInProgress SessionStatus = "in_progress"
	StatusGameOver   SessionStatus = "game_over"
)

// Outcome of a finished game. OutcomeNone covers both "still running" and
// "ended without result" (a player left).
type Outcome int

const (
	OutcomeNone    Outcome = -1
	OutcomeDraw    Outcome = 0
	OutcomePlayer1 Outcome = 1
	OutcomePlayer2 Outcome = 2
)

func OutcomeFor(p PlayerID) Outcome {
	switch p {
	case Player1:
		return OutcomePlayer1
	case Player2:
		return OutcomePlayer2
	}
	return OutcomeNone
}

// End reasons recorded with persisted results.
const (
	ReasonConnectFour = "connect_four"
	ReasonDraw        = "draw"
	ReasonPlayerLeft  = "player_left"
	ReasonTerminated  = "terminated"
)

// basic errors that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrSessionNotFound        Error = "session not found"
	ErrIllegalMove            Error = "illegal move"
	ErrRoleUnavailable        Error = "no player slot available"
	ErrSessionAlreadyTerminal Error = "round is still in play"

	ErrInvalidColumn     Error = "invalid column"
	ErrColumnFull        Error = "column is full"
	ErrNotYourTurn       Error = "not your turn"
	ErrNotAPlayer        Error = "you are not a player in this game"
	ErrWaitingForPlayers Error = "waiting for another player to join"
	ErrGameOver          Error = "game is already over"
	ErrNotAParticipant   Error = "not a participant of this game"
)
