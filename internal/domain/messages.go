package domain

// ClientMessage is what a websocket client sends.
type ClientMessage struct {
	Type       string `json:"type"`
	GameID     string `json:"game_id"`
	PlayerName string `json:"player_name,omitempty"`
	Column     *int   `json:"col"`
	Token      string `json:"token,omitempty"`
	TargetID   string `json:"target_sid,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Client message types.
const (
	MsgJoinGame    = "join_game"
	MsgMakeMove    = "make_move"
	MsgResetGame   = "reset_game"
	MsgLeaveGame   = "leave_game"
	MsgPrivateChat = "send_private_message"
)

// Server message types.
const (
	MsgPlayerAssigned  = "player_assigned"
	MsgPlayerJoined    = "player_joined"
	MsgSpectatorJoined = "spectator_joined"
	MsgMoveMade        = "move_made"
	MsgGameState       = "game_state"
	MsgPlayerLeft      = "player_left"
	MsgSpectatorLeft   = "spectator_left"
	MsgGameEnded       = "game_ended"
	MsgGameTerminated  = "game_terminated"
	MsgPrivateMessage  = "private_message"
	MsgError           = "error"
	MsgConnected       = "connected"
)

// ServerMessage is the single envelope for everything pushed to clients.
// Pointers are used where zero is a meaningful value.
type ServerMessage struct {
	Type            string    `json:"type"`
	Message         string    `json:"message,omitempty"`
	GameID          string    `json:"game_id,omitempty"`
	ConnID          string    `json:"sid,omitempty"`
	Role            Role      `json:"role,omitempty"`
	PlayerNumber    *int      `json:"player_number,omitempty"`
	Name            string    `json:"name,omitempty"`
	Column          *int      `json:"column,omitempty"`
	Row             *int      `json:"row,omitempty"`
	Player          int       `json:"player,omitempty"`
	PlayerName      string    `json:"player_name,omitempty"`
	PlayersCount    *int      `json:"players_count,omitempty"`
	SpectatorsCount *int      `json:"spectators_count,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	Redirect        bool      `json:"redirect,omitempty"`
	SenderID        string    `json:"sender_sid,omitempty"`
	SenderName      string    `json:"sender_name,omitempty"`
	State           *Snapshot `json:"state,omitempty"`
}

func IntPtr(v int) *int {
	return &v
}
