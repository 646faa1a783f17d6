package protocol

import "time"

// Message types: Server → Client
const (
	MsgJoined       = "joined"
	MsgGameState    = "game_state"
	MsgEvent        = "event"
	MsgNotification = "notification"
)

// Message types: Client → Server
const (
	MsgJoin   = "join"
	MsgAction = "action"
)

// Notification levels.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelError   = "error"
)

// JoinMsg asks for a seat. PlayerID and Token are only sent on reconnect.
type JoinMsg struct {
	Name     string `json:"name"`
	PlayerID string `json:"player_id,omitempty"`
	Token    string `json:"token,omitempty"`
}

// JoinedMsg tells a client which seat it holds and how to reclaim it.
type JoinedMsg struct {
	MatchID  string `json:"match_id"`
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
	Color    string `json:"color"`
}

// Notification is a short message for a single player.
type Notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// MatchSummary describes a live match for listings.
type MatchSummary struct {
	ID        string    `json:"match_id"`
	Phase     string    `json:"phase"`
	Players   int       `json:"players"`
	Connected int       `json:"connected"`
	Joinable  bool      `json:"joinable"`
	CreatedAt time.Time `json:"created_at"`
}
