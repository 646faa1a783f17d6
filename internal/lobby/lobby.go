package lobby

import (
	"errors"
	"sync"
)

var (
	ErrLobbyFull      = errors.New("match is full")
	ErrUnknownPlayer  = errors.New("player is not seated in this match")
	ErrAlreadyPresent = errors.New("player is already connected")
)

// PlayerInfo is a seat as the transport sees it: who holds it and whether a
// socket is currently attached.
type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Connected bool   `json:"connected"`
}

// Lobby tracks seats and connections for one match. Game rules live in the
// engine; the lobby only knows who is attached.
type Lobby struct {
	mu         sync.Mutex
	ID         string
	Players    []*PlayerInfo
	MaxPlayers int
}

// NewLobby creates an empty roster.
func NewLobby(id string, maxPlayers int) *Lobby {
	return &Lobby{ID: id, MaxPlayers: maxPlayers}
}

// Join seats a new player or reattaches an existing one. A reattach keeps the
// seat and color but takes the new name.
func (l *Lobby) Join(id, name, color string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.Players {
		if p.ID == id {
			if p.Connected {
				return ErrAlreadyPresent
			}
			p.Name = name
			p.Connected = true
			return nil
		}
	}
	if len(l.Players) >= l.MaxPlayers {
		return ErrLobbyFull
	}
	l.Players = append(l.Players, &PlayerInfo{ID: id, Name: name, Color: color, Connected: true})
	return nil
}

// Disconnect keeps the seat but marks it detached.
func (l *Lobby) Disconnect(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.Players {
		if p.ID == id {
			p.Connected = false
			return nil
		}
	}
	return ErrUnknownPlayer
}

// Leave frees the seat entirely.
func (l *Lobby) Leave(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, p := range l.Players {
		if p.ID == id {
			l.Players = append(l.Players[:i], l.Players[i+1:]...)
			return
		}
	}
}

// Has reports whether id holds a seat.
func (l *Lobby) Has(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.Players {
		if p.ID == id {
			return true
		}
	}
	return false
}

// ConnectedCount is the number of seats with a live socket.
func (l *Lobby) ConnectedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, p := range l.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

// GetPlayers returns a copy of the seat list.
func (l *Lobby) GetPlayers() []PlayerInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]PlayerInfo, len(l.Players))
	for i, p := range l.Players {
		out[i] = *p
	}
	return out
}
