package lobby

import (
	"sync"

	"github.com/google/uuid"
)

// Match is anything the manager can list and route joins to.
type Match interface {
	ID() string
	// Joinable reports whether a new player could take a seat right now.
	Joinable() bool
}

// Manager is the registry of live matches, kept in creation order.
type Manager struct {
	mu      sync.Mutex
	matches map[string]Match
	order   []string
}

func NewManager() *Manager {
	return &Manager{matches: make(map[string]Match)}
}

// Create allocates a fresh id and registers the match built for it.
func (m *Manager) Create(build func(id string) Match) Match {
	id := uuid.NewString()
	match := build(id)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[id] = match
	m.order = append(m.order, id)
	return match
}

// Get returns a match by ID.
func (m *Manager) Get(id string) (Match, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.matches[id]
	return match, ok
}

// Remove forgets a match. Unknown ids are ignored.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.matches[id]; !ok {
		return
	}
	delete(m.matches, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// List returns every live match, oldest first.
func (m *Manager) List() []Match {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Match, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.matches[id])
	}
	return out
}

// FirstJoinable picks the oldest match with a free seat.
func (m *Manager) FirstJoinable() (Match, bool) {
	for _, match := range m.List() {
		if match.Joinable() {
			return match, true
		}
	}
	return nil, false
}
