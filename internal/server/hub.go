package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"settlers/internal/archive"
	"settlers/internal/auth"
	"settlers/internal/engine"
	"settlers/internal/lobby"
	"settlers/internal/protocol"
)

//go:generate go tool mockgen -destination=./mocks/archive_mock.go -package=mocks . ResultRecorder,History

// ResultRecorder persists finished matches.
type ResultRecorder interface {
	Record(ctx context.Context, r archive.Result) error
}

// History lists finished matches.
type History interface {
	Recent(ctx context.Context, limit int) ([]archive.Result, error)
}

const (
	maxNameLength      = 24
	recordTimeout      = 5 * time.Second
	defaultIdleTimeout = 10 * time.Minute
)

// HubDeps are the collaborators a hub shares with the rest of the server.
type HubDeps struct {
	Tokens   *auth.Issuer
	Recorder ResultRecorder // optional
	// OnEmpty runs once, from the hub goroutine, after the last client left.
	OnEmpty func(matchID string)
	// IdleTimeout closes a match nobody ever connected to.
	IdleTimeout time.Duration
}

// Hub owns one match. Joins, leaves and actions all arrive over its
// channels and are applied one at a time by Run.
type Hub struct {
	id       string
	created  time.Time
	game     *engine.Game
	lobby    *lobby.Lobby
	deps     HubDeps
	recorded bool

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	incoming   chan IncomingMessage
	done       chan struct{}

	// mu guards the published copies read from other goroutines.
	mu      sync.RWMutex
	latest  engine.Snapshot
	summary protocol.MatchSummary
}

// NewHub wraps game. Players already seated in game start out disconnected
// and can reclaim their seats with a token.
func NewHub(game *engine.Game, deps HubDeps) *Hub {
	h := &Hub{
		id:         game.ID,
		created:    time.Now(),
		game:       game,
		lobby:      lobby.NewLobby(game.ID, game.Config.MaxPlayers),
		deps:       deps,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan IncomingMessage, 256),
		done:       make(chan struct{}),
	}
	for _, p := range game.Players {
		_ = h.lobby.Join(p.ID, p.Name, p.Color)
		_ = h.lobby.Disconnect(p.ID)
	}
	h.refresh()
	return h
}

func (h *Hub) ID() string { return h.id }

// Joinable reports whether a new player could still take a seat.
func (h *Hub) Joinable() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.summary.Joinable
}

func (h *Hub) Summary() protocol.MatchSummary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.summary
}

// Snapshot returns the state as of the last applied change. Callers must
// treat it as read-only.
func (h *Hub) Snapshot() engine.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Register attaches a client. It fails once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) submit(msg IncomingMessage) bool {
	select {
	case h.incoming <- msg:
		return true
	case <-h.done:
		return false
	}
}

// Run serves the match until ctx is cancelled or the last client leaves.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		close(h.done)
		if h.deps.OnEmpty != nil {
			h.deps.OnEmpty(h.id)
		}
		log.Info().Str("match", h.id).Msg("match closed")
	}()

	timeout := h.deps.IdleTimeout
	if timeout <= 0 {
		timeout = defaultIdleTimeout
	}
	idle := time.NewTimer(timeout)
	defer idle.Stop()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.sendState(client)

		case client := <-h.unregister:
			if h.drop(ctx, client) {
				return
			}

		case msg := <-h.incoming:
			if h.clients[msg.Client] {
				h.handleMessage(ctx, msg)
			}

		case <-idle.C:
			if len(h.clients) == 0 {
				log.Info().Str("match", h.id).Msg("match idle")
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// drop detaches a client and reports whether the match is now empty.
func (h *Hub) drop(ctx context.Context, c *Client) bool {
	if _, ok := h.clients[c]; !ok {
		return len(h.clients) == 0
	}
	delete(h.clients, c)
	close(c.send)

	if c.PlayerID != "" {
		_ = h.lobby.Disconnect(c.PlayerID)
		log.Info().Str("match", h.id).Str("player", c.PlayerID).Msg("player disconnected")
		if h.game.Phase == engine.PhaseMapBuilding {
			events, err := h.game.RemovePlayer(c.PlayerID)
			if err == nil {
				h.lobby.Leave(c.PlayerID)
				h.publish(ctx, events)
			}
		}
		h.refresh()
	}
	return len(h.clients) == 0
}

// displayName trims whitespace and caps the name at maxNameLength runes.
func displayName(raw string) string {
	name := strings.TrimSpace(raw)
	if r := []rune(name); len(r) > maxNameLength {
		name = strings.TrimSpace(string(r[:maxNameLength]))
	}
	return name
}

func (h *Hub) handleMessage(ctx context.Context, msg IncomingMessage) {
	switch msg.Envelope.Type {
	case protocol.MsgJoin:
		h.handleJoin(ctx, msg)
	case protocol.MsgAction:
		h.handleAction(ctx, msg)
	default:
		h.notify(msg.Client, protocol.LevelError, fmt.Sprintf("unknown message type %q", msg.Envelope.Type))
	}
}

func (h *Hub) handleJoin(ctx context.Context, msg IncomingMessage) {
	c := msg.Client
	if c.PlayerID != "" {
		h.notify(c, protocol.LevelError, "already joined")
		return
	}
	var join protocol.JoinMsg
	if err := msg.Envelope.Decode(&join); err != nil {
		h.notify(c, protocol.LevelError, "invalid join message")
		return
	}
	name := displayName(join.Name)

	var (
		player *engine.Player
		events []engine.Event
		err    error
	)
	if join.PlayerID != "" {
		player, err = h.reconnect(join, name)
	} else {
		if name == "" {
			name = fmt.Sprintf("Player %d", len(h.game.Players)+1)
		}
		player, events, err = h.game.AddPlayer(uuid.NewString(), name, "")
		if err == nil {
			err = h.lobby.Join(player.ID, player.Name, player.Color)
		}
	}
	if err != nil {
		log.Debug().Err(err).Str("match", h.id).Msg("join rejected")
		h.notify(c, protocol.LevelError, err.Error())
		return
	}

	token, err := h.deps.Tokens.Issue(h.id, player.ID)
	if err != nil {
		log.Error().Err(err).Str("match", h.id).Msg("issue token")
		h.notify(c, protocol.LevelError, "could not issue a reconnect token")
		return
	}
	c.PlayerID = player.ID
	c.SendEnvelope(protocol.MustEnvelope(protocol.MsgJoined, protocol.JoinedMsg{
		MatchID:  h.id,
		PlayerID: player.ID,
		Token:    token,
		Color:    player.Color,
	}))
	h.notify(c, protocol.LevelSuccess, "Joined as "+player.Name)
	log.Info().Str("match", h.id).Str("player", player.ID).Str("name", player.Name).Msg("player joined")
	h.publish(ctx, events)
}

func (h *Hub) reconnect(join protocol.JoinMsg, name string) (*engine.Player, error) {
	seat := h.game.GetPlayer(join.PlayerID)
	if seat == nil {
		return nil, engine.ErrPlayerNotFound
	}
	if name == "" {
		name = seat.Name
	}
	if err := h.deps.Tokens.Verify(join.Token, h.id, join.PlayerID); err != nil {
		return nil, err
	}
	if err := h.lobby.Join(join.PlayerID, name, ""); err != nil {
		return nil, err
	}
	player, _, err := h.game.AddPlayer(join.PlayerID, name, "")
	return player, err
}

func (h *Hub) handleAction(ctx context.Context, msg IncomingMessage) {
	c := msg.Client
	if c.PlayerID == "" {
		h.notify(c, protocol.LevelError, "join the match first")
		return
	}
	action, err := protocol.DecodeAction(msg.Envelope.Payload)
	if err != nil {
		h.notify(c, protocol.LevelError, err.Error())
		return
	}

	events, err := h.game.Apply(c.PlayerID, action)
	if err != nil {
		log.Debug().Err(err).
			Str("match", h.id).
			Str("player", c.PlayerID).
			Str("action", string(action.Type)).
			Str("phase", h.game.Phase.String()).
			Msg("action rejected")
		h.notify(c, protocol.LevelError, err.Error())
		if len(events) > 0 {
			h.publish(ctx, events)
		}
		return
	}
	h.publish(ctx, events)
}

// publish records a finished match, then pushes events and the new state to
// every client.
func (h *Hub) publish(ctx context.Context, events []engine.Event) {
	h.refresh()
	h.maybeRecord(ctx)
	h.broadcastEvents(events)
	h.broadcastState()
}

func (h *Hub) refresh() {
	snap := h.game.Snapshot()
	joinable := (h.game.Phase == engine.PhaseMapBuilding || h.game.Phase == engine.PhaseSetup) &&
		len(h.game.Players) < h.game.Config.MaxPlayers

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = snap
	h.summary = protocol.MatchSummary{
		ID:        h.id,
		Phase:     h.game.Phase.String(),
		Players:   len(h.game.Players),
		Connected: h.lobby.ConnectedCount(),
		Joinable:  joinable,
		CreatedAt: h.created,
	}
}

func (h *Hub) maybeRecord(ctx context.Context) {
	if h.recorded || h.game.Phase != engine.PhaseGameOver || h.deps.Recorder == nil {
		return
	}
	h.recorded = true

	res := archive.Result{
		MatchID:     h.id,
		WinnerID:    h.game.WinnerID,
		TerrainSeed: h.game.TerrainSeed,
		TokenSeed:   h.game.TokenSeed,
		FinishedAt:  h.game.Config.Clock(),
	}
	for _, p := range h.game.Players {
		if p.ID == h.game.WinnerID {
			res.WinnerName = p.Name
		}
		res.Players = append(res.Players, archive.PlayerResult{
			ID: p.ID, Name: p.Name, Color: p.Color, VictoryPoints: p.VictoryPoints,
		})
	}

	rctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()
	if err := h.deps.Recorder.Record(rctx, res); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Str("match", h.id).Msg("record result")
	}
}

func (h *Hub) broadcastEvents(events []engine.Event) {
	for _, ev := range events {
		h.broadcastAll(protocol.MustEnvelope(protocol.MsgEvent, ev))
	}
}

func (h *Hub) broadcastState() {
	h.broadcastAll(protocol.MustEnvelope(protocol.MsgGameState, h.Snapshot()))
}

func (h *Hub) sendState(c *Client) {
	c.SendEnvelope(protocol.MustEnvelope(protocol.MsgGameState, h.Snapshot()))
}

func (h *Hub) broadcastAll(env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("match", h.id).Msg("broadcast marshal")
		return
	}
	for client := range h.clients {
		client.queue(data)
	}
}

func (h *Hub) notify(c *Client, level, message string) {
	c.SendEnvelope(protocol.MustEnvelope(protocol.MsgNotification, protocol.Notification{
		Level:   level,
		Message: message,
	}))
}
