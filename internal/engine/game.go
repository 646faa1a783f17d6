package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNotYourTurn           = errors.New("not your turn")
	ErrInvalidAction         = errors.New("invalid action")
	ErrInvalidPayload        = errors.New("invalid payload")
	ErrPlayerNotFound        = errors.New("player not found")
	ErrNotFound              = errors.New("not found")
	ErrWrongPhase            = errors.New("wrong phase for this action")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrOccupied              = errors.New("location occupied")
	ErrGameOver              = errors.New("game is over")
	ErrGameFull              = errors.New("game is full")
	ErrTradePending          = errors.New("a trade offer is already pending")
	ErrNoTrade               = errors.New("no trade offer pending")
	ErrDevActionPending      = errors.New("a development card action is in progress")
)

// CardAnimation describes the latest resource or card gain/use. Consumers
// render it once per distinct Timestamp.
type CardAnimation struct {
	CardType   string `json:"card_type"` // RESOURCE or DEVELOPMENT
	Card       string `json:"card"`
	Count      int    `json:"count"`
	PlayerName string `json:"player_name"`
	Action     string `json:"action"` // GAIN or USE
	Timestamp  int64  `json:"timestamp"`
}

// Game holds the entire game state.
type Game struct {
	ID          string
	TerrainSeed string
	TokenSeed   string
	PortCount   int
	Board       *Board
	Players     []*Player
	Config      GameConfig
	Cards       *CardRegistry

	Phase           GamePhase
	CurrentPlayerID string
	Dice            [2]int
	HasRolledDice   bool
	Log             []string
	DebugMode       bool

	PendingDiscards []string
	StealCandidates []string
	TradeOffer      *TradeOffer
	DevAction       DevAction
	LargestArmyID   string
	CardAnimation   *CardAnimation
	WinnerID        string

	lastStamp int64
}

// NewGame generates the island and opens the match in MAP_BUILDING.
func NewGame(id string, config GameConfig, cards *CardRegistry) *Game {
	config.fill()
	g := &Game{
		ID:     id,
		Config: config,
		Cards:  cards,
		Phase:  PhaseMapBuilding,
	}
	g.generate(config.TerrainSeed, config.TokenSeed, config.PortCount)
	return g
}

func (g *Game) generate(terrainSeed, tokenSeed string, portCount int) {
	defTerrain, defToken := defaultSeeds(g.Config.Clock())
	if terrainSeed == "" {
		terrainSeed = defTerrain
	}
	if tokenSeed == "" {
		tokenSeed = defToken
	}
	g.TerrainSeed = terrainSeed
	g.TokenSeed = tokenSeed
	g.PortCount = portCount
	g.Board = Generate(terrainSeed, tokenSeed, portCount)
}

// AddPlayer seats a new player, or returns the existing seat for a known id.
// New seats are only handed out before normal turns begin.
func (g *Game) AddPlayer(id, name, color string) (*Player, []Event, error) {
	if p := g.GetPlayer(id); p != nil {
		if name != "" {
			p.Name = name
		}
		return p, nil, nil
	}
	if g.Phase != PhaseMapBuilding && g.Phase != PhaseSetup {
		return nil, nil, fmt.Errorf("%w: game already started", ErrWrongPhase)
	}
	if len(g.Players) >= g.Config.MaxPlayers {
		return nil, nil, ErrGameFull
	}
	if color == "" {
		color = g.freeColor()
	}
	p := NewPlayer(id, name, color)
	g.Players = append(g.Players, p)
	if g.CurrentPlayerID == "" {
		g.CurrentPlayerID = id
	}
	g.logf("%s joined the game", name)
	return p, []Event{{Type: EventPlayerJoined, Player: id, Data: map[string]interface{}{
		"name": name, "color": color,
	}}}, nil
}

func (g *Game) freeColor() string {
	used := make(map[string]bool, len(g.Players))
	for _, p := range g.Players {
		used[p.Color] = true
	}
	for _, c := range g.Config.Colors {
		if !used[c] {
			return c
		}
	}
	return ""
}

// RemovePlayer frees a seat. Only possible while the map is being built.
func (g *Game) RemovePlayer(id string) ([]Event, error) {
	if g.Phase != PhaseMapBuilding {
		return nil, fmt.Errorf("%w: seats are fixed once the map is confirmed", ErrWrongPhase)
	}
	idx := -1
	for i, p := range g.Players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrPlayerNotFound
	}
	name := g.Players[idx].Name
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
	if g.CurrentPlayerID == id {
		g.CurrentPlayerID = ""
		if len(g.Players) > 0 {
			g.CurrentPlayerID = g.Players[0].ID
		}
	}
	g.logf("%s left the game", name)
	return []Event{{Type: EventPlayerLeft, Player: id}}, nil
}

// Apply is the single entry point for player actions. A rejected action
// leaves the game untouched, with one exception: an accept_trade that fails
// re-validation clears the stale offer and returns its events with the error.
func (g *Game) Apply(playerID string, action Action) ([]Event, error) {
	if g.Phase == PhaseGameOver {
		return nil, ErrGameOver
	}
	if g.GetPlayer(playerID) == nil {
		return nil, ErrPlayerNotFound
	}

	var (
		events []Event
		err    error
	)
	switch action.Type {
	case ActionConfirmMap:
		events, err = g.applyConfirmMap(playerID)
	case ActionRegenerateMap:
		events, err = g.applyRegenerateMap(playerID, action)
	case ActionRegenerateTokens:
		events, err = g.applyRegenerateTokens(playerID, action)
	case ActionBuildRoad:
		events, err = g.applyBuildRoad(playerID, action)
	case ActionBuildSettlement:
		events, err = g.applyBuildSettlement(playerID, action)
	case ActionUpgradeCity:
		events, err = g.applyUpgradeCity(playerID, action)
	case ActionRemoveBuilding:
		events, err = g.applyRemoveBuilding(playerID, action)
	case ActionRemoveRoad:
		events, err = g.applyRemoveRoad(playerID, action)
	case ActionLockSetup:
		events, err = g.applyLockSetup(playerID)
	case ActionUnlockSetup:
		events, err = g.applyUnlockSetup(playerID)
	case ActionRollDice:
		events, err = g.applyRollDice(playerID)
	case ActionEndTurn:
		events, err = g.applyEndTurn(playerID)
	case ActionDiscard:
		events, err = g.applyDiscard(playerID, action)
	case ActionMoveRobber:
		events, err = g.applyMoveRobber(playerID, action)
	case ActionSteal:
		events, err = g.applySteal(playerID, action)
	case ActionBuyDevCard:
		events, err = g.applyBuyDevCard(playerID)
	case ActionPlayDevCard:
		events, err = g.applyPlayDevCard(playerID, action)
	case ActionChooseResource:
		events, err = g.applyChooseResource(playerID, action)
	case ActionChooseMonopoly:
		events, err = g.applyChooseMonopoly(playerID, action)
	case ActionCancelDevAction:
		events, err = g.applyCancelDevAction(playerID)
	case ActionTradeBank:
		events, err = g.applyTradeBank(playerID, action)
	case ActionProposeTrade:
		events, err = g.applyProposeTrade(playerID, action)
	case ActionAcceptTrade:
		events, err = g.applyAcceptTrade(playerID)
	case ActionRejectTrade:
		events, err = g.applyRejectTrade(playerID)
	case ActionCancelTrade:
		events, err = g.applyCancelTrade(playerID)
	case ActionToggleDebug:
		events, err = g.applyToggleDebug(playerID)
	case ActionSetResource:
		events, err = g.applySetResource(playerID, action)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidAction, action.Type)
	}
	if err != nil {
		return events, err
	}
	return append(events, g.checkVictory()...), nil
}

func (g *Game) applyConfirmMap(playerID string) ([]Event, error) {
	if g.Phase != PhaseMapBuilding {
		return nil, ErrWrongPhase
	}
	g.logf("%s confirmed the map", g.GetPlayer(playerID).Name)
	return g.setPhase(PhaseSetup), nil
}

func (g *Game) applyRegenerateMap(playerID string, action Action) ([]Event, error) {
	if g.Phase != PhaseMapBuilding {
		return nil, ErrWrongPhase
	}
	ports := g.PortCount
	if action.PortCount != nil {
		if *action.PortCount < 0 {
			return nil, fmt.Errorf("%w: negative port count", ErrInvalidAction)
		}
		ports = *action.PortCount
	}
	g.generate(action.TerrainSeed, action.TokenSeed, ports)
	g.logf("%s generated a new map", g.GetPlayer(playerID).Name)
	return []Event{{Type: EventMapGenerated, Player: playerID, Data: map[string]interface{}{
		"terrain_seed": g.TerrainSeed, "token_seed": g.TokenSeed, "port_count": ports,
		"ports_placed": len(g.Board.Ports),
	}}}, nil
}

func (g *Game) applyRegenerateTokens(playerID string, action Action) ([]Event, error) {
	if g.Phase != PhaseMapBuilding {
		return nil, ErrWrongPhase
	}
	seed := action.TokenSeed
	if seed == "" {
		_, seed = defaultSeeds(g.Config.Clock())
	}
	g.TokenSeed = seed
	g.Board.RegenerateTokens(seed)
	g.logf("%s reshuffled the number tokens", g.GetPlayer(playerID).Name)
	return []Event{{Type: EventMapGenerated, Player: playerID, Data: map[string]interface{}{
		"token_seed": seed,
	}}}, nil
}

func (g *Game) applyToggleDebug(playerID string) ([]Event, error) {
	g.DebugMode = !g.DebugMode
	state := "off"
	if g.DebugMode {
		state = "on"
	}
	g.logf("%s turned debug mode %s", g.GetPlayer(playerID).Name, state)
	return []Event{{Type: EventDebugToggled, Player: playerID, Data: map[string]interface{}{
		"debug": g.DebugMode,
	}}}, nil
}

func (g *Game) applySetResource(playerID string, action Action) ([]Event, error) {
	if !g.DebugMode {
		return nil, fmt.Errorf("%w: debug mode is off", ErrInvalidAction)
	}
	target := playerID
	if action.TargetID != "" {
		target = action.TargetID
	}
	p := g.GetPlayer(target)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if action.Resource < 0 || action.Resource >= numResources {
		return nil, fmt.Errorf("%w: unknown resource", ErrInvalidPayload)
	}
	p.Resources[action.Resource] = max(0, action.Amount)
	return []Event{{Type: EventResourceOverride, Player: target, Data: map[string]interface{}{
		"resource": action.Resource.String(), "amount": p.Resources[action.Resource],
	}}}, nil
}

// GetPlayer finds a player by ID.
func (g *Game) GetPlayer(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *Player {
	return g.GetPlayer(g.CurrentPlayerID)
}

func (g *Game) requireTurn(playerID string, phases ...GamePhase) error {
	ok := false
	for _, ph := range phases {
		if g.Phase == ph {
			ok = true
			break
		}
	}
	if !ok {
		return ErrWrongPhase
	}
	if g.CurrentPlayerID != playerID {
		return ErrNotYourTurn
	}
	return nil
}

func (g *Game) setPhase(p GamePhase) []Event {
	g.Phase = p
	return []Event{{Type: EventPhaseChange, Data: map[string]interface{}{"phase": p.String()}}}
}

// logf prepends a human-readable entry and trims the log.
func (g *Game) logf(format string, args ...interface{}) {
	g.Log = append([]string{fmt.Sprintf(format, args...)}, g.Log...)
	if len(g.Log) > g.Config.LogLimit {
		g.Log = g.Log[:g.Config.LogLimit]
	}
}

// animate records a one-shot animation. Timestamps are strictly increasing
// so two animations in the same millisecond stay distinct.
func (g *Game) animate(cardType, card string, count int, playerID, action string) {
	ts := g.Config.Clock().UnixMilli()
	if ts <= g.lastStamp {
		ts = g.lastStamp + 1
	}
	g.lastStamp = ts
	name := ""
	if p := g.GetPlayer(playerID); p != nil {
		name = p.Name
	}
	g.CardAnimation = &CardAnimation{
		CardType:   cardType,
		Card:       card,
		Count:      count,
		PlayerName: name,
		Action:     action,
		Timestamp:  ts,
	}
}

func (g *Game) checkVictory() []Event {
	for _, p := range g.Players {
		if p.VictoryPoints >= g.Config.VictoryTarget {
			g.WinnerID = p.ID
			g.TradeOffer = nil
			g.DevAction = nil
			g.logf("%s wins with %d victory points", p.Name, p.VictoryPoints)
			events := []Event{{Type: EventGameOver, Player: p.ID, Data: map[string]interface{}{
				"victory_points": p.VictoryPoints,
			}}}
			return append(events, g.setPhase(PhaseGameOver)...)
		}
	}
	return nil
}
