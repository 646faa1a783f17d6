package engine

import "fmt"

// ActionType identifies player actions sent to Game.Apply.
type ActionType string

const (
	ActionConfirmMap       ActionType = "confirm_map"
	ActionRegenerateMap    ActionType = "regenerate_map"
	ActionRegenerateTokens ActionType = "regenerate_tokens"

	ActionBuildRoad       ActionType = "build_road"
	ActionBuildSettlement ActionType = "build_settlement"
	ActionUpgradeCity     ActionType = "upgrade_city"
	ActionRemoveBuilding  ActionType = "remove_building" // setup only
	ActionRemoveRoad      ActionType = "remove_road"     // setup only
	ActionLockSetup       ActionType = "lock_setup"
	ActionUnlockSetup     ActionType = "unlock_setup"

	ActionRollDice   ActionType = "roll_dice"
	ActionEndTurn    ActionType = "end_turn"
	ActionDiscard    ActionType = "discard"
	ActionMoveRobber ActionType = "move_robber"
	ActionSteal      ActionType = "steal"

	ActionBuyDevCard      ActionType = "buy_dev_card"
	ActionPlayDevCard     ActionType = "play_dev_card"
	ActionChooseResource  ActionType = "choose_resource"  // year of plenty pick
	ActionChooseMonopoly  ActionType = "choose_monopoly"  // monopoly kind
	ActionCancelDevAction ActionType = "cancel_dev_action"

	ActionTradeBank    ActionType = "trade_bank"
	ActionProposeTrade ActionType = "propose_trade"
	ActionAcceptTrade  ActionType = "accept_trade"
	ActionRejectTrade  ActionType = "reject_trade"
	ActionCancelTrade  ActionType = "cancel_trade"

	ActionToggleDebug ActionType = "toggle_debug"
	ActionSetResource ActionType = "set_resource" // debug only
)

// Action is a player's action input.
type Action struct {
	Type ActionType `json:"type"`
	// Params depend on Type:
	// build_road, remove_road: EdgeID
	// build_settlement, upgrade_city, remove_building: VertexID
	// move_robber: HexID
	// steal: TargetID
	// play_dev_card: CardID
	// choose_resource, choose_monopoly: Resource
	// discard: Give
	// trade_bank: Give, Resource (requested kind)
	// propose_trade: TargetID, Give (offer), Want (request)
	// set_resource: Resource, Amount
	// regenerate_map: TerrainSeed, TokenSeed, PortCount
	// regenerate_tokens: TokenSeed
	EdgeID   string   `json:"edge_id,omitempty"`
	VertexID string   `json:"vertex_id,omitempty"`
	HexID    string   `json:"hex_id,omitempty"`
	TargetID string   `json:"target_id,omitempty"`
	CardID   string   `json:"card_id,omitempty"`
	Resource Resource `json:"resource"`
	Amount   int      `json:"amount,omitempty"`
	Give     Hand     `json:"give"`
	Want     Hand     `json:"want"`

	TerrainSeed string `json:"terrain_seed,omitempty"`
	TokenSeed   string `json:"token_seed,omitempty"`
	PortCount   *int   `json:"port_count,omitempty"`
}

// EventType identifies events emitted by the engine.
type EventType string

const (
	EventMapGenerated     EventType = "map_generated"
	EventPhaseChange      EventType = "phase_change"
	EventPlayerJoined     EventType = "player_joined"
	EventPlayerLeft       EventType = "player_left"
	EventRoadBuilt        EventType = "road_built"
	EventRoadRemoved      EventType = "road_removed"
	EventSettlementBuilt  EventType = "settlement_built"
	EventBuildingRemoved  EventType = "building_removed"
	EventCityBuilt        EventType = "city_built"
	EventSetupLocked      EventType = "setup_locked"
	EventSetupUnlocked    EventType = "setup_unlocked"
	EventStartingHand     EventType = "starting_resources"
	EventDiceRolled       EventType = "dice_rolled"
	EventProduction       EventType = "production"
	EventDiscarded        EventType = "discarded"
	EventRobberMoved      EventType = "robber_moved"
	EventStolen           EventType = "stolen"
	EventTurnEnd          EventType = "turn_end"
	EventDevCardBought    EventType = "dev_card_bought"
	EventDevCardPlayed    EventType = "dev_card_played"
	EventDevActionDone    EventType = "dev_action_done"
	EventResourceTaken    EventType = "resource_taken"
	EventLargestArmy      EventType = "largest_army"
	EventBankTrade        EventType = "bank_trade"
	EventTradeProposed    EventType = "trade_proposed"
	EventTradeAccepted    EventType = "trade_accepted"
	EventTradeRejected    EventType = "trade_rejected"
	EventTradeCancelled   EventType = "trade_cancelled"
	EventTradeVoided      EventType = "trade_voided"
	EventDebugToggled     EventType = "debug_toggled"
	EventResourceOverride EventType = "resource_override"
	EventGameOver         EventType = "game_over"
)

// Event is emitted by the engine after state changes.
type Event struct {
	Type   EventType   `json:"type"`
	Player string      `json:"player,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// CardEffect is the immediate effect of playing a development card.
type CardEffect interface {
	Type() DevCardType
	// Playable reports whether the card may be played in the current phase.
	Playable(g *Game, playerID string) error
	// Apply runs the effect after the card left the player's hand.
	Apply(g *Game, playerID string) ([]Event, error)
}

// CardRegistry maps card types to their effects.
type CardRegistry struct {
	effects map[DevCardType]CardEffect
}

func NewCardRegistry() *CardRegistry {
	return &CardRegistry{effects: make(map[DevCardType]CardEffect)}
}

func (r *CardRegistry) Register(e CardEffect) {
	r.effects[e.Type()] = e
}

func (r *CardRegistry) Get(t DevCardType) (CardEffect, error) {
	e, ok := r.effects[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s cards cannot be played", ErrInvalidAction, t)
	}
	return e, nil
}
