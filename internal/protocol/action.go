package protocol

import (
	"encoding/json"
	"fmt"

	"settlers/internal/engine"
)

// ActionMsg is the wire form of an engine action. Resources travel as names
// ("WOOD") and hands as objects keyed by name.
type ActionMsg struct {
	Type        string       `json:"type"`
	EdgeID      string       `json:"edge_id,omitempty"`
	VertexID    string       `json:"vertex_id,omitempty"`
	HexID       string       `json:"hex_id,omitempty"`
	TargetID    string       `json:"target_id,omitempty"`
	CardID      string       `json:"card_id,omitempty"`
	Resource    string       `json:"resource,omitempty"`
	Amount      int          `json:"amount,omitempty"`
	Give        *engine.Hand `json:"give,omitempty"`
	Want        *engine.Hand `json:"want,omitempty"`
	TerrainSeed string       `json:"terrain_seed,omitempty"`
	TokenSeed   string       `json:"token_seed,omitempty"`
	PortCount   *int         `json:"port_count,omitempty"`
}

type field uint

const (
	fEdge field = 1 << iota
	fVertex
	fHex
	fTarget
	fCard
	fResource
	fGive
)

// required lists the fields each action cannot do without. Actions missing
// from the table are rejected outright.
var required = map[engine.ActionType]field{
	engine.ActionConfirmMap:       0,
	engine.ActionRegenerateMap:    0,
	engine.ActionRegenerateTokens: 0,
	engine.ActionBuildRoad:        fEdge,
	engine.ActionBuildSettlement:  fVertex,
	engine.ActionUpgradeCity:      fVertex,
	engine.ActionRemoveBuilding:   fVertex,
	engine.ActionRemoveRoad:       fEdge,
	engine.ActionLockSetup:        0,
	engine.ActionUnlockSetup:      0,
	engine.ActionRollDice:         0,
	engine.ActionEndTurn:          0,
	engine.ActionDiscard:          fGive,
	engine.ActionMoveRobber:       fHex,
	engine.ActionSteal:            fTarget,
	engine.ActionBuyDevCard:       0,
	engine.ActionPlayDevCard:      fCard,
	engine.ActionChooseResource:   fResource,
	engine.ActionChooseMonopoly:   fResource,
	engine.ActionCancelDevAction:  0,
	engine.ActionTradeBank:        fGive | fResource,
	engine.ActionProposeTrade:     fTarget,
	engine.ActionAcceptTrade:      0,
	engine.ActionRejectTrade:      0,
	engine.ActionCancelTrade:      0,
	engine.ActionToggleDebug:      0,
	engine.ActionSetResource:      fResource,
}

// DecodeAction parses and validates an action payload. Every error wraps
// engine.ErrInvalidPayload.
func DecodeAction(raw json.RawMessage) (engine.Action, error) {
	var msg ActionMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return engine.Action{}, fmt.Errorf("%w: %v", engine.ErrInvalidPayload, err)
	}
	typ := engine.ActionType(msg.Type)
	need, ok := required[typ]
	if !ok {
		return engine.Action{}, fmt.Errorf("%w: unknown action %q", engine.ErrInvalidPayload, msg.Type)
	}

	missing := func(f field, name string, empty bool) error {
		if need&f != 0 && empty {
			return fmt.Errorf("%w: %s requires %s", engine.ErrInvalidPayload, typ, name)
		}
		return nil
	}
	for _, err := range []error{
		missing(fEdge, "edge_id", msg.EdgeID == ""),
		missing(fVertex, "vertex_id", msg.VertexID == ""),
		missing(fHex, "hex_id", msg.HexID == ""),
		missing(fTarget, "target_id", msg.TargetID == ""),
		missing(fCard, "card_id", msg.CardID == ""),
		missing(fResource, "resource", msg.Resource == ""),
		missing(fGive, "give", msg.Give == nil || msg.Give.Total() == 0),
	} {
		if err != nil {
			return engine.Action{}, err
		}
	}

	action := engine.Action{
		Type:        typ,
		EdgeID:      msg.EdgeID,
		VertexID:    msg.VertexID,
		HexID:       msg.HexID,
		TargetID:    msg.TargetID,
		CardID:      msg.CardID,
		Amount:      msg.Amount,
		TerrainSeed: msg.TerrainSeed,
		TokenSeed:   msg.TokenSeed,
		PortCount:   msg.PortCount,
	}
	if msg.Resource != "" {
		r, err := engine.ParseResource(msg.Resource)
		if err != nil {
			return engine.Action{}, err
		}
		action.Resource = r
	}
	if msg.Give != nil {
		action.Give = *msg.Give
	}
	if msg.Want != nil {
		action.Want = *msg.Want
	}
	if !action.Give.Valid() || !action.Want.Valid() {
		return engine.Action{}, fmt.Errorf("%w: negative amounts", engine.ErrInvalidPayload)
	}
	if action.PortCount != nil && *action.PortCount < 0 {
		return engine.Action{}, fmt.Errorf("%w: port_count must not be negative", engine.ErrInvalidPayload)
	}
	return action, nil
}
