package engine

import (
	"fmt"
	"slices"
)

const discardThreshold = 7

// startSevenRoll lists every player holding more than seven cards. With
// nobody indebted the robber moves straight away.
func (g *Game) startSevenRoll() []Event {
	g.PendingDiscards = nil
	for _, p := range g.Players {
		if p.Resources.Total() > discardThreshold {
			g.PendingDiscards = append(g.PendingDiscards, p.ID)
		}
	}
	if len(g.PendingDiscards) > 0 {
		return g.setPhase(PhaseDiscard)
	}
	return g.StartRobber()
}

// StartRobber hands the current player the robber.
func (g *Game) StartRobber() []Event {
	return g.setPhase(PhaseRobberPlacement)
}

// finishRobber returns to the turn the robber interrupted: before the roll
// when a knight was played early, after it otherwise.
func (g *Game) finishRobber() []Event {
	g.StealCandidates = nil
	if g.HasRolledDice {
		return g.setPhase(PhaseMainTurn)
	}
	return g.setPhase(PhaseRollDice)
}

// DiscardRequired is the number of cards p must give up on a seven.
func DiscardRequired(p *Player) int {
	return p.Resources.Total() / 2
}

func (g *Game) applyDiscard(playerID string, action Action) ([]Event, error) {
	if g.Phase != PhaseDiscard {
		return nil, ErrWrongPhase
	}
	if !slices.Contains(g.PendingDiscards, playerID) {
		return nil, fmt.Errorf("%w: you have nothing to discard", ErrInvalidAction)
	}
	p := g.GetPlayer(playerID)
	if !action.Give.Valid() {
		return nil, fmt.Errorf("%w: negative discard", ErrInvalidPayload)
	}
	need := DiscardRequired(p)
	if action.Give.Total() != need {
		return nil, fmt.Errorf("%w: must discard exactly %d cards", ErrInvalidAction, need)
	}
	if !p.Resources.Covers(action.Give) {
		return nil, ErrInsufficientResources
	}

	p.Resources.Sub(action.Give)
	g.PendingDiscards = slices.DeleteFunc(g.PendingDiscards, func(id string) bool { return id == playerID })
	g.logf("%s discarded %d cards", p.Name, need)
	events := []Event{{Type: EventDiscarded, Player: playerID, Data: map[string]interface{}{
		"resources": action.Give, "count": need,
	}}}
	if len(g.PendingDiscards) == 0 {
		g.PendingDiscards = nil
		events = append(events, g.StartRobber()...)
	}
	return events, nil
}

func (g *Game) applyMoveRobber(playerID string, action Action) ([]Event, error) {
	if err := g.requireTurn(playerID, PhaseRobberPlacement); err != nil {
		return nil, err
	}
	target, ok := g.Board.Hex(action.HexID)
	if !ok {
		return nil, fmt.Errorf("%w: hex %q", ErrNotFound, action.HexID)
	}
	if target.HasRobber {
		return nil, fmt.Errorf("%w: the robber must move to a different hex", ErrInvalidAction)
	}
	if old := g.Board.RobberHex(); old != nil {
		old.HasRobber = false
	}
	target.HasRobber = true
	g.logf("%s moved the robber", g.GetPlayer(playerID).Name)

	owners := make(map[string]bool)
	for _, vid := range g.Board.HexVertices(target.ID) {
		v, _ := g.Board.Vertex(vid)
		if v.Building != nil && v.Building.OwnerID != playerID {
			owners[v.Building.OwnerID] = true
		}
	}
	g.StealCandidates = nil
	for _, p := range g.Players {
		if owners[p.ID] {
			g.StealCandidates = append(g.StealCandidates, p.ID)
		}
	}

	events := []Event{{Type: EventRobberMoved, Player: playerID, Data: map[string]interface{}{
		"hex_id": target.ID, "candidates": g.StealCandidates,
	}}}
	if len(g.StealCandidates) == 0 {
		return append(events, g.finishRobber()...), nil
	}
	return append(events, g.setPhase(PhaseRobberSteal)...), nil
}

func (g *Game) applySteal(playerID string, action Action) ([]Event, error) {
	if err := g.requireTurn(playerID, PhaseRobberSteal); err != nil {
		return nil, err
	}
	if !slices.Contains(g.StealCandidates, action.TargetID) {
		return nil, fmt.Errorf("%w: cannot steal from that player", ErrInvalidAction)
	}
	thief := g.GetPlayer(playerID)
	victim := g.GetPlayer(action.TargetID)

	events := []Event{}
	kinds := victim.Resources.NonZero()
	if len(kinds) > 0 {
		r := kinds[g.Config.Source.IntN(len(kinds))]
		victim.Resources[r]--
		thief.Resources[r]++
		g.animate("RESOURCE", r.String(), 1, playerID, "GAIN")
		g.logf("%s stole a card from %s", thief.Name, victim.Name)
		events = append(events, Event{Type: EventStolen, Player: playerID, Data: map[string]interface{}{
			"victim": victim.ID, "resource": r.String(),
		}})
	} else {
		g.logf("%s had nothing to steal", victim.Name)
		events = append(events, Event{Type: EventStolen, Player: playerID, Data: map[string]interface{}{
			"victim": victim.ID,
		}})
	}
	return append(events, g.finishRobber()...), nil
}
