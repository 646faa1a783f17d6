package engine

import "fmt"

func (g *Game) applyRollDice(playerID string) ([]Event, error) {
	if err := g.requireTurn(playerID, PhaseRollDice); err != nil {
		return nil, err
	}
	if g.HasRolledDice {
		return nil, fmt.Errorf("%w: dice already rolled this turn", ErrInvalidAction)
	}
	d1 := g.Config.Source.IntN(6) + 1
	d2 := g.Config.Source.IntN(6) + 1
	g.Dice = [2]int{d1, d2}
	g.HasRolledDice = true
	sum := d1 + d2
	g.logf("%s rolled %d", g.GetPlayer(playerID).Name, sum)

	events := []Event{{Type: EventDiceRolled, Player: playerID, Data: map[string]interface{}{
		"dice": g.Dice, "sum": sum,
	}}}
	if sum == 7 {
		return append(events, g.startSevenRoll()...), nil
	}
	events = append(events, g.produce(sum)...)
	return append(events, g.setPhase(PhaseMainTurn)...), nil
}

// produce credits every building next to an unrobbed hex showing sum.
func (g *Game) produce(sum int) []Event {
	gains := make(map[string]*Hand)
	for _, h := range g.Board.Hexes {
		if h.NumberToken != sum || h.HasRobber {
			continue
		}
		r, ok := h.Terrain.Produces()
		if !ok {
			continue
		}
		for _, vid := range g.Board.HexVertices(h.ID) {
			v, _ := g.Board.Vertex(vid)
			if v.Building == nil {
				continue
			}
			owner := g.GetPlayer(v.Building.OwnerID)
			if owner == nil {
				continue
			}
			owner.Resources[r] += v.Building.Kind.Yield()
			if gains[owner.ID] == nil {
				gains[owner.ID] = &Hand{}
			}
			gains[owner.ID][r] += v.Building.Kind.Yield()
		}
	}

	var events []Event
	for _, p := range g.Players {
		if gain, ok := gains[p.ID]; ok {
			events = append(events, Event{Type: EventProduction, Player: p.ID, Data: map[string]interface{}{
				"resources": *gain,
			}})
		}
	}
	return events
}

func (g *Game) applyEndTurn(playerID string) ([]Event, error) {
	if err := g.requireTurn(playerID, PhaseMainTurn); err != nil {
		return nil, err
	}
	if !g.HasRolledDice {
		return nil, fmt.Errorf("%w: roll the dice first", ErrInvalidAction)
	}
	p := g.GetPlayer(playerID)
	for i := range p.DevCards {
		p.DevCards[i].IsNew = false
	}
	p.HasPlayedDevCard = false

	next := g.Players[0]
	for i, q := range g.Players {
		if q.ID == playerID {
			next = g.Players[(i+1)%len(g.Players)]
			break
		}
	}
	g.CurrentPlayerID = next.ID
	g.HasRolledDice = false
	g.TradeOffer = nil
	g.DevAction = nil
	g.logf("%s ended their turn", p.Name)

	events := []Event{{Type: EventTurnEnd, Player: playerID, Data: map[string]interface{}{
		"next": next.ID,
	}}}
	return append(events, g.setPhase(PhaseRollDice)...), nil
}
