package engine

import "fmt"

func (g *Game) setupPlayer(playerID string) (*Player, error) {
	if g.Phase != PhaseSetup {
		return nil, ErrWrongPhase
	}
	p := g.GetPlayer(playerID)
	if p.SetupLocked {
		return nil, fmt.Errorf("%w: setup is locked", ErrInvalidAction)
	}
	return p, nil
}

func (g *Game) applyRemoveBuilding(playerID string, action Action) ([]Event, error) {
	p, err := g.setupPlayer(playerID)
	if err != nil {
		return nil, err
	}
	v, err := g.lookupVertex(action.VertexID)
	if err != nil {
		return nil, err
	}
	if v.Building == nil || v.Building.OwnerID != playerID {
		return nil, fmt.Errorf("%w: no building of yours there", ErrInvalidAction)
	}
	v.Building = nil
	p.SetupSettlements--
	p.VictoryPoints--
	p.forgetPlacement(v.ID)
	g.logf("%s removed a settlement", p.Name)
	return []Event{{Type: EventBuildingRemoved, Player: playerID, Data: map[string]interface{}{
		"vertex_id": v.ID,
	}}}, nil
}

func (g *Game) applyRemoveRoad(playerID string, action Action) ([]Event, error) {
	p, err := g.setupPlayer(playerID)
	if err != nil {
		return nil, err
	}
	e, err := g.lookupEdge(action.EdgeID)
	if err != nil {
		return nil, err
	}
	if e.Road == nil || e.Road.OwnerID != playerID {
		return nil, fmt.Errorf("%w: no road of yours there", ErrInvalidAction)
	}
	e.Road = nil
	p.SetupRoads--
	g.logf("%s removed a road", p.Name)
	return []Event{{Type: EventRoadRemoved, Player: playerID, Data: map[string]interface{}{
		"edge_id": e.ID,
	}}}, nil
}

func (g *Game) applyLockSetup(playerID string) ([]Event, error) {
	p, err := g.setupPlayer(playerID)
	if err != nil {
		return nil, err
	}
	if p.SetupSettlements < setupSettlementQuota || p.SetupRoads < setupRoadQuota {
		return nil, fmt.Errorf("%w: place %d settlements and %d roads first",
			ErrInvalidAction, setupSettlementQuota, setupRoadQuota)
	}
	p.SetupLocked = true
	g.logf("%s is ready", p.Name)
	events := []Event{{Type: EventSetupLocked, Player: playerID}}

	for _, other := range g.Players {
		if !other.SetupLocked {
			return events, nil
		}
	}
	return append(events, g.finishSetup()...), nil
}

func (g *Game) applyUnlockSetup(playerID string) ([]Event, error) {
	if g.Phase != PhaseSetup {
		return nil, ErrWrongPhase
	}
	p := g.GetPlayer(playerID)
	if !p.SetupLocked {
		return nil, fmt.Errorf("%w: setup is not locked", ErrInvalidAction)
	}
	p.SetupLocked = false
	g.logf("%s is editing their placements", p.Name)
	return []Event{{Type: EventSetupUnlocked, Player: playerID}}, nil
}

// finishSetup grants starting resources from each player's second
// settlement and hands the dice to the first seat.
func (g *Game) finishSetup() []Event {
	var events []Event
	for _, p := range g.Players {
		if len(p.SetupPlacements) < setupSettlementQuota {
			continue
		}
		var gained Hand
		for _, hid := range g.Board.VertexHexes(p.SetupPlacements[1]) {
			h, _ := g.Board.Hex(hid)
			if r, ok := h.Terrain.Produces(); ok {
				gained[r]++
			}
		}
		p.Resources.Add(gained)
		events = append(events, Event{Type: EventStartingHand, Player: p.ID, Data: map[string]interface{}{
			"resources": gained,
		}})
	}
	g.CurrentPlayerID = g.Players[0].ID
	g.HasRolledDice = false
	g.logf("setup complete, %s rolls first", g.Players[0].Name)
	return append(events, g.setPhase(PhaseRollDice)...)
}
