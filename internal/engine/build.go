package engine

import "fmt"

const (
	setupSettlementQuota = 2
	setupRoadQuota       = 2
)

func (g *Game) lookupEdge(id string) (*Edge, error) {
	e, ok := g.Board.Edge(id)
	if !ok {
		return nil, fmt.Errorf("%w: edge %q", ErrNotFound, id)
	}
	return e, nil
}

func (g *Game) lookupVertex(id string) (*Vertex, error) {
	v, ok := g.Board.Vertex(id)
	if !ok {
		return nil, fmt.Errorf("%w: vertex %q", ErrNotFound, id)
	}
	return v, nil
}

// roadConnects reports whether one endpoint of e touches the player's
// building or another of the player's roads.
func (g *Game) roadConnects(playerID string, e *Edge) bool {
	for _, vid := range e.VertexIDs {
		v, _ := g.Board.Vertex(vid)
		if v.Building != nil && v.Building.OwnerID == playerID {
			return true
		}
		for _, eid := range g.Board.VertexEdges(vid) {
			if eid == e.ID {
				continue
			}
			other, _ := g.Board.Edge(eid)
			if other.Road != nil && other.Road.OwnerID == playerID {
				return true
			}
		}
	}
	return false
}

// settlementSpacing enforces the distance rule: no building on v or on any
// vertex one edge away.
func (g *Game) settlementSpacing(v *Vertex) error {
	if v.Building != nil {
		return fmt.Errorf("%w: vertex already has a building", ErrOccupied)
	}
	for _, n := range g.Board.NeighborVertices(v.ID) {
		if g.Board.HasBuilding(n) {
			return fmt.Errorf("%w: too close to another building", ErrInvalidAction)
		}
	}
	return nil
}

func (g *Game) touchesOwnRoad(playerID, vertexID string) bool {
	for _, eid := range g.Board.VertexEdges(vertexID) {
		e, _ := g.Board.Edge(eid)
		if e.Road != nil && e.Road.OwnerID == playerID {
			return true
		}
	}
	return false
}

func (g *Game) applyBuildRoad(playerID string, action Action) ([]Event, error) {
	e, err := g.lookupEdge(action.EdgeID)
	if err != nil {
		return nil, err
	}
	p := g.GetPlayer(playerID)

	free := false
	var rb *RoadBuildingAction
	switch {
	case g.Phase == PhaseSetup:
		if p.SetupLocked {
			return nil, fmt.Errorf("%w: setup is locked", ErrInvalidAction)
		}
		if p.SetupRoads >= setupRoadQuota {
			return nil, fmt.Errorf("%w: setup allows %d roads", ErrInvalidAction, setupRoadQuota)
		}
		free = true
	default:
		if err := g.requireTurn(playerID, PhaseMainTurn); err != nil {
			return nil, err
		}
		if a, ok := g.DevAction.(*RoadBuildingAction); ok && a.PlayerID == playerID {
			rb = a
			free = true
		}
	}

	if e.Road != nil {
		return nil, fmt.Errorf("%w: edge already has a road", ErrOccupied)
	}
	if !g.roadConnects(playerID, e) {
		return nil, fmt.Errorf("%w: road must connect to your building or road", ErrInvalidAction)
	}
	if !free && !p.Resources.Covers(CostRoad) {
		return nil, ErrInsufficientResources
	}

	if !free {
		p.Resources.Sub(CostRoad)
	}
	e.Road = &Road{OwnerID: playerID}
	events := []Event{{Type: EventRoadBuilt, Player: playerID, Data: map[string]interface{}{
		"edge_id": e.ID,
	}}}
	g.logf("%s built a road", p.Name)

	switch {
	case g.Phase == PhaseSetup:
		p.SetupRoads++
	case rb != nil:
		rb.Built++
		if rb.Built >= roadBuildingRoads {
			g.DevAction = nil
			events = append(events, Event{Type: EventDevActionDone, Player: playerID, Data: map[string]interface{}{
				"card": RoadBuilding.String(),
			}})
		}
	}
	return events, nil
}

func (g *Game) applyBuildSettlement(playerID string, action Action) ([]Event, error) {
	v, err := g.lookupVertex(action.VertexID)
	if err != nil {
		return nil, err
	}
	p := g.GetPlayer(playerID)

	setup := g.Phase == PhaseSetup
	if setup {
		if p.SetupLocked {
			return nil, fmt.Errorf("%w: setup is locked", ErrInvalidAction)
		}
		if p.SetupSettlements >= setupSettlementQuota {
			return nil, fmt.Errorf("%w: setup allows %d settlements", ErrInvalidAction, setupSettlementQuota)
		}
	} else if err := g.requireTurn(playerID, PhaseMainTurn); err != nil {
		return nil, err
	}

	if err := g.settlementSpacing(v); err != nil {
		return nil, err
	}
	if !setup {
		if !g.touchesOwnRoad(playerID, v.ID) {
			return nil, fmt.Errorf("%w: settlement must touch your road", ErrInvalidAction)
		}
		if !p.Resources.Covers(CostSettlement) {
			return nil, ErrInsufficientResources
		}
		p.Resources.Sub(CostSettlement)
	}

	v.Building = &Building{Kind: Settlement, OwnerID: playerID}
	p.VictoryPoints++
	if setup {
		p.SetupSettlements++
		p.SetupPlacements = append(p.SetupPlacements, v.ID)
	}
	g.logf("%s built a settlement", p.Name)
	return []Event{{Type: EventSettlementBuilt, Player: playerID, Data: map[string]interface{}{
		"vertex_id": v.ID,
	}}}, nil
}

func (g *Game) applyUpgradeCity(playerID string, action Action) ([]Event, error) {
	v, err := g.lookupVertex(action.VertexID)
	if err != nil {
		return nil, err
	}
	if err := g.requireTurn(playerID, PhaseMainTurn); err != nil {
		return nil, err
	}
	if v.Building == nil || v.Building.OwnerID != playerID || v.Building.Kind != Settlement {
		return nil, fmt.Errorf("%w: only your own settlement can be upgraded", ErrInvalidAction)
	}
	p := g.GetPlayer(playerID)
	if !p.Resources.Covers(CostCity) {
		return nil, ErrInsufficientResources
	}
	p.Resources.Sub(CostCity)
	v.Building.Kind = City
	p.VictoryPoints++
	g.logf("%s upgraded a settlement to a city", p.Name)
	return []Event{{Type: EventCityBuilt, Player: playerID, Data: map[string]interface{}{
		"vertex_id": v.ID,
	}}}, nil
}
