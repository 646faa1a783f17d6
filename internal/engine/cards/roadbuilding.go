package cards

import "settlers/internal/engine"

// RoadBuilding: the next two roads are free.
type RoadBuilding struct{}

func (r RoadBuilding) Type() engine.DevCardType { return engine.RoadBuilding }

func (r RoadBuilding) Playable(g *engine.Game, playerID string) error {
	return afterRoll(g, playerID)
}

func (r RoadBuilding) Apply(g *engine.Game, playerID string) ([]engine.Event, error) {
	g.DevAction = &engine.RoadBuildingAction{PlayerID: playerID}
	return nil, nil
}
