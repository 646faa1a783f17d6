package cards

import "settlers/internal/engine"

// Monopoly: name a resource and collect every card of it from the others.
type Monopoly struct{}

func (m Monopoly) Type() engine.DevCardType { return engine.Monopoly }

func (m Monopoly) Playable(g *engine.Game, playerID string) error {
	return afterRoll(g, playerID)
}

func (m Monopoly) Apply(g *engine.Game, playerID string) ([]engine.Event, error) {
	g.DevAction = &engine.MonopolyAction{PlayerID: playerID}
	return nil, nil
}
