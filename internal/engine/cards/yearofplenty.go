package cards

import "settlers/internal/engine"

// YearOfPlenty: take any two resources from the bank, one pick at a time.
type YearOfPlenty struct{}

func (y YearOfPlenty) Type() engine.DevCardType { return engine.YearOfPlenty }

func (y YearOfPlenty) Playable(g *engine.Game, playerID string) error {
	return afterRoll(g, playerID)
}

func (y YearOfPlenty) Apply(g *engine.Game, playerID string) ([]engine.Event, error) {
	g.DevAction = &engine.YearOfPlentyAction{PlayerID: playerID}
	return nil, nil
}
