// Package cards holds the effects of playable development cards.
package cards

import (
	"fmt"

	"settlers/internal/engine"
)

// NewRegistry registers every playable card. Victory point cards have no
// effect and stay unregistered.
func NewRegistry() *engine.CardRegistry {
	r := engine.NewCardRegistry()
	r.Register(Knight{})
	r.Register(RoadBuilding{})
	r.Register(YearOfPlenty{})
	r.Register(Monopoly{})
	return r
}

func afterRoll(g *engine.Game, playerID string) error {
	if err := g.RequireTurn(playerID, engine.PhaseMainTurn); err != nil {
		return err
	}
	if !g.HasRolledDice {
		return fmt.Errorf("%w: roll the dice first", engine.ErrInvalidAction)
	}
	return nil
}
