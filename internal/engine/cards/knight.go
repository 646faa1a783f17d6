package cards

import "settlers/internal/engine"

// Knight: move the robber and count towards the largest army. Playable
// before or after rolling and exempt from the one-card-per-turn limit.
type Knight struct{}

func (k Knight) Type() engine.DevCardType { return engine.Knight }

func (k Knight) Playable(g *engine.Game, playerID string) error {
	return g.RequireTurn(playerID, engine.PhaseRollDice, engine.PhaseMainTurn)
}

func (k Knight) Apply(g *engine.Game, playerID string) ([]engine.Event, error) {
	player := g.GetPlayer(playerID)
	if player == nil {
		return nil, engine.ErrPlayerNotFound
	}
	player.ArmySize++
	events := g.StartRobber()
	return append(events, g.UpdateLargestArmy()...), nil
}
