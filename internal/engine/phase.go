package engine

import "fmt"

// GamePhase represents the current phase of the game state machine.
type GamePhase int

const (
	PhaseMapBuilding     GamePhase = iota // map may be regenerated
	PhaseSetup                            // free initial placements, simultaneous
	PhaseRollDice                         // current player must roll
	PhaseMainTurn                         // build, trade, play cards
	PhaseDiscard                          // players over seven cards discard half
	PhaseRobberPlacement                  // current player moves the robber
	PhaseRobberSteal                      // current player picks a victim
	PhaseGameOver                         // terminal
)

var phaseNames = map[GamePhase]string{
	PhaseMapBuilding:     "MAP_BUILDING",
	PhaseSetup:           "SETUP",
	PhaseRollDice:        "ROLL_DICE",
	PhaseMainTurn:        "MAIN_TURN",
	PhaseDiscard:         "DISCARD_RESOURCES",
	PhaseRobberPlacement: "ROBBER_PLACEMENT",
	PhaseRobberSteal:     "ROBBER_STEAL",
	PhaseGameOver:        "GAME_OVER",
}

func (p GamePhase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "UNKNOWN"
}

func (p GamePhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *GamePhase) UnmarshalText(b []byte) error {
	for k, name := range phaseNames {
		if name == string(b) {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", string(b))
}
