package engine

import "fmt"

// DevCardType is one of the five development card kinds.
type DevCardType int

const (
	Knight DevCardType = iota
	RoadBuilding
	YearOfPlenty
	Monopoly
	VictoryPoint
)

var devCardNames = map[DevCardType]string{
	Knight:       "KNIGHT",
	RoadBuilding: "ROAD_BUILDING",
	YearOfPlenty: "YEAR_OF_PLENTY",
	Monopoly:     "MONOPOLY",
	VictoryPoint: "VICTORY_POINT",
}

func (t DevCardType) String() string {
	if s, ok := devCardNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

func (t DevCardType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *DevCardType) UnmarshalText(b []byte) error {
	for k, name := range devCardNames {
		if name == string(b) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown development card %q", string(b))
}

type DevCard struct {
	ID    string      `json:"id"`
	Type  DevCardType `json:"type"`
	IsNew bool        `json:"is_new"`
}

// Player holds one player's state.
type Player struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Color               string    `json:"color"`
	Resources           Hand      `json:"resources"`
	VictoryPoints       int       `json:"victory_points"` // includes hidden points
	HiddenVictoryPoints int       `json:"hidden_victory_points"`
	ArmySize            int       `json:"army_size"`
	DevCards            []DevCard `json:"dev_cards"`
	HasPlayedDevCard    bool      `json:"has_played_dev_card"`

	// Setup bookkeeping
	SetupSettlements int      `json:"setup_settlements"`
	SetupRoads       int      `json:"setup_roads"`
	SetupLocked      bool     `json:"setup_locked"`
	SetupPlacements  []string `json:"setup_placements"` // settlement vertices in placement order
}

func NewPlayer(id, name, color string) *Player {
	return &Player{
		ID:    id,
		Name:  name,
		Color: color,
	}
}

// DevCard returns the card with the given id.
func (p *Player) DevCard(id string) (DevCard, bool) {
	for _, c := range p.DevCards {
		if c.ID == id {
			return c, true
		}
	}
	return DevCard{}, false
}

// RemoveDevCard removes the card with the given id from hand.
func (p *Player) RemoveDevCard(id string) (DevCard, bool) {
	for i, c := range p.DevCards {
		if c.ID == id {
			p.DevCards = append(p.DevCards[:i], p.DevCards[i+1:]...)
			return c, true
		}
	}
	return DevCard{}, false
}

func (p *Player) forgetPlacement(vertexID string) {
	for i, v := range p.SetupPlacements {
		if v == vertexID {
			p.SetupPlacements = append(p.SetupPlacements[:i], p.SetupPlacements[i+1:]...)
			return
		}
	}
}

func (p *Player) clone() *Player {
	c := *p
	c.DevCards = append([]DevCard(nil), p.DevCards...)
	c.SetupPlacements = append([]string(nil), p.SetupPlacements...)
	return &c
}
