package engine

import (
	"encoding/json"
	"fmt"
)

// Resource is a kind of card held in a player's hand.
type Resource int

const (
	Wood Resource = iota
	Brick
	Sheep
	Wheat
	Ore
	// DesertResource is the non-producing placeholder kind. It never enters
	// a hand through production but keeps the hand shape uniform.
	DesertResource

	numResources
)

var resourceNames = map[Resource]string{
	Wood:           "WOOD",
	Brick:          "BRICK",
	Sheep:          "SHEEP",
	Wheat:          "WHEAT",
	Ore:            "ORE",
	DesertResource: "DESERT",
}

func (r Resource) String() string {
	if s, ok := resourceNames[r]; ok {
		return s
	}
	return "UNKNOWN"
}

// Tradable reports whether r is one of the five real resources.
func (r Resource) Tradable() bool {
	return r >= Wood && r <= Ore
}

func (r Resource) MarshalText() ([]byte, error) {
	s, ok := resourceNames[r]
	if !ok {
		return nil, fmt.Errorf("unknown resource %d", int(r))
	}
	return []byte(s), nil
}

func (r *Resource) UnmarshalText(b []byte) error {
	v, err := ParseResource(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ParseResource maps a wire name back to a Resource.
func ParseResource(s string) (Resource, error) {
	for r, name := range resourceNames {
		if name == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown resource %q", ErrInvalidPayload, s)
}

// TradableResources lists the five kinds that can be produced and traded.
func TradableResources() []Resource {
	return []Resource{Wood, Brick, Sheep, Wheat, Ore}
}

// Terrain is the land type of a hex.
type Terrain int

const (
	Forest Terrain = iota
	Hills
	Pasture
	Fields
	Mountains
	Desert
)

var terrainNames = map[Terrain]string{
	Forest:    "FOREST",
	Hills:     "HILLS",
	Pasture:   "PASTURE",
	Fields:    "FIELDS",
	Mountains: "MOUNTAINS",
	Desert:    "DESERT",
}

func (t Terrain) String() string {
	if s, ok := terrainNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

func (t Terrain) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Terrain) UnmarshalText(b []byte) error {
	for k, name := range terrainNames {
		if name == string(b) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown terrain %q", string(b))
}

// Produces returns the resource a terrain yields; desert yields nothing.
func (t Terrain) Produces() (Resource, bool) {
	switch t {
	case Forest:
		return Wood, true
	case Hills:
		return Brick, true
	case Pasture:
		return Sheep, true
	case Fields:
		return Wheat, true
	case Mountains:
		return Ore, true
	}
	return DesertResource, false
}

// Hand counts cards per resource kind.
type Hand [numResources]int

var (
	CostRoad       = Hand{Wood: 1, Brick: 1}
	CostSettlement = Hand{Wood: 1, Brick: 1, Sheep: 1, Wheat: 1}
	CostCity       = Hand{Wheat: 2, Ore: 3}
	CostDevCard    = Hand{Sheep: 1, Wheat: 1, Ore: 1}
)

// Total is the number of cards in the hand.
func (h Hand) Total() int {
	n := 0
	for _, c := range h {
		n += c
	}
	return n
}

// Covers reports whether h holds at least the amounts in need.
func (h Hand) Covers(need Hand) bool {
	for r, c := range need {
		if h[r] < c {
			return false
		}
	}
	return true
}

// Valid reports whether no count is negative.
func (h Hand) Valid() bool {
	for _, c := range h {
		if c < 0 {
			return false
		}
	}
	return true
}

func (h *Hand) Add(o Hand) {
	for r, c := range o {
		h[r] += c
	}
}

func (h *Hand) Sub(o Hand) {
	for r, c := range o {
		h[r] -= c
	}
}

// NonZero lists the kinds held in positive quantity, in enum order.
func (h Hand) NonZero() []Resource {
	var out []Resource
	for r, c := range h {
		if c > 0 {
			out = append(out, Resource(r))
		}
	}
	return out
}

func (h Hand) MarshalJSON() ([]byte, error) {
	m := make(map[Resource]int, numResources)
	for r, c := range h {
		m[Resource(r)] = c
	}
	return json.Marshal(m)
}

func (h *Hand) UnmarshalJSON(b []byte) error {
	var m map[Resource]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*h = Hand{}
	for r, c := range m {
		h[r] = c
	}
	return nil
}
