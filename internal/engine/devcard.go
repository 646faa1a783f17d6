package engine

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	roadBuildingRoads = 2
	yearOfPlentyPicks = 2
	largestArmyMin    = 3
	largestArmyBonus  = 2
)

// devCardPool is the conceptual card mix. Draws are with replacement.
var devCardPool = []struct {
	typ   DevCardType
	count int
}{
	{Knight, 14},
	{RoadBuilding, 2},
	{YearOfPlenty, 2},
	{Monopoly, 2},
	{VictoryPoint, 5},
}

// DevAction is the sub-state opened by a road building, year of plenty or
// monopoly card. Exactly one may be open at a time.
type DevAction interface {
	Card() DevCardType
	Owner() string
}

type RoadBuildingAction struct {
	PlayerID string
	Built    int
}

type YearOfPlentyAction struct {
	PlayerID string
	Chosen   int
}

type MonopolyAction struct {
	PlayerID string
}

func (a *RoadBuildingAction) Card() DevCardType { return RoadBuilding }
func (a *RoadBuildingAction) Owner() string     { return a.PlayerID }
func (a *YearOfPlentyAction) Card() DevCardType { return YearOfPlenty }
func (a *YearOfPlentyAction) Owner() string     { return a.PlayerID }
func (a *MonopolyAction) Card() DevCardType     { return Monopoly }
func (a *MonopolyAction) Owner() string         { return a.PlayerID }

func (g *Game) drawDevCard() DevCardType {
	total := 0
	for _, e := range devCardPool {
		total += e.count
	}
	n := g.Config.Source.IntN(total)
	for _, e := range devCardPool {
		if n < e.count {
			return e.typ
		}
		n -= e.count
	}
	return Knight
}

func (g *Game) applyBuyDevCard(playerID string) ([]Event, error) {
	if err := g.requireTurn(playerID, PhaseMainTurn); err != nil {
		return nil, err
	}
	p := g.GetPlayer(playerID)
	if !p.Resources.Covers(CostDevCard) {
		return nil, ErrInsufficientResources
	}
	p.Resources.Sub(CostDevCard)
	card := DevCard{ID: uuid.NewString(), Type: g.drawDevCard(), IsNew: true}
	p.DevCards = append(p.DevCards, card)
	if card.Type == VictoryPoint {
		p.VictoryPoints++
		p.HiddenVictoryPoints++
	}
	g.animate("DEVELOPMENT", card.Type.String(), 1, playerID, "GAIN")
	g.logf("%s bought a development card", p.Name)
	return []Event{{Type: EventDevCardBought, Player: playerID, Data: map[string]interface{}{
		"card_id": card.ID,
	}}}, nil
}

func (g *Game) applyPlayDevCard(playerID string, action Action) ([]Event, error) {
	p := g.GetPlayer(playerID)
	card, ok := p.DevCard(action.CardID)
	if !ok {
		return nil, fmt.Errorf("%w: card %q", ErrNotFound, action.CardID)
	}
	if g.DevAction != nil {
		return nil, ErrDevActionPending
	}
	if card.IsNew {
		return nil, fmt.Errorf("%w: cards cannot be played the turn they are bought", ErrInvalidAction)
	}
	if g.Cards == nil {
		return nil, fmt.Errorf("%w: no card effects registered", ErrInvalidAction)
	}
	effect, err := g.Cards.Get(card.Type)
	if err != nil {
		return nil, err
	}
	if err := effect.Playable(g, playerID); err != nil {
		return nil, err
	}
	if card.Type != Knight && p.HasPlayedDevCard {
		return nil, fmt.Errorf("%w: only one development card per turn", ErrInvalidAction)
	}

	p.RemoveDevCard(card.ID)
	if card.Type != Knight {
		p.HasPlayedDevCard = true
	}
	g.animate("DEVELOPMENT", card.Type.String(), 1, playerID, "USE")
	g.logf("%s played %s", p.Name, card.Type)
	events := []Event{{Type: EventDevCardPlayed, Player: playerID, Data: map[string]interface{}{
		"card": card.Type.String(),
	}}}
	more, err := effect.Apply(g, playerID)
	if err != nil {
		return nil, err
	}
	return append(events, more...), nil
}

// RequireTurn checks that playerID is the current player and the game is in
// one of phases.
func (g *Game) RequireTurn(playerID string, phases ...GamePhase) error {
	return g.requireTurn(playerID, phases...)
}

// UpdateLargestArmy moves the award to a player whose army is at least
// three and strictly larger than the holder's. Ties stay with the holder.
func (g *Game) UpdateLargestArmy() []Event {
	holder := g.GetPlayer(g.LargestArmyID)
	for _, p := range g.Players {
		if p.ArmySize < largestArmyMin || p == holder {
			continue
		}
		if holder != nil && p.ArmySize <= holder.ArmySize {
			continue
		}
		if holder != nil {
			holder.VictoryPoints -= largestArmyBonus
		}
		p.VictoryPoints += largestArmyBonus
		prev := g.LargestArmyID
		g.LargestArmyID = p.ID
		g.logf("%s now holds the largest army", p.Name)
		return []Event{{Type: EventLargestArmy, Player: p.ID, Data: map[string]interface{}{
			"previous": prev, "army_size": p.ArmySize,
		}}}
	}
	return nil
}

func (g *Game) ownDevAction(playerID string, card DevCardType) (DevAction, error) {
	if g.DevAction == nil || g.DevAction.Card() != card {
		return nil, fmt.Errorf("%w: no %s action in progress", ErrInvalidAction, card)
	}
	if g.DevAction.Owner() != playerID {
		return nil, ErrNotYourTurn
	}
	return g.DevAction, nil
}

func (g *Game) applyChooseResource(playerID string, action Action) ([]Event, error) {
	a, err := g.ownDevAction(playerID, YearOfPlenty)
	if err != nil {
		return nil, err
	}
	if !action.Resource.Tradable() {
		return nil, fmt.Errorf("%w: pick one of the five resources", ErrInvalidAction)
	}
	yop := a.(*YearOfPlentyAction)
	p := g.GetPlayer(playerID)
	p.Resources[action.Resource]++
	yop.Chosen++
	g.animate("RESOURCE", action.Resource.String(), 1, playerID, "GAIN")
	g.logf("%s took %s from the bank", p.Name, action.Resource)

	events := []Event{{Type: EventResourceTaken, Player: playerID, Data: map[string]interface{}{
		"resource": action.Resource.String(), "count": 1,
	}}}
	if yop.Chosen >= yearOfPlentyPicks {
		g.DevAction = nil
		events = append(events, Event{Type: EventDevActionDone, Player: playerID, Data: map[string]interface{}{
			"card": YearOfPlenty.String(),
		}})
	}
	return events, nil
}

func (g *Game) applyChooseMonopoly(playerID string, action Action) ([]Event, error) {
	if _, err := g.ownDevAction(playerID, Monopoly); err != nil {
		return nil, err
	}
	r := action.Resource
	if !r.Tradable() {
		return nil, fmt.Errorf("%w: pick one of the five resources", ErrInvalidAction)
	}
	p := g.GetPlayer(playerID)
	taken := 0
	for _, other := range g.Players {
		if other.ID == playerID {
			continue
		}
		taken += other.Resources[r]
		other.Resources[r] = 0
	}
	p.Resources[r] += taken
	g.DevAction = nil
	g.animate("RESOURCE", r.String(), taken, playerID, "GAIN")
	g.logf("%s claimed every %s (%d)", p.Name, r, taken)
	return []Event{{Type: EventDevActionDone, Player: playerID, Data: map[string]interface{}{
		"card": Monopoly.String(), "resource": r.String(), "count": taken,
	}}}, nil
}

func (g *Game) applyCancelDevAction(playerID string) ([]Event, error) {
	if g.DevAction == nil {
		return nil, fmt.Errorf("%w: no development card action in progress", ErrInvalidAction)
	}
	if g.DevAction.Owner() != playerID {
		return nil, ErrNotYourTurn
	}
	card := g.DevAction.Card()
	g.DevAction = nil
	g.logf("%s cancelled %s", g.GetPlayer(playerID).Name, card)
	return []Event{{Type: EventDevActionDone, Player: playerID, Data: map[string]interface{}{
		"card": card.String(), "cancelled": true,
	}}}, nil
}
