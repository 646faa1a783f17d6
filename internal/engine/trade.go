package engine

import "fmt"

const (
	bankRate     = 4
	wildcardRate = 3
	specificRate = 2
)

// TradeOffer is the single outstanding peer offer.
type TradeOffer struct {
	FromPlayerID string `json:"from_player_id"`
	ToPlayerID   string `json:"to_player_id"`
	Offer        Hand   `json:"offer"`
	Request      Hand   `json:"request"`
}

// TradeRates returns the bank rate per tradable resource for a player,
// computed from the ports their buildings touch.
func (g *Game) TradeRates(playerID string) map[Resource]int {
	rates := make(map[Resource]int, 5)
	for _, r := range TradableResources() {
		rates[r] = bankRate
	}
	for _, v := range g.Board.Vertices {
		if v.PortID == "" || v.Building == nil || v.Building.OwnerID != playerID {
			continue
		}
		port, ok := g.Board.Port(v.PortID)
		if !ok {
			continue
		}
		if port.Wildcard {
			for r, rate := range rates {
				rates[r] = min(rate, wildcardRate)
			}
		} else {
			rates[port.Resource] = specificRate
		}
	}
	return rates
}

// BankTradeYield is how many units of the requested kind the bank pays for
// give. Each offered card is worth 1/rate of a unit and the total is floored,
// so without ports this is total/4.
func (g *Game) BankTradeYield(playerID string, give Hand) int {
	rates := g.TradeRates(playerID)
	// 12 is divisible by every rate, keeping the sum integral.
	points := 0
	for _, r := range TradableResources() {
		points += give[r] * (12 / rates[r])
	}
	return points / 12
}

func (g *Game) applyTradeBank(playerID string, action Action) ([]Event, error) {
	if err := g.requireTurn(playerID, PhaseMainTurn); err != nil {
		return nil, err
	}
	want := action.Resource
	if !want.Tradable() {
		return nil, fmt.Errorf("%w: pick one of the five resources", ErrInvalidAction)
	}
	give := action.Give
	if !give.Valid() || give[DesertResource] != 0 {
		return nil, fmt.Errorf("%w: bad offer", ErrInvalidPayload)
	}
	if give[want] != 0 {
		return nil, fmt.Errorf("%w: cannot trade %s for itself", ErrInvalidAction, want)
	}
	p := g.GetPlayer(playerID)
	if !p.Resources.Covers(give) {
		return nil, ErrInsufficientResources
	}
	units := g.BankTradeYield(playerID, give)
	if units < 1 {
		return nil, fmt.Errorf("%w: offer does not cover the bank rate", ErrInvalidAction)
	}

	p.Resources.Sub(give)
	p.Resources[want] += units
	g.animate("RESOURCE", want.String(), units, playerID, "GAIN")
	g.logf("%s traded %d cards with the bank for %d %s", p.Name, give.Total(), units, want)
	return []Event{{Type: EventBankTrade, Player: playerID, Data: map[string]interface{}{
		"gave": give, "received": want.String(), "count": units,
	}}}, nil
}

func (g *Game) applyProposeTrade(playerID string, action Action) ([]Event, error) {
	if err := g.requireTurn(playerID, PhaseMainTurn); err != nil {
		return nil, err
	}
	if g.TradeOffer != nil {
		return nil, ErrTradePending
	}
	if action.TargetID == playerID {
		return nil, fmt.Errorf("%w: cannot trade with yourself", ErrInvalidAction)
	}
	to := g.GetPlayer(action.TargetID)
	if to == nil {
		return nil, ErrPlayerNotFound
	}
	if !action.Give.Valid() || !action.Want.Valid() {
		return nil, fmt.Errorf("%w: negative amounts", ErrInvalidPayload)
	}
	if action.Give.Total() == 0 && action.Want.Total() == 0 {
		return nil, fmt.Errorf("%w: empty offer", ErrInvalidAction)
	}
	p := g.GetPlayer(playerID)
	if !p.Resources.Covers(action.Give) {
		return nil, ErrInsufficientResources
	}
	g.TradeOffer = &TradeOffer{
		FromPlayerID: playerID,
		ToPlayerID:   to.ID,
		Offer:        action.Give,
		Request:      action.Want,
	}
	g.logf("%s offered a trade to %s", p.Name, to.Name)
	return []Event{{Type: EventTradeProposed, Player: playerID, Data: map[string]interface{}{
		"to": to.ID, "offer": action.Give, "request": action.Want,
	}}}, nil
}

// applyAcceptTrade settles the offer. When either side no longer holds its
// part the offer is voided: the events describing that are returned together
// with the error.
func (g *Game) applyAcceptTrade(playerID string) ([]Event, error) {
	if g.Phase != PhaseMainTurn {
		return nil, ErrWrongPhase
	}
	offer := g.TradeOffer
	if offer == nil {
		return nil, ErrNoTrade
	}
	if offer.ToPlayerID != playerID {
		return nil, fmt.Errorf("%w: the offer is not addressed to you", ErrInvalidAction)
	}
	from := g.GetPlayer(offer.FromPlayerID)
	to := g.GetPlayer(offer.ToPlayerID)
	if !from.Resources.Covers(offer.Offer) || !to.Resources.Covers(offer.Request) {
		g.TradeOffer = nil
		g.logf("trade between %s and %s fell through", from.Name, to.Name)
		return []Event{{Type: EventTradeVoided, Player: playerID}}, ErrInsufficientResources
	}

	from.Resources.Sub(offer.Offer)
	to.Resources.Add(offer.Offer)
	to.Resources.Sub(offer.Request)
	from.Resources.Add(offer.Request)
	g.TradeOffer = nil
	g.logf("%s accepted the trade from %s", to.Name, from.Name)
	return []Event{{Type: EventTradeAccepted, Player: playerID, Data: map[string]interface{}{
		"from": from.ID, "offer": offer.Offer, "request": offer.Request,
	}}}, nil
}

func (g *Game) applyRejectTrade(playerID string) ([]Event, error) {
	offer := g.TradeOffer
	if offer == nil {
		return nil, ErrNoTrade
	}
	if offer.ToPlayerID != playerID {
		return nil, fmt.Errorf("%w: the offer is not addressed to you", ErrInvalidAction)
	}
	g.TradeOffer = nil
	g.logf("%s rejected the trade", g.GetPlayer(playerID).Name)
	return []Event{{Type: EventTradeRejected, Player: playerID, Data: map[string]interface{}{
		"from": offer.FromPlayerID,
	}}}, nil
}

func (g *Game) applyCancelTrade(playerID string) ([]Event, error) {
	offer := g.TradeOffer
	if offer == nil {
		return nil, ErrNoTrade
	}
	if offer.FromPlayerID != playerID {
		return nil, fmt.Errorf("%w: only the proposer can cancel", ErrInvalidAction)
	}
	g.TradeOffer = nil
	g.logf("%s withdrew their trade offer", g.GetPlayer(playerID).Name)
	return []Event{{Type: EventTradeCancelled, Player: playerID}}, nil
}
