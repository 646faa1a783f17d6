package engine

// Snapshot is a self-contained copy of the whole game, safe to hand to
// other goroutines and to serialise for every participant.
type Snapshot struct {
	ID              string         `json:"id"`
	TerrainSeed     string         `json:"terrain_seed"`
	TokenSeed       string         `json:"token_seed"`
	PortCount       int            `json:"port_count"`
	Board           *Board         `json:"board"`
	Players         []*Player      `json:"players"`
	CurrentPlayerID string         `json:"current_player_id"`
	Phase           GamePhase      `json:"phase"`
	Dice            [2]int         `json:"dice"`
	HasRolledDice   bool           `json:"has_rolled_dice"`
	Log             []string       `json:"log"`
	DebugMode       bool           `json:"debug_mode"`
	PendingDiscards []string       `json:"pending_discards,omitempty"`
	StealCandidates []string       `json:"steal_candidates,omitempty"`
	TradeOffer      *TradeOffer    `json:"trade_offer,omitempty"`
	DevAction       *DevActionView `json:"dev_action,omitempty"`
	LargestArmyID   string         `json:"largest_army_id,omitempty"`
	CardAnimation   *CardAnimation `json:"card_animation,omitempty"`
	WinnerID        string         `json:"winner_id,omitempty"`
}

// DevActionView flattens the open development card sub-state.
type DevActionView struct {
	Type     DevCardType `json:"type"`
	PlayerID string      `json:"player_id"`
	Built    int         `json:"built,omitempty"`
	Chosen   int         `json:"chosen,omitempty"`
}

func viewDevAction(a DevAction) *DevActionView {
	switch a := a.(type) {
	case *RoadBuildingAction:
		return &DevActionView{Type: RoadBuilding, PlayerID: a.PlayerID, Built: a.Built}
	case *YearOfPlentyAction:
		return &DevActionView{Type: YearOfPlenty, PlayerID: a.PlayerID, Chosen: a.Chosen}
	case *MonopolyAction:
		return &DevActionView{Type: Monopoly, PlayerID: a.PlayerID}
	}
	return nil
}

// Snapshot deep-copies the game state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		ID:              g.ID,
		TerrainSeed:     g.TerrainSeed,
		TokenSeed:       g.TokenSeed,
		PortCount:       g.PortCount,
		Board:           g.Board.Clone(),
		Players:         make([]*Player, len(g.Players)),
		CurrentPlayerID: g.CurrentPlayerID,
		Phase:           g.Phase,
		Dice:            g.Dice,
		HasRolledDice:   g.HasRolledDice,
		Log:             append([]string(nil), g.Log...),
		DebugMode:       g.DebugMode,
		PendingDiscards: append([]string(nil), g.PendingDiscards...),
		StealCandidates: append([]string(nil), g.StealCandidates...),
		DevAction:       viewDevAction(g.DevAction),
		LargestArmyID:   g.LargestArmyID,
		WinnerID:        g.WinnerID,
	}
	for i, p := range g.Players {
		s.Players[i] = p.clone()
	}
	if g.TradeOffer != nil {
		t := *g.TradeOffer
		s.TradeOffer = &t
	}
	if g.CardAnimation != nil {
		a := *g.CardAnimation
		s.CardAnimation = &a
	}
	return s
}
