package engine_test

import (
	"errors"
	"testing"
	"time"

	"settlers/internal/engine"
	"settlers/internal/engine/cards"
)

// scriptedSource replays fixed values, wrapping each into [0,n).
type scriptedSource struct {
	vals []int
}

func (s *scriptedSource) IntN(n int) int {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[0]
	s.vals = s.vals[1:]
	return v % n
}

func script(g *engine.Game, vals ...int) {
	g.Config.Source.(*scriptedSource).vals = append(g.Config.Source.(*scriptedSource).vals, vals...)
}

func newTestGame(n int) *engine.Game {
	cfg := engine.DefaultConfig()
	cfg.TerrainSeed = "terrain-1"
	cfg.TokenSeed = "token-1"
	cfg.Source = &scriptedSource{}
	cfg.Clock = func() time.Time { return time.UnixMilli(1700000000000) }
	g := engine.NewGame("test", cfg, cards.NewRegistry())
	for i := 0; i < n; i++ {
		if _, _, err := g.AddPlayer(string(rune('A'+i)), "Player"+string(rune('1'+i)), ""); err != nil {
			panic(err)
		}
	}
	return g
}

func mustApply(t *testing.T, g *engine.Game, playerID string, a engine.Action) []engine.Event {
	t.Helper()
	events, err := g.Apply(playerID, a)
	if err != nil {
		t.Fatalf("%s by %s: unexpected error: %v", a.Type, playerID, err)
	}
	return events
}

// freeVertex returns a port-free vertex that satisfies the distance rule.
func freeVertex(t *testing.T, g *engine.Game, skip ...string) *engine.Vertex {
	t.Helper()
	skipped := make(map[string]bool)
	for _, s := range skip {
		skipped[s] = true
	}
outer:
	for _, v := range g.Board.Vertices {
		if v.Building != nil || v.PortID != "" || skipped[v.ID] {
			continue
		}
		for _, n := range g.Board.NeighborVertices(v.ID) {
			if g.Board.HasBuilding(n) {
				continue outer
			}
		}
		return v
	}
	t.Fatal("no free vertex left")
	return nil
}

func placeSetup(t *testing.T, g *engine.Game, playerID string) {
	t.Helper()
	for i := 0; i < 2; i++ {
		v := freeVertex(t, g)
		mustApply(t, g, playerID, engine.Action{Type: engine.ActionBuildSettlement, VertexID: v.ID})
		mustApply(t, g, playerID, engine.Action{Type: engine.ActionBuildRoad, EdgeID: g.Board.VertexEdges(v.ID)[0]})
	}
}

// startedGame plays through setup and a first roll of 2, leaving player A
// in MAIN_TURN with empty hands all round.
func startedGame(t *testing.T, n int) *engine.Game {
	t.Helper()
	g := newTestGame(n)
	mustApply(t, g, "A", engine.Action{Type: engine.ActionConfirmMap})
	for _, p := range g.Players {
		placeSetup(t, g, p.ID)
	}
	for _, p := range g.Players {
		mustApply(t, g, p.ID, engine.Action{Type: engine.ActionLockSetup})
	}
	if g.Phase != engine.PhaseRollDice {
		t.Fatalf("expected ROLL_DICE after setup, got %s", g.Phase)
	}
	script(g, 0, 0)
	mustApply(t, g, "A", engine.Action{Type: engine.ActionRollDice})
	for _, p := range g.Players {
		p.Resources = engine.Hand{}
	}
	return g
}

func TestNewGame(t *testing.T) {
	g := newTestGame(3)
	if g.Phase != engine.PhaseMapBuilding {
		t.Fatalf("expected MAP_BUILDING, got %s", g.Phase)
	}
	if g.CurrentPlayerID != "A" {
		t.Errorf("first joiner should be current player, got %q", g.CurrentPlayerID)
	}
	want := []string{"#ef4444", "#3b82f6", "#22c55e"}
	for i, p := range g.Players {
		if p.Color != want[i] {
			t.Errorf("player %s color = %s, want %s", p.ID, p.Color, want[i])
		}
	}
}

func TestAddPlayerLimits(t *testing.T) {
	g := newTestGame(4)
	if _, _, err := g.AddPlayer("E", "Eve", ""); !errors.Is(err, engine.ErrGameFull) {
		t.Fatalf("fifth player: expected ErrGameFull, got %v", err)
	}
	p, _, err := g.AddPlayer("B", "Renamed", "")
	if err != nil || p.Name != "Renamed" {
		t.Fatalf("rejoin should return existing seat, got %v %v", p, err)
	}
	if len(g.Players) != 4 {
		t.Fatalf("rejoin must not add a seat, have %d", len(g.Players))
	}
}

func TestRemovePlayerFreesColor(t *testing.T) {
	g := newTestGame(2)
	if _, err := g.RemovePlayer("A"); err != nil {
		t.Fatal(err)
	}
	if g.CurrentPlayerID != "B" {
		t.Errorf("current player should move to B, got %q", g.CurrentPlayerID)
	}
	p, _, err := g.AddPlayer("C", "Carol", "")
	if err != nil {
		t.Fatal(err)
	}
	if p.Color != "#ef4444" {
		t.Errorf("freed color should be reused, got %s", p.Color)
	}

	mustApply(t, g, "B", engine.Action{Type: engine.ActionConfirmMap})
	if _, err := g.RemovePlayer("B"); !errors.Is(err, engine.ErrWrongPhase) {
		t.Errorf("expected ErrWrongPhase after map confirmation, got %v", err)
	}
}

func TestRegenerateOnlyBeforeSetup(t *testing.T) {
	g := newTestGame(1)
	ports := 6
	mustApply(t, g, "A", engine.Action{
		Type: engine.ActionRegenerateMap, TerrainSeed: "t2", TokenSeed: "k2", PortCount: &ports,
	})
	if g.TerrainSeed != "t2" || g.TokenSeed != "k2" || g.PortCount != 6 {
		t.Fatalf("seeds not applied: %s %s %d", g.TerrainSeed, g.TokenSeed, g.PortCount)
	}
	if len(g.Board.Ports) > 6 {
		t.Errorf("placed %d ports, requested 6", len(g.Board.Ports))
	}

	mustApply(t, g, "A", engine.Action{Type: engine.ActionRegenerateMap})
	if g.TerrainSeed != "terrain-1700000000000" || g.TokenSeed != "token-1700000000000" {
		t.Errorf("default seeds = %s / %s", g.TerrainSeed, g.TokenSeed)
	}

	mustApply(t, g, "A", engine.Action{Type: engine.ActionConfirmMap})
	if _, err := g.Apply("A", engine.Action{Type: engine.ActionRegenerateTokens}); !errors.Is(err, engine.ErrWrongPhase) {
		t.Errorf("expected ErrWrongPhase, got %v", err)
	}
}

func TestSetupStartingResourcesFromSecondPlacement(t *testing.T) {
	g := newTestGame(2)
	mustApply(t, g, "A", engine.Action{Type: engine.ActionConfirmMap})

	produce := map[engine.Terrain]engine.Resource{
		engine.Forest: engine.Wood, engine.Hills: engine.Brick, engine.Pasture: engine.Sheep,
		engine.Fields: engine.Wheat, engine.Mountains: engine.Ore,
	}
	yield := func(vertexID string) engine.Hand {
		var h engine.Hand
		for _, hex := range g.Board.Hexes {
			for _, vid := range g.Board.HexVertices(hex.ID) {
				if vid == vertexID {
					if r, ok := produce[hex.Terrain]; ok {
						h[r]++
					}
				}
			}
		}
		return h
	}

	// Pick a second settlement that yields something the first does not.
	first := freeVertex(t, g)
	mustApply(t, g, "A", engine.Action{Type: engine.ActionBuildSettlement, VertexID: first.ID})
	var second *engine.Vertex
	for _, v := range g.Board.Vertices {
		if v.Building != nil || v.PortID != "" || yield(v.ID) == yield(first.ID) || yield(v.ID).Total() == 0 {
			continue
		}
		if _, err := g.Apply("A", engine.Action{Type: engine.ActionBuildSettlement, VertexID: v.ID}); err == nil {
			second = v
			break
		}
	}
	if second == nil {
		t.Fatal("no suitable second vertex")
	}
	mustApply(t, g, "A", engine.Action{Type: engine.ActionBuildRoad, EdgeID: g.Board.VertexEdges(first.ID)[0]})
	mustApply(t, g, "A", engine.Action{Type: engine.ActionBuildRoad, EdgeID: g.Board.VertexEdges(second.ID)[0]})
	placeSetup(t, g, "B")

	a := g.GetPlayer("A")
	if a.VictoryPoints != 2 {
		t.Errorf("two settlements should give 2 VP, got %d", a.VictoryPoints)
	}
	mustApply(t, g, "A", engine.Action{Type: engine.ActionLockSetup})
	if g.Phase != engine.PhaseSetup {
		t.Fatalf("setup must wait for every player, got %s", g.Phase)
	}
	mustApply(t, g, "B", engine.Action{Type: engine.ActionLockSetup})

	if g.Phase != engine.PhaseRollDice {
		t.Fatalf("expected ROLL_DICE, got %s", g.Phase)
	}
	if a.Resources != yield(second.ID) {
		t.Errorf("starting hand = %v, want %v from the second settlement", a.Resources, yield(second.ID))
	}
}

func TestSetupRemoveAndLock(t *testing.T) {
	g := newTestGame(1)
	mustApply(t, g, "A", engine.Action{Type: engine.ActionConfirmMap})
	v := freeVertex(t, g)
	mustApply(t, g, "A", engine.Action{Type: engine.ActionBuildSettlement, VertexID: v.ID})
	mustApply(t, g, "A", engine.Action{Type: engine.ActionRemoveBuilding, VertexID: v.ID})

	a := g.GetPlayer("A")
	if a.VictoryPoints != 0 || a.SetupSettlements != 0 || len(a.SetupPlacements) != 0 {
		t.Fatalf("removal not undone: vp=%d count=%d placements=%v", a.VictoryPoints, a.SetupSettlements, a.SetupPlacements)
	}
	if _, err := g.Apply("A", engine.Action{Type: engine.ActionLockSetup}); !errors.Is(err, engine.ErrInvalidAction) {
		t.Fatalf("lock below quota: expected ErrInvalidAction, got %v", err)
	}

	placeSetup(t, g, "A")
	if _, err := g.Apply("A", engine.Action{Type: engine.ActionBuildSettlement, VertexID: freeVertex(t, g).ID}); err == nil {
		t.Fatal("third setup settlement should be rejected")
	}
	road := g.Board.VertexEdges(a.SetupPlacements[0])[0]
	mustApply(t, g, "A", engine.Action{Type: engine.ActionRemoveRoad, EdgeID: road})
	if a.SetupRoads != 1 {
		t.Fatalf("expected 1 road after removal, got %d", a.SetupRoads)
	}
	mustApply(t, g, "A", engine.Action{Type: engine.ActionBuildRoad, EdgeID: road})
	mustApply(t, g, "A", engine.Action{Type: engine.ActionLockSetup})
	if g.Phase != engine.PhaseRollDice {
		t.Fatalf("single locked player should start the game, got %s", g.Phase)
	}
	if _, err := g.Apply("A", engine.Action{Type: engine.ActionUnlockSetup}); !errors.Is(err, engine.ErrWrongPhase) {
		t.Errorf("unlock after setup: expected ErrWrongPhase, got %v", err)
	}
}

func TestLockedPlayerCannotEdit(t *testing.T) {
	g := newTestGame(2)
	mustApply(t, g, "A", engine.Action{Type: engine.ActionConfirmMap})
	placeSetup(t, g, "A")
	mustApply(t, g, "A", engine.Action{Type: engine.ActionLockSetup})
	v := g.GetPlayer("A").SetupPlacements[0]
	if _, err := g.Apply("A", engine.Action{Type: engine.ActionRemoveBuilding, VertexID: v}); err == nil {
		t.Fatal("locked player removed a building")
	}
	mustApply(t, g, "A", engine.Action{Type: engine.ActionUnlockSetup})
	mustApply(t, g, "A", engine.Action{Type: engine.ActionRemoveBuilding, VertexID: v})
}

func TestRoadNeedsConnection(t *testing.T) {
	g := newTestGame(1)
	mustApply(t, g, "A", engine.Action{Type: engine.ActionConfirmMap})
	v := freeVertex(t, g)
	var far string
	for _, e := range g.Board.Edges {
		if e.VertexIDs[0] != v.ID && e.VertexIDs[1] != v.ID {
			far = e.ID
			break
		}
	}
	mustApply(t, g, "A", engine.Action{Type: engine.ActionBuildSettlement, VertexID: v.ID})
	if _, err := g.Apply("A", engine.Action{Type: engine.ActionBuildRoad, EdgeID: far}); !errors.Is(err, engine.ErrInvalidAction) {
		t.Fatalf("disconnected road: expected ErrInvalidAction, got %v", err)
	}
	edge := g.Board.VertexEdges(v.ID)[0]
	mustApply(t, g, "A", engine.Action{Type: engine.ActionBuildRoad, EdgeID: edge})
	if _, err := g.Apply("A", engine.Action{Type: engine.ActionBuildRoad, EdgeID: edge}); !errors.Is(err, engine.ErrOccupied) {
		t.Fatalf("second road on same edge: expected ErrOccupied, got %v", err)
	}
}

func TestUnknownIDs(t *testing.T) {
	g := newTestGame(1)
	mustApply(t, g, "A", engine.Action{Type: engine.ActionConfirmMap})
	if _, err := g.Apply("A", engine.Action{Type: engine.ActionBuildSettlement, VertexID: "v_nowhere"}); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := g.Apply("Z", engine.Action{Type: engine.ActionLockSetup}); !errors.Is(err, engine.ErrPlayerNotFound) {
		t.Errorf("expected ErrPlayerNotFound, got %v", err)
	}
	if _, err := g.Apply("A", engine.Action{Type: "fly"}); !errors.Is(err, engine.ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
}

func TestMainTurnBuilding(t *testing.T) {
	g := startedGame(t, 2)
	a := g.GetPlayer("A")
	home := a.SetupPlacements[0]

	if _, err := g.Apply("B", engine.Action{Type: engine.ActionUpgradeCity, VertexID: home}); !errors.Is(err, engine.ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if _, err := g.Apply("A", engine.Action{Type: engine.ActionUpgradeCity, VertexID: home}); !errors.Is(err, engine.ErrInsufficientResources) {
		t.Fatalf("expected ErrInsufficientResources, got %v", err)
	}

	a.Resources = engine.Hand{engine.Wheat: 2, engine.Ore: 3}
	mustApply(t, g, "A", engine.Action{Type: engine.ActionUpgradeCity, VertexID: home})
	v, _ := g.Board.Vertex(home)
	if v.Building.Kind != engine.City || a.VictoryPoints != 3 || a.Resources.Total() != 0 {
		t.Fatalf("city upgrade wrong: kind=%s vp=%d hand=%d", v.Building.Kind, a.VictoryPoints, a.Resources.Total())
	}

	// Extend the setup road by one edge, then settle two edges out.
	setupRoad, _ := g.Board.Edge(g.Board.VertexEdges(home)[0])
	tip := setupRoad.VertexIDs[0]
	if tip == home {
		tip = setupRoad.VertexIDs[1]
	}
	var next *engine.Edge
	for _, eid := range g.Board.VertexEdges(tip) {
		if e, _ := g.Board.Edge(eid); e.Road == nil {
			next = e
			break
		}
	}
	if next == nil {
		t.Skip("no free edge to extend along")
	}
	a.Resources = engine.CostRoad
	mustApply(t, g, "A", engine.Action{Type: engine.ActionBuildRoad, EdgeID: next.ID})
	end := next.VertexIDs[0]
	if end == tip {
		end = next.VertexIDs[1]
	}

	a.Resources = engine.CostSettlement
	if _, err := g.Apply("A", engine.Action{Type: engine.ActionBuildSettlement, VertexID: tip}); !errors.Is(err, engine.ErrInvalidAction) {
		t.Fatalf("settlement next to own city: expected distance-rule rejection, got %v", err)
	}
	_, err := g.Apply("A", engine.Action{Type: engine.ActionBuildSettlement, VertexID: end})
	if err == nil {
		if a.Resources.Total() != 0 || a.VictoryPoints != 4 {
			t.Errorf("settlement not charged: hand=%v vp=%d", a.Resources, a.VictoryPoints)
		}
	} else if !errors.Is(err, engine.ErrInvalidAction) && !errors.Is(err, engine.ErrOccupied) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRollProduction(t *testing.T) {
	g := newTestGame(1)
	mustApply(t, g, "A", engine.Action{Type: engine.ActionConfirmMap})
	placeSetup(t, g, "A")
	mustApply(t, g, "A", engine.Action{Type: engine.ActionLockSetup})

	a := g.GetPlayer("A")
	home := a.SetupPlacements[0]
	var hex *engine.Hex
	for _, hid := range g.Board.VertexHexes(home) {
		h, _ := g.Board.Hex(hid)
		if h.Terrain != engine.Desert && !h.HasRobber {
			hex = h
			break
		}
	}
	if hex == nil {
		t.Skip("home vertex touches no producing hex")
	}
	v, _ := g.Board.Vertex(home)
	v.Building.Kind = engine.City
	a.Resources = engine.Hand{}

	want := engine.Hand{}
	for _, h := range g.Board.Hexes {
		if h.NumberToken != hex.NumberToken || h.HasRobber {
			continue
		}
		r, ok := h.Terrain.Produces()
		if !ok {
			continue
		}
		for _, vid := range g.Board.HexVertices(h.ID) {
			if w, _ := g.Board.Vertex(vid); w.Building != nil {
				want[r] += w.Building.Kind.Yield()
			}
		}
	}

	d1 := min(hex.NumberToken-1, 6)
	d2 := hex.NumberToken - d1
	script(g, d1-1, d2-1)
	mustApply(t, g, "A", engine.Action{Type: engine.ActionRollDice})
	if g.Phase != engine.PhaseMainTurn {
		t.Fatalf("expected MAIN_TURN, got %s", g.Phase)
	}
	if a.Resources != want {
		t.Errorf("production = %v, want %v", a.Resources, want)
	}
	if _, err := g.Apply("A", engine.Action{Type: engine.ActionRollDice}); !errors.Is(err, engine.ErrWrongPhase) {
		t.Errorf("second roll: expected ErrWrongPhase, got %v", err)
	}
}

func TestSevenRollDiscardFlow(t *testing.T) {
	g := startedGame(t, 2)
	mustApply(t, g, "A", engine.Action{Type: engine.ActionEndTurn})

	a, b := g.GetPlayer("A"), g.GetPlayer("B")
	a.Resources = engine.Hand{engine.Wood: 4, engine.Brick: 4}
	b.Resources = engine.Hand{engine.Sheep: 6}

	script(g, 2, 3)
	mustApply(t, g, "B", engine.Action{Type: engine.ActionRollDice})
	if g.Phase != engine.PhaseDiscard {
		t.Fatalf("expected DISCARD_RESOURCES, got %s", g.Phase)
	}
	if len(g.PendingDiscards) != 1 || g.PendingDiscards[0] != "A" {
		t.Fatalf("only A should discard, pending = %v", g.PendingDiscards)
	}
	if _, err := g.Apply("B", engine.Action{Type: engine.ActionDiscard, Give: engine.Hand{engine.Sheep: 3}}); err == nil {
		t.Fatal("B is not indebted")
	}
	for _, bad := range []engine.Hand{{engine.Wood: 3}, {engine.Wood: 4, engine.Brick: 1}, {engine.Ore: 4}} {
		if _, err := g.Apply("A", engine.Action{Type: engine.ActionDiscard, Give: bad}); err == nil {
			t.Fatalf("discard %v should be rejected", bad)
		}
	}
	mustApply(t, g, "A", engine.Action{Type: engine.ActionDiscard, Give: engine.Hand{engine.Wood: 2, engine.Brick: 2}})
	if g.Phase != engine.PhaseRobberPlacement {
		t.Fatalf("expected ROBBER_PLACEMENT, got %s", g.Phase)
	}
	if a.Resources.Total() != 4 {
		t.Errorf("A should hold 4 cards, has %d", a.Resources.Total())
	}
}

func TestDiscardRequired(t *testing.T) {
	tests := []struct {
		hand int
		want int
	}{
		{8, 4}, {9, 4}, {10, 5}, {15, 7},
	}
	for _, tt := range tests {
		p := engine.NewPlayer("x", "x", "")
		p.Resources[engine.Ore] = tt.hand
		if got := engine.DiscardRequired(p); got != tt.want {
			t.Errorf("hand %d: discard %d, want %d", tt.hand, got, tt.want)
		}
	}
}

func TestSevenWithoutDebtMovesRobber(t *testing.T) {
	g := startedGame(t, 2)
	mustApply(t, g, "A", engine.Action{Type: engine.ActionEndTurn})
	script(g, 0, 5)
	mustApply(t, g, "B", engine.Action{Type: engine.ActionRollDice})
	if g.Phase != engine.PhaseRobberPlacement {
		t.Fatalf("expected ROBBER_PLACEMENT, got %s", g.Phase)
	}
	robber := g.Board.RobberHex()
	if _, err := g.Apply("B", engine.Action{Type: engine.ActionMoveRobber, HexID: robber.ID}); !errors.Is(err, engine.ErrInvalidAction) {
		t.Fatalf("robber must move: expected ErrInvalidAction, got %v", err)
	}
}

// victimHex finds a hex touching one of victim's buildings and none of thief's.
func victimHex(g *engine.Game, thief, victim string) *engine.Hex {
	for _, h := range g.Board.Hexes {
		if h.HasRobber {
			continue
		}
		hit, own := false, false
		for _, vid := range g.Board.HexVertices(h.ID) {
			v, _ := g.Board.Vertex(vid)
			if v.Building == nil {
				continue
			}
			switch v.Building.OwnerID {
			case victim:
				hit = true
			case thief:
				own = true
			}
		}
		if hit && !own {
			return h
		}
	}
	return nil
}

func TestRobberSteal(t *testing.T) {
	g := startedGame(t, 2)
	a, b := g.GetPlayer("A"), g.GetPlayer("B")
	b.Resources = engine.Hand{engine.Ore: 1}

	hex := victimHex(g, "A", "B")
	if hex == nil {
		t.Skip("no hex isolates B")
	}
	mustApply(t, g, "A", engine.Action{Type: engine.ActionEndTurn})
	mustApply(t, g, "B", engine.Action{Type: engine.ActionRollDice}) // scripted zeros: sum 2
	mustApply(t, g, "B", engine.Action{Type: engine.ActionEndTurn})
	script(g, 2, 3)
	mustApply(t, g, "A", engine.Action{Type: engine.ActionRollDice})
	a.Resources = engine.Hand{}
	b.Resources = engine.Hand{engine.Ore: 1}

	mustApply(t, g, "A", engine.Action{Type: engine.ActionMoveRobber, HexID: hex.ID})
	if g.Phase != engine.PhaseRobberSteal {
		t.Fatalf("expected ROBBER_STEAL, got %s", g.Phase)
	}
	if len(g.StealCandidates) != 1 || g.StealCandidates[0] != "B" {
		t.Fatalf("candidates = %v", g.StealCandidates)
	}
	if _, err := g.Apply("A", engine.Action{Type: engine.ActionSteal, TargetID: "A"}); err == nil {
		t.Fatal("cannot steal from yourself")
	}
	mustApply(t, g, "A", engine.Action{Type: engine.ActionSteal, TargetID: "B"})
	if a.Resources[engine.Ore] != 1 || b.Resources.Total() != 0 {
		t.Errorf("steal did not move the ore: a=%v b=%v", a.Resources, b.Resources)
	}
	if g.Phase != engine.PhaseMainTurn || g.StealCandidates != nil {
		t.Errorf("expected MAIN_TURN with no candidates, got %s %v", g.Phase, g.StealCandidates)
	}
	if g.CardAnimation == nil || g.CardAnimation.Card != "ORE" || g.CardAnimation.Action != "GAIN" {
		t.Errorf("steal animation = %+v", g.CardAnimation)
	}
}

func TestStealFromEmptyHand(t *testing.T) {
	g := startedGame(t, 2)
	a, b := g.GetPlayer("A"), g.GetPlayer("B")

	hex := victimHex(g, "A", "B")
	if hex == nil {
		t.Skip("no hex isolates B")
	}
	mustApply(t, g, "A", engine.Action{Type: engine.ActionEndTurn})
	mustApply(t, g, "B", engine.Action{Type: engine.ActionRollDice})
	mustApply(t, g, "B", engine.Action{Type: engine.ActionEndTurn})
	script(g, 2, 3)
	mustApply(t, g, "A", engine.Action{Type: engine.ActionRollDice})
	a.Resources = engine.Hand{engine.Wood: 2}
	b.Resources = engine.Hand{}

	mustApply(t, g, "A", engine.Action{Type: engine.ActionMoveRobber, HexID: hex.ID})
	if g.Phase != engine.PhaseRobberSteal || len(g.StealCandidates) != 1 {
		t.Fatalf("expected ROBBER_STEAL with B as candidate, got %s %v", g.Phase, g.StealCandidates)
	}
	mustApply(t, g, "A", engine.Action{Type: engine.ActionSteal, TargetID: "B"})
	if a.Resources.Total() != 2 || a.Resources[engine.Wood] != 2 || b.Resources.Total() != 0 {
		t.Errorf("hands changed: a=%v b=%v", a.Resources, b.Resources)
	}
	if g.Phase != engine.PhaseMainTurn || g.StealCandidates != nil {
		t.Errorf("expected MAIN_TURN with no candidates, got %s %v", g.Phase, g.StealCandidates)
	}
}

func TestEndTurn(t *testing.T) {
	g := startedGame(t, 3)
	a := g.GetPlayer("A")
	a.DevCards = []engine.DevCard{{ID: "c1", Type: engine.Knight, IsNew: true}}
	a.HasPlayedDevCard = true
	g.TradeOffer = &engine.TradeOffer{FromPlayerID: "A", ToPlayerID: "B"}

	if _, err := g.Apply("B", engine.Action{Type: engine.ActionEndTurn}); !errors.Is(err, engine.ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	mustApply(t, g, "A", engine.Action{Type: engine.ActionEndTurn})
	if g.CurrentPlayerID != "B" || g.Phase != engine.PhaseRollDice || g.HasRolledDice {
		t.Fatalf("turn not advanced: %s %s %v", g.CurrentPlayerID, g.Phase, g.HasRolledDice)
	}
	if a.DevCards[0].IsNew || a.HasPlayedDevCard || g.TradeOffer != nil {
		t.Errorf("turn state not cleared")
	}
	if _, err := g.Apply("B", engine.Action{Type: engine.ActionEndTurn}); !errors.Is(err, engine.ErrWrongPhase) {
		t.Errorf("end turn before roll: expected ErrWrongPhase, got %v", err)
	}

	mustApply(t, g, "B", engine.Action{Type: engine.ActionRollDice})
	mustApply(t, g, "B", engine.Action{Type: engine.ActionEndTurn})
	mustApply(t, g, "C", engine.Action{Type: engine.ActionRollDice})
	mustApply(t, g, "C", engine.Action{Type: engine.ActionEndTurn})
	if g.CurrentPlayerID != "A" {
		t.Errorf("seat order should wrap to A, got %s", g.CurrentPlayerID)
	}
}

func TestBankTradeWithoutPorts(t *testing.T) {
	g := startedGame(t, 2)
	a := g.GetPlayer("A")
	a.Resources = engine.Hand{engine.Wood: 4}

	mustApply(t, g, "A", engine.Action{Type: engine.ActionTradeBank, Give: engine.Hand{engine.Wood: 4}, Resource: engine.Sheep})
	if a.Resources[engine.Wood] != 0 || a.Resources[engine.Sheep] != 1 {
		t.Fatalf("hand after trade = %v", a.Resources)
	}

	a.Resources = engine.Hand{engine.Wood: 3}
	if _, err := g.Apply("A", engine.Action{Type: engine.ActionTradeBank, Give: engine.Hand{engine.Wood: 3}, Resource: engine.Ore}); !errors.Is(err, engine.ErrInvalidAction) {
		t.Fatalf("3 cards without a port: expected ErrInvalidAction, got %v", err)
	}
	if _, err := g.Apply("A", engine.Action{Type: engine.ActionTradeBank, Give: engine.Hand{engine.Wood: 5}, Resource: engine.Ore}); !errors.Is(err, engine.ErrInsufficientResources) {
		t.Fatalf("expected ErrInsufficientResources, got %v", err)
	}
}

func TestTradeRatesAndPortTrade(t *testing.T) {
	g := startedGame(t, 2)
	var wild, specific *engine.Port
	for _, p := range g.Board.Ports {
		if p.Wildcard && wild == nil {
			wild = p
		}
		if !p.Wildcard && specific == nil {
			specific = p
		}
	}
	if wild == nil || specific == nil {
		t.Fatal("standard map should have both port kinds")
	}
	rates := g.TradeRates("A")
	for r, rate := range rates {
		if rate != 4 {
			t.Errorf("%s rate = %d without ports", r, rate)
		}
	}

	v, _ := g.Board.Vertex(wild.VertexIDs[0])
	v.Building = &engine.Building{Kind: engine.Settlement, OwnerID: "A"}
	for r, rate := range g.TradeRates("A") {
		if rate != 3 {
			t.Errorf("%s rate = %d with a wildcard port", r, rate)
		}
	}
	v, _ = g.Board.Vertex(specific.VertexIDs[1])
	v.Building = &engine.Building{Kind: engine.Settlement, OwnerID: "A"}
	rates = g.TradeRates("A")
	if rates[specific.Resource] != 2 {
		t.Errorf("%s rate = %d with its own port", specific.Resource, rates[specific.Resource])
	}

	a := g.GetPlayer("A")
	var want engine.Resource
	for _, r := range engine.TradableResources() {
		if r != specific.Resource {
			want = r
			break
		}
	}
	a.Resources = engine.Hand{}
	a.Resources[specific.Resource] = 2
	give := engine.Hand{}
	give[specific.Resource] = 2
	mustApply(t, g, "A", engine.Action{Type: engine.ActionTradeBank, Give: give, Resource: want})
	if a.Resources[want] != 1 || a.Resources[specific.Resource] != 0 {
		t.Errorf("2:1 trade result = %v", a.Resources)
	}
}

func TestPeerTrade(t *testing.T) {
	g := startedGame(t, 3)
	a, b := g.GetPlayer("A"), g.GetPlayer("B")
	a.Resources = engine.Hand{engine.Wood: 2}
	b.Resources = engine.Hand{engine.Ore: 1}

	offer := engine.Action{Type: engine.ActionProposeTrade, TargetID: "B",
		Give: engine.Hand{engine.Wood: 2}, Want: engine.Hand{engine.Ore: 1}}
	mustApply(t, g, "A", offer)
	if _, err := g.Apply("A", offer); !errors.Is(err, engine.ErrTradePending) {
		t.Fatalf("expected ErrTradePending, got %v", err)
	}
	if _, err := g.Apply("C", engine.Action{Type: engine.ActionAcceptTrade}); err == nil {
		t.Fatal("only the recipient can accept")
	}
	mustApply(t, g, "B", engine.Action{Type: engine.ActionAcceptTrade})
	if a.Resources != (engine.Hand{engine.Ore: 1}) || b.Resources != (engine.Hand{engine.Wood: 2}) {
		t.Fatalf("swap wrong: a=%v b=%v", a.Resources, b.Resources)
	}
	if g.TradeOffer != nil {
		t.Fatal("offer should be cleared")
	}

	// The recipient spent the requested card before accepting.
	mustApply(t, g, "A", engine.Action{Type: engine.ActionProposeTrade, TargetID: "B",
		Give: engine.Hand{engine.Ore: 1}, Want: engine.Hand{engine.Wheat: 1}})
	events, err := g.Apply("B", engine.Action{Type: engine.ActionAcceptTrade})
	if !errors.Is(err, engine.ErrInsufficientResources) {
		t.Fatalf("expected ErrInsufficientResources, got %v", err)
	}
	if len(events) == 0 || events[0].Type != engine.EventTradeVoided || g.TradeOffer != nil {
		t.Fatalf("failed accept must void the offer: events=%v offer=%v", events, g.TradeOffer)
	}

	mustApply(t, g, "A", engine.Action{Type: engine.ActionProposeTrade, TargetID: "C", Give: engine.Hand{engine.Ore: 1}})
	mustApply(t, g, "C", engine.Action{Type: engine.ActionRejectTrade})
	mustApply(t, g, "A", engine.Action{Type: engine.ActionProposeTrade, TargetID: "C", Give: engine.Hand{engine.Ore: 1}})
	if _, err := g.Apply("C", engine.Action{Type: engine.ActionCancelTrade}); err == nil {
		t.Fatal("only the proposer can cancel")
	}
	mustApply(t, g, "A", engine.Action{Type: engine.ActionCancelTrade})
	if a.Resources != (engine.Hand{engine.Ore: 1}) {
		t.Errorf("rejected and cancelled offers must not move cards: %v", a.Resources)
	}
}

func TestVictoryEndsGame(t *testing.T) {
	g := startedGame(t, 2)
	a := g.GetPlayer("A")
	a.VictoryPoints = 9
	a.Resources = engine.CostCity
	events := mustApply(t, g, "A", engine.Action{Type: engine.ActionUpgradeCity, VertexID: a.SetupPlacements[0]})

	if g.Phase != engine.PhaseGameOver || g.WinnerID != "A" {
		t.Fatalf("expected GAME_OVER won by A, got %s %q", g.Phase, g.WinnerID)
	}
	found := false
	for _, ev := range events {
		if ev.Type == engine.EventGameOver {
			found = true
		}
	}
	if !found {
		t.Error("missing game_over event")
	}
	for _, act := range []engine.ActionType{engine.ActionEndTurn, engine.ActionToggleDebug, engine.ActionBuyDevCard} {
		if _, err := g.Apply("B", engine.Action{Type: act}); !errors.Is(err, engine.ErrGameOver) {
			t.Errorf("%s after game over: expected ErrGameOver, got %v", act, err)
		}
	}
}

func TestDebugResourceOverride(t *testing.T) {
	g := startedGame(t, 2)
	set := engine.Action{Type: engine.ActionSetResource, TargetID: "B", Resource: engine.Ore, Amount: 5}
	if _, err := g.Apply("A", set); !errors.Is(err, engine.ErrInvalidAction) {
		t.Fatalf("override without debug: expected ErrInvalidAction, got %v", err)
	}
	mustApply(t, g, "B", engine.Action{Type: engine.ActionToggleDebug})
	mustApply(t, g, "A", set)
	if g.GetPlayer("B").Resources[engine.Ore] != 5 {
		t.Fatalf("override not applied")
	}
	set.Amount = -3
	mustApply(t, g, "A", set)
	if g.GetPlayer("B").Resources[engine.Ore] != 0 {
		t.Fatalf("negative override should clamp to 0")
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	g := startedGame(t, 2)
	s := g.Snapshot()
	s.Players[0].Resources[engine.Ore] = 99
	s.Board.Vertices[0].Building = &engine.Building{OwnerID: "X"}
	s.Board.Hexes[0].HasRobber = true
	s.Log[0] = "tampered"

	if g.Players[0].Resources[engine.Ore] == 99 {
		t.Error("snapshot shares player hands")
	}
	if b := g.Board.Vertices[0].Building; b != nil && b.OwnerID == "X" {
		t.Error("snapshot shares vertices")
	}
	if g.Log[0] == "tampered" {
		t.Error("snapshot shares the log")
	}
	if _, ok := s.Board.Vertex(g.Board.Vertices[0].ID); !ok {
		t.Error("cloned board lost its index")
	}
}

func TestLogNewestFirst(t *testing.T) {
	g := newTestGame(2)
	if len(g.Log) < 2 || g.Log[0] != "Player2 joined the game" {
		t.Fatalf("log = %v", g.Log)
	}
	for i := 0; i < 150; i++ {
		mustApply(t, g, "A", engine.Action{Type: engine.ActionToggleDebug})
	}
	if len(g.Log) != 100 {
		t.Errorf("log should be capped at 100, has %d", len(g.Log))
	}
}
