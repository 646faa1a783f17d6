package engine

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog/log"
)

const (
	mapRadius = 2
	hexSize   = 60.0

	// DefaultPortCount is the standard harbour count.
	DefaultPortCount = 9
)

var resourceBag = []Terrain{
	Forest, Forest, Forest, Forest,
	Pasture, Pasture, Pasture, Pasture,
	Fields, Fields, Fields, Fields,
	Hills, Hills, Hills,
	Mountains, Mountains, Mountains,
}

var tokenBag = []int{2, 3, 3, 4, 4, 5, 5, 6, 6, 8, 8, 9, 9, 10, 10, 11, 11, 12}

type portSpec struct {
	wildcard bool
	resource Resource
	ratio    int
}

var portPattern = []portSpec{
	{wildcard: true, ratio: 3},
	{resource: Wood, ratio: 2},
	{wildcard: true, ratio: 3},
	{resource: Brick, ratio: 2},
	{resource: Sheep, ratio: 2},
	{wildcard: true, ratio: 3},
	{resource: Wheat, ratio: 2},
	{resource: Ore, ratio: 2},
	{wildcard: true, ratio: 3},
}

func hexCenter(q, r int) Point {
	return Point{
		X: hexSize * (math.Sqrt(3)*float64(q) + math.Sqrt(3)/2*float64(r)),
		Y: hexSize * (1.5 * float64(r)),
	}
}

// round2 rounds to two decimals and folds negative zero into zero so that
// corners computed from different hex centers key identically.
func round2(v float64) float64 {
	v = math.Round(v*100) / 100
	if v == 0 {
		return 0
	}
	return v
}

func edgeID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}

// Generate builds a complete island from the two seeds. The same inputs
// always yield the same board.
func Generate(terrainSeed, tokenSeed string, portCount int) *Board {
	if portCount < 0 {
		portCount = 0
	}
	terrain := Shuffle(NewRandom(terrainSeed), resourceBag)

	b := &Board{RequestedPorts: portCount, adj: newAdjacency()}
	i := 0
	for q := -mapRadius; q <= mapRadius; q++ {
		for r := max(-mapRadius, -q-mapRadius); r <= min(mapRadius, -q+mapRadius); r++ {
			h := &Hex{ID: fmt.Sprintf("h_%d_%d", q, r), Q: q, R: r, S: -q - r}
			if q == 0 && r == 0 {
				h.Terrain = Desert
				h.HasRobber = true
			} else {
				h.Terrain = terrain[i]
				i++
			}
			b.Hexes = append(b.Hexes, h)
		}
	}
	b.assignTokens(tokenSeed)

	vertexByKey := make(map[string]*Vertex)
	edgeByKey := make(map[string]*Edge)
	for _, h := range b.Hexes {
		c := hexCenter(h.Q, h.R)
		var corners [6]string
		for k := 0; k < 6; k++ {
			angle := math.Pi / 180 * float64(60*k-30)
			x := round2(c.X + hexSize*math.Cos(angle))
			y := round2(c.Y + hexSize*math.Sin(angle))
			key := fmt.Sprintf("%.2f,%.2f", x, y)
			v, ok := vertexByKey[key]
			if !ok {
				v = &Vertex{ID: "v_" + key, X: x, Y: y}
				vertexByKey[key] = v
				b.Vertices = append(b.Vertices, v)
			}
			corners[k] = v.ID
			b.adj.hexVertices[h.ID] = append(b.adj.hexVertices[h.ID], v.ID)
			b.adj.vertexHexes[v.ID] = append(b.adj.vertexHexes[v.ID], h.ID)
		}
		for k := 0; k < 6; k++ {
			v1, v2 := corners[k], corners[(k+1)%6]
			id := edgeID(v1, v2)
			if _, ok := edgeByKey[id]; !ok {
				e := &Edge{ID: id, VertexIDs: [2]string{v1, v2}}
				edgeByKey[id] = e
				b.Edges = append(b.Edges, e)
				b.adj.vertexEdges[v1] = append(b.adj.vertexEdges[v1], id)
				b.adj.vertexEdges[v2] = append(b.adj.vertexEdges[v2], id)
			}
			b.adj.edgeHexes[id] = append(b.adj.edgeHexes[id], h.ID)
		}
	}
	b.reindex()
	b.placePorts(portCount)
	return b
}

// assignTokens shuffles the number bag with a fresh generator and deals it
// onto the non-desert hexes in enumeration order.
func (b *Board) assignTokens(tokenSeed string) {
	tokens := Shuffle(NewRandom(tokenSeed), tokenBag)
	i := 0
	for _, h := range b.Hexes {
		if h.Terrain == Desert {
			h.NumberToken = 0
			continue
		}
		h.NumberToken = tokens[i]
		i++
	}
}

// RegenerateTokens reshuffles only the number tokens. Terrain, robber and
// ports are untouched.
func (b *Board) RegenerateTokens(tokenSeed string) {
	b.assignTokens(tokenSeed)
}

func (b *Board) midpoint(e *Edge) Point {
	v1 := b.vertexByID[e.VertexIDs[0]]
	v2 := b.vertexByID[e.VertexIDs[1]]
	return Point{X: (v1.X + v2.X) / 2, Y: (v1.Y + v2.Y) / 2}
}

func (b *Board) placePorts(portCount int) {
	var coastal []*Edge
	for _, e := range b.Edges {
		if len(b.adj.edgeHexes[e.ID]) == 1 {
			coastal = append(coastal, e)
		}
	}
	slices.SortStableFunc(coastal, func(x, y *Edge) int {
		mx, my := b.midpoint(x), b.midpoint(y)
		return cmp.Compare(math.Atan2(mx.Y, mx.X), math.Atan2(my.Y, my.X))
	})

	total := len(coastal)
	if total == 0 || portCount == 0 {
		return
	}

	placed := 0
	for attempt := 0; placed < portCount && attempt < total*2; attempt++ {
		e := coastal[(attempt*total/portCount)%total]
		spec := portPattern[placed%len(portPattern)]

		owners := b.adj.edgeHexes[e.ID]
		if len(owners) != 1 {
			continue
		}
		h := b.hexByID[owners[0]]
		if !h.OuterRing() {
			continue
		}
		center := hexCenter(h.Q, h.R)
		mid := b.midpoint(e)
		if math.Hypot(mid.X, mid.Y) <= math.Hypot(center.X, center.Y)*1.05 {
			continue
		}
		v1 := b.vertexByID[e.VertexIDs[0]]
		v2 := b.vertexByID[e.VertexIDs[1]]
		if min(math.Hypot(v1.X, v1.Y), math.Hypot(v2.X, v2.Y)) < hexSize*1.8 {
			continue
		}
		// A vertex holds at most one port.
		if v1.PortID != "" || v2.PortID != "" {
			continue
		}

		dx, dy := mid.X-center.X, mid.Y-center.Y
		mag := math.Hypot(dx, dy)
		if mag == 0 {
			mag = 1
		}
		p := &Port{
			ID:        fmt.Sprintf("p_%d", placed),
			Wildcard:  spec.wildcard,
			Resource:  spec.resource,
			Ratio:     spec.ratio,
			VertexIDs: e.VertexIDs,
			Outward:   Point{X: dx / mag, Y: dy / mag},
		}
		if p.Wildcard {
			p.Resource = DesertResource
		}
		v1.PortID = p.ID
		v2.PortID = p.ID
		b.Ports = append(b.Ports, p)
		b.portByID[p.ID] = p
		placed++

		log.Debug().
			Str("port", p.ID).
			Str("edge", e.ID).
			Str("hex", h.ID).
			Msg("port placed")
	}

	if placed < portCount {
		log.Warn().
			Int("placed", placed).
			Int("requested", portCount).
			Int("coastal_edges", total).
			Msg("port placement shortfall")
	}
}

// Describe is a short label such as "3:1 ANY" or "2:1 WOOD".
func (p *Port) Describe() string {
	kind := p.Resource.String()
	if p.Wildcard {
		kind = "ANY"
	}
	return fmt.Sprintf("%d:1 %s", p.Ratio, kind)
}
