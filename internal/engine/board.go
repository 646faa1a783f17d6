package engine

import "fmt"

// BuildingKind distinguishes settlements from cities.
type BuildingKind int

const (
	Settlement BuildingKind = iota
	City
)

func (k BuildingKind) String() string {
	if k == City {
		return "CITY"
	}
	return "SETTLEMENT"
}

func (k BuildingKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *BuildingKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "SETTLEMENT":
		*k = Settlement
	case "CITY":
		*k = City
	default:
		return fmt.Errorf("unknown building kind %q", string(b))
	}
	return nil
}

// Yield is the number of resource cards a building earns per production.
func (k BuildingKind) Yield() int {
	if k == City {
		return 2
	}
	return 1
}

type Building struct {
	Kind    BuildingKind `json:"type"`
	OwnerID string       `json:"owner_id"`
}

type Road struct {
	OwnerID string `json:"owner_id"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Hex is one terrain tile. NumberToken is zero for the desert.
type Hex struct {
	ID          string  `json:"id"`
	Q           int     `json:"q"`
	R           int     `json:"r"`
	S           int     `json:"s"`
	Terrain     Terrain `json:"terrain"`
	NumberToken int     `json:"number_token,omitempty"`
	HasRobber   bool    `json:"has_robber"`
}

// OuterRing reports whether the hex lies on the boundary of a radius-2 island.
func (h *Hex) OuterRing() bool {
	return abs(h.Q) == mapRadius || abs(h.R) == mapRadius || abs(h.S) == mapRadius
}

type Vertex struct {
	ID       string    `json:"id"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Building *Building `json:"building,omitempty"`
	PortID   string    `json:"port_id,omitempty"`
}

type Edge struct {
	ID        string    `json:"id"`
	VertexIDs [2]string `json:"vertex_ids"`
	Road      *Road     `json:"road,omitempty"`
}

// Port offers a better bank rate to owners of its two vertices.
// Resource is meaningless when Wildcard is set.
type Port struct {
	ID        string    `json:"id"`
	Wildcard  bool      `json:"wildcard"`
	Resource  Resource  `json:"resource"`
	Ratio     int       `json:"ratio"`
	VertexIDs [2]string `json:"vertex_ids"`
	Outward   Point     `json:"outward"`
}

// Board is the generated island plus an adjacency index built once at
// generation time. The index is never mutated afterwards, so clones share it.
type Board struct {
	Hexes          []*Hex    `json:"hexes"`
	Vertices       []*Vertex `json:"vertices"`
	Edges          []*Edge   `json:"edges"`
	Ports          []*Port   `json:"ports"`
	RequestedPorts int       `json:"requested_ports"`

	hexByID    map[string]*Hex
	vertexByID map[string]*Vertex
	edgeByID   map[string]*Edge
	portByID   map[string]*Port

	adj *adjacency
}

type adjacency struct {
	hexVertices map[string][]string
	vertexHexes map[string][]string
	vertexEdges map[string][]string
	edgeHexes   map[string][]string
}

func newAdjacency() *adjacency {
	return &adjacency{
		hexVertices: make(map[string][]string),
		vertexHexes: make(map[string][]string),
		vertexEdges: make(map[string][]string),
		edgeHexes:   make(map[string][]string),
	}
}

func (b *Board) reindex() {
	b.hexByID = make(map[string]*Hex, len(b.Hexes))
	for _, h := range b.Hexes {
		b.hexByID[h.ID] = h
	}
	b.vertexByID = make(map[string]*Vertex, len(b.Vertices))
	for _, v := range b.Vertices {
		b.vertexByID[v.ID] = v
	}
	b.edgeByID = make(map[string]*Edge, len(b.Edges))
	for _, e := range b.Edges {
		b.edgeByID[e.ID] = e
	}
	b.portByID = make(map[string]*Port, len(b.Ports))
	for _, p := range b.Ports {
		b.portByID[p.ID] = p
	}
}

func (b *Board) Hex(id string) (*Hex, bool) {
	h, ok := b.hexByID[id]
	return h, ok
}

func (b *Board) Vertex(id string) (*Vertex, bool) {
	v, ok := b.vertexByID[id]
	return v, ok
}

func (b *Board) Edge(id string) (*Edge, bool) {
	e, ok := b.edgeByID[id]
	return e, ok
}

func (b *Board) Port(id string) (*Port, bool) {
	p, ok := b.portByID[id]
	return p, ok
}

// HexVertices returns the six corners of a hex in corner order.
func (b *Board) HexVertices(hexID string) []string {
	return b.adj.hexVertices[hexID]
}

// VertexHexes returns the one to three hexes touching a vertex.
func (b *Board) VertexHexes(vertexID string) []string {
	return b.adj.vertexHexes[vertexID]
}

// VertexEdges returns the edges ending at a vertex.
func (b *Board) VertexEdges(vertexID string) []string {
	return b.adj.vertexEdges[vertexID]
}

// EdgeHexes returns the hexes bordering an edge. Coastal edges have one.
func (b *Board) EdgeHexes(edgeID string) []string {
	return b.adj.edgeHexes[edgeID]
}

// NeighborVertices returns the vertices one edge away.
func (b *Board) NeighborVertices(vertexID string) []string {
	var out []string
	for _, eid := range b.adj.vertexEdges[vertexID] {
		e := b.edgeByID[eid]
		if e.VertexIDs[0] == vertexID {
			out = append(out, e.VertexIDs[1])
		} else {
			out = append(out, e.VertexIDs[0])
		}
	}
	return out
}

func (b *Board) VertexTouchesHex(vertexID, hexID string) bool {
	for _, h := range b.adj.vertexHexes[vertexID] {
		if h == hexID {
			return true
		}
	}
	return false
}

func (b *Board) HasRoad(edgeID string) bool {
	e, ok := b.edgeByID[edgeID]
	return ok && e.Road != nil
}

func (b *Board) HasBuilding(vertexID string) bool {
	v, ok := b.vertexByID[vertexID]
	return ok && v.Building != nil
}

// RobberHex returns the hex currently holding the robber.
func (b *Board) RobberHex() *Hex {
	for _, h := range b.Hexes {
		if h.HasRobber {
			return h
		}
	}
	return nil
}

// Clone deep-copies every mutable entity.
func (b *Board) Clone() *Board {
	c := &Board{
		Hexes:          make([]*Hex, len(b.Hexes)),
		Vertices:       make([]*Vertex, len(b.Vertices)),
		Edges:          make([]*Edge, len(b.Edges)),
		Ports:          make([]*Port, len(b.Ports)),
		RequestedPorts: b.RequestedPorts,
		adj:            b.adj,
	}
	for i, h := range b.Hexes {
		hc := *h
		c.Hexes[i] = &hc
	}
	for i, v := range b.Vertices {
		vc := *v
		if v.Building != nil {
			bc := *v.Building
			vc.Building = &bc
		}
		c.Vertices[i] = &vc
	}
	for i, e := range b.Edges {
		ec := *e
		if e.Road != nil {
			rc := *e.Road
			ec.Road = &rc
		}
		c.Edges[i] = &ec
	}
	for i, p := range b.Ports {
		pc := *p
		c.Ports[i] = &pc
	}
	c.reindex()
	return c
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
