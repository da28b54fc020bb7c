// Package grid provides the multi-occupancy rectangular grid the simulation
// runs on. Cells are addressed row-major; the grid is either toroidal
// (coordinates wrap) or bounded (out-of-range moves are rejected).
package grid

import (
	"encoding/json"
	"fmt"
)

// AgentID identifies an occupant. The grid treats it as opaque.
type AgentID uint64

// Position is a cell coordinate on the grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Neighborhood selects which adjacency relation Neighbors uses.
type Neighborhood uint8

const (
	// Moore is the 8-cell neighborhood (orthogonal + diagonal).
	Moore Neighborhood = iota
	// VonNeumann is the 4-cell orthogonal neighborhood.
	VonNeumann
)

// ParseNeighborhood maps a config name to a Neighborhood.
func ParseNeighborhood(name string) (Neighborhood, bool) {
	switch name {
	case "moore":
		return Moore, true
	case "von_neumann":
		return VonNeumann, true
	}
	return Moore, false
}

// String returns the config name of the neighborhood.
func (n Neighborhood) String() string {
	if n == VonNeumann {
		return "von_neumann"
	}
	return "moore"
}

// MarshalJSON encodes the neighborhood by name.
func (n Neighborhood) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

// UnmarshalJSON decodes a neighborhood name.
func (n *Neighborhood) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := ParseNeighborhood(name)
	if !ok {
		return fmt.Errorf("unknown neighborhood %q", name)
	}
	*n = parsed
	return nil
}

var mooreOffsets = [8]Position{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

var vonNeumannOffsets = [4]Position{
	{X: 0, Y: -1}, {X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1},
}

// Grid holds cell occupancy for a W×H field. Multiple agents may share a
// cell. The occupancy index and the per-agent position record are kept
// consistent by Place and Move.
type Grid struct {
	W, H         int
	Toroidal     bool
	Neighborhood Neighborhood

	cells     [][]AgentID
	positions map[AgentID]Position
}

// New allocates an empty grid.
func New(w, h int, toroidal bool, n Neighborhood) *Grid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Grid{
		W:            w,
		H:            h,
		Toroidal:     toroidal,
		Neighborhood: n,
		cells:        make([][]AgentID, w*h),
		positions:    make(map[AgentID]Position),
	}
}

func (g *Grid) index(p Position) int { return p.Y*g.W + p.X }

// Contains reports whether p lies within the grid bounds.
func (g *Grid) Contains(p Position) bool {
	return p.X >= 0 && p.X < g.W && p.Y >= 0 && p.Y < g.H
}

// Wrap applies toroidal wrapping to p.
func (g *Grid) Wrap(p Position) Position {
	p.X = (p.X%g.W + g.W) % g.W
	p.Y = (p.Y%g.H + g.H) % g.H
	return p
}

// Place puts an agent on the grid at p, removing it from its previous cell if
// it was already placed. Returns false if p is out of bounds on a bounded
// grid; toroidal grids wrap instead.
func (g *Grid) Place(id AgentID, p Position) bool {
	if g.Toroidal {
		p = g.Wrap(p)
	} else if !g.Contains(p) {
		return false
	}
	if prev, ok := g.positions[id]; ok {
		g.removeFromCell(id, prev)
	}
	i := g.index(p)
	g.cells[i] = append(g.cells[i], id)
	g.positions[id] = p
	return true
}

// Move relocates a placed agent to p. Same addressing rules as Place; a
// rejected move leaves the agent where it was.
func (g *Grid) Move(id AgentID, p Position) bool {
	if _, ok := g.positions[id]; !ok {
		return false
	}
	return g.Place(id, p)
}

// PositionOf returns the recorded position of an agent.
func (g *Grid) PositionOf(id AgentID) (Position, bool) {
	p, ok := g.positions[id]
	return p, ok
}

// OccupantsAt returns the agents currently in the cell at p. The returned
// slice is the grid's backing storage; callers must not mutate it.
func (g *Grid) OccupantsAt(p Position) []AgentID {
	if g.Toroidal {
		p = g.Wrap(p)
	} else if !g.Contains(p) {
		return nil
	}
	return g.cells[g.index(p)]
}

// Neighbors returns the adjacent cells of p under the configured
// neighborhood. Toroidal grids wrap; bounded grids omit cells past the edge.
func (g *Grid) Neighbors(p Position) []Position {
	var offsets []Position
	switch g.Neighborhood {
	case VonNeumann:
		offsets = vonNeumannOffsets[:]
	default:
		offsets = mooreOffsets[:]
	}

	result := make([]Position, 0, len(offsets))
	for _, d := range offsets {
		n := Position{X: p.X + d.X, Y: p.Y + d.Y}
		if g.Toroidal {
			result = append(result, g.Wrap(n))
			continue
		}
		if g.Contains(n) {
			result = append(result, n)
		}
	}
	return result
}

// ForEachOccupied calls fn for every non-empty cell in row-major order.
func (g *Grid) ForEachOccupied(fn func(p Position, occupants []AgentID)) {
	for i, occ := range g.cells {
		if len(occ) == 0 {
			continue
		}
		fn(Position{X: i % g.W, Y: i / g.W}, occ)
	}
}

func (g *Grid) removeFromCell(id AgentID, p Position) {
	i := g.index(p)
	cell := g.cells[i]
	for j, other := range cell {
		if other == id {
			g.cells[i] = append(cell[:j], cell[j+1:]...)
			return
		}
	}
}
