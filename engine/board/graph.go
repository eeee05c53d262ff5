package board

import (
	"fmt"

	"github.com/marbleforge/trackengine/engine/fixed"
	"github.com/marbleforge/trackengine/engine/grid"
)

// GraphInconsistentError reports a socket contradiction found while
// rebuilding the track graph: two occupied cells declare an edge between
// them that only one side agrees to.
type GraphInconsistentError struct {
	Cell, Neighbour grid.Cell
}

func (e *GraphInconsistentError) Error() string {
	return fmt.Sprintf("board: socket mismatch between %v and %v", e.Cell, e.Neighbour)
}

// NodeID indexes into Graph.Palette.
type NodeID uint32

// Node is one cell's resolved track attributes: the rotated entry/exit
// directions it actually presents and whether it imparts slope
// acceleration. SpeedCap/HasSpeedCap hold a per-cell terminal speed cap;
// Rebuild never sets them, so every cell uses Config.DefaultSpeedCap and
// upgrade level does not change a cell's cap.
type Node struct {
	Cell        grid.Cell
	Part        PartID
	Rotation    grid.Rotation
	Entry       []grid.Direction
	Exit        []grid.Direction
	IsRamp      bool
	RampSin     fixed.F
	RampCos     fixed.F
	SpeedCap    fixed.F
	HasSpeedCap bool
	fingerprint uint64
}

// Graph is the derived track graph (C4): a palette of resolved nodes plus a
// CSR adjacency list connecting each node to the neighbours its sockets
// actually reach. It is rebuilt from a Board whenever the board is dirty;
// rebuilding is idempotent and produces bit-identical output for the same
// board contents, matching spec.md's determinism requirement.
type Graph struct {
	trig      slopeTrig
	Palette   []Node
	Offsets   []uint32
	Adjacency []NodeID

	posIndex map[grid.Cell]int
}

// NewGraph creates an empty Graph. trig is the one-time ramp trig precompute
// shared by every ramp node.
func NewGraph() *Graph {
	return &Graph{trig: computeRampTrig()}
}

// prepare rebuilds the position index if it has gone stale.
func (g *Graph) prepare() {
	if g.posIndex == nil || len(g.posIndex) != len(g.Palette) {
		g.posIndex = make(map[grid.Cell]int, len(g.Palette))
		for i := range g.Palette {
			g.posIndex[g.Palette[i].Cell] = i
		}
	}
}

// NodeAt returns the resolved node at cell, if the graph has one.
func (g *Graph) NodeAt(cell grid.Cell) (*Node, bool) {
	g.prepare()
	idx, ok := g.posIndex[cell]
	if !ok {
		return nil, false
	}
	return &g.Palette[idx], true
}

// Neighbours returns the node ids cell's node connects to.
func (g *Graph) Neighbours(cell grid.Cell) []NodeID {
	g.prepare()
	idx, ok := g.posIndex[cell]
	if !ok {
		return nil
	}
	return g.neighboursByIdx(idx)
}

func (g *Graph) neighboursByIdx(idx int) []NodeID {
	if idx < 0 || idx >= len(g.Palette) {
		return nil
	}
	start := int(g.Offsets[idx])
	end := len(g.Adjacency)
	if idx+1 < len(g.Offsets) {
		end = int(g.Offsets[idx+1])
	}
	if start >= end {
		return nil
	}
	return g.Adjacency[start:end]
}

// Rebuild regenerates the entire graph from board's current placements.
// Rebuild is idempotent: calling it twice on an unchanged board produces
// byte-identical Palette/Offsets/Adjacency slices, since cells are visited
// in deterministic Morton order rather than map iteration order.
func (g *Graph) Rebuild(b *Board) error {
	cells := make([]grid.Cell, 0, len(b.cells))
	for c := range b.cells {
		cells = append(cells, c)
	}
	sortCellsDeterministic(cells)

	palette := make([]Node, 0, len(cells))
	posIndex := make(map[grid.Cell]int, len(cells))
	for _, c := range cells {
		p := b.cells[c]
		def, ok := b.catalog.Lookup(p.Part)
		if !ok {
			continue
		}
		node := resolveNode(g.trig, p, def)
		posIndex[c] = len(palette)
		palette = append(palette, node)
	}

	offsets := make([]uint32, len(palette)+1)
	var adjacency []NodeID
	for i, node := range palette {
		offsets[i] = uint32(len(adjacency))
		for _, dir := range node.Exit {
			nc := node.Cell.Add(dir)
			nIdx, ok := posIndex[nc]
			if !ok {
				continue
			}
			neighbour := palette[nIdx]
			if !neighbourAcceptsEntry(neighbour, dir.Opposite()) {
				return &GraphInconsistentError{Cell: node.Cell, Neighbour: nc}
			}
			adjacency = append(adjacency, NodeID(nIdx))
		}
	}
	offsets[len(palette)] = uint32(len(adjacency))

	g.Palette = palette
	g.Offsets = offsets
	g.Adjacency = adjacency
	g.posIndex = posIndex

	b.ClearDirty()
	return nil
}

// neighbourAcceptsEntry reports whether node declares fromDir among its
// resolved entry directions.
func neighbourAcceptsEntry(node Node, fromDir grid.Direction) bool {
	for _, d := range node.Entry {
		if d == fromDir {
			return true
		}
	}
	return false
}

// resolveNode rotates def's socket template by p.Rotation and attaches the
// ramp trig and fingerprint for cell p.Cell.
func resolveNode(trig slopeTrig, p Placement, def PartDef) Node {
	entry := rotateDirections(def.Sockets.Entry, p.Rotation)
	exit := rotateDirections(def.Sockets.Exit, p.Rotation)

	n := Node{
		Cell:     p.Cell,
		Part:     p.Part,
		Rotation: p.Rotation,
		Entry:    entry,
		Exit:     exit,
		IsRamp:   def.Sockets.Ramp,
	}
	if n.IsRamp {
		n.RampSin = trig.sin
		n.RampCos = trig.cos
	}
	n.fingerprint = socketFingerprint(p.Cell, entry, exit, p.Rotation, n.IsRamp)
	return n
}

func rotateDirections(dirs []grid.Direction, rot grid.Rotation) []grid.Direction {
	if len(dirs) == 0 {
		return nil
	}
	out := make([]grid.Direction, len(dirs))
	for i, d := range dirs {
		out[i] = rot.Apply(d)
	}
	return out
}
