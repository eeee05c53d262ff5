package board

import (
	"github.com/google/uuid"

	"github.com/marbleforge/trackengine/engine/grid"
)

// PartID identifies a catalog entry. The board exchange format names
// parts by string id; the catalog maps that string to a stable PartID
// (a UUID) so the rest of the engine never compares part identity by
// string.
type PartID = uuid.UUID

// PartKind is the fundamental Module/Connector split spec.md requires.
type PartKind uint8

const (
	KindModule PartKind = iota
	KindConnector
)

// ModuleKind enumerates the closed set of module variants. Upgrade level
// parameterises a module, it never changes its ModuleKind (spec.md §9).
type ModuleKind uint8

const (
	ModuleSplitter ModuleKind = iota
	ModuleCollector
	ModuleLift
	ModuleCannon
	ModuleGate
)

func (k ModuleKind) String() string {
	switch k {
	case ModuleSplitter:
		return "splitter"
	case ModuleCollector:
		return "collector"
	case ModuleLift:
		return "lift"
	case ModuleCannon:
		return "cannon"
	case ModuleGate:
		return "gate"
	default:
		return "unknown"
	}
}

// ConnectorKind enumerates the stateless geometry variants.
type ConnectorKind uint8

const (
	ConnectorStraight ConnectorKind = iota
	ConnectorCurve
	ConnectorRamp
	ConnectorSpiral
)

// SocketTemplate declares, before rotation, which directions a part
// allows marbles to enter and exit from, plus whether it is a ramp (for
// the slope contract in spec.md §4.4).
type SocketTemplate struct {
	Entry, Exit []grid.Direction
	Ramp        bool
}

// PartDef is an immutable catalog entry describing one placeable part.
type PartDef struct {
	ID        PartID
	Name      string
	Kind      PartKind
	Module    ModuleKind
	Connector ConnectorKind
	// MaxUpgradeLevel bounds Board.Upgrade.
	MaxUpgradeLevel uint8
	Sockets         SocketTemplate
}

// Catalog is the immutable registry of placeable parts, built once at
// engine construction — the "explicit config, no singletons" pattern
// spec.md §9 calls for in place of the host framework's global assets.
type Catalog struct {
	byID   map[PartID]PartDef
	byName map[string]PartID
}

// NewCatalog builds a Catalog from the given definitions.
func NewCatalog(defs []PartDef) *Catalog {
	c := &Catalog{
		byID:   make(map[PartID]PartDef, len(defs)),
		byName: make(map[string]PartID, len(defs)),
	}
	for _, d := range defs {
		c.byID[d.ID] = d
		c.byName[d.Name] = d.ID
	}
	return c
}

// Lookup returns the definition for id.
func (c *Catalog) Lookup(id PartID) (PartDef, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// LookupByName resolves the stable PartID for a catalog entry's name, the
// string key the board exchange format uses to refer to parts (spec.md
// §6). Names are assigned once at catalog construction and never change,
// so this mapping is stable across loads.
func (c *Catalog) LookupByName(name string) (PartID, bool) {
	id, ok := c.byName[name]
	return id, ok
}
