package board

import (
	"github.com/google/uuid"

	"github.com/marbleforge/trackengine/engine/grid"
)

// StandardCatalog builds the baseline part catalog a headless run driver
// or test harness can load a board exchange blob against without having
// to hand-author a PartDef list: one connector per geometry kind and one
// module per kind, each in its canonical (pre-rotation) orientation.
// The track graph applies the placement's own Rotation on top of these
// sockets, so a single "straight" connector serves every axis-aligned
// orientation a board asks for.
func StandardCatalog() *Catalog {
	return NewCatalog([]PartDef{
		{
			ID:        uuid.New(),
			Name:      "connector.straight",
			Kind:      KindConnector,
			Connector: ConnectorStraight,
			Sockets: SocketTemplate{
				Entry: []grid.Direction{grid.NegX},
				Exit:  []grid.Direction{grid.PosX},
			},
		},
		{
			ID:        uuid.New(),
			Name:      "connector.curve",
			Kind:      KindConnector,
			Connector: ConnectorCurve,
			Sockets: SocketTemplate{
				Entry: []grid.Direction{grid.NegX},
				Exit:  []grid.Direction{grid.PosZ},
			},
		},
		{
			ID:        uuid.New(),
			Name:      "connector.ramp",
			Kind:      KindConnector,
			Connector: ConnectorRamp,
			Sockets: SocketTemplate{
				Entry: []grid.Direction{grid.NegX},
				Exit:  []grid.Direction{grid.PosX},
				Ramp:  true,
			},
		},
		{
			ID:        uuid.New(),
			Name:      "connector.spiral",
			Kind:      KindConnector,
			Connector: ConnectorSpiral,
			Sockets: SocketTemplate{
				Entry: []grid.Direction{grid.NegX},
				Exit:  []grid.Direction{grid.PosY},
				Ramp:  true,
			},
		},
		{
			ID:              uuid.New(),
			Name:            "module.splitter",
			Kind:            KindModule,
			Module:          ModuleSplitter,
			MaxUpgradeLevel: 1,
			Sockets: SocketTemplate{
				Entry: []grid.Direction{grid.NegX},
				Exit:  []grid.Direction{grid.PosX, grid.PosZ},
			},
		},
		{
			ID:              uuid.New(),
			Name:            "module.collector",
			Kind:            KindModule,
			Module:          ModuleCollector,
			MaxUpgradeLevel: 2,
			Sockets: SocketTemplate{
				Entry: []grid.Direction{grid.NegX},
				Exit:  []grid.Direction{grid.PosX},
			},
		},
		{
			ID:              uuid.New(),
			Name:            "module.lift",
			Kind:            KindModule,
			Module:          ModuleLift,
			MaxUpgradeLevel: 1,
			Sockets: SocketTemplate{
				Entry: []grid.Direction{grid.NegX},
				Exit:  []grid.Direction{grid.PosY},
			},
		},
		{
			ID:              uuid.New(),
			Name:            "module.cannon",
			Kind:            KindModule,
			Module:          ModuleCannon,
			MaxUpgradeLevel: 3,
			Sockets: SocketTemplate{
				Entry: []grid.Direction{grid.NegX},
				Exit:  []grid.Direction{grid.PosX},
			},
		},
		{
			ID:     uuid.New(),
			Name:   "module.gate",
			Kind:   KindModule,
			Module: ModuleGate,
			Sockets: SocketTemplate{
				Entry: []grid.Direction{grid.NegX},
				Exit:  []grid.Direction{grid.PosX},
			},
		},
	})
}
