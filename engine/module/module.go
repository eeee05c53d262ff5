// Package module implements the closed set of per-cell module state
// machines (C8): splitter, collector, lift, cannon and gate. Each variant
// is its own concrete type; Dispatch in dispatch.go is the single switch
// point Phase D uses to drive them, so adding a variant only ever touches
// this package and dispatch.go's switch, never the tick pipeline.
package module

import (
	"github.com/marbleforge/trackengine/engine/board"
	"github.com/marbleforge/trackengine/engine/fixed"
	"github.com/marbleforge/trackengine/engine/marble"
)

// State is implemented by every module variant. Kind reports which
// concrete type a State is without a type assertion, for logging and
// snapshot purposes; Dispatch still switches on the concrete type.
type State interface {
	Kind() board.ModuleKind
}

// SplitterExit names a splitter's two output sockets.
type SplitterExit uint8

const (
	ExitA SplitterExit = iota
	ExitB
)

func (e SplitterExit) other() SplitterExit {
	if e == ExitA {
		return ExitB
	}
	return ExitA
}

// SplitterState alternates marbles between two exits, round-robin, unless
// a pending toggle from an interaction overrides the next release.
type SplitterState struct {
	CurrentExit   SplitterExit
	PendingToggle bool
}

func (*SplitterState) Kind() board.ModuleKind { return board.ModuleSplitter }

// CollectorMode selects a Collector's per-tick drain behaviour. Changing
// Mode/BurstSize mutates the existing state value and never replaces the
// queue, so queue order survives a mode change.
type CollectorMode uint8

const (
	CollectorBasic CollectorMode = iota
	CollectorFIFO
	CollectorBurst
)

// CollectorState holds a FIFO queue of resident marble ids awaiting
// release, drained according to Mode.
type CollectorState struct {
	Queue     []marble.ID
	Mode      CollectorMode
	BurstSize uint16
}

func (*CollectorState) Kind() board.ModuleKind { return board.ModuleCollector }

// LiftState tracks whether a lift is actively advancing its queued
// marbles; StepCursor counts the marbles advanced since the last reset.
type LiftState struct {
	Running    bool
	StepCursor uint16
	Queue      []marble.ID
}

func (*LiftState) Kind() board.ModuleKind { return board.ModuleLift }

// CannonState tracks a cooldown counter and the fixed force a cannon
// imparts to an arriving marble once cooldown reaches zero.
type CannonState struct {
	CooldownTicksRemaining uint16
	Force                  fixed.F
	Armed                  bool
}

func (*CannonState) Kind() board.ModuleKind { return board.ModuleCannon }

// GateState is a simple open/closed latch; closed gates reject entry.
type GateState struct {
	Open bool
}

func (*GateState) Kind() board.ModuleKind { return board.ModuleGate }

// NewState builds the zero-value state for kind, used the first time a
// module cell is encountered after a board load or Place.
func NewState(kind board.ModuleKind) State {
	switch kind {
	case board.ModuleSplitter:
		return &SplitterState{CurrentExit: ExitA}
	case board.ModuleCollector:
		return &CollectorState{Mode: CollectorBasic}
	case board.ModuleLift:
		return &LiftState{}
	case board.ModuleCannon:
		return &CannonState{Force: fixed.FromInt(1)}
	case board.ModuleGate:
		return &GateState{Open: true}
	default:
		return nil
	}
}
