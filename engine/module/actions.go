package module

import (
	"github.com/marbleforge/trackengine/engine/grid"
	"github.com/marbleforge/trackengine/engine/interaction"
)

// ApplyInteraction is Phase A's per-entry effect: it mutates the module at
// entry.Cell according to entry.Action. A target with no registered state,
// or an action the module's kind does not recognise, is silently ignored —
// spec.md treats races between a removed module and a queued interaction as
// a normal outcome, not a fault.
func (r *Registry) ApplyInteraction(entry interaction.Entry) {
	state, ok := r.states[entry.Cell]
	if !ok {
		return
	}
	switch s := state.(type) {
	case *SplitterState:
		if entry.Action == interaction.ActionToggle {
			s.PendingToggle = true
		}
	case *LiftState:
		switch entry.Action {
		case interaction.ActionStart:
			s.Running = true
		case interaction.ActionStop:
			s.Running = false
		}
	case *CannonState:
		if entry.Action == interaction.ActionArm {
			s.Armed = true
		}
	case *GateState:
		switch entry.Action {
		case interaction.ActionOpen:
			s.Open = true
		case interaction.ActionClose:
			s.Open = false
		}
	case *CollectorState:
		// Collectors have no interaction-driven behaviour. Their Mode is
		// set directly on the CollectorState; Board.Upgrade changes only
		// the placement's upgrade level and does not change Mode.
	}
}

// IsOpenForEntry reports whether a marble may legally enter cell given the
// module registered there. Non-module cells (and cells with no registered
// gate) are always open; Phase B consults this alongside the track graph's
// socket check when resolving whether a crossing is legal.
func (r *Registry) IsOpenForEntry(cell grid.Cell) bool {
	state, ok := r.states[cell]
	if !ok {
		return true
	}
	gate, ok := state.(*GateState)
	if !ok {
		return true
	}
	return gate.Open
}
