package engine

import (
	"fmt"

	"github.com/marbleforge/trackengine/engine/grid"
)

// InvalidPlacementError surfaces a rejected board edit, per spec.md §6's
// InvalidPlacement{reason}.
type InvalidPlacementError struct {
	Cell   grid.Cell
	Reason string
}

func (e *InvalidPlacementError) Error() string {
	return fmt.Sprintf("engine: invalid placement at %v: %s", e.Cell, e.Reason)
}

// AdjacencyViolationError surfaces an Alternation-invariant rejection,
// naming every cell involved in the contradiction.
type AdjacencyViolationError struct {
	Cells []grid.Cell
}

func (e *AdjacencyViolationError) Error() string {
	return fmt.Sprintf("engine: adjacency violation at %v", e.Cells)
}

// OutOfBoundsError surfaces a placement or cell reference outside the
// ±16384 grid bound.
type OutOfBoundsError struct {
	Cell grid.Cell
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("engine: cell %v out of bounds", e.Cell)
}

// GraphInconsistentError surfaces a track-graph rebuild contradiction: a
// fatal fault that quiesces the engine until the board is repaired.
type GraphInconsistentError struct {
	Cell grid.Cell
}

func (e *GraphInconsistentError) Error() string {
	return fmt.Sprintf("engine: graph inconsistent at %v", e.Cell)
}

// InteractionDroppedError reports an interaction-ring overflow drop. It is
// transient and observable only through diagnostics; the engine never
// returns it to a caller synchronously.
type InteractionDroppedError struct {
	Cell   grid.Cell
	Action uint8
}

func (e *InteractionDroppedError) Error() string {
	return fmt.Sprintf("engine: interaction dropped at %v (action %d)", e.Cell, e.Action)
}

// OverrunError reports that RunUntil was asked to advance more than
// Config.MaxOverrunTicks ticks; the excess is dropped rather than simulated.
type OverrunError struct {
	Ticks int
}

func (e *OverrunError) Error() string {
	return fmt.Sprintf("engine: overrun, dropped %d ticks", e.Ticks)
}

// FaultedError is the engine's terminal state after a fatal fault
// (spec.md §7): the tick that produced it was not partially applied, T did
// not advance, and only Reset or LoadBoard recovers.
type FaultedError struct {
	Cause error
}

func (e *FaultedError) Error() string {
	return fmt.Sprintf("engine: faulted: %v", e.Cause)
}

func (e *FaultedError) Unwrap() error { return e.Cause }
