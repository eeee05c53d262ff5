package engine

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/marbleforge/trackengine/engine/board"
	"github.com/marbleforge/trackengine/engine/fixed"
)

// Config holds the engine's tunable, immutable parameters. The zero value
// is usable; withDefaults fills in spec.md §6's bit-exact constants for
// anything left unset, the same defaulting idiom the redstone subsystem's
// Config uses. There are no process-wide singletons: every dependency the
// engine needs is threaded in through Config at construction.
type Config struct {
	// Logger receives structured engine diagnostics. Defaults to an slog
	// text logger over stderr.
	Logger *slog.Logger

	// Catalog is the immutable part catalog the board validates
	// placements against. Required: New panics without one, matching
	// the teacher's "scheduler requires router" constructor guard.
	Catalog *board.Catalog

	// TickHz is the fixed simulation rate. Default 120, per spec.md's
	// TICK_HZ constant.
	TickHz int

	// MaxOverrunTicks bounds how many ticks a single RunUntil call runs
	// back-to-back; a larger backlog is dropped rather than simulated
	// (spec.md §5's overrun policy).
	MaxOverrunTicks int

	// RingCapacity sizes the interaction ring (C6).
	RingCapacity int

	// MaxPlacements bounds the number of placements load_board accepts,
	// per spec.md §6 (default 32768).
	MaxPlacements int

	// Gravity and Friction are the bit-exact G and μ constants (cells/s²)
	// from spec.md §6, stored once as F so the hot loop never recomputes
	// them.
	Gravity  fixed.F
	Friction fixed.F

	// DefaultSpeedCap is vmax for cells the track graph did not
	// upgrade-override (spec.md default: 5 cells/s).
	DefaultSpeedCap fixed.F

	// IntegrationWorkers bounds how many goroutines Phase B fans out
	// across disjoint marble id ranges. Default: runtime.GOMAXPROCS(0).
	IntegrationWorkers int
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if c.TickHz <= 0 {
		c.TickHz = 120
	}
	if c.MaxOverrunTicks <= 0 {
		c.MaxOverrunTicks = 8
	}
	if c.RingCapacity <= 0 {
		c.RingCapacity = 4096
	}
	if c.MaxPlacements <= 0 {
		c.MaxPlacements = 32768
	}
	if c.Gravity == 0 {
		c.Gravity = fixed.FromRat(1, 10)
	}
	if c.Friction == 0 {
		c.Friction = fixed.FromRat(1, 20)
	}
	if c.DefaultSpeedCap == 0 {
		c.DefaultSpeedCap = fixed.FromInt(5)
	}
	if c.IntegrationWorkers <= 0 {
		c.IntegrationWorkers = runtime.GOMAXPROCS(0)
	}
	return c
}

// New builds an Engine from the configuration. Catalog must be set.
func (c Config) New() *Engine {
	if c.Catalog == nil {
		panic("engine: Config requires a Catalog")
	}
	c = c.withDefaults()
	return newEngine(c)
}
