// Command marblesim runs the marble-track engine headlessly from a saved
// board file, driving it for a fixed number of ticks (or until the wall
// clock says to stop) and logging periodic diagnostics.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml"

	"github.com/marbleforge/trackengine/engine"
	"github.com/marbleforge/trackengine/engine/board"
	"github.com/marbleforge/trackengine/engine/fixed"
)

// runConfig is the TOML-encoded run configuration, separate from the board
// exchange blob: it tunes the engine itself rather than describing a track.
type runConfig struct {
	TickHz             int `toml:"tick_hz"`
	MaxOverrunTicks    int `toml:"max_overrun_ticks"`
	RingCapacity       int `toml:"ring_capacity"`
	MaxPlacements      int `toml:"max_placements"`
	IntegrationWorkers int `toml:"integration_workers"`

	// Gravity, Friction and DefaultSpeedCap are given as [numerator,
	// denominator] pairs rather than floats, the same rational-literal
	// discipline fixed.FromRat requires everywhere else in the engine so a
	// run config can't silently introduce a non-reproducible value.
	Gravity         [2]int64 `toml:"gravity"`
	Friction        [2]int64 `toml:"friction"`
	DefaultSpeedCap [2]int64 `toml:"default_speed_cap"`
}

func loadRunConfig(path string) (runConfig, error) {
	var rc runConfig
	if path == "" {
		return rc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rc, nil
		}
		return rc, fmt.Errorf("read run config: %w", err)
	}
	if err := toml.Unmarshal(data, &rc); err != nil {
		return rc, fmt.Errorf("decode run config: %w", err)
	}
	return rc, nil
}

func (rc runConfig) toEngineConfig(log *slog.Logger, cat *board.Catalog) engine.Config {
	conf := engine.Config{
		Logger:             log,
		Catalog:            cat,
		TickHz:             rc.TickHz,
		MaxOverrunTicks:    rc.MaxOverrunTicks,
		RingCapacity:       rc.RingCapacity,
		MaxPlacements:      rc.MaxPlacements,
		IntegrationWorkers: rc.IntegrationWorkers,
	}
	if rc.Gravity[1] != 0 {
		conf.Gravity = fixed.FromRat(rc.Gravity[0], rc.Gravity[1])
	}
	if rc.Friction[1] != 0 {
		conf.Friction = fixed.FromRat(rc.Friction[0], rc.Friction[1])
	}
	if rc.DefaultSpeedCap[1] != 0 {
		conf.DefaultSpeedCap = fixed.FromRat(rc.DefaultSpeedCap[0], rc.DefaultSpeedCap[1])
	}
	return conf
}

func main() {
	boardPath := flag.String("board", "", "Path to a board exchange JSON file (required)")
	confPath := flag.String("config", "", "Path to a TOML run config (optional, defaults applied otherwise)")
	ticks := flag.Int64("ticks", 0, "Number of ticks to run before exiting; 0 runs until -duration elapses")
	duration := flag.Duration("duration", 10*time.Second, "Wall-clock duration to run when -ticks is 0")
	reportEvery := flag.Int64("report-every", 120, "Log a diagnostics summary every N ticks")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *boardPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: marblesim -board <path-to-board.json> [-config run.toml] [-ticks N | -duration 10s]")
		os.Exit(1)
	}

	rc, err := loadRunConfig(*confPath)
	if err != nil {
		log.Error("run config", "err", err)
		os.Exit(1)
	}

	cat := board.StandardCatalog()
	e := rc.toEngineConfig(log, cat).New()

	blob, err := os.ReadFile(*boardPath)
	if err != nil {
		log.Error("read board", "err", err)
		os.Exit(1)
	}
	if _, err := e.LoadBoard(blob); err != nil {
		log.Error("load board", "err", err)
		os.Exit(1)
	}

	log.Info("loaded board", "path", *boardPath, "placements", len(e.Board().Placements()))

	if *ticks > 0 {
		runFixedTicks(e, log, *ticks, *reportEvery)
		return
	}
	runForDuration(e, log, *duration, *reportEvery)
}

func runFixedTicks(e *engine.Engine, log *slog.Logger, ticks, reportEvery int64) {
	for e.Tick() < ticks {
		e.Step()
		maybeReport(e, log, reportEvery)
		if f := e.Faulted(); f != nil {
			log.Error("engine faulted, stopping", "err", f.Error())
			return
		}
	}
}

func runForDuration(e *engine.Engine, log *slog.Logger, d time.Duration, reportEvery int64) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		e.Step()
		maybeReport(e, log, reportEvery)
		if f := e.Faulted(); f != nil {
			log.Error("engine faulted, stopping", "err", f.Error())
			return
		}
	}
}

func maybeReport(e *engine.Engine, log *slog.Logger, every int64) {
	if every <= 0 || e.Tick()%every != 0 {
		return
	}
	snap := e.Snapshot()
	if snap == nil {
		return
	}
	log.Info("tick report",
		"tick", snap.Tick,
		"marbles", len(snap.Marbles),
		"collisions", snap.Diagnostics.Collisions,
		"killed", snap.Diagnostics.MarblesKilled,
		"dropped_interactions", snap.Diagnostics.InteractionsDropped,
	)
}
