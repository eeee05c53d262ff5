package engine

import (
	"context"
	"math"
	"time"
)

// tpsSampleSize and tpsWarningThreshold mirror the teacher's world ticker:
// TPS is reported as a rolling average over a window of samples rather than
// a single noisy interval, and a warning fires once per sustained dip
// rather than once per slow tick.
const (
	tpsSampleSize       = 20
	tpsWarningThreshold = 0.95
)

// Run drives the engine at Config.TickHz on a wall-clock ticker until ctx
// is cancelled, the same tickLoop/tick split the teacher's world ticker
// uses: a time.Ticker paces real ticks, and a rolling average of observed
// inter-tick durations is sampled every tpsSampleSize ticks to detect the
// loop falling behind. Run calls Step exactly once per ticker fire; it
// never catches up by calling Step more than once per fire (RunUntil is
// the tool for bulk catch-up, e.g. replaying a recorded session).
func (e *Engine) Run(ctx context.Context) {
	interval := time.Second / time.Duration(e.conf.TickHz)
	tc := time.NewTicker(interval)
	defer tc.Stop()

	lastTick := time.Now()
	var (
		durationSum time.Duration
		ticksCount  int
		warned      bool
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-tc.C:
			now := time.Now()
			duration := now.Sub(lastTick)
			lastTick = now
			if duration > 0 {
				durationSum += duration
				ticksCount++
				if ticksCount >= tpsSampleSize {
					avg := durationSum / time.Duration(ticksCount)
					if avg > 0 {
						tps := 1.0 / avg.Seconds()
						e.tps.Store(math.Float64bits(tps))
						threshold := float64(e.conf.TickHz) * tpsWarningThreshold
						if tps < threshold {
							if !warned {
								e.log.Warn("tick rate dropped below threshold", "tps", tps, "target", e.conf.TickHz)
								warned = true
							}
						} else if warned {
							warned = false
						}
					} else {
						e.tps.Store(0)
					}
					durationSum = 0
					ticksCount = 0
				}
			}
			e.Step()
		}
	}
}

// TPS returns the most recently sampled tick rate, or 0 before the first
// full sampling window has elapsed.
func (e *Engine) TPS() float64 {
	bits := e.tps.Load()
	if bits == 0 {
		return 0
	}
	return math.Float64frombits(bits)
}
