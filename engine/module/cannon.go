package module

import "github.com/marbleforge/trackengine/engine/grid"

// dispatchCannon implements spec.md §4.7: a cannon only fires once it has
// been armed by an ActionArm interaction (Phase A); with cooldown at zero
// and a marble resident on its inbound cell, it imparts Force to that
// marble's velocity, clears Armed and resets cooldown. Arming while
// cooldown is still counting down, or with no marble present yet, simply
// leaves Armed set for a later tick to consume. A cannon cannot re-impart
// force to a marble still occupying its cell before cooldown clears (Open
// Question (b)).
func dispatchCannon(ctx *Context, cell grid.Cell, s *CannonState) {
	if s.CooldownTicksRemaining > 0 {
		s.CooldownTicksRemaining--
		return
	}
	if !s.Armed {
		return
	}

	id, ok := residentMarble(ctx, cell)
	if !ok {
		return
	}

	v := ctx.Marbles.Velocity(id)
	ctx.Marbles.SetVelocity(id, v.Add(s.Force))
	s.Armed = false
	s.CooldownTicksRemaining = defaultCannonCooldown
	ctx.Counts.CannonFires++
}

// defaultCannonCooldown is the recharge period, in ticks, every cannon
// uses after firing; upgrade level does not change it.
const defaultCannonCooldown = 30
