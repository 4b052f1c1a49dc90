package ai

import (
	"time"

	"github.com/hearthland/stratagem/pkg/rts"
)

// Phase transition thresholds. A phase is reached when ANY of its clauses
// holds; transitions never regress.
const (
	midAge        = 2
	midPopulation = 40
	midElapsed    = 15 * time.Minute

	lateAge        = 3
	latePopulation = 80
	lateElapsed    = 30 * time.Minute
)

// phaseFor classifies the game stage from age, population, and elapsed time.
func phaseFor(age, population int, elapsed time.Duration) GamePhase {
	switch {
	case age >= lateAge || population >= latePopulation || elapsed >= lateElapsed:
		return PhaseLate
	case age >= midAge || population >= midPopulation || elapsed >= midElapsed:
		return PhaseMid
	default:
		return PhaseEarly
	}
}

// tickPhase checks for a stage transition on a fixed cadence (not every
// frame, to avoid oscillating side effects). When the world has moved more
// than one stage ahead, intermediate transitions still fire in order so
// each one-time effect runs exactly once.
func (c *Controller) tickPhase(now time.Duration) {
	ctx := c.ctx
	pop, _ := c.world.Population(ctx.Player)
	target := phaseFor(c.world.Age(ctx.Player), pop, c.world.Elapsed())

	for ctx.Phase < target {
		ctx.Phase++
		c.onPhaseTransition(ctx.Phase)
	}
}

// onPhaseTransition fires the one-time strategic re-weighting for a newly
// entered stage.
func (c *Controller) onPhaseTransition(phase GamePhase) {
	ctx := c.ctx
	c.log.Info().Str("phase", phase.String()).Msg("Phase transition")

	switch phase {
	case PhaseMid:
		// Shift gathering toward the war economy.
		ctx.Params.GatherPriority[rts.Gold] *= 1.4
		ctx.Params.GatherPriority[rts.Stone] *= 1.3
		ctx.Params.GatherPriority[rts.Iron] *= 1.3
		ctx.Params.GatherPriority[rts.Food] *= 0.9

		c.queueBuildingOnce("market", 2)
		c.queueBuildingOnce("archery_range", 3)

	case PhaseLate:
		ctx.Params.GatherPriority[rts.Gold] *= 1.3
		ctx.Params.GatherPriority[rts.Iron] *= 1.4
		ctx.Params.GatherPriority[rts.Wood] *= 0.8

		c.queueBuildingOnce("stable", 3)
		c.queueBuildingOnce("workshop", 2)

		// A monumental structure is a huge resource sink; only personalities
		// comfortable with risk commit to it.
		if !ctx.MonumentPlanned && c.rng.Float64() < ctx.Personality.RiskTaking {
			if c.queueBuildingOnce("monument", 2) {
				ctx.MonumentPlanned = true
				c.log.Info().Float64("riskTaking", ctx.Personality.RiskTaking).Msg("Monument planned")
			}
		}
	}
}
