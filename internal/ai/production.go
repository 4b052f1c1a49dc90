package ai

import (
	"math"
	"sort"
	"time"

	"github.com/hearthland/stratagem/pkg/rts"
)

// militaryRatioTarget returns the desired military share of total
// population for a stage.
func militaryRatioTarget(phase GamePhase) float64 {
	switch phase {
	case PhaseMid:
		return 0.4
	case PhaseLate:
		return 0.6
	default:
		return 0.2
	}
}

// tickProduction decides what to train and what to research this tick.
func (c *Controller) tickProduction(now time.Duration) {
	c.maybeTrainWorker()
	c.maybeTrainMilitary()
	c.maybeResearch()
}

// desiredWorkerCount grows with age so the economy keeps pace with unlocks.
func (c *Controller) desiredWorkerCount() int {
	return 10 + 5*c.world.Age(c.ctx.Player)
}

// maybeTrainWorker keeps villager production running while the worker count
// is under the desired size and population room allows.
func (c *Controller) maybeTrainWorker() {
	ctx := c.ctx
	cur, max := c.world.Population(ctx.Player)
	if cur >= max {
		return
	}

	workers := 0
	for _, e := range c.world.EntitiesOf(ctx.Player, rts.KindUnit) {
		if !e.Military {
			workers++
		}
	}
	if workers >= c.desiredWorkerCount() {
		return
	}

	def, ok := c.world.Catalog().Unit("villager")
	if !ok || !c.world.CanAfford(ctx.Player, def.Cost) {
		return
	}
	tcs := c.world.EntitiesOfType(ctx.Player, def.TrainedAt)
	if len(tcs) == 0 {
		return
	}
	c.sink.Submit(ctx.Player, rts.TrainCommand{Building: tcs[0].ID, UnitType: def.Type})
}

// maybeTrainMilitary trains one unit chosen by weighted random selection
// over personality-scored candidates, when the army is under its target
// share of the population.
func (c *Controller) maybeTrainMilitary() {
	ctx := c.ctx
	cur, max := c.world.Population(ctx.Player)
	if cur <= 0 || cur >= max {
		return
	}

	military := 0
	for _, e := range c.world.EntitiesOf(ctx.Player, rts.KindUnit) {
		if e.Military {
			military++
		}
	}

	target := militaryRatioTarget(ctx.Phase) * (0.8 + ctx.Personality.Aggressiveness*0.4)
	if ctx.UnderAttack {
		target += 0.2
	}
	ratio := float64(military) / float64(cur)
	if ratio >= target && military >= 10 {
		return
	}

	type candidate struct {
		def      rts.UnitDef
		building rts.EntityID
	}
	var candidates []candidate
	var weights []float64

	age := c.world.Age(ctx.Player)
	for _, def := range sortedUnitDefs(c.world.Catalog()) {
		if !def.Military || def.Age > age {
			continue
		}
		if !c.world.CanAfford(ctx.Player, def.Cost) {
			continue
		}
		producers := c.world.EntitiesOfType(ctx.Player, def.TrainedAt)
		if len(producers) == 0 {
			continue
		}
		pref := ctx.Personality.UnitPreference[def.Type]
		if pref <= 0 {
			pref = 1
		}
		candidates = append(candidates, candidate{def: def, building: producers[0].ID})
		weights = append(weights, jitter(c.rng, pref, ctx.Params.RandomnessFactor))
	}

	pick := weightedChoice(c.rng, weights)
	if pick < 0 {
		// Nothing trainable: make sure a basic production building is coming.
		c.queueBuildingOnce("barracks", 3)
		return
	}

	chosen := candidates[pick]
	c.sink.Submit(ctx.Player, rts.TrainCommand{Building: chosen.building, UnitType: chosen.def.Type})
	c.log.Debug().Str("unit", chosen.def.Type).Float64("ratio", ratio).Float64("target", target).Msg("Training")
}

// scoreTech computes the research desirability of one technology. The only
// non-determinism is the explicit jitter term applied by the caller.
func (c *Controller) scoreTech(def rts.TechDef) float64 {
	ctx := c.ctx

	var base float64
	switch def.Category {
	case rts.TechMilitary:
		base = ctx.Personality.Aggressiveness
		if ctx.UnderAttack {
			base *= 1.5
		}
	case rts.TechEconomy:
		base = ctx.Personality.EconomyFocus
		if ctx.Phase == PhaseEarly {
			base *= 1.5
		}
	default:
		base = 0.5
	}
	base *= ctx.Personality.TechPreference[def.Category]

	for _, eff := range def.Effects {
		switch eff.Kind {
		case rts.EffectUnitBoost:
			if ctx.Personality.UnitPreference[eff.Unit] > 1.0 {
				base *= 1.25
			}
		case rts.EffectGatherRate:
			base *= 1.3
		case rts.EffectBuildSpeed:
			base *= 1 + ctx.Personality.ExpandingTendency*0.3
		case rts.EffectMoveSpeed:
			base *= 1.2
		}
	}

	// Penalize expensive research so cheap improvements land first.
	total := def.Cost.Total()
	if total > 0 {
		base /= math.Sqrt(float64(total) / 100)
	}
	return base
}

// maybeResearch queues the highest-scoring affordable technology, at most
// one in flight at a time.
func (c *Controller) maybeResearch() {
	ctx := c.ctx
	if ctx.PendingTech != "" {
		return
	}

	age := c.world.Age(ctx.Player)
	bestScore := 0.0
	var best *rts.TechDef
	var bestBuilding rts.EntityID

	catalog := c.world.Catalog()
	for _, id := range sortedTechIDs(catalog) {
		def := catalog.Techs[id]
		if ctx.ResearchedTechs[def.ID] || def.Age > age {
			continue
		}
		if !c.world.CanAfford(ctx.Player, def.Cost) {
			continue
		}
		hosts := c.world.EntitiesOfType(ctx.Player, def.ResearchedAt)
		if len(hosts) == 0 {
			continue
		}

		score := jitter(c.rng, c.scoreTech(def), ctx.Params.RandomnessFactor)
		if score > bestScore {
			bestScore = score
			d := def
			best = &d
			bestBuilding = hosts[0].ID
		}
	}

	if best == nil {
		return
	}
	ctx.PendingTech = best.ID
	c.sink.Submit(ctx.Player, rts.ResearchCommand{Building: bestBuilding, Tech: best.ID})
	c.log.Debug().Str("tech", best.ID).Float64("score", bestScore).Msg("Research queued")
}

// sortedTechIDs returns catalog tech ids in deterministic order.
func sortedTechIDs(catalog *rts.Catalog) []string {
	out := make([]string, 0, len(catalog.Techs))
	for id := range catalog.Techs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
