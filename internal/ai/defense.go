package ai

import (
	"math"
	"time"

	"github.com/hearthland/stratagem/pkg/rts"
)

// onAttackAlert is the immediate reaction to an attack notification: record
// where and when, redirect nearby idle military onto the attacker, and pull
// nearby idle workers into shelter.
func (c *Controller) onAttackAlert(pos rts.Position, now time.Duration) {
	ctx := c.ctx
	ctx.UnderAttack = true
	ctx.LastAttackPos = pos
	ctx.LastAttackTime = now

	var defenders, civilians []rts.EntityID
	for _, e := range c.world.EntitiesInCircle(pos, ctx.Params.DefenseReactionRadius) {
		if e.Owner != ctx.Player || e.Kind != rts.KindUnit || !e.Idle {
			continue
		}
		if e.Military {
			defenders = append(defenders, e.ID)
		} else {
			civilians = append(civilians, e.ID)
		}
	}

	if len(defenders) > 0 {
		c.sink.Submit(ctx.Player, rts.AttackMoveCommand{Units: defenders, Target: pos})
	}
	if len(civilians) > 0 {
		if shelter, ok := c.nearestSafeStructure(pos); ok {
			c.sink.Submit(ctx.Player, rts.MoveCommand{Units: civilians, Target: shelter.Pos})
		}
	}

	c.log.Info().
		Float64("x", pos.X).
		Float64("y", pos.Y).
		Int("defenders", len(defenders)).
		Int("sheltered", len(civilians)).
		Msg("Under attack")
}

// nearestSafeStructure returns the own building farthest from the threat
// direction within the base area, preferring the town center.
func (c *Controller) nearestSafeStructure(threat rts.Position) (rts.EntityInfo, bool) {
	var best rts.EntityInfo
	bestScore := -1.0
	for _, e := range c.world.EntitiesOf(c.ctx.Player, rts.KindBuilding) {
		score := e.Pos.DistanceTo(threat)
		if def, ok := c.world.Catalog().Building(e.Type); ok && def.Class == rts.ClassTownCenter {
			score += 1000
		}
		if score > bestScore {
			bestScore = score
			best = e
		}
	}
	return best, bestScore >= 0
}

// tickDefense expires the under-attack flag, plans perimeter towers scaled
// by phase, threat, and the defensiveness trait, optionally plans a one-time
// perimeter wall, and tasks idle workers with repairs in quiet periods.
func (c *Controller) tickDefense(now time.Duration) {
	ctx := c.ctx

	if ctx.UnderAttack && now-ctx.LastAttackTime > ctx.Params.UnderAttackDecay {
		ctx.UnderAttack = false
		c.log.Debug().Msg("Attack pressure cleared")
	}

	c.planTowers()
	c.maybePlanWall()

	if !ctx.UnderAttack {
		c.maybeRepair()
	}
}

// desiredTowerCount scales the perimeter tower ring with phase and threat,
// shaped by defensiveness.
func (c *Controller) desiredTowerCount() int {
	ctx := c.ctx
	base := ctx.Params.TowerBaseCount + int(ctx.Phase)
	if ctx.UnderAttack {
		base += 2
	}
	scaled := float64(base) * (0.5 + ctx.Personality.Defensiveness)
	return int(math.Round(scaled))
}

// planTowers queues watchtowers at evenly spaced perimeter points until the
// standing plus queued count reaches the desired ring size.
func (c *Controller) planTowers() {
	ctx := c.ctx

	standing := len(c.world.EntitiesOfType(ctx.Player, "watchtower"))
	queued := 0
	for _, t := range ctx.BuildQueue.tasks {
		if t.Building == "watchtower" {
			queued++
		}
	}

	want := c.desiredTowerCount()
	missing := want - standing - queued
	if missing <= 0 {
		return
	}

	priority := 2
	if ctx.UnderAttack {
		priority = 3
	}
	points := ringPoints(ctx.BasePos, ctx.Params.PerimeterRadius, want)
	for i := 0; i < missing && i < len(points); i++ {
		p := points[(standing+queued+i)%len(points)]
		c.QueueBuilding("watchtower", priority, &p)
	}
	c.log.Debug().Int("standing", standing).Int("queued", queued+missing).Int("want", want).Msg("Tower plan updated")
}

// maybePlanWall queues a full perimeter wall once, for strongly defensive
// personalities past the early game.
func (c *Controller) maybePlanWall() {
	ctx := c.ctx
	if ctx.WallPlanned || ctx.Phase == PhaseEarly {
		return
	}
	if ctx.Personality.Defensiveness <= ctx.Params.WallDefensivenessThreshold {
		return
	}

	points := ringPoints(ctx.BasePos, ctx.Params.PerimeterRadius+2, 16)
	for _, p := range points {
		site := p
		c.QueueBuilding("wall", 1, &site)
	}
	ctx.WallPlanned = true
	c.log.Info().Int("segments", len(points)).Msg("Perimeter wall planned")
}

// maybeRepair sends one idle worker to the most damaged building near the
// base.
func (c *Controller) maybeRepair() {
	ctx := c.ctx

	var worst rts.EntityInfo
	worstFrac := 0.8 // only bother below 80% health
	for _, e := range c.world.EntitiesOf(ctx.Player, rts.KindBuilding) {
		if f := e.HealthFraction(); f < worstFrac {
			worstFrac = f
			worst = e
		}
	}
	if worst.ID == 0 {
		return
	}

	workers := c.idleWorkers(1)
	if len(workers) == 0 {
		return
	}
	c.sink.Submit(ctx.Player, rts.RepairCommand{Units: workers, Structure: worst.ID})
	c.log.Debug().Uint64("structure", uint64(worst.ID)).Float64("health", worstFrac).Msg("Repair tasked")
}
