package ai

import (
	"time"

	"github.com/hearthland/stratagem/pkg/rts"
)

// Minimum population before a worker may be pulled off the economy to scout.
const scoutWorkerMinPop = 8

// tickScout drives exploration. In the early phase one dedicated unit walks
// a four-point patrol loop around the base; later, small parties of idle
// military are sent toward strategic points.
func (c *Controller) tickScout(now time.Duration) {
	if c.ctx.Phase == PhaseEarly {
		c.patrolScout()
		return
	}
	c.ctx.ScoutUnit = 0
	c.scoutParties()
}

// patrolScout keeps one unit cycling the patrol loop, assigning a
// replacement when the previous scout died.
func (c *Controller) patrolScout() {
	ctx := c.ctx

	if len(ctx.ScoutWaypoints) == 0 {
		r := ctx.Params.PerimeterRadius * 2
		ctx.ScoutWaypoints = []rts.Position{
			ctx.BasePos.Add(0, -r),
			ctx.BasePos.Add(r, 0),
			ctx.BasePos.Add(0, r),
			ctx.BasePos.Add(-r, 0),
		}
	}

	scout, ok := c.world.EntityByID(ctx.ScoutUnit)
	if !ok {
		id, found := c.pickScout()
		if !found {
			return
		}
		ctx.ScoutUnit = id
		ctx.ScoutLeg = 0
		c.sink.Submit(ctx.Player, rts.MoveCommand{Units: []rts.EntityID{id}, Target: ctx.ScoutWaypoints[0]})
		return
	}

	wp := ctx.ScoutWaypoints[ctx.ScoutLeg]
	if scout.Pos.DistanceTo(wp) > 3 {
		if scout.Idle {
			// Nudge a stalled scout back onto the loop.
			c.sink.Submit(ctx.Player, rts.MoveCommand{Units: []rts.EntityID{scout.ID}, Target: wp})
		}
		return
	}
	ctx.ScoutLeg = (ctx.ScoutLeg + 1) % len(ctx.ScoutWaypoints)
	c.sink.Submit(ctx.Player, rts.MoveCommand{Units: []rts.EntityID{scout.ID}, Target: ctx.ScoutWaypoints[ctx.ScoutLeg]})
}

// pickScout prefers an idle military unit; past a minimum population it
// repurposes one worker instead.
func (c *Controller) pickScout() (rts.EntityID, bool) {
	var worker rts.EntityID
	pop, _ := c.world.Population(c.ctx.Player)

	for _, e := range c.world.EntitiesOf(c.ctx.Player, rts.KindUnit) {
		if !e.Idle {
			continue
		}
		if e.Military {
			if c.ctx.GroupOf(e.ID) == nil {
				return e.ID, true
			}
			continue
		}
		if worker == 0 && pop >= scoutWorkerMinPop {
			worker = e.ID
		}
	}
	return worker, worker != 0
}

// scoutParties sends up to two ungrouped idle military units toward a
// strategic point: the richest known distant resource node, or an
// unexplored direction.
func (c *Controller) scoutParties() {
	ctx := c.ctx

	var party []rts.EntityID
	for _, e := range c.world.EntitiesOf(ctx.Player, rts.KindUnit) {
		if !e.Military || !e.Idle || ctx.GroupOf(e.ID) != nil {
			continue
		}
		party = append(party, e.ID)
		if len(party) == 2 {
			break
		}
	}
	if len(party) == 0 {
		return
	}

	target, ok := c.strategicPoint()
	if !ok {
		target = c.explorationTarget()
	}
	c.sink.Submit(ctx.Player, rts.MoveCommand{Units: party, Target: target})
}

// strategicPoint returns the most valuable distant known resource node.
func (c *Controller) strategicPoint() (rts.Position, bool) {
	ctx := c.ctx
	best := rts.Position{}
	bestValue := 0.0

	for _, kind := range []rts.ResourceKind{rts.Gold, rts.Iron, rts.Stone} {
		for _, n := range ctx.ResourceKnowledge[kind] {
			if n.Distance < ctx.Params.PerimeterRadius {
				continue
			}
			v := float64(n.Amount) / (1 + n.Distance/100)
			if v > bestValue {
				bestValue = v
				best = n.Pos
			}
		}
	}
	return best, bestValue > 0
}
