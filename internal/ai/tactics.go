package ai

import (
	"math"
	"sort"
	"time"

	"github.com/hearthland/stratagem/pkg/rts"
)

// wholeMapRadius makes a circle query cover any practical map.
const wholeMapRadius = 1 << 20

// GroupState is the lifecycle state of a tactical group.
type GroupState int

const (
	GroupForming GroupState = iota
	GroupAssembled
	GroupMoving
	GroupAttacking
	GroupRetreating
)

func (s GroupState) String() string {
	switch s {
	case GroupAssembled:
		return "assembled"
	case GroupMoving:
		return "moving"
	case GroupAttacking:
		return "attacking"
	case GroupRetreating:
		return "retreating"
	default:
		return "forming"
	}
}

// TacticalGroup is a squad of combat units advancing through a shared state
// machine: forming, assembled, moving, attacking, retreating.
type TacticalGroup struct {
	ID            int
	Members       []rts.EntityID
	State         GroupState
	AssemblyPoint rts.Position
	Formation     rts.Formation

	TargetPos    rts.Position
	TargetEntity rts.EntityID
	HasTarget    bool
}

// tickTactics is the squad manager pass: prune dead members, disband
// degenerate squads, merge fragments, form new squads from loose units, and
// advance each squad's state machine.
func (c *Controller) tickTactics(now time.Duration) {
	c.pruneGroups()
	c.mergeSmallGroups()
	c.formGroups()
	for _, g := range c.ctx.Groups {
		c.updateGroup(g)
	}
}

// pruneGroups drops dead members and disbands squads that fell below the
// survivable floor: fewer than 2 live members, or fewer than half the
// minimum group threshold.
func (c *Controller) pruneGroups() {
	ctx := c.ctx
	keep := ctx.Groups[:0]
	for _, g := range ctx.Groups {
		live := g.Members[:0]
		for _, id := range g.Members {
			if _, ok := c.world.EntityByID(id); ok {
				live = append(live, id)
			}
		}
		g.Members = live

		if len(g.Members) < 2 || float64(len(g.Members)) < float64(ctx.Params.MinGroupSize)/2 {
			c.log.Debug().Int("group", g.ID).Int("members", len(g.Members)).Msg("Squad disbanded")
			continue
		}
		keep = append(keep, g)
	}
	ctx.Groups = keep
}

// mergeSmallGroups consolidates fragments: while more than three squads
// exist and the smallest is under the minimum size, it merges into the next
// smallest.
func (c *Controller) mergeSmallGroups() {
	ctx := c.ctx
	for len(ctx.Groups) > 3 {
		sort.SliceStable(ctx.Groups, func(i, j int) bool {
			return len(ctx.Groups[i].Members) < len(ctx.Groups[j].Members)
		})
		smallest := ctx.Groups[0]
		if len(smallest.Members) >= ctx.Params.MinGroupSize {
			return
		}
		next := ctx.Groups[1]
		next.Members = append(next.Members, smallest.Members...)
		ctx.Groups = ctx.Groups[1:]
		c.log.Debug().Int("from", smallest.ID).Int("into", next.ID).Msg("Squads merged")

		// Absorbed units regroup at the surviving squad's assembly point.
		next.State = GroupForming
		c.sink.Submit(ctx.Player, rts.MoveCommand{Units: smallest.Members, Target: next.AssemblyPoint})
	}
}

// formGroups collects ungrouped idle military units into a new squad once
// enough have accumulated.
func (c *Controller) formGroups() {
	ctx := c.ctx

	var loose []rts.EntityID
	for _, e := range c.world.EntitiesOf(ctx.Player, rts.KindUnit) {
		if !e.Military || !e.Idle {
			continue
		}
		if e.ID == ctx.ScoutUnit {
			continue
		}
		if c.ctx.GroupOf(e.ID) != nil {
			continue
		}
		loose = append(loose, e.ID)
	}
	if len(loose) < ctx.Params.MinGroupSize {
		return
	}

	ctx.nextGroupID++
	g := &TacticalGroup{
		ID:            ctx.nextGroupID,
		Members:       loose,
		State:         GroupForming,
		AssemblyPoint: c.assemblyPoint(),
		Formation:     c.pickFormation(),
	}
	ctx.Groups = append(ctx.Groups, g)
	c.sink.Submit(ctx.Player, rts.MoveCommand{Units: g.Members, Target: g.AssemblyPoint})
	c.log.Debug().Int("group", g.ID).Int("members", len(g.Members)).Str("formation", string(g.Formation)).Msg("Squad forming")
}

// assemblyPoint places the rally slightly outside the base perimeter,
// toward the attack location when one is known.
func (c *Controller) assemblyPoint() rts.Position {
	ctx := c.ctx
	base := ctx.BasePos
	if ctx.UnderAttack {
		dx := ctx.LastAttackPos.X - base.X
		dy := ctx.LastAttackPos.Y - base.Y
		d := base.DistanceTo(ctx.LastAttackPos)
		if d > 1 {
			r := ctx.Params.PerimeterRadius * 0.6
			return base.Add(dx/d*r, dy/d*r)
		}
	}
	angle := c.rng.Float64() * 2 * math.Pi
	r := ctx.Params.PerimeterRadius * 0.6
	return base.Add(r*math.Cos(angle), r*math.Sin(angle))
}

// pickFormation draws a formation by weighted personality preference.
func (c *Controller) pickFormation() rts.Formation {
	formations := rts.AllFormations()
	weights := make([]float64, len(formations))
	for i, f := range formations {
		weights[i] = c.ctx.Personality.FormationPreference[f]
	}
	pick := weightedChoice(c.rng, weights)
	if pick < 0 {
		return rts.FormationLine
	}
	return formations[pick]
}

// updateGroup advances one squad's state machine.
func (c *Controller) updateGroup(g *TacticalGroup) {
	switch g.State {
	case GroupForming:
		c.updateForming(g)
	case GroupAssembled:
		c.updateAssembled(g)
	case GroupMoving:
		c.updateMoving(g)
	case GroupAttacking:
		c.updateAttacking(g)
	case GroupRetreating:
		c.updateRetreating(g)
	}
}

// updateForming waits until enough members reach the assembly point, then
// locks the formation.
func (c *Controller) updateForming(g *TacticalGroup) {
	if c.fractionWithin(g.Members, g.AssemblyPoint, c.ctx.Params.AssemblyRadius) < c.ctx.Params.ArrivalFraction {
		return
	}
	g.State = GroupAssembled
	c.sink.Submit(c.ctx.Player, rts.SetFormationCommand{Units: g.Members, Formation: g.Formation})
	c.log.Debug().Int("group", g.ID).Msg("Squad assembled")
}

// updateAssembled looks for a target and starts the advance. Priority: the
// last known attack location while under attack; otherwise, with
// probability equal to aggressiveness, the most attractive enemy building;
// otherwise an exploration or expansion target.
func (c *Controller) updateAssembled(g *TacticalGroup) {
	ctx := c.ctx

	switch {
	case ctx.UnderAttack:
		g.TargetPos = ctx.LastAttackPos
		g.TargetEntity = 0
		g.HasTarget = true
	case c.rng.Float64() < ctx.Personality.Aggressiveness:
		target, ok := c.bestEnemyBuilding()
		if !ok {
			return
		}
		g.TargetPos = target.Pos
		g.TargetEntity = target.ID
		g.HasTarget = true
	default:
		g.TargetPos = c.explorationTarget()
		g.TargetEntity = 0
		g.HasTarget = true
	}

	g.State = GroupMoving
	c.sink.Submit(ctx.Player, rts.AttackMoveCommand{Units: g.Members, Target: g.TargetPos})
	c.log.Debug().Int("group", g.ID).Float64("x", g.TargetPos.X).Float64("y", g.TargetPos.Y).Msg("Squad moving")
}

// bestEnemyBuilding scores enemy buildings by economic value over distance
// and returns the best, favoring near, high-value targets.
func (c *Controller) bestEnemyBuilding() (rts.EntityInfo, bool) {
	ctx := c.ctx
	var best rts.EntityInfo
	bestScore := 0.0

	for _, e := range c.world.EntitiesInCircle(ctx.BasePos, wholeMapRadius) {
		if e.Kind != rts.KindBuilding || e.Owner == ctx.Player || e.Owner == rts.Neutral {
			continue
		}
		value := buildingValue(c.world.Catalog(), e.Type)
		dist := e.Pos.DistanceTo(ctx.BasePos)
		if dist < 1 {
			dist = 1
		}
		score := value / dist
		if score > bestScore {
			bestScore = score
			best = e
		}
	}
	return best, bestScore > 0
}

// buildingValue ranks how economically painful losing a building is.
func buildingValue(catalog *rts.Catalog, typ string) float64 {
	def, ok := catalog.Building(typ)
	if !ok {
		return 1
	}
	switch def.Class {
	case rts.ClassTownCenter:
		return 10
	case rts.ClassMonument:
		return 9
	case rts.ClassProduction:
		return 6
	case rts.ClassMarket:
		return 5
	case rts.ClassTower:
		return 3
	case rts.ClassHouse:
		return 2
	default:
		return 1
	}
}

// explorationTarget picks an expansion direction: a random known resource
// hotspot, or a random distant point when nothing is known.
func (c *Controller) explorationTarget() rts.Position {
	ctx := c.ctx

	var hotspots []rts.Position
	for _, nodes := range ctx.ResourceKnowledge {
		for _, n := range nodes {
			if n.Amount > 500 {
				hotspots = append(hotspots, n.Pos)
			}
		}
	}
	if len(hotspots) > 0 {
		return hotspots[c.rng.Intn(len(hotspots))]
	}

	angle := c.rng.Float64() * 2 * math.Pi
	r := ctx.Params.PerimeterRadius * 3
	return ctx.BasePos.Add(r*math.Cos(angle), r*math.Sin(angle))
}

// updateMoving transitions to attacking once the squad closes on the target
// and an enemy is present, or back to assembled when the destination turned
// out to be empty.
func (c *Controller) updateMoving(g *TacticalGroup) {
	ctx := c.ctx
	if c.fractionWithin(g.Members, g.TargetPos, ctx.Params.TargetRadius) < ctx.Params.ArrivalFraction {
		return
	}

	enemy, ok := c.nearestEnemy(g.TargetPos, ctx.Params.AttackAggroRadius)
	if !ok {
		g.State = GroupAssembled
		g.HasTarget = false
		g.AssemblyPoint = g.TargetPos
		return
	}

	g.State = GroupAttacking
	g.TargetEntity = enemy.ID
	g.TargetPos = enemy.Pos
	c.sink.Submit(ctx.Player, rts.AttackCommand{Units: g.Members, Target: enemy.ID})
	c.log.Debug().Int("group", g.ID).Uint64("target", uint64(enemy.ID)).Msg("Squad attacking")
}

// updateAttacking watches squad health and target liveness: retreat when
// mean health drops under the threshold, re-target when the victim died,
// fall back to assembled when no replacement exists.
func (c *Controller) updateAttacking(g *TacticalGroup) {
	ctx := c.ctx

	if c.meanHealthFraction(g.Members) < ctx.Params.RetreatHealthThreshold {
		g.State = GroupRetreating
		g.HasTarget = false
		c.sink.Submit(ctx.Player, rts.MoveCommand{Units: g.Members, Target: ctx.BasePos})
		c.log.Debug().Int("group", g.ID).Msg("Squad retreating")
		return
	}

	if _, alive := c.world.EntityByID(g.TargetEntity); alive {
		return
	}

	enemy, ok := c.nearestEnemy(g.TargetPos, ctx.Params.AttackAggroRadius)
	if !ok {
		g.State = GroupAssembled
		g.HasTarget = false
		g.AssemblyPoint = g.TargetPos
		return
	}
	g.TargetEntity = enemy.ID
	g.TargetPos = enemy.Pos
	c.sink.Submit(ctx.Player, rts.AttackCommand{Units: g.Members, Target: enemy.ID})
}

// updateRetreating returns the squad to assembled once most members reach
// the retreat point (the base).
func (c *Controller) updateRetreating(g *TacticalGroup) {
	ctx := c.ctx
	if c.fractionWithin(g.Members, ctx.BasePos, ctx.Params.PerimeterRadius) < ctx.Params.ArrivalFraction {
		return
	}
	g.State = GroupAssembled
	g.AssemblyPoint = c.assemblyPoint()
	c.sink.Submit(ctx.Player, rts.MoveCommand{Units: g.Members, Target: g.AssemblyPoint})
}

// nearestEnemy returns the closest hostile entity to a point within radius.
func (c *Controller) nearestEnemy(pos rts.Position, radius float64) (rts.EntityInfo, bool) {
	var best rts.EntityInfo
	bestDist := radius + 1
	for _, e := range c.world.EntitiesInCircle(pos, radius) {
		if e.Owner == c.ctx.Player || e.Owner == rts.Neutral {
			continue
		}
		if d := e.Pos.DistanceTo(pos); d < bestDist {
			bestDist = d
			best = e
		}
	}
	return best, bestDist <= radius
}

// fractionWithin returns the share of live members within radius of pos.
// Dead members count against arrival so a mauled squad does not stall.
func (c *Controller) fractionWithin(members []rts.EntityID, pos rts.Position, radius float64) float64 {
	if len(members) == 0 {
		return 0
	}
	in := 0
	for _, id := range members {
		e, ok := c.world.EntityByID(id)
		if !ok {
			continue
		}
		if e.Pos.DistanceTo(pos) <= radius {
			in++
		}
	}
	return float64(in) / float64(len(members))
}

// meanHealthFraction averages HP/MaxHP over live members.
func (c *Controller) meanHealthFraction(members []rts.EntityID) float64 {
	sum, n := 0.0, 0
	for _, id := range members {
		e, ok := c.world.EntityByID(id)
		if !ok {
			continue
		}
		sum += e.HealthFraction()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
