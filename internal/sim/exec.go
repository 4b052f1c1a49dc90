package sim

import (
	"math"

	"github.com/yohamta/donburi"

	"github.com/hearthland/stratagem/pkg/rts"
)

// runCommands drains the pending queue and applies each command. Validation
// failures drop the command silently; issuers observe the world through
// queries and events, never through command results.
func (s *Sim) runCommands() {
	pending := s.pending
	s.pending = nil
	for _, qc := range pending {
		s.execute(qc.owner, qc.cmd)
	}
}

func (s *Sim) execute(owner rts.PlayerID, cmd rts.Command) {
	switch c := cmd.(type) {
	case rts.MoveCommand:
		for _, e := range s.ownedUnits(owner, c.Units) {
			u := Unit.Get(e)
			u.State = UnitMoving
			u.MoveTarget = s.clampPos(c.Target)
			u.TargetEntity = 0
		}

	case rts.AttackCommand:
		if _, ok := s.entries[c.Target]; !ok {
			return
		}
		for _, e := range s.ownedUnits(owner, c.Units) {
			u := Unit.Get(e)
			u.State = UnitFighting
			u.TargetEntity = c.Target
		}

	case rts.AttackMoveCommand:
		for _, e := range s.ownedUnits(owner, c.Units) {
			u := Unit.Get(e)
			u.State = UnitAttackMoving
			u.MoveTarget = s.clampPos(c.Target)
			u.TargetEntity = 0
		}

	case rts.GatherCommand:
		node, ok := s.entries[c.Node]
		if !ok || !node.HasComponent(ResourceNode) {
			return
		}
		kind := ResourceNode.Get(node).Kind
		for _, e := range s.ownedUnits(owner, c.Units) {
			u := Unit.Get(e)
			if u.Military {
				continue
			}
			u.State = UnitGathering
			u.TargetEntity = c.Node
			u.Gathering = kind
			u.Carry = 0
		}

	case rts.BuildCommand:
		s.execBuild(owner, c)

	case rts.RepairCommand:
		target, ok := s.entries[c.Structure]
		if !ok || !target.HasComponent(Building) || Owner.Get(target).Player != owner {
			return
		}
		for _, e := range s.ownedUnits(owner, c.Units) {
			u := Unit.Get(e)
			if u.Military {
				continue
			}
			u.State = UnitRepairing
			u.TargetEntity = c.Structure
		}

	case rts.TrainCommand:
		s.execTrain(owner, c)

	case rts.ResearchCommand:
		s.execResearch(owner, c)

	case rts.SetFormationCommand:
		s.execFormation(owner, c)

	case rts.TradeCommand:
		s.execTrade(owner, c)
	}
}

// ownedUnits resolves command unit IDs to live unit entries owned by the
// issuer, dropping everything else.
func (s *Sim) ownedUnits(owner rts.PlayerID, ids []rts.EntityID) []*donburi.Entry {
	var out []*donburi.Entry
	for _, id := range ids {
		e, ok := s.entries[id]
		if !ok || !e.Valid() || !e.HasComponent(Unit) || Owner.Get(e).Player != owner {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *Sim) clampPos(p rts.Position) rts.Position {
	return rts.Position{
		X: math.Max(1, math.Min(s.w-1, p.X)),
		Y: math.Max(1, math.Min(s.h-1, p.Y)),
	}
}

func (s *Sim) execBuild(owner rts.PlayerID, c rts.BuildCommand) {
	def, ok := s.catalog.Building(c.Building)
	if !ok || !s.IsBuildable(c.Site) || !s.CanAfford(owner, def.Cost) {
		return
	}
	workers := s.ownedUnits(owner, c.Units)
	var crew []*donburi.Entry
	for _, e := range workers {
		if !Unit.Get(e).Military {
			crew = append(crew, e)
		}
	}
	if len(crew) == 0 {
		return
	}

	s.deduct(owner, def.Cost)
	id := s.spawnBuilding(owner, c.Building, c.Site, false)
	for _, e := range crew {
		u := Unit.Get(e)
		u.State = UnitBuilding
		u.TargetEntity = id
		u.MoveTarget = c.Site
	}
}

func (s *Sim) execTrain(owner rts.PlayerID, c rts.TrainCommand) {
	e, ok := s.entries[c.Building]
	if !ok || !e.HasComponent(Building) || Owner.Get(e).Player != owner {
		return
	}
	b := Building.Get(e)
	def, ok := s.catalog.Unit(c.UnitType)
	if !ok || b.Progress < 1 || b.TrainUnit != "" || b.ResearchTech != "" {
		return
	}
	ps := s.players[owner]
	if def.TrainedAt != Identity.Get(e).Type || def.Age > ps.age || !s.CanAfford(owner, def.Cost) {
		return
	}
	if cur, max := s.Population(owner); cur >= max {
		return
	}

	s.deduct(owner, def.Cost)
	b.TrainUnit = c.UnitType
	b.TrainRemaining = def.TrainTime
}

func (s *Sim) execResearch(owner rts.PlayerID, c rts.ResearchCommand) {
	e, ok := s.entries[c.Building]
	if !ok || !e.HasComponent(Building) || Owner.Get(e).Player != owner {
		return
	}
	b := Building.Get(e)
	def, ok := s.catalog.Tech(c.Tech)
	if !ok || b.Progress < 1 || b.TrainUnit != "" || b.ResearchTech != "" {
		return
	}
	ps := s.players[owner]
	if ps.researched[c.Tech] || def.ResearchedAt != Identity.Get(e).Type || def.Age > ps.age || !s.CanAfford(owner, def.Cost) {
		return
	}

	s.deduct(owner, def.Cost)
	b.ResearchTech = c.Tech
	b.ResearchLeft = def.ResearchTime
}

// formation spacing in world units
const formationSpacing = 1.5

// execFormation arranges the units around their centroid. Shapes are simple
// offset grids; real pathing and facing are out of scope for the skirmish
// world.
func (s *Sim) execFormation(owner rts.PlayerID, c rts.SetFormationCommand) {
	units := s.ownedUnits(owner, c.Units)
	if len(units) == 0 {
		return
	}

	var cx, cy float64
	for _, e := range units {
		p := Transform.Get(e).Pos
		cx += p.X
		cy += p.Y
	}
	center := rts.Position{X: cx / float64(len(units)), Y: cy / float64(len(units))}

	for i, e := range units {
		u := Unit.Get(e)
		u.State = UnitMoving
		u.TargetEntity = 0
		u.MoveTarget = s.clampPos(formationSlot(center, c.Formation, i, len(units)))
	}
}

func formationSlot(center rts.Position, f rts.Formation, i, n int) rts.Position {
	switch f {
	case rts.FormationLine:
		return center.Add((float64(i)-float64(n-1)/2)*formationSpacing, 0)
	case rts.FormationWedge:
		row := 0
		for (row+1)*(row+2)/2 <= i {
			row++
		}
		col := i - row*(row+1)/2
		return center.Add((float64(col)-float64(row)/2)*formationSpacing, float64(row)*formationSpacing)
	case rts.FormationSpread:
		side := int(math.Ceil(math.Sqrt(float64(n))))
		return center.Add(float64(i%side)*formationSpacing*2, float64(i/side)*formationSpacing*2)
	default: // box
		side := int(math.Ceil(math.Sqrt(float64(n))))
		return center.Add(float64(i%side)*formationSpacing, float64(i/side)*formationSpacing)
	}
}

func (s *Sim) execTrade(owner rts.PlayerID, c rts.TradeCommand) {
	if c.Amount <= 0 || c.Sell == c.Buy {
		return
	}
	ps := s.players[owner]
	if ps == nil || ps.stock[c.Sell] < float64(c.Amount) {
		return
	}
	if len(s.completedOfClass(owner, rts.ClassMarket)) == 0 {
		return
	}

	ps.stock[c.Sell] -= float64(c.Amount)
	ps.delta[c.Sell] -= float64(c.Amount)
	gain := float64(c.Amount) * tradeRate
	ps.stock[c.Buy] += gain
	ps.delta[c.Buy] += gain
}

// completedOfClass returns the participant's finished buildings of a class.
func (s *Sim) completedOfClass(owner rts.PlayerID, class rts.BuildingClass) []*donburi.Entry {
	var out []*donburi.Entry
	Building.Each(s.ecs, func(e *donburi.Entry) {
		b := Building.Get(e)
		if b.Class != class || b.Progress < 1 || Owner.Get(e).Player != owner {
			return
		}
		out = append(out, e)
	})
	return out
}
