package sim

import (
	"time"

	"github.com/yohamta/donburi"

	"github.com/hearthland/stratagem/pkg/rts"
)

// Step advances the world by dt: queued commands first, then unit behavior,
// building work, combat resolution, and bookkeeping. Entities killed during
// the step are removed at the end, so every system sees a consistent frame.
func (s *Sim) Step(dt time.Duration) {
	s.elapsed += dt
	sec := dt.Seconds()

	s.runCommands()
	s.stepUnits(sec)
	s.stepBuildings(sec)
	s.stepRates(sec)
	s.stepAges()
	s.flushRemovals()
}

// moveToward advances the unit toward target, returning true on arrival
// within reach.
func (s *Sim) moveToward(e *donburi.Entry, target rts.Position, reach, sec float64) bool {
	t := Transform.Get(e)
	d := t.Pos.DistanceTo(target)
	if d <= reach {
		return true
	}
	u := Unit.Get(e)
	mult := 1.0
	if ps := s.players[Owner.Get(e).Player]; ps != nil {
		mult = ps.moveMult
	}
	step := u.Speed * unitSpeedScale * mult * sec
	if step >= d {
		t.Pos = target
		return true
	}
	t.Pos.X += (target.X - t.Pos.X) / d * step
	t.Pos.Y += (target.Y - t.Pos.Y) / d * step
	return false
}

func (s *Sim) stepUnits(sec float64) {
	Unit.Each(s.ecs, func(e *donburi.Entry) {
		u := Unit.Get(e)
		if u.Cooldown > 0 {
			u.Cooldown -= sec
		}

		switch u.State {
		case UnitMoving:
			if s.moveToward(e, u.MoveTarget, 0.5, sec) {
				u.State = UnitIdle
			}
		case UnitAttackMoving:
			s.stepAttackMove(e, u, sec)
		case UnitGathering:
			s.stepGather(e, u, sec)
		case UnitBuilding:
			s.stepBuildWork(e, u, sec)
		case UnitRepairing:
			s.stepRepair(e, u, sec)
		case UnitFighting:
			s.stepFight(e, u, sec)
		}
	})
}

func (s *Sim) stepAttackMove(e *donburi.Entry, u *UnitData, sec float64) {
	pos := Transform.Get(e).Pos
	owner := Owner.Get(e).Player

	if target := s.nearestHostile(owner, pos, aggroRange); target != 0 {
		u.State = UnitFighting
		u.TargetEntity = target
		return
	}
	if s.moveToward(e, u.MoveTarget, 0.5, sec) {
		u.State = UnitIdle
	}
}

// nearestHostile finds the closest enemy unit or building within radius.
func (s *Sim) nearestHostile(owner rts.PlayerID, pos rts.Position, radius float64) rts.EntityID {
	var best rts.EntityID
	bestDist := radius
	Identity.Each(s.ecs, func(e *donburi.Entry) {
		id := Identity.Get(e)
		if id.Kind == rts.KindResource {
			return
		}
		o := Owner.Get(e).Player
		if o == owner || o == rts.Neutral {
			return
		}
		if d := Transform.Get(e).Pos.DistanceTo(pos); d <= bestDist {
			bestDist = d
			best = id.ID
		}
	})
	return best
}

func (s *Sim) stepGather(e *donburi.Entry, u *UnitData, sec float64) {
	node, ok := s.entries[u.TargetEntity]
	if !ok || !node.Valid() {
		u.State = UnitIdle
		u.TargetEntity = 0
		return
	}
	if !s.moveToward(e, Transform.Get(node).Pos, gatherRange, sec) {
		return
	}

	owner := Owner.Get(e).Player
	ps := s.players[owner]
	res := ResourceNode.Get(node)

	take := gatherRate * ps.gatherMult[res.Kind] * sec
	if take > res.Amount {
		take = res.Amount
	}
	res.Amount -= take
	ps.stock[res.Kind] += take
	ps.delta[res.Kind] += take

	if res.Amount <= 0 {
		nodeID := Identity.Get(node).ID
		s.emit(rts.ResourceDepletedEvent{Node: nodeID, Kind: res.Kind})
		s.removed = append(s.removed, nodeID)
		u.State = UnitIdle
		u.TargetEntity = 0
	}
}

func (s *Sim) stepBuildWork(e *donburi.Entry, u *UnitData, sec float64) {
	site, ok := s.entries[u.TargetEntity]
	if !ok || !site.Valid() || Building.Get(site).Progress >= 1 {
		u.State = UnitIdle
		u.TargetEntity = 0
		return
	}
	// Construction progress itself is credited in stepBuildings, which
	// counts crew in range; the unit system only walks the worker there.
	s.moveToward(e, Transform.Get(site).Pos, buildRange, sec)
}

func (s *Sim) stepRepair(e *donburi.Entry, u *UnitData, sec float64) {
	target, ok := s.entries[u.TargetEntity]
	if !ok || !target.Valid() {
		u.State = UnitIdle
		u.TargetEntity = 0
		return
	}
	if !s.moveToward(e, Transform.Get(target).Pos, buildRange, sec) {
		return
	}
	h := Health.Get(target)
	h.Current += int(repairRate * sec)
	if h.Current >= h.Max {
		h.Current = h.Max
		u.State = UnitIdle
		u.TargetEntity = 0
	}
}

func (s *Sim) stepFight(e *donburi.Entry, u *UnitData, sec float64) {
	target, ok := s.entries[u.TargetEntity]
	if !ok || !target.Valid() {
		u.State = UnitIdle
		u.TargetEntity = 0
		return
	}
	reach := u.Range
	if reach < 1 {
		reach = 1
	}
	if !s.moveToward(e, Transform.Get(target).Pos, reach+0.5, sec) {
		return
	}
	if u.Cooldown > 0 {
		return
	}
	u.Cooldown = 1
	s.damage(target, u.Attack)
}

// damage applies hit points of damage, emitting an attack alert to the
// victim's owner (throttled) and queueing removal on death.
func (s *Sim) damage(target *donburi.Entry, amount int) {
	h := Health.Get(target)
	if h.Current <= 0 {
		return
	}
	h.Current -= amount

	victim := Owner.Get(target).Player
	if ps := s.players[victim]; ps != nil {
		if s.elapsed-ps.lastAlert >= alertThrottle {
			ps.lastAlert = s.elapsed
			s.emit(rts.AttackAlertEvent{Target: victim, Pos: Transform.Get(target).Pos})
		}
	}

	if h.Current <= 0 {
		id := Identity.Get(target)
		s.emit(rts.EntityRemovedEvent{Owner: victim, ID: id.ID, Kind: id.Kind, Type: id.Type})
		s.removed = append(s.removed, id.ID)
	}
}

func (s *Sim) stepBuildings(sec float64) {
	Building.Each(s.ecs, func(e *donburi.Entry) {
		b := Building.Get(e)
		owner := Owner.Get(e).Player
		id := Identity.Get(e)

		if b.Progress < 1 {
			s.stepConstruction(e, b, owner, id, sec)
			return
		}

		if b.TrainUnit != "" {
			b.TrainRemaining -= sec
			if b.TrainRemaining <= 0 {
				s.finishTraining(e, b, owner)
			}
		}
		if b.ResearchTech != "" {
			b.ResearchLeft -= sec
			if b.ResearchLeft <= 0 {
				s.finishResearch(b, owner)
			}
		}
		if def, ok := s.catalog.Building(id.Type); ok && def.Attack > 0 {
			s.stepTower(e, def, owner, sec)
		}
	})
}

func (s *Sim) stepConstruction(e *donburi.Entry, b *BuildingData, owner rts.PlayerID, id *IdentityData, sec float64) {
	def, ok := s.catalog.Building(id.Type)
	if !ok || def.BuildTime <= 0 {
		b.Progress = 1
		return
	}

	pos := Transform.Get(e).Pos
	crew := 0
	Unit.Each(s.ecs, func(w *donburi.Entry) {
		u := Unit.Get(w)
		if u.State != UnitBuilding || u.TargetEntity != id.ID {
			return
		}
		if Transform.Get(w).Pos.DistanceTo(pos) <= buildRange {
			crew++
		}
	})
	if crew == 0 {
		return
	}

	ps := s.players[owner]
	b.Progress += float64(crew) * ps.buildMult * sec / def.BuildTime
	h := Health.Get(e)
	if b.Progress >= 1 {
		b.Progress = 1
		h.Current = h.Max
		s.emit(rts.BuildingConstructedEvent{Owner: owner, Type: id.Type, ID: id.ID})
		s.releaseCrew(id.ID)
		return
	}
	h.Current = int((0.1 + 0.9*b.Progress) * float64(h.Max))
}

// releaseCrew idles every worker assigned to the finished site.
func (s *Sim) releaseCrew(site rts.EntityID) {
	Unit.Each(s.ecs, func(e *donburi.Entry) {
		u := Unit.Get(e)
		if u.State == UnitBuilding && u.TargetEntity == site {
			u.State = UnitIdle
			u.TargetEntity = 0
		}
	})
}

func (s *Sim) finishTraining(e *donburi.Entry, b *BuildingData, owner rts.PlayerID) {
	typ := b.TrainUnit
	b.TrainUnit = ""
	b.TrainRemaining = 0

	// Population may have filled up while training; the unit is lost if so,
	// matching the command-time check being advisory only.
	if cur, max := s.Population(owner); cur >= max {
		s.log.Debug().Int("player", int(owner)).Str("unit", typ).Msg("Training completed over population cap")
		return
	}
	pos := Transform.Get(e).Pos.Add(2, 2)
	s.spawnUnit(owner, typ, s.clampPos(pos))
}

func (s *Sim) finishResearch(b *BuildingData, owner rts.PlayerID) {
	tech := b.ResearchTech
	b.ResearchTech = ""
	b.ResearchLeft = 0

	ps := s.players[owner]
	ps.researched[tech] = true
	if def, ok := s.catalog.Tech(tech); ok {
		s.applyTechEffects(ps, def)
	}
	s.emit(rts.ResearchCompletedEvent{Player: owner, Tech: tech})
}

func (s *Sim) applyTechEffects(ps *playerState, def rts.TechDef) {
	for _, eff := range def.Effects {
		switch eff.Kind {
		case rts.EffectUnitBoost:
			ps.unitBoost[eff.Unit] += eff.Amount
		case rts.EffectGatherRate:
			ps.gatherMult[eff.Resource] *= 1 + eff.Amount
		case rts.EffectBuildSpeed:
			ps.buildMult *= 1 + eff.Amount
		case rts.EffectMoveSpeed:
			ps.moveMult *= 1 + eff.Amount
		}
	}
}

func (s *Sim) stepTower(e *donburi.Entry, def rts.BuildingDef, owner rts.PlayerID, sec float64) {
	b := Building.Get(e)
	if b.Cooldown > 0 {
		b.Cooldown -= sec
		return
	}
	pos := Transform.Get(e).Pos
	target := s.nearestHostile(owner, pos, def.Range)
	if target == 0 {
		return
	}
	if te, ok := s.entries[target]; ok && te.Valid() {
		s.damage(te, def.Attack)
		b.Cooldown = 1.5
	}
}

// stepRates samples net income per minute over a fixed window.
func (s *Sim) stepRates(sec float64) {
	for _, ps := range s.players {
		ps.rateTimer += sec
		if ps.rateTimer < rateWindow {
			continue
		}
		for _, k := range rts.AllResources() {
			ps.rate[k] = ps.delta[k] / ps.rateTimer * 60
			ps.delta[k] = 0
		}
		ps.rateTimer = 0
	}
}

// stepAges advances participants through the age gates.
func (s *Sim) stepAges() {
	for id, ps := range s.players {
		for ps.age-1 < len(s.ageUps) && s.elapsed >= s.ageUps[ps.age-1] {
			ps.age++
			s.emit(rts.AgeAdvanceEvent{Player: id, NewAge: ps.age})
		}
	}
}

func (s *Sim) flushRemovals() {
	for _, id := range s.removed {
		s.despawn(id)
	}
	s.removed = s.removed[:0]
}
