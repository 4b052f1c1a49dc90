package ai

import (
	"testing"
	"time"

	"github.com/hearthland/stratagem/pkg/rts"
)

func TestOnAttackAlert_RalliesDefendersAndSheltersWorkers(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	raid := rts.Position{X: 110, Y: 100}
	w.addUnit(1, "militia", rts.Position{X: 105, Y: 100}, true, true)
	w.addUnit(1, "militia", rts.Position{X: 106, Y: 100}, true, true)
	w.addUnit(1, "villager", rts.Position{X: 108, Y: 100}, false, true)
	c := newTestController(w, sink)

	sink.reset()
	c.onAttackAlert(raid, time.Minute)

	if !c.ctx.UnderAttack {
		t.Fatal("expected the under-attack flag set")
	}
	if c.ctx.LastAttackPos != raid {
		t.Errorf("expected raid position recorded, got %v", c.ctx.LastAttackPos)
	}

	var defended, sheltered bool
	for _, cmd := range sink.cmds {
		switch v := cmd.(type) {
		case rts.AttackMoveCommand:
			defended = true
			if v.Target != raid {
				t.Errorf("defenders must converge on the raid site, got %v", v.Target)
			}
			if len(v.Units) != 2 {
				t.Errorf("expected 2 defenders, got %d", len(v.Units))
			}
		case rts.MoveCommand:
			sheltered = true
			if v.Target != (rts.Position{X: 100, Y: 100}) {
				t.Errorf("workers must shelter at the town center, got %v", v.Target)
			}
		}
	}
	if !defended {
		t.Error("expected an attack-move for the defenders")
	}
	if !sheltered {
		t.Error("expected a shelter move for the workers")
	}
}

func TestTickDefense_AttackPressureDecays(t *testing.T) {
	w := newFakeWorld()
	c := newTestController(w, &fakeSink{})

	c.onAttackAlert(rts.Position{X: 110, Y: 100}, time.Minute)
	c.tickDefense(time.Minute + 10*time.Second)
	if !c.ctx.UnderAttack {
		t.Fatal("pressure must persist inside the decay window")
	}

	c.tickDefense(time.Minute + 31*time.Second)
	if c.ctx.UnderAttack {
		t.Error("pressure must clear after the decay window")
	}
}

func TestPlanTowers_QueuesUpToDesiredRing(t *testing.T) {
	w := newFakeWorld()
	c := newTestController(w, &fakeSink{})

	c.planTowers()

	queued := 0
	for _, task := range c.ctx.BuildQueue.tasks {
		if task.Building == "watchtower" {
			queued++
			if task.Site == nil {
				t.Error("tower tasks must carry a perimeter site")
			}
		}
	}
	if want := c.desiredTowerCount(); queued != want {
		t.Errorf("expected %d towers queued, got %d", want, queued)
	}

	// Replanning with the ring already queued adds nothing.
	c.planTowers()
	again := 0
	for _, task := range c.ctx.BuildQueue.tasks {
		if task.Building == "watchtower" {
			again++
		}
	}
	if again != queued {
		t.Errorf("expected no additional towers, got %d", again)
	}
}

func TestDesiredTowerCount_GrowsWithThreat(t *testing.T) {
	w := newFakeWorld()
	c := newTestController(w, &fakeSink{})

	calm := c.desiredTowerCount()
	c.ctx.UnderAttack = true
	threatened := c.desiredTowerCount()
	if threatened <= calm {
		t.Errorf("expected more towers under attack: %d vs %d", threatened, calm)
	}

	c.ctx.UnderAttack = false
	c.ctx.Phase = PhaseLate
	late := c.desiredTowerCount()
	if late <= calm {
		t.Errorf("expected more towers in the late game: %d vs %d", late, calm)
	}
}

func TestMaybePlanWall_OnlyForDefensivePersonalities(t *testing.T) {
	w := newFakeWorld()
	c := newTestController(w, &fakeSink{})
	c.ctx.Phase = PhaseMid

	c.ctx.Personality.Defensiveness = 0.5
	c.maybePlanWall()
	if c.ctx.WallPlanned || c.ctx.BuildQueue.Contains("wall") {
		t.Fatal("a moderate personality must not wall in")
	}

	c.ctx.Personality.Defensiveness = 0.85
	c.maybePlanWall()
	if !c.ctx.WallPlanned {
		t.Fatal("expected the wall planned above the threshold")
	}
	segments := 0
	for _, task := range c.ctx.BuildQueue.tasks {
		if task.Building == "wall" {
			segments++
		}
	}
	if segments != 16 {
		t.Errorf("expected 16 wall segments, got %d", segments)
	}

	// One-time plan.
	c.maybePlanWall()
	after := 0
	for _, task := range c.ctx.BuildQueue.tasks {
		if task.Building == "wall" {
			after++
		}
	}
	if after != segments {
		t.Error("wall must be planned exactly once")
	}
}

func TestMaybePlanWall_NeverInEarlyGame(t *testing.T) {
	w := newFakeWorld()
	c := newTestController(w, &fakeSink{})
	c.ctx.Personality.Defensiveness = 0.9

	c.maybePlanWall()
	if c.ctx.WallPlanned {
		t.Error("no wall in the early phase")
	}
}

func TestMaybeRepair_TasksWorkerOnWorstBuilding(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	w.addUnit(1, "villager", rts.Position{X: 100, Y: 100}, false, true)
	c := newTestController(w, sink)

	healthy := w.addBuilding(1, "house", rts.Position{X: 104, Y: 100})
	damaged := w.addBuilding(1, "barracks", rts.Position{X: 96, Y: 100})
	w.mutate(healthy, func(e *rts.EntityInfo) { e.HP = e.MaxHP * 9 / 10 })
	w.mutate(damaged, func(e *rts.EntityInfo) { e.HP = e.MaxHP / 4 })

	sink.reset()
	c.maybeRepair()

	found := false
	for _, cmd := range sink.cmds {
		if r, ok := cmd.(rts.RepairCommand); ok {
			found = true
			if r.Structure != damaged {
				t.Errorf("expected the most damaged building %d, got %d", damaged, r.Structure)
			}
			if len(r.Units) != 1 {
				t.Errorf("expected one repair worker, got %d", len(r.Units))
			}
		}
	}
	if !found {
		t.Error("expected a repair command")
	}
}

func TestMaybeRepair_IgnoresHealthyBase(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	w.addUnit(1, "villager", rts.Position{X: 100, Y: 100}, false, true)
	c := newTestController(w, sink)

	sink.reset()
	c.maybeRepair()
	if len(sink.cmds) != 0 {
		t.Error("expected no repair with everything at full health")
	}
}
