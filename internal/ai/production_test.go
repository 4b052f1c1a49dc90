package ai

import (
	"testing"

	"github.com/hearthland/stratagem/pkg/rts"
)

func TestMaybeTrainWorker_TrainsWhileUnderTarget(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	w.addUnit(1, "villager", rts.Position{X: 100, Y: 100}, false, false)
	c := newTestController(w, sink)

	c.maybeTrainWorker()

	found := false
	for _, cmd := range sink.cmds {
		if tr, ok := cmd.(rts.TrainCommand); ok && tr.UnitType == "villager" {
			found = true
		}
	}
	if !found {
		t.Error("expected a villager train command")
	}
}

func TestMaybeTrainWorker_StopsAtDesiredCount(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	// Age 1 wants 15 workers.
	for i := 0; i < 15; i++ {
		w.addUnit(1, "villager", rts.Position{X: 100, Y: 100}, false, false)
	}
	c := newTestController(w, sink)

	sink.reset()
	c.maybeTrainWorker()
	if len(sink.cmds) != 0 {
		t.Errorf("expected no training at the worker target, got %d commands", len(sink.cmds))
	}
}

func TestMaybeTrainWorker_RespectsPopulationCap(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	w.popCap[1] = 3
	for i := 0; i < 3; i++ {
		w.addUnit(1, "villager", rts.Position{X: 100, Y: 100}, false, false)
	}
	c := newTestController(w, sink)

	sink.reset()
	c.maybeTrainWorker()
	if len(sink.cmds) != 0 {
		t.Error("expected no training at the population cap")
	}
}

func TestMaybeTrainMilitary_TrainsAgeOneUnit(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	w.addBuilding(1, "barracks", rts.Position{X: 104, Y: 100})
	for i := 0; i < 8; i++ {
		w.addUnit(1, "villager", rts.Position{X: 100, Y: 100}, false, false)
	}
	c := newTestController(w, sink)

	sink.reset()
	c.maybeTrainMilitary()

	var trained string
	for _, cmd := range sink.cmds {
		if tr, ok := cmd.(rts.TrainCommand); ok {
			trained = tr.UnitType
		}
	}
	if trained == "" {
		t.Fatal("expected a military train command")
	}
	if def, _ := w.catalog.Unit(trained); !def.Military || def.Age > 1 {
		t.Errorf("expected an age-1 military unit, got %s", trained)
	}
}

func TestMaybeTrainMilitary_SkipsWhenArmyAtTarget(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	w.addBuilding(1, "barracks", rts.Position{X: 104, Y: 100})
	// 12 military of 14 total: ratio far above any early target, count >= 10.
	for i := 0; i < 12; i++ {
		w.addUnit(1, "militia", rts.Position{X: 100, Y: 100}, true, false)
	}
	w.addUnit(1, "villager", rts.Position{X: 100, Y: 100}, false, false)
	w.addUnit(1, "villager", rts.Position{X: 100, Y: 100}, false, false)
	c := newTestController(w, sink)

	sink.reset()
	c.maybeTrainMilitary()
	for _, cmd := range sink.cmds {
		if _, ok := cmd.(rts.TrainCommand); ok {
			t.Fatal("expected no training with the army at its target share")
		}
	}
}

func TestMaybeTrainMilitary_QueuesBarracksWhenNothingTrainable(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	w.addUnit(1, "villager", rts.Position{X: 100, Y: 100}, false, false)
	c := newTestController(w, sink)

	// No production building exists, so no candidate can train.
	c.maybeTrainMilitary()
	if !c.ctx.BuildQueue.Contains("barracks") {
		t.Error("expected a barracks queued as the fallback")
	}
}

func TestScoreTech_ShapesByCategoryAndEffects(t *testing.T) {
	w := newFakeWorld()
	c := newTestController(w, &fakeSink{})

	gather, _ := w.catalog.Tech("wheelbarrow")
	military, _ := w.catalog.Tech("conscription")

	gs := c.scoreTech(gather)
	ms := c.scoreTech(military)
	if gs <= 0 || ms <= 0 {
		t.Fatalf("scores must be positive, got %f and %f", gs, ms)
	}

	// Economy research loses its early-game premium after the opening.
	c.ctx.Phase = PhaseMid
	if later := c.scoreTech(gather); !closeTo(later*1.5, gs) {
		t.Errorf("expected the 1.5x early premium on economy tech: early %f, later %f", gs, later)
	}
	c.ctx.Phase = PhaseEarly

	// Being raided raises military desirability.
	c.ctx.UnderAttack = true
	if raised := c.scoreTech(military); !closeTo(raised, ms*1.5) {
		t.Errorf("expected a raid to scale the military score 1.5x: %f vs %f", raised, ms)
	}
}

func TestMaybeResearch_SingleInFlight(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	w.addBuilding(1, "barracks", rts.Position{X: 104, Y: 100})
	c := newTestController(w, sink)

	c.maybeResearch()
	if c.ctx.PendingTech == "" {
		t.Fatal("expected a research pick")
	}
	first := len(sink.cmds)

	c.maybeResearch()
	if len(sink.cmds) != first {
		t.Error("expected no second research while one is pending")
	}
}

func TestMaybeResearch_SkipsResearchedAndLockedTechs(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	w.addBuilding(1, "barracks", rts.Position{X: 104, Y: 100})
	c := newTestController(w, sink)

	// The only age-1 tech is already done; everything else is age-locked.
	c.ctx.ResearchedTechs["forging"] = true
	c.maybeResearch()

	if c.ctx.PendingTech != "" {
		t.Errorf("expected nothing researchable at age 1, got %s", c.ctx.PendingTech)
	}
	if len(sink.cmds) != 0 {
		t.Error("expected no research command")
	}
}
