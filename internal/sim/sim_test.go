package sim

import (
	"testing"
	"time"

	"github.com/hearthland/stratagem/pkg/rts"
)

func newTestSim() *Sim {
	return New(Config{
		Players: []PlayerSetup{
			{ID: 1, Base: rts.Position{X: 40, Y: 40}},
			{ID: 2, Base: rts.Position{X: 160, Y: 160}},
		},
		Seed: 7,
	})
}

func collectEvents(s *Sim) *[]rts.Event {
	var events []rts.Event
	s.Subscribe(func(ev rts.Event) { events = append(events, ev) })
	return &events
}

func stepFor(s *Sim, d, dt time.Duration) {
	for t := time.Duration(0); t < d; t += dt {
		s.Step(dt)
	}
}

func TestPopulate_StartingForces(t *testing.T) {
	s := newTestSim()

	for _, id := range []rts.PlayerID{1, 2} {
		tcs := s.EntitiesOfType(id, "town_center")
		if len(tcs) != 1 {
			t.Fatalf("player %d: expected 1 town center, got %d", id, len(tcs))
		}
		if tcs[0].HP != tcs[0].MaxHP {
			t.Errorf("player %d: starting town center must be complete", id)
		}

		cur, max := s.Population(id)
		if cur != 6 {
			t.Errorf("player %d: expected 6 starting villagers, got %d", id, cur)
		}
		if max != 10 {
			t.Errorf("player %d: expected pop cap 10 from the town center, got %d", id, max)
		}

		if got := s.Stock(id, rts.Food); got != 300 {
			t.Errorf("player %d: expected 300 starting food, got %d", id, got)
		}
		if got := s.Stock(id, rts.Gold); got != 150 {
			t.Errorf("player %d: expected 150 starting gold, got %d", id, got)
		}
	}

	// 5 kinds x 3 nodes per player, plus 3 contested center clusters of 3.
	nodes := s.EntitiesOf(rts.Neutral, rts.KindResource)
	if len(nodes) != 2*5*3+3*3 {
		t.Errorf("expected 39 resource nodes, got %d", len(nodes))
	}

	active := s.ActivePlayers()
	if len(active) != 2 || active[0] != 1 || active[1] != 2 {
		t.Errorf("expected active players [1 2], got %v", active)
	}
}

func TestMoveCommand_WalksUnitToTarget(t *testing.T) {
	s := newTestSim()
	id := s.spawnUnit(1, "militia", rts.Position{X: 100, Y: 100})
	target := rts.Position{X: 110, Y: 100}

	s.Submit(1, rts.MoveCommand{Units: []rts.EntityID{id}, Target: target})
	stepFor(s, 5*time.Second, 100*time.Millisecond)

	e, ok := s.EntityByID(id)
	if !ok {
		t.Fatal("unit disappeared")
	}
	if !e.Idle {
		t.Error("expected the unit idle at its destination")
	}
	if e.Pos.DistanceTo(target) > 1 {
		t.Errorf("expected arrival near %v, got %v", target, e.Pos)
	}
}

func TestGatherCommand_FillsStockAndDepletesNode(t *testing.T) {
	s := newTestSim()
	events := collectEvents(s)

	node := s.spawnResource(rts.Gold, rts.Position{X: 100, Y: 100}, 5)
	worker := s.spawnUnit(1, "villager", rts.Position{X: 101, Y: 100})
	before := s.Stock(1, rts.Gold)

	s.Submit(1, rts.GatherCommand{Units: []rts.EntityID{worker}, Node: node})
	stepFor(s, 12*time.Second, 100*time.Millisecond)

	if got := s.Stock(1, rts.Gold); got != before+5 {
		t.Errorf("expected stock %d after draining the node, got %d", before+5, got)
	}
	if _, ok := s.EntityByID(node); ok {
		t.Error("expected the drained node removed")
	}

	depleted := false
	for _, ev := range *events {
		if d, ok := ev.(rts.ResourceDepletedEvent); ok && d.Node == node {
			depleted = true
			if d.Kind != rts.Gold {
				t.Errorf("expected a gold depletion, got %s", d.Kind)
			}
		}
	}
	if !depleted {
		t.Error("expected a depletion event")
	}

	if e, _ := s.EntityByID(worker); !e.Idle {
		t.Error("expected the worker idle after the node drained")
	}
}

func TestGatherCommand_RefusesMilitary(t *testing.T) {
	s := newTestSim()
	node := s.spawnResource(rts.Wood, rts.Position{X: 100, Y: 100}, 500)
	soldier := s.spawnUnit(1, "militia", rts.Position{X: 101, Y: 100})

	s.Submit(1, rts.GatherCommand{Units: []rts.EntityID{soldier}, Node: node})
	s.Step(100 * time.Millisecond)

	if e, _ := s.EntityByID(soldier); !e.Idle {
		t.Error("military units must not gather")
	}
}

func TestBuildCommand_ConstructsWithCrew(t *testing.T) {
	s := newTestSim()
	events := collectEvents(s)

	villagers := s.EntitiesOf(1, rts.KindUnit)
	worker := villagers[0]
	site := worker.Pos
	woodBefore := s.Stock(1, rts.Wood)

	s.Submit(1, rts.BuildCommand{Units: []rts.EntityID{worker.ID}, Building: "house", Site: site})
	s.Step(100 * time.Millisecond)

	if got := s.Stock(1, rts.Wood); got != woodBefore-50 {
		t.Errorf("expected wood deducted at command time: %d, got %d", woodBefore-50, got)
	}
	houses := s.EntitiesOfType(1, "house")
	if len(houses) != 1 {
		t.Fatalf("expected the unfinished house placed, got %d", len(houses))
	}
	if houses[0].HP >= houses[0].MaxHP {
		t.Error("a fresh site must not start at full health")
	}

	// One worker at 25s build time.
	stepFor(s, 30*time.Second, time.Second)

	constructed := false
	for _, ev := range *events {
		if b, ok := ev.(rts.BuildingConstructedEvent); ok && b.Type == "house" && b.Owner == 1 {
			constructed = true
		}
	}
	if !constructed {
		t.Fatal("expected a construction-finished event")
	}

	houses = s.EntitiesOfType(1, "house")
	if houses[0].HP != houses[0].MaxHP {
		t.Error("a finished building must be at full health")
	}
	if _, max := s.Population(1); max != 15 {
		t.Errorf("expected pop cap 15 with the house finished, got %d", max)
	}
	if e, _ := s.EntityByID(worker.ID); !e.Idle {
		t.Error("expected the crew released after completion")
	}
}

func TestBuildCommand_RequiresStock(t *testing.T) {
	s := newTestSim()
	s.players[1].stock[rts.Wood] = 10

	worker := s.EntitiesOf(1, rts.KindUnit)[0]
	s.Submit(1, rts.BuildCommand{Units: []rts.EntityID{worker.ID}, Building: "house", Site: worker.Pos})
	s.Step(100 * time.Millisecond)

	if len(s.EntitiesOfType(1, "house")) != 0 {
		t.Error("an unaffordable build must be dropped")
	}
	if got := s.Stock(1, rts.Wood); got != 10 {
		t.Errorf("expected no deduction, got %d", got)
	}
}

func TestTrainCommand_ProducesUnit(t *testing.T) {
	s := newTestSim()
	tc := s.EntitiesOfType(1, "town_center")[0]
	foodBefore := s.Stock(1, rts.Food)
	curBefore, _ := s.Population(1)

	s.Submit(1, rts.TrainCommand{Building: tc.ID, UnitType: "villager"})
	s.Step(100 * time.Millisecond)

	if got := s.Stock(1, rts.Food); got != foodBefore-50 {
		t.Errorf("expected food deducted on queueing: %d, got %d", foodBefore-50, got)
	}

	stepFor(s, 21*time.Second, time.Second)
	if cur, _ := s.Population(1); cur != curBefore+1 {
		t.Errorf("expected population %d after training, got %d", curBefore+1, cur)
	}
}

func TestTrainCommand_ValidatesProducerAndAge(t *testing.T) {
	s := newTestSim()
	tc := s.EntitiesOfType(1, "town_center")[0]
	foodBefore := s.Stock(1, rts.Food)

	// Knights come from stables, and not before age 3.
	s.Submit(1, rts.TrainCommand{Building: tc.ID, UnitType: "knight"})
	s.Step(100 * time.Millisecond)

	if got := s.Stock(1, rts.Food); got != foodBefore {
		t.Errorf("rejected training must not deduct, got %d", got)
	}
}

func TestTrainCommand_RespectsPopulationCap(t *testing.T) {
	s := newTestSim()
	// Fill the 10-slot cap from the starting 6.
	for i := 0; i < 4; i++ {
		s.spawnUnit(1, "villager", rts.Position{X: 42, Y: 40})
	}
	tc := s.EntitiesOfType(1, "town_center")[0]
	foodBefore := s.Stock(1, rts.Food)

	s.Submit(1, rts.TrainCommand{Building: tc.ID, UnitType: "villager"})
	s.Step(100 * time.Millisecond)

	if got := s.Stock(1, rts.Food); got != foodBefore {
		t.Error("training at the population cap must be rejected")
	}
}

func TestCombat_KillEmitsAlertAndRemoval(t *testing.T) {
	s := newTestSim()
	events := collectEvents(s)

	attacker := s.spawnUnit(1, "militia", rts.Position{X: 100, Y: 100})
	victim := s.spawnUnit(2, "villager", rts.Position{X: 101, Y: 100})

	s.Submit(1, rts.AttackCommand{Units: []rts.EntityID{attacker}, Target: victim})
	stepFor(s, 12*time.Second, time.Second)

	if _, ok := s.EntityByID(victim); ok {
		t.Fatal("expected the victim killed")
	}

	var alerted, removed bool
	for _, ev := range *events {
		switch e := ev.(type) {
		case rts.AttackAlertEvent:
			if e.Target == 2 {
				alerted = true
			}
		case rts.EntityRemovedEvent:
			if e.ID == victim && e.Owner == 2 {
				removed = true
			}
		}
	}
	if !alerted {
		t.Error("expected an attack alert for the victim's owner")
	}
	if !removed {
		t.Error("expected a removal event for the victim")
	}
}

func TestAttackMove_EngagesHostilesOnPath(t *testing.T) {
	s := newTestSim()
	attacker := s.spawnUnit(1, "militia", rts.Position{X: 100, Y: 100})
	s.spawnUnit(2, "villager", rts.Position{X: 104, Y: 100})

	s.Submit(1, rts.AttackMoveCommand{Units: []rts.EntityID{attacker}, Target: rts.Position{X: 120, Y: 100}})
	stepFor(s, 10*time.Second, time.Second)

	// The hostile inside aggro range dies before the walk continues.
	if len(s.EntitiesOf(2, rts.KindUnit)) != 6 {
		t.Errorf("expected only the 6 base villagers left for player 2, got %d", len(s.EntitiesOf(2, rts.KindUnit)))
	}
}

func TestTradeCommand_RequiresMarket(t *testing.T) {
	s := newTestSim()
	woodBefore := s.Stock(1, rts.Wood)

	s.Submit(1, rts.TradeCommand{Sell: rts.Wood, Buy: rts.Gold, Amount: 100})
	s.Step(100 * time.Millisecond)
	if got := s.Stock(1, rts.Wood); got != woodBefore {
		t.Fatal("trading without a market must be rejected")
	}

	s.spawnBuilding(1, "market", rts.Position{X: 44, Y: 40}, true)
	goldBefore := s.Stock(1, rts.Gold)
	s.Submit(1, rts.TradeCommand{Sell: rts.Wood, Buy: rts.Gold, Amount: 100})
	s.Step(100 * time.Millisecond)

	if got := s.Stock(1, rts.Wood); got != woodBefore-100 {
		t.Errorf("expected 100 wood sold, got %d", got)
	}
	if got := s.Stock(1, rts.Gold); got != goldBefore+75 {
		t.Errorf("expected 75 gold bought at the 0.75 rate, got %d", got)
	}
}

func TestResearch_AppliesTechEffects(t *testing.T) {
	s := newTestSim()
	events := collectEvents(s)

	barracks := s.spawnBuilding(1, "barracks", rts.Position{X: 44, Y: 44}, true)
	s.Submit(1, rts.ResearchCommand{Building: barracks, Tech: "forging"})
	stepFor(s, 36*time.Second, time.Second)

	done := false
	for _, ev := range *events {
		if r, ok := ev.(rts.ResearchCompletedEvent); ok && r.Tech == "forging" && r.Player == 1 {
			done = true
		}
	}
	if !done {
		t.Fatal("expected the research completed")
	}

	// Forging boosts militia by 15%: 55 HP -> 63.
	id := s.spawnUnit(1, "militia", rts.Position{X: 100, Y: 100})
	e, _ := s.EntityByID(id)
	if e.MaxHP != 63 {
		t.Errorf("expected boosted militia HP 63, got %d", e.MaxHP)
	}
}

func TestResearch_RejectsDuplicate(t *testing.T) {
	s := newTestSim()
	barracks := s.spawnBuilding(1, "barracks", rts.Position{X: 44, Y: 44}, true)

	s.Submit(1, rts.ResearchCommand{Building: barracks, Tech: "forging"})
	stepFor(s, 36*time.Second, time.Second)

	foodBefore := s.Stock(1, rts.Food)
	s.Submit(1, rts.ResearchCommand{Building: barracks, Tech: "forging"})
	s.Step(100 * time.Millisecond)

	if got := s.Stock(1, rts.Food); got != foodBefore {
		t.Error("re-researching a finished tech must be rejected")
	}
}

func TestSetFormation_SpreadsUnits(t *testing.T) {
	s := newTestSim()
	var ids []rts.EntityID
	for i := 0; i < 4; i++ {
		ids = append(ids, s.spawnUnit(1, "militia", rts.Position{X: 100, Y: 100}))
	}

	s.Submit(1, rts.SetFormationCommand{Units: ids, Formation: rts.FormationLine})
	stepFor(s, 3*time.Second, 100*time.Millisecond)

	seen := make(map[rts.Position]bool)
	for _, id := range ids {
		e, _ := s.EntityByID(id)
		if seen[e.Pos] {
			t.Errorf("expected distinct formation slots, duplicate at %v", e.Pos)
		}
		seen[e.Pos] = true
	}
}

func TestAgeGates_AdvanceOnSchedule(t *testing.T) {
	s := New(Config{
		Players:    []PlayerSetup{{ID: 1, Base: rts.Position{X: 100, Y: 100}}},
		Seed:       3,
		AgeUpTimes: []time.Duration{2 * time.Second, 5 * time.Second},
	})
	events := collectEvents(s)

	stepFor(s, time.Second, time.Second)
	if got := s.Age(1); got != 1 {
		t.Fatalf("expected age 1 before the first gate, got %d", got)
	}

	stepFor(s, 2*time.Second, time.Second)
	if got := s.Age(1); got != 2 {
		t.Errorf("expected age 2 after the first gate, got %d", got)
	}

	stepFor(s, 3*time.Second, time.Second)
	if got := s.Age(1); got != 3 {
		t.Errorf("expected age 3 after the second gate, got %d", got)
	}

	advances := 0
	for _, ev := range *events {
		if _, ok := ev.(rts.AgeAdvanceEvent); ok {
			advances++
		}
	}
	if advances != 2 {
		t.Errorf("expected 2 age events, got %d", advances)
	}
}

func TestSnapshot_SummarizesMatch(t *testing.T) {
	s := newTestSim()
	s.spawnUnit(1, "militia", rts.Position{X: 100, Y: 100})

	snap := s.Snapshot()
	if len(snap.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(snap.Players))
	}
	if snap.Players[0].Player != 1 || snap.Players[1].Player != 2 {
		t.Error("expected players in ascending order")
	}

	p1 := snap.Players[0]
	if p1.Population != 7 {
		t.Errorf("expected population 7, got %d", p1.Population)
	}
	if p1.Military != 1 {
		t.Errorf("expected 1 military unit, got %d", p1.Military)
	}
	if p1.Buildings != 1 {
		t.Errorf("expected 1 building, got %d", p1.Buildings)
	}
	if p1.PopCap != 10 {
		t.Errorf("expected pop cap 10, got %d", p1.PopCap)
	}
	if p1.Stock[rts.Food] != 300 {
		t.Errorf("expected 300 food in the snapshot, got %d", p1.Stock[rts.Food])
	}
}

func TestRepairCommand_RestoresHealth(t *testing.T) {
	s := newTestSim()
	tc := s.EntitiesOfType(1, "town_center")[0]
	e := s.entries[tc.ID]
	Health.Get(e).Current = 600

	worker := s.EntitiesOf(1, rts.KindUnit)[0]
	s.Submit(1, rts.RepairCommand{Units: []rts.EntityID{worker.ID}, Structure: tc.ID})
	stepFor(s, 10*time.Second, time.Second)

	after, _ := s.EntityByID(tc.ID)
	if after.HP <= 600 {
		t.Errorf("expected repairs to raise health, got %d", after.HP)
	}
}
