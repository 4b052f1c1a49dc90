package ai

import (
	"testing"

	"github.com/hearthland/stratagem/pkg/rts"
)

func TestBuildQueue_PriorityOrderWithFIFOTies(t *testing.T) {
	q := &BuildQueue{}
	q.Push(&BuildTask{Building: "a", Priority: 2})
	q.Push(&BuildTask{Building: "b", Priority: 4})
	q.Push(&BuildTask{Building: "c", Priority: 1})
	q.Push(&BuildTask{Building: "d", Priority: 3})

	var got []string
	for q.Len() > 0 {
		got = append(got, q.Pop().Building)
	}
	want := []string{"b", "d", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pop order: expected %v, got %v", want, got)
		}
	}
}

func TestBuildQueue_EqualPriorityIsFIFO(t *testing.T) {
	q := &BuildQueue{}
	q.Push(&BuildTask{Building: "first", Priority: 2})
	q.Push(&BuildTask{Building: "second", Priority: 2})
	q.Push(&BuildTask{Building: "third", Priority: 2})

	if got := q.Pop().Building; got != "first" {
		t.Errorf("expected first, got %s", got)
	}
	if got := q.Pop().Building; got != "second" {
		t.Errorf("expected second, got %s", got)
	}
}

func TestBuildQueue_RotateMovesHeadBehindPriorityBand(t *testing.T) {
	q := &BuildQueue{}
	q.Push(&BuildTask{Building: "a", Priority: 3})
	q.Push(&BuildTask{Building: "b", Priority: 3})
	q.Push(&BuildTask{Building: "c", Priority: 1})

	q.Rotate()

	if got := q.Peek().Building; got != "b" {
		t.Errorf("expected b at head after rotate, got %s", got)
	}
	q.Pop()
	if got := q.Peek().Building; got != "a" {
		t.Errorf("expected a behind its band, got %s", got)
	}
}

func TestQueueBuilding_RejectsUnknownKind(t *testing.T) {
	w := newFakeWorld()
	c := newTestController(w, &fakeSink{})

	if c.QueueBuilding("ziggurat", 2, nil) {
		t.Error("expected unknown building kind to be rejected")
	}
	if c.ctx.BuildQueue.Len() != 0 {
		t.Error("rejected task must not be queued")
	}
}

func TestTickConstruction_StartsAffordableHeadTask(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	w.addUnit(1, "villager", rts.Position{X: 100, Y: 100}, false, true)
	w.addUnit(1, "villager", rts.Position{X: 101, Y: 100}, false, true)
	c := newTestController(w, sink)

	c.QueueBuilding("house", 2, nil)
	sink.reset()
	c.tickConstruction(0)

	var build *rts.BuildCommand
	for _, cmd := range sink.cmds {
		if b, ok := cmd.(rts.BuildCommand); ok {
			build = &b
		}
	}
	if build == nil {
		t.Fatal("expected a build command")
	}
	if build.Building != "house" {
		t.Errorf("expected house, got %s", build.Building)
	}
	if len(build.Units) == 0 {
		t.Error("expected workers assigned")
	}
	if c.ctx.BuildQueue.Contains("house") {
		t.Error("started task must leave the queue")
	}
}

func TestTickConstruction_StrictHeadBlocksQueue(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	w.addUnit(1, "villager", rts.Position{X: 100, Y: 100}, false, true)
	c := newTestController(w, sink)

	// Head is unaffordable; the cheap house behind it must not start while
	// the strict head-retry policy is on.
	w.setStock(1, rts.Gold, 0)
	c.QueueBuilding("monument", 4, nil)
	c.QueueBuilding("house", 2, nil)

	sink.reset()
	c.tickConstruction(0)

	for _, cmd := range sink.cmds {
		if _, ok := cmd.(rts.BuildCommand); ok {
			t.Fatal("no build may start while the strict head is blocked")
		}
	}
	if got := c.ctx.BuildQueue.Peek().Building; got != "monument" {
		t.Errorf("blocked head must stay at the head, got %s", got)
	}
}

func TestTickConstruction_RotatingHeadUnblocksBand(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	w.addUnit(1, "villager", rts.Position{X: 100, Y: 100}, false, true)
	c := newTestController(w, sink)
	c.ctx.Params.StrictQueueHead = false

	w.setStock(1, rts.Gold, 0)
	c.QueueBuilding("monument", 2, nil) // unaffordable (needs gold)
	c.QueueBuilding("house", 2, nil)

	sink.reset()
	c.tickConstruction(0) // defers monument, rotates it behind house
	c.tickConstruction(0) // starts house

	started := false
	for _, cmd := range sink.cmds {
		if b, ok := cmd.(rts.BuildCommand); ok && b.Building == "house" {
			started = true
		}
	}
	if !started {
		t.Error("expected the house to start once the blocked head rotated")
	}
}

func TestTickConstruction_DefersWithoutIdleWorkers(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	w.addUnit(1, "villager", rts.Position{X: 100, Y: 100}, false, false) // busy
	c := newTestController(w, sink)

	c.QueueBuilding("house", 2, nil)
	sink.reset()
	c.tickConstruction(0)

	if !c.ctx.BuildQueue.Contains("house") {
		t.Error("task must stay queued when no idle workers exist")
	}
}

func TestEnsureHousing_QueuesHouseNearCap(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	w.popCap[1] = 5
	for i := 0; i < 4; i++ {
		w.addUnit(1, "villager", rts.Position{X: 100, Y: 100}, false, false)
	}
	c := newTestController(w, sink)

	c.ensureHousing()
	if !c.ctx.BuildQueue.Contains("house") {
		t.Fatal("expected a house queued when headroom is low")
	}

	// Second call must not queue a duplicate.
	c.ensureHousing()
	count := 0
	for _, task := range c.ctx.BuildQueue.tasks {
		if task.Building == "house" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one queued house, got %d", count)
	}
}

func TestResolveSite_SkipsObstructedFixedSite(t *testing.T) {
	w := newFakeWorld()
	sink := &fakeSink{}
	c := newTestController(w, sink)

	// Obstruct the fixed site with a resource node.
	site := rts.Position{X: 120, Y: 120}
	w.addResource(rts.Stone, site, 500)

	task := &BuildTask{Building: "house", Priority: 2, Site: &site}
	got := c.resolveSite(task)
	if got == nil {
		t.Fatal("expected a fallback site")
	}
	if got.DistanceTo(site) < c.ctx.Params.SiteClearance {
		t.Errorf("fallback site %v still inside the obstructed clearance", got)
	}
}
