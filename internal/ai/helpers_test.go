package ai

import (
	"time"

	"github.com/hearthland/stratagem/pkg/rts"
)

// fakeWorld is an in-memory World for controller tests. Entities are held in
// insertion order so queries are deterministic.
type fakeWorld struct {
	catalog  *rts.Catalog
	entities []rts.EntityInfo
	stock    map[rts.PlayerID]map[rts.ResourceKind]int
	rate     map[rts.PlayerID]map[rts.ResourceKind]float64
	popCap   map[rts.PlayerID]int
	ages     map[rts.PlayerID]int
	elapsed  time.Duration
	nextID   rts.EntityID

	unbuildable func(rts.Position) bool
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		catalog: rts.DefaultCatalog(),
		stock:   make(map[rts.PlayerID]map[rts.ResourceKind]int),
		rate:    make(map[rts.PlayerID]map[rts.ResourceKind]float64),
		popCap:  make(map[rts.PlayerID]int),
		ages:    make(map[rts.PlayerID]int),
	}
}

func (w *fakeWorld) add(e rts.EntityInfo) rts.EntityID {
	w.nextID++
	e.ID = w.nextID
	w.entities = append(w.entities, e)
	return e.ID
}

func (w *fakeWorld) addUnit(owner rts.PlayerID, typ string, pos rts.Position, military, idle bool) rts.EntityID {
	hp := 40
	if def, ok := w.catalog.Unit(typ); ok {
		hp = def.MaxHP
	}
	return w.add(rts.EntityInfo{
		Owner: owner, Kind: rts.KindUnit, Type: typ, Pos: pos,
		HP: hp, MaxHP: hp, Military: military, Idle: idle,
	})
}

func (w *fakeWorld) addBuilding(owner rts.PlayerID, typ string, pos rts.Position) rts.EntityID {
	hp := 500
	if def, ok := w.catalog.Building(typ); ok {
		hp = def.MaxHP
	}
	return w.add(rts.EntityInfo{
		Owner: owner, Kind: rts.KindBuilding, Type: typ, Pos: pos, HP: hp, MaxHP: hp,
	})
}

func (w *fakeWorld) addResource(kind rts.ResourceKind, pos rts.Position, amount int) rts.EntityID {
	return w.add(rts.EntityInfo{
		Owner: rts.Neutral, Kind: rts.KindResource, Type: string(kind), Pos: pos, Amount: amount,
	})
}

func (w *fakeWorld) remove(id rts.EntityID) {
	for i, e := range w.entities {
		if e.ID == id {
			w.entities = append(w.entities[:i], w.entities[i+1:]...)
			return
		}
	}
}

func (w *fakeWorld) mutate(id rts.EntityID, fn func(*rts.EntityInfo)) {
	for i := range w.entities {
		if w.entities[i].ID == id {
			fn(&w.entities[i])
			return
		}
	}
}

func (w *fakeWorld) setStock(owner rts.PlayerID, kind rts.ResourceKind, v int) {
	if w.stock[owner] == nil {
		w.stock[owner] = make(map[rts.ResourceKind]int)
	}
	w.stock[owner][kind] = v
}

func (w *fakeWorld) setRate(owner rts.PlayerID, kind rts.ResourceKind, v float64) {
	if w.rate[owner] == nil {
		w.rate[owner] = make(map[rts.ResourceKind]float64)
	}
	w.rate[owner][kind] = v
}

func (w *fakeWorld) EntitiesOf(owner rts.PlayerID, kind rts.EntityKind) []rts.EntityInfo {
	var out []rts.EntityInfo
	for _, e := range w.entities {
		if e.Owner == owner && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (w *fakeWorld) EntitiesOfType(owner rts.PlayerID, typ string) []rts.EntityInfo {
	var out []rts.EntityInfo
	for _, e := range w.entities {
		if e.Owner == owner && e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (w *fakeWorld) EntitiesInCircle(center rts.Position, radius float64) []rts.EntityInfo {
	var out []rts.EntityInfo
	for _, e := range w.entities {
		if e.Pos.DistanceTo(center) <= radius {
			out = append(out, e)
		}
	}
	return out
}

func (w *fakeWorld) EntityByID(id rts.EntityID) (rts.EntityInfo, bool) {
	for _, e := range w.entities {
		if e.ID == id {
			return e, true
		}
	}
	return rts.EntityInfo{}, false
}

func (w *fakeWorld) IsWalkable(p rts.Position) bool { return true }

func (w *fakeWorld) IsBuildable(p rts.Position) bool {
	if w.unbuildable != nil && w.unbuildable(p) {
		return false
	}
	return true
}

func (w *fakeWorld) Population(owner rts.PlayerID) (int, int) {
	cur := 0
	for _, e := range w.entities {
		if e.Owner == owner && e.Kind == rts.KindUnit {
			cur++
		}
	}
	limit, ok := w.popCap[owner]
	if !ok {
		limit = 200
	}
	return cur, limit
}

func (w *fakeWorld) Stock(owner rts.PlayerID, kind rts.ResourceKind) int {
	if s, ok := w.stock[owner]; ok {
		if v, ok := s[kind]; ok {
			return v
		}
	}
	return 500
}

func (w *fakeWorld) NetRate(owner rts.PlayerID, kind rts.ResourceKind) float64 {
	if r, ok := w.rate[owner]; ok {
		return r[kind]
	}
	return 0
}

func (w *fakeWorld) CanAfford(owner rts.PlayerID, cost rts.Cost) bool {
	for k, v := range cost {
		if w.Stock(owner, k) < v {
			return false
		}
	}
	return true
}

func (w *fakeWorld) Age(owner rts.PlayerID) int {
	if a, ok := w.ages[owner]; ok {
		return a
	}
	return 1
}

func (w *fakeWorld) Elapsed() time.Duration { return w.elapsed }

func (w *fakeWorld) Catalog() *rts.Catalog { return w.catalog }

// fakeSink records submitted commands.
type fakeSink struct {
	cmds []rts.Command
}

func (s *fakeSink) Submit(owner rts.PlayerID, cmd rts.Command) {
	s.cmds = append(s.cmds, cmd)
}

func (s *fakeSink) reset() { s.cmds = nil }

// newTestController builds a seeded medium controller over a base with one
// town center and runs the start-up scan.
func newTestController(w *fakeWorld, sink *fakeSink) *Controller {
	w.addBuilding(1, "town_center", rts.Position{X: 100, Y: 100})
	c := NewController(1, w, sink, ControllerConfig{Difficulty: "medium", Seed: 42})
	c.initialScan()
	return c
}
