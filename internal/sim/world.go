package sim

import (
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/yohamta/donburi"

	"github.com/hearthland/stratagem/internal/logger"
	"github.com/hearthland/stratagem/pkg/rts"
)

// PlayerSetup places one participant on the map.
type PlayerSetup struct {
	ID   rts.PlayerID
	Base rts.Position
}

// Config describes a skirmish map.
type Config struct {
	MapWidth, MapHeight float64
	Players             []PlayerSetup
	Catalog             *rts.Catalog // nil = rts.DefaultCatalog()
	Seed                int64
	AgeUpTimes          []time.Duration // elapsed time gates for ages 2, 3, ...
}

// playerState is the per-participant bookkeeping outside the ECS.
type playerState struct {
	base  rts.Position
	stock map[rts.ResourceKind]float64
	age   int

	// income accounting for NetRate, sampled over rateWindow
	delta     map[rts.ResourceKind]float64
	rate      map[rts.ResourceKind]float64
	rateTimer float64

	// technology effects
	researched map[string]bool
	gatherMult map[rts.ResourceKind]float64
	buildMult  float64
	moveMult   float64
	unitBoost  map[string]float64

	lastAlert time.Duration
}

const (
	rateWindow     = 10.0 // seconds between NetRate samples
	unitSpeedScale = 3.0  // world units per second per catalog speed point
	gatherRange    = 2.0
	buildRange     = 3.0
	gatherRate     = 0.6 // resource per worker-second
	repairRate     = 5.0 // hit points per worker-second
	aggroRange     = 6.0
	tradeRate      = 0.75
	alertThrottle  = 3 * time.Second
)

type queuedCommand struct {
	owner rts.PlayerID
	cmd   rts.Command
}

// Sim is a headless skirmish world. It is not safe for concurrent use; the
// match loop owns it and steps it between controller ticks.
type Sim struct {
	ecs     donburi.World
	catalog *rts.Catalog
	w, h    float64
	ageUps  []time.Duration

	elapsed time.Duration
	nextID  rts.EntityID
	entries map[rts.EntityID]*donburi.Entry
	players map[rts.PlayerID]*playerState

	pending []queuedCommand
	subs    []func(rts.Event)
	removed []rts.EntityID // collected during systems, flushed per step

	rng *rand.Rand
	log zerolog.Logger
}

// New builds a skirmish world and populates the starting scenario: one town
// center and six villagers per participant, plus resource clusters.
func New(cfg Config) *Sim {
	if cfg.Catalog == nil {
		cfg.Catalog = rts.DefaultCatalog()
	}
	if cfg.MapWidth == 0 {
		cfg.MapWidth, cfg.MapHeight = 200, 200
	}
	if len(cfg.AgeUpTimes) == 0 {
		cfg.AgeUpTimes = []time.Duration{8 * time.Minute, 18 * time.Minute}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Sim{
		ecs:     donburi.NewWorld(),
		catalog: cfg.Catalog,
		w:       cfg.MapWidth,
		h:       cfg.MapHeight,
		ageUps:  cfg.AgeUpTimes,
		entries: make(map[rts.EntityID]*donburi.Entry),
		players: make(map[rts.PlayerID]*playerState),
		rng:     rand.New(rand.NewSource(seed)),
		log:     logger.Component("sim"),
	}
	for _, p := range cfg.Players {
		s.players[p.ID] = newPlayerState(p.Base)
	}
	s.populate(cfg.Players)
	return s
}

func newPlayerState(base rts.Position) *playerState {
	ps := &playerState{
		base: base,
		stock: map[rts.ResourceKind]float64{
			rts.Food: 300, rts.Wood: 300, rts.Gold: 150, rts.Stone: 100, rts.Iron: 50,
		},
		age:        1,
		delta:      make(map[rts.ResourceKind]float64),
		rate:       make(map[rts.ResourceKind]float64),
		researched: make(map[string]bool),
		gatherMult: make(map[rts.ResourceKind]float64),
		buildMult:  1,
		moveMult:   1,
		unitBoost:  make(map[string]float64),
	}
	for _, k := range rts.AllResources() {
		ps.gatherMult[k] = 1
	}
	return ps
}

// Subscribe registers an event listener. Listeners receive every event and
// filter by owner themselves.
func (s *Sim) Subscribe(fn func(rts.Event)) {
	s.subs = append(s.subs, fn)
}

func (s *Sim) emit(ev rts.Event) {
	for _, fn := range s.subs {
		fn(ev)
	}
}

// Submit queues a command for execution at the start of the next step.
// Invalid commands are dropped there; Submit itself never fails.
func (s *Sim) Submit(owner rts.PlayerID, cmd rts.Command) {
	s.pending = append(s.pending, queuedCommand{owner: owner, cmd: cmd})
}

// spawn allocators

func (s *Sim) allocID() rts.EntityID {
	s.nextID++
	return s.nextID
}

func (s *Sim) spawnUnit(owner rts.PlayerID, typ string, pos rts.Position) rts.EntityID {
	def, ok := s.catalog.Unit(typ)
	if !ok {
		return 0
	}
	ps := s.players[owner]
	boost := 1.0
	if ps != nil {
		boost += ps.unitBoost[typ]
	}

	e := s.ecs.Entry(s.ecs.Create(Identity, Transform, Owner, Health, Unit))
	id := s.allocID()
	*Identity.Get(e) = IdentityData{ID: id, Kind: rts.KindUnit, Type: typ}
	*Transform.Get(e) = TransformData{Pos: pos}
	*Owner.Get(e) = OwnerData{Player: owner}
	hp := int(float64(def.MaxHP) * boost)
	*Health.Get(e) = HealthData{Current: hp, Max: hp}
	*Unit.Get(e) = UnitData{
		Military: def.Military,
		Speed:    def.Speed,
		Attack:   int(float64(def.Attack) * boost),
		Range:    def.Range,
		State:    UnitIdle,
	}
	s.entries[id] = e
	return id
}

func (s *Sim) spawnBuilding(owner rts.PlayerID, typ string, pos rts.Position, complete bool) rts.EntityID {
	def, ok := s.catalog.Building(typ)
	if !ok {
		return 0
	}
	e := s.ecs.Entry(s.ecs.Create(Identity, Transform, Owner, Health, Building))
	id := s.allocID()
	*Identity.Get(e) = IdentityData{ID: id, Kind: rts.KindBuilding, Type: typ}
	*Transform.Get(e) = TransformData{Pos: pos}
	*Owner.Get(e) = OwnerData{Player: owner}
	b := Building.Get(e)
	b.Class = def.Class
	h := Health.Get(e)
	h.Max = def.MaxHP
	if complete {
		b.Progress = 1
		h.Current = def.MaxHP
	} else {
		h.Current = def.MaxHP / 10
	}
	s.entries[id] = e
	return id
}

func (s *Sim) spawnResource(kind rts.ResourceKind, pos rts.Position, amount float64) rts.EntityID {
	e := s.ecs.Entry(s.ecs.Create(Identity, Transform, Owner, ResourceNode))
	id := s.allocID()
	*Identity.Get(e) = IdentityData{ID: id, Kind: rts.KindResource, Type: string(kind)}
	*Transform.Get(e) = TransformData{Pos: pos}
	*Owner.Get(e) = OwnerData{Player: rts.Neutral}
	*ResourceNode.Get(e) = ResourceNodeData{Kind: kind, Amount: amount}
	s.entries[id] = e
	return id
}

// despawn removes an entity immediately and drops its ID index entry.
func (s *Sim) despawn(id rts.EntityID) {
	e, ok := s.entries[id]
	if !ok {
		return
	}
	delete(s.entries, id)
	if e.Valid() {
		s.ecs.Remove(e.Entity())
	}
}

// World queries.

func (s *Sim) info(e *donburi.Entry) rts.EntityInfo {
	id := Identity.Get(e)
	out := rts.EntityInfo{
		ID:   id.ID,
		Kind: id.Kind,
		Type: id.Type,
		Pos:  Transform.Get(e).Pos,
	}
	if e.HasComponent(Owner) {
		out.Owner = Owner.Get(e).Player
	}
	if e.HasComponent(Health) {
		h := Health.Get(e)
		out.HP, out.MaxHP = h.Current, h.Max
	}
	if e.HasComponent(Unit) {
		u := Unit.Get(e)
		out.Military = u.Military
		out.Idle = u.State == UnitIdle
		if u.State == UnitGathering {
			out.Gathering = u.Gathering
		}
	}
	if e.HasComponent(ResourceNode) {
		out.Amount = int(ResourceNode.Get(e).Amount)
	}
	return out
}

// EntitiesOf returns all live entities of a kind owned by a participant.
func (s *Sim) EntitiesOf(owner rts.PlayerID, kind rts.EntityKind) []rts.EntityInfo {
	var out []rts.EntityInfo
	Identity.Each(s.ecs, func(e *donburi.Entry) {
		if Identity.Get(e).Kind != kind || Owner.Get(e).Player != owner {
			return
		}
		out = append(out, s.info(e))
	})
	return out
}

// EntitiesOfType returns all live entities with the given type name owned by
// a participant.
func (s *Sim) EntitiesOfType(owner rts.PlayerID, typ string) []rts.EntityInfo {
	var out []rts.EntityInfo
	Identity.Each(s.ecs, func(e *donburi.Entry) {
		if Identity.Get(e).Type != typ || Owner.Get(e).Player != owner {
			return
		}
		out = append(out, s.info(e))
	})
	return out
}

// EntitiesInCircle returns all live entities within radius of center.
func (s *Sim) EntitiesInCircle(center rts.Position, radius float64) []rts.EntityInfo {
	var out []rts.EntityInfo
	Identity.Each(s.ecs, func(e *donburi.Entry) {
		if Transform.Get(e).Pos.DistanceTo(center) > radius {
			return
		}
		out = append(out, s.info(e))
	})
	return out
}

// EntityByID returns a snapshot of one entity, or false if it is gone.
func (s *Sim) EntityByID(id rts.EntityID) (rts.EntityInfo, bool) {
	e, ok := s.entries[id]
	if !ok || !e.Valid() {
		return rts.EntityInfo{}, false
	}
	return s.info(e), true
}

// IsWalkable reports whether the point is inside the map border.
func (s *Sim) IsWalkable(p rts.Position) bool {
	return p.X >= 1 && p.Y >= 1 && p.X <= s.w-1 && p.Y <= s.h-1
}

// IsBuildable reports whether the terrain accepts a building. The skirmish
// map has no obstructing terrain, so this matches walkability.
func (s *Sim) IsBuildable(p rts.Position) bool {
	return s.IsWalkable(p)
}

// Population returns current and maximum population for a participant.
func (s *Sim) Population(owner rts.PlayerID) (current, max int) {
	Identity.Each(s.ecs, func(e *donburi.Entry) {
		if Owner.Get(e).Player != owner {
			return
		}
		switch Identity.Get(e).Kind {
		case rts.KindUnit:
			current++
		case rts.KindBuilding:
			b := Building.Get(e)
			if b.Progress >= 1 {
				if def, ok := s.catalog.Building(Identity.Get(e).Type); ok {
					max += def.PopRoom
				}
			}
		}
	})
	return current, max
}

// Stock returns the current stockpile of one resource.
func (s *Sim) Stock(owner rts.PlayerID, kind rts.ResourceKind) int {
	ps := s.players[owner]
	if ps == nil {
		return 0
	}
	return int(ps.stock[kind])
}

// NetRate returns the recent net income per minute of one resource.
func (s *Sim) NetRate(owner rts.PlayerID, kind rts.ResourceKind) float64 {
	ps := s.players[owner]
	if ps == nil {
		return 0
	}
	return ps.rate[kind]
}

// CanAfford reports whether the participant's stockpile covers a cost.
func (s *Sim) CanAfford(owner rts.PlayerID, cost rts.Cost) bool {
	ps := s.players[owner]
	if ps == nil {
		return false
	}
	for k, v := range cost {
		if ps.stock[k] < float64(v) {
			return false
		}
	}
	return true
}

// Age returns the participant's current age.
func (s *Sim) Age(owner rts.PlayerID) int {
	ps := s.players[owner]
	if ps == nil {
		return 1
	}
	return ps.age
}

// Elapsed returns game time since match start.
func (s *Sim) Elapsed() time.Duration { return s.elapsed }

// Catalog returns the definitions in play.
func (s *Sim) Catalog() *rts.Catalog { return s.catalog }

// ActivePlayers returns the participants that still hold any unit or
// building, in ascending ID order. A match is decided when one or zero
// remain.
func (s *Sim) ActivePlayers() []rts.PlayerID {
	alive := make(map[rts.PlayerID]bool)
	Identity.Each(s.ecs, func(e *donburi.Entry) {
		if Identity.Get(e).Kind == rts.KindResource {
			return
		}
		alive[Owner.Get(e).Player] = true
	})
	var out []rts.PlayerID
	for id := range s.players {
		if alive[id] {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *Sim) deduct(owner rts.PlayerID, cost rts.Cost) {
	ps := s.players[owner]
	for k, v := range cost {
		ps.stock[k] -= float64(v)
		ps.delta[k] -= float64(v)
	}
}
