package ai

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hearthland/stratagem/internal/config"
	"github.com/hearthland/stratagem/internal/logger"
	"github.com/hearthland/stratagem/pkg/rts"
)

// ControllerConfig configures one AI participant.
type ControllerConfig struct {
	Difficulty   string // easy, medium, hard
	Civilization string // key into Civilizations; empty for a neutral profile
	Seed         int64  // 0 = non-deterministic
	Tuning       *config.Tuning
}

// Controller drives one computer-controlled participant. All strategy state
// lives in its Context; all mutation happens synchronously inside Step, so
// no locking is needed beyond the event inbox.
type Controller struct {
	player rts.PlayerID
	world  rts.World
	sink   rts.CommandSink

	ctx   *Context
	sched *Scheduler
	rng   *rand.Rand
	log   zerolog.Logger

	mu     sync.Mutex
	inbox  []rts.Event
	closed bool

	now     time.Duration
	started bool
}

// NewController creates a controller for one participant. The world and
// sink are the external simulation collaborators; the controller issues
// fire-and-forget commands and observes results through queries and events.
func NewController(player rts.PlayerID, world rts.World, sink rts.CommandSink, cfg ControllerConfig) *Controller {
	if cfg.Difficulty == "" {
		cfg.Difficulty = "medium"
	}

	rng := newRng(cfg.Seed)
	params := DifficultyParams(cfg.Difficulty)
	if cfg.Tuning != nil {
		params.ApplyTuning(*cfg.Tuning)
	}

	pers := GeneratePersonality(rng, Civilizations[cfg.Civilization], cfg.Difficulty, world.Catalog())

	c := &Controller{
		player: player,
		world:  world,
		sink:   sink,
		ctx:    NewContext(player, cfg.Difficulty, pers, params),
		sched:  &Scheduler{},
		rng:    rng,
		log: logger.Component("ai").With().
			Int("player", int(player)).
			Str("difficulty", cfg.Difficulty).
			Logger(),
	}

	p := &c.ctx.Params
	c.sched.Add("recon", p.ReconInterval, c.tickRecon)
	c.sched.Add("phase", p.PhaseInterval, c.tickPhase)
	c.sched.Add("economy", p.EconomyInterval, c.tickEconomy)
	c.sched.Add("imbalance", p.ImbalanceInterval, c.tickImbalance)
	c.sched.Add("construction", p.ConstructionInterval, c.tickConstruction)
	c.sched.Add("production", p.ProductionInterval, c.tickProduction)
	c.sched.Add("tactics", p.TacticsInterval, c.tickTactics)
	c.sched.Add("defense", p.DefenseInterval, c.tickDefense)
	c.sched.Add("scout", p.ScoutInterval, c.tickScout)

	return c
}

// Context exposes the strategy state for inspection (telemetry, tests).
// Callers must not mutate it.
func (c *Controller) Context() *Context { return c.ctx }

// Notify queues a world-change event. Safe to call from any goroutine; the
// event is applied at the top of the next Step so context access stays on
// one logical thread.
func (c *Controller) Notify(ev rts.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.inbox = append(c.inbox, ev)
}

// Step advances the controller to the given game time: drains the event
// inbox, then runs every sub-manager whose cadence is due. The first Step
// performs the start-up world scan.
func (c *Controller) Step(now time.Duration) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	pending := c.inbox
	c.inbox = nil
	c.mu.Unlock()

	c.now = now
	if !c.started {
		c.started = true
		c.initialScan()
	}

	for _, ev := range pending {
		c.handleEvent(ev, now)
	}
	c.sched.Step(now)
}

// Close tears the controller down: every periodic handler is cancelled
// before the context is discarded, so no callback can observe a dead
// participant. Idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.inbox = nil
	c.sched.Stop()
	c.log.Debug().Msg("Controller closed")
}
