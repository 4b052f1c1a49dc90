package ai

import (
	"time"

	"github.com/hearthland/stratagem/internal/config"
	"github.com/hearthland/stratagem/pkg/rts"
)

// GamePhase is the coarse game-stage classification driving strategic
// re-weighting. Transitions are monotonic: early, then mid, then late.
type GamePhase int

const (
	PhaseEarly GamePhase = iota
	PhaseMid
	PhaseLate
)

func (p GamePhase) String() string {
	switch p {
	case PhaseMid:
		return "mid"
	case PhaseLate:
		return "late"
	default:
		return "early"
	}
}

// Params is the mutable bundle of tunable weights and intervals for one
// controller. It is seeded from a difficulty profile and adjusted at
// runtime by phase transitions and emergency conditions.
type Params struct {
	// Tick cadences per concern.
	ReconInterval        time.Duration
	PhaseInterval        time.Duration
	EconomyInterval      time.Duration
	ImbalanceInterval    time.Duration
	ConstructionInterval time.Duration
	ProductionInterval   time.Duration
	TacticsInterval      time.Duration
	DefenseInterval      time.Duration
	ScoutInterval        time.Duration

	// Economy.
	GatherPriority map[rts.ResourceKind]float64
	CriticalStock  int
	AbundantStock  int

	// Construction.
	MaxBuildWorkers int
	SiteClearance   float64
	RingStep        float64
	RingPoints      int
	RingCount       int
	// StrictQueueHead preserves the head-of-queue retry policy: a failing
	// head task is retried at the head every tick and can stall the queue
	// behind a permanently unbuildable task. When false, a failing head is
	// rotated to the back of its priority band instead.
	StrictQueueHead bool

	// Tactics.
	MinGroupSize           int
	AssemblyRadius         float64
	TargetRadius           float64
	ArrivalFraction        float64
	RetreatHealthThreshold float64
	AttackAggroRadius      float64

	// Production.
	RandomnessFactor float64

	// Defense.
	TowerBaseCount             int
	WallDefensivenessThreshold float64
	PerimeterRadius            float64
	DefenseReactionRadius      float64
	UnderAttackDecay           time.Duration
}

// baseParams returns the medium-difficulty defaults.
func baseParams() Params {
	return Params{
		ReconInterval:        20 * time.Second,
		PhaseInterval:        10 * time.Second,
		EconomyInterval:      8 * time.Second,
		ImbalanceInterval:    3 * time.Second,
		ConstructionInterval: 5 * time.Second,
		ProductionInterval:   6 * time.Second,
		TacticsInterval:      2 * time.Second,
		DefenseInterval:      7 * time.Second,
		ScoutInterval:        15 * time.Second,

		GatherPriority: map[rts.ResourceKind]float64{
			rts.Food:  1.0,
			rts.Wood:  0.9,
			rts.Gold:  0.6,
			rts.Stone: 0.4,
			rts.Iron:  0.3,
		},
		CriticalStock: 200,
		AbundantStock: 1000,

		MaxBuildWorkers: 3,
		SiteClearance:   3.0,
		RingStep:        4.0,
		RingPoints:      12,
		RingCount:       6,
		StrictQueueHead: true,

		MinGroupSize:           5,
		AssemblyRadius:         6.0,
		TargetRadius:           8.0,
		ArrivalFraction:        0.7,
		RetreatHealthThreshold: 0.35,
		AttackAggroRadius:      10.0,

		RandomnessFactor: 0.2,

		TowerBaseCount:             1,
		WallDefensivenessThreshold: 0.7,
		PerimeterRadius:            18.0,
		DefenseReactionRadius:      40.0,
		UnderAttackDecay:           30 * time.Second,
	}
}

// DifficultyParams returns the parameter bundle for a difficulty level.
// Intervals tighten and thresholds sharpen as difficulty increases;
// unknown levels get medium.
func DifficultyParams(difficulty string) Params {
	p := baseParams()
	switch difficulty {
	case "easy":
		scaleIntervals(&p, 1.5)
		p.RandomnessFactor = 0.35
		p.RetreatHealthThreshold = 0.45
		p.MinGroupSize = 4
	case "hard":
		scaleIntervals(&p, 0.6)
		p.RandomnessFactor = 0.1
		p.RetreatHealthThreshold = 0.25
		p.MinGroupSize = 6
		p.MaxBuildWorkers = 4
	}
	return p
}

func scaleIntervals(p *Params, f float64) {
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) * f)
	}
	p.ReconInterval = scale(p.ReconInterval)
	p.PhaseInterval = scale(p.PhaseInterval)
	p.EconomyInterval = scale(p.EconomyInterval)
	p.ImbalanceInterval = scale(p.ImbalanceInterval)
	p.ConstructionInterval = scale(p.ConstructionInterval)
	p.ProductionInterval = scale(p.ProductionInterval)
	p.TacticsInterval = scale(p.TacticsInterval)
	p.DefenseInterval = scale(p.DefenseInterval)
	p.ScoutInterval = scale(p.ScoutInterval)
}

// ApplyTuning overlays non-zero profile values onto the parameter bundle.
func (p *Params) ApplyTuning(t config.Tuning) {
	secs := func(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }
	if t.ReconInterval > 0 {
		p.ReconInterval = secs(t.ReconInterval)
	}
	if t.PhaseInterval > 0 {
		p.PhaseInterval = secs(t.PhaseInterval)
	}
	if t.EconomyInterval > 0 {
		p.EconomyInterval = secs(t.EconomyInterval)
	}
	if t.ImbalanceInterval > 0 {
		p.ImbalanceInterval = secs(t.ImbalanceInterval)
	}
	if t.ConstructionInterval > 0 {
		p.ConstructionInterval = secs(t.ConstructionInterval)
	}
	if t.ProductionInterval > 0 {
		p.ProductionInterval = secs(t.ProductionInterval)
	}
	if t.TacticsInterval > 0 {
		p.TacticsInterval = secs(t.TacticsInterval)
	}
	if t.DefenseInterval > 0 {
		p.DefenseInterval = secs(t.DefenseInterval)
	}
	if t.ScoutInterval > 0 {
		p.ScoutInterval = secs(t.ScoutInterval)
	}
	if t.RetreatHealthThreshold > 0 {
		p.RetreatHealthThreshold = t.RetreatHealthThreshold
	}
	if t.MinGroupSize > 0 {
		p.MinGroupSize = t.MinGroupSize
	}
	if t.RandomnessFactor > 0 {
		p.RandomnessFactor = t.RandomnessFactor
	}
}
