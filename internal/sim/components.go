// Package sim is an in-process simulation world implementing the engine's
// World and CommandSink collaborators: an entity store on a donburi ECS, a
// typed command executor, and the per-frame systems (movement, gathering,
// construction, combat, production) that feed events back to controllers.
// It exists for headless skirmishes and tests; a full game client would
// supply its own implementation.
package sim

import (
	"github.com/yohamta/donburi"

	"github.com/hearthland/stratagem/pkg/rts"
)

// UnitState is what a unit is currently doing.
type UnitState int

const (
	UnitIdle UnitState = iota
	UnitMoving
	UnitAttackMoving
	UnitGathering
	UnitBuilding
	UnitRepairing
	UnitFighting
)

// IdentityData gives every entity a stable external ID and classification.
type IdentityData struct {
	ID   rts.EntityID
	Kind rts.EntityKind
	Type string
}

// TransformData is the entity's position.
type TransformData struct {
	Pos rts.Position
}

// OwnerData is the owning participant; resource nodes belong to Neutral.
type OwnerData struct {
	Player rts.PlayerID
}

// HealthData is current and maximum hit points.
type HealthData struct {
	Current, Max int
}

// UnitData is the mutable behavior state of a unit.
type UnitData struct {
	Military bool
	Speed    float64
	Attack   int
	Range    float64

	State        UnitState
	MoveTarget   rts.Position
	TargetEntity rts.EntityID // attack / gather / build / repair object
	Gathering    rts.ResourceKind
	Carry        float64 // gathered fraction not yet banked
	Cooldown     float64 // seconds until next strike
}

// BuildingData is the mutable state of a building.
type BuildingData struct {
	Class    rts.BuildingClass
	Progress float64 // construction progress in [0,1]; 1 = operational

	TrainUnit      string
	TrainRemaining float64
	ResearchTech   string
	ResearchLeft   float64
	Cooldown       float64 // towers: seconds until next shot
}

// ResourceNodeData is the remaining stock of a resource node.
type ResourceNodeData struct {
	Kind   rts.ResourceKind
	Amount float64
}

var (
	Identity     = donburi.NewComponentType[IdentityData]()
	Transform    = donburi.NewComponentType[TransformData]()
	Owner        = donburi.NewComponentType[OwnerData]()
	Health       = donburi.NewComponentType[HealthData]()
	Unit         = donburi.NewComponentType[UnitData]()
	Building     = donburi.NewComponentType[BuildingData]()
	ResourceNode = donburi.NewComponentType[ResourceNodeData]()
)
