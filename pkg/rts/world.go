package rts

import "time"

// World is the read side of the simulation layer. All methods return
// snapshots; the engine must not retain results across ticks.
type World interface {
	// EntitiesOf returns all live entities of a kind owned by a participant.
	EntitiesOf(owner PlayerID, kind EntityKind) []EntityInfo
	// EntitiesOfType returns all live entities with the given type name
	// owned by a participant. Resource nodes are owned by Neutral and typed
	// by their resource kind.
	EntitiesOfType(owner PlayerID, typ string) []EntityInfo
	// EntitiesInCircle returns all live entities within radius of center.
	EntitiesInCircle(center Position, radius float64) []EntityInfo
	// EntityByID returns a snapshot of one entity, or false if it is gone.
	EntityByID(id EntityID) (EntityInfo, bool)

	// IsWalkable reports whether units can traverse the point.
	IsWalkable(p Position) bool
	// IsBuildable reports whether the terrain at the point accepts a building.
	IsBuildable(p Position) bool

	// Population returns current and maximum population for a participant.
	Population(owner PlayerID) (current, max int)
	// Stock returns the current stockpile of one resource.
	Stock(owner PlayerID, kind ResourceKind) int
	// NetRate returns the recent net income per minute of one resource.
	NetRate(owner PlayerID, kind ResourceKind) float64
	// CanAfford reports whether the participant's stockpile covers a cost.
	CanAfford(owner PlayerID, cost Cost) bool
	// Age returns the participant's current age (1-based).
	Age(owner PlayerID) int

	// Elapsed returns game time since match start.
	Elapsed() time.Duration
	// Catalog returns the unit/building/technology definitions in play.
	Catalog() *Catalog
}

// CommandSink is the write side of the simulation layer. Submit is
// fire-and-forget; invalid commands are dropped by the executor.
type CommandSink interface {
	Submit(owner PlayerID, cmd Command)
}
