// Package rts defines the shared domain model for the strategy engine:
// entity snapshots, resource kinds, costs, the closed command and event
// variants exchanged with the simulation layer, and the query interfaces
// the engine consumes. It contains no game rules of its own.
package rts

import "math"

// PlayerID identifies a participant. Neutral owns resource nodes.
type PlayerID int

// Neutral is the owner of unowned map entities (resource nodes).
const Neutral PlayerID = 0

// EntityID identifies a live entity in the world. IDs are never reused
// within a match.
type EntityID uint64

// Position is a point on the map in world units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the euclidean distance to another position.
func (p Position) DistanceTo(o Position) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the position offset by (dx, dy).
func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// ResourceKind names a gatherable resource.
type ResourceKind string

const (
	Food  ResourceKind = "food"
	Wood  ResourceKind = "wood"
	Gold  ResourceKind = "gold"
	Stone ResourceKind = "stone"
	Iron  ResourceKind = "iron"
)

// AllResources returns every resource kind in canonical order.
func AllResources() []ResourceKind {
	return []ResourceKind{Food, Wood, Gold, Stone, Iron}
}

// Cost is a bundle of resource amounts.
type Cost map[ResourceKind]int

// Total returns the summed amount across all resources.
func (c Cost) Total() int {
	t := 0
	for _, v := range c {
		t += v
	}
	return t
}

// EntityKind is the coarse classification of a world entity.
type EntityKind int

const (
	KindUnit EntityKind = iota
	KindBuilding
	KindResource
)

// Formation is a tactical group arrangement.
type Formation string

const (
	FormationLine   Formation = "line"
	FormationBox    Formation = "box"
	FormationWedge  Formation = "wedge"
	FormationSpread Formation = "spread"
)

// AllFormations returns every formation in canonical order.
func AllFormations() []Formation {
	return []Formation{FormationLine, FormationBox, FormationWedge, FormationSpread}
}

// EntityInfo is a read-only snapshot of one entity, as returned by world
// queries. The engine never holds live references into the world.
type EntityInfo struct {
	ID     EntityID   `json:"id"`
	Owner  PlayerID   `json:"owner"`
	Kind   EntityKind `json:"kind"`
	Type   string     `json:"type"` // unit/building type, or resource kind for nodes
	Pos    Position   `json:"pos"`
	HP     int        `json:"hp"`
	MaxHP  int        `json:"max_hp"`
	Amount int        `json:"amount,omitempty"` // remaining stock, resource nodes only

	// Unit task state.
	Military  bool         `json:"military,omitempty"`
	Idle      bool         `json:"idle,omitempty"`
	Gathering ResourceKind `json:"gathering,omitempty"` // empty when not gathering
}

// HealthFraction returns HP/MaxHP in [0,1], or 1 for entities without health.
func (e EntityInfo) HealthFraction() float64 {
	if e.MaxHP <= 0 {
		return 1
	}
	return float64(e.HP) / float64(e.MaxHP)
}
