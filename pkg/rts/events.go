package rts

// Event is the closed set of world-change notifications pushed to the
// engine by the simulation layer. Events arrive asynchronously relative to
// engine ticks; controllers queue them and apply them at the top of the
// next step.
type Event interface {
	isEvent()
}

// AttackAlertEvent reports that a participant's entity was attacked.
type AttackAlertEvent struct {
	Target PlayerID
	Pos    Position
}

// EntityRemovedEvent reports that an entity left the world (killed,
// demolished, or consumed).
type EntityRemovedEvent struct {
	Owner PlayerID
	ID    EntityID
	Kind  EntityKind
	Type  string
}

// ResourceDepletedEvent reports that a resource node ran out.
type ResourceDepletedEvent struct {
	Node EntityID
	Kind ResourceKind
}

// BuildingConstructedEvent reports a finished construction.
type BuildingConstructedEvent struct {
	Owner PlayerID
	Type  string
	ID    EntityID
}

// ResearchCompletedEvent reports a finished technology.
type ResearchCompletedEvent struct {
	Player PlayerID
	Tech   string
}

// AgeAdvanceEvent reports that a participant reached a new age.
type AgeAdvanceEvent struct {
	Player PlayerID
	NewAge int
}

func (AttackAlertEvent) isEvent()          {}
func (EntityRemovedEvent) isEvent()        {}
func (ResourceDepletedEvent) isEvent()     {}
func (BuildingConstructedEvent) isEvent()  {}
func (ResearchCompletedEvent) isEvent()    {}
func (AgeAdvanceEvent) isEvent()           {}
