package rts

// Command is the closed set of orders the engine can issue to the command
// execution layer. All commands are asynchronous requests: the engine never
// awaits confirmation and observes effects through events or fresh queries.
// Implementations are dispatched by type switch in the executor.
type Command interface {
	isCommand()
}

// MoveCommand orders units to a position.
type MoveCommand struct {
	Units  []EntityID
	Target Position
}

// AttackCommand orders units to attack a specific entity.
type AttackCommand struct {
	Units  []EntityID
	Target EntityID
}

// AttackMoveCommand orders units to advance on a position, engaging any
// hostile entity encountered on the way.
type AttackMoveCommand struct {
	Units  []EntityID
	Target Position
}

// GatherCommand orders workers to gather from a resource node.
type GatherCommand struct {
	Units []EntityID
	Node  EntityID
}

// BuildCommand orders workers to construct a building at a site.
type BuildCommand struct {
	Units    []EntityID
	Building string
	Site     Position
}

// RepairCommand orders workers to repair a damaged structure.
type RepairCommand struct {
	Units     []EntityID
	Structure EntityID
}

// TrainCommand queues a unit at a production building.
type TrainCommand struct {
	Building EntityID
	UnitType string
}

// ResearchCommand queues a technology at a building.
type ResearchCommand struct {
	Building EntityID
	Tech     string
}

// SetFormationCommand arranges units into a formation.
type SetFormationCommand struct {
	Units     []EntityID
	Formation Formation
}

// TradeCommand exchanges stock at the market rate.
type TradeCommand struct {
	Sell   ResourceKind
	Buy    ResourceKind
	Amount int
}

func (MoveCommand) isCommand()         {}
func (AttackCommand) isCommand()       {}
func (AttackMoveCommand) isCommand()   {}
func (GatherCommand) isCommand()       {}
func (BuildCommand) isCommand()        {}
func (RepairCommand) isCommand()       {}
func (TrainCommand) isCommand()        {}
func (ResearchCommand) isCommand()     {}
func (SetFormationCommand) isCommand() {}
func (TradeCommand) isCommand()        {}
