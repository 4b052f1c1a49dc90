package ai

import (
	"time"

	"github.com/hearthland/stratagem/pkg/rts"
)

// ResourceNode is one known resource node in the participant's cached,
// distance-sorted view of the world.
type ResourceNode struct {
	ID       rts.EntityID
	Pos      rts.Position
	Amount   int
	Distance float64 // from base
}

// Context is the per-participant strategy state. It is owned exclusively by
// one controller, mutated only by that controller's sub-managers on the
// controller's dispatch thread, and discarded when the participant is
// removed.
type Context struct {
	Player      rts.PlayerID
	Difficulty  string
	Personality Personality
	Params      Params

	Phase   GamePhase
	BasePos rts.Position

	// ResourceKnowledge maps resource kind to known nodes, sorted ascending
	// by distance from base. Entries are removed the tick their node is
	// reported depleted.
	ResourceKnowledge map[rts.ResourceKind][]ResourceNode

	BuildQueue BuildQueue
	Groups     []*TacticalGroup

	// Candidate build sites from the start-up ring scan, consumed head-first.
	CandidateSites []rts.Position

	// Attack reaction state.
	UnderAttack    bool
	LastAttackPos  rts.Position
	LastAttackTime time.Duration

	// One-time planning flags.
	WallPlanned     bool
	MonumentPlanned bool

	// Research bookkeeping.
	ResearchedTechs map[string]bool
	PendingTech     string

	// Scouting state.
	ScoutUnit      rts.EntityID
	ScoutWaypoints []rts.Position
	ScoutLeg       int

	nextGroupID int
}

// NewContext builds the context for one participant with the given
// personality and difficulty parameters.
func NewContext(player rts.PlayerID, difficulty string, pers Personality, params Params) *Context {
	// Personality gathering ratios blend into the difficulty's base
	// priorities so two controllers on the same difficulty still gather
	// differently.
	// Ratios average 1/len(kinds), so the factor is centered on 1.
	for k, ratio := range pers.GatherRatio {
		params.GatherPriority[k] *= 0.7 + ratio*1.5
	}

	return &Context{
		Player:            player,
		Difficulty:        difficulty,
		Personality:       pers,
		Params:            params,
		Phase:             PhaseEarly,
		ResourceKnowledge: make(map[rts.ResourceKind][]ResourceNode),
		ResearchedTechs:   make(map[string]bool),
	}
}

// NearestNode returns the closest known node of a kind, or false when none
// is known.
func (c *Context) NearestNode(kind rts.ResourceKind) (ResourceNode, bool) {
	nodes := c.ResourceKnowledge[kind]
	if len(nodes) == 0 {
		return ResourceNode{}, false
	}
	return nodes[0], true
}

// DropNode removes a depleted node from the knowledge base.
func (c *Context) DropNode(id rts.EntityID) {
	for kind, nodes := range c.ResourceKnowledge {
		for i, n := range nodes {
			if n.ID == id {
				c.ResourceKnowledge[kind] = append(nodes[:i], nodes[i+1:]...)
				return
			}
		}
	}
}

// GroupOf returns the tactical group containing the unit, or nil.
func (c *Context) GroupOf(id rts.EntityID) *TacticalGroup {
	for _, g := range c.Groups {
		for _, m := range g.Members {
			if m == id {
				return g
			}
		}
	}
	return nil
}
