package ai

import (
	"time"

	"github.com/hearthland/stratagem/pkg/rts"
)

// handleEvent applies one world-change notification to the context. Called
// only from the controller's dispatch thread, after the inbox drain.
func (c *Controller) handleEvent(ev rts.Event, now time.Duration) {
	ctx := c.ctx

	switch e := ev.(type) {
	case rts.AttackAlertEvent:
		if e.Target != ctx.Player {
			return
		}
		c.onAttackAlert(e.Pos, now)

	case rts.EntityRemovedEvent:
		if e.Owner != ctx.Player {
			return
		}
		// Squad membership is pruned eagerly so the tactics tick sees an
		// accurate roster even before its next cadence.
		if g := ctx.GroupOf(e.ID); g != nil {
			for i, m := range g.Members {
				if m == e.ID {
					g.Members = append(g.Members[:i], g.Members[i+1:]...)
					break
				}
			}
		}
		if e.ID == ctx.ScoutUnit {
			ctx.ScoutUnit = 0
		}

	case rts.ResourceDepletedEvent:
		ctx.DropNode(e.Node)

	case rts.BuildingConstructedEvent:
		if e.Owner != ctx.Player {
			return
		}
		c.log.Debug().Str("building", e.Type).Msg("Construction finished")

	case rts.ResearchCompletedEvent:
		if e.Player != ctx.Player {
			return
		}
		ctx.ResearchedTechs[e.Tech] = true
		if ctx.PendingTech == e.Tech {
			ctx.PendingTech = ""
		}
		c.log.Debug().Str("tech", e.Tech).Msg("Research finished")

	case rts.AgeAdvanceEvent:
		if e.Player != ctx.Player {
			return
		}
		c.log.Info().Int("age", e.NewAge).Msg("Age advanced")
	}
}
