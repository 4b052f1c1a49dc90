package ai

import (
	"sort"
	"time"

	"github.com/hearthland/stratagem/pkg/rts"
)

// gatherWeights computes the per-resource allocation weight: base priority
// scaled by scarcity (boost when critically short with negative income,
// damp when abundant) and zeroed when no accessible node of the kind is
// known.
func (c *Controller) gatherWeights() map[rts.ResourceKind]float64 {
	ctx := c.ctx
	weights := make(map[rts.ResourceKind]float64, len(ctx.Params.GatherPriority))

	for _, kind := range rts.AllResources() {
		w := ctx.Params.GatherPriority[kind]
		if len(ctx.ResourceKnowledge[kind]) == 0 {
			weights[kind] = 0
			continue
		}
		stock := c.world.Stock(ctx.Player, kind)
		switch {
		case stock < ctx.Params.CriticalStock && c.world.NetRate(ctx.Player, kind) < 0:
			w *= 1.5
		case stock > ctx.Params.AbundantStock:
			w *= 0.5
		}
		weights[kind] = w
	}
	return weights
}

// apportionWorkers converts weights into integer per-resource worker
// targets that sum exactly to total, using largest-remainder rounding.
// Ties on remainders are broken in canonical resource order.
func apportionWorkers(weights map[rts.ResourceKind]float64, total int) map[rts.ResourceKind]int {
	targets := make(map[rts.ResourceKind]int, len(weights))
	if total <= 0 {
		return targets
	}

	sum := 0.0
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	if sum <= 0 {
		return targets
	}

	type share struct {
		kind      rts.ResourceKind
		remainder float64
	}
	var shares []share
	assigned := 0
	for _, kind := range rts.AllResources() {
		w := weights[kind]
		if w <= 0 {
			continue
		}
		exact := w / sum * float64(total)
		floor := int(exact)
		targets[kind] = floor
		assigned += floor
		shares = append(shares, share{kind: kind, remainder: exact - float64(floor)})
	}

	sort.SliceStable(shares, func(i, j int) bool { return shares[i].remainder > shares[j].remainder })
	for i := 0; assigned < total && i < len(shares); i++ {
		targets[shares[i].kind]++
		assigned++
	}
	return targets
}

// tickEconomy runs the proportional-fair worker rebalancing pass: compute
// ideal targets, then close each deficit first with idle workers and then
// by pulling from the lowest-priority surplus resource.
func (c *Controller) tickEconomy(now time.Duration) {
	c.rebalanceWorkers()
}

// tickImbalance is the higher-frequency critical check: a resource with
// negative income and critically low stock gets its priority boosted
// (capped at 2.0) and forces an immediate rebalance. When a market exists
// and another stockpile is overflowing, it also trades into the shortage.
func (c *Controller) tickImbalance(now time.Duration) {
	ctx := c.ctx
	critical := false

	for _, kind := range rts.AllResources() {
		if c.world.Stock(ctx.Player, kind) >= ctx.Params.CriticalStock {
			continue
		}
		if c.world.NetRate(ctx.Player, kind) >= 0 {
			continue
		}
		boosted := ctx.Params.GatherPriority[kind] * 1.5
		if boosted > 2.0 {
			boosted = 2.0
		}
		ctx.Params.GatherPriority[kind] = boosted
		critical = true
		c.log.Debug().Str("resource", string(kind)).Float64("priority", boosted).Msg("Resource critical")

		c.tryMarketTrade(kind)
	}

	if critical {
		c.rebalanceWorkers()
	}
}

// tryMarketTrade sells from the most abundant stockpile to relieve a
// critical shortage, when a market is available.
func (c *Controller) tryMarketTrade(short rts.ResourceKind) {
	ctx := c.ctx
	if len(c.world.EntitiesOfType(ctx.Player, "market")) == 0 {
		return
	}

	richest := rts.ResourceKind("")
	richestStock := 0
	for _, kind := range rts.AllResources() {
		if kind == short {
			continue
		}
		if s := c.world.Stock(ctx.Player, kind); s > richestStock {
			richest = kind
			richestStock = s
		}
	}
	if richest == "" || richestStock < ctx.Params.AbundantStock {
		return
	}

	c.sink.Submit(ctx.Player, rts.TradeCommand{Sell: richest, Buy: short, Amount: 100})
	c.log.Debug().Str("sell", string(richest)).Str("buy", string(short)).Msg("Market trade")
}

// rebalanceWorkers closes the gap between current and target assignments.
// This is a greedy pass, not an exact optimal assignment; ties break in
// canonical resource order.
func (c *Controller) rebalanceWorkers() {
	ctx := c.ctx

	var idle []rts.EntityID
	current := make(map[rts.ResourceKind][]rts.EntityID)
	totalWorkers := 0

	for _, e := range c.world.EntitiesOf(ctx.Player, rts.KindUnit) {
		if e.Military {
			continue
		}
		if e.ID == ctx.ScoutUnit {
			continue // the repurposed scout keeps scouting
		}
		totalWorkers++
		switch {
		case e.Gathering != "":
			current[e.Gathering] = append(current[e.Gathering], e.ID)
		case e.Idle:
			idle = append(idle, e.ID)
		default:
			// Builders and repairers are busy; they do not count toward any
			// gathering assignment but still occupy a worker slot.
		}
	}

	if totalWorkers == 0 {
		return
	}

	weights := c.gatherWeights()
	targets := apportionWorkers(weights, totalWorkers)

	// Donor order: ascending priority, i.e. descending 1/priority.
	donors := make([]rts.ResourceKind, 0, len(weights))
	for _, kind := range rts.AllResources() {
		if weights[kind] > 0 {
			donors = append(donors, kind)
		}
	}
	sort.SliceStable(donors, func(i, j int) bool { return weights[donors[i]] < weights[donors[j]] })

	// Fill deficits in descending priority order.
	order := make([]rts.ResourceKind, len(donors))
	copy(order, donors)
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	for _, kind := range order {
		deficit := targets[kind] - len(current[kind])
		if deficit <= 0 {
			continue
		}
		node, ok := c.ctx.NearestNode(kind)
		if !ok {
			continue
		}

		var recruits []rts.EntityID

		// Idle workers first.
		for deficit > 0 && len(idle) > 0 {
			recruits = append(recruits, idle[0])
			idle = idle[1:]
			deficit--
		}

		// Then pull from the least-priority surplus resources.
		for _, donor := range donors {
			if deficit <= 0 {
				break
			}
			if donor == kind {
				continue
			}
			surplus := len(current[donor]) - targets[donor]
			for surplus > 0 && deficit > 0 {
				n := len(current[donor])
				recruits = append(recruits, current[donor][n-1])
				current[donor] = current[donor][:n-1]
				surplus--
				deficit--
			}
		}

		if len(recruits) > 0 {
			current[kind] = append(current[kind], recruits...)
			c.sink.Submit(ctx.Player, rts.GatherCommand{Units: recruits, Node: node.ID})
		}
	}

	// Leftover idle workers join the highest-priority resource with a node.
	if len(idle) > 0 {
		for _, kind := range order {
			node, ok := c.ctx.NearestNode(kind)
			if !ok {
				continue
			}
			c.sink.Submit(ctx.Player, rts.GatherCommand{Units: idle, Node: node.ID})
			break
		}
	}
}
