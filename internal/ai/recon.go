package ai

import (
	"math"
	"sort"
	"time"

	"github.com/hearthland/stratagem/pkg/rts"
)

// initialScan runs once at controller start-up: it locates the home base,
// builds the resource knowledge base, and precomputes candidate build sites
// around the base.
func (c *Controller) initialScan() {
	ctx := c.ctx

	// Home base is the participant's first town center; fall back to the
	// centroid of whatever the participant owns.
	tcs := c.world.EntitiesOfType(ctx.Player, "town_center")
	if len(tcs) > 0 {
		ctx.BasePos = tcs[0].Pos
	} else {
		own := c.world.EntitiesOf(ctx.Player, rts.KindUnit)
		if len(own) > 0 {
			var sx, sy float64
			for _, e := range own {
				sx += e.Pos.X
				sy += e.Pos.Y
			}
			ctx.BasePos = rts.Position{X: sx / float64(len(own)), Y: sy / float64(len(own))}
		}
	}

	c.rescanResources()
	ctx.CandidateSites = c.ringScan(ctx.BasePos, ctx.Params.RingStep, ctx.Params.RingCount)

	c.log.Debug().
		Float64("baseX", ctx.BasePos.X).
		Float64("baseY", ctx.BasePos.Y).
		Int("candidateSites", len(ctx.CandidateSites)).
		Msg("Initial scan complete")
}

// tickRecon refreshes the resource knowledge base on its own cadence:
// updates remaining amounts, discovers new nodes, and drops exhausted ones.
func (c *Controller) tickRecon(now time.Duration) {
	c.rescanResources()
}

// rescanResources rebuilds the per-kind node lists, sorted ascending by
// distance from base.
func (c *Controller) rescanResources() {
	ctx := c.ctx
	fresh := make(map[rts.ResourceKind][]ResourceNode)

	for _, e := range c.world.EntitiesOf(rts.Neutral, rts.KindResource) {
		if e.Amount <= 0 {
			continue
		}
		kind := rts.ResourceKind(e.Type)
		fresh[kind] = append(fresh[kind], ResourceNode{
			ID:       e.ID,
			Pos:      e.Pos,
			Amount:   e.Amount,
			Distance: e.Pos.DistanceTo(ctx.BasePos),
		})
	}
	for kind := range fresh {
		nodes := fresh[kind]
		sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Distance < nodes[j].Distance })
	}
	ctx.ResourceKnowledge = fresh
}

// ringScan samples candidate build sites on concentric rings around center.
// Each ring carries a fixed number of evenly spaced angular points; the
// radius grows in fixed steps. Only suitable points are returned.
func (c *Controller) ringScan(center rts.Position, step float64, rings int) []rts.Position {
	var sites []rts.Position
	for ring := 1; ring <= rings; ring++ {
		radius := float64(ring) * step
		for _, p := range ringPoints(center, radius, c.ctx.Params.RingPoints) {
			if c.siteSuitable(p) {
				sites = append(sites, p)
			}
		}
	}
	return sites
}

// ringPoints returns n evenly spaced points on the circle of the given
// radius around center.
func ringPoints(center rts.Position, radius float64, n int) []rts.Position {
	points := make([]rts.Position, 0, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		points = append(points, center.Add(radius*math.Cos(angle), radius*math.Sin(angle)))
	}
	return points
}

// siteSuitable reports whether a candidate point can host a building: the
// terrain must accept construction and no building or resource entity may
// lie within the clearance radius.
func (c *Controller) siteSuitable(p rts.Position) bool {
	if !c.world.IsBuildable(p) {
		return false
	}
	for _, e := range c.world.EntitiesInCircle(p, c.ctx.Params.SiteClearance) {
		if e.Kind == rts.KindBuilding || e.Kind == rts.KindResource {
			return false
		}
	}
	return true
}
