package sim

import (
	"math"

	"github.com/hearthland/stratagem/pkg/rts"
)

// Starting forces and map dressing for a skirmish.
const (
	startVillagers = 6
	clusterNodes   = 3
)

var clusterAmounts = map[rts.ResourceKind]float64{
	rts.Food:  600,
	rts.Wood:  800,
	rts.Gold:  900,
	rts.Stone: 700,
	rts.Iron:  700,
}

// populate lays out the starting scenario: each participant gets a finished
// town center, a ring of villagers, and a cluster of every resource kind at
// a random bearing near the base. Contested clusters of the scarce kinds sit
// at the map center.
func (s *Sim) populate(players []PlayerSetup) {
	for _, p := range players {
		s.spawnBuilding(p.ID, "town_center", p.Base, true)
		for i := 0; i < startVillagers; i++ {
			ang := 2 * math.Pi * float64(i) / startVillagers
			pos := p.Base.Add(4*math.Cos(ang), 4*math.Sin(ang))
			s.spawnUnit(p.ID, "villager", s.clampPos(pos))
		}

		kinds := rts.AllResources()
		baseAng := s.rng.Float64() * 2 * math.Pi
		for i, kind := range kinds {
			ang := baseAng + 2*math.Pi*float64(i)/float64(len(kinds))
			dist := 10 + s.rng.Float64()*6
			center := p.Base.Add(dist*math.Cos(ang), dist*math.Sin(ang))
			s.spawnCluster(kind, center)
		}
	}

	mid := rts.Position{X: s.w / 2, Y: s.h / 2}
	for i, kind := range []rts.ResourceKind{rts.Gold, rts.Iron, rts.Stone} {
		ang := 2 * math.Pi * float64(i) / 3
		s.spawnCluster(kind, mid.Add(12*math.Cos(ang), 12*math.Sin(ang)))
	}
}

func (s *Sim) spawnCluster(kind rts.ResourceKind, center rts.Position) {
	amount := clusterAmounts[kind]
	for i := 0; i < clusterNodes; i++ {
		off := rts.Position{
			X: (s.rng.Float64() - 0.5) * 4,
			Y: (s.rng.Float64() - 0.5) * 4,
		}
		s.spawnResource(kind, s.clampPos(center.Add(off.X, off.Y)), amount)
	}
}
