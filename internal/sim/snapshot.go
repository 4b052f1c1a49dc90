package sim

import (
	"sort"
	"time"

	"github.com/yohamta/donburi"

	"github.com/hearthland/stratagem/pkg/rts"
)

// PlayerSnapshot is one participant's line in a match snapshot.
type PlayerSnapshot struct {
	Player     rts.PlayerID             `json:"player"`
	Age        int                      `json:"age"`
	Population int                      `json:"population"`
	PopCap     int                      `json:"pop_cap"`
	Military   int                      `json:"military"`
	Buildings  int                      `json:"buildings"`
	Stock      map[rts.ResourceKind]int `json:"stock"`
}

// MatchSnapshot is a coarse view of the match for spectators and archives.
type MatchSnapshot struct {
	Elapsed time.Duration    `json:"elapsed"`
	Players []PlayerSnapshot `json:"players"`
}

// Snapshot summarizes the current match state, players in ascending ID order.
func (s *Sim) Snapshot() MatchSnapshot {
	byPlayer := make(map[rts.PlayerID]*PlayerSnapshot, len(s.players))
	for id, ps := range s.players {
		snap := &PlayerSnapshot{
			Player: id,
			Age:    ps.age,
			Stock:  make(map[rts.ResourceKind]int, len(ps.stock)),
		}
		for k, v := range ps.stock {
			snap.Stock[k] = int(v)
		}
		byPlayer[id] = snap
	}

	Identity.Each(s.ecs, func(e *donburi.Entry) {
		id := Identity.Get(e)
		snap, ok := byPlayer[Owner.Get(e).Player]
		if !ok {
			return
		}
		switch id.Kind {
		case rts.KindUnit:
			snap.Population++
			if Unit.Get(e).Military {
				snap.Military++
			}
		case rts.KindBuilding:
			snap.Buildings++
			if b := Building.Get(e); b.Progress >= 1 {
				if def, ok := s.catalog.Building(id.Type); ok {
					snap.PopCap += def.PopRoom
				}
			}
		}
	})

	out := MatchSnapshot{Elapsed: s.elapsed}
	for _, snap := range byPlayer {
		out.Players = append(out.Players, *snap)
	}
	sort.Slice(out.Players, func(i, j int) bool { return out.Players[i].Player < out.Players[j].Player })
	return out
}
