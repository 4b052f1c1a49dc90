package ai

import (
	"math/rand"
	"sort"

	"github.com/hearthland/stratagem/pkg/rts"
)

// Personality is the fixed bundle of behavioral bias values generated for a
// participant at creation time. Traits are clamped to [0.1, 0.9]; the
// preference maps carry one or two boosted "specialization" entries.
type Personality struct {
	Aggressiveness    float64
	Defensiveness     float64
	EconomyFocus      float64
	ExpandingTendency float64
	RiskTaking        float64

	UnitPreference      map[string]float64
	TechPreference      map[rts.TechCategory]float64
	FormationPreference map[rts.Formation]float64
	GatherRatio         map[rts.ResourceKind]float64
}

// Trait sampling band and preference ranges. Boosts start above the base
// range maximum so a specialization is always distinguishable from an
// unboosted entry.
const (
	traitMin, traitMax = 0.1, 0.9
	traitBandLo        = 0.3
	traitBandWidth     = 0.4
	prefBaseLo         = 0.8
	prefBaseWidth      = 0.4
	prefBoostLo        = 0.5
	prefBoostWidth     = 0.5
)

// CivProfile shifts base traits by fixed per-civilization offsets.
type CivProfile struct {
	Name              string
	Aggressiveness    float64
	Defensiveness     float64
	EconomyFocus      float64
	ExpandingTendency float64
	RiskTaking        float64
}

// Civilizations is the built-in set of civilization profiles.
var Civilizations = map[string]CivProfile{
	"valdor":  {Name: "valdor", Aggressiveness: 0.15, RiskTaking: 0.1, EconomyFocus: -0.1},
	"elsham":  {Name: "elsham", EconomyFocus: 0.15, ExpandingTendency: 0.1, Aggressiveness: -0.1},
	"kadruun": {Name: "kadruun", Defensiveness: 0.2, RiskTaking: -0.1},
	"myrae":   {Name: "myrae", ExpandingTendency: 0.15, RiskTaking: 0.1},
}

// difficultyTraitShift returns the trait offset applied per difficulty.
func difficultyTraitShift(difficulty string) float64 {
	switch difficulty {
	case "easy":
		return -0.1
	case "hard":
		return 0.1
	default:
		return 0
	}
}

// GeneratePersonality samples a personality from the given random source.
// Pure and deterministic for a fixed source; civ may be the zero profile.
func GeneratePersonality(rng *rand.Rand, civ CivProfile, difficulty string, catalog *rts.Catalog) Personality {
	shift := difficultyTraitShift(difficulty)
	trait := func(offset float64) float64 {
		return clamp(traitBandLo+rng.Float64()*traitBandWidth+offset+shift, traitMin, traitMax)
	}

	p := Personality{
		Aggressiveness:    trait(civ.Aggressiveness),
		Defensiveness:     trait(civ.Defensiveness),
		EconomyFocus:      trait(civ.EconomyFocus),
		ExpandingTendency: trait(civ.ExpandingTendency),
		RiskTaking:        trait(civ.RiskTaking),
	}

	p.UnitPreference = make(map[string]float64)
	var unitKeys []string
	for _, u := range sortedUnitDefs(catalog) {
		if !u.Military {
			continue
		}
		p.UnitPreference[u.Type] = prefBaseLo + rng.Float64()*prefBaseWidth
		unitKeys = append(unitKeys, u.Type)
	}
	boostSome(rng, func(i int) { p.UnitPreference[unitKeys[i]] += prefBoostLo + rng.Float64()*prefBoostWidth }, len(unitKeys))

	p.TechPreference = map[rts.TechCategory]float64{
		rts.TechMilitary: prefBaseLo + rng.Float64()*prefBaseWidth,
		rts.TechEconomy:  prefBaseLo + rng.Float64()*prefBaseWidth,
	}
	cats := []rts.TechCategory{rts.TechMilitary, rts.TechEconomy}
	boostSome(rng, func(i int) { p.TechPreference[cats[i]] += prefBoostLo + rng.Float64()*prefBoostWidth }, len(cats))

	p.FormationPreference = make(map[rts.Formation]float64)
	formations := rts.AllFormations()
	for _, f := range formations {
		p.FormationPreference[f] = prefBaseLo + rng.Float64()*prefBaseWidth
	}
	boostSome(rng, func(i int) { p.FormationPreference[formations[i]] += prefBoostLo + rng.Float64()*prefBoostWidth }, len(formations))

	p.GatherRatio = make(map[rts.ResourceKind]float64)
	total := 0.0
	for _, k := range rts.AllResources() {
		w := prefBaseLo + rng.Float64()*prefBaseWidth
		p.GatherRatio[k] = w
		total += w
	}
	for k, w := range p.GatherRatio {
		p.GatherRatio[k] = w / total
	}

	return p
}

// boostSome boosts one or two distinct candidates out of n.
func boostSome(rng *rand.Rand, boost func(i int), n int) {
	if n == 0 {
		return
	}
	first := rng.Intn(n)
	boost(first)
	if n > 1 && rng.Float64() < 0.4 {
		second := rng.Intn(n - 1)
		if second >= first {
			second++
		}
		boost(second)
	}
}

// sortedUnitDefs returns catalog units in deterministic (type name) order so
// personality generation is reproducible for a fixed seed.
func sortedUnitDefs(catalog *rts.Catalog) []rts.UnitDef {
	out := make([]rts.UnitDef, 0, len(catalog.Units))
	for _, u := range catalog.Units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
