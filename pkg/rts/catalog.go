package rts

import "sort"

// TechCategory groups technologies for scoring purposes.
type TechCategory string

const (
	TechMilitary TechCategory = "military"
	TechEconomy  TechCategory = "economy"
)

// TechEffectKind is the closed set of technology effect types.
type TechEffectKind int

const (
	EffectUnitBoost TechEffectKind = iota
	EffectGatherRate
	EffectBuildSpeed
	EffectMoveSpeed
)

// TechEffect describes one effect of a technology.
type TechEffect struct {
	Kind     TechEffectKind
	Unit     string       // EffectUnitBoost: affected unit type
	Resource ResourceKind // EffectGatherRate: affected resource
	Amount   float64      // multiplier delta, e.g. 0.15 for +15%
}

// BuildingClass is the functional role of a building type.
type BuildingClass string

const (
	ClassTownCenter BuildingClass = "town_center"
	ClassHouse      BuildingClass = "house"
	ClassProduction BuildingClass = "production"
	ClassTower      BuildingClass = "tower"
	ClassWall       BuildingClass = "wall"
	ClassMarket     BuildingClass = "market"
	ClassMonument   BuildingClass = "monument"
)

// UnitDef defines a trainable unit type.
type UnitDef struct {
	Type      string
	Military  bool
	Cost      Cost
	Age       int    // minimum age to train
	TrainedAt string // building type that trains it
	MaxHP     int
	Speed     float64
	Attack    int
	Range     float64
	TrainTime float64 // seconds
}

// BuildingDef defines a constructible building type.
type BuildingDef struct {
	Type      string
	Class     BuildingClass
	Cost      Cost
	Age       int
	MaxHP     int
	PopRoom   int     // population capacity provided
	Attack    int     // towers only
	Range     float64 // towers only
	BuildTime float64 // seconds at one worker
}

// TechDef defines a researchable technology.
type TechDef struct {
	ID           string
	Category     TechCategory
	Cost         Cost
	Age          int
	ResearchedAt string // building type
	Effects      []TechEffect
	ResearchTime float64 // seconds
}

// Catalog holds the unit, building, and technology definitions for a match.
// It is immutable once built.
type Catalog struct {
	Units     map[string]UnitDef
	Buildings map[string]BuildingDef
	Techs     map[string]TechDef
}

// Unit looks up a unit definition.
func (c *Catalog) Unit(t string) (UnitDef, bool) {
	d, ok := c.Units[t]
	return d, ok
}

// Building looks up a building definition.
func (c *Catalog) Building(t string) (BuildingDef, bool) {
	d, ok := c.Buildings[t]
	return d, ok
}

// Tech looks up a technology definition.
func (c *Catalog) Tech(id string) (TechDef, bool) {
	d, ok := c.Techs[id]
	return d, ok
}

// BuildingsOfClass returns the building types with the given class, in
// ascending age order (stable for equal ages).
func (c *Catalog) BuildingsOfClass(class BuildingClass) []BuildingDef {
	var out []BuildingDef
	for _, d := range c.Buildings {
		if d.Class == class {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Age != out[j].Age {
			return out[i].Age < out[j].Age
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// DefaultCatalog returns the built-in three-age definition set used by the
// skirmish simulation and by tests. Real deployments inject their own.
func DefaultCatalog() *Catalog {
	units := []UnitDef{
		{Type: "villager", Cost: Cost{Food: 50}, Age: 1, TrainedAt: "town_center", MaxHP: 40, Speed: 1.0, Attack: 2, Range: 1, TrainTime: 20},
		{Type: "militia", Military: true, Cost: Cost{Food: 60, Gold: 20}, Age: 1, TrainedAt: "barracks", MaxHP: 55, Speed: 1.0, Attack: 5, Range: 1, TrainTime: 18},
		{Type: "spearman", Military: true, Cost: Cost{Food: 45, Wood: 30}, Age: 1, TrainedAt: "barracks", MaxHP: 50, Speed: 1.0, Attack: 4, Range: 1, TrainTime: 16},
		{Type: "archer", Military: true, Cost: Cost{Wood: 40, Gold: 35}, Age: 2, TrainedAt: "archery_range", MaxHP: 35, Speed: 1.0, Attack: 5, Range: 5, TrainTime: 22},
		{Type: "swordsman", Military: true, Cost: Cost{Food: 70, Iron: 25}, Age: 2, TrainedAt: "barracks", MaxHP: 70, Speed: 0.95, Attack: 8, Range: 1, TrainTime: 20},
		{Type: "knight", Military: true, Cost: Cost{Food: 90, Gold: 60, Iron: 20}, Age: 3, TrainedAt: "stable", MaxHP: 110, Speed: 1.6, Attack: 11, Range: 1, TrainTime: 28},
		{Type: "catapult", Military: true, Cost: Cost{Wood: 140, Gold: 80, Stone: 40}, Age: 3, TrainedAt: "workshop", MaxHP: 60, Speed: 0.6, Attack: 30, Range: 8, TrainTime: 40},
	}

	buildings := []BuildingDef{
		{Type: "town_center", Class: ClassTownCenter, Cost: Cost{Wood: 300, Stone: 100}, Age: 1, MaxHP: 1200, PopRoom: 10, BuildTime: 120},
		{Type: "house", Class: ClassHouse, Cost: Cost{Wood: 50}, Age: 1, MaxHP: 250, PopRoom: 5, BuildTime: 25},
		{Type: "barracks", Class: ClassProduction, Cost: Cost{Wood: 150}, Age: 1, MaxHP: 700, BuildTime: 45},
		{Type: "archery_range", Class: ClassProduction, Cost: Cost{Wood: 160}, Age: 2, MaxHP: 650, BuildTime: 45},
		{Type: "stable", Class: ClassProduction, Cost: Cost{Wood: 175, Gold: 40}, Age: 3, MaxHP: 750, BuildTime: 50},
		{Type: "workshop", Class: ClassProduction, Cost: Cost{Wood: 200, Stone: 60}, Age: 3, MaxHP: 800, BuildTime: 55},
		{Type: "watchtower", Class: ClassTower, Cost: Cost{Stone: 120, Wood: 30}, Age: 1, MaxHP: 500, Attack: 7, Range: 7, BuildTime: 40},
		{Type: "wall", Class: ClassWall, Cost: Cost{Stone: 10}, Age: 2, MaxHP: 900, BuildTime: 8},
		{Type: "market", Class: ClassMarket, Cost: Cost{Wood: 180}, Age: 2, MaxHP: 600, BuildTime: 40},
		{Type: "monument", Class: ClassMonument, Cost: Cost{Gold: 600, Stone: 400, Iron: 150}, Age: 3, MaxHP: 2000, BuildTime: 300},
	}

	techs := []TechDef{
		{ID: "forging", Category: TechMilitary, Cost: Cost{Food: 120, Gold: 60}, Age: 1, ResearchedAt: "barracks", ResearchTime: 35,
			Effects: []TechEffect{{Kind: EffectUnitBoost, Unit: "militia", Amount: 0.15}, {Kind: EffectUnitBoost, Unit: "swordsman", Amount: 0.15}}},
		{ID: "fletching", Category: TechMilitary, Cost: Cost{Food: 100, Gold: 50}, Age: 2, ResearchedAt: "archery_range", ResearchTime: 30,
			Effects: []TechEffect{{Kind: EffectUnitBoost, Unit: "archer", Amount: 0.2}}},
		{ID: "husbandry", Category: TechMilitary, Cost: Cost{Food: 150}, Age: 3, ResearchedAt: "stable", ResearchTime: 40,
			Effects: []TechEffect{{Kind: EffectMoveSpeed, Amount: 0.1}}},
		{ID: "wheelbarrow", Category: TechEconomy, Cost: Cost{Food: 175, Wood: 50}, Age: 2, ResearchedAt: "town_center", ResearchTime: 45,
			Effects: []TechEffect{{Kind: EffectGatherRate, Resource: Food, Amount: 0.1}, {Kind: EffectGatherRate, Resource: Wood, Amount: 0.1}}},
		{ID: "gold_mining", Category: TechEconomy, Cost: Cost{Food: 100, Wood: 75}, Age: 2, ResearchedAt: "town_center", ResearchTime: 30,
			Effects: []TechEffect{{Kind: EffectGatherRate, Resource: Gold, Amount: 0.15}}},
		{ID: "iron_smelting", Category: TechEconomy, Cost: Cost{Wood: 100, Gold: 100}, Age: 3, ResearchedAt: "town_center", ResearchTime: 45,
			Effects: []TechEffect{{Kind: EffectGatherRate, Resource: Iron, Amount: 0.2}}},
		{ID: "masonry", Category: TechEconomy, Cost: Cost{Food: 150, Wood: 100}, Age: 2, ResearchedAt: "town_center", ResearchTime: 40,
			Effects: []TechEffect{{Kind: EffectBuildSpeed, Amount: 0.2}}},
		{ID: "conscription", Category: TechMilitary, Cost: Cost{Food: 200, Gold: 150}, Age: 3, ResearchedAt: "barracks", ResearchTime: 50,
			Effects: []TechEffect{{Kind: EffectUnitBoost, Unit: "knight", Amount: 0.1}, {Kind: EffectUnitBoost, Unit: "catapult", Amount: 0.1}}},
	}

	c := &Catalog{
		Units:     make(map[string]UnitDef, len(units)),
		Buildings: make(map[string]BuildingDef, len(buildings)),
		Techs:     make(map[string]TechDef, len(techs)),
	}
	for _, u := range units {
		c.Units[u.Type] = u
	}
	for _, b := range buildings {
		c.Buildings[b.Type] = b
	}
	for _, t := range techs {
		c.Techs[t.ID] = t
	}
	return c
}
