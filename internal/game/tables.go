package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rarity is one row of the weighted rarity table.
type Rarity struct {
	Tier       string  `yaml:"tier" json:"tier"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
	Weight     float64 `yaml:"weight" json:"weight"`
}

// Spread is an inclusive integer range.
type Spread struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// CardTables holds everything the card factory rolls against.
type CardTables struct {
	Rarities      []Rarity      `yaml:"rarities"`
	Abilities     []AbilityKind `yaml:"abilities"`
	NamesFirst    []string      `yaml:"names_first"`
	NamesSecond   []string      `yaml:"names_second"`
	CostRoll      Spread        `yaml:"cost_roll"`
	CostCeiling   int           `yaml:"cost_ceiling"`
	BaseStat      int           `yaml:"base_stat"`
	StatPerCost   int           `yaml:"stat_per_cost"`
	AttackSpread  Spread        `yaml:"attack_spread"`
	DefenseSpread Spread        `yaml:"defense_spread"`
	HPDivisor     float64       `yaml:"hp_divisor"`
	ImageTags     string        `yaml:"image_tags"`
}

// DefaultCardTables returns the stock tables.
func DefaultCardTables() *CardTables {
	return &CardTables{
		Rarities: []Rarity{
			{Tier: "common", Multiplier: 1.0, Weight: 55},
			{Tier: "rare", Multiplier: 1.25, Weight: 28},
			{Tier: "epic", Multiplier: 1.55, Weight: 13},
			{Tier: "legendary", Multiplier: 2.05, Weight: 4},
		},
		Abilities: AllAbilities(),
		NamesFirst: []string{
			"Entity", "Warrior", "Sorceress", "Demon", "Angel",
			"Hunter", "Witch", "Gladiator", "Seraph", "Blade",
		},
		NamesSecond: []string{
			"Chaotic", "Shadowed", "Arcane", "Crimson", "Abyssal",
			"Celestial", "Feral", "Cursed", "Mystic", "Golden",
		},
		CostRoll:      Spread{Min: 1, Max: 4},
		CostCeiling:   7,
		BaseStat:      400,
		StatPerCost:   220,
		AttackSpread:  Spread{Min: -120, Max: 180},
		DefenseSpread: Spread{Min: -150, Max: 150},
		HPDivisor:     250,
		ImageTags:     "rating:general fantasy solo -loli -shota -child -young -toddler -infant",
	}
}

// LoadCardTables reads a YAML file over the default tables. Keys missing from
// the file keep their default values.
func LoadCardTables(path string) (*CardTables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card tables: %w", err)
	}

	tables := DefaultCardTables()
	if err := yaml.Unmarshal(data, tables); err != nil {
		return nil, fmt.Errorf("parse card tables YAML: %w", err)
	}
	if err := tables.Normalize(); err != nil {
		return nil, fmt.Errorf("invalid card tables %s: %w", path, err)
	}
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("invalid card tables %s: %w", path, err)
	}
	return tables, nil
}

// Normalize rewrites ability names into their canonical kinds. It mutates
// the tables and must run before they are shared between matches.
func (t *CardTables) Normalize() error {
	for i, a := range t.Abilities {
		kind, err := ParseAbilityKind(string(a))
		if err != nil {
			return err
		}
		t.Abilities[i] = kind
	}
	return nil
}

// Validate checks that every table can be rolled against. It never mutates
// the tables, so shared tables can be validated concurrently.
func (t *CardTables) Validate() error {
	if len(t.Rarities) == 0 {
		return fmt.Errorf("rarity table is empty")
	}
	for _, r := range t.Rarities {
		if r.Weight < 0 {
			return fmt.Errorf("rarity %q has negative weight", r.Tier)
		}
		if r.Multiplier <= 0 {
			return fmt.Errorf("rarity %q has non-positive multiplier", r.Tier)
		}
	}
	if len(t.Abilities) == 0 {
		return fmt.Errorf("ability table is empty")
	}
	for _, a := range t.Abilities {
		if _, ok := abilityTable[a]; !ok {
			return fmt.Errorf("unknown ability %q", a)
		}
	}
	if len(t.NamesFirst) == 0 || len(t.NamesSecond) == 0 {
		return fmt.Errorf("name tables must not be empty")
	}
	if t.CostRoll.Min > t.CostRoll.Max || t.AttackSpread.Min > t.AttackSpread.Max || t.DefenseSpread.Min > t.DefenseSpread.Max {
		return fmt.Errorf("spread minimum exceeds maximum")
	}
	if t.CostCeiling < 1 {
		return fmt.Errorf("cost_ceiling must be at least 1, got %d", t.CostCeiling)
	}
	if t.HPDivisor <= 0 {
		return fmt.Errorf("hp_divisor must be positive")
	}
	return nil
}
