package game

// Card is one creature. Identity fields are fixed at creation; HP and
// Exhausted change during play.
type Card struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Rarity  string      `json:"rarity"`
	Cost    int         `json:"cost"`
	ATK     int         `json:"atk"`
	DEF     int         `json:"def"`
	Ability AbilityKind `json:"ability"`
	MaxHP   int         `json:"max_hp"`

	HP        int  `json:"hp"`
	Exhausted bool `json:"exhausted"`
}

// NameProvider produces display names for new cards.
type NameProvider interface {
	Generate() string
}

// Factory rolls new cards from a set of tables.
type Factory struct {
	tables *CardTables
	names  NameProvider
	rnd    RandomSource
}

// NewFactory creates a card factory. All rolls come from rnd.
func NewFactory(tables *CardTables, names NameProvider, rnd RandomSource) *Factory {
	if tables == nil {
		tables = DefaultCardTables()
	}
	return &Factory{
		tables: tables,
		names:  names,
		rnd:    rnd,
	}
}

// RollRarity picks a rarity by cumulative-weight roulette. Weights need not
// sum to anything in particular.
func (f *Factory) RollRarity() Rarity {
	total := 0.0
	for _, r := range f.tables.Rarities {
		total += r.Weight
	}

	roll := f.rnd.Float64() * total
	for _, r := range f.tables.Rarities {
		roll -= r.Weight
		if roll <= 0 {
			return r
		}
	}
	return f.tables.Rarities[0]
}

// CreateCard rolls a fresh card. Cards start exhausted.
func (f *Factory) CreateCard() *Card {
	t := f.tables
	rarity := f.RollRarity()
	name := f.names.Generate()

	cost := clamp(roundHalfUp(float64(IntRange(f.rnd, t.CostRoll.Min, t.CostRoll.Max))*rarity.Multiplier), 1, t.CostCeiling)
	base := t.BaseStat + cost*t.StatPerCost
	atk := roundHalfUp(float64(base+IntRange(f.rnd, t.AttackSpread.Min, t.AttackSpread.Max)) * rarity.Multiplier)
	def := roundHalfUp(float64(base+IntRange(f.rnd, t.DefenseSpread.Min, t.DefenseSpread.Max)) * rarity.Multiplier)
	hp := max(1, roundHalfUp(float64(def)/t.HPDivisor))

	return &Card{
		ID:        newCardID(f.rnd),
		Name:      name,
		Rarity:    rarity.Tier,
		Cost:      cost,
		ATK:       atk,
		DEF:       def,
		Ability:   Pick(f.rnd, t.Abilities),
		MaxHP:     hp,
		HP:        hp,
		Exhausted: true,
	}
}
