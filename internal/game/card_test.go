package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollRarity(t *testing.T) {
	cases := []struct {
		roll float64
		want string
	}{
		{0.0, "common"},
		{0.10, "common"},
		{0.54, "common"},
		{0.56, "rare"},
		{0.90, "epic"},
		{0.999, "legendary"},
	}
	for _, tc := range cases {
		f := NewFactory(DefaultCardTables(), fixedName("x"), &scriptedSource{floats: []float64{tc.roll}})
		assert.Equal(t, tc.want, f.RollRarity().Tier, "roll %v", tc.roll)
	}
}

func TestRollRarityFallsBackToFirstTier(t *testing.T) {
	tables := DefaultCardTables()
	tables.Rarities = []Rarity{{Tier: "only", Multiplier: 1, Weight: 0}, {Tier: "never", Multiplier: 1, Weight: 0}}
	f := NewFactory(tables, fixedName("x"), &scriptedSource{floats: []float64{0.7}})
	assert.Equal(t, "only", f.RollRarity().Tier)
}

func TestCreateCardCommon(t *testing.T) {
	// cost roll 3, no attack or defense spread, third ability
	src := &scriptedSource{floats: []float64{0.1}, ints: []int{2, 120, 150, 2}}
	card := NewFactory(DefaultCardTables(), fixedName("Golden Seraph"), src).CreateCard()

	assert.Equal(t, "Golden Seraph", card.Name)
	assert.Equal(t, "common", card.Rarity)
	assert.Equal(t, 3, card.Cost)
	assert.Equal(t, 1060, card.ATK)
	assert.Equal(t, 1060, card.DEF)
	assert.Equal(t, 4, card.HP)
	assert.Equal(t, card.HP, card.MaxHP)
	assert.Equal(t, AbilityShield, card.Ability)
	assert.True(t, card.Exhausted)
	assert.NotEmpty(t, card.ID)
}

func TestCreateCardEpicScalesStats(t *testing.T) {
	src := &scriptedSource{floats: []float64{0.9}, ints: []int{3, 0, 10, 5}}
	card := NewFactory(DefaultCardTables(), fixedName("x"), src).CreateCard()

	assert.Equal(t, "epic", card.Rarity)
	assert.Equal(t, 6, card.Cost)   // round(4 * 1.55)
	assert.Equal(t, 2480, card.ATK) // (1720 - 120) * 1.55
	assert.Equal(t, 2449, card.DEF) // (1720 - 140) * 1.55
	assert.Equal(t, 10, card.HP)    // round(2449 / 250)
	assert.Equal(t, AbilityBlank, card.Ability)
}

func TestCreateCardClampsCost(t *testing.T) {
	src := &scriptedSource{floats: []float64{0.999}, ints: []int{3}}
	card := NewFactory(DefaultCardTables(), fixedName("x"), src).CreateCard()

	assert.Equal(t, "legendary", card.Rarity)
	assert.Equal(t, 7, card.Cost)
}

func TestCreateCardHPNeverBelowOne(t *testing.T) {
	tables := DefaultCardTables()
	tables.BaseStat = 0
	tables.StatPerCost = 0
	tables.DefenseSpread = Spread{Min: -10, Max: -10}
	card := NewFactory(tables, fixedName("x"), &scriptedSource{}).CreateCard()

	assert.Equal(t, -10, card.DEF)
	assert.Equal(t, 1, card.HP)
}

func TestSeededCardsAreReproducible(t *testing.T) {
	build := func() []*Card {
		src := NewSeededSource("cards")
		return BuildDeck(14, NewFactory(DefaultCardTables(), fixedName("x"), src), src)
	}
	a, b := build(), build()
	require.Len(t, a, 14)
	for i := range a {
		assert.Equal(t, *a[i], *b[i])
	}
}

func TestAbilityHooks(t *testing.T) {
	card := testCard("c", 100, 1, AbilityFury)

	assert.Equal(t, AttackBonus{AtkBonus: 300}, AbilityFury.OnAttack(card))
	assert.Equal(t, AttackBonus{DmgBonus: 1}, AbilityVenomous.OnAttack(card))
	assert.Equal(t, DefendBonus{DmgReduction: 2}, AbilityShield.OnDefend(card))
	assert.Equal(t, AfterCombatBonus{FaceDamageBonus: 2}, AbilityPiercing.AfterCombat(card, true))
	assert.Equal(t, AfterCombatBonus{}, AbilityPiercing.AfterCombat(card, false))
	assert.Equal(t, AfterCombatBonus{Heal: 2}, AbilityLeech.AfterCombat(card, true))
	assert.Equal(t, AfterCombatBonus{}, AbilityLeech.AfterCombat(card, false))

	for _, kind := range AllAbilities() {
		assert.NotEmpty(t, kind.Text(), kind)
	}
	assert.Equal(t, AttackBonus{}, AbilityBlank.OnAttack(card))
	assert.Equal(t, DefendBonus{}, AbilityFury.OnDefend(card))
	assert.Equal(t, AfterCombatBonus{}, AbilityShield.AfterCombat(card, true))
}

func TestParseAbilityKind(t *testing.T) {
	kind, err := ParseAbilityKind(" Leech ")
	require.NoError(t, err)
	assert.Equal(t, AbilityLeech, kind)

	_, err = ParseAbilityKind("flying")
	assert.Error(t, err)
}
