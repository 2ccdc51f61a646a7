package game

import (
	"testing"

	"github.com/duelforge/duel-server-go/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDamageFormulas(t *testing.T) {
	assert.Equal(t, 1, DirectDamage(700, 700, 0))
	assert.Equal(t, 0, DirectDamage(349, 700, 0))
	assert.Equal(t, 1, DirectDamage(350, 700, 0))
	assert.Equal(t, 3, DirectDamage(1400, 700, 1))

	assert.Equal(t, 0, CreatureDamage(1200, 600, 2))
	assert.Equal(t, 1, CreatureDamage(100, 600, 0))
	assert.Equal(t, 0, CreatureDamage(100, 600, 5))
	assert.Equal(t, 3, CreatureDamage(1800, 600, 0))
}

func TestCreatureDamageFloor(t *testing.T) {
	for atk := 0; atk <= 3000; atk += 50 {
		for reduction := 0; reduction <= 6; reduction++ {
			raw := max(1, roundHalfUp(float64(atk)/600))
			dmg := CreatureDamage(atk, 600, reduction)
			require.GreaterOrEqual(t, dmg, 0)
			require.Equal(t, reduction >= raw, dmg == 0, "atk=%d reduction=%d", atk, reduction)
		}
	}
}

func TestDirectAttackDealsOne(t *testing.T) {
	m := arena(t, []*Card{testCard("a1", 700, 2, AbilityBlank)}, nil)

	res := m.ResolveAttack(rules.SideHuman, "a1", "", true)

	require.True(t, res.Accepted)
	assert.Equal(t, 19, m.HP(rules.SideOpponent))
	assert.True(t, m.players[rules.SideHuman].Field[0].Exhausted)
	assert.Equal(t, []rules.EventType{
		rules.EventAttackDeclared,
		rules.EventPlayerDamaged,
		rules.EventAttackResolved,
	}, eventTypes(res.Events))
	assert.True(t, res.Events[0].Flag)
	assert.Equal(t, 1, res.Events[1].Amount)
	assert.Equal(t, rules.SideOpponent, res.Events[1].Side)
}

func TestShieldNegatesSmallAttack(t *testing.T) {
	m := arena(t,
		[]*Card{testCard("a1", 1200, 2, AbilityBlank)},
		[]*Card{testCard("d1", 100, 3, AbilityShield)},
	)

	res := m.ResolveAttack(rules.SideHuman, "a1", "d1", false)

	require.True(t, res.Accepted)
	defender := m.players[rules.SideOpponent].Field[0]
	assert.Equal(t, "d1", defender.ID)
	assert.Equal(t, 3, defender.HP)
	assert.Empty(t, m.players[rules.SideOpponent].Grave)
	assert.Equal(t, 20, m.HP(rules.SideOpponent))

	damaged := res.Events[2]
	require.Equal(t, rules.EventCreatureDamaged, damaged.Type)
	assert.Equal(t, 0, damaged.Amount)
	resolved := res.Events[len(res.Events)-1]
	assert.Equal(t, rules.EventAttackResolved, resolved.Type)
	assert.False(t, resolved.Flag)
}

func TestLethalAttackMovesDefenderToGrave(t *testing.T) {
	m := arena(t,
		[]*Card{testCard("a1", 1200, 2, AbilityPiercing)},
		[]*Card{testCard("d1", 100, 2, AbilityBlank), testCard("d2", 100, 5, AbilityBlank)},
	)

	res := m.ResolveAttack(rules.SideHuman, "a1", "d1", false)

	require.True(t, res.Accepted)
	opp := m.players[rules.SideOpponent]
	require.Len(t, opp.Field, 1)
	assert.Equal(t, "d2", opp.Field[0].ID)
	require.Len(t, opp.Grave, 1)
	assert.Equal(t, "d1", opp.Grave[0].ID)
	assert.Equal(t, 1, countEvents(res.Events, rules.EventCreatureDestroyed))

	// piercing adds 2 face damage after the kill
	assert.Equal(t, 18, m.HP(rules.SideOpponent))
	assert.True(t, res.Events[len(res.Events)-1].Flag)
	assert.Equal(t, 2, m.Stats(rules.SideHuman).FaceDamage)
	assert.Equal(t, 1, m.Stats(rules.SideHuman).CreaturesDestroyed)
}

func TestLeechHealsOnKillOnly(t *testing.T) {
	m := arena(t,
		[]*Card{testCard("a1", 1200, 2, AbilityLeech), testCard("a2", 700, 2, AbilityLeech)},
		[]*Card{testCard("d1", 100, 1, AbilityBlank)},
	)

	require.True(t, m.ResolveAttack(rules.SideHuman, "a2", "", true).Accepted)
	assert.Equal(t, 20, m.HP(rules.SideHuman))

	res := m.ResolveAttack(rules.SideHuman, "a1", "d1", false)
	require.True(t, res.Accepted)
	assert.Equal(t, 22, m.HP(rules.SideHuman))
	assert.Equal(t, 1, countEvents(res.Events, rules.EventPlayerHealed))
}

func TestVenomousOnlyBoostsDirectAttacks(t *testing.T) {
	m := arena(t,
		[]*Card{testCard("a1", 700, 2, AbilityVenomous), testCard("a2", 600, 2, AbilityVenomous)},
		[]*Card{testCard("d1", 100, 5, AbilityBlank)},
	)

	require.True(t, m.ResolveAttack(rules.SideHuman, "a1", "", true).Accepted)
	assert.Equal(t, 18, m.HP(rules.SideOpponent))

	require.True(t, m.ResolveAttack(rules.SideHuman, "a2", "d1", false).Accepted)
	assert.Equal(t, 4, m.players[rules.SideOpponent].Field[0].HP)
}

func TestFuryRaisesEffectiveAttack(t *testing.T) {
	m := arena(t, []*Card{testCard("a1", 400, 2, AbilityFury)}, nil)

	res := m.ResolveAttack(rules.SideHuman, "a1", "", true)

	require.True(t, res.Accepted)
	assert.Equal(t, 19, m.HP(rules.SideOpponent))
	assert.Equal(t, 1, countEvents(res.Events, rules.EventAbilityTriggered))
}

func TestEmptyDefenderMeansDirect(t *testing.T) {
	m := arena(t, []*Card{testCard("a1", 1400, 2, AbilityBlank)}, []*Card{testCard("d1", 100, 1, AbilityBlank)})

	res := m.ResolveAttack(rules.SideHuman, "a1", "", false)

	require.True(t, res.Accepted)
	assert.Equal(t, 18, m.HP(rules.SideOpponent))
	assert.Len(t, m.players[rules.SideOpponent].Field, 1)
}

func TestExhaustedAttackerIsRefused(t *testing.T) {
	tired := testCard("a1", 1400, 2, AbilityBlank)
	tired.Exhausted = true
	m := arena(t, []*Card{tired}, nil)
	before := m.Checksum()

	res := m.ResolveAttack(rules.SideHuman, "a1", "", true)

	assert.False(t, res.Accepted)
	assert.Equal(t, rules.ReasonExhausted, res.Reason)
	assert.Empty(t, res.Events)
	assert.Equal(t, before, m.Checksum())
}

func TestAttackerCannotAttackTwice(t *testing.T) {
	m := arena(t, []*Card{testCard("a1", 700, 2, AbilityBlank)}, nil)

	require.True(t, m.ResolveAttack(rules.SideHuman, "a1", "", true).Accepted)
	res := m.ResolveAttack(rules.SideHuman, "a1", "", true)
	assert.Equal(t, rules.ReasonExhausted, res.Reason)
	assert.Equal(t, 19, m.HP(rules.SideOpponent))
}

func TestDeclareAttackUsesSelection(t *testing.T) {
	m := arena(t, []*Card{testCard("a1", 1200, 2, AbilityBlank)}, []*Card{testCard("d1", 100, 1, AbilityBlank)})

	res := m.DeclareAttack(rules.SideHuman, "d1")
	assert.Equal(t, rules.ReasonNotFound, res.Reason)

	require.True(t, m.SelectAttacker(rules.SideHuman, "a1").Accepted)
	assert.Equal(t, "a1", m.SelectedAttacker())

	res = m.DeclareAttack(rules.SideHuman, "d1")
	require.True(t, res.Accepted)
	assert.Empty(t, m.SelectedAttacker())
	assert.Equal(t, rules.EventAttackerCleared, res.Events[len(res.Events)-1].Type)
	assert.Len(t, m.players[rules.SideOpponent].Grave, 1)
}

func TestLethalAttackLocksMatch(t *testing.T) {
	m := arena(t, []*Card{testCard("a1", 1400, 2, AbilityBlank), testCard("a2", 1400, 2, AbilityBlank)}, nil)
	m.players[rules.SideOpponent].HP = 2
	m.players[rules.SideHuman].Hand = []*Card{testCard("h1", 100, 1, AbilityBlank)}

	res := m.ResolveAttack(rules.SideHuman, "a1", "", true)

	require.True(t, res.Accepted)
	assert.True(t, m.IsLocked())
	assert.Equal(t, OutcomeHumanWins, m.Outcome())
	assert.Equal(t, 1, countEvents(res.Events, rules.EventGameOver))

	locked := []Result{
		m.PlayCard(rules.SideHuman, "h1"),
		m.SelectAttacker(rules.SideHuman, "a2"),
		m.DeclareAttack(rules.SideHuman, ""),
		m.ResolveAttack(rules.SideHuman, "a2", "", true),
		m.EndTurn(rules.SideHuman),
		m.DrawCard(rules.SideHuman),
		m.EnterCombat(rules.SideHuman),
	}
	for i, r := range locked {
		assert.False(t, r.Accepted, "command %d", i)
		assert.Equal(t, rules.ReasonMatchLocked, r.Reason, "command %d", i)
	}

	assert.True(t, m.checkGameOver())
	assert.Equal(t, 1, countEvents(m.Events(0), rules.EventGameOver))
}

func TestGameOverPriority(t *testing.T) {
	cases := []struct {
		human, opponent int
		want            Outcome
	}{
		{0, 0, OutcomeDraw},
		{-3, 5, OutcomeOpponentWins},
		{5, 0, OutcomeHumanWins},
		{1, 1, OutcomeNone},
	}
	for _, tc := range cases {
		m := newTestMatch(t)
		m.players[rules.SideHuman].HP = tc.human
		m.players[rules.SideOpponent].HP = tc.opponent

		assert.Equal(t, tc.want != OutcomeNone, m.checkGameOver())
		assert.Equal(t, tc.want, m.Outcome())
		assert.Equal(t, tc.want != OutcomeNone, m.IsLocked())
	}
}
