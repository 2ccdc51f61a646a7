package game

import (
	"slices"
)

// Policy plays the scripted side's turn. It runs to completion inside the
// command that handed it the turn and acts only through Match commands.
type Policy interface {
	TakeTurn(m *Match)
}

// GreedyPolicy deploys the costliest affordable cards, attacks the weakest
// enemy creature with every ready attacker (or the player when the enemy
// field is empty) and passes. It adds no randomness of its own.
type GreedyPolicy struct{}

// TakeTurn implements Policy.
func (GreedyPolicy) TakeTurn(m *Match) {
	side := m.CurrentSide()
	self := m.players[side]
	enemy := m.players[side.Other()]

	for !m.locked && len(self.Field) < m.settings.MaxField {
		card := costliestAffordable(self)
		if card == nil {
			break
		}
		if res := m.PlayCard(side, card.ID); !res.Accepted {
			break
		}
	}
	if m.locked {
		return
	}

	m.EnterCombat(side)
	for _, attacker := range slices.Clone(self.Field) {
		if m.locked {
			break
		}
		if attacker.Exhausted {
			continue
		}
		if target := weakest(enemy.Field); target != nil {
			m.ResolveAttack(side, attacker.ID, target.ID, false)
		} else {
			m.ResolveAttack(side, attacker.ID, "", true)
		}
	}

	if !m.locked {
		m.EndTurn(side)
	}
}

// costliestAffordable orders a copy of the hand by descending cost (ties keep
// hand order) and returns the first card the player can pay for.
func costliestAffordable(p *Player) *Card {
	hand := slices.Clone(p.Hand)
	slices.SortStableFunc(hand, func(a, b *Card) int {
		return b.Cost - a.Cost
	})
	for _, c := range hand {
		if p.Energy.CanAfford(c.Cost) {
			return c
		}
	}
	return nil
}

// weakest returns the lowest-hp creature, the first one on ties.
func weakest(field []*Card) *Card {
	var target *Card
	for _, c := range field {
		if target == nil || c.HP < target.HP {
			target = c
		}
	}
	return target
}

var _ Policy = GreedyPolicy{}
