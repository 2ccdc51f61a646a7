package game

import (
	"github.com/duelforge/duel-server-go/internal/game/rules"
)

// DirectDamage is the hit point loss of a direct attack. The division result
// is floored at zero before dmgBonus is added.
func DirectDamage(effectiveAttack, faceDivisor, dmgBonus int) int {
	return max(0, roundHalfUp(float64(effectiveAttack)/float64(faceDivisor))) + dmgBonus
}

// CreatureDamage is the hit point loss of a creature defender. The minimum
// of 1 applies before reduction, so reduction can still bring it to 0.
func CreatureDamage(effectiveAttack, creatureDivisor, dmgReduction int) int {
	return max(0, max(1, roundHalfUp(float64(effectiveAttack)/float64(creatureDivisor)))-dmgReduction)
}

// resolveAttack applies an attack that already passed legality checks.
func (m *Match) resolveAttack(side rules.Side, attackerID, defenderID string, direct bool) {
	attackingPlayer := m.players[side]
	defendingSide := side.Other()
	defendingPlayer := m.players[defendingSide]
	attacker := attackingPlayer.card(rules.ZoneField, attackerID)

	if direct {
		defenderID = ""
	}
	declared := rules.NewEvent(rules.EventAttackDeclared, side, attackerID, defenderID)
	declared.Flag = direct
	m.emit(declared)

	onAttack := attacker.Ability.OnAttack(attacker)
	if onAttack.AtkBonus != 0 {
		m.abilityTriggered(side, attacker, defenderID, onAttack.AtkBonus)
	}
	effectiveAttack := attacker.ATK + onAttack.AtkBonus

	damage := 0
	killed := false
	if direct {
		if onAttack.DmgBonus != 0 {
			m.abilityTriggered(side, attacker, "", onAttack.DmgBonus)
		}
		damage = DirectDamage(effectiveAttack, m.settings.FaceDivisor, onAttack.DmgBonus)
		m.damagePlayer(defendingSide, attackerID, damage)
		attacker.Exhausted = true
	} else {
		defender := defendingPlayer.card(rules.ZoneField, defenderID)
		onDefend := defender.Ability.OnDefend(defender)
		if onDefend.DmgReduction != 0 {
			m.abilityTriggered(defendingSide, defender, attackerID, onDefend.DmgReduction)
		}

		damage = CreatureDamage(effectiveAttack, m.settings.CreatureDivisor, onDefend.DmgReduction)
		defender.HP -= damage
		attacker.Exhausted = true
		m.emit(rules.NewEventWithAmount(rules.EventCreatureDamaged, defendingSide, attackerID, defenderID, damage))

		if defender.HP <= 0 {
			defendingPlayer.destroy(defenderID)
			killed = true
			destroyed := rules.NewEvent(rules.EventCreatureDestroyed, defendingSide, attackerID, defenderID)
			destroyed.Description = defender.Name
			m.emit(destroyed)
		}
	}

	after := attacker.Ability.AfterCombat(attacker, killed)
	if after.FaceDamageBonus != 0 {
		m.abilityTriggered(side, attacker, "", after.FaceDamageBonus)
		m.damagePlayer(defendingSide, attackerID, after.FaceDamageBonus)
	}
	if after.Heal != 0 {
		m.abilityTriggered(side, attacker, "", after.Heal)
		attackingPlayer.HP += after.Heal
		m.emit(rules.NewEventWithAmount(rules.EventPlayerHealed, side, attackerID, "", after.Heal))
	}

	resolved := rules.NewEventWithAmount(rules.EventAttackResolved, side, attackerID, defenderID, damage)
	resolved.Flag = killed
	m.emit(resolved)

	m.checkGameOver()
	m.clearSelection()
}

func (m *Match) damagePlayer(side rules.Side, sourceID string, amount int) {
	m.players[side].HP -= amount
	m.emit(rules.NewEventWithAmount(rules.EventPlayerDamaged, side, sourceID, "", amount))
}

func (m *Match) abilityTriggered(side rules.Side, card *Card, targetID string, amount int) {
	evt := rules.NewEventWithAmount(rules.EventAbilityTriggered, side, card.ID, targetID, amount)
	evt.Data = string(card.Ability)
	evt.Description = card.Ability.Text()
	m.emit(evt)
}
