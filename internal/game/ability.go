package game

import (
	"fmt"
	"strings"
)

// AbilityKind tags the single ability a card carries. Behaviour lives in a
// fixed table keyed by kind so cards stay plain data.
type AbilityKind string

const (
	AbilityFury     AbilityKind = "fury"
	AbilityPiercing AbilityKind = "piercing"
	AbilityShield   AbilityKind = "shield"
	AbilityLeech    AbilityKind = "leech"
	AbilityVenomous AbilityKind = "venomous"
	AbilityBlank    AbilityKind = "blank"
)

// AttackBonus is what an onAttack hook contributes.
type AttackBonus struct {
	AtkBonus int
	DmgBonus int
}

// DefendBonus is what an onDefend hook contributes.
type DefendBonus struct {
	DmgReduction int
}

// AfterCombatBonus is what an afterCombat hook contributes.
type AfterCombatBonus struct {
	FaceDamageBonus int
	Heal            int
}

type abilityHooks struct {
	text        string
	onAttack    func(card *Card) AttackBonus
	onDefend    func(card *Card) DefendBonus
	afterCombat func(card *Card, killedDefender bool) AfterCombatBonus
}

var abilityTable = map[AbilityKind]abilityHooks{
	AbilityFury: {
		text: "+300 ATK when attacking.",
		onAttack: func(*Card) AttackBonus {
			return AttackBonus{AtkBonus: 300}
		},
	},
	AbilityPiercing: {
		text: "Deals +2 damage to the opposing player after destroying a creature.",
		afterCombat: func(_ *Card, killed bool) AfterCombatBonus {
			if killed {
				return AfterCombatBonus{FaceDamageBonus: 2}
			}
			return AfterCombatBonus{}
		},
	},
	AbilityShield: {
		text: "Reduces damage taken by 2.",
		onDefend: func(*Card) DefendBonus {
			return DefendBonus{DmgReduction: 2}
		},
	},
	AbilityLeech: {
		text: "Heals its owner for 2 after destroying a creature.",
		afterCombat: func(_ *Card, killed bool) AfterCombatBonus {
			if killed {
				return AfterCombatBonus{Heal: 2}
			}
			return AfterCombatBonus{}
		},
	},
	AbilityVenomous: {
		text: "Deals +1 extra damage on direct attacks.",
		onAttack: func(*Card) AttackBonus {
			return AttackBonus{DmgBonus: 1}
		},
	},
	AbilityBlank: {
		text: "No ability.",
	},
}

// AllAbilities lists every kind in table order.
func AllAbilities() []AbilityKind {
	return []AbilityKind{
		AbilityFury,
		AbilityPiercing,
		AbilityShield,
		AbilityLeech,
		AbilityVenomous,
		AbilityBlank,
	}
}

// ParseAbilityKind converts a configured name into a kind.
func ParseAbilityKind(name string) (AbilityKind, error) {
	kind := AbilityKind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := abilityTable[kind]; !ok {
		return "", fmt.Errorf("unknown ability %q", name)
	}
	return kind, nil
}

// Text returns the rules text shown on the card.
func (k AbilityKind) Text() string {
	return abilityTable[k].text
}

// OnAttack runs the attacker hook. Kinds without one contribute nothing.
func (k AbilityKind) OnAttack(card *Card) AttackBonus {
	if hook := abilityTable[k].onAttack; hook != nil {
		return hook(card)
	}
	return AttackBonus{}
}

// OnDefend runs the defender hook.
func (k AbilityKind) OnDefend(card *Card) DefendBonus {
	if hook := abilityTable[k].onDefend; hook != nil {
		return hook(card)
	}
	return DefendBonus{}
}

// AfterCombat runs the post-resolution hook. Direct attacks always pass
// killedDefender=false.
func (k AbilityKind) AfterCombat(card *Card, killedDefender bool) AfterCombatBonus {
	if hook := abilityTable[k].afterCombat; hook != nil {
		return hook(card, killedDefender)
	}
	return AfterCombatBonus{}
}
