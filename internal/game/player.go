package game

import (
	"github.com/duelforge/duel-server-go/internal/game/energy"
	"github.com/duelforge/duel-server-go/internal/game/rules"
)

// Player is one side of a match and owns that side's four zones.
type Player struct {
	Side   rules.Side
	Name   string
	HP     int
	Energy *energy.Pool

	Deck  []*Card
	Hand  []*Card
	Field []*Card
	Grave []*Card

	// created counts every card ever generated for this player
	created int
}

func newPlayer(side rules.Side, name string, settings Settings) *Player {
	return &Player{
		Side:   side,
		Name:   name,
		HP:     settings.StartHP,
		Energy: energy.NewPool(settings.EnergyCap),
	}
}

func (p *Player) zone(zone rules.Zone) []*Card {
	switch zone {
	case rules.ZoneDeck:
		return p.Deck
	case rules.ZoneHand:
		return p.Hand
	case rules.ZoneField:
		return p.Field
	case rules.ZoneGrave:
		return p.Grave
	default:
		return nil
	}
}

// find returns the index of a card in a zone, or -1.
func (p *Player) find(zone rules.Zone, cardID string) int {
	for i, c := range p.zone(zone) {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

func (p *Player) card(zone rules.Zone, cardID string) *Card {
	if i := p.find(zone, cardID); i >= 0 {
		return p.zone(zone)[i]
	}
	return nil
}

// deploy moves a hand card onto the field exhausted.
func (p *Player) deploy(cardID string) *Card {
	i := p.find(rules.ZoneHand, cardID)
	if i < 0 {
		return nil
	}
	c := p.Hand[i]
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	c.Exhausted = true
	p.Field = append(p.Field, c)
	return c
}

// destroy moves a field card to the grave.
func (p *Player) destroy(cardID string) *Card {
	i := p.find(rules.ZoneField, cardID)
	if i < 0 {
		return nil
	}
	c := p.Field[i]
	p.Field = append(p.Field[:i], p.Field[i+1:]...)
	p.Grave = append(p.Grave, c)
	return c
}

// ready clears exhaustion on the whole field and returns how many creatures
// changed.
func (p *Player) ready() int {
	n := 0
	for _, c := range p.Field {
		if c.Exhausted {
			c.Exhausted = false
			n++
		}
	}
	return n
}

// CardCount returns the number of cards across all four zones.
func (p *Player) CardCount() int {
	return len(p.Deck) + len(p.Hand) + len(p.Field) + len(p.Grave)
}

// Created returns how many cards were generated for this player.
func (p *Player) Created() int {
	return p.created
}
