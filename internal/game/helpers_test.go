package game

import (
	"testing"

	"github.com/duelforge/duel-server-go/internal/game/rules"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays fixed values; it returns 0 once exhausted.
type scriptedSource struct {
	floats []float64
	ints   []int
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedSource) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

type fixedName string

func (f fixedName) Generate() string { return string(f) }

func testCard(id string, atk, hp int, ability AbilityKind) *Card {
	return &Card{
		ID:      id,
		Name:    id,
		Rarity:  "common",
		Cost:    1,
		ATK:     atk,
		DEF:     hp * 250,
		Ability: ability,
		MaxHP:   hp,
		HP:      hp,
	}
}

// newTestMatch starts a seeded match with default settings.
func newTestMatch(t *testing.T) *Match {
	t.Helper()
	return newTestMatchWith(t, "test-seed", DefaultSettings())
}

func newTestMatchWith(t *testing.T, seed string, settings Settings) *Match {
	t.Helper()
	m, res, err := NewGame(MatchConfig{Seed: seed, Settings: settings})
	require.NoError(t, err)
	require.True(t, res.Accepted)
	return m
}

// arena empties both fields and puts the human in combat with the given
// creatures deployed and ready.
func arena(t *testing.T, human, opponent []*Card) *Match {
	t.Helper()
	m := newTestMatch(t)
	m.players[rules.SideHuman].Field = human
	m.players[rules.SideOpponent].Field = opponent
	require.True(t, m.turns.EnterCombat())
	return m
}

func eventTypes(events []rules.Event) []rules.EventType {
	types := make([]rules.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func countEvents(events []rules.Event, eventType rules.EventType) int {
	n := 0
	for _, e := range events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

func fillEnergy(p *Player) {
	for i := 0; i < p.Energy.Cap(); i++ {
		p.Energy.Refresh()
	}
}

// autoplay drives the human with a simple script until the match locks:
// play everything affordable, attack face with every ready creature, pass.
// exec reports whether a command was accepted.
func autoplay(t *testing.T, exec func(Command) bool, view func() MatchView) {
	t.Helper()
	for i := 0; i < 80; i++ {
		v := view()
		if v.Locked {
			return
		}
		for _, c := range v.Players[rules.SideHuman].Hand {
			exec(Command{Type: CommandPlayCard, Side: rules.SideHuman, CardID: c.ID})
		}
		exec(Command{Type: CommandEnterCombat, Side: rules.SideHuman})
		for _, c := range view().Players[rules.SideHuman].Field {
			if c.Exhausted {
				continue
			}
			if exec(Command{Type: CommandSelectAttacker, Side: rules.SideHuman, CardID: c.ID}) {
				exec(Command{Type: CommandDeclareAttack, Side: rules.SideHuman})
			}
		}
		exec(Command{Type: CommandEndTurn, Side: rules.SideHuman})
	}
	require.True(t, view().Locked, "match did not finish")
}
