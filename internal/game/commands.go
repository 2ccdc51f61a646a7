package game

import (
	"errors"
	"fmt"

	"github.com/duelforge/duel-server-go/internal/game/rules"
)

// PlayCard deploys a hand card onto the field, paying its cost. The card
// enters exhausted.
func (m *Match) PlayCard(side rules.Side, cardID string) Result {
	if res := m.legality.CanPlay(side, cardID); !res.Legal {
		return refused(res.Reason)
	}
	start := len(m.log)

	p := m.players[side]
	card := p.card(rules.ZoneHand, cardID)
	p.Energy.Spend(card.Cost)
	p.deploy(cardID)

	evt := rules.NewEventWithAmount(rules.EventCardPlayed, side, card.ID, "", card.Cost)
	evt.Description = card.Name
	m.emit(evt)
	return m.since(start)
}

// SelectAttacker arms or disarms an attacker. Selecting during main moves
// the turn to combat instead of selecting; a second call then selects.
// Selecting the armed attacker again clears it.
func (m *Match) SelectAttacker(side rules.Side, cardID string) Result {
	if res := m.legality.CanSelect(side, cardID); !res.Legal {
		return refused(res.Reason)
	}
	start := len(m.log)

	switch m.turns.CurrentPhase() {
	case rules.PhaseMain:
		m.enterCombat(side)
		return m.since(start)
	case rules.PhaseCombat:
	default:
		return refused(rules.ReasonWrongPhase)
	}

	if m.selected == cardID {
		m.clearSelection()
		return m.since(start)
	}
	if m.players[side].card(rules.ZoneField, cardID).Exhausted {
		return refused(rules.ReasonExhausted)
	}
	m.selected = cardID
	m.emit(rules.NewEvent(rules.EventAttackerSelected, side, cardID, ""))
	return m.since(start)
}

// EnterCombat moves the current turn from main to combat.
func (m *Match) EnterCombat(side rules.Side) Result {
	if res := m.legality.CanEnterCombat(side); !res.Legal {
		return refused(res.Reason)
	}
	start := len(m.log)
	m.enterCombat(side)
	return m.since(start)
}

// DeclareAttack attacks with the armed attacker. An empty defenderID attacks
// the opposing player directly.
func (m *Match) DeclareAttack(side rules.Side, defenderID string) Result {
	return m.ResolveAttack(side, m.selected, defenderID, defenderID == "")
}

// ResolveAttack runs one attack. direct, or an empty defenderID, targets the
// opposing player.
func (m *Match) ResolveAttack(side rules.Side, attackerID, defenderID string, direct bool) Result {
	if res := m.legality.CanAttack(side, attackerID, defenderID, direct); !res.Legal {
		return refused(res.Reason)
	}
	start := len(m.log)
	m.resolveAttack(side, attackerID, defenderID, direct || defenderID == "")
	return m.since(start)
}

// DrawCard is the manual draw during main. It is unlimited; each call may
// draw, burn or cost fatigue.
func (m *Match) DrawCard(side rules.Side) Result {
	if res := m.legality.CanDraw(side); !res.Legal {
		return refused(res.Reason)
	}
	start := len(m.log)
	m.draw(side)
	return m.since(start)
}

// EndTurn passes the turn. When the opponent receives it, its whole turn
// runs before EndTurn returns.
func (m *Match) EndTurn(side rules.Side) Result {
	if res := m.legality.CanEndTurn(side); !res.Legal {
		return refused(res.Reason)
	}
	start := len(m.log)
	m.endTurn()
	return m.since(start)
}

// ErrUnknownCommand is returned by Apply for a command type it cannot
// dispatch.
var ErrUnknownCommand = errors.New("unknown command type")

// CommandType names a command on the engine surface.
type CommandType string

const (
	CommandPlayCard       CommandType = "play_card"
	CommandSelectAttacker CommandType = "select_attacker"
	CommandEnterCombat    CommandType = "enter_combat"
	CommandDeclareAttack  CommandType = "declare_attack"
	CommandEndTurn        CommandType = "end_turn"
	CommandDrawCard       CommandType = "draw_card"
)

// Command is a serializable command addressed to one match.
type Command struct {
	Type       CommandType `json:"type"`
	Side       rules.Side  `json:"side"`
	CardID     string      `json:"card_id,omitempty"`
	DefenderID string      `json:"defender_id,omitempty"`
}

// Apply dispatches cmd to the matching command method. Only an unknown
// command type is an error; rule violations come back as a refused Result.
func (m *Match) Apply(cmd Command) (Result, error) {
	switch cmd.Type {
	case CommandPlayCard:
		return m.PlayCard(cmd.Side, cmd.CardID), nil
	case CommandSelectAttacker:
		return m.SelectAttacker(cmd.Side, cmd.CardID), nil
	case CommandEnterCombat:
		return m.EnterCombat(cmd.Side), nil
	case CommandDeclareAttack:
		return m.DeclareAttack(cmd.Side, cmd.DefenderID), nil
	case CommandEndTurn:
		return m.EndTurn(cmd.Side), nil
	case CommandDrawCard:
		return m.DrawCard(cmd.Side), nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
}
