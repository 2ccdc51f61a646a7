package rules

import (
	"fmt"
	"strings"
)

// Side identifies one of the two seats in a duel.
type Side int

const (
	SideHuman Side = iota
	SideOpponent
)

var sideNames = map[Side]string{
	SideHuman:    "human",
	SideOpponent: "opponent",
}

func (s Side) String() string {
	if name, ok := sideNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SIDE_%d", int(s))
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideHuman {
		return SideOpponent
	}
	return SideHuman
}

// MarshalText renders the side as its lowercase name.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses "human" or "opponent".
func (s *Side) UnmarshalText(text []byte) error {
	side, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = side
	return nil
}

// ParseSide parses a side name, case-insensitively.
func ParseSide(name string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "human", "":
		return SideHuman, nil
	case "opponent":
		return SideOpponent, nil
	default:
		return SideHuman, fmt.Errorf("unknown side %q", name)
	}
}

// Phase is one of the three phases every turn cycles through.
type Phase int

const (
	PhaseMain Phase = iota
	PhaseCombat
	PhaseEnd
)

var phaseNames = map[Phase]string{
	PhaseMain:   "main",
	PhaseCombat: "combat",
	PhaseEnd:    "end",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// MarshalText renders the phase as its lowercase name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", string(text))
}

// TurnManager tracks the acting side, the current phase and the turn counter.
//
// The counter starts at 1 and only advances when control returns to the
// human side, so it reports the index of the human's turn rather than the ply.
type TurnManager struct {
	turnNumber int
	current    Side
	phase      Phase
}

// NewTurnManager creates a turn manager at turn 1, main phase.
func NewTurnManager(first Side) *TurnManager {
	return &TurnManager{
		turnNumber: 1,
		current:    first,
		phase:      PhaseMain,
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return tm.phase
}

// Current returns the side that has the turn.
func (tm *TurnManager) Current() Side {
	return tm.current
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// BeginTurn hands the turn to side and resets the phase to main.
func (tm *TurnManager) BeginTurn(side Side) {
	tm.current = side
	tm.phase = PhaseMain
}

// EnterCombat moves main to combat. It reports false when the turn is not in
// its main phase.
func (tm *TurnManager) EnterCombat() bool {
	if tm.phase != PhaseMain {
		return false
	}
	tm.phase = PhaseCombat
	return true
}

// EndTurn closes the current turn and returns the side that plays next.
// The counter is incremented when the next side is the human.
func (tm *TurnManager) EndTurn() Side {
	tm.phase = PhaseEnd
	next := tm.current.Other()
	if next == SideHuman {
		tm.turnNumber++
	}
	return next
}
