package rules

// Zone is one of the card containers every side owns.
type Zone int

const (
	ZoneDeck Zone = iota
	ZoneHand
	ZoneField
	ZoneGrave
)

var zoneNames = map[Zone]string{
	ZoneDeck:  "deck",
	ZoneHand:  "hand",
	ZoneField: "field",
	ZoneGrave: "grave",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return "unknown"
}

// Reason is the machine-readable code attached to a refused command.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonWrongPhase         Reason = "wrong-phase"
	ReasonWrongTurn          Reason = "wrong-turn"
	ReasonInsufficientEnergy Reason = "insufficient-energy"
	ReasonFieldFull          Reason = "field-full"
	ReasonNotFound           Reason = "not-found"
	ReasonExhausted          Reason = "exhausted"
	ReasonMatchLocked        Reason = "match-locked"
)

// MatchAccessor provides the match state needed for legality checks.
type MatchAccessor interface {
	// IsLocked reports whether a terminal condition has fired
	IsLocked() bool
	// CurrentSide returns the side that has the turn
	CurrentSide() Side
	// CurrentPhase returns the active phase
	CurrentPhase() Phase
	// FindCard looks a card up in one zone of one side
	FindCard(side Side, zone Zone, cardID string) (CardInfo, bool)
	// FieldSize returns the number of creatures a side has deployed
	FieldSize(side Side) int
	// FieldLimit returns the configured field capacity
	FieldLimit() int
	// EnergyAvailable returns a side's spendable energy
	EnergyAvailable(side Side) int
}

// CardInfo provides information about a card for legality checks.
type CardInfo struct {
	ID        string
	Cost      int
	HP        int
	Exhausted bool
}

// LegalityResult represents the result of a legality check.
type LegalityResult struct {
	Legal  bool
	Reason Reason
}

func legal() LegalityResult {
	return LegalityResult{Legal: true}
}

func refuse(reason Reason) LegalityResult {
	return LegalityResult{Legal: false, Reason: reason}
}

// LegalityChecker validates commands before the match mutates anything.
// Checks run in a fixed order: lock, turn, phase, lookup, capacity, energy,
// exhaustion.
type LegalityChecker struct {
	match MatchAccessor
}

// NewLegalityChecker creates a new legality checker.
func NewLegalityChecker(match MatchAccessor) *LegalityChecker {
	return &LegalityChecker{match: match}
}

func (lc *LegalityChecker) checkTurn(side Side) LegalityResult {
	if lc.match.IsLocked() {
		return refuse(ReasonMatchLocked)
	}
	if lc.match.CurrentSide() != side {
		return refuse(ReasonWrongTurn)
	}
	return legal()
}

func (lc *LegalityChecker) checkPhase(side Side, phase Phase) LegalityResult {
	if res := lc.checkTurn(side); !res.Legal {
		return res
	}
	if lc.match.CurrentPhase() != phase {
		return refuse(ReasonWrongPhase)
	}
	return legal()
}

// CanPlay validates deploying a card from hand to field.
func (lc *LegalityChecker) CanPlay(side Side, cardID string) LegalityResult {
	if res := lc.checkPhase(side, PhaseMain); !res.Legal {
		return res
	}
	card, ok := lc.match.FindCard(side, ZoneHand, cardID)
	if !ok {
		return refuse(ReasonNotFound)
	}
	if lc.match.FieldSize(side) >= lc.match.FieldLimit() {
		return refuse(ReasonFieldFull)
	}
	if lc.match.EnergyAvailable(side) < card.Cost {
		return refuse(ReasonInsufficientEnergy)
	}
	return legal()
}

// CanSelect validates picking an own field creature as attacker. It does not
// check the phase: selecting during main is the combat auto-advance.
func (lc *LegalityChecker) CanSelect(side Side, cardID string) LegalityResult {
	if res := lc.checkTurn(side); !res.Legal {
		return res
	}
	if _, ok := lc.match.FindCard(side, ZoneField, cardID); !ok {
		return refuse(ReasonNotFound)
	}
	return legal()
}

// CanAttack validates an attack. An empty defenderID or direct=true means the
// opposing player is the target.
func (lc *LegalityChecker) CanAttack(side Side, attackerID, defenderID string, direct bool) LegalityResult {
	if res := lc.checkPhase(side, PhaseCombat); !res.Legal {
		return res
	}
	attacker, ok := lc.match.FindCard(side, ZoneField, attackerID)
	if !ok {
		return refuse(ReasonNotFound)
	}
	if attacker.Exhausted {
		return refuse(ReasonExhausted)
	}
	if !direct && defenderID != "" {
		if _, ok := lc.match.FindCard(side.Other(), ZoneField, defenderID); !ok {
			return refuse(ReasonNotFound)
		}
	}
	return legal()
}

// CanDraw validates a manual draw.
func (lc *LegalityChecker) CanDraw(side Side) LegalityResult {
	return lc.checkPhase(side, PhaseMain)
}

// CanEnterCombat validates the explicit main to combat transition.
func (lc *LegalityChecker) CanEnterCombat(side Side) LegalityResult {
	return lc.checkPhase(side, PhaseMain)
}

// CanEndTurn validates passing the turn.
func (lc *LegalityChecker) CanEndTurn(side Side) LegalityResult {
	return lc.checkTurn(side)
}
