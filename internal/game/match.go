package game

import (
	"fmt"
	"slices"

	"github.com/duelforge/duel-server-go/internal/game/rules"
	"github.com/duelforge/duel-server-go/internal/game/watchers"
	"github.com/duelforge/duel-server-go/internal/names"
	"github.com/google/uuid"
)

// Outcome is the terminal result of a match.
type Outcome string

const (
	OutcomeNone         Outcome = ""
	OutcomeHumanWins    Outcome = "human-wins"
	OutcomeOpponentWins Outcome = "opponent-wins"
	OutcomeDraw         Outcome = "draw"
)

// Result is returned by every command. Refused commands carry a Reason and
// never change state; accepted ones carry the events they produced,
// including everything the opponent did if the command handed it the turn.
type Result struct {
	Accepted bool          `json:"accepted"`
	Reason   rules.Reason  `json:"reason,omitempty"`
	Events   []rules.Event `json:"events,omitempty"`
}

func refused(reason rules.Reason) Result {
	return Result{Reason: reason}
}

// MatchConfig describes a new match. Only Settings and Tables are needed;
// everything else has a default.
type MatchConfig struct {
	ID           string
	Seed         string
	Settings     Settings
	Tables       *CardTables
	Names        NameProvider
	Random       RandomSource
	Opponent     Policy
	HumanName    string
	OpponentName string
}

// Match is the aggregate for one game. It is not safe for concurrent use;
// the engine serializes commands per match.
type Match struct {
	id       string
	seed     string
	settings Settings

	players  [2]*Player
	turns    *rules.TurnManager
	legality *rules.LegalityChecker
	bus      *rules.EventBus
	watchers *rules.WatcherRegistry
	stats    *watchers.CombatStatsWatcher
	draws    *watchers.CardsDrawnWatcher
	opponent Policy

	selected string
	locked   bool
	outcome  Outcome
	log      []rules.Event
}

// NewGame builds both decks, deals the opening hands alternately (human
// first) and starts the human's first turn.
func NewGame(cfg MatchConfig) (*Match, Result, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, Result{}, fmt.Errorf("invalid settings: %w", err)
	}
	tables := cfg.Tables
	if tables == nil {
		tables = DefaultCardTables()
	}
	if err := tables.Validate(); err != nil {
		return nil, Result{}, fmt.Errorf("invalid card tables: %w", err)
	}

	seed := cfg.Seed
	if seed == "" {
		seed = NewRandomSeed()
	}
	rnd := cfg.Random
	if rnd == nil {
		rnd = NewSeededSource(seed)
	}
	nameProvider := cfg.Names
	if nameProvider == nil {
		gen, err := names.NewGenerator(tables.NamesFirst, tables.NamesSecond, rnd)
		if err != nil {
			return nil, Result{}, fmt.Errorf("create name generator: %w", err)
		}
		nameProvider = gen
	}
	opponent := cfg.Opponent
	if opponent == nil {
		opponent = GreedyPolicy{}
	}
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	humanName := cfg.HumanName
	if humanName == "" {
		humanName = "You"
	}
	opponentName := cfg.OpponentName
	if opponentName == "" {
		opponentName = "Opponent"
	}

	m := &Match{
		id:       id,
		seed:     seed,
		settings: cfg.Settings,
		turns:    rules.NewTurnManager(rules.SideHuman),
		bus:      rules.NewEventBus(),
		watchers: rules.NewWatcherRegistry(),
		stats:    watchers.NewCombatStatsWatcher(),
		draws:    watchers.NewCardsDrawnWatcher(),
		opponent: opponent,
	}
	m.players[rules.SideHuman] = newPlayer(rules.SideHuman, humanName, cfg.Settings)
	m.players[rules.SideOpponent] = newPlayer(rules.SideOpponent, opponentName, cfg.Settings)
	m.legality = rules.NewLegalityChecker(m)
	m.watchers.AddWatcher(m.stats)
	m.watchers.AddWatcher(m.draws)
	m.bus.Subscribe(m.watchers.NotifyWatchers)

	factory := NewFactory(tables, nameProvider, rnd)
	for _, p := range m.players {
		p.Deck = BuildDeck(cfg.Settings.DeckSize, factory, rnd)
		p.created = len(p.Deck)
	}
	for i := 0; i < cfg.Settings.StartHand; i++ {
		m.draw(rules.SideHuman)
		m.draw(rules.SideOpponent)
	}

	m.startTurn(rules.SideHuman, true)
	return m, Result{Accepted: true, Events: slices.Clone(m.log)}, nil
}

var _ rules.MatchAccessor = (*Match)(nil)

// ID returns the match id.
func (m *Match) ID() string { return m.id }

// Seed returns the seed the match was rolled from.
func (m *Match) Seed() string { return m.seed }

// Settings returns the match constants.
func (m *Match) Settings() Settings { return m.settings }

// Turn returns the human-turn counter.
func (m *Match) Turn() int { return m.turns.TurnNumber() }

// Outcome returns the terminal outcome, or OutcomeNone while in progress.
func (m *Match) Outcome() Outcome { return m.outcome }

// HP returns a side's hit points.
func (m *Match) HP(side rules.Side) int { return m.players[side].HP }

// SelectedAttacker returns the pre-armed attacker id, if any.
func (m *Match) SelectedAttacker() string { return m.selected }

// Stats returns the combat statistics gathered for a side.
func (m *Match) Stats(side rules.Side) watchers.SideStats { return m.stats.Stats(side) }

// DrawCounts returns how many draws, burns and fatigue hits a side took.
func (m *Match) DrawCounts(side rules.Side) (drawn, burned, fatigue int) {
	return m.draws.GetCount(side), m.draws.GetBurned(side), m.draws.GetFatigue(side)
}

// Events returns the events with a sequence number greater than since.
func (m *Match) Events(since int) []rules.Event {
	if since < 0 {
		since = 0
	}
	if since >= len(m.log) {
		return nil
	}
	return slices.Clone(m.log[since:])
}

// IsLocked implements rules.MatchAccessor.
func (m *Match) IsLocked() bool { return m.locked }

// CurrentSide implements rules.MatchAccessor.
func (m *Match) CurrentSide() rules.Side { return m.turns.Current() }

// CurrentPhase implements rules.MatchAccessor.
func (m *Match) CurrentPhase() rules.Phase { return m.turns.CurrentPhase() }

// FieldSize implements rules.MatchAccessor.
func (m *Match) FieldSize(side rules.Side) int { return len(m.players[side].Field) }

// FieldLimit implements rules.MatchAccessor.
func (m *Match) FieldLimit() int { return m.settings.MaxField }

// EnergyAvailable implements rules.MatchAccessor.
func (m *Match) EnergyAvailable(side rules.Side) int { return m.players[side].Energy.Current() }

// FindCard implements rules.MatchAccessor.
func (m *Match) FindCard(side rules.Side, zone rules.Zone, cardID string) (rules.CardInfo, bool) {
	c := m.players[side].card(zone, cardID)
	if c == nil {
		return rules.CardInfo{}, false
	}
	return rules.CardInfo{ID: c.ID, Cost: c.Cost, HP: c.HP, Exhausted: c.Exhausted}, true
}

func (m *Match) emit(evt rules.Event) {
	evt.Seq = len(m.log) + 1
	m.log = append(m.log, evt)
	m.bus.Publish(evt)
}

func (m *Match) since(start int) Result {
	return Result{Accepted: true, Events: slices.Clone(m.log[start:])}
}

// startTurn hands the turn to side: main phase, energy refresh, readied
// field, one draw. The opening turn skips the draw unless configured.
func (m *Match) startTurn(side rules.Side, opening bool) {
	m.turns.BeginTurn(side)
	m.selected = ""

	turnEvt := rules.NewEventWithAmount(rules.EventTurnStarted, side, "", "", m.turns.TurnNumber())
	turnEvt.Description = fmt.Sprintf("Turn %d: %s", m.turns.TurnNumber(), m.players[side].Name)
	m.emit(turnEvt)

	p := m.players[side]
	m.emit(rules.NewEventWithAmount(rules.EventEnergyRefreshed, side, "", "", p.Energy.Refresh()))
	m.emit(rules.NewEventWithAmount(rules.EventCreaturesReady, side, "", "", p.ready()))

	if !opening || m.settings.OpeningDraw {
		m.draw(side)
	}

	if side == rules.SideOpponent && !m.locked {
		m.opponent.TakeTurn(m)
	}
}

func (m *Match) endTurn() {
	side := m.turns.Current()
	m.clearSelection()
	next := m.turns.EndTurn()

	phaseEvt := rules.NewEvent(rules.EventPhaseChanged, side, "", "")
	phaseEvt.Data = rules.PhaseEnd.String()
	m.emit(phaseEvt)
	m.emit(rules.NewEvent(rules.EventTurnEnded, side, "", ""))

	m.startTurn(next, false)
}

// draw resolves one draw for side and emits its outcome. Opponent draws do
// not expose the card id.
func (m *Match) draw(side rules.Side) DrawOutcome {
	p := m.players[side]
	outcome := p.Draw(m.settings.MaxHand, m.settings.FatigueDamage)

	switch outcome.Kind {
	case DrawnToHand:
		evt := rules.NewEvent(rules.EventCardDrawn, side, "", "")
		if side == rules.SideHuman {
			evt.SourceID = outcome.Card.ID
		}
		m.emit(evt)
	case DrawBurned:
		m.emit(rules.NewEvent(rules.EventCardBurned, side, outcome.Card.ID, ""))
	case DrawFatigue:
		m.emit(rules.NewEventWithAmount(rules.EventFatigue, side, "", "", outcome.Damage))
		m.emit(rules.NewEventWithAmount(rules.EventPlayerDamaged, side, "", "", outcome.Damage))
		m.checkGameOver()
	}
	return outcome
}

func (m *Match) enterCombat(side rules.Side) {
	if !m.turns.EnterCombat() {
		return
	}
	m.clearSelection()
	evt := rules.NewEvent(rules.EventPhaseChanged, side, "", "")
	evt.Data = rules.PhaseCombat.String()
	m.emit(evt)
}

func (m *Match) clearSelection() {
	if m.selected == "" {
		return
	}
	cleared := m.selected
	m.selected = ""
	m.emit(rules.NewEvent(rules.EventAttackerCleared, m.turns.Current(), cleared, ""))
}

// checkGameOver locks the match on the first terminal condition. Calling it
// again after the lock does nothing.
func (m *Match) checkGameOver() bool {
	if m.locked {
		return true
	}

	human := m.players[rules.SideHuman].HP
	opponent := m.players[rules.SideOpponent].HP
	switch {
	case human <= 0 && opponent <= 0:
		m.outcome = OutcomeDraw
	case human <= 0:
		m.outcome = OutcomeOpponentWins
	case opponent <= 0:
		m.outcome = OutcomeHumanWins
	default:
		return false
	}

	m.locked = true
	m.selected = ""
	evt := rules.NewEvent(rules.EventGameOver, m.turns.Current(), "", "")
	evt.Data = string(m.outcome)
	m.emit(evt)
	return true
}
