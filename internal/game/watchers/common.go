package watchers

import (
	"github.com/duelforge/duel-server-go/internal/game/rules"
)

// SideStats aggregates what one side achieved during a match.
type SideStats struct {
	CardsPlayed        int `json:"cards_played"`
	EnergySpent        int `json:"energy_spent"`
	Attacks            int `json:"attacks"`
	FaceDamage         int `json:"face_damage"`
	CreatureDamage     int `json:"creature_damage"`
	CreaturesDestroyed int `json:"creatures_destroyed"`
	Healing            int `json:"healing"`
	FatigueTaken       int `json:"fatigue_taken"`
}

// CombatStatsWatcher tracks per-side match statistics.
type CombatStatsWatcher struct {
	*rules.BaseWatcher
	stats map[rules.Side]*SideStats
}

// NewCombatStatsWatcher creates a new combat stats watcher.
func NewCombatStatsWatcher() *CombatStatsWatcher {
	w := &CombatStatsWatcher{
		BaseWatcher: rules.NewBaseWatcher("CombatStatsWatcher"),
	}
	w.Reset()
	return w
}

// Watch implements the Watcher interface.
func (w *CombatStatsWatcher) Watch(event rules.Event) {
	switch event.Type {
	case rules.EventCardPlayed:
		w.stats[event.Side].CardsPlayed++
		w.stats[event.Side].EnergySpent += event.Amount
	case rules.EventAttackDeclared:
		w.stats[event.Side].Attacks++
	case rules.EventPlayerDamaged:
		// damage without a source card is fatigue
		if event.SourceID == "" {
			w.stats[event.Side].FatigueTaken += event.Amount
			return
		}
		w.stats[event.Side.Other()].FaceDamage += event.Amount
	case rules.EventCreatureDamaged:
		w.stats[event.Side.Other()].CreatureDamage += event.Amount
	case rules.EventCreatureDestroyed:
		w.stats[event.Side.Other()].CreaturesDestroyed++
	case rules.EventPlayerHealed:
		w.stats[event.Side].Healing += event.Amount
	}
}

// Reset clears the watcher's state.
func (w *CombatStatsWatcher) Reset() {
	w.stats = map[rules.Side]*SideStats{
		rules.SideHuman:    {},
		rules.SideOpponent: {},
	}
}

// Stats returns a copy of the statistics for one side.
func (w *CombatStatsWatcher) Stats(side rules.Side) SideStats {
	if s, ok := w.stats[side]; ok {
		return *s
	}
	return SideStats{}
}

// CardsDrawnWatcher tracks draws, burns and fatigue per side.
type CardsDrawnWatcher struct {
	*rules.BaseWatcher
	drawn   map[rules.Side]int
	burned  map[rules.Side]int
	fatigue map[rules.Side]int
}

// NewCardsDrawnWatcher creates a new cards drawn watcher.
func NewCardsDrawnWatcher() *CardsDrawnWatcher {
	w := &CardsDrawnWatcher{
		BaseWatcher: rules.NewBaseWatcher("CardsDrawnWatcher"),
	}
	w.Reset()
	return w
}

// Watch implements the Watcher interface.
func (w *CardsDrawnWatcher) Watch(event rules.Event) {
	switch event.Type {
	case rules.EventCardDrawn:
		w.drawn[event.Side]++
	case rules.EventCardBurned:
		w.burned[event.Side]++
	case rules.EventFatigue:
		w.fatigue[event.Side]++
	}
}

// Reset clears the watcher's state.
func (w *CardsDrawnWatcher) Reset() {
	w.drawn = make(map[rules.Side]int)
	w.burned = make(map[rules.Side]int)
	w.fatigue = make(map[rules.Side]int)
}

// GetCount returns the number of cards a side has drawn into hand.
func (w *CardsDrawnWatcher) GetCount(side rules.Side) int {
	return w.drawn[side]
}

// GetBurned returns the number of cards a side lost to a full hand.
func (w *CardsDrawnWatcher) GetBurned(side rules.Side) int {
	return w.burned[side]
}

// GetFatigue returns how many times a side drew from an empty deck.
func (w *CardsDrawnWatcher) GetFatigue(side rules.Side) int {
	return w.fatigue[side]
}
