package rules

import (
	"sync"
)

// EventType indicates the category of a duel event.
type EventType string

const (
	// Turn events
	EventTurnStarted     EventType = "TURN_STARTED"
	EventPhaseChanged    EventType = "PHASE_CHANGED"
	EventEnergyRefreshed EventType = "ENERGY_REFRESHED"
	EventCreaturesReady  EventType = "CREATURES_READIED"
	EventTurnEnded       EventType = "TURN_ENDED"

	// Zone events
	EventCardDrawn  EventType = "CARD_DRAWN"
	EventCardBurned EventType = "CARD_BURNED"
	EventFatigue    EventType = "FATIGUE"
	EventCardPlayed EventType = "CARD_PLAYED"

	// Combat events
	EventAttackerSelected  EventType = "ATTACKER_SELECTED"
	EventAttackerCleared   EventType = "ATTACKER_CLEARED"
	EventAttackDeclared    EventType = "ATTACK_DECLARED"
	EventAbilityTriggered  EventType = "ABILITY_TRIGGERED"
	EventCreatureDamaged   EventType = "CREATURE_DAMAGED"
	EventCreatureDestroyed EventType = "CREATURE_DESTROYED"
	EventAttackResolved    EventType = "ATTACK_RESOLVED"
	EventPlayerDamaged     EventType = "PLAYER_DAMAGED"
	EventPlayerHealed      EventType = "PLAYER_HEALED"

	// Terminal event
	EventGameOver EventType = "GAME_OVER"
)

// Event is a discrete state change produced by a command. Side is the side
// the event happened to: the drawing player, the damaged player, the owner of
// the damaged creature, the acting player for plays and attacks.
type Event struct {
	Seq         int       `json:"seq"`
	Type        EventType `json:"type"`
	Side        Side      `json:"side"`
	SourceID    string    `json:"source_id,omitempty"`
	TargetID    string    `json:"target_id,omitempty"`
	Amount      int       `json:"amount,omitempty"`
	Flag        bool      `json:"flag,omitempty"`
	Data        string    `json:"data,omitempty"`
	Description string    `json:"description,omitempty"`
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, side Side, sourceID, targetID string) Event {
	return Event{
		Type:     eventType,
		Side:     side,
		SourceID: sourceID,
		TargetID: targetID,
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, side Side, sourceID, targetID string, amount int) Event {
	evt := NewEvent(eventType, side, sourceID, targetID)
	evt.Amount = amount
	return evt
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// EventBus provides a synchronous publish/subscribe implementation.
type EventBus struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener for all events. Nil listeners are ignored.
func (bus *EventBus) Subscribe(listener Listener) {
	if listener == nil {
		return
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.listeners = append(bus.listeners, listener)
}

// Publish delivers the event to all registered listeners synchronously, in
// subscription order.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	for _, listener := range bus.listeners {
		listener(event)
	}
}
