package game

import (
	"github.com/duelforge/duel-server-go/internal/game/rules"
)

// MatchView is the read-only projection handed to adapters.
type MatchView struct {
	ID               string       `json:"id"`
	Turn             int          `json:"turn"`
	Current          rules.Side   `json:"current"`
	Phase            rules.Phase  `json:"phase"`
	SelectedAttacker string       `json:"selected_attacker,omitempty"`
	Locked           bool         `json:"locked"`
	Outcome          Outcome      `json:"outcome,omitempty"`
	Players          []PlayerView `json:"players"`
}

// PlayerView is one side as seen by the viewer. The other side's hand is
// hidden; only its size is shown.
type PlayerView struct {
	Side       rules.Side `json:"side"`
	Name       string     `json:"name"`
	HP         int        `json:"hp"`
	Energy     int        `json:"energy"`
	EnergyMax  int        `json:"energy_max"`
	DeckCount  int        `json:"deck_count"`
	HandCount  int        `json:"hand_count"`
	GraveCount int        `json:"grave_count"`
	Hand       []CardView `json:"hand,omitempty"`
	Field      []CardView `json:"field"`
	Grave      []CardView `json:"grave"`
}

// CardView is a card plus its cosmetic image.
type CardView struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Rarity      string      `json:"rarity"`
	Cost        int         `json:"cost"`
	ATK         int         `json:"atk"`
	DEF         int         `json:"def"`
	HP          int         `json:"hp"`
	MaxHP       int         `json:"max_hp"`
	Ability     AbilityKind `json:"ability"`
	AbilityText string      `json:"ability_text"`
	Exhausted   bool        `json:"exhausted"`
	Image       string      `json:"image,omitempty"`
}

// ImageLookup resolves a card's image. It must return a usable value (the
// fallback) for cards whose image is still pending.
type ImageLookup func(cardID string) string

// View projects the match for viewer. images may be nil.
func (m *Match) View(viewer rules.Side, images ImageLookup) MatchView {
	view := MatchView{
		ID:               m.id,
		Turn:             m.turns.TurnNumber(),
		Current:          m.turns.Current(),
		Phase:            m.turns.CurrentPhase(),
		SelectedAttacker: m.selected,
		Locked:           m.locked,
		Outcome:          m.outcome,
	}
	for _, p := range m.players {
		pv := PlayerView{
			Side:       p.Side,
			Name:       p.Name,
			HP:         p.HP,
			Energy:     p.Energy.Current(),
			EnergyMax:  p.Energy.Max(),
			DeckCount:  len(p.Deck),
			HandCount:  len(p.Hand),
			GraveCount: len(p.Grave),
			Field:      cardViews(p.Field, images),
			Grave:      cardViews(p.Grave, images),
		}
		if p.Side == viewer {
			pv.Hand = cardViews(p.Hand, images)
		}
		view.Players = append(view.Players, pv)
	}
	return view
}

func cardViews(cards []*Card, images ImageLookup) []CardView {
	views := make([]CardView, 0, len(cards))
	for _, c := range cards {
		cv := CardView{
			ID:          c.ID,
			Name:        c.Name,
			Rarity:      c.Rarity,
			Cost:        c.Cost,
			ATK:         c.ATK,
			DEF:         c.DEF,
			HP:          c.HP,
			MaxHP:       c.MaxHP,
			Ability:     c.Ability,
			AbilityText: c.Ability.Text(),
			Exhausted:   c.Exhausted,
		}
		if images != nil {
			cv.Image = images(c.ID)
		}
		views = append(views, cv)
	}
	return views
}

// AllCardIDs returns the id of every card in the match, human cards first.
func (m *Match) AllCardIDs() []string {
	var ids []string
	for _, p := range m.players {
		for _, zone := range [][]*Card{p.Deck, p.Hand, p.Field, p.Grave} {
			for _, c := range zone {
				ids = append(ids, c.ID)
			}
		}
	}
	return ids
}
