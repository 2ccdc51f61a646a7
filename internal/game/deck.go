package game

// BuildDeck creates size cards and shuffles them. The top of the deck is the
// end of the slice.
func BuildDeck(size int, factory *Factory, rnd RandomSource) []*Card {
	deck := make([]*Card, 0, size)
	for i := 0; i < size; i++ {
		deck = append(deck, factory.CreateCard())
	}
	Shuffle(deck, rnd)
	return deck
}

// Shuffle permutes items in place with Fisher-Yates.
func Shuffle[T any](items []T, rnd RandomSource) {
	for i := len(items) - 1; i > 0; i-- {
		j := rnd.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// DrawKind discriminates the three draw outcomes.
type DrawKind int

const (
	// DrawnToHand moved the top card into hand.
	DrawnToHand DrawKind = iota
	// DrawBurned moved the top card straight to the grave because the hand was full.
	DrawBurned
	// DrawFatigue hit an empty deck and cost hit points instead.
	DrawFatigue
)

func (k DrawKind) String() string {
	switch k {
	case DrawnToHand:
		return "drawn"
	case DrawBurned:
		return "burned"
	case DrawFatigue:
		return "fatigue"
	default:
		return "unknown"
	}
}

// DrawOutcome reports what a single draw did.
type DrawOutcome struct {
	Kind   DrawKind
	Card   *Card
	Damage int
}

// Draw takes the top card of the deck. Exactly one outcome applies: fatigue
// on an empty deck, a burn on a full hand, otherwise a normal draw.
func (p *Player) Draw(maxHand, fatigueDamage int) DrawOutcome {
	if len(p.Deck) == 0 {
		p.HP -= fatigueDamage
		return DrawOutcome{Kind: DrawFatigue, Damage: fatigueDamage}
	}

	top := p.Deck[len(p.Deck)-1]
	p.Deck = p.Deck[:len(p.Deck)-1]

	if len(p.Hand) >= maxHand {
		p.Grave = append(p.Grave, top)
		return DrawOutcome{Kind: DrawBurned, Card: top}
	}

	p.Hand = append(p.Hand, top)
	return DrawOutcome{Kind: DrawnToHand, Card: top}
}
