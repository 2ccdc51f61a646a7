package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SerializationChecksum identifies a match state. Two matches rolled from
// the same seed and driven by the same commands have equal checksums.
type SerializationChecksum struct {
	Hash    string `json:"hash"`
	Version int    `json:"version"`
}

// ComputeChecksum hashes the canonical representation of the match.
func (m *Match) ComputeChecksum() (*SerializationChecksum, error) {
	hash := sha256.New()
	if _, err := hash.Write(m.buildDeterministicRepresentation()); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}
	return &SerializationChecksum{
		Hash:    hex.EncodeToString(hash.Sum(nil)),
		Version: 1,
	}, nil
}

// Checksum returns just the hash, or an empty string if hashing failed.
func (m *Match) Checksum() string {
	sum, err := m.ComputeChecksum()
	if err != nil {
		return ""
	}
	return sum.Hash
}

// VerifyChecksum reports whether the match still hashes to expected.
func (m *Match) VerifyChecksum(expected string) (bool, error) {
	computed, err := m.ComputeChecksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Hash == expected, nil
}

// buildDeterministicRepresentation renders everything that affects play.
// The match id is left out since it is not derived from the seed. Zone order
// is significant and kept as is.
func (m *Match) buildDeterministicRepresentation() []byte {
	var buf bytes.Buffer

	s := m.settings
	fmt.Fprintf(&buf, "SETTINGS:%d|%d|%d|%d|%d|%d|%d|%d|%d|%t\n",
		s.StartHP, s.StartHand, s.MaxField, s.MaxHand, s.DeckSize,
		s.EnergyCap, s.FaceDivisor, s.CreatureDivisor, s.FatigueDamage, s.OpeningDraw,
	)
	fmt.Fprintf(&buf, "MATCH:%s|%d|%s|%s|%s|%t|%s|%d\n",
		m.seed,
		m.turns.TurnNumber(),
		m.turns.Current(),
		m.turns.CurrentPhase(),
		m.selected,
		m.locked,
		m.outcome,
		len(m.log),
	)

	for _, p := range m.players {
		fmt.Fprintf(&buf, "PLAYER:%s|%d|%d|%d\n", p.Side, p.HP, p.Energy.Current(), p.Energy.Max())
		for _, zone := range []struct {
			name  string
			cards []*Card
		}{
			{"DECK", p.Deck},
			{"HAND", p.Hand},
			{"FIELD", p.Field},
			{"GRAVE", p.Grave},
		} {
			fmt.Fprintf(&buf, "  %s:%d\n", zone.name, len(zone.cards))
			for _, c := range zone.cards {
				fmt.Fprintf(&buf, "    CARD:%s|%s|%s|%d|%d|%d|%s|%d/%d|%t\n",
					c.ID, c.Name, c.Rarity, c.Cost, c.ATK, c.DEF, c.Ability, c.HP, c.MaxHP, c.Exhausted,
				)
			}
		}
	}

	return buf.Bytes()
}
