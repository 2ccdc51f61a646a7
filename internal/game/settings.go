package game

import "fmt"

// Settings holds the numeric constants of a match. They are configuration,
// not protocol: every value can be overridden per match.
type Settings struct {
	StartHP         int  `mapstructure:"start_hp" json:"start_hp"`
	StartHand       int  `mapstructure:"start_hand" json:"start_hand"`
	MaxField        int  `mapstructure:"max_field" json:"max_field"`
	MaxHand         int  `mapstructure:"max_hand" json:"max_hand"`
	DeckSize        int  `mapstructure:"deck_size" json:"deck_size"`
	EnergyCap       int  `mapstructure:"energy_cap" json:"energy_cap"`
	FaceDivisor     int  `mapstructure:"face_divisor" json:"face_divisor"`
	CreatureDivisor int  `mapstructure:"creature_divisor" json:"creature_divisor"`
	FatigueDamage   int  `mapstructure:"fatigue_damage" json:"fatigue_damage"`
	OpeningDraw     bool `mapstructure:"opening_draw" json:"opening_draw"`
}

// DefaultSettings returns the stock match constants.
func DefaultSettings() Settings {
	return Settings{
		StartHP:         20,
		StartHand:       4,
		MaxField:        4,
		MaxHand:         8,
		DeckSize:        14,
		EnergyCap:       10,
		FaceDivisor:     700,
		CreatureDivisor: 600,
		FatigueDamage:   1,
	}
}

// Validate rejects settings no match can be played with.
func (s Settings) Validate() error {
	switch {
	case s.StartHP <= 0:
		return fmt.Errorf("start_hp must be positive, got %d", s.StartHP)
	case s.StartHand < 0:
		return fmt.Errorf("start_hand must not be negative, got %d", s.StartHand)
	case s.MaxField <= 0:
		return fmt.Errorf("max_field must be positive, got %d", s.MaxField)
	case s.MaxHand <= 0:
		return fmt.Errorf("max_hand must be positive, got %d", s.MaxHand)
	case s.StartHand > s.MaxHand:
		return fmt.Errorf("start_hand %d exceeds max_hand %d", s.StartHand, s.MaxHand)
	case s.DeckSize < s.StartHand:
		return fmt.Errorf("deck_size %d is smaller than start_hand %d", s.DeckSize, s.StartHand)
	case s.EnergyCap < 0:
		return fmt.Errorf("energy_cap must not be negative, got %d", s.EnergyCap)
	case s.FaceDivisor <= 0 || s.CreatureDivisor <= 0:
		return fmt.Errorf("damage divisors must be positive, got face=%d creature=%d", s.FaceDivisor, s.CreatureDivisor)
	case s.FatigueDamage < 0:
		return fmt.Errorf("fatigue_damage must not be negative, got %d", s.FatigueDamage)
	}
	return nil
}
