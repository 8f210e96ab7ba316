// internal/game/rules.go
package game

import "fmt"

// Seat limits for a room.
const (
	MinPlayersLimit = 2
	MaxPlayersLimit = 6
)

// HouseRules defines the per-game knobs. Zero values are replaced by DefaultHouseRules.
type HouseRules struct {
	MaxPlayers   int   `json:"maxPlayers"`   // seats in the room, 2..6
	MinPlayers   int   `json:"minPlayers"`   // players needed to start and to keep an active game alive
	HandLimit    int   `json:"handLimit"`    // max cards in hand at end of turn
	StartingHand int   `json:"startingHand"` // cards dealt per player after the starting Gub
	Seed         int64 `json:"seed"`         // deck RNG seed; 0 seeds from the clock
}

// DefaultHouseRules returns the standard Gubs rules.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		MaxPlayers:   MaxPlayersLimit,
		MinPlayers:   MinPlayersLimit,
		HandLimit:    8,
		StartingHand: 3,
	}
}

// Validate checks the rules are internally consistent.
func (rules HouseRules) Validate() error {
	if rules.MaxPlayers < MinPlayersLimit || rules.MaxPlayers > MaxPlayersLimit {
		return fmt.Errorf("%w: got %d", ErrInvalidPlayerCount, rules.MaxPlayers)
	}
	if rules.MinPlayers < MinPlayersLimit || rules.MinPlayers > rules.MaxPlayers {
		return fmt.Errorf("%w: min players %d", ErrInvalidPlayerCount, rules.MinPlayers)
	}
	if rules.HandLimit < 1 {
		return fmt.Errorf("handLimit must be positive")
	}
	if rules.StartingHand < 0 {
		return fmt.Errorf("startingHand must be non-negative")
	}
	return nil
}

// Update will update the house rules with the new rules provided.
// If a rule is not set or defined, it will be ignored, and the old value will persist.
func (rules *HouseRules) Update(newRules map[string]interface{}) error {
	assignInt := func(field *int, key string, minVal int) error {
		val, exists := newRules[key]
		if !exists || val == nil {
			return nil
		}
		// JSON numbers decode as float64
		switch v := val.(type) {
		case float64:
			*field = int(v)
		case int:
			*field = v
		default:
			return fmt.Errorf("invalid type for %s", key)
		}
		if *field < minVal {
			return fmt.Errorf("%s must be at least %d", key, minVal)
		}
		return nil
	}

	if err := assignInt(&rules.MaxPlayers, "maxPlayers", MinPlayersLimit); err != nil {
		return err
	}
	if err := assignInt(&rules.MinPlayers, "minPlayers", MinPlayersLimit); err != nil {
		return err
	}
	if err := assignInt(&rules.HandLimit, "handLimit", 1); err != nil {
		return err
	}
	if err := assignInt(&rules.StartingHand, "startingHand", 0); err != nil {
		return err
	}
	if val, exists := newRules["seed"]; exists && val != nil {
		switch v := val.(type) {
		case float64:
			rules.Seed = int64(v)
		case int:
			rules.Seed = int64(v)
		case int64:
			rules.Seed = v
		default:
			return fmt.Errorf("invalid type for seed")
		}
	}

	return rules.Validate()
}

// ParseRules converts a map of rules to a HouseRules struct. It will ensure the types are valid.
func ParseRules(rules map[string]interface{}, current HouseRules) (HouseRules, error) {
	houseRules := current
	err := houseRules.Update(rules)
	return houseRules, err
}
