package entity

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

const OptionsPerRound = 4

var ErrInvalidRound = errors.New("invalid destination round")

// DestinationRound - one set of clues with its candidate answers. Immutable once fetched.
type DestinationRound struct {
	Clues       []string `json:"clues"`
	Options     []string `json:"options"`
	CorrectCity string   `json:"correct_city"`
}

// Validate - exactly four options and exactly one of them is the correct city.
func (that *DestinationRound) Validate() error {
	if len(that.Options) != OptionsPerRound {
		return fmt.Errorf("%w: expected %d options, got %d", ErrInvalidRound, OptionsPerRound, len(that.Options))
	}

	matches := lo.Count(that.Options, that.CorrectCity)
	if matches != 1 {
		return fmt.Errorf("%w: %d options match %q", ErrInvalidRound, matches, that.CorrectCity)
	}

	return nil
}

func (that *DestinationRound) HasOption(option string) bool {
	return lo.Contains(that.Options, option)
}

// OptionAt - resolves a 1-based option number typed by the player.
func (that *DestinationRound) OptionAt(n int) (string, bool) {
	if n < 1 || n > len(that.Options) {
		return "", false
	}

	return that.Options[n-1], true
}
