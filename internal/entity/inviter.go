package entity

import "github.com/samber/lo"

// InviterContext - the score of the player who sent the challenge link.
type InviterContext struct {
	Username           string
	Score              int
	TotalAttempts      int
	DestinationsSolved []SolvedDestination
}

func NewInviterContext(username string, profile *Profile) *InviterContext {
	return &InviterContext{
		Username:           username,
		Score:              profile.Score,
		TotalAttempts:      profile.TotalAttempts,
		DestinationsSolved: profile.DestinationsSolved,
	}
}

// Highlights - first n solved cities, and whether there are more.
func (that *InviterContext) Highlights(n int) ([]string, bool) {
	cities := lo.Map(that.DestinationsSolved, func(d SolvedDestination, _ int) string {
		return d.City
	})

	if len(cities) <= n {
		return cities, false
	}

	return cities[:n], true
}
