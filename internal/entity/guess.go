package entity

// GuessResult - the backend's verdict on one submitted guess.
type GuessResult struct {
	Correct          bool   `json:"correct"`
	City             string `json:"city"`
	Country          string `json:"country"`
	FunFact          string `json:"fun_fact"`
	Trivia           string `json:"trivia,omitempty"`
	NewScore         *int   `json:"new_score,omitempty"`
	NewTotalAttempts *int   `json:"total_attempts,omitempty"`
}

// HasTotals - reports whether the backend sent both updated totals.
func (that *GuessResult) HasTotals() bool {
	return that.NewScore != nil && that.NewTotalAttempts != nil
}

func (that *GuessResult) Totals() (int, int) {
	if !that.HasTotals() {
		return 0, 0
	}

	return *that.NewScore, *that.NewTotalAttempts
}
