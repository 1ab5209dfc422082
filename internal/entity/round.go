package entity

type RoundState string

const (
	RoundIdle          RoundState = "idle"
	RoundLoading       RoundState = "loading"
	RoundAwaitingGuess RoundState = "awaiting_guess"
	RoundSubmitting    RoundState = "submitting"
	RoundResolved      RoundState = "resolved"
)

// RoundUIState - transient per-round view state, reset whenever a round starts.
type RoundUIState struct {
	SelectedOption string
	IsSubmitting   bool
	ResultVisible  bool
}

type Highlight string

const (
	HighlightNeutral Highlight = "neutral"
	HighlightCorrect Highlight = "correct"
	HighlightWrong   Highlight = "wrong"
)

type SignalKind string

const (
	SignalCelebrate SignalKind = "celebrate"
	SignalSadFace   SignalKind = "sad_face"
)
