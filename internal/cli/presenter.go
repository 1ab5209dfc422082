package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rocketscienceinc/globetrotter/internal/apperror"
	"github.com/rocketscienceinc/globetrotter/internal/entity"
	"github.com/rocketscienceinc/globetrotter/internal/usecase"
)

const inviterHighlights = 3

type highlighter interface {
	OptionHighlight(option string) entity.Highlight
}

// Presenter - renders game state as plain terminal lines.
type Presenter struct {
	out io.Writer
}

func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

func (that *Presenter) printf(format string, args ...any) {
	fmt.Fprintf(that.out, format, args...)
}

func (that *Presenter) Welcome(session entity.PlayerSession, isNew bool) {
	if isNew {
		that.printf("Welcome to Globetrotter, %s! Your account has been created.\n", session.Username)
		return
	}

	that.printf("Welcome back, %s!\n", session.Username)
	that.Score(session)
}

func (that *Presenter) Score(session entity.PlayerSession) {
	accuracy := session.Accuracy()
	that.printf("Score: %d/%d (%d%% accuracy, %s)\n",
		session.Score, session.TotalAttempts, accuracy, entity.AccuracyGrade(accuracy))
}

func (that *Presenter) Inviter(inviter *entity.InviterContext) {
	if inviter == nil {
		return
	}

	that.printf("\n%s has challenged you!\n", inviter.Username)
	that.printf("Their score: %d/%d. Can you beat it?\n", inviter.Score, inviter.TotalAttempts)

	cities, more := inviter.Highlights(inviterHighlights)
	if len(cities) > 0 {
		line := strings.Join(cities, ", ")
		if more {
			line += " and more!"
		}

		that.printf("They have already found: %s\n", line)
	}

	that.printf("\n")
}

// Round - clues and numbered options. Once the result is visible, options carry their highlight marker.
func (that *Presenter) Round(round *entity.DestinationRound, marks highlighter, ui entity.RoundUIState) {
	if round == nil {
		return
	}

	that.printf("\nWhere am I?\n")

	for _, clue := range round.Clues {
		that.printf("  * %s\n", clue)
	}

	that.printf("\n")

	for i, option := range round.Options {
		mark := ""
		if ui.ResultVisible {
			mark = marker(marks.OptionHighlight(option))
		}

		that.printf("  %d) %s%s\n", i+1, option, mark)
	}
}

func marker(highlight entity.Highlight) string {
	switch highlight {
	case entity.HighlightCorrect:
		return "  [correct]"
	case entity.HighlightWrong:
		return "  [your guess]"
	default:
		return ""
	}
}

func (that *Presenter) Outcome(outcome *usecase.Outcome, session entity.PlayerSession) {
	result := outcome.Result
	if result.Correct {
		that.printf("Correct! It's %s, %s.\n", result.City, result.Country)
	} else {
		that.printf("Not quite. It was %s, %s.\n", result.City, result.Country)
	}

	if result.FunFact != "" {
		that.printf("Fun fact: %s\n", result.FunFact)
	}

	if result.Trivia != "" {
		that.printf("Trivia: %s\n", result.Trivia)
	}

	if outcome.ScoreRejected {
		that.printf("The server sent an inconsistent score, it was not applied.\n")
	}

	that.Score(session)

	if outcome.ChallengeBeaten && outcome.Inviter != nil {
		that.printf("You beat %s's score of %d! Challenge a friend next.\n",
			outcome.Inviter.Username, outcome.Inviter.Score)
	}
}

func (that *Presenter) Signal(signal usecase.Signal) {
	switch signal.Kind {
	case entity.SignalCelebrate:
		that.printf("\n*** 🎉 🎉 🎉 ***\n")
	case entity.SignalSadFace:
		that.printf("\n😢\n")
	}
}

func (that *Presenter) Challenge(challenge *usecase.Challenge, imagePath string) {
	that.printf("\nChallenge a friend!\n")
	that.printf("Your score: %s\n", challenge.Summary())
	that.printf("Link: %s\n", challenge.URL)

	if imagePath != "" {
		that.printf("Share image: %s\n", imagePath)
	} else {
		that.printf("Share image could not be generated.\n")
	}
}

func (that *Presenter) ShareImage(path string) {
	that.printf("Share image regenerated: %s\n", path)
}

// Goodbye - final score, and how it compares with the inviter's.
func (that *Presenter) Goodbye(session entity.PlayerSession, inviter *entity.InviterContext, beaten bool) {
	if session.IsLoggedIn() {
		that.printf("\nThanks for playing, %s!\n", session.Username)
		that.Score(session)
	}

	if inviter == nil {
		return
	}

	if beaten {
		that.printf("You beat %s's score this session.\n", inviter.Username)
	} else {
		that.printf("%s's score of %d is still standing.\n", inviter.Username, inviter.Score)
	}
}

func (that *Presenter) Profile(profile *entity.Profile) {
	accuracy := entity.Accuracy(profile.Score, profile.TotalAttempts)

	that.printf("%s\n", profile.Username)
	that.printf("Score: %d/%d (%d%% accuracy, %s)\n",
		profile.Score, profile.TotalAttempts, accuracy, entity.AccuracyGrade(accuracy))

	if len(profile.DestinationsSolved) == 0 {
		return
	}

	that.printf("Destinations solved:\n")

	for _, destination := range profile.DestinationsSolved {
		that.printf("  - %s, %s\n", destination.City, destination.Country)
	}
}

func (that *Presenter) Help() {
	that.printf("\n[1-4] guess  [n] next destination  [c] challenge a friend  [r] new share image  [q] quit\n")
}

func (that *Presenter) Prompt(text string) {
	that.printf("%s", text)
}

func (that *Presenter) Error(err error) {
	that.printf("! %s\n", apperror.UserMessage(err))
}
