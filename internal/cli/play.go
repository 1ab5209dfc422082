package cli

import (
	"bufio"
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	application "github.com/rocketscienceinc/globetrotter/internal"
	"github.com/rocketscienceinc/globetrotter/internal/apperror"
	"github.com/rocketscienceinc/globetrotter/internal/usecase"
)

var errInputClosed = errors.New("input closed")

func newPlayCmd(opts *rootOptions) *cobra.Command {
	var invite string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play rounds until you quit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			game := &game{
				app:       app,
				presenter: NewPresenter(cmd.OutOrStdout()),
				input:     bufio.NewScanner(cmd.InOrStdin()),
			}

			return game.run(cmd.Context(), usecase.ParseInviter(invite))
		},
	}

	cmd.Flags().StringVar(&invite, "invite", "", "inviter username or invite link")

	return cmd
}

type game struct {
	app       *application.App
	presenter *Presenter
	input     *bufio.Scanner
}

func (that *game) run(ctx context.Context, inviter string) error {
	if err := that.app.Start(ctx, inviter); err != nil {
		that.presenter.Error(err)
	}

	that.presenter.Inviter(that.app.Store.Inviter())

	if err := that.ensureLoggedIn(ctx); err != nil {
		if errors.Is(err, errInputClosed) {
			return nil
		}

		return err
	}

	that.presenter.Help()
	that.nextRound(ctx)

	for {
		line, err := that.readLine()
		if err != nil {
			that.goodbye()
			return nil
		}

		switch command := strings.ToLower(line); command {
		case "":
			continue
		case "q", "quit":
			that.goodbye()
			return nil
		case "n", "next":
			that.nextRound(ctx)
		case "c", "challenge":
			that.challenge(ctx)
		case "r", "regenerate":
			that.regenerate(ctx)
		case "h", "help", "?":
			that.presenter.Help()
		default:
			n, err := strconv.Atoi(command)
			if err != nil {
				that.presenter.Prompt("Unknown command.\n")
				that.presenter.Help()
				continue
			}

			that.guess(ctx, n)
		}
	}
}

func (that *game) ensureLoggedIn(ctx context.Context) error {
	session := that.app.Store.Session()
	if session.IsLoggedIn() {
		that.presenter.Welcome(session, false)
		return nil
	}

	for {
		that.presenter.Prompt("Enter your username to start: ")

		username, err := that.readLine()
		if err != nil {
			return err
		}

		_, isNew, err := that.app.Store.Login(ctx, username)
		if err != nil {
			that.presenter.Error(err)
			continue
		}

		that.presenter.Welcome(that.app.Store.Session(), isNew)

		return nil
	}
}

func (that *game) nextRound(ctx context.Context) {
	if err := that.app.Rounds.NextRound(ctx); err != nil {
		that.presenter.Error(err)
		that.presenter.Prompt("Press n to try again.\n")

		return
	}

	that.presenter.Round(that.app.Rounds.Round(), that.app.Rounds, that.app.Rounds.UIState())
	that.presenter.Prompt("Your guess: ")
}

func (that *game) guess(ctx context.Context, n int) {
	round := that.app.Rounds.Round()
	if round == nil {
		that.presenter.Prompt("Press n for a destination.\n")
		return
	}

	if that.app.Rounds.UIState().ResultVisible {
		that.presenter.Prompt("You already answered. Press n for the next destination.\n")
		return
	}

	option, ok := round.OptionAt(n)
	if !ok {
		that.presenter.Prompt("Pick an option between 1 and 4.\n")
		return
	}

	outcome, err := that.app.Rounds.Guess(ctx, option)
	if errors.Is(err, apperror.ErrGuessNotAccepted) {
		that.presenter.Prompt("You already answered. Press n for the next destination.\n")
		return
	}

	if err != nil {
		that.presenter.Error(err)
		that.presenter.Prompt("Your guess: ")

		return
	}

	if signal, active := that.app.Rounds.ActiveSignal(); active {
		that.presenter.Signal(signal)
	}

	that.presenter.Round(that.app.Rounds.Round(), that.app.Rounds, that.app.Rounds.UIState())
	that.presenter.Outcome(outcome, that.app.Store.Session())
	that.presenter.Help()
}

func (that *game) challenge(ctx context.Context) {
	challenge, imagePath, err := that.app.Sharer.Open(ctx)
	if err != nil {
		that.presenter.Error(err)
		return
	}

	that.presenter.Challenge(challenge, imagePath)
	that.presenter.Prompt("Send it on WhatsApp: " + challenge.WhatsAppURL() + "\n")
}

// regenerate - renders the share image again from the current score.
func (that *game) regenerate(ctx context.Context) {
	path, err := that.app.Sharer.Regenerate(ctx)
	if err != nil {
		that.presenter.Error(err)
		return
	}

	that.presenter.ShareImage(path)
}

func (that *game) goodbye() {
	that.presenter.Goodbye(that.app.Store.Session(), that.app.Store.Inviter(), that.app.Rounds.ChallengeBeaten())
}

func (that *game) readLine() (string, error) {
	if !that.input.Scan() {
		if err := that.input.Err(); err != nil {
			return "", err
		}

		return "", errInputClosed
	}

	return strings.TrimSpace(that.input.Text()), nil
}
