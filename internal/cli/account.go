package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/globetrotter/internal/apperror"
	"github.com/rocketscienceinc/globetrotter/internal/usecase"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Log in, creating the account if it does not exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			_, isNew, err := app.Store.Login(cmd.Context(), args[0])
			if err != nil {
				return errors.New(apperror.UserMessage(err))
			}

			NewPresenter(cmd.OutOrStdout()).Welcome(app.Store.Session(), isNew)

			return nil
		},
	}
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored username",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			if err = app.Store.Logout(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")

			return nil
		},
	}
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile [username]",
		Short: "Show a player's score and solved destinations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()

			var username string
			if len(args) == 1 {
				username = args[0]
			} else {
				if err = app.Start(ctx, ""); err != nil {
					return errors.New(apperror.UserMessage(err))
				}

				username = app.Store.Session().Username
				if username == "" {
					return apperror.ErrNotLoggedIn
				}
			}

			profile, err := app.Client.FetchUserProfile(ctx, username)
			if errors.Is(err, apperror.ErrNotFound) {
				return fmt.Errorf("player %s does not exist", username)
			}

			if err != nil {
				return errors.New(apperror.UserMessage(err))
			}

			NewPresenter(cmd.OutOrStdout()).Profile(profile)

			return nil
		},
	}
}

func newChallengeCmd(opts *rootOptions) *cobra.Command {
	var copyLink, whatsApp, regenerate bool

	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "Create a challenge link and share image for your score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()

			if err = app.Start(ctx, ""); err != nil {
				return errors.New(apperror.UserMessage(err))
			}

			if regenerate {
				if _, err = app.Sharer.Regenerate(ctx); err != nil {
					return err
				}
			}

			challenge, imagePath, err := app.Sharer.Open(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			NewPresenter(out).Challenge(challenge, imagePath)

			if copyLink {
				if _, err = app.Sharer.Share(ctx, usecase.ChannelClipboard); err != nil {
					fmt.Fprintf(out, "Could not copy the link: %s\n", err)
				} else {
					fmt.Fprintln(out, "Link copied to the clipboard.")
				}
			}

			if whatsApp {
				link, err := app.Sharer.Share(ctx, usecase.ChannelWhatsApp)
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "Open to share on WhatsApp: %s\n", link)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&copyLink, "copy", false, "copy the challenge link to the clipboard")
	cmd.Flags().BoolVar(&whatsApp, "whatsapp", false, "print a WhatsApp share link")
	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "render the share image again and report render failures")

	return cmd
}
