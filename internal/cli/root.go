package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	application "github.com/rocketscienceinc/globetrotter/internal"
	"github.com/rocketscienceinc/globetrotter/internal/config"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

const defaultConfigFile = "config.yml"

type rootOptions struct {
	configPath string
	logLevel   string

	conf   *config.Config
	logger *slog.Logger
}

// NewRootCmd - the globetrotter command tree. The game talks to out, logs go to stderr.
func NewRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "globetrotter",
		Short:         "Guess the destination from cryptic clues",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd)
		},
	}

	cmd.SetIn(in)
	cmd.SetOut(out)

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath(), "path to the config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newPlayCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newProfileCmd(opts),
		newChallengeCmd(opts),
		newVersionCmd(),
	)

	return cmd
}

func (that *rootOptions) init(cmd *cobra.Command) error {
	conf, err := config.Load(that.configPath)
	if err != nil {
		return err
	}

	if that.logLevel != "" {
		conf.LogLevel = that.logLevel
	}

	that.conf = conf
	that.logger = initLogger(cmd.ErrOrStderr(), conf)

	return nil
}

// newApp - builds the application for one command run. The caller closes it.
func (that *rootOptions) newApp(cmd *cobra.Command) (*application.App, error) {
	app, err := application.New(cmd.Context(), that.logger, that.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to start: %w", err)
	}

	return app, nil
}

func defaultConfigPath() string {
	baseDir, err := os.Getwd()
	if err != nil {
		return defaultConfigFile
	}

	return filepath.Join(baseDir, defaultConfigFile)
}

func initLogger(w io.Writer, conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	if conf.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}

	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "globetrotter", Version)
		},
	}
}
