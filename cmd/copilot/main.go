package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/workopilot/copilot/pkg/api"
	"github.com/workopilot/copilot/pkg/config"
)

var (
	flagConfig   string
	flagBaseURL  string
	flagUserID   string
	flagLocal    bool
	flagTheme    string
	flagLogLevel string

	settings *config.Settings
	configV  *viper.Viper
)

var rootCmd = &cobra.Command{
	Use:   "copilot",
	Short: "Terminal client for the stock analytics copilot",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(flagLogLevel); err != nil {
			return err
		}

		var err error
		settings, configV, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagBaseURL != "" {
			settings.BaseURL = flagBaseURL
		}
		if flagUserID != "" {
			settings.UserID = flagUserID
		}
		if flagLocal {
			settings.Local = true
		}
		if flagTheme != "" {
			settings.Theme = flagTheme
		}
		return nil
	},
}

func setupLogging(level string) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}).Level(parsed)
	return nil
}

// newAPIClient builds the backend client; it fails when no user is
// configured since every endpoint is user-scoped.
func newAPIClient() (*api.Client, error) {
	if settings.UserID == "" {
		return nil, errors.New("no user id configured, set user_id in the config or pass --user-id")
	}
	return api.NewClient(settings.BaseURL, settings.UserID), nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "backend base URL")
	rootCmd.PersistentFlags().StringVar(&flagUserID, "user-id", "", "user identifier for backend requests")
	rootCmd.PersistentFlags().BoolVar(&flagLocal, "local", false, "run without a backend, simulating replies")
	rootCmd.PersistentFlags().StringVar(&flagTheme, "theme", "", "color theme (light, dark, system)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(newChatCommand())
	rootCmd.AddCommand(newAssetsCommand())
	rootCmd.AddCommand(newIngestCommand())
	rootCmd.AddCommand(newExportCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
