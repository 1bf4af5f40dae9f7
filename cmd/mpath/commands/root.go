// Package commands contains the commands of the mpath command line tool.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mpath-tools/mpathkit/internal/auth"
	"github.com/mpath-tools/mpathkit/internal/cli"
	"github.com/mpath-tools/mpathkit/internal/constants"
	"github.com/mpath-tools/mpathkit/internal/dump"
	"github.com/mpath-tools/mpathkit/internal/mpath"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// App represents the application.
type App struct {
	cmd   *cobra.Command
	viper *viper.Viper

	config appConfig
}

type appConfig struct {
	Verbosity    int
	UserCode     string `mapstructure:"user-code"`
	ConnectionID int    `mapstructure:"connection-id"`
	PrivateKey   string `mapstructure:"private-key"`
	BaseURL      string `mapstructure:"base-url"`
	OutputDir    string `mapstructure:"output-dir"`
	Retries      int    `mapstructure:"retries"`
	Timezone     string `mapstructure:"timezone"`

	Clients      clientsConfig
	Data         dataConfig
	Interactions interactionsConfig
	Schedule     scheduleConfig
	Push         pushConfig
	Upload       uploadConfig
	Keys         keysConfig
}

// New registers commands and returns a new App.
func New() (*App, error) {
	a := App{}
	a.cmd = &cobra.Command{
		Use:   constants.CmdName + " [COMMAND]",
		Short: "Client toolkit for the m-Path EMA platform",
		Long: "Fetches m-Path study data and schedules over the authenticated API, " +
			"flattens the payloads into analysis-ready CSV tables and uploads new beep schedules.",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Command parsing has been successful. Returned errors are usage ones.
			a.cmd.SilenceUsage = true

			cli.SetVerbosity(a.config.Verbosity)
			if err := cli.InitViperConfig(constants.CmdName, a.cmd, a.viper); err != nil {
				return err
			}
			if err := a.viper.Unmarshal(&a.config); err != nil {
				return fmt.Errorf("unable to decode configuration into struct: %w", err)
			}
			cli.SetVerbosity(a.config.Verbosity)

			return nil
		},
	}
	a.viper = viper.New()

	a.cmd.CompletionOptions.HiddenDefaultCmd = true

	installRootCmd(&a)
	cli.InstallConfigFlag(a.cmd)

	if err := a.viper.BindPFlags(a.cmd.PersistentFlags()); err != nil {
		return nil, err
	}

	installClientsCmd(&a)
	installDataCmd(&a)
	installInteractionsCmd(&a)
	installScheduleCmd(&a)
	installPushScheduleCmd(&a)
	installSetScheduleCmd(&a)
	installSetInteractionsCmd(&a)
	installGenerateKeysCmd(&a)
	installVersionCmd(&a)

	return &a, nil
}

func installRootCmd(app *App) {
	cmd := app.cmd

	cmd.PersistentFlags().CountVarP(&app.config.Verbosity, "verbose", "v", "issue INFO (-v), DEBUG (-vv) output")
	cmd.PersistentFlags().StringVarP(&app.config.UserCode, "user-code", "u", "", "practitioner user code on the m-Path platform")
	cmd.PersistentFlags().IntVarP(&app.config.ConnectionID, "connection-id", "c", 0, "participant connection ID")
	cmd.PersistentFlags().StringVarP(&app.config.PrivateKey, "private-key", "k", constants.DefaultPrivateKeyPath(), "path to the registered RSA private key (PEM)")
	cmd.PersistentFlags().StringVar(&app.config.BaseURL, "base-url", constants.DefaultBaseURL,
		fmt.Sprintf("m-Path API base URL (dashboard tenants use %s)", constants.DashboardBaseURL))
	cmd.PersistentFlags().StringVarP(&app.config.OutputDir, "output-dir", "o", constants.DefaultOutputDir(), "directory raw payloads and CSV tables are written to, empty disables writing")
	cmd.PersistentFlags().IntVar(&app.config.Retries, "retries", constants.DefaultRetries, "total number of attempts for requests failing transiently")
	cmd.PersistentFlags().StringVar(&app.config.Timezone, "timezone", constants.DefaultTimezone, "IANA timezone flattened timestamps are converted to")
}

// Run executes the command and its arguments.
func (a App) Run() error {
	return a.cmd.Execute()
}

// UsageError returns if the error is a command parsing error.
func (a App) UsageError() bool {
	return !a.cmd.SilenceUsage
}

// usageErrorf flags the error as a usage one so that help is displayed.
func (a *App) usageErrorf(format string, args ...any) error {
	a.cmd.SilenceUsage = false
	return fmt.Errorf(format, args...)
}

// client assembles the API client from the resolved configuration.
func (a *App) client() (*mpath.Client, error) {
	if a.config.Retries < 1 {
		return nil, a.usageErrorf("retries must be at least 1, got %d", a.config.Retries)
	}

	issuer, err := auth.New(a.config.PrivateKey)
	if err != nil {
		return nil, err
	}

	return mpath.New(issuer, a.config.UserCode,
		mpath.WithBaseURL(a.config.BaseURL),
		mpath.WithPolicy(mpath.Policy{
			MaxAttempts: a.config.Retries,
			Backoff:     mpath.ExponentialBackoff(3*time.Second, time.Minute),
		}),
		mpath.WithDumps(dump.New(a.config.OutputDir)),
	)
}

// connectionID returns the configured connection ID, or a usage error when unset.
func (a *App) connectionID() (int, error) {
	if a.config.ConnectionID <= 0 {
		return 0, a.usageErrorf("a connection ID is required (--connection-id or %s)", constants.EnvConnectionID)
	}
	return a.config.ConnectionID, nil
}

// location resolves the configured timezone.
func (a *App) location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.config.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q, expected an IANA name such as Europe/Brussels: %v", a.config.Timezone, err)
	}
	return loc, nil
}

func (a *App) context() context.Context {
	return a.cmd.Context()
}

func logFetched(endpoint string, rows int, dumpPath string) {
	slog.Info("fetched resource", "endpoint", endpoint, "rows", rows, "dump", dumpPath)
}
