// Package cli provides utility functions for command line interface applications.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mpath-tools/mpathkit/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// legacyEnv maps configuration keys to the environment variable names the
// original tooling used, kept working as fallback defaults.
var legacyEnv = map[string]string{
	"user-code":     constants.EnvUserCode,
	"connection-id": constants.EnvConnectionID,
	"private-key":   constants.EnvPrivateKey,
	"base-url":      constants.EnvBaseURL,
}

// InitViperConfig initializes the Viper configuration for a command.
func InitViperConfig(cmdName string, cmd *cobra.Command, vip *viper.Viper) error {
	if v, err := cmd.Flags().GetString("config"); err == nil && v != "" {
		vip.SetConfigFile(v)
	} else {
		vip.SetConfigName(cmdName)
		vip.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			vip.AddConfigPath(filepath.Join(home, ".config", cmdName))
		}
		if binPath, err := os.Executable(); err != nil {
			slog.Warn("Failed to get current executable path, not adding it as a config dir", "error", err)
		} else {
			vip.AddConfigPath(filepath.Dir(binPath))
		}
	}

	if err := vip.ReadInConfig(); err != nil {
		var e viper.ConfigFileNotFoundError
		if errors.As(err, &e) {
			slog.Info("No configuration file, using defaults, env variables and flags", "error", e)
		} else {
			return fmt.Errorf("invalid configuration file: %w", err)
		}
	} else {
		slog.Info("Using configuration file", "file", vip.ConfigFileUsed())
	}

	// Handle environment.
	vip.SetEnvPrefix(strings.ToUpper(cmdName))
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vip.AutomaticEnv()

	// The original scripts read MPATH_USERCODE and friends; keep them as
	// explicit fallbacks next to the canonical MPATH_USER_CODE style.
	for key, env := range legacyEnv {
		if err := vip.BindEnv(key, strings.ToUpper(cmdName)+"_"+strings.ReplaceAll(strings.ToUpper(key), "-", "_"), env); err != nil {
			return fmt.Errorf("could not bind environment variable %s: %w", env, err)
		}
	}

	return nil
}

// InstallConfigFlag adds a config flag to the command.
func InstallConfigFlag(cmd *cobra.Command) *string {
	return cmd.PersistentFlags().String("config", "", "use a specific configuration file")
}
