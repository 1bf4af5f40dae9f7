// Package constants defines the constants used across the toolkit.
// It also provides utility functions to resolve the default key and output paths.
package constants

import (
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// CmdName is the name of the command line tool.
	CmdName = "mpath"

	// Version is the version of the toolkit.
	Version = "Dev"

	// DefaultBaseURL is the default m-Path API base URL.
	DefaultBaseURL = "https://m-path.io/API2"

	// DashboardBaseURL is the alternative base URL used by dashboard tenants.
	DashboardBaseURL = "https://dashboard.m-path.io/API2"

	// DefaultLogLevel is the default log level selected without any verbosity flags.
	DefaultLogLevel = slog.LevelWarn

	// PrivateKeyFileName is the default base name of the RSA private key.
	PrivateKeyFileName = ".mpath_private_key.pem"

	// PublicKeyFileName is the default base name of the RSA public key.
	PublicKeyFileName = ".mpath_public_key.pem"

	// DefaultTokenTTLMinutes is the default JWT lifetime in minutes.
	DefaultTokenTTLMinutes = 5

	// DefaultRetries is the default total number of request attempts.
	DefaultRetries = 3

	// DefaultTimezone is the timezone flattened timestamps are converted to.
	DefaultTimezone = "America/New_York"

	// DefaultChangedAfterUTC is the default changedAfterUTC filter for client fetches.
	DefaultChangedAfterUTC = "2024-01-01 00:00:00"

	// TimeFormat is the platform's wall-clock time format.
	TimeFormat = "2006-01-02 15:04:05"

	// DateFormat is the date-only form accepted for changedAfterUTC.
	DateFormat = "2006-01-02"

	// StampFormat is the UTC timestamp embedded in dump and CSV filenames.
	StampFormat = "20060102T150405Z"

	// DumpExt is the extension of raw payload dumps.
	DumpExt = ".json"
)

// Environment variable names kept compatible with the original tooling.
const (
	EnvUserCode     = "MPATH_USERCODE"
	EnvConnectionID = "MPATH_CONNECTION_ID"
	EnvPrivateKey   = "MPATH_PRIVKEY"
	EnvBaseURL      = "MPATH_BASE_URL"
)

// DefaultPrivateKeyPath returns the conventional private key location in the
// user's home directory, or just the base name if the home cannot be resolved.
func DefaultPrivateKeyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return PrivateKeyFileName
	}
	return filepath.Join(home, PrivateKeyFileName)
}

// DefaultOutputDir is the default directory raw payloads and CSVs are written to.
func DefaultOutputDir() string {
	return "mpath_raw"
}
