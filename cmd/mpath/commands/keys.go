package commands

import (
	"fmt"
	"os"

	"github.com/mpath-tools/mpathkit/internal/auth"
	"github.com/spf13/cobra"
)

type keysConfig struct {
	Dir string
}

func installGenerateKeysCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "generate-keys",
		Short: "Generate the RSA key pair used for API authentication",
		Long: "Generates a 2048 bit RSA key pair. The private key stays on this machine; " +
			"the public key must be registered on the m-Path dashboard.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.generateKeysRun()
		},
	}

	cmd.Flags().StringVar(&app.config.Keys.Dir, "dir", "", "directory the key pair is written to (default: home directory)")

	app.cmd.AddCommand(cmd)
}

func (a *App) generateKeysRun() error {
	dir := a.config.Keys.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not resolve the home directory: %v", err)
		}
		dir = home
	}

	kp, err := auth.GenerateKeys(dir)
	if err != nil {
		return err
	}

	a.report("private key", kp.PrivatePath)
	a.report("public key", kp.PublicPath)
	fmt.Fprintln(a.cmd.OutOrStdout(), "Register the public key on your m-Path dashboard to enable API access.")
	return nil
}
