package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/mpath-tools/mpathkit/internal/auth"
	"github.com/mpath-tools/mpathkit/internal/constants"
	"github.com/mpath-tools/mpathkit/internal/mpath"
	"github.com/mpath-tools/mpathkit/internal/schedule"
)

// Hint maps well-known failures to a colored troubleshooting line for the
// terminal. It returns an empty string for errors without a known remedy.
func Hint(err error) string {
	switch {
	case errors.Is(err, auth.ErrKeyConfig):
		return color.YellowString("Hint: no usable private key. Run %q and register the public key on your m-Path dashboard.",
			constants.CmdName+" generate-keys")
	case errors.Is(err, auth.ErrSigning):
		return color.YellowString("Hint: the private key could not sign a token. Regenerate the key pair with %q.",
			constants.CmdName+" generate-keys")
	case errors.Is(err, mpath.ErrAuth):
		return color.RedString("Hint: the platform rejected your credentials. Check the user code and that the public key is registered for it.")
	case errors.Is(err, mpath.ErrTransient):
		return color.YellowString(fmt.Sprintf("Hint: the platform kept failing transiently. Try again later or raise --retries above %d.", constants.DefaultRetries))
	case errors.Is(err, schedule.ErrValidation):
		return color.YellowString("Hint: the schedule did not validate. Check the time ranges and labels, or pass --allow-overlap for overlapping windows.")
	default:
		return ""
	}
}
