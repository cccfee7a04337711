package common

import (
	"errors"
	"fmt"
)

var ErrConfirmationRequired = errors.New("confirmation required")

func RequireConfirmationOrDryRun(opts GlobalOptions, action string) error {
	if opts.DryRun || opts.Yes {
		return nil
	}
	return fmt.Errorf("%w for %s: use --yes or --dry-run", ErrConfirmationRequired, action)
}
