package common

import (
	"fmt"

	"github.com/juju/errors"

	"optitech/internal/domain/safety"
)

func RequireConfirmationOrDryRun(opts GlobalOptions, action string) error {
	if opts.DryRun || opts.Yes {
		return nil
	}
	return fmt.Errorf("confirmation required for %s: use --yes or --dry-run", action)
}

// ValidateServiceArgs checks service names given on the command line before
// any of them reaches sc.exe.
func ValidateServiceArgs(names []string) error {
	if len(names) == 0 {
		return errors.NotValidf("empty service list")
	}
	if problems := safety.ValidateProfileNames(names); len(problems) > 0 {
		return errors.NotValidf("service names: %v", problems[0])
	}
	return nil
}
