package safety

import (
	"errors"
	"fmt"
	"strings"
)

const maxServiceNameLen = 256

// blockedRunes would let a name escape its argument position or address a path.
const blockedRunes = `\/"'<>|&;^%!` + "`" + "*?=(),"

// ValidateServiceName checks that name is usable as a single service key on
// the sc.exe command line.
func ValidateServiceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("NAME_INVALID: empty service name")
	}
	if name != strings.TrimSpace(name) {
		return errors.New("NAME_INVALID: surrounding whitespace")
	}
	if len(name) > maxServiceNameLen {
		return fmt.Errorf("NAME_INVALID: longer than %d bytes", maxServiceNameLen)
	}
	for _, r := range name {
		if r < 32 || r == 127 {
			return errors.New("NAME_INVALID: control character")
		}
	}
	if i := strings.IndexAny(name, blockedRunes); i >= 0 {
		return fmt.Errorf("NAME_INVALID: metacharacter %q", name[i])
	}
	if strings.HasPrefix(name, "-") {
		return errors.New("NAME_INVALID: leading dash")
	}
	return nil
}

// ValidateProfileNames rejects duplicate keys and invalid names in one
// profile, returning one error per offending entry.
func ValidateProfileNames(names []string) []error {
	var errs []error
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if err := ValidateServiceName(n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n, err))
			continue
		}
		key := strings.ToLower(n)
		if _, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("NAME_DUPLICATE: %s", n))
			continue
		}
		seen[key] = struct{}{}
	}
	return errs
}
