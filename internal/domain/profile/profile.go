package profile

import (
	"fmt"
	"strings"

	"optitech/internal/domain/safety"
	"optitech/internal/domain/svc"
)

// Entry is one desired startup-type change. RiskLevel and Description are
// informational and never change behavior.
type Entry struct {
	ServiceName            string   `json:"name" yaml:"name"`
	RecommendedStartupType svc.Mode `json:"recommended_startup_type" yaml:"recommended_startup_type"`
	RiskLevel              string   `json:"risk_level" yaml:"risk_level"`
	Description            string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Profile is an ordered list of entries. Order is kept as loaded.
type Profile []Entry

func (p Profile) Names() []string {
	out := make([]string, 0, len(p))
	for _, e := range p {
		out = append(out, e.ServiceName)
	}
	return out
}

// Sanitize drops entries with invalid or duplicate names and unsupported
// startup types, keeping the first occurrence of each name. The dropped
// entries are reported so the caller can log them.
func Sanitize(p Profile) (Profile, []error) {
	var problems []error
	out := make(Profile, 0, len(p))
	seen := make(map[string]struct{}, len(p))
	for i, e := range p {
		if err := safety.ValidateServiceName(e.ServiceName); err != nil {
			problems = append(problems, fmt.Errorf("entry %d (%q): %w", i, e.ServiceName, err))
			continue
		}
		key := strings.ToLower(e.ServiceName)
		if _, dup := seen[key]; dup {
			problems = append(problems, fmt.Errorf("entry %d: NAME_DUPLICATE: %s", i, e.ServiceName))
			continue
		}
		mode, ok := svc.ParseMode(string(e.RecommendedStartupType))
		if !ok {
			problems = append(problems, fmt.Errorf("entry %d (%s): unsupported startup type %q", i, e.ServiceName, e.RecommendedStartupType))
			continue
		}
		seen[key] = struct{}{}
		e.RecommendedStartupType = mode
		out = append(out, e)
	}
	return out, problems
}
