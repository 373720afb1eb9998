package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"optitech/internal/domain/profile"
	"optitech/internal/domain/rules"
	"optitech/internal/domain/svc"
)

type profileFile struct {
	Services []profileEntry `json:"services" yaml:"services"`
}

type profileEntry struct {
	Name                   string `json:"name" yaml:"name"`
	Description            string `json:"description" yaml:"description"`
	RecommendedStartupType string `json:"recommended_startup_type" yaml:"recommended_startup_type"`
	RiskLevel              string `json:"risk_level" yaml:"risk_level"`
	Level                  string `json:"level" yaml:"level"`
}

// ActiveProfile returns the built-in table when path is empty and the file's
// content otherwise.
func ActiveProfile(path string) profile.Profile {
	if strings.TrimSpace(path) == "" {
		return rules.DefaultServices()
	}
	return LoadProfile(path)
}

// LoadProfile never fails: an unreadable or malformed file yields an empty
// profile, and invalid entries are dropped. Both are logged.
func LoadProfile(path string) profile.Profile {
	p, err := ReadProfile(path)
	if err != nil {
		logger.Errorf("cannot load optimization profile: %v", err)
		return profile.Profile{}
	}
	clean, problems := profile.Sanitize(p)
	for _, e := range problems {
		logger.Warningf("profile %s: dropping %v", path, e)
	}
	return clean
}

// ReadProfile decodes a JSON or YAML profile chosen by file extension.
func ReadProfile(path string) (profile.Profile, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.NotFoundf("profile %s", path)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "read profile %s", path)
	}

	var f profileFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &f)
	default:
		err = json.Unmarshal(b, &f)
	}
	if err != nil {
		return nil, errors.NotValidf("profile %s: %v", path, err)
	}

	out := make(profile.Profile, 0, len(f.Services))
	for _, s := range f.Services {
		risk := s.RiskLevel
		if risk == "" {
			risk = s.Level
		}
		mode := svc.Mode(strings.TrimSpace(s.RecommendedStartupType))
		if mode == "" {
			mode = svc.ModeDisabled
		}
		out = append(out, profile.Entry{
			ServiceName:            s.Name,
			RecommendedStartupType: mode,
			RiskLevel:              risk,
			Description:            s.Description,
		})
	}
	return out, nil
}
