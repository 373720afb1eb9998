package rules

import (
	"strings"

	"optitech/internal/domain/model"
	"optitech/internal/domain/profile"
	"optitech/internal/domain/svc"
)

func entry(name string, mode svc.Mode, risk model.RiskLevel, desc string) profile.Entry {
	return profile.Entry{ServiceName: name, RecommendedStartupType: mode, RiskLevel: string(risk), Description: desc}
}

// DefaultServices is used when no profile file is configured.
func DefaultServices() profile.Profile {
	return profile.Profile{
		entry("DiagTrack", svc.ModeDisabled, model.RiskLow, "Connected User Experiences and Telemetry"),
		entry("dmwappushservice", svc.ModeDisabled, model.RiskLow, "Device Management WAP Push message routing"),
		entry("Fax", svc.ModeDisabled, model.RiskLow, "Fax"),
		entry("RetailDemo", svc.ModeDisabled, model.RiskLow, "Retail Demo Service"),
		entry("MapsBroker", svc.ModeManual, model.RiskLow, "Downloaded Maps Manager"),
		entry("lfsvc", svc.ModeManual, model.RiskLow, "Geolocation Service"),
		entry("WerSvc", svc.ModeManual, model.RiskLow, "Windows Error Reporting Service"),
		entry("XblAuthManager", svc.ModeManual, model.RiskMedium, "Xbox Live Auth Manager"),
		entry("XblGameSave", svc.ModeManual, model.RiskMedium, "Xbox Live Game Save"),
		entry("XboxNetApiSvc", svc.ModeManual, model.RiskMedium, "Xbox Live Networking Service"),
		entry("RemoteRegistry", svc.ModeDisabled, model.RiskMedium, "Remote Registry"),
		entry("SysMain", svc.ModeManual, model.RiskMedium, "SysMain (Superfetch)"),
		entry("WSearch", svc.ModeManual, model.RiskHigh, "Windows Search indexing"),
		entry("Spooler", svc.ModeManual, model.RiskHigh, "Print Spooler; breaks printing when disabled"),
	}
}

// ByRisk keeps the entries whose risk is at or below max.
func ByRisk(p profile.Profile, max model.RiskLevel) profile.Profile {
	limit := riskRank(string(max))
	out := make(profile.Profile, 0, len(p))
	for _, e := range p {
		if riskRank(e.RiskLevel) <= limit {
			out = append(out, e)
		}
	}
	return out
}

// ParseRisk maps a risk label, including the safe/moderate/aggressive
// aliases, to its canonical level. Matching ignores case and surrounding space.
func ParseRisk(level string) (model.RiskLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case string(model.RiskLow), "safe":
		return model.RiskLow, true
	case string(model.RiskMedium), "moderate":
		return model.RiskMedium, true
	case string(model.RiskHigh), "aggressive":
		return model.RiskHigh, true
	}
	return "", false
}

// Unknown risk labels rank highest so a filter never lets them through by accident.
func riskRank(level string) int {
	risk, ok := ParseRisk(level)
	if !ok {
		return 3
	}
	switch risk {
	case model.RiskLow:
		return 0
	case model.RiskMedium:
		return 1
	}
	return 2
}
