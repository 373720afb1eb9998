package svc

import "strings"

type State string

const (
	StateRunning  State = "RUNNING"
	StateStopped  State = "STOPPED"
	StateUnknown  State = "UNKNOWN"
	StateNotFound State = "NOT_FOUND"
)

type StartupType string

const (
	StartupAuto     StartupType = "AUTO_START"
	StartupDemand   StartupType = "DEMAND_START"
	StartupDisabled StartupType = "DISABLED"
	StartupUnknown  StartupType = "UNKNOWN"
	StartupNotFound StartupType = "NOT_FOUND"
)

// Status is a point-in-time observation of one service. It is recomputed on
// every query and never cached.
type Status struct {
	State       State       `json:"state"`
	StartupType StartupType `json:"startup_type"`
}

var NotFound = Status{State: StateNotFound, StartupType: StartupNotFound}

func (s Status) NotFound() bool {
	return s.State == StateNotFound || s.StartupType == StartupNotFound
}

func (s Status) String() string {
	return string(s.State) + "/" + string(s.StartupType)
}

// Mode is the friendly startup type used by profiles and the ledger restore path.
type Mode string

const (
	ModeAutomatic Mode = "automatic"
	ModeManual    Mode = "manual"
	ModeDisabled  Mode = "disabled"
)

// Native returns the token sc.exe expects after "start=".
func (m Mode) Native() string {
	switch m {
	case ModeAutomatic:
		return "auto"
	case ModeManual:
		return "demand"
	case ModeDisabled:
		return "disabled"
	}
	return ""
}

func (m Mode) Valid() bool { return m.Native() != "" }

// ParseMode accepts friendly names, sc.exe tokens and query keywords in any case.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "automatic", "auto", "auto_start":
		return ModeAutomatic, true
	case "manual", "demand", "demand_start":
		return ModeManual, true
	case "disabled", "disable":
		return ModeDisabled, true
	}
	return "", false
}

// Mode maps a classified startup type to its friendly name. UNKNOWN and
// NOT_FOUND have no mode.
func (t StartupType) Mode() (Mode, bool) {
	switch t {
	case StartupAuto:
		return ModeAutomatic, true
	case StartupDemand:
		return ModeManual, true
	case StartupDisabled:
		return ModeDisabled, true
	}
	return ParseMode(string(t))
}

// Matches compares a startup type with a wanted type case-insensitively,
// treating AUTO_START and automatic as the same value.
func (t StartupType) Matches(want string) bool {
	have, ok := t.Mode()
	if !ok {
		return false
	}
	w, ok := ParseMode(want)
	if !ok {
		return strings.EqualFold(string(t), strings.TrimSpace(want))
	}
	return have == w
}
