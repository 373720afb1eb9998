package svc

import "strings"

// Query carries the raw output of the two service queries. ConfigMissing is
// set by the caller when the configuration query reported that the service
// does not exist; StateFailed when the runtime query exited non-zero.
type Query struct {
	Config        string
	ConfigMissing bool
	State         string
	StateFailed   bool
}

// Parse classifies raw query output. Unrecognized text degrades to UNKNOWN.
func Parse(q Query) Status {
	if q.ConfigMissing {
		return NotFound
	}

	st := Status{
		State:       StateUnknown,
		StartupType: ParseStartupType(q.Config),
	}
	switch {
	case !q.StateFailed:
		st.State = ParseState(q.State)
	case st.StartupType == StartupDisabled:
		// a disabled service cannot be running
		st.State = StateStopped
	}
	return st
}

func ParseStartupType(text string) StartupType {
	v, ok := classify(text, startupMarkers, startupKeywords)
	if !ok {
		return StartupUnknown
	}
	return StartupType(v)
}

func ParseState(text string) State {
	v, ok := classify(text, stateMarkers, stateKeywords)
	if !ok {
		return StateUnknown
	}
	return State(v)
}

// ScanStates classifies every state line in text, in order. It is used on
// enumeration output that lists many services.
func ScanStates(text string) []State {
	var out []State
	for _, line := range lines(text) {
		value, ok := markedValue(line, stateMarkers)
		if !ok {
			continue
		}
		if v, ok := match(value, stateKeywords); ok {
			out = append(out, State(v))
		} else {
			out = append(out, StateUnknown)
		}
	}
	return out
}

func classify(text string, markers []string, table []keyword) (string, bool) {
	for _, line := range lines(text) {
		value, ok := markedValue(line, markers)
		if !ok {
			continue
		}
		if v, ok := match(value, table); ok {
			return v, true
		}
	}
	return "", false
}

// markedValue returns the part of line after the key when the key holds one
// of the markers. Lines look like "        STATE              : 4  RUNNING".
func markedValue(line string, markers []string) (string, bool) {
	key, value, found := strings.Cut(line, ":")
	for _, m := range markers {
		if found {
			if strings.Contains(key, m) {
				return value, true
			}
			continue
		}
		if i := strings.Index(line, m); i >= 0 {
			return line[i+len(m):], true
		}
	}
	return "", false
}

func match(value string, table []keyword) (string, bool) {
	for _, kw := range table {
		if strings.Contains(value, kw.token) {
			return kw.value, true
		}
	}
	return "", false
}

func lines(text string) []string {
	raw := strings.Split(text, "\n")
	out := raw[:0]
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}
