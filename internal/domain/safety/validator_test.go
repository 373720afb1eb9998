package safety

import (
	"strings"
	"testing"
)

func TestValidateServiceNameAcceptsRealNames(t *testing.T) {
	for _, name := range []string{"Fax", "Spooler", "DiagTrack", "WSearch", "XblAuthManager", "MapsBroker", "wuauserv", "SysMain", "RemoteRegistry", "lfsvc", "Net Driver HPZ12", "dmwappushservice", "MSSQL$SQLEXPRESS", "SQLAgent$SQLEXPRESS"} {
		if err := ValidateServiceName(name); err != nil {
			t.Fatalf("expected %q to be valid, got %v", name, err)
		}
	}
}

func TestValidateServiceNameRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code string
	}{
		{name: "empty", in: "", code: "empty"},
		{name: "blank", in: "   ", code: "empty"},
		{name: "padded", in: " Fax", code: "whitespace"},
		{name: "path", in: `C:\Windows\fax`, code: "metacharacter"},
		{name: "slash", in: "a/b", code: "metacharacter"},
		{name: "chained command", in: "Fax & shutdown", code: "metacharacter"},
		{name: "pipe", in: "Fax|more", code: "metacharacter"},
		{name: "quote", in: `Fax"`, code: "metacharacter"},
		{name: "sc option", in: "start=", code: "metacharacter"},
		{name: "env expansion", in: "%COMSPEC%", code: "metacharacter"},
		{name: "newline", in: "Fax\nSpooler", code: "control"},
		{name: "null byte", in: "Fax\x00", code: "control"},
		{name: "flag", in: "-h", code: "dash"},
		{name: "too long", in: strings.Repeat("a", maxServiceNameLen+1), code: "longer"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateServiceName(tc.in)
			if err == nil {
				t.Fatalf("expected %q to be rejected", tc.in)
			}
			if !strings.HasPrefix(err.Error(), "NAME_INVALID") || !strings.Contains(err.Error(), tc.code) {
				t.Fatalf("unexpected error for %q: %v", tc.in, err)
			}
		})
	}
}

func TestValidateProfileNamesReportsDuplicatesAndInvalid(t *testing.T) {
	errs := ValidateProfileNames([]string{"Fax", "fax", "Spooler", "bad|name"})
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "NAME_DUPLICATE") {
		t.Fatalf("expected duplicate error first, got %v", errs[0])
	}
	if !strings.Contains(errs[1].Error(), "NAME_INVALID") {
		t.Fatalf("expected invalid error second, got %v", errs[1])
	}
}
