package optimize

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"optitech/internal/app/common"
	"optitech/internal/domain/ledger"
	"optitech/internal/domain/model"
	"optitech/internal/domain/profile"
	"optitech/internal/domain/svc"
	"optitech/internal/infra/ledgerfile"
	"optitech/internal/infra/logging"
)

type captureLogger struct {
	entries []model.OperationLogEntry
	err     error
}

func (c *captureLogger) Log(_ context.Context, e model.OperationLogEntry) error {
	c.entries = append(c.entries, e)
	return c.err
}

func testProfile() profile.Profile {
	return profile.Profile{
		{ServiceName: "Fax", RecommendedStartupType: svc.ModeDisabled, RiskLevel: "low", Description: "Fax"},
		{ServiceName: "Spooler", RecommendedStartupType: svc.ModeAutomatic, RiskLevel: "high"},
		{ServiceName: "Ghost", RecommendedStartupType: svc.ModeDisabled, RiskLevel: "low"},
	}
}

func testServices() *fakeServices {
	return newFakeServices(map[string]svc.Status{
		"Fax":     running(svc.StartupAuto),
		"Spooler": running(svc.StartupAuto),
	})
}

func TestRunApplyRequiresConfirmation(t *testing.T) {
	ctl := testServices()
	app := &common.AppContext{Profile: testProfile(), Services: ctl, Logger: logging.NewNoopLogger()}
	_, err := NewService().Run(context.Background(), app, Options{Apply: true})
	if err == nil {
		t.Fatal("expected confirmation error")
	}
	if len(ctl.queries) != 0 {
		t.Fatalf("expected no queries before confirmation, got %v", ctl.queries)
	}
}

func TestRunPlanQueriesWithoutMutating(t *testing.T) {
	ctl := testServices()
	logger := &captureLogger{}
	app := &common.AppContext{Profile: testProfile(), Services: ctl, Logger: logger}

	res, err := NewService().Run(context.Background(), app, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Command != "services optimize" {
		t.Fatalf("unexpected command %s", res.Command)
	}
	if len(ctl.sets) != 0 {
		t.Fatalf("plan must not mutate, got %v", ctl.sets)
	}
	if len(logger.entries) != 0 {
		t.Fatalf("plan must not write the operation log")
	}
	want := []string{model.ResultPlanned, model.ResultUnchanged, model.ResultNotFound}
	for i, it := range res.Items {
		if it.Result != want[i] {
			t.Fatalf("item %s: expected %s, got %s", it.Service, want[i], it.Result)
		}
	}
	if res.Items[0].Current != "AUTO_START" || res.Items[0].Target != "disabled" || res.Items[0].Description != "Fax" {
		t.Fatalf("unexpected plan item: %+v", res.Items[0])
	}
}

func TestRunApplyChangesAndLogs(t *testing.T) {
	ctl := testServices()
	logger := &captureLogger{}
	app := &common.AppContext{Options: common.GlobalOptions{Yes: true}, Profile: testProfile(), Services: ctl, Logger: logger}
	mem := ledger.New()

	res, err := NewService().Run(context.Background(), app, Options{Apply: true, Ledger: mem})
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.Changed != 1 || res.Summary.Unchanged != 1 || res.Summary.NotFound != 1 || res.Summary.LedgerSize != 1 {
		t.Fatalf("unexpected summary: %+v", res.Summary)
	}
	if len(ctl.sets) != 1 || ctl.sets[0] != "Fax=disabled" {
		t.Fatalf("unexpected mutations: %v", ctl.sets)
	}
	if mem.Len() != 1 || mem.Entries()[0].OriginalStartupType != svc.StartupAuto {
		t.Fatalf("unexpected in-memory ledger: %+v", mem.Entries())
	}
	if len(logger.entries) != 3 {
		t.Fatalf("expected one log entry per service, got %d", len(logger.entries))
	}
	if logger.entries[0].Action != common.ActionSetStartupType || logger.entries[0].Result != model.ResultOptimized {
		t.Fatalf("unexpected first log entry: %+v", logger.entries[0])
	}
	if logger.entries[2].Action != common.ActionSkip {
		t.Fatalf("expected skip for missing service, got %+v", logger.entries[2])
	}
}

func TestRunApplyDryRun(t *testing.T) {
	ctl := testServices()
	app := &common.AppContext{Options: common.GlobalOptions{DryRun: true}, Profile: testProfile(), Services: ctl, Logger: logging.NewNoopLogger()}
	path := filepath.Join(t.TempDir(), "ledger.json")

	res, err := NewService().Run(context.Background(), app, Options{Apply: true, LedgerOut: path})
	if err != nil {
		t.Fatal(err)
	}
	if !res.DryRun || len(ctl.sets) != 0 || res.Summary.LedgerSize != 0 {
		t.Fatalf("dry run must not mutate: %+v sets=%v", res.Summary, ctl.sets)
	}
	if _, err := ledgerfile.Load(path); err == nil {
		t.Fatalf("dry run must not write a ledger snapshot")
	}
}

func TestRunApplyMergesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	existing := ledger.New(
		ledger.Entry{ServiceName: "Fax", OriginalStartupType: svc.StartupDemand},
		ledger.Entry{ServiceName: "WSearch", OriginalStartupType: svc.StartupAuto},
	)
	if err := ledgerfile.Save(path, existing); err != nil {
		t.Fatal(err)
	}

	ctl := testServices()
	ctl.statuses["SysMain"] = running(svc.StartupAuto)
	app := &common.AppContext{
		Options:  common.GlobalOptions{Yes: true},
		Profile:  append(testProfile(), profile.Entry{ServiceName: "SysMain", RecommendedStartupType: svc.ModeManual}),
		Services: ctl,
		Logger:   logging.NewNoopLogger(),
	}

	if _, err := NewService().Run(context.Background(), app, Options{Apply: true, LedgerOut: path}); err != nil {
		t.Fatal(err)
	}

	got, err := ledgerfile.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []ledger.Entry{
		{ServiceName: "Fax", OriginalStartupType: svc.StartupDemand},
		{ServiceName: "WSearch", OriginalStartupType: svc.StartupAuto},
		{ServiceName: "SysMain", OriginalStartupType: svc.StartupAuto},
	}
	entries := got.Entries()
	if len(entries) != len(want) {
		t.Fatalf("unexpected snapshot: %+v", entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("entry %d: got %+v want %+v", i, entries[i], want[i])
		}
	}
}

func TestRunApplyReportsSnapshotFailure(t *testing.T) {
	savedSave := saveLedger
	defer func() { saveLedger = savedSave }()
	saveLedger = func(string, *ledger.Ledger) error { return errors.New("disk full") }

	ctl := testServices()
	app := &common.AppContext{Options: common.GlobalOptions{Yes: true}, Profile: testProfile(), Services: ctl, Logger: logging.NewNoopLogger()}

	res, err := NewService().Run(context.Background(), app, Options{Apply: true, LedgerOut: filepath.Join(t.TempDir(), "l.json")})
	if err == nil {
		t.Fatal("expected snapshot error")
	}
	if res.Summary.Changed != 1 {
		t.Fatalf("expected result to be reported alongside the error, got %+v", res.Summary)
	}
}

func TestRunCountsOperationLogFailures(t *testing.T) {
	ctl := testServices()
	logger := &captureLogger{err: errors.New("read-only")}
	app := &common.AppContext{Options: common.GlobalOptions{Yes: true}, Profile: testProfile(), Services: ctl, Logger: logger}

	res, err := NewService().Run(context.Background(), app, Options{Apply: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.Errors != 3 || res.Summary.Changed != 1 {
		t.Fatalf("oplog failures must count as errors without aborting: %+v", res.Summary)
	}
}

func TestRunMaxRisk(t *testing.T) {
	ctl := testServices()
	app := &common.AppContext{Profile: testProfile(), Services: ctl, Logger: logging.NewNoopLogger()}

	res, err := NewService().Run(context.Background(), app, Options{MaxRisk: model.RiskLow})
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.ItemsTotal != 2 {
		t.Fatalf("expected high-risk entry filtered out, got %d items", res.Summary.ItemsTotal)
	}
	for _, it := range res.Items {
		if it.Service == "Spooler" {
			t.Fatalf("high-risk entry must be filtered")
		}
	}
}
