package optimize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optitech/internal/domain/ledger"
	"optitech/internal/domain/model"
	"optitech/internal/domain/profile"
	"optitech/internal/domain/svc"
	"optitech/internal/infra/servicectl"
)

// fakeServices keeps service state in memory and applies startup changes to it.
type fakeServices struct {
	statuses map[string]svc.Status
	errs     map[string]error
	failSet  map[string]bool
	panicOn  string
	sets     []string
	queries  []string
	census   servicectl.Census
}

func newFakeServices(statuses map[string]svc.Status) *fakeServices {
	return &fakeServices{statuses: statuses, errs: map[string]error{}, failSet: map[string]bool{}}
}

func (f *fakeServices) Status(_ context.Context, name string) (svc.Status, error) {
	f.queries = append(f.queries, name)
	if name == f.panicOn {
		panic("boom")
	}
	if err := f.errs[name]; err != nil {
		return svc.Status{}, err
	}
	st, ok := f.statuses[name]
	if !ok {
		return svc.NotFound, nil
	}
	return st, nil
}

func (f *fakeServices) SetStartupType(_ context.Context, name string, mode svc.Mode) bool {
	f.sets = append(f.sets, name+"="+string(mode))
	if f.failSet[name] {
		return false
	}
	st := f.statuses[name]
	st.StartupType = startupFor(mode)
	f.statuses[name] = st
	return true
}

func (f *fakeServices) Census(context.Context) (servicectl.Census, error) {
	return f.census, nil
}

func startupFor(m svc.Mode) svc.StartupType {
	switch m {
	case svc.ModeAutomatic:
		return svc.StartupAuto
	case svc.ModeManual:
		return svc.StartupDemand
	}
	return svc.StartupDisabled
}

func running(t svc.StartupType) svc.Status {
	return svc.Status{State: svc.StateRunning, StartupType: t}
}

func TestApplyFaxScenario(t *testing.T) {
	ctl := newFakeServices(map[string]svc.Status{"Fax": running(svc.StartupAuto)})

	applied, l := NewSession(ctl).Apply(context.Background(), profile.Profile{
		{ServiceName: "Fax", RecommendedStartupType: svc.ModeDisabled},
	})

	assert.Equal(t, 1, applied)
	assert.Equal(t, []string{"Fax=disabled"}, ctl.sets)
	assert.Equal(t, []ledger.Entry{{ServiceName: "Fax", OriginalStartupType: svc.StartupAuto}}, l.Entries())
}

func TestApplySpoolerAlreadyCompliant(t *testing.T) {
	ctl := newFakeServices(map[string]svc.Status{"Spooler": running(svc.StartupAuto)})

	applied, l := NewSession(ctl).Apply(context.Background(), profile.Profile{
		{ServiceName: "Spooler", RecommendedStartupType: "AUTOMATIC"},
	})

	assert.Equal(t, 0, applied)
	assert.Empty(t, ctl.sets)
	assert.Equal(t, 0, l.Len())
}

func TestApplyIsIdempotent(t *testing.T) {
	ctl := newFakeServices(map[string]svc.Status{
		"Fax":     running(svc.StartupAuto),
		"WSearch": running(svc.StartupAuto),
		"SysMain": running(svc.StartupDemand),
	})
	p := profile.Profile{
		{ServiceName: "Fax", RecommendedStartupType: svc.ModeDisabled},
		{ServiceName: "WSearch", RecommendedStartupType: svc.ModeManual},
		{ServiceName: "SysMain", RecommendedStartupType: svc.ModeManual},
		{ServiceName: "Missing", RecommendedStartupType: svc.ModeDisabled},
	}
	s := NewSession(ctl)

	first, l1 := s.Apply(context.Background(), p)
	require.Equal(t, 2, first)
	require.Equal(t, 2, l1.Len())

	second, l2 := s.Apply(context.Background(), p)
	assert.Equal(t, 0, second)
	assert.Equal(t, 0, l2.Len())
	assert.Len(t, ctl.sets, 2)
}

func TestApplySkipsMissingService(t *testing.T) {
	ctl := newFakeServices(map[string]svc.Status{})
	var outcomes []Outcome
	s := NewSession(ctl)
	s.OnOutcome = func(o Outcome) { outcomes = append(outcomes, o) }

	applied, l := s.Apply(context.Background(), profile.Profile{{ServiceName: "Ghost", RecommendedStartupType: svc.ModeDisabled}})

	assert.Equal(t, 0, applied)
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, ctl.sets)
	require.Len(t, outcomes, 1)
	assert.Equal(t, model.ResultNotFound, outcomes[0].Result)
}

func TestApplyContinuesPastQueryFailures(t *testing.T) {
	ctl := newFakeServices(map[string]svc.Status{
		"Denied":  running(svc.StartupAuto),
		"Garbled": {State: svc.StateUnknown, StartupType: svc.StartupUnknown},
		"Fax":     running(svc.StartupAuto),
	})
	ctl.errs["Denied"] = servicectl.ErrCommandFailed
	ctl.errs["NoTool"] = servicectl.ErrCommandUnavailable
	ctl.panicOn = "Crashy"

	var outcomes []Outcome
	s := NewSession(ctl)
	s.OnOutcome = func(o Outcome) { outcomes = append(outcomes, o) }

	applied, l := s.Apply(context.Background(), profile.Profile{
		{ServiceName: "NoTool", RecommendedStartupType: svc.ModeDisabled},
		{ServiceName: "Denied", RecommendedStartupType: svc.ModeDisabled},
		{ServiceName: "Garbled", RecommendedStartupType: svc.ModeDisabled},
		{ServiceName: "Crashy", RecommendedStartupType: svc.ModeDisabled},
		{ServiceName: "Fax", RecommendedStartupType: svc.ModeDisabled},
	})

	assert.Equal(t, 1, applied)
	assert.Equal(t, []string{"Fax=disabled"}, ctl.sets)
	assert.Equal(t, []ledger.Entry{{ServiceName: "Fax", OriginalStartupType: svc.StartupAuto}}, l.Entries())
	require.Len(t, outcomes, 5)
	for _, o := range outcomes[:4] {
		assert.Equal(t, model.ResultError, o.Result, o.Service)
		assert.Error(t, o.Err, o.Service)
	}
}

func TestApplyKeepsLedgerEntryWhenSetFails(t *testing.T) {
	ctl := newFakeServices(map[string]svc.Status{
		"Fax":     running(svc.StartupAuto),
		"WSearch": running(svc.StartupAuto),
	})
	ctl.failSet["Fax"] = true

	applied, l := NewSession(ctl).Apply(context.Background(), profile.Profile{
		{ServiceName: "Fax", RecommendedStartupType: svc.ModeDisabled},
		{ServiceName: "WSearch", RecommendedStartupType: svc.ModeManual},
	})

	assert.Equal(t, 1, applied)
	assert.Equal(t, []ledger.Entry{
		{ServiceName: "Fax", OriginalStartupType: svc.StartupAuto},
		{ServiceName: "WSearch", OriginalStartupType: svc.StartupAuto},
	}, l.Entries())
}

func TestApplyRejectsUnsupportedTarget(t *testing.T) {
	ctl := newFakeServices(map[string]svc.Status{"Fax": running(svc.StartupAuto)})

	applied, l := NewSession(ctl).Apply(context.Background(), profile.Profile{{ServiceName: "Fax", RecommendedStartupType: "boot"}})

	assert.Equal(t, 0, applied)
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, ctl.queries)
}

func TestApplyDryRunNeverMutates(t *testing.T) {
	ctl := newFakeServices(map[string]svc.Status{"Fax": running(svc.StartupAuto)})
	var outcomes []Outcome
	s := NewSession(ctl)
	s.DryRun = true
	s.OnOutcome = func(o Outcome) { outcomes = append(outcomes, o) }

	applied, l := s.Apply(context.Background(), profile.Profile{{ServiceName: "Fax", RecommendedStartupType: svc.ModeDisabled}})

	assert.Equal(t, 0, applied)
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, ctl.sets)
	require.Len(t, outcomes, 1)
	assert.Equal(t, model.ResultPlanned, outcomes[0].Result)
}

func TestApplyEmptyProfileIsNothingToDo(t *testing.T) {
	ctl := newFakeServices(map[string]svc.Status{})
	applied, l := NewSession(ctl).Apply(context.Background(), profile.Profile{})
	assert.Equal(t, 0, applied)
	assert.Equal(t, 0, l.Len())
}

func TestLedgerRoundTrip(t *testing.T) {
	ctl := newFakeServices(map[string]svc.Status{"X": running(svc.StartupAuto)})
	s := NewSession(ctl)

	applied, l := s.Apply(context.Background(), profile.Profile{{ServiceName: "X", RecommendedStartupType: svc.ModeDisabled}})
	require.Equal(t, 1, applied)
	entries := l.Entries()
	require.Len(t, entries, 1)
	mode, ok := entries[0].OriginalStartupType.Mode()
	require.True(t, ok)
	assert.Equal(t, svc.ModeAutomatic, mode)
	assert.Equal(t, svc.StartupDisabled, ctl.statuses["X"].StartupType)

	restored := s.Restore(context.Background(), l)

	assert.Equal(t, 1, restored)
	assert.Equal(t, svc.StartupAuto, ctl.statuses["X"].StartupType)
	assert.Equal(t, 0, l.Len())
}

func TestRestoreSkipsNoOp(t *testing.T) {
	ctl := newFakeServices(map[string]svc.Status{"Fax": running(svc.StartupAuto)})
	l := ledger.New(ledger.Entry{ServiceName: "Fax", OriginalStartupType: svc.StartupAuto})

	restored := NewSession(ctl).Restore(context.Background(), l)

	assert.Equal(t, 0, restored)
	assert.Empty(t, ctl.sets)
	assert.Equal(t, 0, l.Len())
}

func TestRestoreAcceptsFriendlyRecordedType(t *testing.T) {
	ctl := newFakeServices(map[string]svc.Status{"Fax": running(svc.StartupDisabled)})
	l := ledger.New(ledger.Entry{ServiceName: "Fax", OriginalStartupType: "automatic"})

	assert.Equal(t, 1, NewSession(ctl).Restore(context.Background(), l))
	assert.Equal(t, []string{"Fax=automatic"}, ctl.sets)
}

func TestRestoreIsBestEffortAndAlwaysClears(t *testing.T) {
	ctl := newFakeServices(map[string]svc.Status{
		"Denied":  running(svc.StartupDisabled),
		"Refused": running(svc.StartupDisabled),
		"WSearch": running(svc.StartupDemand),
	})
	ctl.errs["Denied"] = servicectl.ErrCommandFailed
	ctl.failSet["Refused"] = true
	l := ledger.New(
		ledger.Entry{ServiceName: "Gone", OriginalStartupType: svc.StartupAuto},
		ledger.Entry{ServiceName: "Denied", OriginalStartupType: svc.StartupAuto},
		ledger.Entry{ServiceName: "Refused", OriginalStartupType: svc.StartupAuto},
		ledger.Entry{ServiceName: "Bogus", OriginalStartupType: svc.StartupUnknown},
		ledger.Entry{ServiceName: "WSearch", OriginalStartupType: svc.StartupAuto},
	)

	restored := NewSession(ctl).Restore(context.Background(), l)

	assert.Equal(t, 1, restored)
	assert.Equal(t, []string{"Refused=automatic", "WSearch=automatic"}, ctl.sets)
	assert.Equal(t, []string{"Gone", "Denied", "Refused", "WSearch"}, ctl.queries)
	assert.Equal(t, 0, l.Len())
}

func TestRestoreDryRunKeepsLedger(t *testing.T) {
	ctl := newFakeServices(map[string]svc.Status{"Fax": running(svc.StartupDisabled)})
	l := ledger.New(ledger.Entry{ServiceName: "Fax", OriginalStartupType: svc.StartupAuto})
	s := NewSession(ctl)
	s.DryRun = true

	assert.Equal(t, 0, s.Restore(context.Background(), l))
	assert.Empty(t, ctl.sets)
	assert.Equal(t, 1, l.Len())
}
