package optimize

import (
	"context"
	"fmt"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"optitech/internal/domain/ledger"
	"optitech/internal/domain/model"
	"optitech/internal/domain/profile"
	"optitech/internal/domain/svc"
	"optitech/internal/infra/servicectl"
)

var logger = loggo.GetLogger("optitech.optimize")

const errUnknownStartupType = errors.ConstError("startup type not recognized")

// Outcome reports what a session did with one profile or ledger entry.
type Outcome struct {
	Service string
	Status  svc.Status
	Target  svc.Mode
	Result  string
	Err     error
	// Attempted is set once the controller was asked to change the service.
	Attempted bool
}

// Session applies profiles and restores ledgers one service at a time. A
// failure on one service is reported through OnOutcome and never stops the
// batch.
type Session struct {
	ctl servicectl.Controller

	// DryRun queries every service but never changes one and records no
	// ledger entries.
	DryRun    bool
	OnOutcome func(Outcome)
}

func NewSession(ctl servicectl.Controller) *Session {
	return &Session{ctl: ctl}
}

// Apply brings every service in p to its recommended startup type. Services
// that are missing, unreadable or already compliant are left alone. The ledger
// entry for a change is appended before the change is attempted and kept even
// when the change fails.
func (s *Session) Apply(ctx context.Context, p profile.Profile) (int, *ledger.Ledger) {
	applied := 0
	l := ledger.New()
	for _, e := range p {
		out := s.guard(e.ServiceName, func() Outcome { return s.applyEntry(ctx, e, l) })
		if out.Result == model.ResultOptimized {
			applied++
		}
		s.report(out)
	}
	logger.Infof("applied %d of %d profile entries, %d ledger entries", applied, len(p), l.Len())
	return applied, l
}

func (s *Session) applyEntry(ctx context.Context, e profile.Entry, l *ledger.Ledger) Outcome {
	out := Outcome{Service: e.ServiceName}
	target, ok := svc.ParseMode(string(e.RecommendedStartupType))
	if !ok {
		out.Result = model.ResultError
		out.Err = errors.NotValidf("startup type %q", e.RecommendedStartupType)
		return out
	}
	out.Target = target

	st, skip := s.observe(ctx, &out)
	if skip {
		return out
	}
	if st.StartupType.Matches(string(target)) {
		out.Result = model.ResultUnchanged
		return out
	}
	if s.DryRun {
		out.Result = model.ResultPlanned
		return out
	}

	l.Append(ledger.Entry{ServiceName: e.ServiceName, OriginalStartupType: st.StartupType})
	out.Attempted = true
	if !s.ctl.SetStartupType(ctx, e.ServiceName, target) {
		out.Result = model.ResultError
		out.Err = errors.Errorf("set startup type of %s to %s failed", e.ServiceName, target)
		return out
	}
	out.Result = model.ResultOptimized
	return out
}

// Restore puts every ledger entry back to its recorded startup type in
// recorded order, then empties the ledger whatever the outcome. In dry run
// the ledger is kept.
func (s *Session) Restore(ctx context.Context, l *ledger.Ledger) int {
	if !s.DryRun {
		defer l.Clear()
	}

	restored := 0
	entries := l.Entries()
	for _, e := range entries {
		out := s.guard(e.ServiceName, func() Outcome { return s.restoreEntry(ctx, e) })
		if out.Result == model.ResultRestored {
			restored++
		}
		s.report(out)
	}
	logger.Infof("restored %d of %d ledger entries", restored, len(entries))
	return restored
}

func (s *Session) restoreEntry(ctx context.Context, e ledger.Entry) Outcome {
	out := Outcome{Service: e.ServiceName}
	original, ok := e.OriginalStartupType.Mode()
	if !ok {
		out.Result = model.ResultError
		out.Err = errors.NotValidf("recorded startup type %q", e.OriginalStartupType)
		return out
	}
	out.Target = original

	st, skip := s.observe(ctx, &out)
	if skip {
		return out
	}
	if st.StartupType.Matches(string(original)) {
		out.Result = model.ResultUnchanged
		return out
	}
	if s.DryRun {
		out.Result = model.ResultPlanned
		return out
	}

	out.Attempted = true
	if !s.ctl.SetStartupType(ctx, e.ServiceName, original) {
		out.Result = model.ResultError
		out.Err = errors.Errorf("restore startup type of %s to %s failed", e.ServiceName, original)
		return out
	}
	out.Result = model.ResultRestored
	return out
}

// observe queries the service and fills out when the entry must be skipped.
func (s *Session) observe(ctx context.Context, out *Outcome) (svc.Status, bool) {
	st, err := s.ctl.Status(ctx, out.Service)
	out.Status = st
	switch {
	case err != nil:
		out.Result = model.ResultError
		out.Err = err
		return st, true
	case st.NotFound():
		out.Result = model.ResultNotFound
		return st, true
	case st.StartupType == svc.StartupUnknown:
		out.Result = model.ResultError
		out.Err = errUnknownStartupType
		return st, true
	}
	return st, false
}

// guard keeps a misbehaving controller from aborting the batch.
func (s *Session) guard(name string, fn func() Outcome) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Service: name, Result: model.ResultError, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return fn()
}

func (s *Session) report(out Outcome) {
	switch out.Result {
	case model.ResultError:
		logger.Warningf("skipping %s: %v", out.Service, out.Err)
	case model.ResultNotFound:
		logger.Infof("skipping %s: service not found", out.Service)
	default:
		logger.Debugf("%s: %s", out.Service, out.Result)
	}
	if s.OnOutcome != nil {
		s.OnOutcome(out)
	}
}
