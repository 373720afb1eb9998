package optimize

import (
	"context"
	"time"

	"github.com/juju/errors"

	"optitech/internal/app/common"
	"optitech/internal/domain/ledger"
	"optitech/internal/domain/model"
	"optitech/internal/domain/profile"
	"optitech/internal/domain/rules"
	"optitech/internal/infra/ledgerfile"
)

const (
	commandName = "services optimize"
	planID      = "plan-services-optimize"
)

type Service struct{}

type Options struct {
	Apply bool
	// MaxRisk limits the profile to entries at or below this risk level.
	MaxRisk model.RiskLevel
	// LedgerOut receives the rollback snapshot. Entries already in the file
	// are kept.
	LedgerOut string
	// Ledger, when set, collects the rollback entries in memory instead.
	Ledger *ledger.Ledger
}

var (
	saveLedger = ledgerfile.Save
	loadLedger = ledgerfile.Load
)

func NewService() Service { return Service{} }

// Run reports the plan for the active profile and, with Apply, executes it.
func (Service) Run(ctx context.Context, app *common.AppContext, opts Options) (model.CommandResult, error) {
	started := time.Now()
	p := app.Profile
	if opts.MaxRisk != "" {
		p = rules.ByRisk(p, opts.MaxRisk)
	}

	dryRun := app.Options.DryRun || !opts.Apply
	if opts.Apply {
		if err := common.RequireConfirmationOrDryRun(app.Options, "services optimize"); err != nil {
			return model.CommandResult{}, err
		}
	}

	items := make([]model.ServiceItem, 0, len(p))
	summary := model.Summary{ItemsTotal: len(p)}

	session := NewSession(app.Services)
	session.DryRun = dryRun
	session.OnOutcome = func(out Outcome) {
		item := itemFromOutcome(out, findEntry(p, out.Service))
		tally(&summary, item)
		items = append(items, item)
		if !opts.Apply {
			return
		}
		action := common.ActionSkip
		if out.Attempted {
			action = common.ActionSetStartupType
		}
		if err := common.LogServiceItem(ctx, app.Logger, planID, commandName, action, dryRun, item); err != nil {
			summary.Errors++
		}
	}

	applied, l := session.Apply(ctx, p)
	summary.Changed = applied
	summary.LedgerSize = l.Len()

	var keepErr error
	if !dryRun && l.Len() > 0 {
		keepErr = keepLedger(opts, l)
	}

	return model.CommandResult{
		SchemaVersion: "1.0",
		Command:       commandName,
		Timestamp:     time.Now().UTC(),
		DurationMS:    time.Since(started).Milliseconds(),
		DryRun:        app.Options.DryRun,
		Summary:       summary,
		Items:         items,
	}, keepErr
}

func keepLedger(opts Options, l *ledger.Ledger) error {
	if opts.Ledger != nil {
		opts.Ledger.Merge(l)
	}
	if opts.LedgerOut == "" {
		return nil
	}
	merged, err := loadLedger(opts.LedgerOut)
	if err != nil {
		if !errors.Is(err, errors.NotFound) {
			return errors.Annotatef(err, "rollback data for %d services not saved", l.Len())
		}
		merged = ledger.New()
	}
	appendNew(merged, l)
	if err := saveLedger(opts.LedgerOut, merged); err != nil {
		return errors.Annotatef(err, "rollback data for %d services not saved", l.Len())
	}
	logger.Infof("ledger snapshot %s holds %d entries", opts.LedgerOut, merged.Len())
	return nil
}

// appendNew adds entries for services the snapshot does not know yet. The
// earliest recorded original wins, so repeated runs keep the first baseline.
func appendNew(dst, src *ledger.Ledger) {
	known := map[string]struct{}{}
	for _, e := range dst.Entries() {
		known[e.ServiceName] = struct{}{}
	}
	for _, e := range src.Entries() {
		if _, ok := known[e.ServiceName]; ok {
			continue
		}
		known[e.ServiceName] = struct{}{}
		dst.Append(e)
	}
}

func itemFromOutcome(out Outcome, e profile.Entry) model.ServiceItem {
	item := model.ServiceItem{
		Service:     out.Service,
		Description: e.Description,
		Risk:        e.RiskLevel,
		State:       string(out.Status.State),
		Current:     string(out.Status.StartupType),
		Target:      string(out.Target),
		Result:      out.Result,
	}
	if out.Err != nil {
		item.Error = out.Err.Error()
	}
	return item
}

func findEntry(p profile.Profile, name string) profile.Entry {
	for _, e := range p {
		if e.ServiceName == name {
			return e
		}
	}
	return profile.Entry{ServiceName: name}
}

func tally(s *model.Summary, item model.ServiceItem) {
	switch item.Result {
	case model.ResultUnchanged:
		s.Unchanged++
	case model.ResultNotFound:
		s.NotFound++
	case model.ResultError:
		s.Errors++
	}
}
