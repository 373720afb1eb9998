package restore

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"optitech/internal/app/common"
	"optitech/internal/app/optimize"
	"optitech/internal/domain/ledger"
	"optitech/internal/domain/model"
	"optitech/internal/infra/ledgerfile"
)

var logger = loggo.GetLogger("optitech.restore")

const (
	commandName = "services restore"
	planID      = "plan-services-restore"
)

type Service struct{}

type Options struct {
	// LedgerPath names a snapshot written by optimize. It is emptied after
	// the restore pass.
	LedgerPath string
	// Ledger restores an in-memory ledger instead of a snapshot.
	Ledger *ledger.Ledger
}

var (
	loadLedger     = ledgerfile.Load
	truncateLedger = ledgerfile.Truncate
)

func NewService() Service { return Service{} }

func (Service) Run(ctx context.Context, app *common.AppContext, opts Options) (model.CommandResult, error) {
	started := time.Now()
	if err := common.RequireConfirmationOrDryRun(app.Options, "services restore"); err != nil {
		return model.CommandResult{}, err
	}

	l := opts.Ledger
	fromSnapshot := false
	if l == nil {
		if opts.LedgerPath == "" {
			return model.CommandResult{}, errors.NotValidf("empty ledger path")
		}
		loaded, err := loadLedger(opts.LedgerPath)
		switch {
		case errors.Is(err, errors.NotFound):
			// optimize writes no snapshot when it changed nothing
			logger.Infof("no ledger snapshot at %s, nothing to restore", opts.LedgerPath)
			loaded = ledger.New()
		case err != nil:
			return model.CommandResult{}, errors.Annotate(err, "load rollback ledger")
		default:
			fromSnapshot = true
		}
		l = loaded
	}

	dryRun := app.Options.DryRun
	summary := model.Summary{ItemsTotal: l.Len(), LedgerSize: l.Len()}
	items := make([]model.ServiceItem, 0, l.Len())

	session := optimize.NewSession(app.Services)
	session.DryRun = dryRun
	session.OnOutcome = func(out optimize.Outcome) {
		item := model.ServiceItem{
			Service: out.Service,
			State:   string(out.Status.State),
			Current: string(out.Status.StartupType),
			Target:  string(out.Target),
			Result:  out.Result,
		}
		if out.Err != nil {
			item.Error = out.Err.Error()
		}
		switch item.Result {
		case model.ResultUnchanged:
			summary.Unchanged++
		case model.ResultNotFound:
			summary.NotFound++
		case model.ResultError:
			summary.Errors++
		}
		items = append(items, item)

		action := common.ActionSkip
		if out.Attempted {
			action = common.ActionSetStartupType
		}
		if err := common.LogServiceItem(ctx, app.Logger, planID, commandName, action, dryRun, item); err != nil {
			summary.Errors++
		}
	}

	summary.Changed = session.Restore(ctx, l)

	var truncErr error
	if !dryRun && fromSnapshot {
		if err := truncateLedger(opts.LedgerPath); err != nil {
			logger.Errorf("cannot empty ledger snapshot %s: %v", opts.LedgerPath, err)
			truncErr = errors.Annotate(err, "empty ledger snapshot")
		}
	}

	return model.CommandResult{
		SchemaVersion: "1.0",
		Command:       commandName,
		Timestamp:     time.Now().UTC(),
		DurationMS:    time.Since(started).Milliseconds(),
		DryRun:        dryRun,
		Summary:       summary,
		Items:         items,
	}, truncErr
}
