package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	"optitech/internal/app/common"
	"optitech/internal/app/optimize"
	"optitech/internal/app/restore"
	"optitech/internal/domain/model"
	"optitech/internal/domain/profile"
	"optitech/internal/domain/rules"
	"optitech/internal/domain/svc"
)

var (
	servicesApply     bool
	servicesLedgerOut string
	servicesLedgerIn  string
	servicesMaxRisk   string
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Inspect, optimize and restore Windows service startup types",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var servicesStatusCmd = &cobra.Command{
	Use:   "status <name>...",
	Short: "Show runtime state and startup type of services",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}
		if err := common.ValidateServiceArgs(args); err != nil {
			return err
		}
		return printResult(queryStatuses(cmd.Context(), app, args))
	},
}

var servicesOptimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Plan or apply the optimization profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}
		risk, err := parseMaxRisk(servicesMaxRisk)
		if err != nil {
			return err
		}
		ledgerOut := servicesLedgerOut
		if ledgerOut == "" {
			ledgerOut = app.Paths.DefaultLedger()
		}
		result, err := optimize.NewService().Run(cmd.Context(), app, optimize.Options{
			Apply:     servicesApply,
			MaxRisk:   risk,
			LedgerOut: ledgerOut,
		})
		if err != nil && result.Command == "" {
			return err
		}
		if perr := printResult(result); perr != nil && err == nil {
			err = perr
		}
		return err
	},
}

var servicesRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore startup types recorded by a previous optimize run",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}
		path := servicesLedgerIn
		if path == "" {
			path = app.Paths.DefaultLedger()
		}
		result, err := restore.NewService().Run(cmd.Context(), app, restore.Options{LedgerPath: path})
		if err != nil && result.Command == "" {
			return err
		}
		if perr := printResult(result); perr != nil && err == nil {
			err = perr
		}
		return err
	},
}

var servicesProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "List the active optimization profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}
		return printResult(profileListing(app.Profile))
	},
}

func init() {
	servicesOptimizeCmd.Flags().BoolVar(&servicesApply, "apply", false, "Change startup types (requires --yes or --dry-run)")
	servicesOptimizeCmd.Flags().StringVar(&servicesLedgerOut, "ledger-out", "", "Rollback snapshot to write (default: <data>/backups/service_ledger.json)")
	servicesOptimizeCmd.Flags().StringVar(&servicesMaxRisk, "max-risk", "", "Only apply entries up to this risk: low (safe), medium (moderate), high (aggressive)")
	servicesRestoreCmd.Flags().StringVar(&servicesLedgerIn, "ledger", "", "Rollback snapshot to restore (default: <data>/backups/service_ledger.json)")

	servicesCmd.AddCommand(servicesStatusCmd)
	servicesCmd.AddCommand(servicesOptimizeCmd)
	servicesCmd.AddCommand(servicesRestoreCmd)
	servicesCmd.AddCommand(servicesProfileCmd)
}

func parseMaxRisk(v string) (model.RiskLevel, error) {
	if strings.TrimSpace(v) == "" {
		return "", nil
	}
	risk, ok := rules.ParseRisk(v)
	if !ok {
		return "", errors.NotValidf("--max-risk %q (want low|safe, medium|moderate, high|aggressive)", v)
	}
	return risk, nil
}

type serviceStatusLine struct {
	Service string     `json:"service"`
	Status  svc.Status `json:"status"`
	Error   string     `json:"error,omitempty"`
}

type statusReport struct {
	Services []serviceStatusLine `json:"services"`
}

func (r statusReport) String() string {
	var b strings.Builder
	for i, l := range r.Services {
		if i > 0 {
			b.WriteByte('\n')
		}
		if l.Error != "" {
			fmt.Fprintf(&b, "%-24s error: %s", l.Service, l.Error)
			continue
		}
		fmt.Fprintf(&b, "%-24s %-10s %s", l.Service, l.Status.State, l.Status.StartupType)
	}
	return b.String()
}

func queryStatuses(ctx context.Context, app *common.AppContext, names []string) statusReport {
	out := statusReport{Services: make([]serviceStatusLine, 0, len(names))}
	for _, name := range names {
		st, err := app.Services.Status(ctx, name)
		line := serviceStatusLine{Service: name, Status: st}
		if err != nil {
			line.Error = err.Error()
		}
		out.Services = append(out.Services, line)
	}
	return out
}

type profileReport struct {
	Services profile.Profile `json:"services"`
}

func profileListing(p profile.Profile) profileReport {
	if p == nil {
		p = profile.Profile{}
	}
	return profileReport{Services: p}
}

func (r profileReport) String() string {
	if len(r.Services) == 0 {
		return "profile is empty: nothing to do"
	}
	var b strings.Builder
	for i, e := range r.Services {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-24s %-10s %-8s %s", e.ServiceName, e.RecommendedStartupType, e.RiskLevel, e.Description)
	}
	return b.String()
}
