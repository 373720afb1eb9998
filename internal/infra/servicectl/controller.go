package servicectl

import (
	"context"
	"fmt"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"optitech/internal/domain/safety"
	"optitech/internal/domain/svc"
	"optitech/internal/infra/execx"
)

var logger = loggo.GetLogger("optitech.servicectl")

const (
	// ErrCommandUnavailable means sc.exe itself could not be run. A missing
	// service is not an error; it is reported as a NOT_FOUND status.
	ErrCommandUnavailable = errors.ConstError("service command unavailable")

	// ErrCommandFailed means sc.exe ran but refused the request for a reason
	// other than the service being absent, e.g. access denied.
	ErrCommandFailed = errors.ConstError("service command failed")
)

const (
	scExe = "sc.exe"

	// ERROR_SERVICE_DOES_NOT_EXIST
	exitServiceDoesNotExist = 1060
)

// Controller is the boundary between the optimization engine and the host's
// service manager.
type Controller interface {
	Status(ctx context.Context, name string) (svc.Status, error)
	SetStartupType(ctx context.Context, name string, mode svc.Mode) bool
}

// Manager adds the whole-system census used by analysis.
type Manager interface {
	Controller
	Census(ctx context.Context) (Census, error)
}

// SC drives Windows services through sc.exe and parses its text output.
type SC struct {
	runner execx.Runner
}

var _ Manager = (*SC)(nil)

func New(runner execx.Runner) *SC {
	return &SC{runner: runner}
}

func (c *SC) Status(ctx context.Context, name string) (svc.Status, error) {
	if err := safety.ValidateServiceName(name); err != nil {
		return svc.Status{}, errors.NotValidf("service name %q: %v", name, err)
	}

	qc := c.runner.Run(ctx, scExe, "qc", name)
	if qc.Unavailable() {
		logger.Errorf("cannot run %s for %q: %v", scExe, name, qc.Err)
		return svc.Status{}, fmt.Errorf("%w: %v", ErrCommandUnavailable, qc.Err)
	}
	if serviceMissing(qc) {
		logger.Debugf("service %q does not exist", name)
		return svc.Parse(svc.Query{ConfigMissing: true}), nil
	}
	if !qc.OK() {
		detail := failureDetail(qc)
		logger.Warningf("%s qc %q failed: %s", scExe, name, detail)
		return svc.Status{}, errors.Annotatef(ErrCommandFailed, "qc %q: %s", name, detail)
	}

	query := c.runner.Run(ctx, scExe, "query", name)
	if !query.OK() {
		logger.Warningf("%s query %q failed: %s", scExe, name, failureDetail(query))
	}

	st := svc.Parse(svc.Query{
		Config:      qc.Stdout,
		State:       query.Stdout,
		StateFailed: !query.OK(),
	})
	logger.Infof("status for %q: %s", name, st)
	return st, nil
}

func (c *SC) SetStartupType(ctx context.Context, name string, mode svc.Mode) bool {
	if err := safety.ValidateServiceName(name); err != nil {
		logger.Errorf("refusing to configure %q: %v", name, err)
		return false
	}
	if !mode.Valid() {
		logger.Errorf("refusing to configure %q: unsupported startup type %q", name, mode)
		return false
	}

	res := c.runner.Run(ctx, scExe, "config", name, "start=", mode.Native())
	if !res.OK() {
		logger.Errorf("changing startup type of %q to %s failed: %s", name, mode.Native(), failureDetail(res))
		return false
	}
	logger.Infof("startup type of %q changed to %s", name, mode.Native())
	return true
}

// Census counts every installed service by runtime state.
type Census struct {
	Total   int `json:"total"`
	Running int `json:"running"`
	Stopped int `json:"stopped"`
	Other   int `json:"other"`
}

func (c *SC) Census(ctx context.Context) (Census, error) {
	res := c.runner.Run(ctx, scExe, "query", "type=", "service", "state=", "all")
	if res.Unavailable() {
		return Census{}, fmt.Errorf("%w: %v", ErrCommandUnavailable, res.Err)
	}
	if !res.OK() {
		return Census{}, errors.Annotatef(ErrCommandFailed, "enumerate services: %s", failureDetail(res))
	}

	var out Census
	for _, st := range svc.ScanStates(res.Stdout) {
		out.Total++
		switch st {
		case svc.StateRunning:
			out.Running++
		case svc.StateStopped:
			out.Stopped++
		default:
			out.Other++
		}
	}
	return out, nil
}

func serviceMissing(res execx.Result) bool {
	if res.ExitCode == exitServiceDoesNotExist {
		return true
	}
	return res.ExitCode != 0 && strings.Contains(res.Stdout, fmt.Sprintf("FAILED %d", exitServiceDoesNotExist))
}

func failureDetail(res execx.Result) string {
	if res.Err != nil {
		return res.Err.Error()
	}
	text := strings.TrimSpace(res.Stderr)
	if text == "" {
		text = strings.TrimSpace(res.Stdout)
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return fmt.Sprintf("exit code %d", res.ExitCode)
	}
	return fmt.Sprintf("exit code %d: %s", res.ExitCode, text)
}
