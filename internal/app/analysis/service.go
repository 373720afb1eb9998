package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"optitech/internal/app/common"
	"optitech/internal/domain/model"
	"optitech/internal/infra/fsutil"
	"optitech/internal/infra/servicectl"
	"optitech/internal/infra/system"
)

var logger = loggo.GetLogger("optitech.analysis")

const cpuSample = time.Second

type Service struct {
	readers analysisReaders
}

type Options struct {
	Top    int
	Report bool
}

type Metrics struct {
	GeneratedAt  time.Time            `json:"generated_at"`
	Host         system.HostInfo      `json:"host"`
	CPU          system.CPUInfo       `json:"cpu"`
	Memory       system.MemoryInfo    `json:"memory"`
	Disks        []system.DiskInfo    `json:"disks"`
	TopProcesses []system.ProcessStat `json:"top_processes"`
	Services     *servicectl.Census   `json:"services,omitempty"`
	ReportPath   string               `json:"report_path,omitempty"`
	Warnings     []string             `json:"warnings,omitempty"`
}

type analysisReaders struct {
	host       func() (system.HostInfo, error)
	cpu        func(time.Duration) (system.CPUInfo, error)
	memory     func() (system.MemoryInfo, error)
	disks      func() ([]system.DiskInfo, error)
	topProcess func(limit int) []system.ProcessStat
	now        func() time.Time
	writeFile  func(path string, data []byte) error
}

func defaultReaders() analysisReaders {
	return analysisReaders{
		host:       system.Host,
		cpu:        system.CPU,
		memory:     system.Memory,
		disks:      system.Disks,
		topProcess: system.TopProcesses,
		now:        time.Now,
		writeFile:  fsutil.WriteFile,
	}
}

func NewService() Service { return Service{readers: defaultReaders()} }

// Run collects a snapshot of the machine. A probe that fails is recorded as a
// warning; the rest of the snapshot is still returned.
func (s Service) Run(ctx context.Context, app *common.AppContext, opts Options) (model.CommandResult, error) {
	start := time.Now()
	r := s.readers
	m := Metrics{GeneratedAt: r.now()}

	warn := func(what string, err error) {
		logger.Warningf("%s: %v", what, err)
		m.Warnings = append(m.Warnings, fmt.Sprintf("%s: %v", what, err))
	}

	var err error
	if m.Host, err = r.host(); err != nil {
		warn("host", err)
	}
	if m.CPU, err = r.cpu(cpuSample); err != nil {
		warn("cpu", err)
	}
	if m.Memory, err = r.memory(); err != nil {
		warn("memory", err)
	}
	if m.Disks, err = r.disks(); err != nil {
		warn("disks", err)
	}
	m.TopProcesses = r.topProcess(opts.Top)

	if app.Services != nil {
		census, err := app.Services.Census(ctx)
		if err != nil {
			warn("services", err)
		} else {
			m.Services = &census
		}
	}

	if opts.Report {
		name := fmt.Sprintf("system_analysis_%s.md", m.GeneratedAt.Format("20060102_150405"))
		path := filepath.Join(app.Paths.Reports(), name)
		if err := r.writeFile(path, []byte(RenderMarkdown(m))); err != nil {
			return model.CommandResult{}, errors.Annotate(err, "write analysis report")
		}
		logger.Infof("analysis report written to %s", path)
		m.ReportPath = path
	}

	return model.CommandResult{
		SchemaVersion: "1.0",
		Command:       "analyze",
		Timestamp:     time.Now().UTC(),
		DurationMS:    time.Since(start).Milliseconds(),
		Metrics:       m,
	}, nil
}
