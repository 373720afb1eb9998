// Package system reads host, CPU, memory, disk and process figures through
// gopsutil so the same code runs on Windows and Unix.
package system

import (
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

var logger = loggo.GetLogger("optitech.system")

type HostInfo struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	KernelVersion   string `json:"kernel_version"`
	Arch            string `json:"arch"`
	UptimeSeconds   uint64 `json:"uptime_seconds"`
}

type CPUInfo struct {
	Model         string  `json:"model"`
	PhysicalCores int     `json:"physical_cores"`
	LogicalCores  int     `json:"logical_cores"`
	MHz           float64 `json:"mhz"`
	UsagePercent  float64 `json:"usage_percent"`
}

type MemoryInfo struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"used_percent"`
}

type DiskInfo struct {
	Device      string  `json:"device"`
	Mountpoint  string  `json:"mountpoint"`
	FSType      string  `json:"fstype"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

func Host() (HostInfo, error) {
	h, err := host.Info()
	if err != nil {
		return HostInfo{}, errors.Annotate(err, "read host info")
	}
	return HostInfo{
		Hostname:        h.Hostname,
		OS:              h.OS,
		Platform:        h.Platform,
		PlatformVersion: h.PlatformVersion,
		KernelVersion:   h.KernelVersion,
		Arch:            h.KernelArch,
		UptimeSeconds:   h.Uptime,
	}, nil
}

// CPU samples overall usage for the given interval.
func CPU(sample time.Duration) (CPUInfo, error) {
	var out CPUInfo
	logical, err := cpu.Counts(true)
	if err != nil {
		return out, errors.Annotate(err, "count logical cpus")
	}
	out.LogicalCores = logical
	if physical, err := cpu.Counts(false); err == nil {
		out.PhysicalCores = physical
	}
	if info, err := cpu.Info(); err == nil && len(info) > 0 {
		out.Model = info[0].ModelName
		out.MHz = info[0].Mhz
	}
	if pct, err := cpu.Percent(sample, false); err == nil && len(pct) > 0 {
		out.UsagePercent = pct[0]
	}
	return out, nil
}

func Memory() (MemoryInfo, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return MemoryInfo{}, errors.Annotate(err, "read memory")
	}
	return MemoryInfo{Total: v.Total, Available: v.Available, Used: v.Used, UsedPercent: v.UsedPercent}, nil
}

// Disks reports usage for every physical partition. Partitions that cannot
// be read are logged and left out.
func Disks() ([]DiskInfo, error) {
	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, errors.Annotate(err, "list partitions")
	}
	out := make([]DiskInfo, 0, len(parts))
	for _, p := range parts {
		u, err := disk.Usage(p.Mountpoint)
		if err != nil {
			logger.Warningf("cannot read usage of %s: %v", p.Mountpoint, err)
			continue
		}
		out = append(out, DiskInfo{
			Device:      p.Device,
			Mountpoint:  p.Mountpoint,
			FSType:      p.Fstype,
			Total:       u.Total,
			Used:        u.Used,
			Free:        u.Free,
			UsedPercent: u.UsedPercent,
		})
	}
	return out, nil
}
