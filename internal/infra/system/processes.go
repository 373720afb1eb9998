package system

import (
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

const maxCommandLen = 200

type ProcessStat struct {
	PID        int     `json:"pid"`
	Command    string  `json:"command"`
	CPUPercent float64 `json:"cpu_percent"`
	MemBytes   uint64  `json:"mem_bytes"`
}

var listProcesses = process.Processes

// TopProcesses returns the processes holding the most resident memory.
// Processes that vanish or deny access while being read are skipped.
func TopProcesses(limit int) []ProcessStat {
	procs, err := listProcesses()
	if err != nil {
		logger.Warningf("cannot list processes: %v", err)
		return nil
	}

	out := make([]ProcessStat, 0, len(procs))
	for _, p := range procs {
		mem, err := p.MemoryInfo()
		if err != nil || mem == nil {
			continue
		}
		cpu, _ := p.CPUPercent()
		out = append(out, ProcessStat{
			PID:        int(p.Pid),
			Command:    commandLine(p),
			CPUPercent: cpu,
			MemBytes:   mem.RSS,
		})
	}
	return rankByMemory(out, limit)
}

func rankByMemory(stats []ProcessStat, limit int) []ProcessStat {
	if limit <= 0 {
		limit = 5
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].MemBytes > stats[j].MemBytes })
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

func commandLine(p *process.Process) string {
	cmd, _ := p.Cmdline()
	if strings.TrimSpace(cmd) == "" {
		cmd, _ = p.Name()
	}
	return truncateCommand(cmd)
}

func truncateCommand(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return "unknown"
	}
	if len(cmd) > maxCommandLen {
		return cmd[:maxCommandLen] + "..."
	}
	return cmd
}
