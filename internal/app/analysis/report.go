package analysis

import (
	"fmt"
	"strings"
)

const gib = 1 << 30

func gb(b uint64) string { return fmt.Sprintf("%.2f GB", float64(b)/gib) }

// RenderMarkdown formats a snapshot as the report saved under reports/.
func RenderMarkdown(m Metrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# OptiTech System Analysis Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n\n", m.GeneratedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "## 1. Operating System\n\n")
	fmt.Fprintf(&b, "- **System:** %s %s %s\n", m.Host.OS, m.Host.Platform, m.Host.PlatformVersion)
	fmt.Fprintf(&b, "- **Kernel:** %s\n", m.Host.KernelVersion)
	fmt.Fprintf(&b, "- **Hostname:** %s\n", m.Host.Hostname)
	fmt.Fprintf(&b, "- **Architecture:** %s\n\n", m.Host.Arch)

	fmt.Fprintf(&b, "## 2. CPU\n\n")
	if m.CPU.Model != "" {
		fmt.Fprintf(&b, "- **Model:** %s\n", m.CPU.Model)
	}
	fmt.Fprintf(&b, "- **Cores:** %d physical, %d logical\n", m.CPU.PhysicalCores, m.CPU.LogicalCores)
	if m.CPU.MHz > 0 {
		fmt.Fprintf(&b, "- **Frequency:** %.2f MHz\n", m.CPU.MHz)
	}
	fmt.Fprintf(&b, "- **Total load:** %.1f%%\n\n", m.CPU.UsagePercent)

	fmt.Fprintf(&b, "## 3. Memory\n\n")
	fmt.Fprintf(&b, "- **Total:** %s\n", gb(m.Memory.Total))
	fmt.Fprintf(&b, "- **Available:** %s\n", gb(m.Memory.Available))
	fmt.Fprintf(&b, "- **In use:** %s (%.1f%%)\n\n", gb(m.Memory.Used), m.Memory.UsedPercent)

	fmt.Fprintf(&b, "## 4. Services\n\n")
	if m.Services == nil {
		fmt.Fprintf(&b, "- Service information unavailable\n\n")
	} else {
		fmt.Fprintf(&b, "- **Total:** %d\n", m.Services.Total)
		fmt.Fprintf(&b, "- **Running:** %d\n", m.Services.Running)
		fmt.Fprintf(&b, "- **Stopped:** %d\n", m.Services.Stopped)
		fmt.Fprintf(&b, "- **Other:** %d\n\n", m.Services.Other)
	}

	fmt.Fprintf(&b, "## 5. Disks\n\n")
	if len(m.Disks) == 0 {
		fmt.Fprintf(&b, "- No readable partitions\n")
	}
	for _, d := range m.Disks {
		fmt.Fprintf(&b, "- **Device:** %s | Mount: %s | Type: %s\n", d.Device, d.Mountpoint, d.FSType)
		fmt.Fprintf(&b, "  - Size: %s | Used: %s (%.1f%%)\n", gb(d.Total), gb(d.Used), d.UsedPercent)
	}

	if len(m.TopProcesses) > 0 {
		fmt.Fprintf(&b, "\n## 6. Top Processes by Memory\n\n")
		fmt.Fprintf(&b, "| PID | Memory | Command |\n|---|---|---|\n")
		for _, p := range m.TopProcesses {
			fmt.Fprintf(&b, "| %d | %.1f MB | %s |\n", p.PID, float64(p.MemBytes)/(1<<20), strings.ReplaceAll(p.Command, "|", `\|`))
		}
	}

	if len(m.Warnings) > 0 {
		fmt.Fprintf(&b, "\n## Warnings\n\n")
		for _, w := range m.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}
