package info

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemStats describes the machine the bot runs on
type SystemStats struct {
	Platform   string
	CPUs       int
	CPUPercent float64
	MemUsed    uint64
	MemTotal   uint64
	MemPercent float64
	HostUptime uint64
	Goroutines int
	GoVersion  string
}

// ReadSystemStats samples host, CPU and memory usage
func ReadSystemStats() (SystemStats, error) {
	stats := SystemStats{
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
	}

	info, err := host.Info()
	if err != nil {
		return stats, fmt.Errorf("failed to read host info: %w", err)
	}
	stats.Platform = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
	stats.HostUptime = info.Uptime

	if stats.CPUs, err = cpu.Counts(true); err != nil {
		return stats, fmt.Errorf("failed to count cpus: %w", err)
	}
	percent, err := cpu.Percent(0, false)
	if err != nil {
		return stats, fmt.Errorf("failed to read cpu usage: %w", err)
	}
	if len(percent) > 0 {
		stats.CPUPercent = percent[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return stats, fmt.Errorf("failed to read memory usage: %w", err)
	}
	stats.MemUsed, stats.MemTotal, stats.MemPercent = vm.Used, vm.Total, vm.UsedPercent
	return stats, nil
}
