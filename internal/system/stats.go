package system

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Usage is a snapshot of this process and the host, for the performance report.
type Usage struct {
	RSSBytes       uint64
	CPUPercent     float64
	HostUsedPct    float64
	HostTotalBytes uint64
	Goroutines     int
}

// CurrentUsage collects what gopsutil can read. Fields it cannot read stay zero.
func CurrentUsage() (Usage, error) {
	u := Usage{Goroutines: runtime.NumGoroutine()}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return u, err
	}
	if mi, err := proc.MemoryInfo(); err == nil {
		u.RSSBytes = mi.RSS
	}
	if pct, err := proc.CPUPercent(); err == nil {
		u.CPUPercent = pct
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return u, err
	}
	u.HostUsedPct = vm.UsedPercent
	u.HostTotalBytes = vm.Total
	return u, nil
}

// MiB formats bytes for log lines.
func MiB(b uint64) float64 { return float64(b) / (1 << 20) }
