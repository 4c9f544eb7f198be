package resource

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

const bytesPerGB = 1 << 30

// MemStats holds one memory sample in GB and percent terms.
type MemStats struct {
	TotalGB     float64
	AvailableGB float64
	UsedPercent float64
}

// Sampler abstracts OS-level hardware sampling so the monitor can be tested
// without touching the host and swapped if a platform is unsupported.
type Sampler interface {
	// CPUCount returns the number of logical CPU cores.
	CPUCount() (int, error)

	// CPUPercent returns the instantaneous CPU busy percentage (0-100).
	CPUPercent(ctx context.Context) (float64, error)

	// Memory returns current memory totals and availability.
	Memory(ctx context.Context) (MemStats, error)
}

// SystemSampler samples the host via gopsutil.
//
// CPU percent uses the since-last-call form (interval 0) so a sample never
// sleeps inside the admission path; the constructor primes the first
// reading. The first post-construction sample therefore reflects usage
// since startup rather than a fixed window, which is fine for an
// approximate predictive check.
type SystemSampler struct{}

// NewSystemSampler creates a sampler and primes the CPU percent baseline.
func NewSystemSampler() (*SystemSampler, error) {
	if _, err := cpu.Percent(0, false); err != nil {
		return nil, fmt.Errorf("prime cpu sampling: %w", err)
	}
	return &SystemSampler{}, nil
}

// CPUCount returns the logical core count.
func (s *SystemSampler) CPUCount() (int, error) {
	return cpu.Counts(true)
}

// CPUPercent returns overall CPU usage since the previous call.
func (s *SystemSampler) CPUPercent(ctx context.Context) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, fmt.Errorf("sample cpu: %w", err)
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("sample cpu: no data")
	}
	return percents[0], nil
}

// Memory returns current virtual memory usage.
func (s *SystemSampler) Memory(ctx context.Context) (MemStats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemStats{}, fmt.Errorf("sample memory: %w", err)
	}
	return MemStats{
		TotalGB:     float64(vm.Total) / bytesPerGB,
		AvailableGB: float64(vm.Available) / bytesPerGB,
		UsedPercent: vm.UsedPercent,
	}, nil
}
