package resource

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/me/quantsched/pkg/model"
)

// Profile sets how conservative admission is.
type Profile struct {
	// BufferPercent is the fraction of total resources always kept free.
	BufferPercent float64

	// ConsumptionFactor is the fraction of a job's nominal footprint
	// assumed to be actually consumed; most jobs underuse their
	// worst-case estimate.
	ConsumptionFactor float64
}

// ProductionProfile keeps a 20% buffer and assumes 80% consumption.
func ProductionProfile() Profile {
	return Profile{BufferPercent: 0.20, ConsumptionFactor: 0.80}
}

// RelaxedProfile is for development: 5% buffer, 50% assumed consumption.
func RelaxedProfile() Profile {
	return Profile{BufferPercent: 0.05, ConsumptionFactor: 0.50}
}

// ProfileFor selects the admission profile for the given mode.
func ProfileFor(devMode bool) Profile {
	if devMode {
		return RelaxedProfile()
	}
	return ProductionProfile()
}

// Monitor samples hardware state and answers the predictive admission
// question: can a job of a given kind start now without pushing
// availability below the safety buffer?
//
// The check is predictive, not reactive: it never inspects which jobs are
// already running. OS-reported availability already reflects their load.
type Monitor struct {
	profile Profile
	sampler Sampler
	logger  *slog.Logger

	// Captured once at construction, fixed for the process lifetime.
	totalCPUCores int
	totalRAMGB    float64
	minCPUCores   float64
	minRAMGB      float64
}

// NewMonitor captures hardware totals and derives the minimum thresholds.
func NewMonitor(profile Profile, sampler Sampler, logger *slog.Logger) (*Monitor, error) {
	cores, err := sampler.CPUCount()
	if err != nil {
		return nil, fmt.Errorf("detect cpu cores: %w", err)
	}
	ms, err := sampler.Memory(context.Background())
	if err != nil {
		return nil, fmt.Errorf("detect total memory: %w", err)
	}

	m := &Monitor{
		profile:       profile,
		sampler:       sampler,
		logger:        logger.With("component", "resource_monitor"),
		totalCPUCores: cores,
		totalRAMGB:    ms.TotalGB,
		minCPUCores:   float64(cores) * profile.BufferPercent,
		minRAMGB:      ms.TotalGB * profile.BufferPercent,
	}

	m.logger.Info("resource monitor ready",
		"total_cpu_cores", m.totalCPUCores,
		"total_ram_gb", round2(m.totalRAMGB),
		"min_cpu_cores", round2(m.minCPUCores),
		"min_ram_gb", round2(m.minRAMGB),
		"consumption_factor", profile.ConsumptionFactor,
	)
	return m, nil
}

// TotalRAMGB returns the RAM total captured at construction.
func (m *Monitor) TotalRAMGB() float64 {
	return m.totalRAMGB
}

// TotalCPUCores returns the core count captured at construction.
func (m *Monitor) TotalCPUCores() int {
	return m.totalCPUCores
}

// Current samples the OS and returns a fresh snapshot. No side effects.
func (m *Monitor) Current(ctx context.Context) (model.Snapshot, error) {
	cpuPercent, err := m.sampler.CPUPercent(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	ms, err := m.sampler.Memory(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}

	return model.Snapshot{
		TotalCPUCores:     m.totalCPUCores,
		AvailableCPUCores: float64(m.totalCPUCores) * (1 - cpuPercent/100),
		TotalRAMGB:        m.totalRAMGB,
		AvailableRAMGB:    ms.AvailableGB,
		CPUPercent:        cpuPercent,
		RAMPercent:        ms.UsedPercent,
	}, nil
}

// CanRun reports whether a job of the given kind can start now without
// dropping predicted availability below the minimum thresholds. The reason
// string always states the numeric shortfall or surplus; it is surfaced to
// users in queue messages.
//
// If sampling itself fails the check fails safe: the task is treated as
// not admissible and the reason names the sampling error.
func (m *Monitor) CanRun(ctx context.Context, kind model.JobKind) (bool, string) {
	req, err := RequirementFor(kind)
	if err != nil {
		return false, err.Error()
	}

	snap, err := m.Current(ctx)
	if err != nil {
		m.logger.Warn("resource sampling failed, denying admission", "task_type", kind, "error", err)
		return false, fmt.Sprintf("resource sampling failed: %v", err)
	}

	predictedCPU := req.CPUCores * m.profile.ConsumptionFactor
	predictedRAM := req.RAMGB * m.profile.ConsumptionFactor
	cpuAfter := snap.AvailableCPUCores - predictedCPU
	ramAfter := snap.AvailableRAMGB - predictedRAM

	m.logger.Debug("admission check",
		"task_type", kind,
		"available_cpu_cores", round2(snap.AvailableCPUCores),
		"available_ram_gb", round2(snap.AvailableRAMGB),
		"predicted_cpu_consumption", round2(predictedCPU),
		"predicted_ram_consumption", round2(predictedRAM),
		"cpu_after", round2(cpuAfter),
		"ram_after", round2(ramAfter),
		"min_cpu_cores", round2(m.minCPUCores),
		"min_ram_gb", round2(m.minRAMGB),
	)

	if cpuAfter < m.minCPUCores {
		return false, fmt.Sprintf(
			"insufficient CPU: need %.2f cores, available %.2f, would leave %.2f (min %.2f)",
			predictedCPU, snap.AvailableCPUCores, cpuAfter, m.minCPUCores)
	}
	if ramAfter < m.minRAMGB {
		return false, fmt.Sprintf(
			"insufficient RAM: need %.2fGB, available %.2fGB, would leave %.2fGB (min %.2fGB)",
			predictedRAM, snap.AvailableRAMGB, ramAfter, m.minRAMGB)
	}

	return true, fmt.Sprintf(
		"can run: %.2f cores and %.2fGB RAM will remain", cpuAfter, ramAfter)
}

// Summary returns totals, availability, busy percentages, and the computed
// minimum thresholds for observability.
func (m *Monitor) Summary(ctx context.Context) (model.Summary, error) {
	snap, err := m.Current(ctx)
	if err != nil {
		return model.Summary{}, err
	}

	return model.Summary{
		CPU: model.CPUSummary{
			TotalCores:        snap.TotalCPUCores,
			AvailableCores:    round2(snap.AvailableCPUCores),
			UsagePercent:      round1(snap.CPUPercent),
			MinThresholdCores: round2(m.minCPUCores),
		},
		RAM: model.RAMSummary{
			TotalGB:        round2(snap.TotalRAMGB),
			AvailableGB:    round2(snap.AvailableRAMGB),
			UsagePercent:   round1(snap.RAMPercent),
			MinThresholdGB: round2(m.minRAMGB),
		},
		BufferPercent: m.profile.BufferPercent * 100,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
