package resource

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/me/quantsched/pkg/model"
)

// fakeSampler reports fixed hardware values and can be mutated between
// calls to simulate changing load.
type fakeSampler struct {
	mu         sync.Mutex
	cores      int
	cpuPercent float64
	mem        MemStats
	cpuErr     error
	memErr     error
}

func (f *fakeSampler) CPUCount() (int, error) {
	return f.cores, nil
}

func (f *fakeSampler) CPUPercent(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cpuPercent, f.cpuErr
}

func (f *fakeSampler) Memory(ctx context.Context) (MemStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mem, f.memErr
}

func (f *fakeSampler) set(cpuPercent, availGB float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cpuPercent = cpuPercent
	f.mem.AvailableGB = availGB
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestMonitor builds a monitor over an 8-core / 16GB machine with the
// given instantaneous availability.
func newTestMonitor(t *testing.T, profile Profile, availCores, availGB float64) (*Monitor, *fakeSampler) {
	t.Helper()
	sampler := &fakeSampler{
		cores:      8,
		cpuPercent: (1 - availCores/8) * 100,
		mem:        MemStats{TotalGB: 16, AvailableGB: availGB, UsedPercent: (1 - availGB/16) * 100},
	}
	m, err := NewMonitor(profile, sampler, discardLogger())
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	return m, sampler
}

// TestCanRun_BacktestAdmitted covers the production-profile scenario:
// 8 cores / 16GB total, thresholds 1.6 cores / 3.2GB, 5 cores / 10GB
// available. A backtest (1.0 core / 0.5GB) consumes a predicted
// 0.8 core / 0.4GB, leaving 4.2 cores / 9.6GB, above both thresholds.
func TestCanRun_BacktestAdmitted(t *testing.T) {
	m, _ := newTestMonitor(t, ProductionProfile(), 5, 10)

	ok, reason := m.CanRun(context.Background(), model.JobBacktest)
	if !ok {
		t.Fatalf("CanRun = false (%s), want admitted", reason)
	}
	if !strings.Contains(reason, "4.20 cores") {
		t.Errorf("reason = %q, want predicted CPU surplus 4.20 cores", reason)
	}
	if !strings.Contains(reason, "9.60GB") {
		t.Errorf("reason = %q, want predicted RAM surplus 9.60GB", reason)
	}
}

// TestCanRun_ModelTrainingRejected: available CPU drops to 2.0 cores.
// Model training (2.0 cores) consumes a predicted 1.6, leaving 0.4 cores,
// below the 1.6-core threshold. The reason names the shortfall.
func TestCanRun_ModelTrainingRejected(t *testing.T) {
	m, _ := newTestMonitor(t, ProductionProfile(), 2, 10)

	ok, reason := m.CanRun(context.Background(), model.JobModelTraining)
	if ok {
		t.Fatalf("CanRun = true (%s), want rejected", reason)
	}
	if !strings.Contains(reason, "insufficient CPU") {
		t.Errorf("reason = %q, want an insufficient-CPU rejection", reason)
	}
	if !strings.Contains(reason, "0.40") || !strings.Contains(reason, "1.60") {
		t.Errorf("reason = %q, want it to name the 0.40-vs-1.60 shortfall", reason)
	}
}

func TestCanRun_RAMShortfall(t *testing.T) {
	// Plenty of CPU, but only 4GB RAM available. Training consumes a
	// predicted 1.2GB, leaving 2.8GB, below the 3.2GB threshold.
	m, _ := newTestMonitor(t, ProductionProfile(), 7, 4)

	ok, reason := m.CanRun(context.Background(), model.JobModelTraining)
	if ok {
		t.Fatalf("CanRun = true (%s), want rejected", reason)
	}
	if !strings.Contains(reason, "insufficient RAM") {
		t.Errorf("reason = %q, want an insufficient-RAM rejection", reason)
	}
	if !strings.Contains(reason, "2.80GB") || !strings.Contains(reason, "3.20GB") {
		t.Errorf("reason = %q, want it to name the 2.80-vs-3.20 shortfall", reason)
	}
}

func TestCanRun_UnknownKind(t *testing.T) {
	m, _ := newTestMonitor(t, ProductionProfile(), 8, 16)

	ok, reason := m.CanRun(context.Background(), model.JobKind("juggling"))
	if ok {
		t.Fatal("CanRun = true for unknown kind, want rejected")
	}
	if !strings.Contains(reason, "juggling") {
		t.Errorf("reason = %q, want it to name the unknown kind", reason)
	}
}

// TestCanRun_SamplingFailureFailsSafe verifies the fail-safe policy: when
// the OS sample itself fails, the task is treated as not admissible.
func TestCanRun_SamplingFailureFailsSafe(t *testing.T) {
	m, sampler := newTestMonitor(t, ProductionProfile(), 8, 16)
	sampler.mu.Lock()
	sampler.cpuErr = errors.New("proc unavailable")
	sampler.mu.Unlock()

	ok, reason := m.CanRun(context.Background(), model.JobPrediction)
	if ok {
		t.Fatal("CanRun = true despite sampling failure, want rejected")
	}
	if !strings.Contains(reason, "resource sampling failed") {
		t.Errorf("reason = %q, want it to name the sampling failure", reason)
	}
}

// TestCanRun_MonotonicHeadroom: with the requirement fixed, strictly
// increasing availability never turns an admitted call into a rejection.
func TestCanRun_MonotonicHeadroom(t *testing.T) {
	m, sampler := newTestMonitor(t, ProductionProfile(), 1, 2)

	admitted := false
	for avail := 1.0; avail <= 8.0; avail += 0.5 {
		sampler.set((1-avail/8)*100, avail*2)
		ok, reason := m.CanRun(context.Background(), model.JobBacktest)
		if admitted && !ok {
			t.Fatalf("admission regressed at availability %.1f cores: %s", avail, reason)
		}
		if ok {
			admitted = true
		}
	}
	if !admitted {
		t.Fatal("backtest never admitted even on an idle machine")
	}
}

func TestSummary_Thresholds(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantCPU float64
		wantRAM float64
	}{
		{"production", ProductionProfile(), 1.6, 3.2},
		{"relaxed", RelaxedProfile(), 0.4, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMonitor(t, tt.profile, 5, 10)
			sum, err := m.Summary(context.Background())
			if err != nil {
				t.Fatalf("Summary: %v", err)
			}
			if sum.CPU.MinThresholdCores != tt.wantCPU {
				t.Errorf("CPU threshold = %.2f, want %.2f", sum.CPU.MinThresholdCores, tt.wantCPU)
			}
			if sum.RAM.MinThresholdGB != tt.wantRAM {
				t.Errorf("RAM threshold = %.2f, want %.2f", sum.RAM.MinThresholdGB, tt.wantRAM)
			}
			if sum.BufferPercent != tt.profile.BufferPercent*100 {
				t.Errorf("BufferPercent = %.1f, want %.1f", sum.BufferPercent, tt.profile.BufferPercent*100)
			}
		})
	}
}

// TestCurrent_AlwaysFresh verifies snapshots are recomputed on demand,
// never cached across calls.
func TestCurrent_AlwaysFresh(t *testing.T) {
	m, sampler := newTestMonitor(t, ProductionProfile(), 8, 16)
	ctx := context.Background()

	first, err := m.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if first.AvailableCPUCores != 8 {
		t.Errorf("AvailableCPUCores = %.2f, want 8", first.AvailableCPUCores)
	}

	sampler.set(50, 6)

	second, err := m.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if second.AvailableCPUCores != 4 {
		t.Errorf("AvailableCPUCores = %.2f, want 4 after load change", second.AvailableCPUCores)
	}
	if second.AvailableRAMGB != 6 {
		t.Errorf("AvailableRAMGB = %.2f, want 6 after load change", second.AvailableRAMGB)
	}

	// Totals stay fixed at construction-time values.
	if second.TotalCPUCores != first.TotalCPUCores || second.TotalRAMGB != first.TotalRAMGB {
		t.Error("totals changed between snapshots")
	}
}

func TestRequirementFor(t *testing.T) {
	req, err := RequirementFor(model.JobModelTraining)
	if err != nil {
		t.Fatalf("RequirementFor: %v", err)
	}
	if req.CPUCores != 2.0 || req.RAMGB != 1.5 {
		t.Errorf("model_training requirement = %+v, want 2.0 cores / 1.5GB", req)
	}

	if _, err := RequirementFor(model.JobKind("nope")); err == nil {
		t.Error("RequirementFor(unknown) = nil error, want error")
	}
}
