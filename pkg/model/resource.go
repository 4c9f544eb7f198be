package model

// Requirement is the expected resource footprint of one job kind.
// The table of requirements is process-wide constant configuration.
type Requirement struct {
	CPUCores float64 `json:"cpu_cores"`
	RAMGB    float64 `json:"ram_gb"`
}

// Snapshot is an instantaneous view of host resource availability.
// It has no identity: every snapshot is freshly sampled, never cached.
type Snapshot struct {
	TotalCPUCores     int     `json:"total_cpu_cores"`
	AvailableCPUCores float64 `json:"available_cpu_cores"`
	TotalRAMGB        float64 `json:"total_ram_gb"`
	AvailableRAMGB    float64 `json:"available_ram_gb"`
	CPUPercent        float64 `json:"cpu_percent"`
	RAMPercent        float64 `json:"ram_percent"`
}

// Summary is the observability view of the monitor: totals, availability,
// busy percentages, and the computed minimum thresholds.
type Summary struct {
	CPU           CPUSummary `json:"cpu"`
	RAM           RAMSummary `json:"ram"`
	BufferPercent float64    `json:"buffer_percent"`
}

// CPUSummary is the CPU block of a Summary.
type CPUSummary struct {
	TotalCores        int     `json:"total_cores"`
	AvailableCores    float64 `json:"available_cores"`
	UsagePercent      float64 `json:"usage_percent"`
	MinThresholdCores float64 `json:"min_threshold_cores"`
}

// RAMSummary is the RAM block of a Summary.
type RAMSummary struct {
	TotalGB        float64 `json:"total_gb"`
	AvailableGB    float64 `json:"available_gb"`
	UsagePercent   float64 `json:"usage_percent"`
	MinThresholdGB float64 `json:"min_threshold_gb"`
}
