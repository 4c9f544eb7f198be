package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/me/quantsched/pkg/model"
	"github.com/spf13/cobra"
)

func newResourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "Show hardware availability on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/system/hardware")
			if err != nil {
				return fmt.Errorf("get hardware: %w", err)
			}

			var summary model.Summary
			if err := json.Unmarshal(resp.Data, &summary); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			printSummary(summary)
			return nil
		},
	}
}

func printSummary(s model.Summary) {
	fmt.Printf("CPU:  %.2f of %d cores available (%.1f%% used, admission floor %.2f cores)\n",
		s.CPU.AvailableCores, s.CPU.TotalCores, s.CPU.UsagePercent, s.CPU.MinThresholdCores)
	fmt.Printf("RAM:  %s of %s available (%.1f%% used, admission floor %s)\n",
		gbString(s.RAM.AvailableGB), gbString(s.RAM.TotalGB), s.RAM.UsagePercent, gbString(s.RAM.MinThresholdGB))
	fmt.Printf("Safety buffer: %.0f%%\n", s.BufferPercent)
}

// gbString renders a GB quantity as a human byte size.
func gbString(gb float64) string {
	return humanize.IBytes(uint64(gb * (1 << 30)))
}
