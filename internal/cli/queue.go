package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/me/quantsched/pkg/model"
	"github.com/spf13/cobra"
)

func newQueueCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show queued and running tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/system/queue"
			if owner != "" {
				path += "?owner=" + owner
			}

			resp, err := client.Get(path)
			if err != nil {
				return fmt.Errorf("get queue: %w", err)
			}

			var status model.QueueStatus
			if err := json.Unmarshal(resp.Data, &status); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if status.QueuedCount == 0 && status.RunningCount == 0 {
				fmt.Println("No tasks queued or running.")
				return nil
			}

			if status.RunningCount > 0 {
				fmt.Printf("Running (%d):\n", status.RunningCount)
				fmt.Printf("  %-42s  %-16s  %-8s  %s\n", "ID", "TYPE", "CPU/RAM", "OWNER")
				for _, t := range status.RunningTasks {
					fmt.Printf("  %-42s  %-16s  %.1f/%.1fG  %s\n",
						t.TaskID, t.TaskType, t.EstimatedCPUCores, t.EstimatedRAMGB, t.Owner)
				}
			}

			if status.QueuedCount > 0 {
				fmt.Printf("Queued (%d):\n", status.QueuedCount)
				fmt.Printf("  %-4s  %-42s  %-16s  %-8s  %s\n", "POS", "ID", "TYPE", "PRIO", "WAITING")
				for _, t := range status.QueuedTasks {
					fmt.Printf("  %-4d  %-42s  %-16s  %-8d  %s\n",
						t.QueuePosition, t.TaskID, t.TaskType, t.Priority, waitingFor(t.QueuedAt))
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Only show tasks for this owner")
	return cmd
}

func waitingFor(queuedAt time.Time) string {
	if queuedAt.IsZero() {
		return "-"
	}
	return humanize.Time(queuedAt)
}
