package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/me/quantsched/pkg/model"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var maxEvents int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream scheduler events (SSE)",
		Long:  "Connects to the server event stream and prints one line per scheduler event. Runs until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := client.BaseURL + "/api/v1/sse/events"

			req, err := http.NewRequestWithContext(cmd.Context(), "GET", url, nil)
			if err != nil {
				return fmt.Errorf("create request: %w", err)
			}

			resp, err := client.HTTPClient.Do(req)
			if err != nil {
				return fmt.Errorf("connect event stream: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("event stream returned status %d", resp.StatusCode)
			}

			seen := 0
			scanner := bufio.NewScanner(resp.Body)
			for scanner.Scan() {
				line := scanner.Text()
				if !strings.HasPrefix(line, "data: ") {
					continue
				}

				var ev model.Event
				if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
					logger.Warn("skipping malformed event", "error", err)
					continue
				}
				printEvent(ev)

				seen++
				if maxEvents > 0 && seen >= maxEvents {
					return nil
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().IntVar(&maxEvents, "max-events", 0, "Exit after this many events (0 = run forever)")
	return cmd
}

func printEvent(ev model.Event) {
	ts := ev.Timestamp.Format("15:04:05")
	switch ev.Type {
	case model.EventHeartbeat:
		fmt.Printf("%s  heartbeat  cpu %.1f%%  ram %.1f%%\n",
			ts, ev.Resources.CPU.UsagePercent, ev.Resources.RAM.UsagePercent)
	case model.EventInitialState:
		fmt.Printf("%s  connected  cpu %.2f cores free  ram %sG free\n",
			ts, ev.Resources.CPU.AvailableCores, trimFloat(ev.Resources.RAM.AvailableGB))
	default:
		detail, _ := json.Marshal(ev.Data)
		fmt.Printf("%s  %s  %s\n", ts, ev.Type, detail)
	}
}

func trimFloat(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}
