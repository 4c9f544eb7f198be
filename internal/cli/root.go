package cli

import (
	"log/slog"
	"os"

	"github.com/me/quantsched/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking QUANTSCHED_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("QUANTSCHED_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the quantsched CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quantsched",
		Short: "QuantSched — resource-aware task queue for quant workloads",
		Long:  "QuantSched inspects hardware availability and the task queue of a running scheduler server.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "QuantSched server URL (or QUANTSCHED_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newResourcesCmd(),
		newQueueCmd(),
		newWatchCmd(),
		newHealthCmd(),
	)

	return root
}
