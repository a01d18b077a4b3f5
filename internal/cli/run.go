package cli

import (
	"github.com/spf13/cobra"
)

type RunOptions struct {
	Since       string
	Limit       int
	DryRun      bool
	Upsert      bool
	MappingFile string
	PageSize    int
	Checkpoint  string
	MetricsAddr string
	LogFile     string
}

func NewRunCmd() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the ETL sync",
		RunE: func(c *cobra.Command, args []string) error {
			return runSync(c.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Since, "since", "", "Only fetch records updated since this ISO8601 timestamp")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Max records per endpoint (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Extract and count without writing to MongoDB")
	cmd.Flags().BoolVar(&opts.Upsert, "upsert", false, "Upsert documents by _id instead of inserting")
	cmd.Flags().StringVarP(&opts.MappingFile, "mapping", "m", "configs/mapping.json", "Path to mapping file")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "Override PAGE_SIZE from the environment")
	cmd.Flags().StringVar(&opts.Checkpoint, "checkpoint", "file", "Checkpoint store: file, memory, redis or sqlserver")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address during the run")
	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "Also write logs to this file")

	return cmd
}
