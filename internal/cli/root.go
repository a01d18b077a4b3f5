// Package cli handles the command-line interface logic
// using the Cobra library.
package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "connector",
		Short: "ETL connector: REST API to MongoDB",
		Long: `connector pulls paginated data from a REST API, normalizes each record
into a document, and loads it into MongoDB. The API shape (endpoints,
pagination, field mapping) is described by a JSON mapping file; credentials
and destinations come from the environment (.env).`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewPreviewCmd())
	rootCmd.AddCommand(NewValidateCmd())

	return rootCmd
}
