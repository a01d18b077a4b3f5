package cli

import (
	"github.com/BartekS5/connector/internal/config"
	"github.com/BartekS5/connector/pkg/logger"
	"github.com/spf13/cobra"
)

func NewValidateCmd() *cobra.Command {
	var mappingFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the mapping file without running anything",
		RunE: func(c *cobra.Command, args []string) error {
			schema, err := config.LoadMapping(mappingFile)
			if err != nil {
				return err
			}
			if err := schema.Validate(); err != nil {
				return err
			}

			connectorName := "connector"
			if cfg, err := config.LoadConfig(); err == nil {
				connectorName = cfg.ConnectorName
			}

			logger.Infof("Mapping OK: entity %q, %d endpoint(s)", schema.Entity, len(schema.Endpoints))
			for _, ep := range schema.Endpoints {
				logger.Infof("  %s %s -> %s (pagination: %s)",
					ep.Name, ep.Path, schema.CollectionFor(connectorName, ep.Name), ep.Pagination.Style)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mappingFile, "mapping", "m", "configs/mapping.json", "Path to mapping file")

	return cmd
}
