package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BartekS5/connector/internal/config"
	"github.com/BartekS5/connector/internal/etl"
	"github.com/BartekS5/connector/internal/metrics"
	"github.com/BartekS5/connector/pkg/logger"
	"github.com/spf13/cobra"
)

type PreviewOptions struct {
	MappingFile string
	Count       int
	Since       string
}

func NewPreviewCmd() *cobra.Command {
	opts := &PreviewOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Fetch and transform a few records without touching MongoDB",
		RunE: func(c *cobra.Command, args []string) error {
			return runPreview(c.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.MappingFile, "mapping", "m", "configs/mapping.json", "Path to mapping file")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 3, "Records to preview per endpoint")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Only fetch records updated since this ISO8601 timestamp")

	return cmd
}

// runPreview pulls the first page of each endpoint, runs the transform,
// and prints the first few documents as indented JSON.
func runPreview(ctx context.Context, opts *PreviewOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	schema, err := config.LoadMapping(opts.MappingFile)
	if err != nil {
		return err
	}
	if err := schema.Validate(); err != nil {
		return fmt.Errorf("invalid mapping: %w", err)
	}

	since, err := parseSince(opts.Since)
	if err != nil {
		return err
	}

	client := newAPIClient(cfg, metrics.Noop())
	transformer := etl.NewTransformer(schema, cfg.ConnectorName)

	for _, ep := range schema.Endpoints {
		extractor := etl.NewRESTExtractor(client, ep, since)
		records, _, err := extractor.Extract(ctx, opts.Count, "")
		if err != nil {
			return err
		}

		logger.Infof("[%s] Fetched %d record(s); showing up to %d", ep.Name, len(records), opts.Count)
		if len(records) > opts.Count {
			records = records[:opts.Count]
		}

		for _, raw := range records {
			doc, err := transformer.Transform(ep.Name, raw)
			if err != nil {
				logger.Errorf("[%s] Transform error: %v", ep.Name, err)
				continue
			}
			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		}
	}

	return nil
}
