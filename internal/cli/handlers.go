package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/BartekS5/connector/internal/api"
	"github.com/BartekS5/connector/internal/checkpoint"
	"github.com/BartekS5/connector/internal/config"
	"github.com/BartekS5/connector/internal/etl"
	"github.com/BartekS5/connector/internal/metrics"
	"github.com/BartekS5/connector/pkg/database"
	"github.com/BartekS5/connector/pkg/logger"
	"golang.org/x/sync/errgroup"
)

func runSync(ctx context.Context, opts *RunOptions) error {
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

	pageSize := cfg.PageSize
	if opts.PageSize > 0 {
		pageSize = opts.PageSize
	}

	if opts.LogFile != "" {
		if err := logger.InitLogger(opts.LogFile); err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer logger.Close()
	}

	var counter metrics.Counter = metrics.Noop()
	if opts.MetricsAddr != "" {
		counter = metrics.NewPrometheus(nil)
		metrics.Serve(opts.MetricsAddr)
	}

	client := newAPIClient(cfg, counter)

	store, closeStore, err := newCheckpointStore(opts.Checkpoint, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var loaders map[string]etl.Loader
	if !opts.DryRun {
		mongoClient, err := database.ConnectMongo(cfg.MongoURI)
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoClient.Disconnect(disconnectCtx)
		}()

		loaders = make(map[string]etl.Loader, len(schema.Endpoints))
		for _, ep := range schema.Endpoints {
			coll := schema.CollectionFor(cfg.ConnectorName, ep.Name)
			loader := etl.NewMongoLoader(mongoClient, cfg.MongoDB, coll, ep.Name, opts.Upsert, schema, cfg.ConnectorName)
			loader.Counter = counter
			loaders[ep.Name] = loader
		}
	}

	logger.Infof("Starting sync for connector %q: %d endpoint(s), page size %d", cfg.ConnectorName, len(schema.Endpoints), pageSize)

	g, gctx := errgroup.WithContext(ctx)
	for _, ep := range schema.Endpoints {
		pipeline := &etl.Pipeline{
			Extractor:   etl.NewRESTExtractor(client, ep, since),
			Loader:      loaders[ep.Name],
			Checkpoints: store,
			Counter:     counter,
			Connector:   cfg.ConnectorName,
			Endpoint:    ep.Name,
			BatchSize:   pageSize,
			Limit:       opts.Limit,
			DryRun:      opts.DryRun,
		}
		g.Go(func() error {
			return pipeline.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Infof("Sync finished successfully.")
	return nil
}

func newAPIClient(cfg *config.Config, counter metrics.Counter) *api.Client {
	opts := []api.Option{
		api.WithRetryHook(func(status int) {
			counter.Add(metrics.APIRetries, 1)
			logger.Warnf("Retrying API request after HTTP %d", status)
		}),
	}
	if cfg.APIToken != "" {
		opts = append(opts, api.WithBearerToken(cfg.APIToken))
	} else if cfg.APIKey != "" {
		opts = append(opts, api.WithAPIKey(cfg.APIKey))
	}
	return api.New(cfg.APIBaseURL, opts...)
}

func newCheckpointStore(kind string, cfg *config.Config) (checkpoint.Store, func(), error) {
	noop := func() {}
	switch kind {
	case "file", "":
		return checkpoint.NewFile(""), noop, nil
	case "memory":
		return checkpoint.NewMemory(), noop, nil
	case "redis":
		store, err := checkpoint.NewRedis(cfg.ConnectorName, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect redis checkpoint store: %w", err)
		}
		return store, noop, nil
	case "sqlserver":
		if cfg.SQLConnString == "" {
			return nil, nil, fmt.Errorf("sqlserver checkpoint store requires SQL_CONNECTION_STRING")
		}
		db, err := database.ConnectSQL(cfg.SQLConnString)
		if err != nil {
			return nil, nil, err
		}
		store, err := checkpoint.NewSQLServer(db, "")
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown checkpoint store %q", kind)
	}
}

func parseSince(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since value %q (expected ISO8601, e.g. 2026-01-02T15:04:05Z): %w", raw, err)
	}
	return t, nil
}
