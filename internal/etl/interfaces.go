package etl

import "context"

// Extractor fetches one batch of raw records. cursor is the opaque
// pagination position ("" starts from the beginning). The returned cursor
// points at the next batch; "" means the source is exhausted.
type Extractor interface {
	Extract(ctx context.Context, batchSize int, cursor string) ([]map[string]interface{}, string, error)
}

// Loader writes a batch of raw records to the destination.
type Loader interface {
	Load(ctx context.Context, data []map[string]interface{}) error
}
