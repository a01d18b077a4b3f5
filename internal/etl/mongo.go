package etl

import (
	"context"
	"time"

	"github.com/BartekS5/connector/internal/metrics"
	"github.com/BartekS5/connector/pkg/logger"
	"github.com/BartekS5/connector/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLoader transforms raw records and bulk-writes them into one
// collection. With Upsert set, records that carry an id become
// upserts keyed on it; everything else is inserted.
type MongoLoader struct {
	Client      *mongo.Client
	Database    string
	Collection  string
	Endpoint    string
	Upsert      bool
	Transformer *Transformer
	Validator   *Validator
	Counter     metrics.Counter
}

func NewMongoLoader(client *mongo.Client, db, collection, endpoint string, upsert bool, config *models.MappingSchema, connectorName string) *MongoLoader {
	return &MongoLoader{
		Client:      client,
		Database:    db,
		Collection:  collection,
		Endpoint:    endpoint,
		Upsert:      upsert,
		Transformer: NewTransformer(config, connectorName),
		Validator:   NewValidator(config),
		Counter:     metrics.Noop(),
	}
}

func (m *MongoLoader) Load(ctx context.Context, data []map[string]interface{}) error {
	coll := m.Client.Database(m.Database).Collection(m.Collection)
	idField := m.Transformer.Config.IDStrategy.IDField()

	var writes []mongo.WriteModel
	for _, raw := range data {
		doc, err := m.Transformer.Transform(m.Endpoint, raw)
		if err != nil {
			logger.Errorf("Skipping record due to transform error: %v", err)
			m.Counter.Add(metrics.RecordsSkipped, 1)
			continue
		}
		if err := m.Validator.ValidateDocument(doc); err != nil {
			logger.Errorf("Skipping record due to validation error: %v", err)
			m.Counter.Add(metrics.RecordsSkipped, 1)
			continue
		}

		idVal, hasID := doc[idField]
		if m.Upsert && hasID && idVal != nil {
			filter := bson.M{idField: idVal}
			update := bson.M{"$set": doc}
			writes = append(writes, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true))
		} else {
			writes = append(writes, mongo.NewInsertOneModel().SetDocument(doc))
		}
	}

	if len(writes) > 0 {
		writeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		res, err := coll.BulkWrite(writeCtx, writes, options.BulkWrite().SetOrdered(false))
		if err != nil {
			return err
		}
		logger.Infof("Mongo BulkWrite into %s: Inserted %d, Match %d, Mod %d, Upsert %d",
			m.Collection, res.InsertedCount, res.MatchedCount, res.ModifiedCount, res.UpsertedCount)
	}
	return nil
}
