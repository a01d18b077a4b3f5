package etl

import (
	"fmt"
	"time"

	"github.com/BartekS5/connector/pkg/models"
	"github.com/BartekS5/connector/pkg/utils"
)

// ISO8601 is the timestamp format stamped onto every document.
const ISO8601 = "2006-01-02T15:04:05Z"

// Transformer turns a raw API record into the document stored in Mongo:
// optional field mapping with type conversion, an id per the mapping's
// strategy, and the connector envelope fields.
type Transformer struct {
	Config    *models.MappingSchema
	Connector string

	// now is swappable for tests.
	now func() time.Time
}

func NewTransformer(config *models.MappingSchema, connectorName string) *Transformer {
	return &Transformer{
		Config:    config,
		Connector: connectorName,
		now:       time.Now,
	}
}

// Transform builds the destination document for one raw record fetched
// from the named endpoint. With no field mapping configured the whole raw
// record passes through.
func (t *Transformer) Transform(endpoint string, raw map[string]interface{}) (map[string]interface{}, error) {
	var doc map[string]interface{}

	if len(t.Config.Fields) == 0 {
		doc = make(map[string]interface{}, len(raw)+3)
		for k, v := range raw {
			doc[k] = v
		}
	} else {
		doc = make(map[string]interface{}, len(t.Config.Fields)+3)
		for name, fieldCfg := range t.Config.Fields {
			val, exists := raw[fieldCfg.Source]
			if !exists {
				continue
			}
			converted, err := utils.ConvertValue(val, fieldCfg)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", name, err)
			}
			doc[fieldCfg.Mongo] = converted
		}
	}

	if err := t.applyID(endpoint, raw, doc); err != nil {
		return nil, err
	}

	doc["_connector"] = t.Connector
	doc["_source"] = endpoint
	doc["_ingested_at"] = t.now().UTC().Format(ISO8601)

	return doc, nil
}

func (t *Transformer) applyID(endpoint string, raw, doc map[string]interface{}) error {
	strat := t.Config.IDStrategy
	if strat.SourceField == "" {
		return nil
	}
	val, ok := raw[strat.SourceField]
	if !ok || val == nil {
		return fmt.Errorf("record has no value for id field %s", strat.SourceField)
	}
	id := fmt.Sprintf("%v", val)
	if strat.Prefix {
		id = endpoint + "_" + id
	}
	doc[strat.IDField()] = id
	return nil
}
