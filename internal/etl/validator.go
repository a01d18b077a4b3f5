package etl

import (
	"fmt"

	"github.com/BartekS5/connector/pkg/models"
)

type Validator struct {
	Config *models.MappingSchema
}

func NewValidator(config *models.MappingSchema) *Validator {
	return &Validator{Config: config}
}

// ValidateDocument checks that the transformed document carries its id
// (when an id strategy is configured) and every field the mapping marks
// as required.
func (v *Validator) ValidateDocument(doc map[string]interface{}) error {
	if v.Config.IDStrategy.SourceField != "" {
		idField := v.Config.IDStrategy.IDField()
		if _, ok := doc[idField]; !ok {
			return fmt.Errorf("missing required ID field: %s", idField)
		}
	}

	for _, field := range v.Config.Required {
		val, ok := doc[field]
		if !ok || val == nil {
			return fmt.Errorf("missing required field: %s", field)
		}
	}
	return nil
}
