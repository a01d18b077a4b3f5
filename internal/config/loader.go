package config

import (
	"fmt"
	"os"

	"github.com/BartekS5/connector/pkg/models"
)

// LoadMapping reads and parses the mapping file from the given path.
func LoadMapping(filePath string) (*models.MappingSchema, error) {
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file '%s': %w", filePath, err)
	}

	schema, err := models.LoadMapping(bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file '%s': %w", filePath, err)
	}

	return schema, nil
}
