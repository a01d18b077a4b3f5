package models

import (
	"encoding/json"
	"fmt"
)

// Pagination styles supported by the REST extractor.
const (
	PaginationOffset = "offset"
	PaginationPage   = "page"
	PaginationCursor = "cursor"
	PaginationNone   = "none"
)

// MappingSchema represents the root of the JSON mapping file. It describes
// the upstream API (endpoints and how they paginate) and how raw records
// become MongoDB documents.
type MappingSchema struct {
	Entity     string                 `json:"entity"`
	Collection string                 `json:"collection,omitempty"`
	Endpoints  []EndpointConfig       `json:"endpoints"`
	IDStrategy IDStrategy             `json:"idStrategy"`
	Fields     map[string]FieldConfig `json:"fields,omitempty"`
	Required   []string               `json:"required,omitempty"`
}

// EndpointConfig describes one REST endpoint to pull from.
type EndpointConfig struct {
	Name       string            `json:"name"`
	Path       string            `json:"path"`
	DataPath   string            `json:"dataPath,omitempty"`
	SinceParam string            `json:"sinceParam,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
	Pagination PaginationConfig  `json:"pagination"`
}

// PaginationConfig selects the pagination style and the query/response
// fields it is driven by.
type PaginationConfig struct {
	Style       string `json:"style"`
	LimitParam  string `json:"limitParam,omitempty"`
	OffsetParam string `json:"offsetParam,omitempty"`
	PageParam   string `json:"pageParam,omitempty"`
	CursorParam string `json:"cursorParam,omitempty"`
	CursorPath  string `json:"cursorPath,omitempty"`
	StartPage   int    `json:"startPage,omitempty"`
}

// IDStrategy controls how the Mongo _id is derived from a raw record.
// When Prefix is set the endpoint name is prepended, so ids from different
// endpoints never collide in a shared collection.
type IDStrategy struct {
	SourceField string `json:"sourceField,omitempty"`
	MongoField  string `json:"mongoField,omitempty"`
	Prefix      bool   `json:"prefix,omitempty"`
}

// FieldConfig maps one source field to one document field.
type FieldConfig struct {
	Source string `json:"source"`
	Mongo  string `json:"mongo"`
	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"`
}

func LoadMapping(data []byte) (*MappingSchema, error) {
	var m MappingSchema
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// IDField returns the document field the id strategy writes to,
// defaulting to "_id".
func (s IDStrategy) IDField() string {
	if s.MongoField != "" {
		return s.MongoField
	}
	return "_id"
}

// CollectionFor returns the destination collection for an endpoint. A
// single-endpoint mapping writes to "<connector>_raw"; with several
// endpoints each gets "<connector>_<endpoint>_raw". An explicit
// "collection" in the mapping overrides both.
func (m *MappingSchema) CollectionFor(connectorName, endpointName string) string {
	if m.Collection != "" {
		return m.Collection
	}
	if len(m.Endpoints) > 1 {
		return fmt.Sprintf("%s_%s_raw", connectorName, endpointName)
	}
	return fmt.Sprintf("%s_raw", connectorName)
}

// Validate checks the schema for problems that would otherwise only
// surface mid-run.
func (m *MappingSchema) Validate() error {
	if len(m.Endpoints) == 0 {
		return fmt.Errorf("mapping defines no endpoints")
	}
	seen := make(map[string]bool, len(m.Endpoints))
	for i, ep := range m.Endpoints {
		if ep.Name == "" {
			return fmt.Errorf("endpoint %d: missing name", i)
		}
		if seen[ep.Name] {
			return fmt.Errorf("endpoint %q: duplicate name", ep.Name)
		}
		seen[ep.Name] = true
		if ep.Path == "" {
			return fmt.Errorf("endpoint %q: missing path", ep.Name)
		}
		if err := ep.Pagination.validate(); err != nil {
			return fmt.Errorf("endpoint %q: %w", ep.Name, err)
		}
	}
	for name, f := range m.Fields {
		if f.Source == "" || f.Mongo == "" {
			return fmt.Errorf("field %q: both source and mongo are required", name)
		}
	}
	return nil
}

func (p PaginationConfig) validate() error {
	switch p.Style {
	case PaginationOffset:
		if p.OffsetParam == "" {
			return fmt.Errorf("offset pagination requires offsetParam")
		}
	case PaginationPage:
		if p.PageParam == "" {
			return fmt.Errorf("page pagination requires pageParam")
		}
	case PaginationCursor:
		if p.CursorParam == "" || p.CursorPath == "" {
			return fmt.Errorf("cursor pagination requires cursorParam and cursorPath")
		}
	case PaginationNone, "":
	default:
		return fmt.Errorf("unknown pagination style %q", p.Style)
	}
	return nil
}
