package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BartekS5/connector/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConvertValue coerces a raw JSON value into the Mongo-side type declared
// by the field config. Unknown types pass through unchanged.
func ConvertValue(val interface{}, cfg models.FieldConfig) (interface{}, error) {
	if val == nil {
		return nil, nil
	}
	switch cfg.Type {
	case "datetime":
		return ConvertDateTime(val, cfg.Format)
	case "int":
		return ConvertToInt(val)
	case "float":
		return ConvertToFloat(val)
	case "bool":
		return ConvertToBool(val)
	case "string", "enum":
		return fmt.Sprintf("%v", val), nil
	default:
		return val, nil
	}
}

// GetIntOffset safely converts an opaque cursor to int, defaulting to 0.
func GetIntOffset(v interface{}) int {
	if v == nil {
		return 0
	}
	val, err := ConvertToInt(v)
	if err != nil {
		return 0
	}
	return val
}

func ConvertDateTime(val interface{}, format string) (interface{}, error) {
	switch v := val.(type) {
	case time.Time:
		return v, nil
	case primitive.DateTime:
		return v.Time(), nil
	case float64:
		// JSON numbers arrive as float64; treat as Unix seconds.
		return time.Unix(int64(v), 0).UTC(), nil
	case string:
		formats := []string{
			time.RFC3339,
			time.RFC3339Nano,
			"2006-01-02T15:04:05Z07:00",
			"2006-01-02 15:04:05",
			"2006-01-02",
		}
		if format != "" {
			formats = append([]string{format}, formats...)
		}
		for _, f := range formats {
			if t, err := time.Parse(f, v); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("unable to parse datetime: %s", v)
	default:
		return val, nil
	}
}

func ConvertToInt(val interface{}) (int, error) {
	switch v := val.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	case []byte:
		return strconv.Atoi(string(v))
	default:
		return 0, fmt.Errorf("cannot convert %T to int", val)
	}
}

func ConvertToFloat(val interface{}) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float", val)
	}
}

func ConvertToBool(val interface{}) (bool, error) {
	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot convert %T to bool", val)
	}
}

// LookupPath walks a dot-separated path through nested JSON objects.
// An empty path returns the document itself.
func LookupPath(doc interface{}, path string) (interface{}, bool) {
	if path == "" {
		return doc, true
	}
	cur := doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
