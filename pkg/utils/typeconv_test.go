package utils

import (
	"testing"
	"time"

	"github.com/BartekS5/connector/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertValue(t *testing.T) {
	intCfg := models.FieldConfig{Type: "int"}
	got, err := ConvertValue(float64(42), intCfg)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = ConvertValue("17", intCfg)
	require.NoError(t, err)
	assert.Equal(t, 17, got)

	got, err = ConvertValue(float64(99), models.FieldConfig{Type: "string"})
	require.NoError(t, err)
	assert.Equal(t, "99", got)

	got, err = ConvertValue("true", models.FieldConfig{Type: "bool"})
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = ConvertValue("3.5", models.FieldConfig{Type: "float"})
	require.NoError(t, err)
	assert.Equal(t, 3.5, got)

	// Unknown type passes through.
	got, err = ConvertValue("raw", models.FieldConfig{})
	require.NoError(t, err)
	assert.Equal(t, "raw", got)

	// nil stays nil whatever the type.
	got, err = ConvertValue(nil, intCfg)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConvertDateTime(t *testing.T) {
	want := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	got, err := ConvertDateTime("2026-01-02T15:04:05Z", "")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = ConvertDateTime("2026-01-02 15:04:05", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC), got)

	// Unix seconds arrive as float64 from JSON.
	got, err = ConvertDateTime(float64(want.Unix()), "")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Custom format takes priority.
	got, err = ConvertDateTime("02/01/2026", "02/01/2006")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), got)

	_, err = ConvertDateTime("not a date", "")
	require.Error(t, err)
}

func TestConvertToInt(t *testing.T) {
	for _, v := range []interface{}{7, int32(7), int64(7), float64(7), "7", []byte("7")} {
		got, err := ConvertToInt(v)
		require.NoError(t, err, "%T", v)
		assert.Equal(t, 7, got)
	}

	_, err := ConvertToInt(struct{}{})
	require.Error(t, err)
}

func TestGetIntOffset(t *testing.T) {
	assert.Equal(t, 0, GetIntOffset(nil))
	assert.Equal(t, 0, GetIntOffset(""))
	assert.Equal(t, 0, GetIntOffset("garbage"))
	assert.Equal(t, 25, GetIntOffset("25"))
	assert.Equal(t, 25, GetIntOffset(25))
}

func TestLookupPath(t *testing.T) {
	doc := map[string]interface{}{
		"meta": map[string]interface{}{
			"paging": map[string]interface{}{"next": "tok-3"},
		},
		"data": []interface{}{1, 2},
	}

	got, ok := LookupPath(doc, "meta.paging.next")
	require.True(t, ok)
	assert.Equal(t, "tok-3", got)

	got, ok = LookupPath(doc, "data")
	require.True(t, ok)
	assert.Equal(t, []interface{}{1, 2}, got)

	// Empty path returns the document itself.
	got, ok = LookupPath(doc, "")
	require.True(t, ok)
	assert.Equal(t, doc, got)

	_, ok = LookupPath(doc, "meta.missing")
	assert.False(t, ok)

	// Descending through a non-object fails.
	_, ok = LookupPath(doc, "data.next")
	assert.False(t, ok)
}
