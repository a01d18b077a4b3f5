package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/BartekS5/connector/internal/api"
	"github.com/BartekS5/connector/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id int) map[string]interface{} {
	return map[string]interface{}{"id": fmt.Sprintf("r%d", id)}
}

func TestRESTExtractor_OffsetPagination(t *testing.T) {
	all := []map[string]interface{}{record(0), record(1), record(2), record(3), record(4)}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		end := offset + limit
		if end > len(all) {
			end = len(all)
		}
		page := all[offset:end]
		json.NewEncoder(w).Encode(map[string]interface{}{"data": page})
	}))
	defer srv.Close()

	ex := NewRESTExtractor(api.New(srv.URL), models.EndpointConfig{
		Name:     "items",
		Path:     "/items",
		DataPath: "data",
		Pagination: models.PaginationConfig{
			Style:       models.PaginationOffset,
			OffsetParam: "offset",
			LimitParam:  "limit",
		},
	}, time.Time{})

	ctx := context.Background()

	page1, next, err := ex.Extract(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "r0", page1[0]["id"])
	assert.Equal(t, "2", next)

	page2, next, err := ex.Extract(ctx, 2, next)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "r2", page2[0]["id"])
	assert.Equal(t, "4", next)

	// Short page ends the source.
	page3, next, err := ex.Extract(ctx, 2, next)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, "r4", page3[0]["id"])
	assert.Equal(t, "", next)
}

func TestRESTExtractor_PagePagination(t *testing.T) {
	var gotPages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		gotPages = append(gotPages, page)
		if page == "1" {
			json.NewEncoder(w).Encode([]map[string]interface{}{record(0), record(1)})
			return
		}
		json.NewEncoder(w).Encode([]map[string]interface{}{record(2)})
	}))
	defer srv.Close()

	// Empty dataPath: the response body itself is the array.
	ex := NewRESTExtractor(api.New(srv.URL), models.EndpointConfig{
		Name: "items",
		Path: "/items",
		Pagination: models.PaginationConfig{
			Style:     models.PaginationPage,
			PageParam: "page",
		},
	}, time.Time{})

	ctx := context.Background()

	page1, next, err := ex.Extract(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "2", next)

	page2, next, err := ex.Extract(ctx, 2, next)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "", next)

	assert.Equal(t, []string{"1", "2"}, gotPages)
}

func TestRESTExtractor_CursorPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("next_token") {
		case "":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"items": []map[string]interface{}{record(0)},
				"meta":  map[string]interface{}{"next_token": "tok-2"},
			})
		case "tok-2":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"items": []map[string]interface{}{record(1)},
				"meta":  map[string]interface{}{},
			})
		default:
			t.Errorf("unexpected token %q", r.URL.Query().Get("next_token"))
		}
	}))
	defer srv.Close()

	ex := NewRESTExtractor(api.New(srv.URL), models.EndpointConfig{
		Name:     "items",
		Path:     "/items",
		DataPath: "items",
		Pagination: models.PaginationConfig{
			Style:       models.PaginationCursor,
			CursorParam: "next_token",
			CursorPath:  "meta.next_token",
		},
	}, time.Time{})

	ctx := context.Background()

	page1, next, err := ex.Extract(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, page1, 1)
	assert.Equal(t, "tok-2", next)

	page2, next, err := ex.Extract(ctx, 10, next)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "", next)
}

func TestRESTExtractor_SinceAndFixedParams(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []map[string]interface{}{}})
	}))
	defer srv.Close()

	since := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	ex := NewRESTExtractor(api.New(srv.URL), models.EndpointConfig{
		Name:       "items",
		Path:       "/items",
		DataPath:   "data",
		SinceParam: "updated_since",
		Params:     map[string]string{"status": "active"},
		Pagination: models.PaginationConfig{Style: models.PaginationNone},
	}, since)

	_, next, err := ex.Extract(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Equal(t, "", next)
	assert.Equal(t, "2026-01-02T15:04:05Z", gotQuery["updated_since"][0])
	assert.Equal(t, "active", gotQuery["status"][0])
}

func TestRESTExtractor_BadDataPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	ex := NewRESTExtractor(api.New(srv.URL), models.EndpointConfig{
		Name:       "items",
		Path:       "/items",
		DataPath:   "data",
		Pagination: models.PaginationConfig{Style: models.PaginationNone},
	}, time.Time{})

	_, _, err := ex.Extract(context.Background(), 10, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data at path")
}

func TestRESTExtractor_NonArrayData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"oops":true}}`))
	}))
	defer srv.Close()

	ex := NewRESTExtractor(api.New(srv.URL), models.EndpointConfig{
		Name:       "items",
		Path:       "/items",
		DataPath:   "data",
		Pagination: models.PaginationConfig{Style: models.PaginationNone},
	}, time.Time{})

	_, _, err := ex.Extract(context.Background(), 10, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a JSON array")
}
