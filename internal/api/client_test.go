package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"threatfox","count":2}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	var dest struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	err := c.GetJSON(context.Background(), "/feed", nil, &dest)
	require.NoError(t, err)
	assert.Equal(t, "threatfox", dest.Name)
	assert.Equal(t, 2, dest.Count)
}

func TestGetJSON_BearerAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithBearerToken("secret-token"))
	require.NoError(t, c.GetJSON(context.Background(), "/", nil, &struct{}{}))
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestGetJSON_APIKeyAuth(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithAPIKey("key-123"))
	require.NoError(t, c.GetJSON(context.Background(), "/", nil, &struct{}{}))
	assert.Equal(t, "key-123", gotKey)
}

func TestGetJSON_QueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	q := url.Values{}
	q.Set("offset", "100")
	q.Set("limit", "50")
	require.NoError(t, c.GetJSON(context.Background(), "/items", q, &struct{}{}))
	// url.Values.Encode sorts keys alphabetically
	assert.Equal(t, "limit=50&offset=100", gotQuery)
}

func TestGetJSON_ClientError_NoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.GetJSON(context.Background(), "/bad", nil, &struct{}{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, `{"error":"bad request"}`, apiErr.Body)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSON_ServerError_Retries(t *testing.T) {
	var calls atomic.Int32
	var retries atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetryHook(func(status int) {
		assert.Equal(t, http.StatusInternalServerError, status)
		retries.Add(1)
	}))
	var dest struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.GetJSON(context.Background(), "/flaky", nil, &dest))
	assert.True(t, dest.OK)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(1), retries.Load())
}

func TestGetJSON_RateLimit_RetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.GetJSON(context.Background(), "/limited", nil, &struct{}{}))
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetJSON_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.URL)
	err := c.GetJSON(ctx, "/down", nil, &struct{}{})
	require.ErrorIs(t, err, context.Canceled)
}
