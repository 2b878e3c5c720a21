package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/vaultboard/internal/config"
)

type pingData struct {
	Value string `json:"value"`
}

func newTestClient(url string) *GraphQLClient {
	cfg := config.NewConfig()
	cfg.GraphQLURL = url
	return NewGraphQLClient(cfg)
}

func TestQueryDecodesData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"data":{"value":"pong"}}`))
	}))
	defer server.Close()

	result, err := Query[pingData](context.Background(), newTestClient(server.URL), "query {}", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", result.Value)
}

func TestQueryRetriesTransientFailureOnce(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":{"value":"pong"}}`))
	}))
	defer server.Close()

	result, err := Query[pingData](context.Background(), newTestClient(server.URL), "query {}", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", result.Value)
	assert.Equal(t, int32(2), requests.Load())
}

func TestQueryGivesUpAfterSingleRetry(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := Query[pingData](context.Background(), newTestClient(server.URL), "query {}", nil)
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
	assert.Equal(t, int32(2), requests.Load())
}

func TestQuerySchemaErrorIsNotRetried(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`{"errors":[{"message":"unknown field netApy"}]}`))
	}))
	defer server.Close()

	_, err := Query[pingData](context.Background(), newTestClient(server.URL), "query {}", nil)
	require.Error(t, err)

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Detail, "unknown field netApy")
	assert.Equal(t, int32(1), requests.Load())
}

func TestQueryClientErrorIsNotRetried(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := Query[pingData](context.Background(), newTestClient(server.URL), "query {}", nil)
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.False(t, IsRetryable(err))
	assert.Equal(t, int32(1), requests.Load())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "connection failure", err: &TransportError{Err: errors.New("refused")}, retryable: true},
		{name: "500", err: &TransportError{StatusCode: 500}, retryable: true},
		{name: "504", err: &TransportError{StatusCode: 504}, retryable: true},
		{name: "404", err: &TransportError{StatusCode: 404}, retryable: false},
		{name: "schema error", err: &SchemaError{Detail: "bad payload"}, retryable: false},
		{name: "plain error", err: errors.New("boom"), retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}
