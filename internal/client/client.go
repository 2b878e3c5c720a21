package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jpillora/backoff"

	"github.com/kelsos/vaultboard/internal/config"
	"github.com/kelsos/vaultboard/internal/logger"
	"github.com/kelsos/vaultboard/internal/models"
)

// GraphQLClient handles all HTTP communication with the upstream GraphQL API
type GraphQLClient struct {
	endpoint     string
	httpClient   *http.Client
	requestDelay time.Duration
}

// NewGraphQLClient creates a new client with the given configuration
func NewGraphQLClient(cfg *config.Config) *GraphQLClient {
	return &GraphQLClient{
		endpoint:     cfg.GraphQLURL,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		requestDelay: cfg.RequestDelay,
	}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// Query executes a GraphQL query and decodes the data payload into T.
// Transient failures (connection error, timeout, 5xx) get a single retry
// with backoff; schema errors are surfaced verbatim and never retried.
func Query[T any](ctx context.Context, c *GraphQLClient, query string, variables map[string]interface{}) (*T, error) {
	b := &backoff.Backoff{
		Min:    1500 * time.Millisecond,
		Max:    3 * time.Second,
		Factor: 2,
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			delay := b.Duration()
			logger.Warn("Retrying GraphQL request in %v after transient error: %v", delay, lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, &TransportError{Err: ctx.Err()}
			}
		}

		result, err := execute[T](ctx, c, query, variables)
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

func execute[T any](ctx context.Context, c *GraphQLClient, query string, variables map[string]interface{}) (*T, error) {
	if c.requestDelay > 0 {
		select {
		case <-time.After(c.requestDelay):
		case <-ctx.Done():
			return nil, &TransportError{Err: ctx.Err()}
		}
	}

	start := time.Now()
	logger.Debug("Starting GraphQL request to %s", c.endpoint)

	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		logger.Error("Request to %s failed after %v: %v", c.endpoint, elapsed, err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	logger.Debug("Request to %s completed in %v with status %d", c.endpoint, elapsed, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logger.Error("%s: HTTP error %d: %s", c.endpoint, resp.StatusCode, string(bodyBytes))
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var envelope models.GraphQLEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		logger.Error("%s: Error decoding response: %v", c.endpoint, err)
		return nil, &SchemaError{Detail: fmt.Sprintf("undecodable response body: %v", err)}
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, gqlErr := range envelope.Errors {
			messages = append(messages, gqlErr.Message)
		}
		return nil, &SchemaError{Detail: fmt.Sprintf("%v", messages)}
	}

	var result T
	if err := json.Unmarshal(envelope.Data, &result); err != nil {
		return nil, &SchemaError{Detail: fmt.Sprintf("unexpected data shape: %v", err)}
	}

	return &result, nil
}
