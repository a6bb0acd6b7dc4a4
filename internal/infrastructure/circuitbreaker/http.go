package circuitbreaker

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPClient wraps an HTTP client with circuit breaker protection
type HTTPClient struct {
	client  *http.Client
	breaker *CircuitBreaker
	log     *zap.Logger
}

// NewHTTPClient creates a new HTTP client with circuit breaker
func NewHTTPClient(client *http.Client, breaker *CircuitBreaker, log *zap.Logger) *HTTPClient {
	if client == nil {
		client = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	return &HTTPClient{
		client:  client,
		breaker: breaker,
		log:     log,
	}
}

// Do executes an HTTP request with circuit breaker protection
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	result, err := c.breaker.ExecuteCtx(req.Context(), func(ctx context.Context) (interface{}, error) {
		req = req.WithContext(ctx)
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}

		// Consider 5xx errors as failures for circuit breaker
		if resp.StatusCode >= 500 {
			return resp, fmt.Errorf("server error: %d", resp.StatusCode)
		}

		return resp, nil
	})

	if err != nil {
		if IsCircuitOpen(err) {
			c.log.Warn("Circuit breaker open, request blocked",
				zap.String("url", req.URL.String()),
				zap.String("breaker", c.breaker.Name()),
			)
		}
		if resp, ok := result.(*http.Response); ok && resp != nil {
			return resp, nil
		}
		return nil, err
	}

	return result.(*http.Response), nil
}

// Get performs a GET request with circuit breaker protection
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Post performs a POST request with circuit breaker protection
func (c *HTTPClient) Post(ctx context.Context, url string, contentType string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(req)
}
