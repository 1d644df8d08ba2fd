package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultRetryDelays are the waits before the second, third and fourth attempt.
var DefaultRetryDelays = []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

// Client sends jobs to one sandbox instance.
type Client struct {
	http    *http.Client
	baseURL string
	logger  *zap.SugaredLogger
	delays  []time.Duration
}

// NewClient creates a client for the sandbox listening on address.
func NewClient(httpClient *http.Client, address string, logger *zap.SugaredLogger, delays []time.Duration) *Client {
	if !strings.HasPrefix(address, "http://") && !strings.HasPrefix(address, "https://") {
		address = "http://" + address
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimSuffix(address, "/"),
		logger:  logger,
		delays:  delays,
	}
}

func isRetryableError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "connection reset by peer")
}

// Send delivers job and returns the response status. Any HTTP response counts
// as delivered; only transient transport errors are retried.
func (c *Client) Send(ctx context.Context, job Job) (int, error) {
	var lastErr error

	for attempt := 0; attempt <= len(c.delays); attempt++ {
		if attempt > 0 {
			delay := c.delays[attempt-1]
			c.logger.Debugw("retrying request", "attempt", attempt, "delay", delay, "path", job.Path)
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(delay):
			}
		}

		status, err := c.do(ctx, job)
		if err == nil {
			return status, nil
		}
		lastErr = err
		if ctx.Err() != nil || !isRetryableError(err) {
			return 0, lastErr
		}
		c.logger.Debugw("retryable error occurred", "error", err)
	}

	return 0, fmt.Errorf("failed to send request after %d attempts: %w", len(c.delays)+1, lastErr)
}

func (c *Client) do(ctx context.Context, job Job) (int, error) {
	var body io.Reader
	if job.Form != nil {
		body = strings.NewReader(job.Form.Encode())
	}

	request, err := http.NewRequestWithContext(ctx, job.Method, c.baseURL+job.Path, body)
	if err != nil {
		return 0, fmt.Errorf("error creating request for %s: %w", job.Path, err)
	}
	if job.Form != nil {
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	response, err := c.http.Do(request)
	if err != nil {
		return 0, fmt.Errorf("error sending request for %s: %w", job.Path, err)
	}
	defer response.Body.Close()

	if _, err := io.Copy(io.Discard, response.Body); err != nil {
		return 0, fmt.Errorf("error reading response body: %w", err)
	}
	return response.StatusCode, nil
}
