package location

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// newBreaker builds the circuit breaker shared by every lookup of one provider.
// It trips after five consecutive failures and probes again after a minute.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     1 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// doRequest executes the request once through the circuit breaker.
// There are no retries: a failed lookup is resolved by the caller's policy.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}

	req, err := buildRequest(ctx)
	if err != nil {
		return nil, err
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// Drain so the connection can be reused.
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
			default:
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
		}

		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}
