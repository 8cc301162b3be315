// Package providers contains the six upstream adapters. Each adapter issues
// its provider's native request format and maps the typed response into the
// shared snapshot model; only the normalized Snapshot leaves this package.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/weatherwell/weathercore/internal/weather"
)

// backoffConfig controls exponential backoff between retries.
type backoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// httpConfig bundles the shared HTTP client with resilience settings.
type httpConfig struct {
	Client  *http.Client
	Backoff backoffConfig
}

// defaultHTTPConfig is the retry policy every adapter uses.
func defaultHTTPConfig(client *http.Client) httpConfig {
	return httpConfig{
		Client: client,
		Backoff: backoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
	}
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// doRequest executes an HTTP request with retries, exponential backoff and a
// circuit breaker. A non-2xx response is an error, never a result.
func doRequest(
	ctx context.Context,
	cfg httpConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				resp.Body.Close()
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				resp.Body.Close()
				return nil, errServerError
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= cfg.Backoff.MaxRetries {
			return nil, lastErr
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if cfg.Backoff.MaxInterval > 0 && delay > cfg.Backoff.MaxInterval {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

// fetchJSON runs doRequest and decodes the body into v. A decode failure is a
// typed provider failure for the caller, the same as transport errors.
func fetchJSON(
	ctx context.Context,
	cfg httpConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
	v interface{},
) error {
	resp, err := doRequest(ctx, cfg, cb, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(v)
}

// provErr wraps a failure as a typed *weather.ProviderError.
func provErr(provider, op string, err error) error {
	return &weather.ProviderError{Provider: provider, Op: op, Err: err}
}

// num parses a provider numeric that arrives as a JSON string (QWeather sends
// every metric this way). Missing or malformed values yield 0.
func num(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// orZero dereferences an optional numeric field; nil means the provider sent
// null or omitted the value.
func orZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// orDefault dereferences an optional numeric with a non-zero fallback, e.g.
// 1013 hPa for missing pressure.
func orDefault(f *float64, def float64) float64 {
	if f == nil {
		return def
	}
	return *f
}

// ymd formats a date the way provider query strings expect it.
func ymd(t time.Time) string {
	return t.Format("2006-01-02")
}

// flexNumber decodes a JSON number that some providers quote as a string
// (WeatherAPI's moon_illumination has shipped both ways). Malformed input
// decodes to 0 rather than failing the whole snapshot.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexNumber(f)
	return nil
}
