package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-gateway/internal/weather"
)

// AnalyticsReporter posts observations to the analytics service's /history endpoint.
type AnalyticsReporter struct {
	endpoint string
	http     HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

// NewAnalyticsReporter creates a reporter for the analytics service at baseURL.
func NewAnalyticsReporter(client *http.Client, baseURL string) *AnalyticsReporter {
	return &AnalyticsReporter{
		endpoint: strings.TrimRight(baseURL, "/") + "/history",
		http:     HTTPClientConfig{Name: "analytics", Client: client},
		circuit:  newBreaker("analytics"),
	}
}

// Report sends obs. The response body is ignored.
func (a *AnalyticsReporter) Report(ctx context.Context, obs weather.Observation) error {
	body, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("encode observation: %w", err)
	}

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, a.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	resp, err := doRequestWithBreaker(ctx, a.http, a.circuit, buildRequest)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

var _ weather.Reporter = (*AnalyticsReporter)(nil)
