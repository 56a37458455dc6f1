package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/maorga/beacon/internal/domain"
	"github.com/maorga/beacon/internal/ports"
)

// DefaultEndpoint is the GA4 Measurement Protocol collection endpoint.
const DefaultEndpoint = "https://www.google-analytics.com/mp/collect"

// DefaultTimeout bounds a single delivery attempt on the wire.
const DefaultTimeout = 5 * time.Second

// engagementTimeMsec is the engagement value GA4 requires for an event to
// count toward engaged sessions.
const engagementTimeMsec = 100

// GA4Config holds the credentials and tuning for a GA4Sink.
type GA4Config struct {
	Endpoint      string
	MeasurementID string
	APISecret     string
	ClientID      string
	Timeout       time.Duration
}

// GA4Sink delivers events to the Google Analytics 4 Measurement Protocol.
type GA4Sink struct {
	url    string
	client *http.Client
	body   func(e *domain.Event) mpPayload
}

// mpPayload and mpEvent mirror the Measurement Protocol request shape.
type mpPayload struct {
	ClientID string    `json:"client_id"`
	Events   []mpEvent `json:"events"`
}

type mpEvent struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// NewGA4Sink builds a sink posting to cfg.Endpoint with the measurement id
// and api secret as query parameters. now is the clock used for session ids;
// nil means time.Now.
func NewGA4Sink(cfg GA4Config, now func() time.Time) *GA4Sink {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if now == nil {
		now = time.Now
	}

	query := url.Values{
		"measurement_id": {cfg.MeasurementID},
		"api_secret":     {cfg.APISecret},
	}

	return &GA4Sink{
		url:    cfg.Endpoint + "?" + query.Encode(),
		client: &http.Client{Timeout: cfg.Timeout},
		body: func(e *domain.Event) mpPayload {
			params := make(map[string]any, len(e.Params)+2)
			for k, v := range e.Params {
				params[k] = v
			}
			params["engagement_time_msec"] = engagementTimeMsec
			params["session_id"] = now().Unix()
			return mpPayload{
				ClientID: cfg.ClientID,
				Events:   []mpEvent{{Name: e.Name, Params: params}},
			}
		},
	}
}

// Deliver posts one event. GA4 signals acceptance with 204 No Content; any
// other status is an error and the caller discards the event.
func (s *GA4Sink) Deliver(ctx context.Context, e *domain.Event) error {
	raw, err := json.Marshal(s.body(e))
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("collector responded %s", resp.Status)
	}
	return nil
}

func (s *GA4Sink) Name() string { return "ga4" }

var _ ports.Sink = (*GA4Sink)(nil)
