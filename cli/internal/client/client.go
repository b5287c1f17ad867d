// Package client is a thin HTTP client for the pipeline services.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the ingestor and processor HTTP APIs.
type Client struct {
	ingestorURL  string
	processorURL string
	client       *http.Client
}

// IngestResponse is the ingestor's acceptance receipt.
type IngestResponse struct {
	Message   string `json:"message"`
	EventID   string `json:"event_id"`
	Timestamp string `json:"timestamp"`
}

// MetricRow is one aggregated bucket from the processor's metrics endpoint.
// Field tags follow the processor's serialization of store.MetricRow.
type MetricRow struct {
	EventType string `json:"event_type"`
	Severity  string `json:"severity"`
	Total     int64  `json:"total_events"`
	Processed int64  `json:"processed"`
	Failed    int64  `json:"failed"`
}

// MetricsResponse is the processor's windowed aggregation.
type MetricsResponse struct {
	WindowSeconds int64       `json:"window_seconds"`
	Metrics       []MetricRow `json:"metrics"`
}

func New(ingestorURL, processorURL string) *Client {
	return &Client{
		ingestorURL:  ingestorURL,
		processorURL: processorURL,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

// SendEvent posts one raw event to the ingestion endpoint.
func (c *Client) SendEvent(event map[string]interface{}) (*IngestResponse, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.ingestorURL+"/api/events", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("ingest failed with status %d: %s", resp.StatusCode, readError(resp.Body))
	}

	var out IngestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Metrics fetches the windowed aggregation from the processor.
func (c *Client) Metrics() (*MetricsResponse, error) {
	resp, err := c.client.Get(c.processorURL + "/metrics")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metrics request failed with status %d: %s", resp.StatusCode, readError(resp.Body))
	}

	var out MetricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health probes a service health endpoint and returns its body.
func (c *Client) Health(baseURL string) (map[string]interface{}, error) {
	resp, err := c.client.Get(baseURL + "/health")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return out, nil
}

// readError extracts the error message from a JSON error body, falling back
// to the raw body text.
func readError(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no response body"
	}
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return body.Error
	}
	return string(bytes.TrimSpace(data))
}
