// Package loki pushes telemetry events to a Loki instance as log lines.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"wtrfll/server/internal/telemetry"
)

const pushPath = "/loki/api/v1/push"

// Sink pushes events to Loki over its HTTP push API.
type Sink struct {
	url    string
	client *http.Client
	labels map[string]string
}

// NewSink returns a sink pushing to the Loki base URL (without the push
// path). The labels are attached to every stream.
func NewSink(baseURL string, labels map[string]string) *Sink {
	if labels == nil {
		labels = map[string]string{}
	}
	if _, ok := labels["app"]; !ok {
		labels["app"] = "wtrfll"
	}
	return &Sink{
		url:    baseURL + pushPath,
		client: &http.Client{Timeout: 10 * time.Second},
		labels: labels,
	}
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// Publish sends one event as a single-line stream entry.
func (s *Sink) Publish(ctx context.Context, e *telemetry.Event) error {
	line, err := json.Marshal(e)
	if err != nil {
		return err
	}
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	body, err := json.Marshal(pushRequest{Streams: []stream{{
		Stream: s.labels,
		Values: [][2]string{{strconv.FormatInt(at.UnixNano(), 10), string(line)}},
	}}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("loki push: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Close is a no-op; the sink holds no persistent connection state.
func (s *Sink) Close() error { return nil }
