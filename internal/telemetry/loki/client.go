// Package loki pushes lifecycle events to Grafana Loki.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// defaultJob is the job label on every stream.
const defaultJob = "storefront-auth"

// PushRequest is the Loki push API request body (v1).
type PushRequest struct {
	Streams []Stream `json:"streams"`
}

// Stream is a single stream with labels and log entries.
type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"` // each entry is [timestamp_ns, log_line]
}

// labelSanitize replaces characters we keep out of label values.
var labelSanitize = regexp.MustCompile(`[^a-zA-Z0-9_\-:.]`)

// eventFields are the parts of a telemetry event JSON used for labels and timestamp.
// account_id is left in the line only; per-account labels would explode stream cardinality.
type eventFields struct {
	EventType string    `json:"event_type"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Client pushes log lines to one Loki instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient returns a Client for baseURL (e.g. http://localhost:3100). A nil httpClient uses a 10s timeout client.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("loki: base URL is empty")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, now: time.Now}, nil
}

// PushEventJSON pushes a telemetry event (a Kafka message value) with labels taken from it.
// Unparseable input is pushed verbatim at the current time with only the job label.
func (c *Client) PushEventJSON(ctx context.Context, raw []byte) error {
	labels := map[string]string{}
	ts := c.now().UTC()
	var f eventFields
	if err := json.Unmarshal(raw, &f); err == nil {
		if f.EventType != "" {
			labels["event_type"] = f.EventType
		}
		if f.Source != "" {
			labels["source"] = f.Source
		}
		if !f.CreatedAt.IsZero() {
			ts = f.CreatedAt
		}
	}
	return c.PushEvent(ctx, ts, string(raw), labels)
}

// PushEvent sends one line at timestamp with the given stream labels.
// Returns an error if the request fails or Loki answers non-2xx.
func (c *Client) PushEvent(ctx context.Context, timestamp time.Time, line string, labels map[string]string) error {
	streamLabels := make(map[string]string, len(labels)+1)
	streamLabels["job"] = defaultJob
	for k, v := range labels {
		if s := labelSanitize.ReplaceAllString(strings.TrimSpace(v), "_"); s != "" {
			streamLabels[k] = s
		}
	}
	payload, err := json.Marshal(PushRequest{
		Streams: []Stream{{
			Stream: streamLabels,
			Values: [][]string{{strconv.FormatInt(timestamp.UnixNano(), 10), line}},
		}},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/loki/api/v1/push", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("loki: push returned %s", resp.Status)
	}
	return nil
}
