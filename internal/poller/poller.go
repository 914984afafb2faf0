package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"pingboard/internal/models"
)

// StatusError is returned when the probe answers outside the 2xx range.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

// Poller issues one GET per fetch against the probe's ping endpoint.
type Poller struct {
	endpoint string
	client   *http.Client
}

// New creates a poller for endpoint. A zero timeout leaves the request bounded
// only by the transport and the caller's context.
func New(endpoint string, timeout time.Duration) *Poller {
	return &Poller{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the URL the poller fetches.
func (p *Poller) Endpoint() string {
	return p.endpoint
}

// Fetch performs exactly one request and returns the decoded JSON body.
func (p *Poller) Fetch(ctx context.Context) (models.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	// Unmarshal rejects trailing data after the first value.
	var body json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return models.Dataset(body), nil
}

// Message converts any fetch error into the text shown after "Error: ".
func Message(err error) string {
	if err == nil {
		return "unknown error"
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fmt.Sprintf("%#v", err)
}
