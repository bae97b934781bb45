package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/logging"
)

// Transport delivers a batch of already masked entries.
type Transport interface {
	Send(ctx context.Context, entries []logging.Entry) error
}

// HTTPTransport posts batches to an ingest endpoint with a bearer token.
type HTTPTransport struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewHTTPTransport creates a transport for endpoint, the full URL of the
// ingest route.
func NewHTTPTransport(endpoint, token string) *HTTPTransport {
	return &HTTPTransport{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: constants.ClientHTTPTimeout},
	}
}

type ingestBody struct {
	Entries []logging.Entry `json:"entries"`
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ingest endpoint returned %d: %s", e.StatusCode, e.Body)
}

// Send posts entries in one request.
func (t *HTTPTransport) Send(ctx context.Context, entries []logging.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	payload, err := json.Marshal(ingestBody{Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(constants.HeaderContentType, constants.MIMEApplicationJSON)
	if t.token != "" {
		req.Header.Set(constants.HeaderAuthorization, constants.AuthSchemeBearer+" "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send entries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
