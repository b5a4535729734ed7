package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/plaidlibs/pkg/engine"
)

type sessionResponse struct {
	ID    uuid.UUID   `json:"id"`
	View  engine.View `json:"view"`
	Error string      `json:"error,omitempty"`
}

// call sends body as JSON and decodes a session response. Non-2xx responses that
// still carry a view are returned with their status and no error.
func call(ctx context.Context, client *http.Client, method, url string, body any) (sessionResponse, int, error) {
	var out sessionResponse
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return out, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return out, 0, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return out, 0, fmt.Errorf("failed to execute %s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, resp.StatusCode, fmt.Errorf("status %d with undecodable body: %s", resp.StatusCode, string(raw))
	}
	return out, resp.StatusCode, nil
}

// download fetches a session export and returns its status and body size.
func download(ctx context.Context, client *http.Client, url string) (int, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	n, err := io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, int(n), err
}
