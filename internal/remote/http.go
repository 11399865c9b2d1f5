package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// doJSON performs one HTTP exchange. Transport failures and 5xx answers
// come back as errors; any other status is returned to the typed client,
// which maps the statuses its operation expects and rejects the rest.
func doJSON(ctx context.Context, client *http.Client, method, url string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, fmt.Errorf("dependency returned status %d", resp.StatusCode)
	}

	if out != nil && resp.StatusCode < http.StatusMultipleChoices {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response body: %w", err)
		}
		return resp.StatusCode, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// errUnexpectedStatus flags an answer the operation has no mapping for. It
// surfaces as a plain error: the dependency was reachable, so the circuit
// is not charged, but the caller must not mistake the answer for success.
func errUnexpectedStatus(op string, status int) error {
	return fmt.Errorf("remote: %s returned unexpected status %d", op, status)
}

func joinURL(base string, parts ...string) string {
	url := strings.TrimRight(base, "/")
	for _, p := range parts {
		url += "/" + strings.Trim(p, "/")
	}
	return url
}
