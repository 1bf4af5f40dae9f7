package mpath

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RawResponse is one platform reply as observed on the wire, before any
// transformation. Callers persist it for audit and replay.
type RawResponse struct {
	StatusCode  int
	APIStatus   int
	Body        []byte
	Endpoint    string
	RequestedAt time.Time
}

// envelope is the platform's reply wrapper. status 1 means success, -1 a
// transient platform-side failure; the payload key depends on the resource.
type envelope struct {
	Status       int              `json:"status"`
	Clients      []map[string]any `json:"clients"`
	Data         []map[string]any `json:"data"`
	Interactions []map[string]any `json:"interactions"`
	Schedule     []map[string]any `json:"schedule"`
	New2ID       map[string]int   `json:"new2id"`
}

// call performs one authenticated request against endpoint, retrying
// transient failures per the client's policy. A fresh token is issued for
// every attempt.
func (c *Client) call(ctx context.Context, method, endpoint string, query, form url.Values) (RawResponse, envelope, error) {
	var lastRaw RawResponse
	var lastErr error

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		raw, env, retryable, err := c.attempt(ctx, method, endpoint, query, form, attempt)
		if err == nil {
			return raw, env, nil
		}
		if !retryable {
			return raw, env, err
		}
		if ctx.Err() != nil {
			return raw, env, fmt.Errorf("%s aborted: %w", endpoint, ctx.Err())
		}

		lastRaw, lastErr = raw, err
		if attempt == c.policy.MaxAttempts {
			break
		}

		wait := c.policy.Backoff(attempt)
		slog.Warn("Transient failure, retrying after backoff",
			"endpoint", endpoint, "attempt", attempt, "max_attempts", c.policy.MaxAttempts,
			"wait", wait, "error", err)
		c.sleep(wait)
	}

	return lastRaw, envelope{}, fmt.Errorf("%w: %s failed after %d attempts: %v",
		ErrTransient, endpoint, c.policy.MaxAttempts, lastErr)
}

// attempt performs a single request. retryable reports whether the failure
// may be resolved by trying again.
func (c *Client) attempt(ctx context.Context, method, endpoint string, query, form url.Values, attempt int) (RawResponse, envelope, bool, error) {
	raw := RawResponse{Endpoint: endpoint, RequestedAt: c.now().UTC()}

	token, err := c.issuer.Token(c.userCode, c.tokenTTL)
	if err != nil {
		return raw, envelope{}, false, err
	}

	q := url.Values{}
	for k, vs := range query {
		q[k] = vs
	}
	q.Set("userCode", c.userCode)
	q.Set("JWT", token)

	u := fmt.Sprintf("%s/%s?%s", strings.TrimRight(c.baseURL, "/"), endpoint, q.Encode())

	var body io.Reader
	if len(form) > 0 {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return raw, envelope{}, false, fmt.Errorf("%w: could not build request: %v", ErrClient, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	requestID := uuid.NewString()
	slog.Debug("Calling platform", "method", method, "endpoint", endpoint,
		"url", redactToken(u), "attempt", attempt, "request_id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return raw, envelope{}, true, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw.StatusCode = resp.StatusCode
	raw.Body, err = io.ReadAll(resp.Body)
	if err != nil {
		return raw, envelope{}, true, fmt.Errorf("could not read response body: %v", err)
	}

	slog.Debug("Platform replied", "endpoint", endpoint, "status_code", resp.StatusCode,
		"request_id", requestID)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return raw, envelope{}, false, fmt.Errorf("%w: HTTP 401, check your user code and key registration", ErrAuth)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return raw, envelope{}, false, fmt.Errorf("%w: HTTP %d: %s", ErrClient, resp.StatusCode, excerpt(raw.Body))
	case resp.StatusCode >= 500:
		return raw, envelope{}, true, fmt.Errorf("HTTP %d: %s", resp.StatusCode, excerpt(raw.Body))
	}

	var env envelope
	if err := json.Unmarshal(raw.Body, &env); err != nil {
		return raw, envelope{}, false, fmt.Errorf("%w: non-JSON response: %s", ErrClient, excerpt(raw.Body))
	}
	raw.APIStatus = env.Status

	switch env.Status {
	case 1:
		return raw, env, false, nil
	case -1:
		return raw, envelope{}, true, fmt.Errorf("platform returned status -1")
	default:
		return raw, envelope{}, false, fmt.Errorf("%w: unexpected API status %d: %s", ErrClient, env.Status, excerpt(raw.Body))
	}
}

// redactToken strips the JWT value from a URL destined for logs.
func redactToken(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("JWT") {
		q.Set("JWT", "<redacted>")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// excerpt bounds a response body for inclusion in error messages.
func excerpt(body []byte) string {
	const limit = 500
	s := strings.TrimSpace(string(body))
	// Truncate on a rune boundary so multi-byte characters stay intact.
	r := []rune(s)
	if len(r) > limit {
		return string(r[:limit]) + "…"
	}
	return s
}
