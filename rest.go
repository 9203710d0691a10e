package auraxis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auraxtools/auraxis/census"
	"github.com/auraxtools/auraxis/internal/metrics"
)

// Payload is a decoded top-level API response. Record lists sit under the
// "{collection}_list" key; ExtractPayload and ExtractSingle pull them out.
type Payload map[string]json.RawMessage

// Returned reports the record count the API included in the response.
func (p Payload) Returned() (int64, bool) {
	raw, ok := p["returned"]
	if !ok {
		return 0, false
	}
	var n CensusInt
	if err := n.UnmarshalJSON(raw); err != nil {
		return 0, false
	}
	return n.Int64(), true
}

// Request executes the query with the get verb and decodes the response.
// The client's service ID and namespace override whatever the query was
// built with. Transport failures, 5xx responses and vendor-side
// "service_unavailable" faults are retried with exponential backoff.
func (c *Client) Request(ctx context.Context, q *census.Query) (Payload, error) {
	q.SetServiceID(c.serviceID).SetNamespace(c.namespace)
	return c.do(ctx, q.URL(census.VerbGet), q.Collection())
}

// Count executes the query with the count verb.
func (c *Client) Count(ctx context.Context, q *census.Query) (int64, error) {
	q.SetServiceID(c.serviceID).SetNamespace(c.namespace)
	p, err := c.do(ctx, q.URL(census.VerbCount), q.Collection())
	if err != nil {
		return 0, err
	}
	raw, ok := p["count"]
	if !ok {
		return 0, &PayloadError{Key: "count", Message: "missing key"}
	}
	var n CensusInt
	if err := n.UnmarshalJSON(raw); err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

// do performs an HTTP request with retry logic.
func (c *Client) do(ctx context.Context, u *url.URL, collection string) (Payload, error) {
	if c.baseURL != nil {
		u.Scheme = c.baseURL.Scheme
		u.Host = c.baseURL.Host
	}
	redacted := redactServiceID(u)

	metrics.CensusRequestsTotal.WithLabelValues(collection).Inc()
	start := time.Now()
	defer func() {
		metrics.CensusRequestDuration.Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff with jitter
			jitter := time.Duration(time.Now().UnixNano()%100) * time.Millisecond
			delay := c.retryDelay*time.Duration(1<<uint(attempt-1)) + jitter
			metrics.CensusRetriesTotal.Inc()
			c.log.Info("retrying census request", "attempt", attempt, "url", redacted, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			c.log.Warn("census request failed", "error", err, "attempt", attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			c.log.Warn("census server error, will retry", "status", resp.StatusCode, "attempt", attempt)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &ServerError{
				Err:     ErrBadRequest,
				Message: fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
				URL:     redacted,
			}
		}

		var p Payload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, &PayloadError{Message: "response is not a JSON object"}
		}

		if err := checkErrorBody(p, redacted); err != nil {
			// The vendor reports transient overload inside a 200 body.
			if errors.Is(err, ErrServiceUnavailable) {
				lastErr = err
				c.log.Warn("census service unavailable, will retry", "attempt", attempt)
				continue
			}
			return nil, err
		}
		return p, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// checkErrorBody maps the vendor's structural error responses onto typed
// errors. Faults arrive as HTTP 200 bodies carrying an "error" or
// "errorCode" key.
func checkErrorBody(p Payload, redactedURL string) error {
	if raw, ok := p["error"]; ok {
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil {
			msg = string(raw)
		}
		sentinel := ErrBadRequest
		switch {
		case msg == "service_unavailable":
			sentinel = ErrServiceUnavailable
		case msg == "No data found.":
			sentinel = ErrNotFound
		case strings.HasPrefix(msg, "Missing Service ID"):
			sentinel = ErrMissingServiceID
		case strings.HasPrefix(msg, "Provided Service ID is not registered"):
			sentinel = ErrInvalidServiceID
		}
		return &ServerError{Err: sentinel, Message: msg, URL: redactedURL}
	}
	if raw, ok := p["errorCode"]; ok {
		var code string
		if err := json.Unmarshal(raw, &code); err != nil {
			code = string(raw)
		}
		msg := code
		if rawMsg, ok := p["errorMessage"]; ok {
			var detail string
			if json.Unmarshal(rawMsg, &detail) == nil {
				msg = code + ": " + detail
			}
		}
		return &ServerError{Err: ErrBadRequest, Message: msg, URL: redactedURL}
	}
	return nil
}

// ExtractPayload returns the record list for the given collection.
func ExtractPayload(p Payload, collection string) ([]json.RawMessage, error) {
	key := collection + "_list"
	raw, ok := p[key]
	if !ok {
		return nil, &PayloadError{Key: key, Message: "missing key"}
	}
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &PayloadError{Key: key, Message: "not a record list"}
	}
	return records, nil
}

// ExtractSingle returns the first record for the given collection, or
// ErrNotFound when the list is empty. Extra records beyond the first are
// ignored; narrow the query or use ExtractPayload when that matters.
func ExtractSingle(p Payload, collection string) (json.RawMessage, error) {
	records, err := ExtractPayload(p, collection)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records[0], nil
}

// redactServiceID replaces the service ID path segment for logging. IDs are
// credentials and must not end up in logs or error messages.
func redactServiceID(u *url.URL) string {
	r := *u
	if rest, ok := strings.CutPrefix(r.Path, "/s:"); ok {
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			r.Path = "/s:REDACTED" + rest[i:]
		}
	}
	return r.String()
}
