package auraxis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base := []Option{
		WithBaseURL(srv.URL),
		WithServiceID("s:test"),
		WithRetry(0, time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New(append(base, opts...)...)
}

func TestClientRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/s:test/get/ps2:v2/character", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("faction_id"))
		w.Write([]byte(`{"character_list":[{"character_id":"101"}],"returned":1}`))
	})

	p, err := c.Request(context.Background(), c.NewQuery("character").Where("faction_id", 1))
	require.NoError(t, err)

	returned, ok := p.Returned()
	assert.True(t, ok)
	assert.Equal(t, int64(1), returned)

	records, err := ExtractPayload(p, "character")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestClientCount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/s:test/count/ps2:v2/character", r.URL.Path)
		w.Write([]byte(`{"count":"5209"}`))
	})

	n, err := c.Count(context.Background(), c.NewQuery("character"))
	require.NoError(t, err)
	assert.Equal(t, int64(5209), n)
}

func TestClientCountMissingKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"returned":0}`))
	})

	_, err := c.Count(context.Background(), c.NewQuery("character"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponseFormat)
}

func TestClientRequestRetriesServerError(t *testing.T) {
	var attempts atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"faction_list":[],"returned":0}`))
	}, WithRetry(2, time.Millisecond))

	_, err := c.Request(context.Background(), c.NewQuery("faction"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestClientRequestRetriesServiceUnavailable(t *testing.T) {
	var attempts atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Vendor overload arrives as a fault inside an HTTP 200.
		if attempts.Add(1) == 1 {
			w.Write([]byte(`{"error":"service_unavailable"}`))
			return
		}
		w.Write([]byte(`{"faction_list":[],"returned":0}`))
	}, WithRetry(2, time.Millisecond))

	_, err := c.Request(context.Background(), c.NewQuery("faction"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestClientRequestMaxRetriesExceeded(t *testing.T) {
	var attempts atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Write([]byte(`{"error":"service_unavailable"}`))
	}, WithRetry(2, time.Millisecond))

	_, err := c.Request(context.Background(), c.NewQuery("faction"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClientRequestBadStatusIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such service"))
	}, WithRetry(3, time.Millisecond))

	_, err := c.Request(context.Background(), c.NewQuery("faction"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Equal(t, int32(1), attempts.Load())

	var serr *ServerError
	require.True(t, errors.As(err, &serr))
	assert.Contains(t, serr.Message, "status 404")
	assert.Contains(t, serr.URL, "s:REDACTED")
}

func TestClientRequestNonJSONResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	})

	_, err := c.Request(context.Background(), c.NewQuery("faction"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponseFormat)
}

func TestClientRequestContextCancelledDuringBackoff(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, WithRetry(3, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Request(ctx, c.NewQuery("faction"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCheckErrorBodyMapping(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		sentinel error
		message  string
	}{
		{
			name:     "no data found",
			body:     `{"error":"No data found."}`,
			sentinel: ErrNotFound,
			message:  "No data found.",
		},
		{
			name:     "service unavailable",
			body:     `{"error":"service_unavailable"}`,
			sentinel: ErrServiceUnavailable,
			message:  "service_unavailable",
		},
		{
			name:     "missing service id",
			body:     `{"error":"Missing Service ID.  A valid Service ID is required for continued api use."}`,
			sentinel: ErrMissingServiceID,
			message:  "Missing Service ID",
		},
		{
			name:     "unregistered service id",
			body:     `{"error":"Provided Service ID is not registered.  A valid Service ID is required for continued api use."}`,
			sentinel: ErrInvalidServiceID,
			message:  "not registered",
		},
		{
			name:     "unknown error string",
			body:     `{"error":"Bad request syntax."}`,
			sentinel: ErrBadRequest,
			message:  "Bad request syntax.",
		},
		{
			name:     "error code with message",
			body:     `{"errorCode":"SERVER_ERROR","errorMessage":"INVALID_SEARCH_TERM: Invalid search term. Valid search terms: [name]"}`,
			sentinel: ErrBadRequest,
			message:  "SERVER_ERROR: INVALID_SEARCH_TERM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := c.Request(context.Background(), c.NewQuery("character"))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var serr *ServerError
			require.True(t, errors.As(err, &serr))
			assert.Contains(t, serr.Message, tt.message)
		})
	}
}

func TestExtractSingle(t *testing.T) {
	p := Payload{"faction_list": []byte(`[{"faction_id":"1"},{"faction_id":"2"}]`)}

	raw, err := ExtractSingle(p, "faction")
	require.NoError(t, err)
	assert.JSONEq(t, `{"faction_id":"1"}`, string(raw))

	_, err = ExtractSingle(Payload{"faction_list": []byte(`[]`)}, "faction")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = ExtractSingle(Payload{}, "faction")
	assert.ErrorIs(t, err, ErrResponseFormat)
}

func TestExtractPayloadWrongShape(t *testing.T) {
	_, err := ExtractPayload(Payload{"faction_list": []byte(`{"not":"a list"}`)}, "faction")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponseFormat)
}

func TestRedactServiceID(t *testing.T) {
	u, err := url.Parse("https://census.daybreakgames.com/s:supersecret/get/ps2:v2/character?faction_id=1")
	require.NoError(t, err)

	redacted := redactServiceID(u)
	assert.NotContains(t, redacted, "supersecret")
	assert.Contains(t, redacted, "/s:REDACTED/get/ps2:v2/character")
	assert.Contains(t, redacted, "faction_id=1")

	// Original URL must stay untouched for the actual request.
	assert.Contains(t, u.String(), "s:supersecret")
}
