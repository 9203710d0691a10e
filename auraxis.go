// Package auraxis is a client for the Daybreak Census API as served for
// PlanetSide 2.
//
// The root package executes REST queries built with the census package and
// decodes their payloads. Typed wrappers for the common collections live in
// the ps2 package, and the real-time event stream client with its trigger
// system lives in the event package.
package auraxis

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/auraxtools/auraxis/census"
)

// Default request behaviour. The vendor is flaky under load, so a few
// retries with backoff are part of normal operation.
const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 500 * time.Millisecond
)

// Client executes census queries. It is safe for concurrent use.
type Client struct {
	serviceID  string
	namespace  string
	baseURL    *url.URL
	http       *http.Client
	log        *slog.Logger
	maxRetries int
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithServiceID sets the service ID, in the "s:name" form the vendor
// issues. Without one the shared example ID is used, which is heavily
// rate-limited.
func WithServiceID(serviceID string) Option {
	return func(c *Client) { c.serviceID = serviceID }
}

// WithNamespace selects the game namespace, e.g. census.NamespacePS4US.
func WithNamespace(namespace string) Option {
	return func(c *Client) { c.namespace = namespace }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request and retry logging.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithRetry overrides the retry count and base delay for failed requests.
// A maxRetries of 0 disables retrying.
func WithRetry(maxRetries int, retryDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = retryDelay
	}
}

// WithBaseURL points the client at a different API host. Used by tests to
// target a local fake server.
func WithBaseURL(rawURL string) Option {
	return func(c *Client) {
		u, err := url.Parse(rawURL)
		if err != nil {
			panic("auraxis: invalid base URL: " + rawURL)
		}
		c.baseURL = u
	}
}

// New creates a census client.
func New(opts ...Option) *Client {
	c := &Client{
		serviceID:  census.DefaultServiceID,
		namespace:  census.NamespacePC,
		http:       &http.Client{Timeout: DefaultTimeout},
		log:        slog.Default(),
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ServiceID returns the configured service ID.
func (c *Client) ServiceID() string { return c.serviceID }

// Namespace returns the configured game namespace.
func (c *Client) Namespace() string { return c.namespace }

// NewQuery returns a query against the given collection, stamped with the
// client's service ID and namespace.
func (c *Client) NewQuery(collection string, terms ...census.Term) *census.Query {
	return census.NewQuery(collection, terms...).
		SetServiceID(c.serviceID).
		SetNamespace(c.namespace)
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}
