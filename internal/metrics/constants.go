package metrics

// ============================================================================
// Metric Names
// ============================================================================

// Census REST metric names
const (
	MetricNameCensusRequestsTotal   = "census_requests_total"
	MetricNameCensusRetriesTotal    = "census_request_retries_total"
	MetricNameCensusRequestDuration = "census_request_duration_seconds"
)

// Event stream metric names
const (
	MetricNameStreamEventsReceived   = "stream_events_received_total"
	MetricNameStreamEventsDropped    = "stream_events_dropped_total"
	MetricNameStreamTriggerFires     = "stream_trigger_fires_total"
	MetricNameStreamActionPanics     = "stream_action_panics_total"
	MetricNameStreamReconnects       = "stream_reconnects_total"
	MetricNameStreamSubscribeSends   = "stream_subscribe_sends_total"
	MetricNameStreamDispatchDuration = "stream_dispatch_duration_seconds"
)

// Tracker HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
	MetricNameEventsStored         = "tracker_events_stored_total"
	MetricNameFeedClients          = "tracker_feed_clients"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// Census REST metric help text
const (
	HelpTextCensusRequestsTotal   = "Total number of census REST requests"
	HelpTextCensusRetriesTotal    = "Total number of census request retries"
	HelpTextCensusRequestDuration = "Census request latency in seconds"
)

// Event stream metric help text
const (
	HelpTextStreamEventsReceived   = "Total number of event stream payloads received"
	HelpTextStreamEventsDropped    = "Total number of malformed or unwanted frames dropped"
	HelpTextStreamTriggerFires     = "Total number of trigger actions fired"
	HelpTextStreamActionPanics     = "Total number of panics recovered from conditions and actions"
	HelpTextStreamReconnects       = "Total number of event stream reconnect attempts"
	HelpTextStreamSubscribeSends   = "Total number of subscribe and clearSubscribe messages sent"
	HelpTextStreamDispatchDuration = "Time spent dispatching one event to all matching triggers"
)

// Tracker HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
	HelpTextEventsStored         = "Total number of events written to the tracker store"
	HelpTextFeedClients          = "Current number of connected live feed clients"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod     = "method"
	LabelPath       = "path"
	LabelStatus     = "status"
	LabelCollection = "collection"
	LabelEvent      = "event"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// DispatchLatencyBuckets covers the dispatch hot path, which sits in the
// microsecond range unless a synchronous action misbehaves.
var DispatchLatencyBuckets = []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5}
