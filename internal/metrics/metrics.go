package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Census REST Metrics
var (
	CensusRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCensusRequestsTotal,
			Help: HelpTextCensusRequestsTotal,
		},
		[]string{LabelCollection},
	)

	CensusRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCensusRetriesTotal,
			Help: HelpTextCensusRetriesTotal,
		},
	)

	CensusRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameCensusRequestDuration,
			Help:    HelpTextCensusRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
	)
)

// Event Stream Metrics
var (
	StreamEventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameStreamEventsReceived,
			Help: HelpTextStreamEventsReceived,
		},
		[]string{LabelEvent},
	)

	StreamEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameStreamEventsDropped,
			Help: HelpTextStreamEventsDropped,
		},
	)

	StreamTriggerFires = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameStreamTriggerFires,
			Help: HelpTextStreamTriggerFires,
		},
		[]string{LabelEvent},
	)

	StreamActionPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameStreamActionPanics,
			Help: HelpTextStreamActionPanics,
		},
	)

	StreamReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameStreamReconnects,
			Help: HelpTextStreamReconnects,
		},
	)

	StreamSubscribeSends = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameStreamSubscribeSends,
			Help: HelpTextStreamSubscribeSends,
		},
	)

	StreamDispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameStreamDispatchDuration,
			Help:    HelpTextStreamDispatchDuration,
			Buckets: DispatchLatencyBuckets,
		},
	)
)

// Tracker HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)

	EventsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsStored,
			Help: HelpTextEventsStored,
		},
		[]string{LabelEvent},
	)

	FeedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameFeedClients,
			Help: HelpTextFeedClients,
		},
	)
)
