package track

import "time"

// Query limits
const (
	// DefaultQueryLimit applies when a listing request names no limit.
	DefaultQueryLimit = 50

	// MaxQueryLimit caps listing requests.
	MaxQueryLimit = 1000
)

// Retention
const (
	// DefaultRetentionDays is how long stored events are kept.
	DefaultRetentionDays = 90

	// CleanupInterval is how often the retention sweep runs.
	CleanupInterval = time.Hour
)

// Database pool settings
const (
	DefaultMaxConns        = 10
	DefaultMinConns        = 2
	DefaultMaxConnIdleTime = 5 * time.Minute
	DefaultMaxConnLifetime = 30 * time.Minute
)

// Live feed buffer sizes
const (
	// BroadcastBufferSize is the buffer size for the hub's broadcast channel.
	BroadcastBufferSize = 256

	// ClientEventBuffer is the buffer size for each feed client's channel.
	// A client that falls this far behind loses events rather than
	// stalling the hub.
	ClientEventBuffer = 64

	// ClientChannelBuffer is the buffer size for register/unregister channels.
	ClientChannelBuffer = 10

	// KeepaliveInterval is how often the feed pings idle clients.
	KeepaliveInterval = 30 * time.Second
)

// Feed event types
const (
	// FeedEventConnected is the first frame sent to a new feed client.
	FeedEventConnected = "connected"

	// FeedEventKeepalive is the keepalive ping frame.
	FeedEventKeepalive = "keepalive"
)

// Error messages
const (
	ErrMsgFailedToParseDBURL   = "failed to parse database url"
	ErrMsgFailedToCreatePool   = "failed to create connection pool"
	ErrMsgFailedToPingDatabase = "failed to ping database"
	ErrMsgInvalidConfig        = "invalid tracker config"
)

// Log messages
const (
	LogMsgDatabaseConnected      = "Connected to the tracker database"
	LogMsgServerStarting         = "Tracker API starting"
	LogMsgRequestStarted         = "Request started"
	LogMsgRequestCompleted       = "Request completed"
	LogMsgEventStoreFailed       = "Failed to store stream event"
	LogMsgTriggerRegistered      = "Recorder trigger registered"
	LogMsgCleanupComplete        = "Retention sweep removed events"
	LogMsgCleanupFailed          = "Retention sweep failed"
	LogMsgFeedClientConnected    = "Feed client connected"
	LogMsgFeedClientDisconnected = "Feed client disconnected"
	LogMsgFeedWriteError         = "Failed to write feed event"
	LogMsgReadyzFailed           = "Readiness check failed"
)
