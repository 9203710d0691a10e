package event

import "time"

// Default configuration values
const (
	// DefaultEndpoint is the push service the stream client dials. The
	// environment and service ID are appended as query parameters.
	DefaultEndpoint = "wss://push.planetside2.com/streaming"

	// DefaultEnvironment selects the PC namespace events.
	DefaultEnvironment = "ps2"

	// DefaultReconnectDelay is the initial delay before attempting to reconnect
	DefaultReconnectDelay = 1 * time.Second

	// MaxReconnectDelay is the maximum delay between reconnection attempts
	MaxReconnectDelay = 30 * time.Second

	// ReconnectMultiplier is the multiplier for exponential backoff
	ReconnectMultiplier = 2.0

	// SubscribeDebounce is how long the synchronizer waits after a registry
	// change before pushing the new subscription, so rapid add/remove
	// bursts coalesce into a single resend.
	SubscribeDebounce = 50 * time.Millisecond

	// WriteTimeout is the timeout for writing messages
	WriteTimeout = 10 * time.Second

	// ReadBufferSize is the WebSocket read buffer size
	ReadBufferSize = 4096

	// WriteBufferSize is the WebSocket write buffer size
	WriteBufferSize = 4096
)

// Wire protocol field values
const (
	ServiceEvent         = "event"
	ServicePush          = "push"
	ActionSubscribe      = "subscribe"
	ActionClearSubscribe = "clearSubscribe"

	MessageTypeServiceMessage  = "serviceMessage"
	MessageTypeHeartbeat       = "heartbeat"
	MessageTypeConnectionState = "connectionStateChanged"
	MessageTypeServiceState    = "serviceStateChanged"
	SubscriptionEchoKey        = "subscription"
	SubscriptionAllKeyword     = "all"
)

// Log messages
const (
	LogMsgConnecting       = "Connecting to event stream"
	LogMsgConnected        = "Connected to event stream"
	LogMsgReconnecting     = "Reconnecting to event stream"
	LogMsgReadError        = "Error reading from event stream"
	LogMsgClientStopped    = "Event stream client stopped"
	LogMsgFrameDropped     = "Dropped unparseable event stream frame"
	LogMsgSubscribeSent    = "Subscription pushed to event stream"
	LogMsgSubscribeCleared = "Subscription cleared"
	LogMsgConditionPanic   = "Recovered panic in trigger condition"
	LogMsgActionPanic      = "Recovered panic in trigger action"
	LogMsgTriggerFired     = "Trigger fired"
	LogMsgSingleShotDone   = "Single-shot trigger removed after firing"
)
