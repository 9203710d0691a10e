// Package event is a client for the PlanetSide 2 event streaming service.
//
// The stream is consumed through triggers: a Trigger names the events it
// wants, optional character and world filters, conditions that gate it,
// and an action to run when it fires. The client keeps the server-side
// subscription in sync with the registered triggers, reconnects with
// backoff, and dispatches each incoming event to every matching trigger
// in registration order.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/auraxtools/auraxis/census"
	"github.com/auraxtools/auraxis/internal/metrics"
)

// State describes where the client is in its connection lifecycle.
type State int32

// Connection lifecycle states.
const (
	StateDisconnected State = iota
	StateConnecting
	StateSubscribed
	StateReceiving
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateReceiving:
		return "receiving"
	case StateReconnecting:
		return "reconnecting"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// CloseGrace bounds how long Close waits for in-flight asynchronous
// actions after cancelling their context.
const CloseGrace = 5 * time.Second

// Client manages the WebSocket connection to the event streaming service
// and dispatches incoming events to registered triggers.
type Client struct {
	endpoint    string
	environment string
	serviceID   string
	log         *slog.Logger

	reconnectDelay    time.Duration
	maxReconnectDelay time.Duration

	reg *registry

	mu    sync.RWMutex
	conn  *websocket.Conn
	state State

	// writeMu serializes writes; gorilla/websocket allows one writer.
	writeMu sync.Mutex

	subMu   sync.Mutex
	lastSub *subscribeMessage

	dirty     chan struct{}
	shutdown  chan struct{}
	closeOnce sync.Once
	started   atomic.Bool
	wg        sync.WaitGroup
	actionWG  sync.WaitGroup

	cancelActions context.CancelFunc
}

// Option configures a Client.
type Option func(*Client)

// WithServiceID sets the service ID used for the stream connection.
func WithServiceID(serviceID string) Option {
	return func(c *Client) { c.serviceID = serviceID }
}

// WithEnvironment selects the game environment, e.g. "ps2ps4us".
func WithEnvironment(env string) Option {
	return func(c *Client) { c.environment = env }
}

// WithLogger sets the logger for connection and dispatch logging.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithEndpoint points the client at a different push service URL. Used by
// tests to target a local fake server.
func WithEndpoint(rawURL string) Option {
	return func(c *Client) {
		if _, err := url.Parse(rawURL); err != nil {
			panic("event: invalid endpoint URL: " + rawURL)
		}
		c.endpoint = rawURL
	}
}

// WithReconnectPolicy overrides the reconnect backoff base and cap.
func WithReconnectPolicy(base, max time.Duration) Option {
	return func(c *Client) {
		c.reconnectDelay = base
		c.maxReconnectDelay = max
	}
}

// NewClient creates an event stream client. Triggers can be registered
// before Start; the initial subscription covers them.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:          DefaultEndpoint,
		environment:       DefaultEnvironment,
		serviceID:         census.DefaultServiceID,
		log:               slog.Default(),
		reconnectDelay:    DefaultReconnectDelay,
		maxReconnectDelay: MaxReconnectDelay,
		reg:               newRegistry(),
		dirty:             make(chan struct{}, 1),
		shutdown:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsConnected reports whether the stream is up and events can arrive.
func (c *Client) IsConnected() bool {
	st := c.State()
	return st == StateSubscribed || st == StateReceiving
}

// AddTrigger registers a trigger. Named triggers must be unique; on
// conflict ErrDuplicateTriggerName is returned and nothing changes. The
// server subscription is extended to cover the trigger shortly after.
func (c *Client) AddTrigger(t *Trigger) error {
	if err := c.reg.add(t); err != nil {
		return err
	}
	c.markDirty()
	return nil
}

// RemoveTrigger unregisters the exact trigger instance and shrinks the
// subscription accordingly.
func (c *Client) RemoveTrigger(t *Trigger) error {
	if err := c.reg.remove(t); err != nil {
		return err
	}
	c.markDirty()
	return nil
}

// RemoveTriggerByName unregisters the trigger registered under name.
func (c *Client) RemoveTriggerByName(name string) error {
	if err := c.reg.removeByName(name); err != nil {
		return err
	}
	c.markDirty()
	return nil
}

// GetTrigger returns the trigger registered under name.
func (c *Client) GetTrigger(name string) (*Trigger, bool) {
	return c.reg.get(name)
}

// TriggerCount returns the number of registered triggers.
func (c *Client) TriggerCount() int {
	return c.reg.len()
}

// Start opens the stream connection and begins dispatching. It returns
// immediately; the connection is maintained in the background with
// exponential backoff until Close is called or ctx is cancelled.
func (c *Client) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	actionCtx, cancel := context.WithCancel(ctx)
	c.cancelActions = cancel
	c.wg.Add(2)
	go c.connectLoop(actionCtx)
	go c.syncLoop()
}

// Close shuts the client down: the connection is dropped, the action
// context is cancelled, and in-flight asynchronous actions get CloseGrace
// to finish. Actions are not guaranteed to complete once Close begins.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.shutdown)
		if c.cancelActions != nil {
			c.cancelActions()
		}
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
		c.wg.Wait()

		done := make(chan struct{})
		go func() {
			c.actionWG.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(CloseGrace):
			c.log.Warn("async actions still running at close, abandoning")
		}
		c.setState(StateDisconnected)
	})
}

// WaitFor registers the trigger as single-shot and blocks until it fires,
// returning the envelope that fired it. The trigger's own action, if any,
// still runs. On ctx cancellation the trigger is removed.
func (c *Client) WaitFor(ctx context.Context, t *Trigger) (Envelope, error) {
	fired := make(chan Envelope, 1)
	orig := t.action
	t.SingleShot = true
	t.SetAction(func(actx context.Context, e Envelope) {
		if orig != nil {
			orig(actx, e)
		}
		select {
		case fired <- e:
		default:
		}
	})
	if err := c.AddTrigger(t); err != nil {
		return Envelope{}, err
	}
	select {
	case e := <-fired:
		return e, nil
	case <-ctx.Done():
		_ = c.RemoveTrigger(t)
		return Envelope{}, ctx.Err()
	case <-c.shutdown:
		return Envelope{}, ErrClientClosed
	}
}

func (c *Client) connectLoop(ctx context.Context) {
	defer c.wg.Done()

	backoff := c.reconnectDelay
	consecutiveFailures := 0

	for {
		select {
		case <-c.shutdown:
			c.log.Info(LogMsgClientStopped)
			return
		case <-ctx.Done():
			c.log.Info(LogMsgClientStopped)
			return
		default:
		}

		err := c.connect(ctx)
		if err != nil {
			consecutiveFailures++
			c.setState(StateReconnecting)
			metrics.StreamReconnects.Inc()

			// Only log first few failures and then periodically to avoid log spam
			if consecutiveFailures <= 3 || consecutiveFailures%100 == 0 {
				c.log.Warn(LogMsgReconnecting,
					"error", err,
					"backoff", backoff,
					"consecutive_failures", consecutiveFailures)
			}

			select {
			case <-time.After(backoff):
				backoff = time.Duration(float64(backoff) * ReconnectMultiplier)
				if backoff > c.maxReconnectDelay {
					backoff = c.maxReconnectDelay
				}
			case <-c.shutdown:
				return
			case <-ctx.Done():
				return
			}
		} else {
			// Reset backoff after a connection that made it to receiving
			backoff = c.reconnectDelay
			consecutiveFailures = 0
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	c.setState(StateConnecting)
	c.log.Info(LogMsgConnecting, "endpoint", c.endpoint, "environment", c.environment)

	dialer := websocket.Dialer{
		ReadBufferSize:  ReadBufferSize,
		WriteBufferSize: WriteBufferSize,
	}

	conn, resp, err := dialer.DialContext(ctx, c.streamURL(), nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to connect: %w (status: %s)", err, resp.Status)
		}
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	// A fresh connection has no server-side subscription state. Derive the
	// subscription from the live registry, never from a cached copy.
	c.subMu.Lock()
	c.lastSub = nil
	c.subMu.Unlock()

	if sub := computeSubscription(c.reg.snapshot()); sub != nil {
		if err := c.send(sub); err != nil {
			conn.Close()
			return fmt.Errorf("failed to subscribe: %w", err)
		}
		metrics.StreamSubscribeSends.Inc()
		c.subMu.Lock()
		c.lastSub = sub
		c.subMu.Unlock()
		c.log.Debug(LogMsgSubscribeSent, "events", len(sub.EventNames))
	}
	c.setState(StateSubscribed)
	c.log.Info(LogMsgConnected, "environment", c.environment)

	c.setState(StateReceiving)
	// Reconcile registry changes that raced with the handshake; when
	// nothing changed the equality check drops the poke.
	c.markDirty()
	return c.readLoop(ctx, conn)
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		select {
		case <-c.shutdown:
			return nil
		case <-ctx.Done():
			return nil
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			select {
			case <-c.shutdown:
				// Close() tears the socket down under us; not a failure.
				return nil
			default:
			}
			c.log.Warn(LogMsgReadError, "error", err)
			return err
		}
		c.handleFrame(ctx, msg)
	}
}

// streamFrame is the superset of fields across the frame types the
// service sends.
type streamFrame struct {
	Service      string          `json:"service"`
	Type         string          `json:"type"`
	Payload      json.RawMessage `json:"payload"`
	Subscription json.RawMessage `json:"subscription"`
	Connected    string          `json:"connected"`
}

func (c *Client) handleFrame(ctx context.Context, msg []byte) {
	var frame streamFrame
	if err := json.Unmarshal(msg, &frame); err != nil {
		metrics.StreamEventsDropped.Inc()
		c.log.Warn(LogMsgFrameDropped, "error", err)
		return
	}

	switch {
	case len(frame.Subscription) > 0:
		c.log.Debug("subscription acknowledged", "subscription", string(frame.Subscription))
	case frame.Type == MessageTypeServiceMessage:
		e, err := decodeEnvelope(frame.Payload)
		if err != nil || e.Name == "" {
			metrics.StreamEventsDropped.Inc()
			c.log.Warn(LogMsgFrameDropped, "error", err)
			return
		}
		metrics.StreamEventsReceived.WithLabelValues(e.Name).Inc()
		c.dispatch(ctx, e)
	case frame.Type == MessageTypeHeartbeat:
		c.log.Debug("heartbeat received")
	case frame.Type == MessageTypeConnectionState:
		c.log.Debug("connection state changed", "connected", frame.Connected)
	case frame.Type == MessageTypeServiceState:
		c.log.Debug("service state changed")
	default:
		// Help text and echoes of our own sends.
		c.log.Debug("ignoring frame", "service", frame.Service, "type", frame.Type)
	}
}

// dispatch runs one envelope through every matching trigger in
// registration order. The trigger list is a snapshot: actions may add or
// remove triggers freely, and their changes apply from the next envelope.
// Single-shot triggers that fired are removed before the next envelope is
// read.
func (c *Client) dispatch(ctx context.Context, e Envelope) {
	start := time.Now()
	defer func() {
		metrics.StreamDispatchDuration.Observe(time.Since(start).Seconds())
	}()

	var spent []*Trigger
	for _, t := range c.reg.matching(e) {
		if !c.conditionsPass(t, e) {
			continue
		}
		c.fire(ctx, t, e)
		if t.SingleShot {
			spent = append(spent, t)
		}
	}
	for _, t := range spent {
		// The action may have removed it already; both orders end the same.
		if err := c.reg.remove(t); err == nil {
			c.log.Debug(LogMsgSingleShotDone, "trigger", t.Name, "id", t.id)
			c.markDirty()
		}
	}
}

// conditionsPass evaluates the trigger's conditions in order, stopping at
// the first failure. A panicking condition fails that trigger only.
func (c *Client) conditionsPass(t *Trigger, e Envelope) bool {
	for i, cond := range t.conditions {
		if !c.testCondition(t, cond, i, e) {
			return false
		}
	}
	return true
}

func (c *Client) testCondition(t *Trigger, cond Condition, index int, e Envelope) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			metrics.StreamActionPanics.Inc()
			c.log.Error(LogMsgConditionPanic,
				"trigger", t.Name, "id", t.id, "event", e.Name, "condition", index, "panic", r)
			ok = false
		}
	}()
	return cond.Test(e)
}

func (c *Client) fire(ctx context.Context, t *Trigger, e Envelope) {
	metrics.StreamTriggerFires.WithLabelValues(e.Name).Inc()
	c.log.Debug(LogMsgTriggerFired, "trigger", t.Name, "id", t.id, "event", e.Name)

	if t.action == nil {
		return
	}
	if t.Synchronous {
		c.runAction(ctx, t, e)
		return
	}
	c.actionWG.Add(1)
	go func() {
		defer c.actionWG.Done()
		c.runAction(ctx, t, e)
	}()
}

// runAction invokes the action with panic recovery so one misbehaving
// trigger cannot take down the dispatch loop or its sibling goroutines.
func (c *Client) runAction(ctx context.Context, t *Trigger, e Envelope) {
	defer func() {
		if r := recover(); r != nil {
			metrics.StreamActionPanics.Inc()
			c.log.Error(LogMsgActionPanic,
				"trigger", t.Name, "id", t.id, "event", e.Name, "panic", r)
		}
	}()
	t.action(ctx, e)
}

// syncLoop keeps the server-side subscription in step with the registry.
// Registry changes poke it through the dirty channel; it waits out the
// debounce window so bursts of changes produce a single resend.
func (c *Client) syncLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.shutdown:
			return
		case <-c.dirty:
			timer := time.NewTimer(SubscribeDebounce)
		drain:
			for {
				select {
				case <-c.dirty:
					// Coalesce further changes inside the window.
				case <-timer.C:
					break drain
				case <-c.shutdown:
					timer.Stop()
					return
				}
			}
			c.pushSubscription()
		}
	}
}

// pushSubscription sends the current desired subscription if it differs
// from what the server last saw. The protocol has no incremental update,
// so a change is pushed as clearSubscribe followed by the full new set.
func (c *Client) pushSubscription() {
	c.mu.RLock()
	connected := c.conn != nil && (c.state == StateSubscribed || c.state == StateReceiving)
	c.mu.RUnlock()
	if !connected {
		// connect pushes the fresh set once the socket is up.
		return
	}

	sub := computeSubscription(c.reg.snapshot())

	c.subMu.Lock()
	defer c.subMu.Unlock()
	if sub.equal(c.lastSub) {
		return
	}
	if c.lastSub != nil {
		if err := c.send(clearAllMessage()); err != nil {
			c.log.Warn("failed to clear subscription", "error", err)
			return
		}
		metrics.StreamSubscribeSends.Inc()
	}
	if sub != nil {
		if err := c.send(sub); err != nil {
			c.log.Warn("failed to push subscription", "error", err)
			return
		}
		metrics.StreamSubscribeSends.Inc()
		c.log.Debug(LogMsgSubscribeSent, "events", len(sub.EventNames))
	} else {
		c.log.Debug(LogMsgSubscribeCleared)
	}
	c.lastSub = sub
}

func (c *Client) markDirty() {
	select {
	case c.dirty <- struct{}{}:
	default:
	}
}

func (c *Client) send(v any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	return conn.WriteJSON(v)
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Client) streamURL() string {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		// WithEndpoint validates; the default is a constant.
		panic(err)
	}
	params := "environment=" + c.environment + "&service-id=" + c.serviceID
	if u.RawQuery != "" {
		u.RawQuery += "&" + params
	} else {
		u.RawQuery = params
	}
	return u.String()
}
