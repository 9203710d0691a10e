package track

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/auraxtools/auraxis/internal/metrics"
)

// FeedEvent is one frame pushed to live feed subscribers.
type FeedEvent struct {
	ID        string          `json:"id"`
	EventName string          `json:"event_name"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// FeedClient is one connected feed consumer.
type FeedClient struct {
	ID     string
	Events chan FeedEvent

	// filter is nil for all events, otherwise only the named types pass.
	filter map[string]bool
}

// Wants reports whether the client's filter accepts the event name.
func (c *FeedClient) Wants(eventName string) bool {
	return c.filter == nil || c.filter[eventName]
}

// Hub fans stream events out to connected feed clients.
type Hub struct {
	clients    map[string]*FeedClient
	broadcast  chan FeedEvent
	register   chan *FeedClient
	unregister chan string
	mu         sync.RWMutex
	shutdown   chan struct{}
	wg         sync.WaitGroup
}

// NewHub creates a feed hub. Call Start before registering clients.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*FeedClient),
		broadcast:  make(chan FeedEvent, BroadcastBufferSize),
		register:   make(chan *FeedClient, ClientChannelBuffer),
		unregister: make(chan string, ClientChannelBuffer),
		shutdown:   make(chan struct{}),
	}
}

// Start starts the hub's broadcast loop.
func (h *Hub) Start() {
	h.wg.Add(1)
	go h.run()
}

// Stop shuts the hub down and closes every client channel.
func (h *Hub) Stop() {
	close(h.shutdown)
	h.wg.Wait()

	h.mu.Lock()
	for _, client := range h.clients {
		close(client.Events)
	}
	h.clients = make(map[string]*FeedClient)
	h.mu.Unlock()

	metrics.FeedClients.Set(0)
}

// run is the main broadcast loop.
func (h *Hub) run() {
	defer h.wg.Done()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			metrics.FeedClients.Inc()

		case clientID := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[clientID]; ok {
				close(client.Events)
				delete(h.clients, clientID)
				metrics.FeedClients.Dec()
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				if !client.Wants(event.EventName) {
					continue
				}

				// Non-blocking send. A full client buffer drops the
				// event for that client only.
				select {
				case client.Events <- event:
				default:
				}
			}
			h.mu.RUnlock()

		case <-h.shutdown:
			return
		}
	}
}

// Register adds a feed client. eventNames narrows delivery to the named
// types; an empty list receives everything.
func (h *Hub) Register(eventNames []string) *FeedClient {
	client := &FeedClient{
		ID:     uuid.New().String(),
		Events: make(chan FeedEvent, ClientEventBuffer),
	}

	if len(eventNames) > 0 {
		client.filter = make(map[string]bool)
		for _, name := range eventNames {
			client.filter[name] = true
		}
	}

	h.register <- client
	return client
}

// Unregister removes a feed client.
func (h *Hub) Unregister(clientID string) {
	select {
	case h.unregister <- clientID:
	case <-h.shutdown:
	}
}

// Broadcast queues an event for every interested client. A full broadcast
// buffer drops the event.
func (h *Hub) Broadcast(eventName string, payload json.RawMessage) {
	event := FeedEvent{
		ID:        uuid.New().String(),
		EventName: eventName,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	}

	select {
	case h.broadcast <- event:
	default:
	}
}

// ClientCount returns the number of connected feed clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// FormatFeedMessage renders a feed event in server-sent event framing.
func FormatFeedMessage(event FeedEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	msg := "id: " + event.ID + "\n"
	msg += "event: " + event.EventName + "\n"
	msg += "data: " + string(data) + "\n\n"

	return []byte(msg), nil
}
