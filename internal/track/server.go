package track

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/auraxtools/auraxis/internal/logger"
	"github.com/auraxtools/auraxis/internal/metrics"
)

// Pinger is the connectivity probe behind the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the tracker API.
type Server struct {
	httpServer *http.Server
}

// NewServer wires the tracker router onto a http.Server.
func NewServer(addr string, db Pinger, store Store, hub *Hub) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(db, store, hub),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// NewRouter builds the tracker's route tree.
func NewRouter(db Pinger, store Store, hub *Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handleHealthz())
	r.Get("/readyz", handleReadyz(db))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/events", handleEvents(store))
		r.Get("/stats/types", handleStatsTypes(store))
		r.Get("/feed", handleFeed(hub))
	})

	return r
}

// Start starts the server.
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// HealthResponse is the body of the health endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// EventsResponse is the body of the events listing endpoint.
type EventsResponse struct {
	Events []StoredEvent `json:"events"`
}

// StatsResponse is the body of the per-type stats endpoint.
type StatsResponse struct {
	Types []TypeCount `json:"types"`
}

// ErrorResponse is the body of error replies.
type ErrorResponse struct {
	Error string `json:"error"`
}

func handleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

func handleReadyz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			slog.Error(LogMsgReadyzFailed, "error", err)
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "unavailable",
				Message: "database connection failed",
			})
			return
		}

		respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}

// handleEvents serves GET /api/v1/events?character_id=X&type=Y&since=Z&limit=N.
func handleEvents(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		var filter EventFilter

		if idStr := query.Get("character_id"); idStr != "" {
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil || id <= 0 {
				respondError(w, http.StatusBadRequest, "Invalid 'character_id'")
				return
			}
			filter.CharacterID = id
		}

		filter.EventName = query.Get("type")

		if sinceStr := query.Get("since"); sinceStr != "" {
			since, err := time.Parse(time.RFC3339, sinceStr)
			if err != nil {
				respondError(w, http.StatusBadRequest, "Invalid 'since' timestamp format (use RFC3339)")
				return
			}
			filter.Since = since
		}

		if limitStr := query.Get("limit"); limitStr != "" {
			limit, err := strconv.Atoi(limitStr)
			if err != nil || limit < 1 || limit > MaxQueryLimit {
				respondError(w, http.StatusBadRequest, "Invalid 'limit' (must be 1-1000)")
				return
			}
			filter.Limit = limit
		}

		events, err := queryEvents(r.Context(), store, filter)
		if err != nil {
			logger.FromContext(r.Context()).Error("Event query failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to retrieve events")
			return
		}

		if events == nil {
			events = []StoredEvent{}
		}
		respondJSON(w, http.StatusOK, EventsResponse{Events: events})
	}
}

// queryEvents routes single-column filters through the indexed store paths
// and everything else through Recent.
func queryEvents(ctx context.Context, store Store, filter EventFilter) ([]StoredEvent, error) {
	switch {
	case filter.CharacterID != 0 && filter.EventName == "" && filter.Since.IsZero():
		return store.EventsByCharacter(ctx, filter.CharacterID, filter.Limit)
	case filter.EventName != "" && filter.CharacterID == 0 && filter.Since.IsZero():
		return store.EventsByType(ctx, filter.EventName, filter.Limit)
	default:
		return store.Recent(ctx, filter)
	}
}

// handleStatsTypes serves GET /api/v1/stats/types.
func handleStatsTypes(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := store.CountByType(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Error("Stats query failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to retrieve stats")
			return
		}

		if counts == nil {
			counts = []TypeCount{}
		}
		respondJSON(w, http.StatusOK, StatsResponse{Types: counts})
	}
}

// handleFeed serves the live event feed at GET /api/v1/feed?types=a,b,c.
func handleFeed(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		var eventNames []string
		if typesParam := r.URL.Query().Get("types"); typesParam != "" {
			eventNames = strings.Split(typesParam, ",")
		}

		client := hub.Register(eventNames)
		slog.Info(LogMsgFeedClientConnected,
			"client_id", client.ID,
			"filters", eventNames,
			"total_clients", hub.ClientCount())

		defer func() {
			hub.Unregister(client.ID)
			slog.Info(LogMsgFeedClientDisconnected,
				"client_id", client.ID,
				"total_clients", hub.ClientCount())
		}()

		connected := FeedEvent{
			ID:        client.ID,
			EventName: FeedEventConnected,
			Timestamp: time.Now().Unix(),
		}
		if msg, err := FormatFeedMessage(connected); err == nil {
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()
		}

		ticker := time.NewTicker(KeepaliveInterval)
		defer ticker.Stop()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-client.Events:
				if !ok {
					// Hub is shutting down.
					return
				}

				msg, err := FormatFeedMessage(event)
				if err != nil {
					slog.Error(LogMsgFeedWriteError, "error", err)
					continue
				}

				if _, err := w.Write(msg); err != nil {
					slog.Warn(LogMsgFeedWriteError, "error", err)
					return
				}
				flusher.Flush()

			case <-ticker.C:
				keepalive := FeedEvent{
					EventName: FeedEventKeepalive,
					Timestamp: time.Now().Unix(),
				}
				msg, _ := FormatFeedMessage(keepalive)
				if _, err := w.Write(msg); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Flush keeps the feed handler working behind the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Health checks and scrapes would drown the log.
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

// respondJSON sends a JSON response with the given status code and payload.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError sends a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
