package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/foomo/mdclip/service"
)

// SSEEvent represents an SSE event structure
type SSEEvent struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

func newEvent(name string, data any) SSEEvent {
	return SSEEvent{
		ID:        ulid.Make().String(),
		Event:     name,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID       string
	Writer   http.ResponseWriter
	Flusher  http.Flusher
	Done     chan struct{}
	LastSeen time.Time
	mu       sync.Mutex
}

// MCPSSEServer pushes clip results to subscribed clients
type MCPSSEServer struct {
	logger       *zap.Logger
	mcpServer    *server.MCPServer
	service      service.Service
	config       *SSEServerConfig
	clients      map[string]*SSEClient
	clientsMutex sync.RWMutex
	broadcast    chan SSEEvent
	clips        int
}

// SSEServerConfig holds configuration for the SSE server
type SSEServerConfig struct {
	KeepaliveInterval time.Duration
	BufferSize        int
	ClientTimeout     time.Duration
}

// DefaultSSEServerConfig returns the default configuration for SSE server
func DefaultSSEServerConfig() *SSEServerConfig {
	return &SSEServerConfig{
		KeepaliveInterval: 30 * time.Second,
		BufferSize:        100,
		ClientTimeout:     60 * time.Second,
	}
}

// NewMCPSSEServer creates a new MCP SSE server
func NewMCPSSEServer(logger *zap.Logger, mcpServer *server.MCPServer, serviceInstance service.Service, config *SSEServerConfig) *MCPSSEServer {
	defaults := DefaultSSEServerConfig()
	if config == nil {
		config = defaults
	}
	if config.KeepaliveInterval <= 0 {
		config.KeepaliveInterval = defaults.KeepaliveInterval
	}
	if config.ClientTimeout <= 0 {
		config.ClientTimeout = defaults.ClientTimeout
	}
	if config.BufferSize < 0 {
		config.BufferSize = defaults.BufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sseServer := &MCPSSEServer{
		logger:    logger,
		mcpServer: mcpServer,
		service:   serviceInstance,
		config:    config,
		clients:   make(map[string]*SSEClient),
		broadcast: make(chan SSEEvent, config.BufferSize),
	}

	go sseServer.broadcastLoop()

	return sseServer
}

func (s *MCPSSEServer) broadcastLoop() {
	for event := range s.broadcast {
		s.clientsMutex.RLock()
		clients := make([]*SSEClient, 0, len(s.clients))
		for _, client := range s.clients {
			clients = append(clients, client)
		}
		s.clientsMutex.RUnlock()

		for _, client := range clients {
			select {
			case <-client.Done:
				s.removeClient(client.ID)
			default:
				if err := writeEvent(client, event); err != nil {
					s.logger.Error("failed to send event to client", zap.String("clientID", client.ID), zap.Error(err))
					s.removeClient(client.ID)
				}
			}
		}
	}
}

// writeEvent writes to a client unless it was removed; Done is closed under mu
// so no write reaches a finished response
func writeEvent(client *SSEClient, event SSEEvent) error {
	client.mu.Lock()
	defer client.mu.Unlock()
	select {
	case <-client.Done:
		return nil
	default:
	}
	if err := writeSSE(client.Writer, event); err != nil {
		return err
	}
	client.Flusher.Flush()
	client.LastSeen = time.Now()
	return nil
}

func writeSSE(w http.ResponseWriter, event SSEEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Event, eventJSON)
	return err
}

func (s *MCPSSEServer) addClient(w http.ResponseWriter) *SSEClient {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return nil
	}

	client := &SSEClient{
		ID:       uuid.NewString(),
		Writer:   w,
		Flusher:  flusher,
		Done:     make(chan struct{}),
		LastSeen: time.Now(),
	}

	connectEvent := newEvent("connected", map[string]string{"clientID": client.ID, "message": "Connected to clip stream"})
	if err := writeEvent(client, connectEvent); err != nil {
		s.logger.Error("failed to send connection event", zap.String("clientID", client.ID), zap.Error(err))
		return nil
	}

	s.clientsMutex.Lock()
	s.clients[client.ID] = client
	s.clientsMutex.Unlock()

	s.logger.Info("SSE client connected", zap.String("clientID", client.ID))
	return client
}

func (s *MCPSSEServer) removeClient(clientID string) {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()

	if client, exists := s.clients[clientID]; exists {
		client.mu.Lock()
		close(client.Done)
		client.mu.Unlock()
		delete(s.clients, clientID)
		s.logger.Info("SSE client disconnected", zap.String("clientID", clientID))
	}
}

func (s *MCPSSEServer) broadcastEvent(event SSEEvent) {
	select {
	case s.broadcast <- event:
	default:
		s.logger.Warn("broadcast channel full, dropping event", zap.String("eventID", event.ID))
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// HandleSSE subscribes a client to clip events until it disconnects
func (s *MCPSSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)
	w.Header().Set("Access-Control-Allow-Headers", "Cache-Control")

	client := s.addClient(w)
	if client == nil {
		return
	}

	ticker := time.NewTicker(s.config.KeepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.removeClient(client.ID)
			return
		case <-client.Done:
			return
		case <-ticker.C:
			if err := writeEvent(client, newEvent("keepalive", map[string]any{"timestamp": time.Now()})); err != nil {
				s.removeClient(client.ID)
				return
			}
		}
	}
}

// HandleClipSSE clips the posted page, streams the progress back and
// announces the result to all subscribers
func (s *MCPSSEServer) HandleClipSSE(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		http.Error(w, "Clip service not available", http.StatusServiceUnavailable)
		return
	}

	var request ClipRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if request.HTML == "" {
		http.Error(w, "html is required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	setSSEHeaders(w)

	send := func(event SSEEvent) {
		if err := writeSSE(w, event); err != nil {
			s.logger.Warn("failed to write clip event", zap.String("event", event.Event), zap.Error(err))
			return
		}
		flusher.Flush()
	}

	send(newEvent("clip_start", map[string]string{"url": request.URL}))

	fail := func(err error) {
		send(newEvent("clip_error", map[string]string{"error": err.Error()}))
	}

	page, err := parsePage(request.LocateRequest)
	if err != nil {
		fail(err)
		return
	}
	clip, err := s.service.Clip(r.Context(), page, service.ClipOptions{FullPage: request.FullPage})
	if err != nil {
		fail(err)
		return
	}
	response := ClipResponse{Clip: clip}
	if request.Save {
		path, err := s.service.SaveSync(r.Context(), service.SaveOptions{
			Markdown: clip.Current,
			Title:    clip.Snapshot.Title,
			Tags:     request.Tags,
		})
		if err != nil {
			fail(err)
			return
		}
		response.Path = path
	}

	result := newEvent("clip_result", response)
	send(result)
	s.broadcastEvent(result)

	s.clientsMutex.Lock()
	s.clips++
	s.clientsMutex.Unlock()

	send(newEvent("clip_complete", map[string]string{"status": "completed"}))
}

// GetConnectedClients returns information about connected clients
func (s *MCPSSEServer) GetConnectedClients() []map[string]any {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	clients := make([]map[string]any, 0, len(s.clients))
	for _, client := range s.clients {
		client.mu.Lock()
		lastSeen := client.LastSeen
		client.mu.Unlock()
		clients = append(clients, map[string]any{
			"id":        client.ID,
			"lastSeen":  lastSeen,
			"connected": time.Since(lastSeen) < s.config.ClientTimeout,
		})
	}
	return clients
}

// GetStats returns server statistics
func (s *MCPSSEServer) GetStats() map[string]any {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	return map[string]any{
		"connectedClients": len(s.clients),
		"bufferSize":       len(s.broadcast),
		"clips":            s.clips,
		"serverVersion":    Version,
	}
}
