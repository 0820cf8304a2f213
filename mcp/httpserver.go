package mcp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/foomo/mdclip/service"
)

// httpRequestKey is a custom context key for storing the original HTTP request
type httpRequestKey struct{}

func withHTTPRequest(ctx context.Context, req *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, req)
}

func httpContextFunc(ctx context.Context, r *http.Request) context.Context {
	return withHTTPRequest(ctx, r)
}

// NewMcpHTTPServer creates a streamable HTTP MCP server
func NewMcpHTTPServer(s *server.MCPServer, endpoint string) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath(endpoint),
		server.WithHTTPContextFunc(httpContextFunc),
	)
}

// McpHTTPSSEServer combines the MCP HTTP endpoint with the clip event stream
type McpHTTPSSEServer struct {
	router    chi.Router
	sseServer *MCPSSEServer
}

// NewMcpHTTPSSEServer routes the MCP endpoint and the SSE side channel below it
func NewMcpHTTPSSEServer(logger *zap.Logger, s *server.MCPServer, serviceInstance service.Service, endpoint string, config *SSEServerConfig) *McpHTTPSSEServer {
	sseServer := NewMCPSSEServer(logger, s, serviceInstance, config)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle(endpoint, NewMcpHTTPServer(s, endpoint))

	r.Get(endpoint+"/sse", sseServer.HandleSSE)
	r.Post(endpoint+"/sse/clip", sseServer.HandleClipSSE)
	r.Get(endpoint+"/sse/clients", func(w http.ResponseWriter, r *http.Request) {
		clients := sseServer.GetConnectedClients()
		writeJSON(sseServer.logger, w, map[string]any{
			"connectedClients": len(clients),
			"clients":          clients,
		})
	})
	r.Get(endpoint+"/sse/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(sseServer.logger, w, sseServer.GetStats())
	})

	return &McpHTTPSSEServer{
		router:    r,
		sseServer: sseServer,
	}
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write response", zap.Error(err))
	}
}

// ServeHTTP implements http.Handler
func (s *McpHTTPSSEServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// GetSSEServer returns the underlying SSE server for direct access
func (s *McpHTTPSSEServer) GetSSEServer() *MCPSSEServer {
	return s.sseServer
}
