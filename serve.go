package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/foomo/mdclip/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Serve exposes the locate, compose, clip, preview and tags tools over MCP.
It speaks stdio by default. With --http it serves streamable HTTP on the given
address, together with an SSE stream of clip results below the endpoint.

Nobody can be asked for a location over MCP: saves go to --dir when autoSave
is on and fail with an error otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		defer a.close()

		s := mcp.NewServer(a.service)

		addr := viper.GetString("serve.http")
		if addr == "" {
			a.logger.Info("starting MCP server in stdio mode")
			return server.ServeStdio(s)
		}

		endpoint := viper.GetString("serve.endpoint")
		handler := mcp.NewMcpHTTPSSEServer(a.logger, s, a.service, endpoint, &mcp.SSEServerConfig{
			KeepaliveInterval: viper.GetDuration("serve.keepalive"),
			BufferSize:        viper.GetInt("serve.bufferSize"),
			ClientTimeout:     viper.GetDuration("serve.clientTimeout"),
		})
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("failed to shut down HTTP server", zap.Error(err))
			}
		}()

		a.logger.Info("starting MCP server", zap.String("addr", addr), zap.String("endpoint", endpoint))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	defaults := mcp.DefaultSSEServerConfig()
	serveCmd.Flags().String("http", "", "HTTP server address (e.g., ':8080'), stdio when empty")
	serveCmd.Flags().String("endpoint", "/mcp", "MCP endpoint path")
	serveCmd.Flags().Duration("keepalive", defaults.KeepaliveInterval, "SSE keepalive interval")
	serveCmd.Flags().Int("buffer-size", defaults.BufferSize, "SSE broadcast buffer size")
	serveCmd.Flags().Duration("client-timeout", defaults.ClientTimeout, "SSE client timeout")

	_ = viper.BindPFlag("serve.http", serveCmd.Flags().Lookup("http"))
	_ = viper.BindPFlag("serve.endpoint", serveCmd.Flags().Lookup("endpoint"))
	_ = viper.BindPFlag("serve.keepalive", serveCmd.Flags().Lookup("keepalive"))
	_ = viper.BindPFlag("serve.bufferSize", serveCmd.Flags().Lookup("buffer-size"))
	_ = viper.BindPFlag("serve.clientTimeout", serveCmd.Flags().Lookup("client-timeout"))

	rootCmd.AddCommand(serveCmd)
}
