// Command advisor-mcp exposes the TradeMate financial advice responder as
// MCP tools over streamable HTTP on /mcp.
//
// Configuration via environment variables:
//
//	TRADEMATE_MCP_ADDR   - listen address (default: ":8090")
//	TRADEMATE_LOG_LEVEL  - log level (default: "INFO")
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/trademate/supportdesk/pkg/config"
	"github.com/trademate/supportdesk/pkg/debug"
)

type serverConfig struct {
	Addr string `env:"MCP_ADDR" envDefault:":8090"`
}

func main() {
	debug.Init("", "INFO", "text")

	var cfg serverConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: config.EnvPrefix}); err != nil {
		slog.Error("parse env", "error", err)
		os.Exit(1)
	}

	if err := serve(cfg); err != nil {
		slog.Error("advisor-mcp failed", "error", err)
		os.Exit(1)
	}
}

func serve(cfg serverConfig) error {
	server := newServer()

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("advisor MCP server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
