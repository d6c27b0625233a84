package healthcheck

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// NormalizeListen trims the configured listen address; a bare port like
// ":8080" is accepted as-is and an empty value disables the listener.
func NormalizeListen(addr string) string {
	return strings.TrimSpace(addr)
}

// StartServer starts a health endpoint at /healthz and returns the server
// for shutdown. The listener failing to bind is an error; request-serving
// errors only get logged.
func StartServer(ctx context.Context, logger *slog.Logger, addr, component string) (*http.Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    "ok",
			"component": component,
		})
	})

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Warn("health_server_error", "addr", addr, "error", err.Error())
		}
	}()
	logger.Info("health_server_start", "addr", addr, "component", component)
	return srv, nil
}
