package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/dzeckelev/quickpay/config"
)

// Server serves the REST API and the chat RPC.
type Server struct {
	rpcSrv  *rpc.Server
	httpSrv *http.Server
	logger  *slog.Logger
}

// NewServer creates a new API server. The chat RPC is reachable over HTTP at
// /rpc and over websocket at /ws.
func NewServer(cfg config.API, logger *slog.Logger,
	rest *RESTHandlers, health HealthService) *Server {
	rpcSrv := rpc.NewServer()

	router := NewRouter(logger, RouterDependencies{
		REST:           rest,
		Health:         health,
		RPC:            rpcSrv,
		WS:             rpcSrv.WebsocketHandler(cfg.AllowedOrigins),
		AllowedOrigins: cfg.AllowedOrigins,
	})

	return &Server{
		rpcSrv: rpcSrv,
		httpSrv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// AddHandler registers the chat RPC handler.
func (s *Server) AddHandler(handler *Handler) error {
	return s.rpcSrv.RegisterName("chat", handler)
}

// ListenAndServe starts to listen and to serve requests.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting api server", "addr", s.httpSrv.Addr)
	if err := s.httpSrv.ListenAndServe(); err != nil &&
		err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down api server")
	s.rpcSrv.Stop()
	return s.httpSrv.Shutdown(ctx)
}
