package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjack/internal/auth"
)

// Server exposes the hub over HTTP: /ws for spectators, /healthz for probes
type Server struct {
	addr     string
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *log.Logger

	validator auth.Validator
	failOpen  bool
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithValidator requires spectators to present a token accepted by v.
// When failOpen is set, spectators are admitted while v is unavailable.
func WithValidator(v auth.Validator, failOpen bool) ServerOption {
	return func(s *Server) {
		s.validator = v
		s.failOpen = failOpen
	}
}

// NewServer creates a monitor server listening on addr
func NewServer(addr string, clock quartz.Clock, logger *log.Logger, opts ...ServerOption) *Server {
	s := &Server{
		addr: addr,
		hub:  NewHub(clock, logger),
		upgrader: websocket.Upgrader{
			// Spectators are read-only, any origin may watch
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger:    logger.WithPrefix("monitor"),
		validator: auth.NewNoopValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hub returns the server's hub, for wiring a Feed
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// ListenAndServe serves until ctx is cancelled, then disconnects spectators
// and shuts down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting monitor", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// authenticate reports whether the request may open a spectator stream
func (s *Server) authenticate(r *http.Request) (string, bool) {
	identity, err := s.validator.Validate(r.Context(), auth.TokenFromRequest(r))
	switch {
	case err == nil:
		if identity == nil {
			return "", true
		}
		return identity.Name, true
	case errors.Is(err, auth.ErrUnavailable) && s.failOpen:
		s.logger.Warn("Auth unavailable, admitting spectator", "remote", r.RemoteAddr, "error", err)
		return "", true
	default:
		s.logger.Warn("Rejected spectator", "remote", r.RemoteAddr, "error", err)
		return "", false
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	name, ok := s.authenticate(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	c := &client{
		hub:    s.hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		remote: r.RemoteAddr,
		name:   name,
	}
	ticker := s.hub.clock.NewTicker(pingPeriod, "monitor", "ping")
	s.hub.add(c)

	go c.writePump(ticker)
	go c.readPump()
}

type health struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(health{Status: "ok", Clients: s.hub.Clients()})
}
