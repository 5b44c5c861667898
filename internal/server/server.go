package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/codecatch/internal/shared"
)

// Options configures a [Server].
type Options struct {
	Config  *shared.Config
	Console io.Writer        // operator-facing output, defaults to [os.Stdout]
	Logger  *log.Logger      // defaults to [shared.NewLogger]
	Ready   func(url string) // called once the listener is bound
}

// Server is the redirect catcher: one listener, one handler, created at startup and
// released when Run returns.
type Server struct {
	config  shared.ServerConfig
	handler http.Handler
	console io.Writer
	logger  *log.Logger
	ready   func(string)
}

// New builds a [Server] with its middleware stack.
func New(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	opts.Logger = shared.WithLogger(opts.Logger, "component", "catcher")

	router := NewRouter()
	router.Use(Recover(opts.Logger), RequestID, Logging(opts.Logger), NoStore)
	if opts.Config.Server.RateLimit > 0 {
		router.Use(Throttle(opts.Config.Server.RateLimit))
	}
	router.Use(Serialize())
	router.Handle(http.MethodGet, NewCatchHandler(opts.Config.Page, opts.Console, opts.Logger))

	return &Server{
		config:  opts.Config.Server,
		handler: router,
		console: opts.Console,
		logger:  opts.Logger,
		ready:   opts.Ready,
	}
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run binds the configured address and serves until ctx is cancelled.
//
// A bind failure is returned as is; there is no retry.
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Address()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w %s: %v", shared.ErrBind, addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes ln,
// waits for an in-flight request and prints the shutdown line.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	url := s.listenURL(ln.Addr())
	fmt.Fprintf(s.console, "Listening on %s\n", url)
	s.logger.Debug("listener bound", "addr", ln.Addr().String())

	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Serve(ln)
	}()

	if s.ready != nil {
		s.ready(url)
	}

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Debug("shutdown requested", "cause", context.Cause(ctx))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Timeout())
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("error shutting down server", "error", err)
		httpServer.Close()
	}

	fmt.Fprintln(s.console, "Server stopped")
	return nil
}

// listenURL reports the configured host with the port actually bound, which
// differs from the configured one when port 0 was requested.
func (s *Server) listenURL(addr net.Addr) string {
	port := s.config.Port
	if tcp, ok := addr.(*net.TCPAddr); ok {
		port = tcp.Port
	}
	return "http://" + net.JoinHostPort(s.config.Host, strconv.Itoa(port)) + s.config.Path
}
