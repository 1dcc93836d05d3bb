package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apperrors "github.com/kbukum/svcapp/errors"
	"github.com/kbukum/svcapp/logger"
)

const (
	// Path is the only path answered with 200.
	Path = "/healthCheck"
	// BodyAvailable is the liveness response body.
	BodyAvailable = "AVAILABLE"
	// BodyNotFound is the response body for every other path.
	BodyNotFound = "NOT FOUND"

	contentType = "text/plain"
)

// State is the listener lifecycle state.
type State int32

const (
	StateUnbound State = iota
	StateListening
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateListening:
		return "listening"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config holds listener configuration.
type Config struct {
	// Host to bind; empty binds every interface.
	Host string `yaml:"host" mapstructure:"host"`
	// Port to bind; 0 picks a free port.
	Port int `yaml:"port" mapstructure:"port"`
	// ReadHeaderTimeout bounds how long a client may take to send headers.
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" mapstructure:"read_header_timeout"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = 5 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return apperrors.InvalidArgument("port", fmt.Sprintf("must be between 0 and 65535 (got: %d)", c.Port))
	}
	return nil
}

// Server is the liveness HTTP listener, backed by Gin and served over
// HTTP/1.1 and cleartext HTTP/2.
type Server struct {
	config     Config
	engine     *gin.Engine
	httpServer *http.Server
	log        *logger.Logger

	mu       sync.Mutex
	state    State
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   chan struct{}
}

// New creates an unbound Server.
func New(cfg Config, log *logger.Logger) *Server {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		config: cfg,
		engine: engine,
		log:    log.WithComponent("healthcheck"),
		conns:  make(map[net.Conn]struct{}),
		closed: make(chan struct{}),
	}

	engine.Use(s.recovery())
	engine.Any(Path, available)
	engine.NoRoute(notFound)
	engine.NoMethod(notFound)

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           h2c.NewHandler(engine, &http2.Server{}),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ConnState:         s.trackConn,
	}
	return s
}

func available(c *gin.Context) {
	c.Data(http.StatusOK, contentType, []byte(BodyAvailable))
}

func notFound(c *gin.Context) {
	c.Data(http.StatusNotFound, contentType, []byte(BodyNotFound))
}

// recovery keeps a panicking handler from taking the listener down.
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		s.log.Error("Panic recovered", logger.Fields(
			"error", fmt.Sprintf("%v", err),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		))
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

func (s *Server) trackConn(conn net.Conn, state http.ConnState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch state {
	case http.StateNew:
		s.conns[conn] = struct{}{}
	case http.StateClosed:
		delete(s.conns, conn)
	}
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUnbound {
		return apperrors.InvalidPhase("healthcheck.Start", s.state.String())
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return apperrors.Bind(s.httpServer.Addr, err)
	}
	s.listener = ln
	s.state = StateListening

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Health check server error", logger.MergeWithError(
				logger.Fields("addr", ln.Addr().String()), err))
		}
	}()

	s.log.Debug("Health check listener bound", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop force-closes open connections, then closes the listening socket.
// Stopping an unbound or closed listener is a no-op; a concurrent caller
// waits for the first one to finish. Only the first caller sees a close
// failure.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateUnbound, StateClosed:
		s.mu.Unlock()
		return nil
	case StateClosing:
		s.mu.Unlock()
		select {
		case <-s.closed:
			return nil
		case <-ctx.Done():
			return apperrors.Close(s.Addr(), ctx.Err())
		}
	}

	s.state = StateClosing
	addr := s.listener.Addr().String()
	conns := make([]net.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
	var stopErr error
	if err := s.httpServer.Close(); err != nil {
		stopErr = apperrors.Close(addr, err)
	}

	s.mu.Lock()
	s.state = StateClosed
	close(s.closed)
	s.mu.Unlock()
	return stopErr
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Port returns the bound port, or the configured one before Start.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
			return tcp.Port
		}
	}
	return s.config.Port
}

// Handler returns the HTTP handler, for serving the endpoint elsewhere.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
