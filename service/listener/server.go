package listener

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/spindle/service/fiber"
	"github.com/viant/spindle/tracing"
)

// Config represents listener configuration
type Config struct {
	Address        string        `json:"address" yaml:"address"`
	Port           int           `json:"port" yaml:"port"`
	ReadBufferSize int           `json:"readBufferSize" yaml:"readBufferSize"`
	ReadTimeout    time.Duration `json:"readTimeout" yaml:"readTimeout"`
}

// DefaultConfig returns the default listener configuration
func DefaultConfig() Config {
	return Config{
		Address:        "127.0.0.1",
		Port:           8080,
		ReadBufferSize: 4096,
		ReadTimeout:    5 * time.Second,
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if c.Address == "" {
		return ErrInvalidAddress
	}
	return nil
}

// Server hosts the accept loop
type Server struct {
	config    Config
	fibers    *fiber.Service
	compile   RequestHandler
	run       RequestHandler
	mux       sync.Mutex
	socket    net.Listener
	serveCtx  context.Context
	serveSpan *tracing.Span
	fiberID   int64
	listening atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithConfig sets the configuration
func WithConfig(config Config) Option {
	return func(s *Server) { s.config = config }
}

// WithCompileHandler sets the POST /api/compile handler
func WithCompileHandler(handler RequestHandler) Option {
	return func(s *Server) { s.compile = handler }
}

// WithRunHandler sets the POST /api/run handler
func WithRunHandler(handler RequestHandler) Option {
	return func(s *Server) { s.run = handler }
}

// New creates a server whose accept loop will run as a fiber of fibers.
func New(fibers *fiber.Service, options ...Option) (*Server, error) {
	ret := &Server{
		config:  DefaultConfig(),
		fibers:  fibers,
		compile: DefaultCompileHandler,
		run:     DefaultRunHandler,
	}
	for _, opt := range options {
		opt(ret)
	}
	if fibers == nil {
		return nil, fmt.Errorf("fiber scheduler is required")
	}
	if ret.config.ReadBufferSize <= 0 {
		ret.config.ReadBufferSize = DefaultConfig().ReadBufferSize
	}
	if err := ret.config.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

// Listen binds the socket and spawns the accept-loop fiber.
func (s *Server) Listen(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.listening.Load() {
		return ErrAlreadyListening
	}
	if s.fibers.Deterministic() {
		return ErrDeterministicMode
	}
	address := net.JoinHostPort(s.config.Address, strconv.Itoa(s.config.Port))
	var lc net.ListenConfig
	socket, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %v: %w", address, err)
	}
	s.socket = socket
	s.serveCtx, s.serveSpan = tracing.StartServe(ctx, socket.Addr().String())
	s.listening.Store(true)

	id, err := s.fibers.Spawn(s.acceptLoop)
	if err != nil {
		s.listening.Store(false)
		_ = socket.Close()
		err = fmt.Errorf("failed to spawn accept loop: %w", err)
		s.serveSpan.Finish(err)
		return err
	}
	s.fiberID = id
	log.Printf("HTTP server listening on %v", socket.Addr())
	return nil
}

// Addr returns the bound address, nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.socket == nil {
		return nil
	}
	return s.socket.Addr()
}

// FiberID returns the id of the accept-loop fiber.
func (s *Server) FiberID() int64 {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.fiberID
}

// Stop closes the socket and waits for the accept loop to return.
func (s *Server) Stop() error {
	s.mux.Lock()
	if !s.listening.Swap(false) {
		s.mux.Unlock()
		return nil
	}
	err := s.socket.Close()
	id := s.fiberID
	span := s.serveSpan
	s.mux.Unlock()
	if _, awaitErr := s.fibers.Await(id); awaitErr != nil && err == nil {
		err = awaitErr
	}
	span.Finish(err)
	return err
}

func (s *Server) acceptLoop() int64 {
	for s.listening.Load() {
		conn, err := s.socket.Accept()
		if err != nil {
			if !s.listening.Load() || errors.Is(err, net.ErrClosed) {
				return 0
			}
			log.Printf("HTTP accept failed: %v", err)
			continue
		}
		s.serve(conn)
	}
	return 0
}

func (s *Server) serve(conn net.Conn) {
	defer conn.Close()
	if s.config.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	}
	buffer := make([]byte, s.config.ReadBufferSize)
	n, err := conn.Read(buffer)
	if n <= 0 {
		if err != nil {
			log.Printf("HTTP read failed: %v", err)
		}
		return
	}
	request := ParseRequest(buffer[:n])
	log.Printf("HTTP Request: %s %s", request.Method, request.Path)

	_, span := tracing.StartRequest(s.serveCtx, request.Method, request.Path)
	response, handlerErr := s.Route(request)
	span.Finish(handlerErr)
	if _, err = conn.Write(response); err != nil {
		log.Printf("HTTP write failed: %v", err)
	}
}

// Route produces the response for request.
func (s *Server) Route(request *Request) ([]byte, error) {
	var handler RequestHandler
	if request.Method == "POST" {
		switch request.Path {
		case "/api/compile":
			handler = s.compile
		case "/api/run":
			handler = s.run
		}
	}
	if handler == nil {
		return BuildResponse(200, "text/plain", defaultBody), nil
	}
	result, err := handler(request.Body)
	if err != nil {
		return BuildResponse(500, "text/plain", "Error processing request"), err
	}
	return BuildResponse(200, "application/json", result), nil
}
