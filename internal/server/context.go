package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/teemow/gmailmcp/internal/gmail"
	"github.com/teemow/gmailmcp/internal/google"
	"github.com/teemow/gmailmcp/internal/instrumentation"
)

// Config configures a ServerContext.
type Config struct {
	// UserCredentials enables per-request credentials passed in tool arguments.
	UserCredentials bool

	// Debug enables verbose logging of credential handling.
	Debug bool

	// TokenProvider supplies the server's own token when a request carries none.
	// May be nil.
	TokenProvider google.TokenProvider

	// ClientCredentials enable refreshing expired user tokens.
	ClientCredentials google.ClientCredentials

	// GmailOptions are passed to every Gmail client, for example an endpoint override.
	GmailOptions []option.ClientOption

	Instrumentation *instrumentation.Provider
	Logger          *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// ErrShutdown is returned for requests that arrive after Shutdown.
var ErrShutdown = errors.New("server is shutting down")

// ServerContext holds the state shared by all tool handlers of the Gmail MCP server.
// Gmail clients are not cached: every request builds its own from the resolved token.
type ServerContext struct {
	userCredentials bool
	debug           bool
	tokenProvider   google.TokenProvider
	clientCreds     google.ClientCredentials
	gmailOptions    []option.ClientOption

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	logger      *slog.Logger
	now         func() time.Time

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context.
func NewServerContext(ctx context.Context, cfg Config) (*ServerContext, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Instrumentation == nil {
		provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
		}
		cfg.Instrumentation = provider
	}

	return &ServerContext{
		userCredentials: cfg.UserCredentials,
		debug:           cfg.Debug,
		tokenProvider:   cfg.TokenProvider,
		clientCreds:     cfg.ClientCredentials,
		gmailOptions:    cfg.GmailOptions,
		metrics:         cfg.Instrumentation.Metrics(),
		auditLogger:     cfg.Instrumentation.AuditLogger(cfg.Logger),
		logger:          cfg.Logger,
		now:             cfg.Now,
	}, nil
}

// Metrics returns the metrics recorder. It is never nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger for tool invocations.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.auditLogger
}

// GmailClientForToken builds a Gmail client authenticated with tok.
func (sc *ServerContext) GmailClientForToken(ctx context.Context, tok *oauth2.Token) (*gmail.Client, error) {
	if sc.isShutdown() {
		return nil, ErrShutdown
	}
	ts := google.TokenSource(ctx, sc.clientCreds, tok)
	client, err := gmail.NewClient(ctx, google.HTTPClient(ctx, ts), sc.gmailOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail client: %w", err)
	}
	return client, nil
}

func (sc *ServerContext) isShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown stops the server context from handing out new Gmail clients.
// It is safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.shutdown = true
	return nil
}
