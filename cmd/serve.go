package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gmailmcp/internal/google"
	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/logging"
	"github.com/teemow/gmailmcp/internal/server"
	"github.com/teemow/gmailmcp/internal/tools/gmail_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: false)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

type serveOptions struct {
	userCredentials    bool
	debugMode          bool
	credentialsPath    string
	googleClientID     string
	googleClientSecret string
	metrics            MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Gmail MCP server on stdio",
		Long: `Start the Model Context Protocol (MCP) server providing Gmail tools over
standard input/output.

User Credentials:
  With --user-credentials (or USE_USER_CREDENTIALS=true) every tool call may carry
  its own OAuth token bundle in the "_userCredentials" argument. The server keeps
  no session state: a fresh Gmail client is built for every request.

  Requests without credentials fall back to the server credentials file
  (--credentials-path, GMAIL_CREDENTIALS_PATH, default ~/.gmail-mcp/credentials.json).

Token Refresh (optional):
  GOOGLE_STDIO_CLIENT_ID and GOOGLE_STDIO_CLIENT_SECRET env vars
  OR GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars (fallback)
  Without these, expired access tokens are rejected.

Logs are written to stderr; stdout carries the MCP protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.userCredentials, "user-credentials", false, "Accept per-request credentials in the _userCredentials argument. Can also use USE_USER_CREDENTIALS env var.")
	cmd.Flags().BoolVar(&opts.debugMode, "debug", false, "Enable debug logging of credential handling. Can also use DEBUG_USER_AUTH env var.")
	cmd.Flags().StringVar(&opts.credentialsPath, "credentials-path", "", "Server credentials file used when a request carries none. Can also use GMAIL_CREDENTIALS_PATH env var.")
	cmd.Flags().StringVar(&opts.googleClientID, "google-client-id", "", "Google OAuth Client ID for automatic token refresh. Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().StringVar(&opts.googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret for automatic token refresh. Can also use GOOGLE_CLIENT_SECRET env var.")

	// Metrics server flags
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", false, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// applyServeEnv fills options that were not set by flags from the environment.
func applyServeEnv(cmd *cobra.Command, opts *serveOptions, lookup func(string) (string, bool)) {
	envBool := func(flag, key string, dst *bool) {
		if cmd.Flags().Changed(flag) {
			return
		}
		if v, ok := lookup(key); ok && v != "" {
			if parsed, err := strconv.ParseBool(v); err == nil {
				*dst = parsed
			}
		}
	}
	envString := func(flag, key string, dst *string) {
		if cmd.Flags().Changed(flag) {
			return
		}
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	envBool("user-credentials", "USE_USER_CREDENTIALS", &opts.userCredentials)
	envBool("debug", "DEBUG_USER_AUTH", &opts.debugMode)
	envBool("metrics-enabled", "METRICS_ENABLED", &opts.metrics.Enabled)
	envString("metrics-addr", "METRICS_ADDR", &opts.metrics.Addr)
	envString("credentials-path", "GMAIL_CREDENTIALS_PATH", &opts.credentialsPath)
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	applyServeEnv(cmd, &opts, os.LookupEnv)

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.Setup(os.Stderr, opts.debugMode, slog.LevelInfo)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.WithoutCancel(shutdownCtx)); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	// Start metrics server if enabled
	if opts.metrics.Enabled && provider.Enabled() {
		metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metrics.Addr,
			InstrumentationProvider: provider,
			Logger:                  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("metrics server failed to start: %w", err)
		}
		logger.Info("metrics server started", "addr", metricsServer.Addr())
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}()
	} else if opts.metrics.Enabled {
		logger.Warn("metrics server requested but instrumentation is disabled (set INSTRUMENTATION_ENABLED=true)")
	}

	clientCreds := google.ClientCredentialsFromEnv()
	if opts.googleClientID != "" {
		clientCreds.ClientID = opts.googleClientID
	}
	if opts.googleClientSecret != "" {
		clientCreds.ClientSecret = opts.googleClientSecret
	}

	credentialsPath := opts.credentialsPath
	if credentialsPath == "" {
		credentialsPath = google.DefaultCredentialsPath()
	}

	serverContext, err := server.NewServerContext(shutdownCtx, server.Config{
		UserCredentials:   opts.userCredentials,
		Debug:             opts.debugMode,
		TokenProvider:     google.NewFileTokenProvider(credentialsPath, clientCreds),
		ClientCredentials: clientCreds,
		Instrumentation:   provider,
		Logger:            logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", logging.Err(err))
		}
	}()

	logger.Debug("starting Gmail MCP server",
		"user_credentials", opts.userCredentials,
		"credentials_path", credentialsPath,
		"token_refresh", clientCreds.Configured())

	mcpSrv := newMCPServer()
	if err := gmail_tools.RegisterGmailTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register Gmail tools: %w", err)
	}

	provider.Metrics().IncrementActiveSessions(shutdownCtx)
	defer provider.Metrics().DecrementActiveSessions(context.WithoutCancel(shutdownCtx))

	return runStdioServer(mcpSrv)
}

func newMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("gmailmcp", version,
		mcpserver.WithToolCapabilities(true),
	)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
