package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// ClientName is the client name sent in the initialize request.
const ClientName = "gmailmcp-driver"

// Session is the part of an MCP client the sequencer needs.
type Session interface {
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Bootstrapper opens an initialized session. The returned close function
// releases the session and whatever process backs it.
type Bootstrapper func(ctx context.Context) (Session, func() error, error)

// StdioBootstrapper returns a Bootstrapper that launches d over stdio.
// The server's stderr is copied to stderr when it is non-nil.
func StdioBootstrapper(d LaunchDescriptor, version string, stderr io.Writer, logger *slog.Logger) Bootstrapper {
	return func(ctx context.Context) (Session, func() error, error) {
		return Bootstrap(ctx, d, version, stderr, logger)
	}
}

// Bootstrap starts the server subprocess and performs the initialize handshake.
// On failure everything opened so far is closed again.
func Bootstrap(ctx context.Context, d LaunchDescriptor, version string, stderr io.Writer, logger *slog.Logger) (Session, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := d.Validate(); err != nil {
		return nil, nil, err
	}

	stdio := transport.NewStdio(d.Command, d.Environ(), d.Args...)

	// The subprocess outlives a cancelled run context until the runner closes it.
	if err := stdio.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, nil, fmt.Errorf("failed to start server %q: %w", d.Command, err)
	}
	if stderr != nil {
		go func() {
			_, _ = io.Copy(stderr, stdio.Stderr())
		}()
	}

	c := client.NewClient(stdio)
	closeFn := func() error {
		return c.Close()
	}

	logger.Debug("server started", "command", d.Command, "args", d.Args)

	if err := Initialize(ctx, c, version, logger); err != nil {
		_ = closeFn()
		return nil, nil, err
	}

	return c, closeFn, nil
}

// Initialize sends the initialize request with the driver's client info.
func Initialize(ctx context.Context, c *client.Client, version string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    ClientName,
		Version: version,
	}

	result, err := c.Initialize(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to initialize session: %w", err)
	}

	logger.Debug("session initialized",
		"server", result.ServerInfo.Name,
		"server_version", result.ServerInfo.Version,
		"protocol_version", result.ProtocolVersion)
	return nil
}
