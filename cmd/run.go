package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/gmailmcp/internal/config"
	"github.com/teemow/gmailmcp/internal/credentials"
	"github.com/teemow/gmailmcp/internal/driver"
	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/logging"
)

type runOptions struct {
	configFile      string
	credentialsFile string
	serverCommand   string
	serverArgs      []string
	query           string
	maxResults      int
	to              []string
	debug           bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Launch the Gmail MCP server and call its tools with user credentials",
		Long: `Launch the Gmail MCP server as a subprocess speaking MCP over stdio and run a
fixed sequence of calls against it:

  1. list the available tools
  2. list_email_labels
  3. search_emails (query "is:unread", 5 results)
  4. send_email (to test@example.com)

Every tool call carries the OAuth credential bundle in the "_userCredentials"
argument. A failing step is reported and the sequence continues.

Credentials (later sources win):
  built-in example < config file < credentials file in the config <
  GMAILMCP_* environment variables < --credentials-file

  GMAILMCP_CREDENTIALS_FILE, GMAILMCP_ACCESS_TOKEN, GMAILMCP_REFRESH_TOKEN,
  GMAILMCP_SCOPE, GMAILMCP_TOKEN_TYPE, GMAILMCP_EXPIRY_DATE

The built-in example bundle holds a placeholder access token and is rejected.

Server:
  By default the running executable is launched with "serve" and the environment
  USE_USER_CREDENTIALS=true DEBUG_USER_AUTH=true. Use --server-command and
  --server-arg to drive a different MCP server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDriver(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "TOML run configuration file. Can also use GMAILMCP_CONFIG env var.")
	cmd.Flags().StringVar(&opts.credentialsFile, "credentials-file", "", "JSON file with the OAuth credential bundle")
	cmd.Flags().StringVar(&opts.serverCommand, "server-command", "", "Command that starts the MCP server (default: this executable)")
	cmd.Flags().StringArrayVar(&opts.serverArgs, "server-arg", nil, "Argument for the server command (repeatable)")
	cmd.Flags().StringVar(&opts.query, "query", "", "Gmail search query for search_emails (default: is:unread)")
	cmd.Flags().IntVar(&opts.maxResults, "max-results", 0, "Maximum number of search results (default: 5)")
	cmd.Flags().StringSliceVar(&opts.to, "to", nil, "Recipients of the test email (default: test@example.com)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	return cmd
}

func runDriver(cmd *cobra.Command, opts runOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.Setup(os.Stderr, opts.debug, slog.LevelWarn)

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	if cfg.Path() != "" {
		logger.Debug("loaded run configuration", "path", cfg.Path())
	}

	bundle, err := resolveBundle(cfg, opts.credentialsFile, os.LookupEnv)
	if err != nil {
		return err
	}

	launch, err := resolveLaunch(cfg, opts)
	if err != nil {
		return err
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Debug("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	runner := &driver.Runner{
		Bundle:    bundle,
		Plan:      resolvePlan(cfg, opts),
		Bootstrap: driver.StdioBootstrapper(launch, version, os.Stderr, logger),
		Console:   driver.NewConsole(cmd.OutOrStdout(), nil),
		Metrics:   provider.Metrics(),
		Logger:    logger,
	}
	return runner.Run(ctx)
}

// resolveBundle layers the credential sources. The built-in example is only used
// when no source supplies any field, so a partial bundle fails validation.
func resolveBundle(cfg *config.RunConfig, credentialsFile string, lookup func(string) (string, bool)) (credentials.Bundle, error) {
	b := cfg.Credentials.Bundle()

	if cfg.Credentials.File != "" {
		fromFile, err := credentials.LoadFile(cfg.Credentials.File)
		if err != nil {
			return credentials.Bundle{}, err
		}
		b = credentials.Merge(b, fromFile)
	}

	b, err := credentials.FromEnv(b, lookup)
	if err != nil {
		return credentials.Bundle{}, err
	}

	if credentialsFile != "" {
		fromFile, err := credentials.LoadFile(config.ExpandHome(credentialsFile))
		if err != nil {
			return credentials.Bundle{}, err
		}
		b = credentials.Merge(b, fromFile)
	}

	if b == (credentials.Bundle{}) {
		return credentials.Example(), nil
	}
	return b, nil
}

func resolveLaunch(cfg *config.RunConfig, opts runOptions) (driver.LaunchDescriptor, error) {
	d, err := driver.DefaultLaunchDescriptor()
	if err != nil {
		return driver.LaunchDescriptor{}, err
	}

	if cfg.Server.Command != "" {
		d.Command = cfg.Server.Command
		d.Args = cfg.Server.Args
	} else if cfg.Server.Args != nil {
		d.Args = cfg.Server.Args
	}
	d = d.WithEnv(cfg.Server.Env)

	if opts.serverCommand != "" {
		d.Command = opts.serverCommand
		d.Args = nil
	}
	if len(opts.serverArgs) > 0 {
		d.Args = opts.serverArgs
	}
	return d, nil
}

func resolvePlan(cfg *config.RunConfig, opts runOptions) driver.Plan {
	plan := driver.DefaultPlan()

	if cfg.Search.Query != "" {
		plan.Query = cfg.Search.Query
	}
	if cfg.Search.MaxResults > 0 {
		plan.MaxResults = cfg.Search.MaxResults
	}
	if len(cfg.Email.To) > 0 {
		plan.To = cfg.Email.To
	}
	if cfg.Email.Subject != "" {
		plan.Subject = cfg.Email.Subject
	}
	if cfg.Email.Body != "" {
		plan.Body = cfg.Email.Body
	}
	if cfg.Email.MimeType != "" {
		plan.MimeType = cfg.Email.MimeType
	}

	if opts.query != "" {
		plan.Query = opts.query
	}
	if opts.maxResults > 0 {
		plan.MaxResults = opts.maxResults
	}
	if len(opts.to) > 0 {
		plan.To = opts.to
	}
	return plan
}
