package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/teemow/gmailmcp/internal/credentials"
	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/logging"
)

// ErrValidationFailed is returned by Runner.Run when the credential bundle is unusable.
// No server is started in that case.
var ErrValidationFailed = errors.New("credential validation failed")

// reportedError marks an error whose diagnostic was already written to the console.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// IsReported reports whether err was already printed by Runner.Run.
func IsReported(err error) bool {
	var re *reportedError
	return errors.As(err, &re)
}

// Runner validates the credentials, opens a session and runs the sequence.
type Runner struct {
	Bundle    credentials.Bundle
	Plan      Plan
	Bootstrap Bootstrapper
	Console   *Console
	Metrics   *instrumentation.Metrics
	Logger    *slog.Logger

	// NewRunID defaults to a random UUID.
	NewRunID func() string
}

// Run executes one driver run.
//
// It returns nil on completion and when ctx is cancelled (user interrupt),
// an error wrapping ErrValidationFailed when the bundle is rejected, and any
// other error otherwise. Returned errors satisfy IsReported. The session is
// closed on every path.
func (r *Runner) Run(ctx context.Context) error {
	r.Console.Banner(MarkerBanner, "Gmail MCP Client - User Authentication Example")

	if err := r.validate(); err != nil {
		return &reportedError{err: err}
	}

	err := r.run(ctx)
	switch {
	case err == nil:
		r.Console.Section(MarkerDone, "Example completed")
		return nil
	case ctx.Err() != nil:
		r.Console.Section(MarkerGoodbye, "Client closed by user")
		return nil
	default:
		r.Console.Text("")
		r.Console.Failure(fmt.Sprintf("%s Unexpected error: %v", MarkerError, err))
		return &reportedError{err: err}
	}
}

func (r *Runner) validate() error {
	err := r.Bundle.Validate()
	if err == nil {
		return nil
	}

	var fieldErr *credentials.ValidationError
	switch {
	case errors.As(err, &fieldErr):
		r.Console.Failure(fmt.Sprintf("%s Error: Required field '%s' is missing from the credentials", MarkerError, fieldErr.Field))
		r.Console.Text("Please update the OAuth credentials in the configuration")
	case errors.Is(err, credentials.ErrPlaceholderToken):
		r.Console.Failure(fmt.Sprintf("%s Error: You must replace the example credentials with real credentials", MarkerError))
		r.Console.Text("Instructions:")
		r.Console.Text("1. Configure OAuth 2.0 in the Google Cloud Console")
		r.Console.Text("2. Obtain access and refresh tokens for the user")
		r.Console.Text("3. Provide them via --credentials-file, the config file or the GMAILMCP_* environment variables")
	default:
		r.Console.Failure(fmt.Sprintf("%s Error: %v", MarkerError, err))
	}

	return fmt.Errorf("%w: %w", ErrValidationFailed, err)
}

func (r *Runner) run(ctx context.Context) error {
	runID := r.runID()
	logger := r.logger().With(logging.RunID(runID))

	session, closeSession, err := r.Bootstrap(ctx)
	if err != nil {
		return err
	}
	r.Metrics.IncrementActiveSessions(ctx)
	defer func() {
		r.Metrics.DecrementActiveSessions(context.WithoutCancel(ctx))
		if err := closeSession(); err != nil {
			logger.Debug("failed to close session", logging.Err(err))
		}
	}()

	r.Console.Banner(MarkerStarted, "Gmail MCP client with user authentication started")

	seq := &Sequencer{
		Session: session,
		Bundle:  r.Bundle,
		Plan:    r.Plan,
		Console: r.Console,
		Metrics: r.Metrics,
		Logger:  logger,
		RunID:   runID,
	}
	report, err := seq.Run(ctx)
	logReport(logger, report)
	return err
}

func logReport(logger *slog.Logger, report Report) {
	for _, res := range report.Results {
		logger.Debug("run summary",
			logging.Step(res.Name),
			logging.Tool(res.Tool),
			logging.Status(res.Status()),
			logging.Duration(res.Duration))
	}
	logger.Debug("run finished", "steps", len(report.Results), "failed", len(report.Failed()))
}

func (r *Runner) runID() string {
	if r.NewRunID != nil {
		return r.NewRunID()
	}
	return uuid.NewString()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
