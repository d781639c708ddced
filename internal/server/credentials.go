package server

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/teemow/gmailmcp/internal/credentials"
	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/logging"
)

// ErrNoCredentials is returned when neither the request nor the server provide a token.
var ErrNoCredentials = errors.New("credentials are required: include them in the '_userCredentials' field or configure server credentials")

// ErrUserCredentialsDisabled is reported in debug logs when a request carries
// credentials but the server runs without USE_USER_CREDENTIALS.
var ErrUserCredentialsDisabled = errors.New("user credentials are disabled on this server")

// Resolution is the token chosen for one tool call.
type Resolution struct {
	// Source is instrumentation.CredentialSourceUser or CredentialSourceServer.
	Source string
	Token  *oauth2.Token
}

// ResolveToken picks the OAuth token for a tool call from its arguments, falling back
// to the server's own credentials. Every outcome is recorded in the credential
// resolution metric.
func (sc *ServerContext) ResolveToken(ctx context.Context, args map[string]any) (Resolution, error) {
	logger := sc.logger

	if credentials.HasCredentials(args) {
		if !sc.userCredentials {
			sc.metrics.RecordCredentialResolution(ctx, instrumentation.CredentialSourceUser, instrumentation.CredentialResultDisabled)
			if sc.debug {
				logger.Debug("ignoring request credentials", logging.Err(ErrUserCredentialsDisabled))
			}
		} else {
			return sc.resolveUserToken(ctx, args)
		}
	} else if sc.userCredentials && sc.debug {
		logger.Debug("request carries no user credentials, falling back to server credentials")
	}

	return sc.resolveServerToken(ctx)
}

func (sc *ServerContext) resolveUserToken(ctx context.Context, args map[string]any) (Resolution, error) {
	bundle, err := credentials.FromArguments(args)
	if err != nil {
		sc.metrics.RecordCredentialResolution(ctx, instrumentation.CredentialSourceUser, instrumentation.CredentialResultInvalid)
		return Resolution{}, err
	}

	if err := bundle.CheckUsable(sc.now()); err != nil {
		refreshable := errors.Is(err, credentials.ErrCredentialsExpired) &&
			sc.clientCreds.Configured() && bundle.RefreshToken != ""
		if !refreshable {
			result := instrumentation.CredentialResultInvalid
			if errors.Is(err, credentials.ErrCredentialsExpired) {
				result = instrumentation.CredentialResultExpired
			}
			sc.metrics.RecordCredentialResolution(ctx, instrumentation.CredentialSourceUser, result)
			return Resolution{}, err
		}
		if sc.debug {
			sc.logger.Debug("user access token expired, refreshing with client credentials")
		}
	}

	if sc.debug {
		sc.logger.Debug("using per-request user credentials",
			"access_token", logging.SanitizeToken(bundle.AccessToken),
			"scope", bundle.Scope,
			"expiry", bundle.Expiry())
	}

	sc.metrics.RecordCredentialResolution(ctx, instrumentation.CredentialSourceUser, instrumentation.CredentialResultOK)
	return Resolution{Source: instrumentation.CredentialSourceUser, Token: bundle.Token()}, nil
}

func (sc *ServerContext) resolveServerToken(ctx context.Context) (Resolution, error) {
	if sc.tokenProvider == nil || !sc.tokenProvider.Available() {
		sc.metrics.RecordCredentialResolution(ctx, instrumentation.CredentialSourceServer, instrumentation.CredentialResultMissing)
		if sc.userCredentials {
			return Resolution{}, credentials.ErrCredentialsNotFound
		}
		return Resolution{}, ErrNoCredentials
	}

	tok, err := sc.tokenProvider.Token(ctx)
	if err != nil {
		sc.metrics.RecordCredentialResolution(ctx, instrumentation.CredentialSourceServer, instrumentation.CredentialResultInvalid)
		return Resolution{}, fmt.Errorf("failed to load server credentials: %w", err)
	}

	sc.metrics.RecordCredentialResolution(ctx, instrumentation.CredentialSourceServer, instrumentation.CredentialResultOK)
	return Resolution{Source: instrumentation.CredentialSourceServer, Token: tok}, nil
}
