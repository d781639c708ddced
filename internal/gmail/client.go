package gmail

import (
	"context"
	"fmt"
	"net/http"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/gmailmcp/internal/instrumentation"
)

// userID addresses the mailbox of the authenticated user.
const userID = "me"

// Client wraps the Gmail Users service for a single set of credentials.
type Client struct {
	svc *gmail.UsersService
}

// NewClient creates a Gmail client that authenticates with httpClient.
// Extra options (for example option.WithEndpoint) are passed to the service.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client is required")
	}

	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{svc: svc.Users}, nil
}

// traced runs one Gmail API call inside a "google.gmail.<operation>" span.
func traced[T any](ctx context.Context, operation string, call func(context.Context) (T, error)) (T, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGmail, operation)
	v, err := call(ctx)
	instrumentation.EndSpan(span, err)
	return v, err
}
