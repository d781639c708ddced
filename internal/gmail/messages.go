package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/gmailmcp/internal/instrumentation"
)

// DefaultMaxResults is the search page size when the caller gives none.
const DefaultMaxResults = 10

// MessageSummary is the metadata of a search hit.
type MessageSummary struct {
	ID      string
	Subject string
	From    string
	Date    string
}

// Attachment describes a message part stored as an attachment.
type Attachment struct {
	ID       string
	Filename string
	MimeType string
	Size     int64
}

// Email is a fully read message.
type Email struct {
	ID       string
	ThreadID string
	Subject  string
	From     string
	To       string
	Date     string

	TextBody string
	HTMLBody string

	Attachments []Attachment
}

// SearchMessages returns the metadata of up to maxResults messages matching query.
// A maxResults of zero or less uses DefaultMaxResults.
func (c *Client) SearchMessages(ctx context.Context, query string, maxResults int64) ([]MessageSummary, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	res, err := traced(ctx, instrumentation.OperationSearch, func(ctx context.Context) (*gmail.ListMessagesResponse, error) {
		return c.svc.Messages.List(userID).Q(query).MaxResults(maxResults).Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}

	summaries := make([]MessageSummary, 0, len(res.Messages))
	for _, m := range res.Messages {
		detail, err := traced(ctx, instrumentation.OperationGet, func(ctx context.Context) (*gmail.Message, error) {
			return c.svc.Messages.Get(userID, m.Id).
				Format("metadata").
				MetadataHeaders("Subject", "From", "Date").
				Context(ctx).
				Do()
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", m.Id, err)
		}
		summaries = append(summaries, MessageSummary{
			ID:      m.Id,
			Subject: HeaderValue(detail, "Subject"),
			From:    HeaderValue(detail, "From"),
			Date:    HeaderValue(detail, "Date"),
		})
	}
	return summaries, nil
}

// GetMessage reads a full message, decoding its text and HTML bodies.
func (c *Client) GetMessage(ctx context.Context, messageID string) (*Email, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}

	msg, err := c.fullMessage(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}

	email := &Email{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Subject:  HeaderValue(msg, "Subject"),
		From:     HeaderValue(msg, "From"),
		To:       HeaderValue(msg, "To"),
		Date:     HeaderValue(msg, "Date"),
	}

	walkParts(msg.Payload, func(part *gmail.MessagePart) {
		if part.Body == nil {
			return
		}
		if part.Body.AttachmentId != "" {
			filename := part.Filename
			if filename == "" {
				filename = "attachment-" + part.Body.AttachmentId
			}
			mimeType := part.MimeType
			if mimeType == "" {
				mimeType = "application/octet-stream"
			}
			email.Attachments = append(email.Attachments, Attachment{
				ID:       part.Body.AttachmentId,
				Filename: filename,
				MimeType: mimeType,
				Size:     part.Body.Size,
			})
			return
		}
		if part.Body.Data == "" {
			return
		}
		switch {
		case strings.HasPrefix(part.MimeType, "text/plain") && email.TextBody == "":
			email.TextBody = decodeBody(part.Body.Data)
		case strings.HasPrefix(part.MimeType, "text/html") && email.HTMLBody == "":
			email.HTMLBody = decodeBody(part.Body.Data)
		}
	})

	return email, nil
}

// ModifyMessage adds and removes labels on one message.
func (c *Client) ModifyMessage(ctx context.Context, messageID string, add, remove []string) error {
	if messageID == "" {
		return fmt.Errorf("messageID is required")
	}
	if len(add) == 0 && len(remove) == 0 {
		return fmt.Errorf("no labels to add or remove for message %s", messageID)
	}

	req := &gmail.ModifyMessageRequest{AddLabelIds: add, RemoveLabelIds: remove}
	_, err := traced(ctx, instrumentation.OperationModify, func(ctx context.Context) (*gmail.Message, error) {
		return c.svc.Messages.Modify(userID, messageID, req).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to modify message %s: %w", messageID, err)
	}
	return nil
}

// DeleteMessage permanently deletes a message, skipping the trash.
func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	if messageID == "" {
		return fmt.Errorf("messageID is required")
	}

	_, err := traced(ctx, instrumentation.OperationDelete, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.svc.Messages.Delete(userID, messageID).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to delete message %s: %w", messageID, err)
	}
	return nil
}

func (c *Client) fullMessage(ctx context.Context, messageID string) (*gmail.Message, error) {
	return traced(ctx, instrumentation.OperationGet, func(ctx context.Context) (*gmail.Message, error) {
		return c.svc.Messages.Get(userID, messageID).Format("full").Context(ctx).Do()
	})
}

// HeaderValue returns the first header of m named header, compared case-insensitively.
func HeaderValue(m *gmail.Message, header string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, header) {
			return h.Value
		}
	}
	return ""
}

// walkParts visits part and all nested parts depth-first.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, sub := range part.Parts {
		walkParts(sub, fn)
	}
}

// decodeBody decodes base64url body data, padded or not.
func decodeBody(data string) string {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.StdEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	return ""
}
