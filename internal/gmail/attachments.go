package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/gmailmcp/internal/instrumentation"
)

// MaxAttachmentSize is the largest attachment GetAttachment accepts (25MB).
const MaxAttachmentSize = 25 * 1024 * 1024

// GetAttachment downloads the content of an attachment.
func (c *Client) GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}
	if attachmentID == "" {
		return nil, fmt.Errorf("attachmentID is required")
	}

	body, err := traced(ctx, instrumentation.OperationGet, func(ctx context.Context) (*gmail.MessagePartBody, error) {
		return c.svc.Messages.Attachments.Get(userID, messageID, attachmentID).Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment %s: %w", attachmentID, err)
	}

	if body.Size > MaxAttachmentSize {
		return nil, fmt.Errorf("attachment size %d exceeds maximum size %d", body.Size, MaxAttachmentSize)
	}
	if body.Data == "" {
		return nil, fmt.Errorf("no attachment data received")
	}

	// Gmail sends base64url; older payloads sometimes use the standard alphabet.
	data, err := base64.URLEncoding.DecodeString(body.Data)
	if err != nil {
		data, err = base64.StdEncoding.DecodeString(body.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode attachment data: %w", err)
		}
	}
	return data, nil
}

// AttachmentFilename returns the filename the message gives the attachment,
// or "attachment-<id>" when the part has none or cannot be found.
func (c *Client) AttachmentFilename(ctx context.Context, messageID, attachmentID string) (string, error) {
	msg, err := c.fullMessage(ctx, messageID)
	if err != nil {
		return "", fmt.Errorf("failed to get message %s: %w", messageID, err)
	}

	name := ""
	walkParts(msg.Payload, func(part *gmail.MessagePart) {
		if name == "" && part.Body != nil && part.Body.AttachmentId == attachmentID {
			name = part.Filename
		}
	})
	if name == "" {
		name = "attachment-" + attachmentID
	}
	return name, nil
}
