package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strings"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/gmailmcp/internal/instrumentation"
)

// Supported body MIME types.
const (
	MimeTypePlain       = "text/plain"
	MimeTypeHTML        = "text/html"
	MimeTypeAlternative = "multipart/alternative"
)

// EmailMessage represents an email to be sent or drafted.
type EmailMessage struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string

	// HTMLBody is used with MimeTypeAlternative.
	HTMLBody string

	// MimeType defaults to MimeTypePlain.
	MimeType string

	ThreadID  string
	InReplyTo string
}

// Validate checks the fields every outgoing message needs. Recipients must parse
// as RFC 5322 addresses and header values must not contain line breaks.
func (m *EmailMessage) Validate() error {
	if len(m.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	for _, field := range []struct {
		name  string
		addrs []string
	}{{"to", m.To}, {"cc", m.Cc}, {"bcc", m.Bcc}} {
		if err := validateAddresses(field.name, field.addrs); err != nil {
			return err
		}
	}
	if m.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if err := validateHeaderValue("subject", m.Subject); err != nil {
		return err
	}
	if err := validateHeaderValue("inReplyTo", m.InReplyTo); err != nil {
		return err
	}
	if m.Body == "" && m.HTMLBody == "" {
		return fmt.Errorf("body is required")
	}
	switch m.mimeType() {
	case MimeTypePlain, MimeTypeHTML, MimeTypeAlternative:
	default:
		return fmt.Errorf("unsupported mimeType %q", m.MimeType)
	}
	return nil
}

func validateAddresses(field string, addrs []string) error {
	for _, addr := range addrs {
		if err := validateHeaderValue(field, addr); err != nil {
			return err
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			return fmt.Errorf("invalid %s address %q: %w", field, addr, err)
		}
	}
	return nil
}

func validateHeaderValue(field, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%s must not contain line breaks", field)
	}
	return nil
}

func (m *EmailMessage) mimeType() string {
	if m.MimeType == "" {
		if m.HTMLBody != "" {
			return MimeTypeAlternative
		}
		return MimeTypePlain
	}
	return m.MimeType
}

// Raw builds the RFC 2822 message and returns it base64url-encoded, as the Gmail API expects.
func (m *EmailMessage) Raw() (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}

	var b strings.Builder

	b.WriteString("To: " + strings.Join(m.To, ", ") + "\r\n")
	if len(m.Cc) > 0 {
		b.WriteString("Cc: " + strings.Join(m.Cc, ", ") + "\r\n")
	}
	if len(m.Bcc) > 0 {
		b.WriteString("Bcc: " + strings.Join(m.Bcc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + encodeRFC2047(m.Subject) + "\r\n")
	if m.InReplyTo != "" {
		b.WriteString("In-Reply-To: " + m.InReplyTo + "\r\n")
		b.WriteString("References: " + m.InReplyTo + "\r\n")
	}
	b.WriteString("MIME-Version: 1.0\r\n")

	switch m.mimeType() {
	case MimeTypeAlternative:
		body, boundary, err := alternativeBody(m.Body, m.HTMLBody)
		if err != nil {
			return "", err
		}
		b.WriteString("Content-Type: multipart/alternative; boundary=\"" + boundary + "\"\r\n\r\n")
		b.WriteString(body)
	case MimeTypeHTML:
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(firstNonEmpty(m.HTMLBody, m.Body))
	default:
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(m.Body)
	}

	return base64.URLEncoding.EncodeToString([]byte(b.String())), nil
}

// alternativeBody writes the text and HTML parts of a multipart/alternative body.
func alternativeBody(text, html string) (string, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=\"UTF-8\"", text},
		{"text/html; charset=\"UTF-8\"", html},
	}
	for _, p := range parts {
		if p.content == "" {
			continue
		}
		pw, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return "", "", fmt.Errorf("failed to create message part: %w", err)
		}
		if _, err := pw.Write([]byte(p.content)); err != nil {
			return "", "", fmt.Errorf("failed to write message part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return "", "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return buf.String(), w.Boundary(), nil
}

// SendEmail sends msg and returns the ID of the sent message.
func (c *Client) SendEmail(ctx context.Context, msg *EmailMessage) (string, error) {
	raw, err := msg.Raw()
	if err != nil {
		return "", err
	}

	sent, err := traced(ctx, instrumentation.OperationSend, func(ctx context.Context) (*gmail.Message, error) {
		return c.svc.Messages.Send(userID, &gmail.Message{Raw: raw, ThreadId: msg.ThreadID}).Context(ctx).Do()
	})
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

// CreateDraft stores msg as a draft and returns the draft ID.
func (c *Client) CreateDraft(ctx context.Context, msg *EmailMessage) (string, error) {
	raw, err := msg.Raw()
	if err != nil {
		return "", err
	}

	draft := &gmail.Draft{Message: &gmail.Message{Raw: raw, ThreadId: msg.ThreadID}}
	created, err := traced(ctx, instrumentation.OperationCreate, func(ctx context.Context) (*gmail.Draft, error) {
		return c.svc.Drafts.Create(userID, draft).Context(ctx).Do()
	})
	if err != nil {
		return "", fmt.Errorf("failed to create draft: %w", err)
	}
	return created.Id, nil
}

// encodeRFC2047 encodes non-ASCII header values (like German umlauts) per RFC 2047.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
