package gmail

import (
	"fmt"
	"strings"
)

// FormatLabels renders a label set as the list_email_labels tool text.
func FormatLabels(set LabelSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d labels (%d system, %d user):\n\n", set.Total(), len(set.System), len(set.User))

	b.WriteString("System Labels:\n")
	b.WriteString(formatLabelBlocks(set.System))
	b.WriteString("\nUser Labels:\n")
	b.WriteString(formatLabelBlocks(set.User))
	return b.String()
}

func formatLabelBlocks(labels []Label) string {
	blocks := make([]string, 0, len(labels))
	for _, l := range labels {
		blocks = append(blocks, fmt.Sprintf("ID: %s\nName: %s\n", l.ID, l.Name))
	}
	return strings.Join(blocks, "\n")
}

// FormatLabel renders a single label below heading, for example "Label created successfully".
func FormatLabel(heading string, l Label) string {
	return fmt.Sprintf("%s:\nID: %s\nName: %s\nType: %s", heading, l.ID, l.Name, l.Type)
}

// FormatSearchResults renders search hits, one block per message.
func FormatSearchResults(results []MessageSummary) string {
	if len(results) == 0 {
		return "No messages found."
	}
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("ID: %s\nSubject: %s\nFrom: %s\nDate: %s\n", r.ID, r.Subject, r.From, r.Date))
	}
	return strings.Join(blocks, "\n")
}

// FormatEmail renders a read message. The plain text body is preferred over HTML.
func FormatEmail(e *Email) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thread ID: %s\nSubject: %s\nFrom: %s\nTo: %s\nDate: %s\n\n", e.ThreadID, e.Subject, e.From, e.To, e.Date)

	switch {
	case e.TextBody != "":
		b.WriteString(e.TextBody)
	case e.HTMLBody != "":
		b.WriteString("[Note: This email is HTML-formatted. Plain text version not available.]\n\n")
		b.WriteString(e.HTMLBody)
	}

	if len(e.Attachments) > 0 {
		fmt.Fprintf(&b, "\n\nAttachments (%d):\n", len(e.Attachments))
		lines := make([]string, 0, len(e.Attachments))
		for _, a := range e.Attachments {
			lines = append(lines, fmt.Sprintf("- %s (%s, %d KB, ID: %s)", a.Filename, a.MimeType, (a.Size+512)/1024, a.ID))
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	return b.String()
}
