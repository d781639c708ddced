package gmail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatLabels(t *testing.T) {
	set := LabelSet{
		System: []Label{{ID: "INBOX", Name: "INBOX"}, {ID: "SENT", Name: "SENT"}},
		User:   []Label{{ID: "Label_1", Name: "Receipts"}},
	}

	want := "Found 3 labels (2 system, 1 user):\n\n" +
		"System Labels:\n" +
		"ID: INBOX\nName: INBOX\n\nID: SENT\nName: SENT\n" +
		"\nUser Labels:\n" +
		"ID: Label_1\nName: Receipts\n"
	assert.Equal(t, want, FormatLabels(set))
}

func TestFormatLabel(t *testing.T) {
	assert.Equal(t, "Label created successfully:\nID: Label_1\nName: Work\nType: user",
		FormatLabel("Label created successfully", Label{ID: "Label_1", Name: "Work", Type: "user"}))
	assert.Equal(t, "Successfully found existing label:\nID: Label_2\nName: Home\nType: user",
		FormatLabel("Successfully found existing label", Label{ID: "Label_2", Name: "Home", Type: "user"}))
}

func TestFormatSearchResults(t *testing.T) {
	assert.Equal(t, "No messages found.", FormatSearchResults(nil))

	got := FormatSearchResults([]MessageSummary{
		{ID: "m1", Subject: "Hi", From: "a@example.com", Date: "today"},
		{ID: "m2", Subject: "Yo", From: "b@example.com", Date: "yesterday"},
	})
	assert.Equal(t, "ID: m1\nSubject: Hi\nFrom: a@example.com\nDate: today\n\nID: m2\nSubject: Yo\nFrom: b@example.com\nDate: yesterday\n", got)
}

func TestFormatEmail(t *testing.T) {
	t.Run("plain text preferred", func(t *testing.T) {
		got := FormatEmail(&Email{ThreadID: "t1", Subject: "s", TextBody: "text", HTMLBody: "<p>html</p>"})
		assert.Contains(t, got, "Thread ID: t1\n")
		assert.Contains(t, got, "text")
		assert.NotContains(t, got, "<p>html</p>")
	})

	t.Run("html only gets a note", func(t *testing.T) {
		got := FormatEmail(&Email{HTMLBody: "<p>html</p>"})
		assert.Contains(t, got, "[Note: This email is HTML-formatted.")
		assert.Contains(t, got, "<p>html</p>")
	})

	t.Run("attachments listed", func(t *testing.T) {
		got := FormatEmail(&Email{TextBody: "x", Attachments: []Attachment{{ID: "a1", Filename: "f.pdf", MimeType: "application/pdf", Size: 2048}}})
		assert.Contains(t, got, "Attachments (1):\n- f.pdf (application/pdf, 2 KB, ID: a1)")
	})
}
