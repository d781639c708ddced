package gmail_tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadAttachment(t *testing.T) {
	h := newHarness(t)
	h.fake.AddMessage("m1", map[string]string{"Subject": "Invoice"}, "attached")
	h.fake.AddAttachment("m1", "att-1", "invoice.pdf", "%PDF-1.4")
	dir := filepath.Join(t.TempDir(), "downloads")

	text, isError := h.call(t, ToolDownloadAttachment, map[string]any{
		"messageId":    "m1",
		"attachmentId": "att-1",
		"savePath":     dir,
	})
	assert.False(t, isError)
	path := filepath.Join(dir, "invoice.pdf")
	assert.Equal(t, "Attachment downloaded successfully:\nFile: invoice.pdf\nSize: 8 bytes\nSaved to: "+path, text)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestDownloadAttachment_Filename(t *testing.T) {
	h := newHarness(t)
	h.fake.AddAttachment("m1", "att-1", "", "data")
	h.fake.AddAttachment("m1", "att-2", "ignored.txt", "data")
	dir := t.TempDir()

	text, isError := h.call(t, ToolDownloadAttachment, map[string]any{"messageId": "m1", "attachmentId": "att-1", "savePath": dir})
	assert.False(t, isError)
	assert.Contains(t, text, "File: attachment-att-1\n")

	text, isError = h.call(t, ToolDownloadAttachment, map[string]any{
		"messageId":    "m1",
		"attachmentId": "att-2",
		"filename":     "../../escape.txt",
		"savePath":     dir,
	})
	assert.False(t, isError)
	assert.Contains(t, text, "Saved to: "+filepath.Join(dir, "escape.txt"))
	assert.FileExists(t, filepath.Join(dir, "escape.txt"))
}

func TestDownloadAttachment_Errors(t *testing.T) {
	h := newHarness(t)

	text, isError := h.call(t, ToolDownloadAttachment, map[string]any{"messageId": "m1"})
	assert.True(t, isError)
	assert.Equal(t, "'attachmentId' field is required", text)

	text, isError = h.call(t, ToolDownloadAttachment, map[string]any{"messageId": "m1", "attachmentId": "nope", "savePath": t.TempDir()})
	assert.True(t, isError)
	assert.Contains(t, text, "Failed to download attachment")
}
