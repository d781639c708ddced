package gmail_tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gmailmcp/internal/gmail"
)

func TestUpdateLabel(t *testing.T) {
	h := newHarness(t)
	h.fake.AddLabel("Label_1", "Receipts", gmail.LabelTypeUser)

	text, isError := h.call(t, ToolUpdateLabel, map[string]any{"id": "Label_1", "name": "Invoices"})
	assert.False(t, isError)
	assert.Equal(t, "Label updated successfully:\nID: Label_1\nName: Invoices\nType: user", text)

	text, isError = h.call(t, ToolUpdateLabel, map[string]any{"name": "x"})
	assert.True(t, isError)
	assert.Equal(t, "'id' field is required", text)
}

func TestDeleteLabel(t *testing.T) {
	h := newHarness(t)
	h.fake.AddLabel("INBOX", "INBOX", gmail.LabelTypeSystem)
	h.fake.AddLabel("Label_1", "Receipts", gmail.LabelTypeUser)

	text, isError := h.call(t, ToolDeleteLabel, map[string]any{"id": "Label_1"})
	assert.False(t, isError)
	assert.Equal(t, `Label "Receipts" deleted successfully.`, text)

	text, isError = h.call(t, ToolDeleteLabel, map[string]any{"id": "INBOX"})
	assert.True(t, isError)
	assert.Contains(t, text, "system labels cannot be deleted")
	require.Len(t, h.fake.Labels(), 1)
}

func TestGetOrCreateLabel(t *testing.T) {
	h := newHarness(t)
	h.fake.AddLabel("Label_1", "Receipts", gmail.LabelTypeUser)

	text, isError := h.call(t, ToolGetOrCreateLabel, map[string]any{"name": "receipts"})
	assert.False(t, isError)
	assert.Equal(t, "Successfully found existing label:\nID: Label_1\nName: Receipts\nType: user", text)

	text, isError = h.call(t, ToolGetOrCreateLabel, map[string]any{"name": "Travel", "labelListVisibility": "labelHide"})
	assert.False(t, isError)
	assert.Contains(t, text, "Successfully created new label:\nID: Label_")
	labels := h.fake.Labels()
	require.Len(t, labels, 2)
	assert.Equal(t, "labelHide", labels[1].LabelListVisibility)
}
