package gmail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/gmailmcp/internal/instrumentation"
)

// Label types reported by the Gmail API.
const (
	LabelTypeSystem = "system"
	LabelTypeUser   = "user"
)

// ErrSystemLabel is returned when deleting a label Gmail manages itself.
var ErrSystemLabel = errors.New("system labels cannot be deleted")

// Label is a Gmail label.
type Label struct {
	ID   string
	Name string
	Type string
}

// LabelSet is the user's labels split by type.
type LabelSet struct {
	System []Label
	User   []Label
}

// Total returns the number of labels in the set.
func (s LabelSet) Total() int {
	return len(s.System) + len(s.User)
}

// ListLabels lists all labels of the mailbox, split into system and user labels.
func (c *Client) ListLabels(ctx context.Context) (LabelSet, error) {
	resp, err := traced(ctx, instrumentation.OperationList, func(ctx context.Context) (*gmail.ListLabelsResponse, error) {
		return c.svc.Labels.List(userID).Context(ctx).Do()
	})
	if err != nil {
		return LabelSet{}, fmt.Errorf("failed to list labels: %w", err)
	}

	var set LabelSet
	for _, l := range resp.Labels {
		label := Label{ID: l.Id, Name: l.Name, Type: l.Type}
		if l.Type == LabelTypeSystem {
			set.System = append(set.System, label)
		} else {
			set.User = append(set.User, label)
		}
	}
	return set, nil
}

// CreateLabelOptions are the optional settings for a new label.
type CreateLabelOptions struct {
	// MessageListVisibility is "show" or "hide".
	MessageListVisibility string
	// LabelListVisibility is "labelShow", "labelShowIfUnread" or "labelHide".
	LabelListVisibility string
}

// CreateLabel creates a user label.
func (c *Client) CreateLabel(ctx context.Context, name string, opts CreateLabelOptions) (Label, error) {
	if name == "" {
		return Label{}, fmt.Errorf("label name is required")
	}

	req := &gmail.Label{
		Name:                  name,
		MessageListVisibility: opts.MessageListVisibility,
		LabelListVisibility:   opts.LabelListVisibility,
	}
	if req.MessageListVisibility == "" {
		req.MessageListVisibility = "show"
	}
	if req.LabelListVisibility == "" {
		req.LabelListVisibility = "labelShow"
	}

	created, err := traced(ctx, instrumentation.OperationCreate, func(ctx context.Context) (*gmail.Label, error) {
		return c.svc.Labels.Create(userID, req).Context(ctx).Do()
	})
	if err != nil {
		return Label{}, fmt.Errorf("failed to create label %q: %w", name, err)
	}
	return Label{ID: created.Id, Name: created.Name, Type: created.Type}, nil
}

// GetLabel reads a single label by ID.
func (c *Client) GetLabel(ctx context.Context, id string) (Label, error) {
	if id == "" {
		return Label{}, fmt.Errorf("label id is required")
	}

	l, err := traced(ctx, instrumentation.OperationGet, func(ctx context.Context) (*gmail.Label, error) {
		return c.svc.Labels.Get(userID, id).Context(ctx).Do()
	})
	if err != nil {
		return Label{}, fmt.Errorf("failed to get label %s: %w", id, err)
	}
	return Label{ID: l.Id, Name: l.Name, Type: l.Type}, nil
}

// UpdateLabelOptions are the label fields to change. Empty fields are left as they are.
type UpdateLabelOptions struct {
	Name                  string
	MessageListVisibility string
	LabelListVisibility   string
}

func (o UpdateLabelOptions) empty() bool {
	return o.Name == "" && o.MessageListVisibility == "" && o.LabelListVisibility == ""
}

// UpdateLabel patches the label with ID id.
func (c *Client) UpdateLabel(ctx context.Context, id string, opts UpdateLabelOptions) (Label, error) {
	if id == "" {
		return Label{}, fmt.Errorf("label id is required")
	}
	if opts.empty() {
		return Label{}, fmt.Errorf("nothing to update for label %s", id)
	}

	req := &gmail.Label{
		Name:                  opts.Name,
		MessageListVisibility: opts.MessageListVisibility,
		LabelListVisibility:   opts.LabelListVisibility,
	}
	l, err := traced(ctx, instrumentation.OperationUpdate, func(ctx context.Context) (*gmail.Label, error) {
		return c.svc.Labels.Patch(userID, id, req).Context(ctx).Do()
	})
	if err != nil {
		return Label{}, fmt.Errorf("failed to update label %s: %w", id, err)
	}
	return Label{ID: l.Id, Name: l.Name, Type: l.Type}, nil
}

// DeleteLabel deletes a user label and returns what was deleted.
// System labels are refused with ErrSystemLabel.
func (c *Client) DeleteLabel(ctx context.Context, id string) (Label, error) {
	label, err := c.GetLabel(ctx, id)
	if err != nil {
		return Label{}, err
	}
	if label.Type == LabelTypeSystem {
		return Label{}, fmt.Errorf("label %q: %w", label.Name, ErrSystemLabel)
	}

	_, err = traced(ctx, instrumentation.OperationDelete, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.svc.Labels.Delete(userID, id).Context(ctx).Do()
	})
	if err != nil {
		return Label{}, fmt.Errorf("failed to delete label %s: %w", id, err)
	}
	return label, nil
}

// FindLabel looks a label up by name, ignoring case. ok is false when there is none.
func (c *Client) FindLabel(ctx context.Context, name string) (label Label, ok bool, err error) {
	set, err := c.ListLabels(ctx)
	if err != nil {
		return Label{}, false, err
	}
	for _, group := range [][]Label{set.User, set.System} {
		for _, l := range group {
			if strings.EqualFold(l.Name, name) {
				return l, true, nil
			}
		}
	}
	return Label{}, false, nil
}

// GetOrCreateLabel returns the label called name, creating it when it does not
// exist yet. created reports which of the two happened.
func (c *Client) GetOrCreateLabel(ctx context.Context, name string, opts CreateLabelOptions) (label Label, created bool, err error) {
	if name == "" {
		return Label{}, false, fmt.Errorf("label name is required")
	}

	label, found, err := c.FindLabel(ctx, name)
	if err != nil {
		return Label{}, false, err
	}
	if found {
		return label, false, nil
	}

	label, err = c.CreateLabel(ctx, name, opts)
	if err != nil {
		return Label{}, false, err
	}
	return label, true, nil
}
