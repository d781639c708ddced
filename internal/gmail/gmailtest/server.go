// Package gmailtest provides an in-memory fake of the Gmail REST API for tests.
package gmailtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Operation names a fake endpoint, used to inject failures.
type Operation string

const (
	OpListLabels    Operation = "labels.list"
	OpGetLabel      Operation = "labels.get"
	OpCreateLabel   Operation = "labels.create"
	OpUpdateLabel   Operation = "labels.patch"
	OpDeleteLabel   Operation = "labels.delete"
	OpListMessages  Operation = "messages.list"
	OpGetMessage    Operation = "messages.get"
	OpModifyMessage Operation = "messages.modify"
	OpDeleteMessage Operation = "messages.delete"
	OpSendMessage   Operation = "messages.send"
	OpGetAttachment Operation = "messages.attachments.get"
	OpCreateDraft   Operation = "drafts.create"
)

// Modification is one messages.modify call received by the fake.
type Modification struct {
	MessageID string
	Add       []string
	Remove    []string
}

// Server is a fake Gmail API for the "me" mailbox.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	labels      []*gmail.Label
	messages    []*gmail.Message
	attachments map[string]string
	sent        []*gmail.Message
	drafts      []*gmail.Draft
	modified    []Modification
	deleted     []string
	failures    map[Operation]int
	brokenIDs   map[string]int
	auth        []string
	queries     []string
	nextID      int
}

// NewServer starts a fake Gmail API that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		attachments: map[string]string{},
		failures:    map[Operation]int{},
		brokenIDs:   map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/labels", s.handle(OpListLabels, s.listLabels))
	mux.HandleFunc("POST /gmail/v1/users/me/labels", s.handle(OpCreateLabel, s.createLabel))
	mux.HandleFunc("GET /gmail/v1/users/me/labels/{id}", s.handle(OpGetLabel, s.getLabel))
	mux.HandleFunc("PATCH /gmail/v1/users/me/labels/{id}", s.handle(OpUpdateLabel, s.updateLabel))
	mux.HandleFunc("DELETE /gmail/v1/users/me/labels/{id}", s.handle(OpDeleteLabel, s.deleteLabel))
	mux.HandleFunc("GET /gmail/v1/users/me/messages", s.handle(OpListMessages, s.listMessages))
	mux.HandleFunc("GET /gmail/v1/users/me/messages/{id}", s.handle(OpGetMessage, s.getMessage))
	mux.HandleFunc("POST /gmail/v1/users/me/messages/{id}/modify", s.handle(OpModifyMessage, s.modifyMessage))
	mux.HandleFunc("DELETE /gmail/v1/users/me/messages/{id}", s.handle(OpDeleteMessage, s.deleteMessage))
	mux.HandleFunc("GET /gmail/v1/users/me/messages/{messageId}/attachments/{id}", s.handle(OpGetAttachment, s.getAttachment))
	mux.HandleFunc("POST /gmail/v1/users/me/messages/send", s.handle(OpSendMessage, s.sendMessage))
	mux.HandleFunc("POST /gmail/v1/users/me/drafts", s.handle(OpCreateDraft, s.createDraft))

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// ClientOptions point a Gmail service at the fake.
func (s *Server) ClientOptions() []option.ClientOption {
	return []option.ClientOption{option.WithEndpoint(s.URL + "/")}
}

// AddLabel adds a label to the mailbox.
func (s *Server) AddLabel(id, name, labelType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels = append(s.labels, &gmail.Label{Id: id, Name: name, Type: labelType})
}

// AddMessage adds a message with the given headers and plain text body.
func (s *Server) AddMessage(id string, headers map[string]string, body string) *gmail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := &gmail.Message{
		Id:       id,
		ThreadId: "thread-" + id,
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Body:     &gmail.MessagePartBody{Data: encode(body), Size: int64(len(body))},
		},
	}
	for name, value := range headers {
		msg.Payload.Headers = append(msg.Payload.Headers, &gmail.MessagePartHeader{Name: name, Value: value})
	}
	s.messages = append(s.messages, msg)
	return msg
}

// PutMessage adds a fully specified message.
func (s *Server) PutMessage(msg *gmail.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// AddAttachment attaches data to the message with ID messageID as a part
// named filename. An empty filename leaves the part unnamed.
func (s *Server) AddAttachment(messageID, attachmentID, filename, data string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.findMessage(messageID)
	if msg == nil {
		msg = &gmail.Message{Id: messageID, ThreadId: "thread-" + messageID, Payload: &gmail.MessagePart{MimeType: "multipart/mixed"}}
		s.messages = append(s.messages, msg)
	}
	msg.Payload.Parts = append(msg.Payload.Parts, &gmail.MessagePart{
		MimeType: "application/octet-stream",
		Filename: filename,
		Body:     &gmail.MessagePartBody{AttachmentId: attachmentID, Size: int64(len(data))},
	})
	s.attachments[messageID+"/"+attachmentID] = encode(data)
}

// FailMessage makes modify and delete requests for the message with ID id answer with status.
func (s *Server) FailMessage(id string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brokenIDs[id] = status
}

// Fail makes every request to op answer with status.
func (s *Server) Fail(op Operation, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = status
}

// Sent returns the messages sent so far.
func (s *Server) Sent() []*gmail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*gmail.Message(nil), s.sent...)
}

// Drafts returns the drafts created so far.
func (s *Server) Drafts() []*gmail.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*gmail.Draft(nil), s.drafts...)
}

// Labels returns the labels of the mailbox.
func (s *Server) Labels() []*gmail.Label {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*gmail.Label(nil), s.labels...)
}

// Message returns the stored message with ID id, or nil.
func (s *Server) Message(id string) *gmail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findMessage(id)
}

// Modifications returns the successful messages.modify calls, in order.
func (s *Server) Modifications() []Modification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Modification(nil), s.modified...)
}

// Deleted returns the IDs of the deleted messages, in order.
func (s *Server) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// Authorizations returns the Authorization headers of all requests, in order.
func (s *Server) Authorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.auth...)
}

// Queries returns the search queries received.
func (s *Server) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func (s *Server) handle(op Operation, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.auth = append(s.auth, r.Header.Get("Authorization"))
		status, failing := s.failures[op]
		s.mu.Unlock()

		if failing {
			writeError(w, status, fmt.Sprintf("%s failed", op))
			return
		}
		fn(w, r)
	}
}

func (s *Server) listLabels(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, &gmail.ListLabelsResponse{Labels: s.labels})
}

func (s *Server) createLabel(w http.ResponseWriter, r *http.Request) {
	var label gmail.Label
	if err := json.NewDecoder(r.Body).Decode(&label); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	label.Id = "Label_" + strconv.Itoa(s.nextID)
	label.Type = "user"
	s.labels = append(s.labels, &label)
	writeJSON(w, &label)
}

func (s *Server) getLabel(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, l := s.findLabel(r.PathValue("id")); l != nil {
		writeJSON(w, l)
		return
	}
	writeError(w, http.StatusNotFound, "Requested entity was not found.")
}

func (s *Server) updateLabel(w http.ResponseWriter, r *http.Request) {
	var patch gmail.Label
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, l := s.findLabel(r.PathValue("id"))
	if l == nil {
		writeError(w, http.StatusNotFound, "Requested entity was not found.")
		return
	}
	if patch.Name != "" {
		l.Name = patch.Name
	}
	if patch.MessageListVisibility != "" {
		l.MessageListVisibility = patch.MessageListVisibility
	}
	if patch.LabelListVisibility != "" {
		l.LabelListVisibility = patch.LabelListVisibility
	}
	writeJSON(w, l)
}

func (s *Server) deleteLabel(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, l := s.findLabel(r.PathValue("id"))
	if l == nil {
		writeError(w, http.StatusNotFound, "Requested entity was not found.")
		return
	}
	if l.Type == "system" {
		writeError(w, http.StatusBadRequest, "Invalid delete request")
		return
	}
	s.labels = append(s.labels[:i], s.labels[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = append(s.queries, r.URL.Query().Get("q"))

	limit := len(s.messages)
	if v, err := strconv.Atoi(r.URL.Query().Get("maxResults")); err == nil && v < limit {
		limit = v
	}

	resp := &gmail.ListMessagesResponse{}
	for _, m := range s.messages[:limit] {
		resp.Messages = append(resp.Messages, &gmail.Message{Id: m.Id, ThreadId: m.ThreadId})
	}
	writeJSON(w, resp)
}

func (s *Server) getMessage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m := s.findMessage(r.PathValue("id")); m != nil {
		writeJSON(w, m)
		return
	}
	writeError(w, http.StatusNotFound, "Requested entity was not found.")
}

func (s *Server) modifyMessage(w http.ResponseWriter, r *http.Request) {
	var req gmail.ModifyMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if status, broken := s.brokenIDs[id]; broken {
		writeError(w, status, fmt.Sprintf("modify %s failed", id))
		return
	}
	msg := s.findMessage(id)
	if msg == nil {
		writeError(w, http.StatusNotFound, "Requested entity was not found.")
		return
	}

	labels := make([]string, 0, len(msg.LabelIds)+len(req.AddLabelIds))
	for _, l := range msg.LabelIds {
		if !slices.Contains(req.RemoveLabelIds, l) {
			labels = append(labels, l)
		}
	}
	for _, l := range req.AddLabelIds {
		if !slices.Contains(labels, l) {
			labels = append(labels, l)
		}
	}
	msg.LabelIds = labels

	s.modified = append(s.modified, Modification{MessageID: id, Add: req.AddLabelIds, Remove: req.RemoveLabelIds})
	writeJSON(w, &gmail.Message{Id: msg.Id, ThreadId: msg.ThreadId, LabelIds: msg.LabelIds})
}

func (s *Server) deleteMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if status, broken := s.brokenIDs[id]; broken {
		writeError(w, status, fmt.Sprintf("delete %s failed", id))
		return
	}
	i := slices.IndexFunc(s.messages, func(m *gmail.Message) bool { return m.Id == id })
	if i < 0 {
		writeError(w, http.StatusNotFound, "Requested entity was not found.")
		return
	}
	s.messages = append(s.messages[:i], s.messages[i+1:]...)
	s.deleted = append(s.deleted, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getAttachment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.attachments[r.PathValue("messageId")+"/"+r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Requested entity was not found.")
		return
	}
	writeJSON(w, &gmail.MessagePartBody{AttachmentId: r.PathValue("id"), Data: data, Size: int64(len(data))})
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var msg gmail.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	msg.Id = "sent-" + strconv.Itoa(s.nextID)
	s.sent = append(s.sent, &msg)
	writeJSON(w, &gmail.Message{Id: msg.Id, ThreadId: msg.ThreadId})
}

func (s *Server) createDraft(w http.ResponseWriter, r *http.Request) {
	var draft gmail.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	draft.Id = "draft-" + strconv.Itoa(s.nextID)
	s.drafts = append(s.drafts, &draft)
	writeJSON(w, &gmail.Draft{Id: draft.Id})
}

// findMessage and findLabel expect s.mu to be held.
func (s *Server) findMessage(id string) *gmail.Message {
	for _, m := range s.messages {
		if m.Id == id {
			return m
		}
	}
	return nil
}

func (s *Server) findLabel(id string) (int, *gmail.Label) {
	for i, l := range s.labels {
		if l.Id == id {
			return i, l
		}
	}
	return -1, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": message,
		},
	})
}
