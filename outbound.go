package hirewise

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyMessage is returned for empty or whitespace-only text; no
// network call is made.
var ErrEmptyMessage = errors.New("hirewise: message body is empty")

// MessageSender submits messages over REST. *APIClient implements it.
type MessageSender interface {
	SendMessage(ctx context.Context, conversationID int64, body string) (*Message, error)
	SendAttachment(ctx context.Context, conversationID int64, upload AttachmentUpload) (*Message, error)
}

// Outbox turns user send actions into REST submissions. It never inserts
// into the visible message list: a sent message becomes visible only when
// the server echoes it back through the live event path. Successful
// submissions drop their PendingSend; failures keep it with SendFailed so
// the caller can surface the error, and nothing retries automatically.
type Outbox struct {
	sender MessageSender
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*PendingSend
}

// NewOutbox creates an outbox over the given sender. logger may be nil.
func NewOutbox(sender MessageSender, logger *slog.Logger) *Outbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Outbox{
		sender:  sender,
		logger:  logger,
		pending: make(map[string]*PendingSend),
	}
}

// SendText submits a text message. On success the returned PendingSend is
// already resolved (removed from Pending); the caller may clear its input.
func (o *Outbox) SendText(ctx context.Context, conversationID int64, body string) (*PendingSend, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}

	p := o.track(conversationID, body, KindText, "")
	if _, err := o.sender.SendMessage(ctx, conversationID, body); err != nil {
		o.markFailed(p, err)
		return p, err
	}
	o.resolve(p)
	return p, nil
}

// SendAttachment submits a file or image message.
func (o *Outbox) SendAttachment(ctx context.Context, conversationID int64, upload AttachmentUpload) (*PendingSend, error) {
	if upload.Name == "" || len(upload.Data) == 0 {
		return nil, errors.New("hirewise: attachment is empty")
	}

	kind := upload.Kind
	if kind == "" {
		kind = KindFile
		if strings.HasPrefix(upload.MIMEType, "image/") {
			kind = KindImage
		}
	}

	p := o.track(conversationID, "", kind, upload.Name)
	if _, err := o.sender.SendAttachment(ctx, conversationID, upload); err != nil {
		o.markFailed(p, err)
		return p, err
	}
	o.resolve(p)
	return p, nil
}

// Pending returns a snapshot of unresolved sends (in flight or failed).
func (o *Outbox) Pending() []PendingSend {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]PendingSend, 0, len(o.pending))
	for _, p := range o.pending {
		out = append(out, *p)
	}
	return out
}

// Forget drops a failed entry, e.g. after the user dismisses the error.
func (o *Outbox) Forget(ref string) {
	o.mu.Lock()
	delete(o.pending, ref)
	o.mu.Unlock()
}

func (o *Outbox) track(conversationID int64, body string, kind MessageKind, attachment string) *PendingSend {
	p := &PendingSend{
		Ref:            uuid.NewString(),
		ConversationID: conversationID,
		Body:           body,
		MessageKind:    kind,
		AttachmentName: attachment,
		Status:         SendInFlight,
		SubmittedAt:    time.Now(),
	}
	o.mu.Lock()
	o.pending[p.Ref] = p
	o.mu.Unlock()
	return p
}

func (o *Outbox) resolve(p *PendingSend) {
	o.mu.Lock()
	delete(o.pending, p.Ref)
	o.mu.Unlock()
}

func (o *Outbox) markFailed(p *PendingSend, err error) {
	o.mu.Lock()
	p.Status = SendFailed
	p.Err = err.Error()
	o.mu.Unlock()
	o.logger.Warn("send failed", "conversation", p.ConversationID, "kind", p.MessageKind, "error", err)
}
