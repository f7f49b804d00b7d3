package hirewise

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// fakeSender records submissions and can be made to fail.
type fakeSender struct {
	mu          sync.Mutex
	texts       []string
	attachments []string
	err         error
}

func (f *fakeSender) SendMessage(_ context.Context, id int64, body string) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.texts = append(f.texts, body)
	return &Message{ID: int64(len(f.texts)), ConversationID: id, Body: body, MessageKind: KindText}, nil
}

func (f *fakeSender) SendAttachment(_ context.Context, id int64, up AttachmentUpload) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.attachments = append(f.attachments, up.Name)
	return &Message{ID: 1, ConversationID: id, MessageKind: KindFile}, nil
}

func (f *fakeSender) sent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts) + len(f.attachments)
}

func TestSendTextEmptyIsNoOp(t *testing.T) {
	sender := &fakeSender{}
	outbox := NewOutbox(sender, nil)

	for _, body := range []string{"", "   ", "\n\t "} {
		if _, err := outbox.SendText(context.Background(), 5, body); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("SendText(%q): expected ErrEmptyMessage, got %v", body, err)
		}
	}
	if sender.sent() != 0 {
		t.Error("empty sends must not hit the network")
	}
	if len(outbox.Pending()) != 0 {
		t.Error("empty sends must not leave pending entries")
	}
}

func TestSendTextSuccessResolvesPending(t *testing.T) {
	sender := &fakeSender{}
	outbox := NewOutbox(sender, nil)

	p, err := outbox.SendText(context.Background(), 5, "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if p.Ref == "" || p.ConversationID != 5 {
		t.Errorf("pending record: %+v", p)
	}
	if len(outbox.Pending()) != 0 {
		t.Error("successful send should drop its pending entry")
	}
	if sender.sent() != 1 {
		t.Errorf("expected 1 submission, got %d", sender.sent())
	}
}

func TestSendTextFailureKeepsPending(t *testing.T) {
	sender := &fakeSender{err: errors.New("server unavailable")}
	outbox := NewOutbox(sender, nil)

	p, err := outbox.SendText(context.Background(), 5, "hello")
	if err == nil {
		t.Fatal("expected send error")
	}
	if p.Status != SendFailed || p.Err == "" {
		t.Errorf("pending should be marked failed: %+v", p)
	}

	pending := outbox.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending entry, got %d", len(pending))
	}

	outbox.Forget(p.Ref)
	if len(outbox.Pending()) != 0 {
		t.Error("Forget should drop the entry")
	}
}

func TestSendAttachmentInfersKind(t *testing.T) {
	sender := &fakeSender{}
	outbox := NewOutbox(sender, nil)

	p, err := outbox.SendAttachment(context.Background(), 5, AttachmentUpload{
		Name:     "photo.png",
		MIMEType: "image/png",
		Data:     []byte{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if p.MessageKind != KindImage {
		t.Errorf("kind: got %q, want %q", p.MessageKind, KindImage)
	}

	p, err = outbox.SendAttachment(context.Background(), 5, AttachmentUpload{
		Name:     "contract.pdf",
		MIMEType: "application/pdf",
		Data:     []byte{1},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if p.MessageKind != KindFile {
		t.Errorf("kind: got %q, want %q", p.MessageKind, KindFile)
	}
}

func TestSendAttachmentEmptyRejected(t *testing.T) {
	sender := &fakeSender{}
	outbox := NewOutbox(sender, nil)

	if _, err := outbox.SendAttachment(context.Background(), 5, AttachmentUpload{}); err == nil {
		t.Fatal("expected error for empty upload")
	}
	if sender.sent() != 0 {
		t.Error("empty upload must not hit the network")
	}
}
