// Package wire defines the JSON frames exchanged on the HireWise live
// conversation socket and decodes inbound frames into a closed set of
// event kinds. The socket speaks text frames; every inbound frame is a
// JSON object with a required "type" discriminator.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Frame type discriminators.
const (
	TypeConnectionEstablished = "connection_established"
	TypeChatMessage           = "chat_message"
	TypeError                 = "error"
)

// Close codes carried on abnormal termination. The 4xxx range is
// application-defined; unauthorized and forbidden are terminal.
const (
	CodeNormalClosure uint16 = 1000
	CodeUnauthorized  uint16 = 4001
	CodeForbidden     uint16 = 4003
)

var (
	ErrMalformed   = errors.New("wire: malformed frame")
	ErrMissingType = errors.New("wire: frame has no type")
	ErrBadField    = errors.New("wire: missing or invalid field")
)

// Event is one decoded inbound frame.
type Event interface {
	Kind() string
}

// ConnectionEstablished is the informational frame sent by the server once
// the socket is authenticated and joined to a conversation. It has no
// effect on cached history.
type ConnectionEstablished struct {
	ConversationID int64 `json:"conversation_id"`
	UserID         int64 `json:"user_id"`
}

func (ConnectionEstablished) Kind() string { return TypeConnectionEstablished }

// ChatMessage announces a message appended to the conversation on the
// server. Receipt triggers a history refetch; the frame body itself is
// never inserted into the cached list.
type ChatMessage struct {
	ID             int64     `json:"id"`
	SenderID       int64     `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	Body           string    `json:"body"`
	MessageKind    string    `json:"kind"` // "text", "image", "file"
	AttachmentURL  string    `json:"attachment_url,omitempty"`
	AttachmentName string    `json:"attachment_name,omitempty"`
	AttachmentSize int64     `json:"attachment_size,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (ChatMessage) Kind() string { return TypeChatMessage }

// ErrorEvent carries a human-readable server-side error. It does not close
// the connection by itself.
type ErrorEvent struct {
	Message string `json:"message"`
}

func (ErrorEvent) Kind() string { return TypeError }

// Unknown is any frame whose type is not recognized. Callers log and drop it.
type Unknown struct {
	Type string
	Raw  json.RawMessage
}

func (u Unknown) Kind() string { return u.Type }

// Decode parses a raw inbound frame into an Event. Frames that are not
// JSON objects, carry no type, or miss required fields for their declared
// type yield an error; a well-formed frame with an unrecognized type
// decodes to Unknown.
func Decode(raw []byte) (Event, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return nil, ErrMissingType
	}

	switch env.Type {
	case TypeConnectionEstablished:
		var ev ConnectionEstablished
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return ev, nil

	case TypeChatMessage:
		var ev ChatMessage
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if ev.ID == 0 {
			return nil, fmt.Errorf("%w: chat_message.id", ErrBadField)
		}
		if ev.SenderID == 0 {
			return nil, fmt.Errorf("%w: chat_message.sender_id", ErrBadField)
		}
		if ev.CreatedAt.IsZero() {
			return nil, fmt.Errorf("%w: chat_message.created_at", ErrBadField)
		}
		if ev.MessageKind == "" {
			ev.MessageKind = "text"
		}
		return ev, nil

	case TypeError:
		var ev ErrorEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return ev, nil

	default:
		return Unknown{Type: env.Type, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
}

// SendPayload is the client → server frame shape for socket-level commands
// (read acknowledgments and the like). Message sends go over REST.
type SendPayload struct {
	Type           string `json:"type"`
	ConversationID int64  `json:"conversation_id"`
	Body           string `json:"body,omitempty"`
}
