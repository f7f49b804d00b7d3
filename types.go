package hirewise

import "time"

// --------------------------------------------------------------------------
// Messaging Types
// --------------------------------------------------------------------------

// MessageKind discriminates message content.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	KindFile  MessageKind = "file"
)

// Attachment describes a file carried by an image or file message.
type Attachment struct {
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// Message is one entry in a conversation's server-authoritative history.
// Within a conversation, messages are totally ordered by CreatedAt and ids
// are never reused.
type Message struct {
	ID             int64       `json:"id"`
	ConversationID int64       `json:"conversation_id"`
	SenderID       int64       `json:"sender_id"`
	SenderName     string      `json:"sender_name"`
	Body           string      `json:"body"`
	MessageKind    MessageKind `json:"kind"`
	Attachment     *Attachment `json:"attachment,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	Read           bool        `json:"is_read"`
}

// Conversation is the compact representation returned in list responses.
// Display ordering is server-determined (-last_message_at, -created_at).
type Conversation struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	LastMessage   string    `json:"last_message,omitempty"`
	LastMessageAt time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ConversationDetail extends Conversation with the full message history.
type ConversationDetail struct {
	Conversation
	Messages []Message `json:"messages"`
}

// ConversationsPage is the paginated response for the conversation list.
type ConversationsPage struct {
	Conversations []Conversation `json:"conversations"`
	TotalCount    int            `json:"totalCount"`
	Page          int            `json:"page"`
	PageSize      int            `json:"pageSize"`
}

// SendStatus tracks an in-flight submission.
type SendStatus string

const (
	SendInFlight SendStatus = "in_flight"
	SendFailed   SendStatus = "failed"
)

// PendingSend is the local, ephemeral record of a submission. It is not
// part of the canonical message set: it disappears once the submission is
// acknowledged, and the message becomes visible only through the server
// echo and the refetch it triggers.
type PendingSend struct {
	Ref            string      // local uuid, never sent as a message id
	ConversationID int64
	Body           string
	MessageKind    MessageKind
	AttachmentName string
	Status         SendStatus
	Err            string
	SubmittedAt    time.Time
}

// AttachmentUpload carries a file to be submitted as a message.
type AttachmentUpload struct {
	Name     string
	MIMEType string
	Kind     MessageKind // KindImage or KindFile; empty infers from MIMEType
	Data     []byte
}

// --------------------------------------------------------------------------
// Catalog Types
// --------------------------------------------------------------------------

// Category is one service category from the marketplace taxonomy.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ParentID int64  `json:"parent_id,omitempty"`
	JobCount int    `json:"job_count,omitempty"`
}

// CategoriesResponse wraps GET /api/v1/categories.
type CategoriesResponse struct {
	Categories []Category `json:"categories"`
}

// Job is the compact representation returned in job list responses.
type Job struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CategoryID  int64     `json:"category_id"`
	Budget      string    `json:"budget,omitempty"`
	Status      string    `json:"status"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// JobsPage is the paginated response for the job list.
type JobsPage struct {
	Jobs       []Job `json:"jobs"`
	TotalCount int   `json:"totalCount"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
}

// Profile is the authenticated user's marketplace profile.
type Profile struct {
	UserID      int64   `json:"user_id"`
	DisplayName string  `json:"display_name"`
	About       string  `json:"about,omitempty"`
	AvatarURL   string  `json:"avatar_url,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	ReviewCount int     `json:"review_count,omitempty"`
}

// UpdateProfileRequest is sent to PUT /api/v1/profile.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name,omitempty"`
	About       string `json:"about,omitempty"`
}
