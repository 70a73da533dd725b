package conversation

// Package conversation owns the in-memory model of all chats and their
// messages. The Manager is the single source of truth: it mediates creation,
// selection, renaming, deletion and the send-message round trip against the
// backend, including optimistic local updates and the reconciliation of
// locally synthesized conversation identifiers with server-assigned ones.
//
// Every mutation produces a new immutable snapshot; consumers never see the
// manager's internal state directly. Errors from the backend never escape the
// manager: a failed send becomes a visible assistant message, a failed
// history fetch degrades to an empty conversation list.

import (
	"context"
	"time"

	"github.com/workopilot/copilot/pkg/attachments"
)

// ConversationRecord is a persisted conversation as listed by the backend,
// without its messages.
type ConversationRecord struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MessageRecord is a persisted message as returned by the history endpoint.
type MessageRecord struct {
	ID            string
	Role          Role
	Content       string
	CreatedAt     time.Time
	Visualization *Visualization
	Sources       []Source
}

// Reply is the backend's answer to a single user query.
type Reply struct {
	ConversationID   string
	MessageID        string
	Text             string
	Data             map[string]any
	Visualization    *Visualization
	Sources          []Source
	FollowUpQuestion string
}

// Client is the slice of the backend transport the manager depends on.
type Client interface {
	Send(ctx context.Context, conversationID string, query string) (*Reply, error)
	Conversations(ctx context.Context) ([]ConversationRecord, error)
	History(ctx context.Context, conversationID string) ([]MessageRecord, error)
}

// Ingester uploads attachment content to the backend before a send that
// references it is issued.
type Ingester interface {
	Ingest(ctx context.Context, atts []*attachments.Attachment) error
}

// Snapshot is an immutable view of the conversation set, published after
// every mutation. Version increases monotonically.
type Snapshot struct {
	Conversations []*Conversation
	ActiveID      string
	Streaming     bool
	Version       int64
}

// Active returns the active conversation of the snapshot, or nil.
func (s Snapshot) Active() *Conversation {
	for _, c := range s.Conversations {
		if c.ID == s.ActiveID {
			return c
		}
	}
	return nil
}

// Notifier receives a fresh snapshot after every mutation.
type Notifier interface {
	Notify(Snapshot)
}

// Manager defines the high-level conversation operations. Implementations
// are safe for concurrent use; all blocking operations take a context.
type Manager interface {
	Initialize(ctx context.Context)
	LoadMessages(ctx context.Context, conversationID string)
	NewChat() *Conversation
	SelectChat(conversationID string)
	DeleteChat(conversationID string)
	RenameChat(conversationID string, title string)
	SendMessage(ctx context.Context, content string, atts []*attachments.Attachment)
	Snapshot() Snapshot
	Grouped() []ChatGroup
}
