package conversation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTitle is the placeholder title of a conversation that has no
	// messages yet. It is replaced as soon as the first message is sent.
	DefaultTitle = "New chat"

	titleMaxRunes = 40
)

// Conversation is a titled, chronologically ordered thread of messages.
//
// A conversation created locally carries a client-generated identifier until
// the backend confirms it; Persisted tracks whether the identifier is
// server-assigned. The manager owns all conversations exclusively, consumers
// only ever see snapshots.
type Conversation struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Messages  []*Message `json:"messages"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Persisted bool       `json:"-"`
}

func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	ret := *c
	ret.Messages = make([]*Message, len(c.Messages))
	for i, m := range c.Messages {
		ret.Messages[i] = m.Clone()
	}
	return &ret
}

// DeriveTitle builds a conversation title from the first message: the first
// 40 runes of the content, ellipsis-suffixed when truncated.
func DeriveTitle(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= titleMaxRunes {
		return content
	}
	return string(runes[:titleMaxRunes]) + "…"
}
