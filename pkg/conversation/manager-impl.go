package conversation

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/workopilot/copilot/pkg/attachments"
)

// SendErrorNotice is the fixed assistant message inserted when a send fails.
const SendErrorNotice = "Sorry, I couldn't reach the analytics service. Please try again."

type ManagerImpl struct {
	mu sync.Mutex

	client   Client
	ingester Ingester
	notifier Notifier

	conversations []*Conversation
	activeID      string
	inFlight      int
	version       int64

	now func() time.Time
}

var _ Manager = (*ManagerImpl)(nil)

type ManagerOption func(*ManagerImpl)

func WithIngester(ingester Ingester) ManagerOption {
	return func(m *ManagerImpl) {
		m.ingester = ingester
	}
}

func WithNotifier(notifier Notifier) ManagerOption {
	return func(m *ManagerImpl) {
		m.notifier = notifier
	}
}

func WithClock(now func() time.Time) ManagerOption {
	return func(m *ManagerImpl) {
		m.now = now
	}
}

func NewManager(client Client, options ...ManagerOption) *ManagerImpl {
	ret := &ManagerImpl{
		client: client,
		now:    time.Now,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Initialize loads the persisted conversation list. An unreachable backend is
// not an error, the manager simply starts with an empty set.
func (m *ManagerImpl) Initialize(ctx context.Context) {
	records, err := m.client.Conversations(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("conversation history unavailable, starting empty")
		return
	}

	m.mu.Lock()
	m.conversations = make([]*Conversation, 0, len(records))
	for _, r := range records {
		m.conversations = append(m.conversations, &Conversation{
			ID:        r.ID,
			Title:     r.Title,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			Persisted: true,
		})
	}
	sort.SliceStable(m.conversations, func(i, j int) bool {
		return m.conversations[i].UpdatedAt.After(m.conversations[j].UpdatedAt)
	})
	if len(m.conversations) > 0 {
		m.activeID = m.conversations[0].ID
	}
	m.version++
	m.mu.Unlock()
	m.notify()
}

// LoadMessages fetches the history of a conversation the first time it is
// needed. Conversations whose messages are already loaded are left alone; a
// failed fetch is logged and leaves the conversation empty.
func (m *ManagerImpl) LoadMessages(ctx context.Context, conversationID string) {
	m.mu.Lock()
	conv := m.find(conversationID)
	if conv == nil || len(conv.Messages) > 0 || !conv.Persisted {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	records, err := m.client.History(ctx, conversationID)
	if err != nil {
		log.Warn().Err(err).Str("conversationID", conversationID).
			Msg("failed to fetch conversation history")
		return
	}

	m.mu.Lock()
	// Re-resolve by the captured identifier: the set may have changed while
	// the fetch was in flight.
	conv = m.find(conversationID)
	if conv == nil || len(conv.Messages) > 0 {
		m.mu.Unlock()
		return
	}
	conv.Messages = make([]*Message, 0, len(records))
	for _, r := range records {
		conv.Messages = append(conv.Messages, &Message{
			ID:            r.ID,
			Role:          r.Role,
			Content:       r.Content,
			CreatedAt:     r.CreatedAt,
			Visualization: r.Visualization,
			Sources:       r.Sources,
		})
	}
	m.version++
	m.mu.Unlock()
	m.notify()
}

// NewChat creates an empty conversation, inserts it at the front of the set
// and makes it active. The returned conversation is a copy.
func (m *ManagerImpl) NewChat() *Conversation {
	m.mu.Lock()
	conv := NewConversation()
	conv.CreatedAt = m.now()
	conv.UpdatedAt = conv.CreatedAt
	m.conversations = append([]*Conversation{conv}, m.conversations...)
	m.activeID = conv.ID
	m.version++
	ret := conv.Clone()
	m.mu.Unlock()
	m.notify()
	return ret
}

// SelectChat makes the given conversation active. Unknown identifiers are
// ignored.
func (m *ManagerImpl) SelectChat(conversationID string) {
	m.mu.Lock()
	if m.find(conversationID) == nil {
		m.mu.Unlock()
		return
	}
	m.activeID = conversationID
	m.version++
	m.mu.Unlock()
	m.notify()
}

// DeleteChat removes a conversation. When the active conversation is deleted
// the next most-recently-updated one takes its place, or none if the set is
// now empty.
func (m *ManagerImpl) DeleteChat(conversationID string) {
	m.mu.Lock()
	idx := -1
	for i, c := range m.conversations {
		if c.ID == conversationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return
	}
	m.conversations = append(m.conversations[:idx], m.conversations[idx+1:]...)
	if m.activeID == conversationID {
		m.activeID = ""
		var latest *Conversation
		for _, c := range m.conversations {
			if latest == nil || c.UpdatedAt.After(latest.UpdatedAt) {
				latest = c
			}
		}
		if latest != nil {
			m.activeID = latest.ID
		}
	}
	m.version++
	m.mu.Unlock()
	m.notify()
}

// RenameChat sets the title of a conversation. Blank titles are ignored.
func (m *ManagerImpl) RenameChat(conversationID string, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	m.mu.Lock()
	conv := m.find(conversationID)
	if conv == nil {
		m.mu.Unlock()
		return
	}
	conv.Title = title
	conv.UpdatedAt = m.now()
	m.version++
	m.mu.Unlock()
	m.notify()
}

// SendMessage appends the user message optimistically, issues one request to
// the backend and appends exactly one assistant message, built either from
// the reply or from the fixed error notice. The in-flight response is keyed
// by the conversation identifier captured here, never by whichever
// conversation is active when the response arrives.
func (m *ManagerImpl) SendMessage(ctx context.Context, content string, atts []*attachments.Attachment) {
	m.mu.Lock()
	conv := m.find(m.activeID)
	if conv == nil {
		conv = NewConversation()
		conv.CreatedAt = m.now()
		conv.UpdatedAt = conv.CreatedAt
		m.conversations = append([]*Conversation{conv}, m.conversations...)
		m.activeID = conv.ID
	}
	convID := conv.ID

	if len(conv.Messages) == 0 {
		conv.Title = DeriveTitle(content)
	}
	conv.Messages = append(conv.Messages, NewUserMessage(content,
		WithTime(m.now()), WithAttachments(atts)))
	conv.UpdatedAt = m.now()

	// The request carries the conversation identifier only once the backend
	// has confirmed it; a locally synthesized one is withheld so the backend
	// assigns a persistent identifier of its own.
	requestID := ""
	if conv.Persisted {
		requestID = convID
	}

	m.inFlight++
	m.version++
	m.mu.Unlock()
	m.notify()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.version++
		m.mu.Unlock()
		m.notify()
	}()

	if len(atts) > 0 && m.ingester != nil {
		if err := m.ingester.Ingest(ctx, atts); err != nil {
			// The send still goes out; the backend answers without the
			// documents it never received.
			log.Warn().Err(err).Int("files", len(atts)).Msg("document ingestion failed")
		}
	}

	reply, err := m.client.Send(ctx, requestID, content)

	m.mu.Lock()
	conv = m.find(convID)
	if conv == nil {
		// Deleted while the request was in flight; nothing to apply the
		// response to.
		log.Debug().Str("conversationID", convID).Msg("dropping reply for deleted conversation")
		m.mu.Unlock()
		return
	}

	if err != nil {
		log.Warn().Err(err).Str("conversationID", convID).Msg("send failed")
		conv.Messages = append(conv.Messages, NewAssistantMessage(SendErrorNotice, WithTime(m.now())))
	} else {
		if reply.ConversationID != "" && reply.ConversationID != conv.ID {
			m.rekey(conv, reply.ConversationID)
		}
		conv.Persisted = true
		conv.Messages = append(conv.Messages, NewAssistantMessage(reply.Text,
			WithID(reply.MessageID),
			WithTime(m.now()),
			WithVisualization(reply.Visualization),
			WithSources(reply.Sources),
			WithData(reply.Data),
			WithFollowUpQuestion(reply.FollowUpQuestion),
		))
	}
	conv.UpdatedAt = m.now()
	m.version++
	m.mu.Unlock()
	m.notify()
}

// rekey migrates a conversation to its server-assigned identifier. Callers
// hold the lock; the identifier and the active-selection pointer change in
// the same critical section so no snapshot can show two conversations for
// one logical thread.
func (m *ManagerImpl) rekey(conv *Conversation, newID string) {
	oldID := conv.ID
	conv.ID = newID
	if m.activeID == oldID {
		m.activeID = newID
	}
	log.Debug().Str("from", oldID).Str("to", newID).Msg("rekeyed conversation")
}

// Snapshot returns an immutable deep copy of the conversation set.
func (m *ManagerImpl) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *ManagerImpl) snapshotLocked() Snapshot {
	convs := make([]*Conversation, len(m.conversations))
	for i, c := range m.conversations {
		convs[i] = c.Clone()
	}
	return Snapshot{
		Conversations: convs,
		ActiveID:      m.activeID,
		Streaming:     m.inFlight > 0,
		Version:       m.version,
	}
}

// Grouped returns the conversation set bucketed by recency.
func (m *ManagerImpl) Grouped() []ChatGroup {
	s := m.Snapshot()
	return GroupByDate(s.Conversations, m.now())
}

func (m *ManagerImpl) find(id string) *Conversation {
	if id == "" {
		return nil
	}
	for _, c := range m.conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (m *ManagerImpl) notify() {
	if m.notifier == nil {
		return
	}
	m.notifier.Notify(m.Snapshot())
}
