package conversation

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu           sync.Mutex
	sendFn       func(conversationID string, query string) (*Reply, error)
	records      []ConversationRecord
	recordsErr   error
	histories    map[string][]MessageRecord
	historyErr   error
	historyCalls map[string]int
	sentIDs      []string
}

func (f *fakeClient) Send(ctx context.Context, conversationID string, query string) (*Reply, error) {
	f.mu.Lock()
	f.sentIDs = append(f.sentIDs, conversationID)
	fn := f.sendFn
	f.mu.Unlock()
	if fn == nil {
		return &Reply{ConversationID: conversationID, MessageID: "m-1", Text: "ok"}, nil
	}
	return fn(conversationID, query)
}

func (f *fakeClient) Conversations(ctx context.Context) ([]ConversationRecord, error) {
	return f.records, f.recordsErr
}

func (f *fakeClient) History(ctx context.Context, conversationID string) ([]MessageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyCalls == nil {
		f.historyCalls = map[string]int{}
	}
	f.historyCalls[conversationID]++
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.histories[conversationID], nil
}

func activeIsMember(t *testing.T, m *ManagerImpl) {
	t.Helper()
	s := m.Snapshot()
	if s.ActiveID == "" {
		return
	}
	for _, c := range s.Conversations {
		if c.ID == s.ActiveID {
			return
		}
	}
	t.Fatalf("active id %s is not a member of the conversation set", s.ActiveID)
}

func TestActiveConversationAlwaysMemberOfSet(t *testing.T) {
	m := NewManager(&fakeClient{})

	a := m.NewChat()
	activeIsMember(t, m)
	b := m.NewChat()
	activeIsMember(t, m)
	c := m.NewChat()
	activeIsMember(t, m)

	m.DeleteChat(c.ID)
	activeIsMember(t, m)
	m.DeleteChat(a.ID)
	activeIsMember(t, m)
	m.DeleteChat(b.ID)
	activeIsMember(t, m)

	require.Empty(t, m.Snapshot().Conversations)
	require.Empty(t, m.Snapshot().ActiveID)
}

func TestSendOnEmptySetCreatesConversation(t *testing.T) {
	fake := &fakeClient{
		sendFn: func(conversationID string, query string) (*Reply, error) {
			return &Reply{ConversationID: "server-1", MessageID: "m-1", Text: "answer"}, nil
		},
	}
	m := NewManager(fake)

	content := strings.Repeat("x", 50)
	m.SendMessage(context.Background(), content, nil)

	s := m.Snapshot()
	require.Len(t, s.Conversations, 1)
	conv := s.Conversations[0]
	assert.Equal(t, strings.Repeat("x", 40)+"…", conv.Title)
	require.NotEmpty(t, conv.Messages)
	assert.Equal(t, RoleUser, conv.Messages[0].Role)
	assert.Equal(t, content, conv.Messages[0].Content)
}

func TestSendShortContentTitleNotTruncated(t *testing.T) {
	m := NewManager(&fakeClient{})
	m.SendMessage(context.Background(), "short question", nil)

	s := m.Snapshot()
	require.Len(t, s.Conversations, 1)
	assert.Equal(t, "short question", s.Conversations[0].Title)
}

func TestSendSuccessAppendsOneAssistantMessage(t *testing.T) {
	fake := &fakeClient{
		sendFn: func(conversationID string, query string) (*Reply, error) {
			return &Reply{
				ConversationID:   "server-1",
				MessageID:        "m-42",
				Text:             "here is your trend",
				Visualization:    &Visualization{Type: ChartTypeLine},
				Sources:          []Source{{Name: "Yahoo Finance", Type: "market_data"}},
				FollowUpQuestion: "want a forecast?",
			}, nil
		},
	}
	m := NewManager(fake)

	m.SendMessage(context.Background(), "show me the trend", nil)

	s := m.Snapshot()
	require.Len(t, s.Conversations, 1)
	msgs := s.Conversations[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, "m-42", msgs[1].ID)
	assert.Equal(t, "here is your trend", msgs[1].Content)
	assert.Equal(t, ChartTypeLine, msgs[1].Visualization.Type)
	assert.Equal(t, "want a forecast?", msgs[1].FollowUpQuestion)
	assert.False(t, msgs[1].IsStreaming)
	assert.False(t, s.Streaming)
}

func TestSendFailureAppendsErrorNotice(t *testing.T) {
	fake := &fakeClient{
		sendFn: func(conversationID string, query string) (*Reply, error) {
			return nil, context.DeadlineExceeded
		},
	}
	m := NewManager(fake)

	m.SendMessage(context.Background(), "hello", nil)

	s := m.Snapshot()
	require.Len(t, s.Conversations, 1)
	msgs := s.Conversations[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, SendErrorNotice, msgs[1].Content)
	assert.False(t, s.Streaming)
}

func TestRekeyToServerIdentifierIsAtomic(t *testing.T) {
	fake := &fakeClient{
		sendFn: func(conversationID string, query string) (*Reply, error) {
			return &Reply{ConversationID: "server-1", MessageID: "m-1", Text: "ok"}, nil
		},
	}
	m := NewManager(fake)

	m.SendMessage(context.Background(), "first", nil)

	s := m.Snapshot()
	require.Len(t, s.Conversations, 1)
	assert.Equal(t, "server-1", s.Conversations[0].ID)
	assert.Equal(t, "server-1", s.ActiveID)
	assert.Len(t, s.Conversations[0].Messages, 2)

	// A locally synthesized identifier is withheld from the first request;
	// the confirmed one is carried on the second.
	m.SendMessage(context.Background(), "second", nil)
	require.Len(t, fake.sentIDs, 2)
	assert.Empty(t, fake.sentIDs[0])
	assert.Equal(t, "server-1", fake.sentIDs[1])
}

func TestRenameBlankTitleIgnored(t *testing.T) {
	m := NewManager(&fakeClient{})
	conv := m.NewChat()
	m.RenameChat(conv.ID, "portfolio review")

	m.RenameChat(conv.ID, "   ")
	m.RenameChat(conv.ID, "")

	s := m.Snapshot()
	assert.Equal(t, "portfolio review", s.Conversations[0].Title)
}

func TestRenameBumpsUpdatedAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(&fakeClient{}, WithClock(func() time.Time { return now }))
	conv := m.NewChat()

	now = now.Add(time.Hour)
	m.RenameChat(conv.ID, "renamed")

	s := m.Snapshot()
	assert.Equal(t, now, s.Conversations[0].UpdatedAt)
	assert.True(t, !s.Conversations[0].UpdatedAt.Before(s.Conversations[0].CreatedAt))
}

func TestInitializeSelectsMostRecentlyUpdated(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fake := &fakeClient{
		records: []ConversationRecord{
			{ID: "old", Title: "old", UpdatedAt: base.Add(-time.Hour)},
			{ID: "new", Title: "new", UpdatedAt: base},
			{ID: "middle", Title: "middle", UpdatedAt: base.Add(-time.Minute)},
		},
	}
	m := NewManager(fake)
	m.Initialize(context.Background())

	s := m.Snapshot()
	require.Len(t, s.Conversations, 3)
	assert.Equal(t, "new", s.ActiveID)
	assert.Equal(t, "new", s.Conversations[0].ID)
}

func TestInitializeUnreachableBackendStartsEmpty(t *testing.T) {
	fake := &fakeClient{recordsErr: context.DeadlineExceeded}
	m := NewManager(fake)
	m.Initialize(context.Background())

	s := m.Snapshot()
	assert.Empty(t, s.Conversations)
	assert.Empty(t, s.ActiveID)
}

func TestLoadMessagesFetchesAtMostOnce(t *testing.T) {
	fake := &fakeClient{
		records: []ConversationRecord{{ID: "c-1", Title: "t", UpdatedAt: time.Now()}},
		histories: map[string][]MessageRecord{
			"c-1": {
				{ID: "m-1", Role: RoleUser, Content: "hi"},
				{ID: "m-2", Role: RoleAssistant, Content: "hello"},
			},
		},
	}
	m := NewManager(fake)
	m.Initialize(context.Background())

	m.LoadMessages(context.Background(), "c-1")
	m.LoadMessages(context.Background(), "c-1")

	assert.Equal(t, 1, fake.historyCalls["c-1"])
	s := m.Snapshot()
	require.Len(t, s.Conversations[0].Messages, 2)
	assert.Equal(t, "hi", s.Conversations[0].Messages[0].Content)
}

func TestLoadMessagesFailureLeavesConversationEmpty(t *testing.T) {
	fake := &fakeClient{
		records:    []ConversationRecord{{ID: "c-1", UpdatedAt: time.Now()}},
		historyErr: context.DeadlineExceeded,
	}
	m := NewManager(fake)
	m.Initialize(context.Background())

	m.LoadMessages(context.Background(), "c-1")

	assert.Empty(t, m.Snapshot().Conversations[0].Messages)
}

func TestDeleteActiveSelectsNextMostRecentlyUpdated(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(&fakeClient{}, WithClock(func() time.Time { return now }))

	a := m.NewChat()
	now = now.Add(time.Minute)
	b := m.NewChat()
	now = now.Add(time.Minute)
	c := m.NewChat()

	require.Equal(t, c.ID, m.Snapshot().ActiveID)
	m.DeleteChat(c.ID)
	assert.Equal(t, b.ID, m.Snapshot().ActiveID)
	m.DeleteChat(a.ID)
	assert.Equal(t, b.ID, m.Snapshot().ActiveID)
}

func TestInterleavedSendsResolveToCorrectConversations(t *testing.T) {
	firstIssued := make(chan struct{})
	release := make(chan struct{})

	fake := &fakeClient{
		records: []ConversationRecord{
			{ID: "conv-a", Title: "a", UpdatedAt: time.Now()},
			{ID: "conv-b", Title: "b", UpdatedAt: time.Now().Add(-time.Minute)},
		},
	}
	fake.sendFn = func(conversationID string, query string) (*Reply, error) {
		if conversationID == "conv-a" {
			close(firstIssued)
			// The second response arrives before the first.
			<-release
			return &Reply{ConversationID: "conv-a", MessageID: "m-a", Text: "reply-a"}, nil
		}
		return &Reply{ConversationID: "conv-b", MessageID: "m-b", Text: "reply-b"}, nil
	}

	m := NewManager(fake)
	m.Initialize(context.Background())
	require.Equal(t, "conv-a", m.Snapshot().ActiveID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.SendMessage(context.Background(), "query-a", nil)
	}()

	<-firstIssued
	m.SelectChat("conv-b")
	m.SendMessage(context.Background(), "query-b", nil)
	close(release)
	<-done

	s := m.Snapshot()
	var convA, convB *Conversation
	for _, c := range s.Conversations {
		switch c.ID {
		case "conv-a":
			convA = c
		case "conv-b":
			convB = c
		}
	}
	require.NotNil(t, convA)
	require.NotNil(t, convB)

	require.Len(t, convA.Messages, 2)
	assert.Equal(t, "query-a", convA.Messages[0].Content)
	assert.Equal(t, "reply-a", convA.Messages[1].Content)

	require.Len(t, convB.Messages, 2)
	assert.Equal(t, "query-b", convB.Messages[0].Content)
	assert.Equal(t, "reply-b", convB.Messages[1].Content)

	assert.False(t, s.Streaming)
}

func TestReplyForDeletedConversationIsDropped(t *testing.T) {
	issued := make(chan struct{})
	release := make(chan struct{})

	fake := &fakeClient{}
	fake.sendFn = func(conversationID string, query string) (*Reply, error) {
		close(issued)
		<-release
		return &Reply{ConversationID: "server-1", MessageID: "m-1", Text: "late"}, nil
	}
	m := NewManager(fake)

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.SendMessage(context.Background(), "hello", nil)
	}()

	<-issued
	id := m.Snapshot().Conversations[0].ID
	m.DeleteChat(id)
	close(release)
	<-done

	s := m.Snapshot()
	assert.Empty(t, s.Conversations)
	assert.False(t, s.Streaming)
}

func TestSnapshotIsDetachedFromManagerState(t *testing.T) {
	m := NewManager(&fakeClient{})
	m.SendMessage(context.Background(), "hello", nil)

	s := m.Snapshot()
	s.Conversations[0].Title = "mutated"
	s.Conversations[0].Messages[0].Content = "mutated"

	fresh := m.Snapshot()
	assert.NotEqual(t, "mutated", fresh.Conversations[0].Title)
	assert.Equal(t, "hello", fresh.Conversations[0].Messages[0].Content)
}
