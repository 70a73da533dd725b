package backend

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workopilot/copilot/pkg/conversation"
	"github.com/workopilot/copilot/pkg/events"
)

// Local simulates the backend when none is configured. Replies are canned
// and animated word by word through stream events against a fixed message
// identifier, ending in the same terminal state as a real send: exactly one
// completed assistant message per user message.
type Local struct {
	pm    *events.PublisherManager
	delay time.Duration
}

var _ conversation.Client = (*Local)(nil)

type LocalOption func(*Local)

// WithDelay sets the pause between streamed words. Zero disables the
// animation entirely.
func WithDelay(delay time.Duration) LocalOption {
	return func(l *Local) {
		l.delay = delay
	}
}

func NewLocal(pm *events.PublisherManager, options ...LocalOption) *Local {
	ret := &Local{
		pm:    pm,
		delay: 40 * time.Millisecond,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (l *Local) Send(ctx context.Context, conversationID string, query string) (*conversation.Reply, error) {
	if conversationID == "" {
		// The real backend persists a fresh conversation and returns its
		// identifier; the simulation does the same so the rekey path is
		// exercised without a server.
		conversationID = uuid.NewString()
	}
	messageID := uuid.NewString()
	meta := events.StreamMetadata{ConversationID: conversationID, MessageID: messageID}

	text := cannedReply(query)

	if l.pm != nil {
		l.pm.PublishBlind(events.TopicStream, events.NewStreamStart(meta))
		completion := ""
		for _, word := range strings.Fields(text) {
			select {
			case <-ctx.Done():
				l.pm.PublishBlind(events.TopicStream, events.NewError(meta, ctx.Err()))
				return nil, ctx.Err()
			default:
			}
			if completion != "" {
				completion += " "
			}
			completion += word
			l.pm.PublishBlind(events.TopicStream, events.NewPartial(meta, word, completion))
			if l.delay > 0 {
				time.Sleep(l.delay)
			}
		}
		l.pm.PublishBlind(events.TopicStream, events.NewFinal(meta, text))
	}

	return &conversation.Reply{
		ConversationID:   conversationID,
		MessageID:        messageID,
		Text:             text,
		FollowUpQuestion: "Would you like a breakdown of your portfolio allocation?",
	}, nil
}

// Conversations reports no history; the simulation has nothing persisted.
func (l *Local) Conversations(ctx context.Context) ([]conversation.ConversationRecord, error) {
	return nil, nil
}

func (l *Local) History(ctx context.Context, conversationID string) ([]conversation.MessageRecord, error) {
	return nil, nil
}

func cannedReply(query string) string {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "trend"):
		return "Over the selected period the position shows a steady upward trend, " +
			"gaining roughly 4.2% with only shallow pullbacks along the way."
	case strings.Contains(q, "pnl") || strings.Contains(q, "profit"):
		return "Your unrealized P&L across tracked holdings is positive. " +
			"The largest contributor is your oldest position, which is up 12.8% against its cost basis."
	case strings.Contains(q, "allocation"):
		return "Your portfolio is concentrated in equities, with a small cash buffer. " +
			"Consider whether the current weighting still matches your risk target."
	default:
		return "I'm running without a backend right now, so this is a simulated answer. " +
			"Connect the analytics service to get real market data, forecasts and document search."
	}
}
