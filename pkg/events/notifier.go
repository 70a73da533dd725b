package events

import (
	"github.com/workopilot/copilot/pkg/conversation"
)

// SnapshotEvent wraps a conversation snapshot for the snapshot topic.
type SnapshotEvent struct {
	Type_    EventType             `json:"type"`
	Snapshot conversation.Snapshot `json:"snapshot"`
}

func (e *SnapshotEvent) Type() EventType { return e.Type_ }

// SnapshotNotifier publishes every snapshot produced by the conversation
// manager onto the snapshot topic, giving consumers at-least-once
// notification after each mutation.
type SnapshotNotifier struct {
	pm *PublisherManager
}

var _ conversation.Notifier = (*SnapshotNotifier)(nil)

func NewSnapshotNotifier(pm *PublisherManager) *SnapshotNotifier {
	return &SnapshotNotifier{pm: pm}
}

func (n *SnapshotNotifier) Notify(s conversation.Snapshot) {
	n.pm.PublishBlind(TopicSnapshot, &SnapshotEvent{
		Type_:    EventTypeSnapshot,
		Snapshot: s,
	})
}
