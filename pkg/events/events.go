package events

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Topics carried by the event router.
const (
	TopicSnapshot = "chat.snapshot"
	TopicStream   = "chat.stream"
)

type EventType string

const (
	// EventTypeSnapshot announces a new immutable snapshot of the
	// conversation set after a mutation.
	EventTypeSnapshot EventType = "snapshot"

	// Stream events follow the lifecycle of a single assistant reply being
	// produced: start, zero or more partials, then exactly one final or
	// error.
	EventTypeStart   EventType = "start"
	EventTypePartial EventType = "partial"
	EventTypeFinal   EventType = "final"
	EventTypeError   EventType = "error"
)

// StreamMetadata identifies the reply a stream event belongs to. Both
// identifiers are captured when the request is issued, so consumers can apply
// late events to the right conversation regardless of what is active.
type StreamMetadata struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}

type Event interface {
	Type() EventType
}

type EventStreamStart struct {
	Type_ EventType      `json:"type"`
	Meta  StreamMetadata `json:"meta"`
}

func NewStreamStart(meta StreamMetadata) *EventStreamStart {
	return &EventStreamStart{Type_: EventTypeStart, Meta: meta}
}

func (e *EventStreamStart) Type() EventType { return e.Type_ }

type EventPartial struct {
	Type_ EventType      `json:"type"`
	Meta  StreamMetadata `json:"meta"`
	// Delta is the newly produced fragment, Completion the accumulated text.
	Delta      string `json:"delta"`
	Completion string `json:"completion"`
}

func NewPartial(meta StreamMetadata, delta string, completion string) *EventPartial {
	return &EventPartial{Type_: EventTypePartial, Meta: meta, Delta: delta, Completion: completion}
}

func (e *EventPartial) Type() EventType { return e.Type_ }

type EventFinal struct {
	Type_ EventType      `json:"type"`
	Meta  StreamMetadata `json:"meta"`
	Text  string         `json:"text"`
}

func NewFinal(meta StreamMetadata, text string) *EventFinal {
	return &EventFinal{Type_: EventTypeFinal, Meta: meta, Text: text}
}

func (e *EventFinal) Type() EventType { return e.Type_ }

type EventError struct {
	Type_    EventType      `json:"type"`
	Meta     StreamMetadata `json:"meta"`
	ErrorMsg string         `json:"error"`
}

func NewError(meta StreamMetadata, err error) *EventError {
	return &EventError{Type_: EventTypeError, Meta: meta, ErrorMsg: err.Error()}
}

func (e *EventError) Type() EventType { return e.Type_ }

// NewEventFromJson decodes a serialized stream event back into its typed
// form.
func NewEventFromJson(payload []byte) (Event, error) {
	var envelope struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, errors.Wrap(err, "failed to decode event envelope")
	}

	switch envelope.Type {
	case EventTypeStart:
		var e EventStreamStart
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case EventTypePartial:
		var e EventPartial
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case EventTypeFinal:
		var e EventFinal
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case EventTypeError:
		var e EventError
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, err
		}
		return &e, nil
	default:
		return nil, errors.Errorf("unknown event type %q", envelope.Type)
	}
}
