package ui

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/workopilot/copilot/pkg/conversation"
	"github.com/workopilot/copilot/pkg/events"
)

// SnapshotMsg delivers a fresh immutable snapshot of the conversation set.
type SnapshotMsg conversation.Snapshot

type StreamStartMsg struct {
	Meta events.StreamMetadata
}

type StreamPartialMsg struct {
	Meta       events.StreamMetadata
	Delta      string
	Completion string
}

type StreamDoneMsg struct {
	Meta events.StreamMetadata
	Text string
}

type StreamErrorMsg struct {
	Meta events.StreamMetadata
	Err  string
}

type ExportDoneMsg struct {
	Path string
	Err  error
}

// StreamForwardFunc returns a watermill handler that translates stream
// events into bubbletea messages for the program.
func StreamForwardFunc(p *tea.Program) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		msg.Ack()

		e, err := events.NewEventFromJson(msg.Payload)
		if err != nil {
			log.Warn().Err(err).Msg("failed to parse stream event")
			return nil
		}

		switch e_ := e.(type) {
		case *events.EventStreamStart:
			p.Send(StreamStartMsg{Meta: e_.Meta})
		case *events.EventPartial:
			p.Send(StreamPartialMsg{Meta: e_.Meta, Delta: e_.Delta, Completion: e_.Completion})
		case *events.EventFinal:
			p.Send(StreamDoneMsg{Meta: e_.Meta, Text: e_.Text})
		case *events.EventError:
			p.Send(StreamErrorMsg{Meta: e_.Meta, Err: e_.ErrorMsg})
		}

		return nil
	}
}

// SnapshotForwardFunc returns a watermill handler that forwards snapshot
// events into the program.
func SnapshotForwardFunc(p *tea.Program) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		msg.Ack()

		var e events.SnapshotEvent
		if err := json.Unmarshal(msg.Payload, &e); err != nil {
			log.Warn().Err(err).Msg("failed to parse snapshot event")
			return nil
		}
		p.Send(SnapshotMsg(e.Snapshot))

		return nil
	}
}
