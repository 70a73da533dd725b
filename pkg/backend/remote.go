package backend

// Package backend abstracts where assistant replies come from: the real REST
// backend, or a local simulation used when no backend is configured.

import (
	"context"

	"github.com/workopilot/copilot/pkg/api"
	"github.com/workopilot/copilot/pkg/attachments"
	"github.com/workopilot/copilot/pkg/conversation"
)

// Remote answers through the analytics backend's REST API.
type Remote struct {
	client *api.Client
}

var (
	_ conversation.Client   = (*Remote)(nil)
	_ conversation.Ingester = (*Remote)(nil)
)

func NewRemote(client *api.Client) *Remote {
	return &Remote{client: client}
}

func (r *Remote) Send(ctx context.Context, conversationID string, query string) (*conversation.Reply, error) {
	resp, err := r.client.Chat(ctx, conversationID, query)
	if err != nil {
		return nil, err
	}
	return &conversation.Reply{
		ConversationID:   resp.ConversationID,
		MessageID:        resp.MessageID,
		Text:             resp.Response.Text,
		Data:             resp.Response.Data,
		Visualization:    visualizationFromWire(resp.Response.Visualization),
		Sources:          sourcesFromWire(resp.Sources),
		FollowUpQuestion: resp.Response.FollowUpQuestion,
	}, nil
}

func (r *Remote) Conversations(ctx context.Context) ([]conversation.ConversationRecord, error) {
	records, err := r.client.Conversations(ctx)
	if err != nil {
		return nil, err
	}
	ret := make([]conversation.ConversationRecord, 0, len(records))
	for _, rec := range records {
		ret = append(ret, conversation.ConversationRecord{
			ID:        rec.ID,
			Title:     rec.Title,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	return ret, nil
}

func (r *Remote) History(ctx context.Context, conversationID string) ([]conversation.MessageRecord, error) {
	msgs, err := r.client.History(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	ret := make([]conversation.MessageRecord, 0, len(msgs))
	for _, m := range msgs {
		ret = append(ret, conversation.MessageRecord{
			ID:            m.ID,
			Role:          conversation.Role(m.Role),
			Content:       m.Content,
			CreatedAt:     m.CreatedAt,
			Visualization: visualizationFromWire(m.Visualization),
			Sources:       sourcesFromWire(m.Sources),
		})
	}
	return ret, nil
}

func (r *Remote) Ingest(ctx context.Context, atts []*attachments.Attachment) error {
	_, err := r.client.IngestDocuments(ctx, atts)
	return err
}

func visualizationFromWire(v *api.VisualizationData) *conversation.Visualization {
	if v == nil {
		return nil
	}
	return &conversation.Visualization{
		Type:        conversation.ChartType(v.Type),
		ChartData:   v.ChartData,
		ImageBase64: v.ImageBase64,
	}
}

func sourcesFromWire(sources []api.SourceRecord) []conversation.Source {
	if len(sources) == 0 {
		return nil
	}
	ret := make([]conversation.Source, 0, len(sources))
	for _, s := range sources {
		ret = append(ret, conversation.Source{Name: s.Name, URL: s.URL, Type: s.Type})
	}
	return ret
}
