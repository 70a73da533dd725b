package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workopilot/copilot/pkg/api"
	"github.com/workopilot/copilot/pkg/conversation"
)

func TestRemoteSendMapsWireResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"conversation_id": "c-1",
			"message_id":      "m-1",
			"response": map[string]any{
				"text":               "here you go",
				"follow_up_question": "anything else?",
				"visualization": map[string]any{
					"type":         "bar_chart",
					"image_base64": "aW1n",
				},
				"data": map[string]any{"total": 3},
			},
			"sources": []map[string]any{
				{"name": "Yahoo Finance", "url": "https://finance.yahoo.com", "type": "market_data"},
			},
		})
	}))
	defer server.Close()

	remote := NewRemote(api.NewClient(server.URL, "u-1"))
	reply, err := remote.Send(context.Background(), "c-1", "chart it")
	require.NoError(t, err)

	assert.Equal(t, "c-1", reply.ConversationID)
	assert.Equal(t, "m-1", reply.MessageID)
	assert.Equal(t, "here you go", reply.Text)
	assert.Equal(t, "anything else?", reply.FollowUpQuestion)
	require.NotNil(t, reply.Visualization)
	assert.Equal(t, conversation.ChartTypeBar, reply.Visualization.Type)
	assert.Equal(t, "aW1n", reply.Visualization.ImageBase64)
	require.Len(t, reply.Sources, 1)
	assert.Equal(t, "Yahoo Finance", reply.Sources[0].Name)
	assert.Equal(t, "market_data", reply.Sources[0].Type)
}

func TestRemoteSendPropagatesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	remote := NewRemote(api.NewClient(server.URL, "u-1"))
	_, err := remote.Send(context.Background(), "", "hello")
	require.Error(t, err)
}

func TestRemoteHistoryMapsMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"conversation_id": "c-1",
			"messages": []map[string]any{
				{"id": "m-1", "role": "user", "content": "hi", "created_at": "2024-03-01T10:00:00Z"},
				{
					"id": "m-2", "role": "assistant", "content": "hello",
					"created_at":    "2024-03-01T10:00:05Z",
					"visualization": map[string]any{"type": "pie_chart"},
				},
			},
		})
	}))
	defer server.Close()

	remote := NewRemote(api.NewClient(server.URL, "u-1"))
	msgs, err := remote.History(context.Background(), "c-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, conversation.RoleUser, msgs[0].Role)
	assert.Nil(t, msgs[0].Visualization)
	assert.Equal(t, conversation.RoleAssistant, msgs[1].Role)
	require.NotNil(t, msgs[1].Visualization)
	assert.Equal(t, conversation.ChartTypePie, msgs[1].Visualization.Type)
}
