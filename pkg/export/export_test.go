package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workopilot/copilot/pkg/api"
	"github.com/workopilot/copilot/pkg/conversation"
	"github.com/workopilot/copilot/pkg/render"
)

func TestMessagesForExport(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	conv := conversation.NewConversation()
	conv.Messages = []*conversation.Message{
		conversation.NewUserMessage("how did tech do?", conversation.WithTime(created)),
		conversation.NewAssistantMessage("tech was up 2%",
			conversation.WithTime(created.Add(5*time.Second)),
			conversation.WithVisualization(&conversation.Visualization{
				Type:        conversation.ChartTypeBar,
				ImageBase64: "aW1n",
			})),
		conversation.NewAssistantMessage("no chart here",
			conversation.WithVisualization(&conversation.Visualization{Type: conversation.ChartTypeNone})),
	}

	msgs := MessagesForExport(conv)
	require.Len(t, msgs, 3)

	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "2024-03-01 10:30", msgs[0].Timestamp)
	assert.False(t, msgs[0].HasVisualization)

	assert.True(t, msgs[1].HasVisualization)
	assert.Equal(t, "bar_chart", msgs[1].VisualizationType)
	assert.Equal(t, "aW1n", msgs[1].ImageBase64)

	// The "none" marker means no chart.
	assert.False(t, msgs[2].HasVisualization)
}

func TestBuildHTMLAssemblesDocument(t *testing.T) {
	resp := &api.ExportResponse{
		Title:       "Portfolio Review",
		Summary:     "A review of recent performance.",
		GeneratedAt: "2024-03-01",
		Sections: []api.ExportSection{
			{Title: "Overview", Content: "The portfolio **gained** ground.", Level: 2},
			{Title: "Risks", Content: "Concentration remains high.", Level: 2},
		},
		Visualizations: []api.ExportImage{
			{Caption: "Sector allocation", ImageBase64: "aW1n"},
		},
	}

	html, err := BuildHTML(resp, render.ToHTML)
	require.NoError(t, err)

	assert.Contains(t, html, "<title>Portfolio Review</title>")
	assert.Contains(t, html, "<h1>Portfolio Review</h1>")
	assert.Contains(t, html, "A review of recent performance.")
	assert.Contains(t, html, "<h2>Overview</h2>")
	assert.Contains(t, html, "<strong>gained</strong>")
	assert.Contains(t, html, "<h2>Risks</h2>")
	assert.Contains(t, html, `src="data:image/png;base64,aW1n"`)
	assert.Contains(t, html, "Sector allocation")
	assert.Contains(t, html, "Generated 2024-03-01")
}

func TestBuildHTMLConverterFailure(t *testing.T) {
	resp := &api.ExportResponse{
		Title:    "t",
		Sections: []api.ExportSection{{Title: "s", Content: "x"}},
	}
	_, err := BuildHTML(resp, func(string) (string, error) {
		return "", os.ErrInvalid
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `section "s"`)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	require.NoError(t, WriteFile(path, "<html></html>"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(content))
}
