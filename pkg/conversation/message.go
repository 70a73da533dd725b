package conversation

import (
	"time"

	"github.com/google/uuid"

	"github.com/workopilot/copilot/pkg/attachments"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChartType string

const (
	ChartTypePie   ChartType = "pie_chart"
	ChartTypeLine  ChartType = "line_chart"
	ChartTypeBar   ChartType = "bar_chart"
	ChartTypeTable ChartType = "table"
	ChartTypeNone  ChartType = "none"
)

// Visualization is the chart payload attached to an assistant message. When
// ImageBase64 is set it takes precedence over data-driven rendering.
type Visualization struct {
	Type        ChartType      `json:"type"`
	ChartData   map[string]any `json:"chart_data,omitempty"`
	ImageBase64 string         `json:"image_base64,omitempty"`
}

// Source is a provenance reference returned alongside an assistant message.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Type string `json:"type,omitempty"`
}

// Message is a single entry in a conversation. Assistant messages carry the
// optional analytics payloads; user messages may carry attachments. Once
// IsStreaming is cleared the message is frozen.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	Attachments      []*attachments.Attachment `json:"attachments,omitempty"`
	IsStreaming      bool                      `json:"isStreaming,omitempty"`
	Visualization    *Visualization            `json:"visualization,omitempty"`
	Sources          []Source                  `json:"sources,omitempty"`
	Data             map[string]any            `json:"data,omitempty"`
	FollowUpQuestion string                    `json:"followUpQuestion,omitempty"`
}

type MessageOption func(*Message)

func WithID(id string) MessageOption {
	return func(m *Message) {
		m.ID = id
	}
}

func WithTime(t time.Time) MessageOption {
	return func(m *Message) {
		m.CreatedAt = t
	}
}

func WithAttachments(atts []*attachments.Attachment) MessageOption {
	return func(m *Message) {
		m.Attachments = atts
	}
}

func WithStreaming(streaming bool) MessageOption {
	return func(m *Message) {
		m.IsStreaming = streaming
	}
}

func WithVisualization(v *Visualization) MessageOption {
	return func(m *Message) {
		m.Visualization = v
	}
}

func WithSources(sources []Source) MessageOption {
	return func(m *Message) {
		m.Sources = sources
	}
}

func WithData(data map[string]any) MessageOption {
	return func(m *Message) {
		m.Data = data
	}
}

func WithFollowUpQuestion(q string) MessageOption {
	return func(m *Message) {
		m.FollowUpQuestion = q
	}
}

func NewMessage(role Role, content string, options ...MessageOption) *Message {
	ret := &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}

	for _, option := range options {
		option(ret)
	}

	return ret
}

func NewUserMessage(content string, options ...MessageOption) *Message {
	return NewMessage(RoleUser, content, options...)
}

func NewAssistantMessage(content string, options ...MessageOption) *Message {
	return NewMessage(RoleAssistant, content, options...)
}

// Clone returns a copy whose slices and maps are detached from the receiver.
// Attachment records are shared, they are read-only once created.
func (m *Message) Clone() *Message {
	ret := *m
	if m.Attachments != nil {
		ret.Attachments = append([]*attachments.Attachment(nil), m.Attachments...)
	}
	if m.Sources != nil {
		ret.Sources = append([]Source(nil), m.Sources...)
	}
	if m.Data != nil {
		data := make(map[string]any, len(m.Data))
		for k, v := range m.Data {
			data[k] = v
		}
		ret.Data = data
	}
	if m.Visualization != nil {
		v := *m.Visualization
		ret.Visualization = &v
	}
	return &ret
}
