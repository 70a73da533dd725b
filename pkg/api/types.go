package api

import "time"

// Wire types for the analytics backend. Field names follow the backend's
// JSON contract verbatim.

type ChatRequest struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id,omitempty"`
	UserQuery      string `json:"user_query"`
}

type VisualizationData struct {
	Type        string         `json:"type"`
	ChartData   map[string]any `json:"chart_data,omitempty"`
	ImageBase64 string         `json:"image_base64,omitempty"`
}

type SourceRecord struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Type string `json:"type,omitempty"`
}

type DataAccessed struct {
	Symbols        []string `json:"symbols"`
	TimeRange      string   `json:"time_range,omitempty"`
	DataSource     string   `json:"data_source"`
	RecordsFetched int      `json:"records_fetched"`
}

type ChatResponseData struct {
	Text             string             `json:"text"`
	Data             map[string]any     `json:"data,omitempty"`
	Visualization    *VisualizationData `json:"visualization,omitempty"`
	FollowUpQuestion string             `json:"follow_up_question,omitempty"`
}

type ChatResponse struct {
	ConversationID string           `json:"conversation_id"`
	MessageID      string           `json:"message_id"`
	Response       ChatResponseData `json:"response"`
	Sources        []SourceRecord   `json:"sources,omitempty"`
	DataAccessed   *DataAccessed    `json:"data_accessed,omitempty"`
}

type ConversationRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type conversationsEnvelope struct {
	UserID        string               `json:"user_id"`
	Conversations []ConversationRecord `json:"conversations"`
}

type HistoryMessage struct {
	ID            string             `json:"id"`
	Role          string             `json:"role"`
	Content       string             `json:"content"`
	CreatedAt     time.Time          `json:"created_at"`
	Visualization *VisualizationData `json:"visualization,omitempty"`
	Sources       []SourceRecord     `json:"sources,omitempty"`
}

type historyEnvelope struct {
	ConversationID string           `json:"conversation_id"`
	Messages       []HistoryMessage `json:"messages"`
}

type Asset struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	Symbol         string  `json:"symbol"`
	Quantity       float64 `json:"quantity"`
	AvgBuyPrice    float64 `json:"avg_buy_price"`
	PurchaseDate   string  `json:"purchase_date,omitempty"`
	PortfolioName  string  `json:"portfolio_name,omitempty"`
	Currency       string  `json:"currency"`
	Broker         string  `json:"broker,omitempty"`
	InvestmentType string  `json:"investment_type"`
	Exchange       string  `json:"exchange,omitempty"`
}

type AssetList struct {
	UserID string  `json:"user_id"`
	Count  int     `json:"count"`
	Assets []Asset `json:"assets"`
}

// AssetCreate is sent as a multipart form, not JSON; the field names are the
// form keys.
type AssetCreate struct {
	Symbol         string
	Quantity       float64
	AvgBuyPrice    float64
	PurchaseDate   string
	PortfolioName  string
	Currency       string
	Broker         string
	InvestmentType string
	AdditionalInfo string
	Exchange       string
}

type DeleteAssetResponse struct {
	Success bool   `json:"success"`
	Deleted string `json:"deleted"`
}

type IngestedFile struct {
	File   string `json:"file"`
	Chunks int    `json:"chunks"`
	Status string `json:"status"`
}

type IngestError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

type IngestResult struct {
	Success    bool           `json:"success"`
	Ingested   []IngestedFile `json:"ingested"`
	Errors     []IngestError  `json:"errors"`
	TotalFiles int            `json:"total_files"`
	Successful int            `json:"successful"`
	Failed     int            `json:"failed"`
}

type ExportMessage struct {
	Role              string `json:"role"`
	Content           string `json:"content"`
	Timestamp         string `json:"timestamp,omitempty"`
	HasVisualization  bool   `json:"has_visualization"`
	VisualizationType string `json:"visualization_type,omitempty"`
	ImageBase64       string `json:"image_base64,omitempty"`
}

type ExportRequest struct {
	UserID                string          `json:"user_id"`
	Messages              []ExportMessage `json:"messages"`
	ExportFormat          string          `json:"export_format"`
	IncludeVisualizations bool            `json:"include_visualizations"`
	Title                 string          `json:"title,omitempty"`
}

type ExportSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Level   int    `json:"level"`
}

type ExportImage struct {
	Caption     string `json:"caption"`
	ImageBase64 string `json:"image_base64"`
}

type ExportResponse struct {
	Title             string          `json:"title"`
	Summary           string          `json:"summary"`
	StructuredContent string          `json:"structured_content"`
	Sections          []ExportSection `json:"sections"`
	Visualizations    []ExportImage   `json:"visualizations"`
	GeneratedAt       string          `json:"generated_at"`
}
