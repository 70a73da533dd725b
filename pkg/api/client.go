package api

// Package api is a thin request/response client for the analytics backend's
// REST surface: chat, conversation listing, history, assets, document
// ingestion and export summaries. It does no retrying and no caching; the
// conversation manager above it owns all failure semantics.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/workopilot/copilot/pkg/attachments"
)

type Client struct {
	baseURL string
	userID  string
	hc      *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.hc = hc
	}
}

// NewClient builds a client for the backend at baseURL, acting as the given
// user on every request.
func NewClient(baseURL string, userID string, options ...ClientOption) *Client {
	ret := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		hc:      http.DefaultClient,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (c *Client) UserID() string {
	return c.userID
}

// Chat sends one user query. conversationID may be empty, in which case the
// backend creates a new conversation and returns its identifier.
func (c *Client) Chat(ctx context.Context, conversationID string, query string) (*ChatResponse, error) {
	req := &ChatRequest{
		UserID:         c.userID,
		ConversationID: conversationID,
		UserQuery:      query,
	}
	var ret ChatResponse
	if err := c.postJSON(ctx, "/chat/", req, &ret); err != nil {
		return nil, errors.Wrap(err, "chat request failed")
	}
	return &ret, nil
}

// Conversations lists the user's persisted conversations.
func (c *Client) Conversations(ctx context.Context) ([]ConversationRecord, error) {
	var envelope conversationsEnvelope
	if err := c.getJSON(ctx, "/chat/conversations/"+c.userID, &envelope); err != nil {
		return nil, errors.Wrap(err, "failed to list conversations")
	}
	return envelope.Conversations, nil
}

// History fetches the full message history of one conversation.
func (c *Client) History(ctx context.Context, conversationID string) ([]HistoryMessage, error) {
	var envelope historyEnvelope
	if err := c.getJSON(ctx, "/chat/history/"+conversationID, &envelope); err != nil {
		return nil, errors.Wrapf(err, "failed to fetch history for %s", conversationID)
	}
	return envelope.Messages, nil
}

// Assets lists the user's portfolio holdings.
func (c *Client) Assets(ctx context.Context) (*AssetList, error) {
	var ret AssetList
	if err := c.getJSON(ctx, "/assets/"+c.userID, &ret); err != nil {
		return nil, errors.Wrap(err, "failed to list assets")
	}
	return &ret, nil
}

// CreateAsset registers a holding, optionally with supporting documents.
func (c *Client) CreateAsset(ctx context.Context, asset AssetCreate, files []*attachments.Attachment) (*Asset, error) {
	fields := map[string]string{
		"user_id":         c.userID,
		"symbol":          asset.Symbol,
		"quantity":        fmt.Sprintf("%g", asset.Quantity),
		"avg_buy_price":   fmt.Sprintf("%g", asset.AvgBuyPrice),
		"purchase_date":   asset.PurchaseDate,
		"portfolio_name":  asset.PortfolioName,
		"currency":        asset.Currency,
		"broker":          asset.Broker,
		"investment_type": asset.InvestmentType,
		"additional_info": asset.AdditionalInfo,
		"exchange":        asset.Exchange,
	}
	var ret Asset
	if err := c.postMultipart(ctx, "/assets/", fields, files, &ret); err != nil {
		return nil, errors.Wrapf(err, "failed to create asset %s", asset.Symbol)
	}
	return &ret, nil
}

// DeleteAsset removes a holding by symbol.
func (c *Client) DeleteAsset(ctx context.Context, symbol string) (*DeleteAssetResponse, error) {
	var ret DeleteAssetResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/assets/"+c.userID+"/"+symbol, nil, &ret); err != nil {
		return nil, errors.Wrapf(err, "failed to delete asset %s", symbol)
	}
	return &ret, nil
}

// IngestDocuments uploads attachment content for retrieval-augmented
// answers.
func (c *Client) IngestDocuments(ctx context.Context, files []*attachments.Attachment) (*IngestResult, error) {
	if len(files) == 0 {
		return nil, errors.New("no files to ingest")
	}
	fields := map[string]string{"user_id": c.userID}
	var ret IngestResult
	if err := c.postMultipart(ctx, "/documents/ingest", fields, files, &ret); err != nil {
		return nil, errors.Wrap(err, "document ingestion failed")
	}
	return &ret, nil
}

// GenerateExportSummary asks the backend to condense selected messages into
// a structured document.
func (c *Client) GenerateExportSummary(ctx context.Context, req *ExportRequest) (*ExportResponse, error) {
	req.UserID = c.userID
	var ret ExportResponse
	if err := c.postJSON(ctx, "/export/generate-summary", req, &ret); err != nil {
		return nil, errors.Wrap(err, "failed to generate export summary")
	}
	return &ret, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in interface{}, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, path, in, out)
}

func (c *Client) doJSON(ctx context.Context, method string, path string, in interface{}, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

func (c *Client) postMultipart(
	ctx context.Context,
	path string,
	fields map[string]string,
	files []*attachments.Attachment,
	out interface{},
) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return errors.Wrapf(err, "failed to write form field %s", k)
		}
	}

	for _, f := range files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return errors.Wrapf(err, "failed to create form file %s", f.Name)
		}
		r, err := f.Open()
		if err != nil {
			return err
		}
		_, err = io.Copy(part, r)
		_ = r.Close()
		if err != nil {
			return errors.Wrapf(err, "failed to copy %s into request", f.Name)
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	log.Trace().Str("method", req.Method).Str("url", req.URL.String()).Msg("backend request")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("backend returned %s: %s", resp.Status, truncate(string(b), 200))
	}

	if out == nil || len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return errors.Wrap(err, "failed to decode response body")
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
