package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"calendar-sync/feature/recordstore"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client implements recordstore.Store and recordstore.Locator on the Notion REST API.
type Client struct {
	http     *resty.Client
	lookback time.Duration
	logger   *zap.Logger
}

// New creates a Notion client.
func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.Token).
		SetHeader("Notion-Version", cfg.Version).
		SetHeader("Content-Type", "application/json").
		SetTimeout(time.Duration(timeout) * time.Second).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && r.StatusCode() == http.StatusTooManyRequests
		})

	return &Client{http: c, lookback: time.Duration(cfg.LookbackHours) * time.Hour, logger: logger}
}

type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do sends one request and decodes a successful response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("notion %s %s: %w", method, path, err)
	}

	if resp.IsError() {
		var apiErr apiError
		_ = json.Unmarshal(resp.Body(), &apiErr)
		if resp.StatusCode() == http.StatusNotFound {
			return fmt.Errorf("notion %s %s: %s: %w", method, path, apiErr.Message, recordstore.ErrNotFound)
		}
		return fmt.Errorf("notion %s %s: status %d %s: %s", method, path, resp.StatusCode(), apiErr.Code, apiErr.Message)
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("notion %s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

// CreateDataset creates a database under the page parentRef.
func (c *Client) CreateDataset(ctx context.Context, parentRef, title string, schema []recordstore.Field) (string, error) {
	body := map[string]any{
		"parent":     map[string]any{"type": "page_id", "page_id": parentRef},
		"title":      richText(title),
		"properties": encodeSchema(schema),
	}

	var out object
	if err := c.do(ctx, http.MethodPost, "/databases", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// UpdateDatasetSchema adds properties to a database.
func (c *Client) UpdateDatasetSchema(ctx context.Context, datasetRef string, fields []recordstore.Field) error {
	body := map[string]any{"properties": encodeSchema(fields)}
	return c.do(ctx, http.MethodPatch, "/databases/"+datasetRef, body, nil)
}

// CreateRecord creates a page in a database.
func (c *Client) CreateRecord(ctx context.Context, datasetRef string, props recordstore.Properties) (string, error) {
	body := map[string]any{
		"parent":     map[string]any{"database_id": datasetRef},
		"properties": encodeProperties(props),
	}

	var out object
	if err := c.do(ctx, http.MethodPost, "/pages", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// UpdateRecord patches page properties. Pages are addressed globally, so datasetRef is unused.
func (c *Client) UpdateRecord(ctx context.Context, datasetRef, recordID string, props recordstore.Properties) error {
	body := map[string]any{"properties": encodeProperties(props)}
	return c.do(ctx, http.MethodPatch, "/pages/"+recordID, body, nil)
}

// ArchiveRecord archives a page.
func (c *Client) ArchiveRecord(ctx context.Context, datasetRef, recordID string) error {
	return c.do(ctx, http.MethodPatch, "/pages/"+recordID, map[string]any{"archived": true}, nil)
}

// QueryByField returns pages whose rich text property equals value.
func (c *Client) QueryByField(ctx context.Context, datasetRef, field, value string) ([]recordstore.Record, error) {
	filter := map[string]any{
		"property":  field,
		"rich_text": map[string]any{"equals": value},
	}
	return c.query(ctx, datasetRef, filter)
}

// QueryByDateRange returns pages whose date property starts in
// [start-lookback, end). The filter can only match on the start date, so
// callers re-check the overlap of the returned pages.
func (c *Client) QueryByDateRange(ctx context.Context, datasetRef, field string, start, end time.Time) ([]recordstore.Record, error) {
	filter := map[string]any{
		"and": []any{
			map[string]any{"property": field, "date": map[string]any{"on_or_after": formatTime(start.Add(-c.lookback))}},
			map[string]any{"property": field, "date": map[string]any{"before": formatTime(end)}},
		},
	}
	return c.query(ctx, datasetRef, filter)
}

// QueryAll returns every page of a database.
func (c *Client) QueryAll(ctx context.Context, datasetRef string) ([]recordstore.Record, error) {
	return c.query(ctx, datasetRef, nil)
}

// query walks all result pages of a database query.
func (c *Client) query(ctx context.Context, datasetRef string, filter map[string]any) ([]recordstore.Record, error) {
	records := make([]recordstore.Record, 0)
	cursor := ""

	for {
		body := map[string]any{"page_size": 100}
		if filter != nil {
			body["filter"] = filter
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}

		var out listResponse
		if err := c.do(ctx, http.MethodPost, "/databases/"+datasetRef+"/query", body, &out); err != nil {
			return nil, err
		}

		for _, obj := range out.Results {
			if obj.Archived {
				continue
			}
			records = append(records, decodeRecord(obj))
		}

		if !out.HasMore || out.NextCursor == "" {
			break
		}
		cursor = out.NextCursor
	}

	return records, nil
}

// FindParent searches for a page titled name.
func (c *Client) FindParent(ctx context.Context, name string) (string, error) {
	return c.search(ctx, name, "page")
}

// FindDataset searches for a database titled title.
func (c *Client) FindDataset(ctx context.Context, title string) (string, error) {
	return c.search(ctx, title, "database")
}

func (c *Client) search(ctx context.Context, title, kind string) (string, error) {
	body := map[string]any{
		"query":  title,
		"filter": map[string]any{"property": "object", "value": kind},
	}

	var out listResponse
	if err := c.do(ctx, http.MethodPost, "/search", body, &out); err != nil {
		return "", err
	}

	for _, obj := range out.Results {
		if !obj.Archived && strings.EqualFold(strings.TrimSpace(obj.displayTitle()), strings.TrimSpace(title)) {
			return obj.ID, nil
		}
	}

	c.logger.Debug("Notion search found no exact match",
		zap.String("kind", kind),
		zap.String("title", title),
		zap.Int("results", len(out.Results)),
	)
	return "", fmt.Errorf("%s %q: %w", kind, title, recordstore.ErrNotFound)
}

// AppendParagraph appends a paragraph block to a page.
func (c *Client) AppendParagraph(ctx context.Context, parentRef, text string) error {
	body := map[string]any{
		"children": []any{
			map[string]any{
				"object":    "block",
				"type":      "paragraph",
				"paragraph": map[string]any{"rich_text": richText(text)},
			},
		},
	}
	return c.do(ctx, http.MethodPatch, "/blocks/"+parentRef+"/children", body, nil)
}
