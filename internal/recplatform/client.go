package recplatform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/votelane/reco-service/internal/pkg/logger"
)

const apiKeyHeader = "X-Api-Key"

// Client is the typed boundary to the external recommendation platform:
// tables hold rows, engines hold trained rankers. Every call carries the
// configured timeout so callers see an error instead of a hang.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateTable provisions a row store. "Already exists" is success with the
// Exists flag set, so setup and full-sync can call this repeatedly.
func (c *Client) CreateTable(ctx context.Context, name, schemaType string) (CreateResult, error) {
	var out TableInfo
	err := c.do(ctx, http.MethodPost, "/tables", createTableRequest{Name: name, SchemaType: schemaType}, &out)
	if err != nil {
		if ae, ok := asAPIError(err); ok && isConflict(ae.StatusCode, ae.Message) {
			return CreateResult{Name: name, Exists: true}, nil
		}
		return CreateResult{}, err
	}
	return CreateResult{Name: name}, nil
}

func (c *Client) ListTables(ctx context.Context) ([]TableInfo, error) {
	var out listTablesResponse
	if err := c.do(ctx, http.MethodGet, "/tables", nil, &out); err != nil {
		return nil, err
	}
	return out.Tables, nil
}

func (c *Client) GetTable(ctx context.Context, name string) (TableInfo, error) {
	var out TableInfo
	err := c.do(ctx, http.MethodGet, "/tables/"+name, nil, &out)
	return out, err
}

func (c *Client) DeleteTable(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/tables/"+name, nil, nil)
}

// InsertRows uploads one batch into a table. data must marshal to a JSON
// array of records containing only declared columns.
func (c *Client) InsertRows(ctx context.Context, table string, data any) (int, error) {
	var out insertResponse
	if err := c.do(ctx, http.MethodPost, "/tables/"+table+"/insert", insertRequest{Data: data}, &out); err != nil {
		return 0, err
	}
	return out.Inserted, nil
}

// CreateEngine provisions a ranker. Conflicts normalize to Exists like
// CreateTable.
func (c *Client) CreateEngine(ctx context.Context, spec EngineSpec) (CreateResult, error) {
	var out EngineStatus
	err := c.do(ctx, http.MethodPost, "/engines", spec, &out)
	if err != nil {
		if ae, ok := asAPIError(err); ok && isConflict(ae.StatusCode, ae.Message) {
			return CreateResult{Name: spec.Name, Exists: true}, nil
		}
		return CreateResult{}, err
	}
	return CreateResult{Name: spec.Name}, nil
}

func (c *Client) GetEngine(ctx context.Context, name string) (EngineStatus, error) {
	var out EngineStatus
	err := c.do(ctx, http.MethodGet, "/engines/"+name, nil, &out)
	return out, err
}

func (c *Client) DeleteEngine(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/engines/"+name, nil, nil)
}

// QueryEngine runs a declarative query string against an engine.
func (c *Client) QueryEngine(ctx context.Context, engine, query string, params map[string]any) ([]Item, error) {
	var out queryResponse
	if err := c.do(ctx, http.MethodPost, "/engines/"+engine+"/query", queryRequest{Query: query, Parameters: params}, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// RankForUser runs the user-keyed personalized ranking call.
func (c *Client) RankForUser(ctx context.Context, engine, userID string, limit int) ([]Item, error) {
	var out rankResponse
	if err := c.do(ctx, http.MethodPost, "/engines/"+engine+"/rank", rankRequest{UserID: userID, Limit: limit}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Health succeeds when the platform answers a table listing.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.ListTables(ctx)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("recplatform: encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WithCtx(ctx).Warn().Err(err).
			Str("method", method).
			Str("path", path).
			Dur("duration", time.Since(start)).
			Msg("platform request failed")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.readError(resp)
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("recplatform: decode response: %w", err)
	}
	return nil
}

func (c *Client) readError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body errorResponse
	message := ""
	if json.Unmarshal(raw, &body) == nil {
		message = body.Message
		if message == "" {
			message = body.Error
		}
	}
	if message == "" {
		message = string(raw)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

func asAPIError(err error) (*APIError, bool) {
	var ae *APIError
	ok := errors.As(err, &ae)
	return ae, ok
}
