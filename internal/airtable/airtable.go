package airtable

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Default Airtable hosts. Record CRUD goes through the REST host; attachment
// uploads go through the separate content host.
const (
	defaultAPIBaseURL     = "https://api.airtable.com"
	defaultContentBaseURL = "https://content.airtable.com"
)

// client is the concrete Store backed by the Airtable REST API.
type client struct {
	token          string
	baseID         string
	tableID        string
	apiBaseURL     string
	contentBaseURL string
	httpClient     *http.Client
}

// Option customises the client. Used by tests to point at a local server.
type Option func(*client)

// WithBaseURLs overrides the REST and content hosts.
func WithBaseURLs(api, content string) Option {
	return func(c *client) {
		c.apiBaseURL = api
		c.contentBaseURL = content
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// NewClient returns a Store that talks to Airtable.
func NewClient(token, baseID, tableID string, opts ...Option) Store {
	c := &client{
		token:          token,
		baseID:         baseID,
		tableID:        tableID,
		apiBaseURL:     defaultAPIBaseURL,
		contentBaseURL: defaultContentBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ─── AIRTABLE API SHAPES ──────────────────────────────────────────────────────

type recordPayload struct {
	Fields map[string]any `json:"fields"`
}

type listResponse struct {
	Records []Record `json:"records"`
}

type uploadRequest struct {
	ContentType string `json:"contentType"`
	Filename    string `json:"filename"`
	File        string `json:"file"` // base64-encoded bytes
}

type uploadResponse struct {
	ID          string `json:"id"`
	CreatedTime string `json:"createdTime"`
}

// errorEnvelope covers both error shapes Airtable returns: a bare string and
// a {type, message} object.
type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

// ─── STORE IMPLEMENTATION ─────────────────────────────────────────────────────

func (c *client) QueryRecords(ctx context.Context, filterFormula string) ([]Record, error) {
	u := fmt.Sprintf("%s/v0/%s/%s?filterByFormula=%s",
		c.apiBaseURL, c.baseID, c.tableID, url.QueryEscape(filterFormula))

	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var parsed listResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("airtable: unmarshal record list: %w", err)
	}
	return parsed.Records, nil
}

func (c *client) CreateRecord(ctx context.Context, fields map[string]any) (Record, error) {
	u := fmt.Sprintf("%s/v0/%s/%s", c.apiBaseURL, c.baseID, c.tableID)

	body, err := c.do(ctx, http.MethodPost, u, recordPayload{Fields: fields})
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return Record{}, fmt.Errorf("airtable: unmarshal created record: %w", err)
	}
	return rec, nil
}

func (c *client) PatchRecord(ctx context.Context, id string, fields map[string]any) (Record, error) {
	u := fmt.Sprintf("%s/v0/%s/%s/%s", c.apiBaseURL, c.baseID, c.tableID, id)

	body, err := c.do(ctx, http.MethodPatch, u, recordPayload{Fields: fields})
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return Record{}, fmt.Errorf("airtable: unmarshal patched record: %w", err)
	}
	return rec, nil
}

func (c *client) UploadAttachment(ctx context.Context, recordID, field string, att Attachment) (AttachmentMeta, error) {
	// The content host addresses uploads by record, not by table.
	u := fmt.Sprintf("%s/v0/%s/%s/%s/uploadAttachment",
		c.contentBaseURL, c.baseID, recordID, url.PathEscape(field))

	body, err := c.do(ctx, http.MethodPost, u, uploadRequest{
		ContentType: att.ContentType,
		Filename:    att.Filename,
		File:        base64.StdEncoding.EncodeToString(att.Data),
	})
	if err != nil {
		return AttachmentMeta{}, err
	}

	var parsed uploadResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return AttachmentMeta{}, fmt.Errorf("airtable: unmarshal upload response: %w", err)
	}
	return AttachmentMeta{RecordID: parsed.ID, CreatedTime: parsed.CreatedTime}, nil
}

// ─── HTTP PLUMBING ────────────────────────────────────────────────────────────

// do sends one authenticated request and returns the raw response body on
// 2xx. Non-2xx responses come back as *Error with the upstream message.
func (c *client) do(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		bodyBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("airtable: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("airtable: build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("airtable: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB cap
	if err != nil {
		return nil, fmt.Errorf("airtable: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(respBytes, resp.StatusCode),
		}
	}

	return respBytes, nil
}

// extractErrorMessage pulls a human-readable message out of whichever error
// envelope Airtable used.
func extractErrorMessage(body []byte, status int) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Error) > 0 {
		// {"error": "INVALID_REQUEST"}
		var s string
		if err := json.Unmarshal(env.Error, &s); err == nil && s != "" {
			return s
		}
		// {"error": {"type": "...", "message": "..."}}
		var obj struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(env.Error, &obj); err == nil {
			if obj.Message != "" {
				return obj.Message
			}
			if obj.Type != "" {
				return obj.Type
			}
		}
	}
	return fmt.Sprintf("Airtable returned %d", status)
}
