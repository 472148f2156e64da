// Package qanything is a Go client for the QAnything knowledge-base/chat
// HTTP API. It covers knowledge-base, document, FAQ and agent management,
// and streaming chat over the service's SSE-like text/event-stream protocol.
//
// The streaming core exposes two consumption styles over one decode/parse
// pipeline: a pull-based event channel (StreamKnowledgeBaseChat,
// StreamAgentChat) and a callback adapter layered on top of it
// (KnowledgeBaseChatWithHandler, AgentChatWithHandler).
package qanything

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
)

// DefaultBaseURL is the hosted QAnything API endpoint.
const DefaultBaseURL = "https://openapi.youdao.com/q_anything/api"

// Client talks to one QAnything account. The API key is fixed at
// construction; build a new Client to switch keys (there is no mutable
// global key state). A Client is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Useful for tests and self-hosted
// deployments.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient substitutes the underlying HTTP client. The default client
// carries no overall timeout: chat streams are long-lived, and callers layer
// timeouts via context when they want one.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithLogger enables structured logging of request lifecycle and stream
// decode warnings. Logging is off by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client authenticated with the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newRequest builds a request for the given API path. The Authorization
// header carries the raw API key with no bearer prefix, per the remote
// protocol.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// postJSON issues a JSON POST and decodes the response envelope into result.
func (c *Client) postJSON(ctx context.Context, path string, reqBody any, result any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request for %s: %w", path, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	return c.do(req, path, result)
}

// getJSON issues a GET with optional query parameters and decodes the
// response envelope into result.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, result any) error {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return c.do(req, path, result)
}

// postMultipart issues a multipart/form-data POST (file uploads and the FAQ
// form endpoints) and decodes the response envelope into result. file may be
// nil for form-only endpoints.
func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader, result any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to build form for %s: %w", path, err)
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			return fmt.Errorf("failed to build form for %s: %w", path, err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return fmt.Errorf("failed to read upload for %s: %w", path, err)
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf, w.FormDataContentType())
	if err != nil {
		return err
	}
	return c.do(req, path, result)
}

// do executes a request and decodes the uniform {errorCode, msg, result}
// envelope. A non-success errorCode becomes a *RemoteError; result, when
// non-nil, receives the decoded result field.
func (c *Client) do(req *http.Request, path string, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return &APIError{
			Code:     ErrorCodeUnavailable,
			Endpoint: path,
			Message:  err.Error(),
			Err:      ErrUnavailable,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp, path)
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	if !envelope.ok() {
		c.logger.Warn("remote error", "endpoint", path, "errorCode", envelope.ErrorCode, "msg", envelope.Msg)
		return &RemoteError{Code: envelope.ErrorCode, Msg: envelope.Msg}
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to decode result from %s: %w", path, err)
		}
	}
	return nil
}

// handleErrorResponse maps a non-200 status to an *APIError carrying the
// status and response body text.
func (c *Client) handleErrorResponse(resp *http.Response, path string) error {
	body, _ := io.ReadAll(resp.Body)

	apiErr := &APIError{
		Code:       ErrorCodeBadStatus,
		Endpoint:   path,
		StatusCode: resp.StatusCode,
		Message:    string(body),
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		apiErr.Code = ErrorCodeUnauthorized
	case resp.StatusCode >= 500:
		apiErr.Code = ErrorCodeUnavailable
		apiErr.Err = ErrUnavailable
	}

	c.logger.Warn("request failed", "endpoint", path, "status", resp.StatusCode)
	return apiErr
}
