package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TokenSource supplies the bearer token attached to outgoing requests.
// The session store satisfies it; requests proceed unauthenticated when
// no token is present.
type TokenSource interface {
	Token() (string, bool)
}

// Hook observes every settled request. Hooks never alter the payload.
type Hook interface {
	ObserveResponse(req *http.Request, resp *http.Response, took time.Duration)
	ObserveError(req *http.Request, err error)
}

// Client is the single chokepoint for outbound requests: it base-URLs paths,
// fixes the content type, attaches the bearer token when one exists and runs
// every settlement through the observation hooks.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	hooks   []Hook
}

func New(baseURL string, timeout time.Duration, tokens TokenSource, hooks ...Hook) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokens: tokens,
		hooks:  hooks,
	}
}

// RequestOption mutates the request before it is sent.
type RequestOption func(*http.Request)

// WithHeader sets an extra header, e.g. an idempotency key.
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any, opts ...RequestOption) error {
	target := path
	if len(query) > 0 {
		target = path + "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, target, nil, "", out, opts)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	reader, err := encodeBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, reader, "application/json", out, opts)
}

func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	reader, err := encodeBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, reader, "application/json", out, opts)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", out, opts)
}

// File is one uploaded file in a multipart submission.
type File struct {
	Field   string
	Name    string
	Content io.Reader
}

// MultipartForm is a multipart submission: plain text fields, fields
// serialized as JSON (structured data such as sizes) and file uploads.
type MultipartForm struct {
	Fields map[string]string
	JSON   map[string]any
	Files  []File
}

func (c *Client) PostMultipart(ctx context.Context, path string, form *MultipartForm, out any, opts ...RequestOption) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range form.Fields {
		if err := writer.WriteField(key, value); err != nil {
			return &RequestError{Err: fmt.Errorf("write field %s: %w", key, err)}
		}
	}
	for key, value := range form.JSON {
		data, err := json.Marshal(value)
		if err != nil {
			return &RequestError{Err: fmt.Errorf("marshal field %s: %w", key, err)}
		}
		if err := writer.WriteField(key, string(data)); err != nil {
			return &RequestError{Err: fmt.Errorf("write field %s: %w", key, err)}
		}
	}
	for _, file := range form.Files {
		part, err := writer.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return &RequestError{Err: fmt.Errorf("create file part %s: %w", file.Name, err)}
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return &RequestError{Err: fmt.Errorf("copy file %s: %w", file.Name, err)}
		}
	}
	if err := writer.Close(); err != nil {
		return &RequestError{Err: fmt.Errorf("close multipart writer: %w", err)}
	}

	return c.do(ctx, http.MethodPost, path, &buf, writer.FormDataContentType(), out, opts)
}

// CloseIdleConnections releases the transport's idle connections on teardown.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

func encodeBody(body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("marshal body: %w", err)}
	}
	return bytes.NewReader(data), nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any, opts []RequestOption) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &RequestError{Err: err}
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, opt := range opts {
		opt(req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		netErr := &NetworkError{Err: err}
		c.observeError(req, netErr)
		return netErr
	}
	defer resp.Body.Close()

	c.observeResponse(req, resp, time.Since(start))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		netErr := &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
		c.observeError(req, netErr)
		return netErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(respBody),
		}
		c.observeError(req, statusErr)
		return statusErr
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}
	return nil
}

func (c *Client) observeResponse(req *http.Request, resp *http.Response, took time.Duration) {
	for _, hook := range c.hooks {
		hook.ObserveResponse(req, resp, took)
	}
}

func (c *Client) observeError(req *http.Request, err error) {
	for _, hook := range c.hooks {
		hook.ObserveError(req, err)
	}
}
