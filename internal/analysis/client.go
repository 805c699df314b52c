package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultOrigin is used when no origin is configured.
	DefaultOrigin = "http://localhost:5000"
	// UploadPath is the fixed analysis endpoint, resolved against the origin.
	UploadPath = "/upload"
	// FileField is the multipart field carrying the image.
	FileField = "file"

	errorBodyLimit  = 64 << 10
	resultBodyLimit = 1 << 20
)

// Client talks to the analysis server.
type Client struct {
	origin     *url.URL
	httpClient *http.Client
	logger     *zap.SugaredLogger
	requestID  func() string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(client *Client) {
		if l != nil {
			client.logger = l
		}
	}
}

// WithRequestIDs overrides the X-Request-ID generator.
func WithRequestIDs(next func() string) Option {
	return func(client *Client) {
		if next != nil {
			client.requestID = next
		}
	}
}

// New builds a client for the given origin (scheme://host[:port]).
func New(origin string, opts ...Option) (*Client, error) {
	parsed, err := ParseOrigin(origin)
	if err != nil {
		return nil, err
	}
	client := &Client{
		origin: parsed,
		// No timeout: the request settles on the transport's own terms or
		// when the caller cancels the context.
		httpClient: &http.Client{},
		logger:     zap.NewNop().Sugar(),
		requestID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ParseOrigin validates an origin string.
func ParseOrigin(origin string) (*url.URL, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return nil, errors.New("origin is required")
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid origin %q: scheme must be http or https", origin)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid origin %q: host is required", origin)
	}
	if strings.Trim(parsed.Path, "/") != "" || parsed.RawQuery != "" || parsed.Fragment != "" {
		return nil, fmt.Errorf("invalid origin %q: must not contain a path, query, or fragment", origin)
	}
	return &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}, nil
}

// Origin returns the origin the client resolves against.
func (c *Client) Origin() string {
	return c.origin.String()
}

// ResolveImageURL appends the server's image path to the origin. The path is
// never allowed to name another host.
func (c *Client) ResolveImageURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.origin.String() + path
}

// Upload posts the file at path to the analysis endpoint and decodes the result.
func (c *Client) Upload(ctx context.Context, path string) (*Result, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoFile
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}

	body, writer := io.Pipe()
	form := multipart.NewWriter(writer)
	go func() {
		defer file.Close()
		part, err := form.CreateFormFile(FileField, filepath.Base(path))
		if err != nil {
			writer.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			writer.CloseWithError(err)
			return
		}
		writer.CloseWithError(form.Close())
	}()

	endpoint := c.origin.ResolveReference(&url.URL{Path: UploadPath}).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		body.CloseWithError(err)
		return nil, err
	}
	requestID := c.requestID()
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	started := time.Now()
	c.logger.Debugw("upload started", "request_id", requestID, "file", filepath.Base(path), "endpoint", endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		body.CloseWithError(err)
		c.logger.Warnw("upload transport failure", "request_id", requestID, "error", err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	c.logger.Infow("upload finished",
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(started),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeServerError(resp)
	}

	return decodeResult(resp.Body)
}

// decodeResult requires the whole body to be one JSON object.
func decodeResult(body io.Reader) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(body, resultBodyLimit))
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, &ParseError{Err: errors.New("empty result")}
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &result, nil
}

// FetchImage downloads an annotated image previously returned by Upload.
func (c *Client) FetchImage(ctx context.Context, imageURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeServerError(resp)
	}
	return resp.Body, nil
}

func decodeServerError(resp *http.Response) error {
	serverErr := &ServerError{StatusCode: resp.StatusCode}
	var payload struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	if err != nil {
		return serverErr
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		serverErr.Message = payload.Error
	}
	return serverErr
}
