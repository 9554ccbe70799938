// Package client talks to the kgview HTTP server: graph listing, download,
// upload and the model proxy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/OFFIS-RIT/kgview/pkg/ai"
	"github.com/OFFIS-RIT/kgview/pkg/graph"

	"github.com/cockroachdb/errors"
)

// DefaultTimeout bounds a single request. Model answers can take a while.
const DefaultTimeout = 2 * time.Minute

// ErrNetwork marks every failed exchange with the server, whether the
// transport failed or the server answered with an error status.
var ErrNetwork = errors.New("network error")

// ResponseError is a non-success answer of the server.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Upload is one named graph document sent to the server.
type Upload struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// AskRequest is the body of the model proxy call. Zero values use the
// server defaults.
type AskRequest struct {
	Prompt      string   `json:"prompt"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL, e.g. "http://localhost:3000".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListGraphs returns the names of the stored graphs.
func (c *Client) ListGraphs(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.do(ctx, http.MethodGet, "/graphs", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// GetGraphDocument returns the raw stored document.
func (c *Client) GetGraphDocument(ctx context.Context, name string) ([]byte, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/graphs/"+url.PathEscape(name), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// GetGraph downloads and loads a graph. A document that does not describe a
// valid graph fails with graph.ErrMalformedGraph.
func (c *Client) GetGraph(ctx context.Context, name string) (*graph.Graph, error) {
	raw, err := c.GetGraphDocument(ctx, name)
	if err != nil {
		return nil, err
	}
	return graph.Parse(raw)
}

// PutGraphs uploads graphs in one request.
func (c *Client) PutGraphs(ctx context.Context, graphs []Upload) error {
	body := struct {
		Graphs []Upload `json:"graphs"`
	}{Graphs: graphs}
	return c.do(ctx, http.MethodPost, "/graphs", body, nil)
}

// Ask sends a prompt through the model proxy and returns the answer text.
// The server's status is kept, so ai.StatusCode reports what the model
// endpoint answered.
func (c *Client) Ask(ctx context.Context, req AskRequest) (string, error) {
	var resp struct {
		Response string `json:"response"`
	}
	if err := c.do(ctx, http.MethodPost, "/ask", req, &resp); err != nil {
		var re *ResponseError
		if errors.As(err, &re) {
			return "", errors.Mark(&ai.StatusError{StatusCode: re.StatusCode, Message: re.Message}, ErrNetwork)
		}
		return "", err
	}
	return resp.Response, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "%s %s", method, path), ErrNetwork)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "read %s %s", method, path), ErrNetwork)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return errors.Mark(&ResponseError{StatusCode: resp.StatusCode, Message: msg}, ErrNetwork)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Mark(errors.Wrapf(err, "decode %s %s", method, path), ErrNetwork)
	}
	return nil
}
