// Package client is a typed HTTP client for the note proxy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Mikele-Kochas/SmartNotebook/internal/model"
	"github.com/Mikele-Kochas/SmartNotebook/internal/notestore"
	"github.com/Mikele-Kochas/SmartNotebook/internal/utils"
)

const defaultTimeout = 90 * time.Second

// ErrInvalidResponse means a 2xx body lacked the expected field.
var ErrInvalidResponse = errors.New("invalid response from proxy")

// Error is a non-2xx answer from the proxy.
type Error struct {
	StatusCode int
	Message    string
	Details    string
	Kind       string
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("proxy error: %s (%s)", e.Message, e.Details)
	}
	return "proxy error: " + e.Message
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: utils.NewHTTPClient(defaultTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReviseNote asks the proxy to revise one note's content.
func (c *Client) ReviseNote(ctx context.Context, content, mode, prompt string) (string, error) {
	var resp struct {
		RevisedContent *string `json:"revisedContent"`
	}
	err := c.post(ctx, "/revise", model.ReviseRequest{
		Content: content,
		Mode:    mode,
		Prompt:  prompt,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.RevisedContent == nil {
		return "", fmt.Errorf("%w: missing revisedContent", ErrInvalidResponse)
	}
	return *resp.RevisedContent, nil
}

// SynthesizeNotes asks the proxy to combine notes in the given order.
func (c *Client) SynthesizeNotes(ctx context.Context, notes []notestore.Note, mode, prompt string) (string, error) {
	inputs := make([]model.NoteInput, len(notes))
	for i, n := range notes {
		inputs[i] = model.NewNoteInput(n.ID, n.Title, n.Content)
	}

	var resp struct {
		SynthesizedContent *string `json:"synthesizedContent"`
	}
	err := c.post(ctx, "/synthesize", model.SynthesizeRequest{
		Notes:  inputs,
		Mode:   mode,
		Prompt: prompt,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.SynthesizedContent == nil {
		return "", fmt.Errorf("%w: missing synthesizedContent", ErrInvalidResponse)
	}
	return *resp.SynthesizedContent, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp model.ErrorResponse
		if err := json.Unmarshal(raw, &errResp); err != nil || errResp.Error == "" {
			return &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return &Error{
			StatusCode: resp.StatusCode,
			Message:    errResp.Error,
			Details:    errResp.Details,
			Kind:       errResp.Kind,
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
