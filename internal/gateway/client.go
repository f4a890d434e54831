// Package gateway talks to the HTTP messaging gateway that owns the chat session.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/sentencebot/internal/domain"
)

// Client fetches session contacts and delivers media replies through the gateway.
type Client struct {
	client *resty.Client // contact reads, retried
	media  *resty.Client // media sends, never retried
}

// Config holds configuration for the gateway client.
type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RetryCount    int           // applies to contact reads only
	RetryWaitTime time.Duration // defaults to 500ms
}

type contactsResponse struct {
	Contacts []domain.Contact `json:"contacts"`
}

type mediaRequest struct {
	ReplyTo  string `json:"reply_to,omitempty"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewClient creates a new gateway client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("gateway base url is required")
	}

	wait := cfg.RetryWaitTime
	if wait <= 0 {
		wait = 500 * time.Millisecond
	}

	client := newRestyClient(cfg).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(wait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || (r != nil && r.StatusCode() >= 500)
		})

	// A media send that timed out may still have been delivered; retrying
	// it could post the same reply twice.
	media := newRestyClient(cfg).SetRetryCount(0)

	return &Client{client: client, media: media}, nil
}

func newRestyClient(cfg *Config) *resty.Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return client
}

// GetContacts returns the session's contact list.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Contact: contacts known to the session.
//   - error: non-nil if the request fails.
func (c *Client) GetContacts(ctx context.Context) ([]domain.Contact, error) {
	var result contactsResponse
	var apiErr errorResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&apiErr).
		Get("/contacts")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode(), apiErr.Error)
	}

	return result.Contacts, nil
}

// Reply sends media to the chat the event came from, quoting the original message.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - event: message being answered.
//   - media: encoded image to deliver.
// Returns:
//   - error: non-nil if the gateway rejected the media.
func (c *Client) Reply(ctx context.Context, event domain.MessageEvent, media domain.EncodedImage) error {
	var apiErr errorResponse

	resp, err := c.media.R().
		SetContext(ctx).
		SetPathParam("chat", event.ReplyChatID()).
		SetBody(mediaRequest{
			ReplyTo:  event.ID,
			MimeType: media.MimeType,
			Data:     media.Payload,
		}).
		SetError(&apiErr).
		Post("/messages/{chat}/media")
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode(), apiErr.Error)
	}

	return nil
}
