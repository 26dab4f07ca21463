// Package greenapi is a minimal client for the Green API WhatsApp gateway.
//
// Every method performs exactly one HTTP call. Failures are returned as
// errors wrapping request.ErrUnexpectedStatus or request.ErrMalformedResponse
// so callers can tell an upstream empty result from a failed call. The API
// token is part of every URL and is scrubbed from all returned errors.
package greenapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/edgard/wadigest/internal/config"
	"github.com/edgard/wadigest/internal/request"
)

const redacted = "[REDACTED]"

// Client talks to a single Green API instance.
type Client struct {
	baseURL    string
	instanceID string
	token      string
	httpClient *http.Client
	scrubber   *strings.Replacer
	log        *slog.Logger
}

// NewClient creates a new gateway client from the given configuration.
func NewClient(cfg config.GreenAPIConfig, log *slog.Logger) (*Client, error) {
	if cfg.InstanceID == "" || cfg.Token == "" {
		return nil, errors.New("green api instance id and token are required")
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		instanceID: cfg.InstanceID,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		scrubber:   strings.NewReplacer(cfg.Token, redacted),
		log:        log.With("component", "greenapi"),
	}, nil
}

func (c *Client) endpoint(method string) string {
	return fmt.Sprintf("%s/waInstance%s/%s/%s", c.baseURL, c.instanceID, method, c.token)
}

func (c *Client) params(httpMethod, apiMethod string, body any) request.Params {
	return request.Params{
		Method:     httpMethod,
		URL:        c.endpoint(apiMethod),
		Body:       body,
		HTTPClient: c.httpClient,
		Scrubber:   c.scrubber,
	}
}

// GetChatHistory returns up to count messages of the given chat, newest first
// as the gateway orders them.
func (c *Client) GetChatHistory(ctx context.Context, chatID string, count int) ([]Message, error) {
	c.log.DebugContext(ctx, "Calling GetChatHistory", "chat_id", chatID, "count", count)

	msgs, err := request.MakeJSON[[]Message](ctx, c.params(http.MethodPost, "GetChatHistory", chatHistoryRequest{
		ChatID: chatID,
		Count:  count,
	}))
	if err != nil {
		return nil, fmt.Errorf("GetChatHistory for %s: %w", chatID, err)
	}
	return msgs, nil
}

// GetChats lists every chat known to the instance.
func (c *Client) GetChats(ctx context.Context) ([]Chat, error) {
	c.log.DebugContext(ctx, "Calling getChats")

	chats, err := request.MakeJSON[[]Chat](ctx, c.params(http.MethodGet, "getChats", nil))
	if err != nil {
		return nil, fmt.Errorf("getChats: %w", err)
	}
	return chats, nil
}

// GetGroupData returns extended metadata (owner, participants) of a group.
func (c *Client) GetGroupData(ctx context.Context, groupID string) (*GroupData, error) {
	c.log.DebugContext(ctx, "Calling GetGroupData", "group_id", groupID)

	data, err := request.MakeJSON[*GroupData](ctx, c.params(http.MethodPost, "GetGroupData", groupDataRequest{
		GroupID: groupID,
	}))
	if err != nil {
		return nil, fmt.Errorf("GetGroupData for %s: %w", groupID, err)
	}
	if data == nil {
		return nil, fmt.Errorf("GetGroupData for %s: %w: null body", groupID, request.ErrMalformedResponse)
	}
	return data, nil
}

// SendMessage posts a text message to a chat and returns the id the gateway
// assigned to it.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (string, error) {
	c.log.DebugContext(ctx, "Calling sendMessage", "chat_id", chatID, "length", len(text))

	resp, err := request.MakeJSON[sendMessageResponse](ctx, c.params(http.MethodPost, "sendMessage", sendMessageRequest{
		ChatID:  chatID,
		Message: text,
	}))
	if err != nil {
		return "", fmt.Errorf("sendMessage to %s: %w", chatID, err)
	}
	return resp.IDMessage, nil
}
