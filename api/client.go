// Package api is the thin HTTP transport in front of the study planner
// REST API. It attaches the bearer token to every outgoing request,
// decodes the {success, message, data} envelope, and normalizes every
// failure into exactly one of the taxonomy errors so the stores above
// never see a raw transport exception.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"planner-client/domain"
	"planner-client/errors"
)

// TokenSource yields the bearer token attached to every request. An empty
// token means the request goes out unauthenticated; the server answers
// with a non-success envelope in that case.
type TokenSource interface {
	Token() (string, error)
}

type Client struct {
	http    *http.Client
	log     *slog.Logger
	baseURL string
	tokens  TokenSource
}

func NewClient(log *slog.Logger, baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		log:     log,
		baseURL: baseURL,
		tokens:  tokens,
	}
}

// call issues one request and decodes the envelope. A nil out skips data
// decoding for endpoints whose data is a bare bool the client ignores.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			c.log.Warn("Token lookup failed, sending unauthenticated request", "err", err)
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &errors.TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.TransportError{Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &errors.ServerError{Message: fmt.Sprintf("server error: %d", resp.StatusCode)}
		}
		return &errors.ServerError{Message: noMessageFallback}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		msg := env.failureMessage()
		if msg == noMessageFallback && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
			msg = fmt.Sprintf("server error: %d", resp.StatusCode)
		}
		return &errors.ServerError{Message: msg}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &errors.ServerError{Message: fmt.Sprintf("malformed response data: %v", err)}
		}
	}
	return nil
}

// sendMessagePayload is the wire shape of SendMessage: the draft goes out
// with MessageId 0 and IsRead false, the server echoes the persisted
// record back in data.
type sendMessagePayload struct {
	MessageID  int    `json:"MessageId"`
	SenderID   string `json:"SenderId"`
	ReceiverID string `json:"ReceiverId"`
	Content    string `json:"Content"`
	IsRead     bool   `json:"IsRead"`
}

func (c *Client) GetConversation(ctx context.Context, senderID, receiverID string) ([]domain.Message, error) {
	q := url.Values{}
	q.Set("senderId", senderID)
	q.Set("receiverId", receiverID)
	var out []domain.Message
	if err := c.call(ctx, http.MethodGet, "/Messaging/GetConversation", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAllMessagesByUser(ctx context.Context, userID string) ([]domain.Message, error) {
	q := url.Values{}
	q.Set("userId", userID)
	var out []domain.Message
	if err := c.call(ctx, http.MethodGet, "/Messaging/GetAllMessagesByUser", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SendMessage(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
	payload := sendMessagePayload{
		MessageID:  domain.DraftID,
		SenderID:   cmd.SenderID,
		ReceiverID: cmd.ReceiverID,
		Content:    cmd.Content,
		IsRead:     false,
	}
	var out domain.Message
	if err := c.call(ctx, http.MethodPost, "/Messaging/SendMessage", nil, payload, &out); err != nil {
		return domain.Message{}, err
	}
	return out, nil
}

func (c *Client) MarkAsRead(ctx context.Context, messageID int) error {
	q := url.Values{}
	q.Set("messageId", strconv.Itoa(messageID))
	return c.call(ctx, http.MethodPut, "/Messaging/MarkAsRead", q, nil, nil)
}

func (c *Client) DeleteMessage(ctx context.Context, messageID int) error {
	q := url.Values{}
	q.Set("messageId", strconv.Itoa(messageID))
	return c.call(ctx, http.MethodDelete, "/Messaging/DeleteMessage", q, nil, nil)
}

func (c *Client) GetAllRelationships(ctx context.Context, userID string) ([]domain.Contact, error) {
	q := url.Values{}
	q.Set("userId", userID)
	var out []domain.Contact
	if err := c.call(ctx, http.MethodGet, "/Messaging/GetAllRelationship", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAllNotifications(ctx context.Context, userName string) ([]domain.Notification, error) {
	q := url.Values{}
	q.Set("userName", userName)
	var out []domain.Notification
	if err := c.call(ctx, http.MethodGet, "/Notification/GetAllNotification", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddNotification(ctx context.Context, req domain.NotificationRequest) error {
	return c.call(ctx, http.MethodPost, "/Notification/AddNotification", nil, req, nil)
}

func (c *Client) UpdateNotification(ctx context.Context, req domain.NotificationRequest) error {
	return c.call(ctx, http.MethodPut, "/Notification/UpdateNotification", nil, req, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, notificationID int) error {
	q := url.Values{}
	q.Set("notificationId", strconv.Itoa(notificationID))
	return c.call(ctx, http.MethodDelete, "/Notification/DeleteNotification", q, nil, nil)
}

type loginPayload struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
}

func (c *Client) Login(ctx context.Context, username, password string) (domain.LoginResult, error) {
	var out domain.LoginResult
	err := c.call(ctx, http.MethodPost, "/Login/Authentication", nil, loginPayload{Username: username, Password: password}, &out)
	if err != nil {
		return domain.LoginResult{}, err
	}
	return out, nil
}

// GetUserInformation resolves the classroom identifier attached to an
// account. Missing values come back empty, not as an error.
func (c *Client) GetUserInformation(ctx context.Context, username string) (string, error) {
	q := url.Values{}
	q.Set("username", username)
	var out struct {
		ClassID string `json:"ClassId"`
	}
	if err := c.call(ctx, http.MethodGet, "/Login/GetUserInformation", q, nil, &out); err != nil {
		return "", err
	}
	return out.ClassID, nil
}
