package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/matheus3301/botadmin/internal/configtree"
	"github.com/matheus3301/botadmin/internal/messages"
)

// BotSession is one conversation the bot is attached to on some platform.
type BotSession struct {
	ID           int64     `json:"id"`
	Platform     string    `json:"platform"`
	PlatformID   string    `json:"platform_id"`
	PlatformName string    `json:"platform_name"`
	LastActive   time.Time `json:"last_active"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges a username and password for a bearer token. It does not
// store the token; the caller hands it to the session store.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.post(ctx, "/login", loginRequest{Username: username, Password: password}, &resp)
	if errors.Is(err, ErrUnauthorized) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return resp.Token, nil
}

// Messages returns the backend's recent message history, newest first.
func (c *Client) Messages(ctx context.Context) ([]messages.ChatMessage, error) {
	var out []messages.ChatMessage
	if err := c.Do(ctx, http.MethodGet, "/messages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Config returns the current backend configuration document.
func (c *Client) Config(ctx context.Context) (*configtree.Node, error) {
	var doc configtree.Node
	if err := c.Do(ctx, http.MethodGet, "/config", nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// PushConfig replaces the backend configuration with doc.
func (c *Client) PushConfig(ctx context.Context, doc *configtree.Node) error {
	return c.post(ctx, "/config", doc, nil)
}

// Sessions lists the bot's platform sessions.
func (c *Client) Sessions(ctx context.Context) ([]BotSession, error) {
	var out []BotSession
	if err := c.Do(ctx, http.MethodGet, "/sessions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPost, path, in, out)
}
