// Package gateway implements the JSON-over-WebSocket client used to talk
// to a remote recognition gateway.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a thin WebSocket wrapper exchanging typed JSON envelopes.
type Client struct {
	url    string
	token  string
	conn   *websocket.Conn
	logger *slog.Logger
}

// Envelope is the wire format in both directions.
type Envelope struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// NewClient creates a client for the given gateway URL. The token may be
// empty for unauthenticated gateways.
func NewClient(serverURL, token string, logger *slog.Logger) *Client {
	return &Client{
		url:    serverURL,
		token:  token,
		logger: logger,
	}
}

// Connect dials the gateway.
func (c *Client) Connect(ctx context.Context) error {
	u, err := url.Parse(c.url)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if c.token != "" {
		q := u.Query()
		q.Set("token", c.token)
		u.RawQuery = q.Encode()
	}

	c.logger.Debug("connecting to gateway", slog.String("url", u.String()))

	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.conn = conn
	c.logger.Info("gateway connected", slog.String("url", c.url))
	return nil
}

// Read reads the next envelope from the gateway.
func (c *Client) Read(ctx context.Context) (*Envelope, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("not connected")
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("failed to set read deadline: %w", err)
		}
	}

	var env Envelope
	if err := c.conn.ReadJSON(&env); err != nil {
		return nil, fmt.Errorf("failed to read envelope: %w", err)
	}

	c.logger.Debug("received envelope", slog.String("type", env.Type))
	return &env, nil
}

// Write sends an envelope to the gateway.
func (c *Client) Write(ctx context.Context, env *Envelope) error {
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	c.logger.Debug("sending envelope", slog.String("type", env.Type))

	if err := c.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("failed to write envelope: %w", err)
	}
	return nil
}

// WriteBinary sends a raw binary message, used for audio payloads.
func (c *Client) WriteBinary(ctx context.Context, data []byte) error {
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Ping sends a WebSocket ping frame.
func (c *Client) Ping(ctx context.Context) error {
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// Close closes the connection. Safe to call when not connected.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}

	c.logger.Info("closing gateway connection")
	err := c.conn.Close()
	c.conn = nil
	return err
}
