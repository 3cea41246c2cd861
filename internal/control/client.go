package control

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/genricoloni/mucwidget/internal/config"
)

// ErrDaemonUnavailable is returned when no daemon listens on the socket
var ErrDaemonUnavailable = errors.New("widget daemon is not running")

// Client talks to a running daemon over its control socket
type Client struct {
	http *http.Client
}

// NewClient creates a client for the socket of cfg
func NewClient(cfg *config.AppConfig) *Client {
	return NewClientForSocket(SocketPath(cfg))
}

// NewClientForSocket creates a client for an explicit socket path
func NewClientForSocket(path string) *Client {
	dialer := &net.Dialer{Timeout: 2 * time.Second}
	return &Client{
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					return dialer.DialContext(ctx, "unix", path)
				},
			},
		},
	}
}

// Resize asks the daemon to re-render one widget at a new size
func (c *Client) Resize(ctx context.Context, id, minHeight int) error {
	body, err := json.Marshal(ResizeRequest{MinHeight: minHeight})
	if err != nil {
		return err
	}

	// The host part is ignored by the unix dialer
	url := fmt.Sprintf("http://widgetd/widgets/%d/resize", id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			return fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
		}
		return fmt.Errorf("control request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("daemon refused resize: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	return nil
}
