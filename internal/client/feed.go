package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type FeedEvent struct {
	Type       string `json:"type"`
	Submission struct {
		Op     string    `json:"op"`
		ID     uuid.UUID `json:"id"`
		JobID  uuid.UUID `json:"job_id"`
		Status string    `json:"status"`
	} `json:"submission"`
}

// FeedURL turns the API base URL into the submissions websocket URL.
func FeedURL(baseURL, accessToken string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/api/v1/ws/submissions")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", errors.New("unsupported scheme " + u.Scheme)
	}
	q := u.Query()
	q.Set("access_token", accessToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// StreamSubmissions calls fn for every feed event until ctx is cancelled or
// the connection drops.
func (c *Client) StreamSubmissions(ctx context.Context, accessToken string, fn func(FeedEvent)) error {
	endpoint, err := FeedURL(c.baseURL, accessToken)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		var ev FeedEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			c.logger.Printf("[Client] bad feed message err=%v", err)
			continue
		}
		fn(ev)
	}
}
