package hub

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Attributes are the entity attributes forwarded alongside a state.
type Attributes struct {
	FriendlyName string `json:"friendly_name"`
	Icon         string `json:"icon"`
}

// EntityState is the payload of one entity update.
type EntityState struct {
	State      string     `json:"state"`
	Attributes Attributes `json:"attributes"`
}

// Client posts entity-state updates to a Home Assistant style REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a hub client. The timeout bounds each outbound call so a
// hung hub cannot wedge the watch loop.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// UpdateState sets one entity's state and attributes. Errors carry the
// attempted payload for diagnosis; the caller decides whether to continue.
func (c *Client) UpdateState(ctx context.Context, entityID string, state EntityState) error {
	payload, err := sonic.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode payload for %s: %w", entityID, err)
	}

	url := fmt.Sprintf("%s/api/states/%s", c.baseURL, entityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request for %s: %w", entityID, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update %s (payload %s): %w", entityID, payload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("update %s: unexpected status %d (payload %s, response %s)",
			entityID, resp.StatusCode, payload, strings.TrimSpace(string(body)))
	}
	return nil
}
