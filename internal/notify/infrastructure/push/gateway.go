// Package push fans a formatted notification out to a user's registered
// device tokens through an external push gateway, pruning tokens the
// gateway reports as dead.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrInvalidToken marks a send failure where the gateway reported the device
// endpoint as unregistered or malformed. Any other failure, including a
// timeout, is transient and must never cause token eviction.
var ErrInvalidToken = errors.New("push: invalid device token")

// Message is the payload handed to the gateway for one device.
type Message struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}

// Gateway sends one message to one device token.
type Gateway interface {
	Send(ctx context.Context, token string, msg Message) error
}

// HTTPGateway talks to an FCM-style HTTP push provider: one JSON POST per
// recipient, authenticated with an API key header.
type HTTPGateway struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPGateway(endpoint, apiKey string, client *http.Client) *HTTPGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPGateway{endpoint: endpoint, apiKey: apiKey, client: client}
}

type gatewayRequest struct {
	To           string  `json:"to"`
	Notification Message `json:"notification"`
}

type gatewayResponse struct {
	Error string `json:"error"`
}

func (g *HTTPGateway) Send(ctx context.Context, token string, msg Message) error {
	body, err := json.Marshal(gatewayRequest{To: token, Notification: msg})
	if err != nil {
		return fmt.Errorf("encode push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("push send: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		return ErrInvalidToken
	case resp.StatusCode >= 300:
		return fmt.Errorf("push gateway status %d", resp.StatusCode)
	}

	var gw gatewayResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&gw); err != nil {
		// A 2xx with an unparsable body still counts as delivered.
		return nil
	}
	switch gw.Error {
	case "":
		return nil
	case "NotRegistered", "InvalidRegistration":
		return ErrInvalidToken
	default:
		return fmt.Errorf("push gateway error: %s", gw.Error)
	}
}
