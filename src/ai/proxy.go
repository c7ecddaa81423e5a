package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type proxyRequest struct {
	LicenseID string `json:"licenseId"`
	OwnerID   string `json:"ownerId"`
	Prompt    string `json:"prompt"`
}

type proxyResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
	Usage    struct {
		TotalTokens int64 `json:"totalTokens"`
	} `json:"usage"`
}

// ProxyClient calls the metered remote generation proxy. It never retries:
// a retried call that actually succeeded server-side would be charged
// twice, so retry stays a caller decision.
type ProxyClient struct {
	url    string
	client *http.Client
}

func NewProxyClient(url string) *ProxyClient {
	return &ProxyClient{
		url:    url,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Generate posts the prompt to the proxy. All failure shapes (transport
// error, non-2xx status, success body without text) come back as a
// *ProxyError carrying the server-provided message where there is one.
func (c *ProxyClient) Generate(ctx context.Context, licenseID, ownerID, prompt string) (*proxyResponse, error) {
	payload, err := json.Marshal(proxyRequest{
		LicenseID: licenseID,
		OwnerID:   ownerID,
		Prompt:    prompt,
	})
	if err != nil {
		return nil, &ProxyError{Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, &ProxyError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, &ProxyError{Message: err.Error()}
	}
	defer res.Body.Close()

	var body proxyResponse
	decodeErr := json.NewDecoder(res.Body).Decode(&body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		message := body.Error
		if message == "" {
			message = http.StatusText(res.StatusCode)
		}
		return nil, &ProxyError{StatusCode: res.StatusCode, Message: message}
	}

	if decodeErr != nil {
		return nil, &ProxyError{Message: "malformed proxy response: " + decodeErr.Error()}
	}
	if body.Response == "" {
		return nil, &ProxyError{Message: "proxy returned an empty response"}
	}

	return &body, nil
}
