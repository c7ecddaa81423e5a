package license

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// verifyMaxRetries bounds how often a verification attempt is repeated on
// transient failures. Kept small: a session that cannot verify degrades to
// the community plan anyway, it should not hang startup.
const verifyMaxRetries = 2

// VerificationResult is the response shape of the verification service.
type VerificationResult struct {
	Status string `json:"status"`
	Plan   string `json:"plan"`
}

type Verifier interface {
	Verify(ctx context.Context, licenseID, ownerID string) (*VerificationResult, error)
}

type verifyRequest struct {
	LicenseID string `json:"licenseId"`
	OwnerID   string `json:"ownerId"`
}

// VerifyClient calls the remote verification service over HTTP.
type VerifyClient struct {
	url    string
	client *http.Client
}

func NewVerifyClient(url string) *VerifyClient {
	return &VerifyClient{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify posts the license identifiers to the verification service.
// Transport errors and 5xx responses are retried with exponential backoff;
// any decoded response, and any other status, is taken as final.
func (c *VerifyClient) Verify(ctx context.Context, licenseID, ownerID string) (*VerificationResult, error) {
	payload, err := json.Marshal(verifyRequest{LicenseID: licenseID, OwnerID: ownerID})
	if err != nil {
		return nil, err
	}

	operation := func() (*VerificationResult, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		res, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		if res.StatusCode >= 500 {
			return nil, fmt.Errorf("verification service returned status %d", res.StatusCode)
		}
		if res.StatusCode < 200 || res.StatusCode > 299 {
			return nil, backoff.Permanent(fmt.Errorf("verification service returned status %d", res.StatusCode))
		}

		result := new(VerificationResult)
		if err := json.NewDecoder(res.Body).Decode(result); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("malformed verification response: %v", err))
		}
		return result, nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), verifyMaxRetries), ctx)
	return backoff.RetryWithData(operation, policy)
}
