// Package bucket talks to the container service that owns per-account
// storage buckets. Provisioning is idempotent on the remote side, so a
// retried create is always safe.
package bucket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	createPath = "/container/bucket/create"
	existsPath = "/container/bucket/exists"
)

// Provisioner is the contract the activation flow depends on. Buckets are
// keyed by account id.
type Provisioner interface {
	CreateBucket(ctx context.Context, bucketID string) error
	BucketExists(ctx context.Context, bucketID string) (bool, error)
}

// Client is the HTTP implementation of Provisioner.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxElapsed time.Duration
}

func NewClient(baseURL string, timeout, retryMaxElapsed time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxElapsed: retryMaxElapsed,
	}
}

type bucketRequest struct {
	BucketName string `json:"bucketName"`
}

// post sends {bucketName} to path, retrying transport failures and 5xx
// responses with exponential backoff until ctx or the retry budget runs out.
func (c *Client) post(ctx context.Context, path, bucketID string) (int, error) {
	body, err := json.Marshal(bucketRequest{BucketName: bucketID})
	if err != nil {
		return 0, fmt.Errorf("marshal bucket request: %w", err)
	}

	var status int
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("bucket service returned status %d", resp.StatusCode)
		}
		status = resp.StatusCode
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.maxElapsed
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return 0, err
	}
	return status, nil
}

func (c *Client) CreateBucket(ctx context.Context, bucketID string) error {
	status, err := c.post(ctx, createPath, bucketID)
	if err != nil {
		return fmt.Errorf("create bucket %s: %w", bucketID, err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("create bucket %s: unexpected status %d", bucketID, status)
	}
	return nil
}

func (c *Client) BucketExists(ctx context.Context, bucketID string) (bool, error) {
	status, err := c.post(ctx, existsPath, bucketID)
	if err != nil {
		return false, fmt.Errorf("check bucket %s: %w", bucketID, err)
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("check bucket %s: unexpected status %d", bucketID, status)
	}
}
