package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/scampozano/deepurge/internal/common"
)

// Walrus testnet endpoints, used as defaults when none are configured.
const (
	TestnetAggregatorURL = "https://aggregator.walrus-testnet.walrus.space"
	TestnetPublisherURL  = "https://publisher.walrus-testnet.walrus.space"
)

// WalrusClient talks to a Walrus publisher (uploads) and aggregator
// (downloads) over their HTTP REST API.
type WalrusClient struct {
	publisherURL  string
	aggregatorURL string
	epochs        int
	httpClient    *http.Client
}

// walrusPutResponse covers both publisher response shapes: a newly created
// blob and a deduplicated, already certified one.
type walrusPutResponse struct {
	NewlyCreated *struct {
		BlobObject struct {
			BlobID string `json:"blobId"`
		} `json:"blobObject"`
	} `json:"newlyCreated"`
	AlreadyCertified *struct {
		BlobID string `json:"blobId"`
	} `json:"alreadyCertified"`
}

// NewWalrusClient builds a Walrus-backed Store. epochs is the number of
// storage epochs requested per upload; timeout bounds every HTTP round
// trip, since the store itself never retries.
func NewWalrusClient(publisherURL, aggregatorURL string, epochs int, timeout time.Duration) *WalrusClient {
	if publisherURL == "" {
		publisherURL = TestnetPublisherURL
	}
	if aggregatorURL == "" {
		aggregatorURL = TestnetAggregatorURL
	}

	return &WalrusClient{
		publisherURL:  strings.TrimRight(publisherURL, "/"),
		aggregatorURL: strings.TrimRight(aggregatorURL, "/"),
		epochs:        epochs,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

// Upload PUTs raw bytes to the publisher and returns the assigned blob id.
func (c *WalrusClient) Upload(ctx context.Context, data []byte) (string, error) {
	url := fmt.Sprintf("%s/v1/blobs?epochs=%d", c.publisherURL, c.epochs)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("walrus upload: %v: %w", err, common.ErrStorageUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("walrus upload: HTTP %d: %w", resp.StatusCode, common.ErrStorageUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("walrus upload: read body: %w", common.ErrStorageUnavailable)
	}

	var result walrusPutResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("walrus upload: decode response: %w", common.ErrStorageUnavailable)
	}

	switch {
	case result.NewlyCreated != nil && result.NewlyCreated.BlobObject.BlobID != "":
		return result.NewlyCreated.BlobObject.BlobID, nil
	case result.AlreadyCertified != nil && result.AlreadyCertified.BlobID != "":
		return result.AlreadyCertified.BlobID, nil
	}

	return "", fmt.Errorf("walrus upload: no blob id in response: %w", common.ErrStorageUnavailable)
}

// Download GETs raw bytes from the aggregator by blob id.
func (c *WalrusClient) Download(ctx context.Context, objectID string) ([]byte, error) {
	url := fmt.Sprintf("%s/v1/blobs/%s", c.aggregatorURL, objectID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("walrus download: %v: %w", err, common.ErrStorageUnavailable)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("blob %s: %w", objectID, common.ErrNotFound)
	default:
		return nil, fmt.Errorf("walrus download: HTTP %d: %w", resp.StatusCode, common.ErrStorageUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("walrus download: read body: %w", common.ErrStorageUnavailable)
	}

	return body, nil
}
