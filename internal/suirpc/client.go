// Package suirpc is a minimal JSON-RPC 2.0 client for the Sui fullnode
// API, covering the two calls the anchor registry needs: a move call that
// writes a period's root hash into the on-chain registry object, and a
// read of that registry object's entries table.
package suirpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/scampozano/deepurge/internal/common"
)

// TestnetRPCURL is the default fullnode endpoint.
const TestnetRPCURL = "https://fullnode.testnet.sui.io:443"

const (
	anchorModule   = "deepurge_anchor"
	anchorFunction = "anchor_report"
	gasBudget      = "10000000"
)

// Client holds the on-chain identifiers of the anchor contract. All three
// must be configured for writes; reads need only the registry id.
type Client struct {
	rpcURL        string
	packageID     string
	registryID    string
	signerAddress string
	httpClient    *http.Client
}

func NewClient(rpcURL, packageID, registryID, signerAddress string, timeout time.Duration) *Client {
	if rpcURL == "" {
		rpcURL = TestnetRPCURL
	}
	return &Client{
		rpcURL:        rpcURL,
		packageID:     packageID,
		registryID:    registryID,
		signerAddress: signerAddress,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sui rpc: %v: %w", err, common.ErrStorageUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sui rpc: HTTP %d: %w", resp.StatusCode, common.ErrStorageUnavailable)
	}

	var r rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("sui rpc: decode response: %w", common.ErrStorageUnavailable)
	}

	if r.Error != nil {
		return nil, mapRPCError(r.Error)
	}

	return r.Result, nil
}

// mapRPCError translates ledger-side rejections into the shared taxonomy.
// The anchor contract aborts with EAlreadyAnchored when the period key
// exists and ENotOwner when the signer is not the registry owner; anything
// else is surfaced verbatim.
func mapRPCError(e *rpcError) error {
	msg := strings.ToLower(e.Message)
	switch {
	case strings.Contains(msg, "ealreadyanchored"):
		return fmt.Errorf("sui rpc: %s: %w", e.Message, common.ErrAlreadyAnchored)
	case strings.Contains(msg, "enotowner"):
		return fmt.Errorf("sui rpc: %s: %w", e.Message, common.ErrUnauthorized)
	}
	return fmt.Errorf("sui rpc error %d: %s", e.Code, e.Message)
}

type moveCallResult struct {
	Digest string `json:"digest"`
}

// AnchorReport writes (period, rootHash) into the on-chain registry and
// returns the transaction digest. The contract enforces both ownership and
// per-period uniqueness; this client only surfaces the resulting errors.
func (c *Client) AnchorReport(ctx context.Context, period, rootHash string) (string, error) {
	result, err := c.call(ctx, "unsafe_moveCall", []any{
		c.signerAddress,
		c.packageID,
		anchorModule,
		anchorFunction,
		[]any{}, // type args
		[]any{c.registryID, period, rootHash},
		nil, // gas object
		gasBudget,
	})
	if err != nil {
		return "", err
	}

	var tx moveCallResult
	if err := json.Unmarshal(result, &tx); err != nil {
		return "", fmt.Errorf("sui rpc: decode move call result: %w", common.ErrStorageUnavailable)
	}
	if tx.Digest == "" {
		tx.Digest = "pending"
	}
	return tx.Digest, nil
}

// registryObject mirrors the nested shape of the contract's registry
// object as returned by sui_getObject with showContent.
type registryObject struct {
	Data struct {
		Content struct {
			Fields struct {
				Entries struct {
					Fields struct {
						Contents []struct {
							Fields struct {
								Key   string `json:"key"`
								Value string `json:"value"`
							} `json:"fields"`
						} `json:"contents"`
					} `json:"fields"`
				} `json:"entries"`
			} `json:"fields"`
		} `json:"content"`
	} `json:"data"`
}

// RegistryEntry reads the stored root hash for a period from the registry
// object. found is false when the period has no on-chain record.
func (c *Client) RegistryEntry(ctx context.Context, period string) (string, bool, error) {
	result, err := c.call(ctx, "sui_getObject", []any{
		c.registryID,
		map[string]any{"showContent": true},
	})
	if err != nil {
		return "", false, err
	}

	var obj registryObject
	if err := json.Unmarshal(result, &obj); err != nil {
		return "", false, fmt.Errorf("sui rpc: decode registry object: %w", common.ErrStorageUnavailable)
	}

	for _, entry := range obj.Data.Content.Fields.Entries.Fields.Contents {
		if entry.Fields.Key == period {
			return entry.Fields.Value, true, nil
		}
	}

	return "", false, nil
}
