package suirpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scampozano/deepurge/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRPCServer(t *testing.T, handler func(method string, params []any) (any, *rpcError)) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "2.0", req.JSONRPC)

		result, rpcErr := handler(req.Method, req.Params)

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(url string) *Client {
	return NewClient(url, "0xpkg", "0xregistry", "0xsigner", 5*time.Second)
}

func TestAnchorReport_ReturnsDigest(t *testing.T) {
	srv := newRPCServer(t, func(method string, params []any) (any, *rpcError) {
		require.Equal(t, "unsafe_moveCall", method)
		require.Equal(t, "0xsigner", params[0])
		require.Equal(t, "0xpkg", params[1])
		require.Equal(t, anchorModule, params[2])
		require.Equal(t, anchorFunction, params[3])

		args, ok := params[5].([]any)
		require.True(t, ok)
		require.Equal(t, []any{"0xregistry", "2026-02-09", "deadbeef"}, args)

		return map[string]any{"digest": "0xTXDIGEST"}, nil
	})

	digest, err := newTestClient(srv.URL).AnchorReport(context.Background(), "2026-02-09", "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "0xTXDIGEST", digest)
}

func TestAnchorReport_MapsLedgerRejections(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    error
	}{
		{"already anchored", "MoveAbort: EAlreadyAnchored in deepurge_anchor", common.ErrAlreadyAnchored},
		{"not owner", "MoveAbort: ENotOwner in deepurge_anchor", common.ErrUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newRPCServer(t, func(string, []any) (any, *rpcError) {
				return nil, &rpcError{Code: -32000, Message: tc.message}
			})

			_, err := newTestClient(srv.URL).AnchorReport(context.Background(), "2026-02-09", "h")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAnchorReport_GenericRPCError(t *testing.T) {
	srv := newRPCServer(t, func(string, []any) (any, *rpcError) {
		return nil, &rpcError{Code: -32602, Message: "invalid params"}
	})

	_, err := newTestClient(srv.URL).AnchorReport(context.Background(), "p", "h")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrAlreadyAnchored)
	assert.NotErrorIs(t, err, common.ErrUnauthorized)
}

func registryResult(entries map[string]string) any {
	contents := make([]any, 0, len(entries))
	for k, v := range entries {
		contents = append(contents, map[string]any{
			"fields": map[string]any{"key": k, "value": v},
		})
	}
	return map[string]any{
		"data": map[string]any{
			"content": map[string]any{
				"fields": map[string]any{
					"entries": map[string]any{
						"fields": map[string]any{"contents": contents},
					},
				},
			},
		},
	}
}

func TestRegistryEntry_Found(t *testing.T) {
	srv := newRPCServer(t, func(method string, params []any) (any, *rpcError) {
		require.Equal(t, "sui_getObject", method)
		require.Equal(t, "0xregistry", params[0])
		return registryResult(map[string]string{"2026-02-09": "cafebabe"}), nil
	})

	hash, found, err := newTestClient(srv.URL).RegistryEntry(context.Background(), "2026-02-09")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "cafebabe", hash)
}

func TestRegistryEntry_Missing(t *testing.T) {
	srv := newRPCServer(t, func(string, []any) (any, *rpcError) {
		return registryResult(map[string]string{"2026-01-01": "other"}), nil
	})

	_, found, err := newTestClient(srv.URL).RegistryEntry(context.Background(), "2026-02-09")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCall_TransportErrorIsStorageUnavailable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "p", "r", "s", time.Second)

	_, err := c.AnchorReport(context.Background(), "p", "h")
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}

func TestCall_HTTPErrorIsStorageUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "bad gateway")
	}))
	t.Cleanup(srv.Close)

	_, _, err := newTestClient(srv.URL).RegistryEntry(context.Background(), "p")
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}
