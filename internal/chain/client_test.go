package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpcMock creates a test HTTP server that serves a fixed JSON-RPC response
// per method. Any unknown method returns an RPC error.
func rpcMock(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			ID     json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if result, ok := responses[req.Method]; ok {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  result,
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialMock(t *testing.T, responses map[string]interface{}) *Client {
	t.Helper()
	srv := rpcMock(t, responses)
	c, err := Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestDialKeepsURL(t *testing.T) {
	srv := rpcMock(t, nil)
	c, err := Dial(context.Background(), srv.URL)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, srv.URL, c.URL())
}

func TestDialRejectsUnknownScheme(t *testing.T) {
	_, err := Dial(context.Background(), "ftp://example.com")
	require.Error(t, err)
}

func TestPingSuccess(t *testing.T) {
	c := dialMock(t, map[string]interface{}{"eth_blockNumber": "0x1b4"})

	latency, block, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(436), block)
	assert.Greater(t, latency, time.Duration(0))
}

func TestPingRPCError(t *testing.T) {
	c := dialMock(t, map[string]interface{}{})
	_, block, err := c.Ping(context.Background())
	require.Error(t, err)
	assert.Zero(t, block)
}

func TestPingConnectionRefused(t *testing.T) {
	c, err := Dial(context.Background(), "http://127.0.0.1:19991")
	require.NoError(t, err)
	defer c.Close()

	_, _, err = c.Ping(context.Background())
	require.Error(t, err)
}

func TestChainIDThroughBackend(t *testing.T) {
	var b Backend = dialMock(t, map[string]interface{}{"eth_chainId": "0xaa36a7"})
	id, err := b.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(11155111), id)
}

func TestNativeBalance(t *testing.T) {
	c := dialMock(t, map[string]interface{}{"eth_getBalance": "0xde0b6b3a7640000"})
	bal, err := NativeBalance(context.Background(), c, common.HexToAddress("0x01"))
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", bal.String())
}

func TestNativeBalanceError(t *testing.T) {
	c := dialMock(t, map[string]interface{}{})
	_, err := NativeBalance(context.Background(), c, common.HexToAddress("0x01"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "getting balance")
}
