package dexscreener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raykavin/pairwatch/core"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zl "github.com/raykavin/pairwatch/logger/zerolog"
)

const searchPayload = `{
  "schemaVersion": "1.0.0",
  "pairs": [
    {
      "chainId": "solana",
      "dexId": "raydium",
      "url": "https://dexscreener.com/solana/abc",
      "pairAddress": "abc",
      "baseToken": {"address": "tok1", "name": "Dogwifhat", "symbol": "WIF"},
      "quoteToken": {"address": "tok2", "name": "Solana", "symbol": "SOL"},
      "priceUsd": "0.00012345",
      "liquidity": {"usd": 15000.5},
      "volume": {"h24": 98765.4},
      "pairCreatedAt": 1748779200000
    },
    {
      "chainId": "ethereum",
      "dexId": "uniswap",
      "pairAddress": "def",
      "baseToken": {"symbol": "PEPE"},
      "quoteToken": {"symbol": "WETH"},
      "pairCreatedAt": 1748779200000
    },
    {
      "chainId": "solana",
      "dexId": "orca",
      "pairAddress": "ghi",
      "baseToken": {"symbol": "BONK"},
      "quoteToken": {"symbol": "SOL"},
      "pairCreatedAt": 0
    }
  ]
}`

func testLogger() core.Logger {
	nop := zerolog.Nop()
	return zl.NewAdapter(&nop)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, chainID string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(core.SourceSettings{
		BaseURL: server.URL,
		ChainID: chainID,
		Query:   "SOL",
	}, testLogger())
}

func TestClient_FetchPairs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/search", r.URL.Path)
		assert.Equal(t, "SOL", r.URL.Query().Get("q"))
		w.Write([]byte(searchPayload))
	}, "solana")

	pairs, err := client.FetchPairs(context.Background())
	require.NoError(t, err)

	// The ethereum pair is filtered out by chain id.
	require.Len(t, pairs, 2)

	wif := pairs[0]
	assert.Equal(t, "abc", wif.Address)
	assert.Equal(t, "WIF/SOL", wif.Symbol())
	assert.Equal(t, 15000.5, wif.LiquidityUSD)
	assert.Equal(t, 0.00012345, wif.PriceUSD)
	assert.True(t, wif.CreatedAt.Equal(time.UnixMilli(1748779200000)))

	// Absent pairCreatedAt and liquidity stay at their zero values.
	bonk := pairs[1]
	assert.False(t, bonk.HasCreatedAt())
	assert.Zero(t, bonk.LiquidityUSD)
}

func TestClient_FetchPairsAllChains(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(searchPayload))
	}, "")

	pairs, err := client.FetchPairs(context.Background())
	require.NoError(t, err)
	assert.Len(t, pairs, 3)
}

func TestClient_RetriesOnServerError(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(searchPayload))
	}, "solana")

	pairs, err := client.FetchPairs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NotEmpty(t, pairs)
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}, "solana")

	_, err := client.FetchPairs(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}
