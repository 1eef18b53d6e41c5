package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeSlot(t *testing.T, w http.ResponseWriter, r *http.Request, slot uint64) {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	_ = r.Body.Close()

	var req struct {
		ID     any    `json:"id"`
		Method string `json:"method"`
	}
	require.NoError(t, json.Unmarshal(body, &req))
	require.Equal(t, "getSlot", req.Method)

	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result":  slot,
	}))
}

func TestRPC_NewWithRetries_RetriesOnEOFThenSucceeds(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		writeSlot(t, w, r, 42)
	}))
	defer srv.Close()

	cl := NewWithRetries(srv.URL, fastRetryOpt(3))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slot, err := cl.GetSlot(ctx, "")
	require.NoError(t, err)
	require.Equal(t, uint64(42), slot)
	require.GreaterOrEqual(t, hits.Load(), int32(2))
}

func TestRPC_NewWithRetries_RetriesOnServiceUnavailable(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeSlot(t, w, r, 7)
	}))
	defer srv.Close()

	cl := NewWithRetries(srv.URL, fastRetryOpt(4))

	slot, err := cl.GetSlot(t.Context(), "")
	require.NoError(t, err)
	require.Equal(t, uint64(7), slot)
	require.Equal(t, int32(3), hits.Load())
}

func TestRPC_NewWithRetries_DoesNotRetryRPCErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var req struct {
			ID any `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]any{"code": -32602, "message": "Invalid params"},
		}))
	}))
	defer srv.Close()

	cl := NewWithRetries(srv.URL, fastRetryOpt(4))
	_, err := cl.GetSlot(t.Context(), "")
	require.ErrorContains(t, err, "Invalid params")
	require.Equal(t, int32(1), hits.Load())
}

func TestRPC_NewWithHeadersAndRetries_SendsHeaders(t *testing.T) {
	t.Parallel()

	wantHeaders := map[string]string{
		"X-Api-Key": "abc123",
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range wantHeaders {
			require.Equal(t, v, r.Header.Get(k), "missing/incorrect header %q", k)
		}
		writeSlot(t, w, r, 1)
	}))
	defer srv.Close()

	cl := NewWithHeadersAndRetries(srv.URL, wantHeaders, fastRetryOpt(2))
	_, err := cl.GetSlot(t.Context(), "")
	require.NoError(t, err)
}

func TestRPC_NewHTTPTransport_Config(t *testing.T) {
	t.Parallel()

	tr := newHTTPTransport()
	require.Equal(t, defaultTimeout, tr.IdleConnTimeout)
	require.Equal(t, defaultMaxIdleConnsPerHost, tr.MaxConnsPerHost)
	require.Equal(t, defaultMaxIdleConnsPerHost, tr.MaxIdleConnsPerHost)
	require.Equal(t, defaultTLSHandshakeTimeout, tr.TLSHandshakeTimeout)
	require.True(t, tr.ForceAttemptHTTP2)
}
