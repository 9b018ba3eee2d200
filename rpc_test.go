package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRPCClientGetBlockTemplate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := rpcResponse{ID: 1, Result: json.RawMessage(`{
			"bits": "207fffff",
			"curtime": 1700000000,
			"height": 42,
			"mintime": 1699990000,
			"version": 536870912,
			"previousblockhash": "00000000000000000000000000000000000000000000000000000000000000",
			"coinbasevalue": 5000000000,
			"default_witness_commitment": "",
			"transactions": []
		}`)}
		data, _ := json.Marshal(resp)
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)

	client := NewRPCClient(srv.URL, "", "", 5*time.Second)
	out, err := client.GetBlockTemplate(context.Background())
	if err != nil {
		t.Fatalf("GetBlockTemplate error: %v", err)
	}
	if out.Height != 42 {
		t.Fatalf("expected height 42, got %d", out.Height)
	}
	if out.Bits != "207fffff" {
		t.Fatalf("expected bits 207fffff, got %q", out.Bits)
	}
	if !client.Healthy() {
		t.Fatalf("expected client to be marked healthy after a successful call")
	}
}

func TestRPCClientSubmitBlock(t *testing.T) {
	var gotParams []any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotParams, _ = req.Params.([]any)
		resp := rpcResponse{ID: req.ID, Result: json.RawMessage(`null`)}
		data, _ := json.Marshal(resp)
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)

	client := NewRPCClient(srv.URL, "user", "pass", 5*time.Second)
	result, err := client.SubmitBlock(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("SubmitBlock error: %v", err)
	}
	if result != "" {
		t.Fatalf("expected empty result for a successful submitblock, got %q", result)
	}
	if len(gotParams) != 1 || gotParams[0] != "deadbeef" {
		t.Fatalf("expected submitblock params [deadbeef], got %v", gotParams)
	}
}

func TestRPCClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	client := NewRPCClient(srv.URL, "", "", 5*time.Second)
	_, err := client.GetBlockTemplate(context.Background())
	if err == nil {
		t.Fatalf("expected error from unauthorized response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Healthy() {
		t.Fatalf("expected client to be marked unhealthy after a failed call")
	}
}

func TestRPCClientRetriesTransientHTTP503(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		resp := rpcResponse{ID: 1, Result: json.RawMessage(`{"height": 7}`)}
		data, _ := json.Marshal(resp)
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)

	client := NewRPCClient(srv.URL, "", "", 5*time.Second)
	out, err := client.GetBlockTemplate(context.Background())
	if err != nil {
		t.Fatalf("expected eventual success after transient 503s, got: %v", err)
	}
	if out.Height != 7 {
		t.Fatalf("expected height 7, got %d", out.Height)
	}
	if attempts.Load() != 3 {
		t.Fatalf("expected exactly 3 attempts (2 failures + 1 success), got %d", attempts.Load())
	}
}

func TestRPCClientGivesUpWhenContextExpires(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client := NewRPCClient(srv.URL, "", "", 5*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetBlockTemplate(ctx)
	if err == nil {
		t.Fatalf("expected an error once the context deadline cuts the retry loop short")
	}
}

func TestShouldRetryRPCExcludesAuthFailure(t *testing.T) {
	if shouldRetryRPC(&httpStatusError{StatusCode: http.StatusUnauthorized}) {
		t.Fatalf("401 must not be retried: this client cannot reload credentials mid-loop")
	}
	if !shouldRetryRPC(&httpStatusError{StatusCode: http.StatusServiceUnavailable}) {
		t.Fatalf("503 should be retried as a transient node hiccup")
	}
	if shouldRetryRPC(&rpcError{Code: -32601, Message: "Method not found"}) {
		t.Fatalf("a well-formed rpc-level error should not be retried, it will never succeed on its own")
	}
}

func TestRPCClientRPCLevelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := rpcResponse{ID: 1, Error: &rpcError{Code: -32601, Message: "Method not found"}}
		data, _ := json.Marshal(resp)
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)

	client := NewRPCClient(srv.URL, "", "", 5*time.Second)
	_, err := client.GetBlockTemplate(context.Background())
	if err == nil {
		t.Fatalf("expected an rpc-level error")
	}
	rerr, ok := err.(*rpcError)
	if !ok {
		t.Fatalf("expected *rpcError, got %T: %v", err, err)
	}
	if rerr.Code != -32601 {
		t.Fatalf("unexpected error code: %d", rerr.Code)
	}
}
