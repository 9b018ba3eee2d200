package main

import (
	"context"
	"net"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
)

func newDispatchTestSession(t *testing.T, id string) *Session {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return NewSession(id, server)
}

func newTestCoordinator(jm *JobManager) *Coordinator {
	return &Coordinator{
		jobs:              jm,
		registry:          NewSessionRegistry(NewWorkerPool(2)),
		validator:         NewShareValidator(jm, nil),
		params:            &chaincfg.MainNetParams,
		defaultDifficulty: 1024,
		serverVersionMask: defaultVersionMask,
	}
}

// TestDispatchSubscribeTransitionsState covers the SessionFSM transition
// Connected -> Subscribed and assigns a per-session extranonce1.
func TestDispatchSubscribeTransitionsState(t *testing.T) {
	c := newTestCoordinator(NewJobManager())
	sess := newDispatchTestSession(t, "sess-sub")
	if sess.getState() != StateConnected {
		t.Fatalf("expected initial state Connected, got %v", sess.getState())
	}

	resp := c.dispatch(context.Background(), sess, StratumRequest{ID: 1, Method: "mining.subscribe"})
	if resp == nil || resp.Error != nil {
		t.Fatalf("expected a successful subscribe response, got %+v", resp)
	}
	if sess.getState() != StateSubscribed {
		t.Fatalf("expected state Subscribed after mining.subscribe, got %v", sess.getState())
	}
	if len(sess.extranonce1) != extranonce1Size {
		t.Fatalf("expected a %d-byte extranonce1, got %d", extranonce1Size, len(sess.extranonce1))
	}
}

// TestDispatchAuthorizeTransitionsState covers Subscribed -> Authorized and
// the address/workerName split from a "address.worker" login.
func TestDispatchAuthorizeTransitionsState(t *testing.T) {
	c := newTestCoordinator(NewJobManager())
	sess := newDispatchTestSession(t, "sess-authz")
	c.dispatch(context.Background(), sess, StratumRequest{ID: 1, Method: "mining.subscribe"})

	addr := "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2"
	resp := c.dispatch(context.Background(), sess, StratumRequest{ID: 2, Method: "mining.authorize", Params: []any{addr + ".rig1"}})
	if resp == nil || resp.Result != true {
		t.Fatalf("expected authorize to succeed, got %+v", resp)
	}
	if !sess.isAuthorized() {
		t.Fatalf("expected session to be authorized")
	}
	if sess.address != addr {
		t.Fatalf("expected address %q, got %q", addr, sess.address)
	}
	if sess.workerName != "rig1" {
		t.Fatalf("expected workerName rig1, got %q", sess.workerName)
	}
}

func TestDispatchAuthorizeRejectsInvalidAddress(t *testing.T) {
	c := newTestCoordinator(NewJobManager())
	sess := newDispatchTestSession(t, "sess-badaddr")
	resp := c.dispatch(context.Background(), sess, StratumRequest{ID: 1, Method: "mining.authorize", Params: []any{"not-an-address"}})
	if resp == nil || resp.Result != false {
		t.Fatalf("expected authorize to fail for a garbage address, got %+v", resp)
	}
	if sess.isAuthorized() {
		t.Fatalf("session must not become authorized on a bad address")
	}
}

// TestDispatchSubmitRequiresAuthorization covers a mining.submit from a
// not-yet-authorized session: it must be rejected without reaching the
// validator.
func TestDispatchSubmitRequiresAuthorization(t *testing.T) {
	c := newTestCoordinator(NewJobManager())
	sess := newDispatchTestSession(t, "sess-unauthsubmit")
	resp := c.dispatch(context.Background(), sess, StratumRequest{
		ID:     1,
		Method: "mining.submit",
		Params: []any{"worker", "job1", "00000000", "00000000", "00000000"},
	})
	if resp == nil || resp.Result != false {
		t.Fatalf("expected submit to be rejected, got %+v", resp)
	}
}

// TestDispatchSubmitTransitionsToActive covers Authorized -> Active on a
// mining.submit, regardless of its outcome.
func TestDispatchSubmitTransitionsToActive(t *testing.T) {
	jm := NewJobManager()
	job := jm.BuildJob(testTemplate(1, "00"))
	c := newTestCoordinator(jm)
	sess := newDispatchTestSession(t, "sess-active")
	sess.payoutScript = []byte{0x51}
	sess.setDifficulty(0)
	sess.setState(StateAuthorized)

	c.dispatch(context.Background(), sess, StratumRequest{
		ID:     1,
		Method: "mining.submit",
		Params: []any{"worker", job.ID, "00000000", "00000000", "00000000"},
	})
	if sess.getState() != StateActive {
		t.Fatalf("expected state Active after mining.submit, got %v", sess.getState())
	}
}

func TestDispatchUnknownMethod(t *testing.T) {
	c := newTestCoordinator(NewJobManager())
	sess := newDispatchTestSession(t, "sess-unknown")
	resp := c.dispatch(context.Background(), sess, StratumRequest{ID: 1, Method: "mining.bogus"})
	if resp == nil || resp.Error == nil {
		t.Fatalf("expected an error response for an unknown method")
	}
}

func TestDispatchClientGetVersion(t *testing.T) {
	c := newTestCoordinator(NewJobManager())
	sess := newDispatchTestSession(t, "sess-getversion")
	resp := c.dispatch(context.Background(), sess, StratumRequest{ID: 1, Method: "client.get_version"})
	if resp == nil || resp.Error != nil {
		t.Fatalf("expected a successful client.get_version response, got %+v", resp)
	}
}
