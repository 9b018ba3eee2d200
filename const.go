package main

import "time"

const (
	// maxStratumMessageSize bounds a single line-framed JSON Stratum message.
	maxStratumMessageSize = 64 * 1024

	// stratumWriteTimeout bounds a single write to a miner connection.
	stratumWriteTimeout = 60 * time.Second

	// defaultVersionMask is the BIP320 version-rolling mask advertised by
	// default when a miner negotiates mining.configure.
	defaultVersionMask = uint32(0x1fffe000)

	// extranonce1Size is fixed per session; extranonce2Size is fixed per job.
	extranonce1Size = 4
	extranonce2Size = 4

	// maxRecentJobs bounds the per-registry job history. A share against a
	// job older than this is RejectInvalidJob.
	maxRecentJobs = 5

	// templateRefreshInterval is the periodic safety-tick poll of
	// getblocktemplate, independent of ZMQ pushes.
	templateRefreshInterval = 10 * time.Second

	// sessionOutboundQueueSize bounds the per-session outbound message queue.
	// Overflow closes the session as a slow consumer.
	sessionOutboundQueueSize = 256

	// shutdownDrainTimeout bounds how long the server waits for live sessions
	// to drain their write buffers during graceful shutdown.
	shutdownDrainTimeout = 2 * time.Second

	// zmqReconnectMaxBackoff caps the ZMQ reconnect backoff.
	zmqReconnectMaxBackoff = 30 * time.Second

	// rpcRetryBaseDelay/rpcRetryMaxDelay bound the exponential backoff
	// RPCClient.call applies to retryable node errors (timeouts, connection
	// resets, HTTP 5xx) before giving up.
	rpcRetryBaseDelay = 200 * time.Millisecond
	rpcRetryMaxDelay  = 10 * time.Second

	// maxProtocolViolations and protocolViolationWindow are the limits
	// Session.recordProtocolViolation checks against. The dispatch path does
	// not call it, so repeated semantic errors do not close a session.
	maxProtocolViolations   = 5
	protocolViolationWindow = 60 * time.Second

	defaultCoinbaseTag = "solopool"
)
