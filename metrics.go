package main

import (
	"context"
	"sync"
	"time"

	"github.com/hako/durafmt"
)

const metricsSummaryInterval = 60 * time.Second

// Metrics is an in-process counter set covering share outcomes, RPC
// errors, ZMQ reconnects, and blocks found. No third-party metrics library
// is wired here because nothing in the corpus exposes one beyond durafmt's
// duration formatting, used for the periodic summary line.
type Metrics struct {
	mu    sync.Mutex
	start time.Time

	accepted      uint64
	acceptedBlock uint64
	rejected      map[ShareOutcome]uint64

	rpcErrors     uint64
	zmqReconnects uint64
	blocksFound   uint64
}

func NewMetrics() *Metrics {
	return &Metrics{
		start:    time.Now(),
		rejected: make(map[ShareOutcome]uint64),
	}
}

func (m *Metrics) RecordShare(outcome ShareOutcome) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch outcome {
	case Accepted:
		m.accepted++
	case AcceptedBlock:
		m.accepted++
		m.acceptedBlock++
	default:
		m.rejected[outcome]++
	}
}

func (m *Metrics) RecordRPCError() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.rpcErrors++
	m.mu.Unlock()
}

func (m *Metrics) RecordZMQReconnect() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.zmqReconnects++
	m.mu.Unlock()
}

func (m *Metrics) RecordBlockFound() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.blocksFound++
	m.mu.Unlock()
}

func (m *Metrics) snapshot() (accepted, acceptedBlock, rpcErrors, zmqReconnects, blocksFound uint64, rejected map[ShareOutcome]uint64, uptime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rejected = make(map[ShareOutcome]uint64, len(m.rejected))
	for k, v := range m.rejected {
		rejected[k] = v
	}
	return m.accepted, m.acceptedBlock, m.rpcErrors, m.zmqReconnects, m.blocksFound, rejected, time.Since(m.start)
}

// Run logs a periodic one-line summary until ctx is cancelled.
func (m *Metrics) Run(ctx context.Context) {
	ticker := time.NewTicker(metricsSummaryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.logSummary()
		}
	}
}

func (m *Metrics) logSummary() {
	accepted, acceptedBlock, rpcErrors, zmqReconnects, blocksFound, rejected, uptime := m.snapshot()
	var totalRejected uint64
	for _, v := range rejected {
		totalRejected += v
	}
	logger.Info("metrics summary",
		"uptime", durafmt.Parse(uptime).LimitFirstN(2).String(),
		"accepted", accepted,
		"accepted_block", acceptedBlock,
		"rejected", totalRejected,
		"rpc_errors", rpcErrors,
		"zmq_reconnects", zmqReconnects,
		"blocks_found", blocksFound,
	)
}
