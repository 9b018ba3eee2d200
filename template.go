package main

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

// TemplateSource polls getblocktemplate on a safety tick and reacts
// immediately to ZMQ hashblock/rawblock pushes, building a new Job and
// broadcasting it whenever the template's height or previousblockhash
// changes, or curtime has advanced at least a second.
type TemplateSource struct {
	rpc      *RPCClient
	jobs     *JobManager
	registry *SessionRegistry
	metrics  *Metrics

	mu   sync.Mutex
	last *Template
}

func NewTemplateSource(rpc *RPCClient, jobs *JobManager, registry *SessionRegistry, metrics *Metrics) *TemplateSource {
	return &TemplateSource{rpc: rpc, jobs: jobs, registry: registry, metrics: metrics}
}

// Run blocks until ctx is cancelled, refreshing on the periodic tick and
// whenever notify fires (driven by the ZMQ watcher).
func (ts *TemplateSource) Run(ctx context.Context, notify <-chan struct{}) {
	ts.refresh(ctx)

	ticker := time.NewTicker(templateRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ts.refresh(ctx)
		case <-notify:
			ts.refresh(ctx)
		}
	}
}

func (ts *TemplateSource) refresh(ctx context.Context) {
	gbt, err := ts.rpc.GetBlockTemplate(ctx)
	if err != nil {
		logger.Warn("getblocktemplate failed, keeping last-good template", "error", err)
		if ts.metrics != nil {
			ts.metrics.RecordRPCError()
		}
		return
	}

	tmpl, err := templateFromGBT(gbt)
	if err != nil {
		logger.Warn("malformed getblocktemplate result", "error", err)
		return
	}

	ts.mu.Lock()
	prev := ts.last
	changed := prev == nil ||
		prev.Height != tmpl.Height ||
		prev.PreviousBlockHash != tmpl.PreviousBlockHash ||
		tmpl.CurTime-prev.CurTime >= 1
	if prev != nil {
		tmpl.Clean = prev.PreviousBlockHash != tmpl.PreviousBlockHash
	} else {
		tmpl.Clean = true
	}
	if changed {
		ts.last = tmpl
	}
	ts.mu.Unlock()

	if !changed {
		return
	}

	job := ts.jobs.BuildJob(tmpl)
	logger.Info("new job", "job_id", job.ID, "height", tmpl.Height, "clean", tmpl.Clean)
	ts.registry.Broadcast(job)
}

func templateFromGBT(gbt gbtResult) (*Template, error) {
	bitsBytes, err := hex.DecodeString(gbt.Bits)
	if err != nil || len(bitsBytes) != 4 {
		return nil, errors.New("bits must be 4 bytes")
	}
	var bits [4]byte
	copy(bits[:], bitsBytes)

	var commitment []byte
	if gbt.DefaultWitnessCommitment != "" {
		commitment, _ = hex.DecodeString(gbt.DefaultWitnessCommitment)
		// The node returns the full OP_RETURN script (6a24 + 36-byte header);
		// keep only the header, which buildCoinbaseHalves wraps itself.
		if len(commitment) == 38 && commitment[0] == 0x6a && commitment[1] == 0x24 {
			commitment = commitment[2:]
		}
	}

	return &Template{
		Height:            gbt.Height,
		PreviousBlockHash: gbt.PreviousBlockHash,
		CoinbaseValue:     gbt.CoinbaseValue,
		WitnessCommitment: commitment,
		Bits:              bits,
		Target:            targetFromBits(bits),
		MinTime:           gbt.MinTime,
		CurTime:           gbt.CurTime,
		Version:           gbt.Version,
		Transactions:      gbt.Transactions,
	}, nil
}
