package main

import (
	"context"
	"encoding/hex"
	"time"
)

// BlockSubmitter assembles the full block from a validated header and
// submits it via submitblock. It never blocks the ShareValidator caller on
// the node round-trip outcome beyond logging it.
type BlockSubmitter struct {
	rpc      *RPCClient
	store    *Store
	notifier *Notifier
	metrics  *Metrics
}

func NewBlockSubmitter(rpc *RPCClient, store *Store, notifier *Notifier, metrics *Metrics) *BlockSubmitter {
	return &BlockSubmitter{rpc: rpc, store: store, notifier: notifier, metrics: metrics}
}

// Submit serializes header ‖ varint(1+ntx) ‖ coinbase ‖ tx1 ‖ … ‖ txN and
// calls submitblock asynchronously so the miner's response is never delayed
// by the node round-trip.
func (b *BlockSubmitter) Submit(job *Job, header []byte, coinbase []byte) {
	go b.submitSync(job, header, coinbase)
}

func (b *BlockSubmitter) submitSync(job *Job, header []byte, coinbase []byte) {
	blockBytes := append([]byte{}, header...)
	blockBytes = writeVarInt(blockBytes, uint64(1+len(job.Template.Transactions)))
	blockBytes = append(blockBytes, coinbase...)
	for _, tx := range job.Template.Transactions {
		raw, err := hex.DecodeString(tx.Data)
		if err != nil {
			continue
		}
		blockBytes = append(blockBytes, raw...)
	}

	blockHex := hex.EncodeToString(blockBytes)

	if b.metrics != nil {
		b.metrics.RecordBlockFound()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reason, err := b.rpc.SubmitBlock(ctx, blockHex)
	if err != nil {
		logger.Error("submitblock rpc error", "height", job.Template.Height, "header", hex.EncodeToString(header), "error", err)
		return
	}
	if reason != "" {
		logger.Warn("submitblock rejected by node", "height", job.Template.Height, "header", hex.EncodeToString(header), "reason", reason)
		return
	}

	logger.Info("block accepted by node", "height", job.Template.Height)
	if b.store != nil {
		b.store.RecordBlock(job.Template.Height, blockHashHex(header), job.Template.CoinbaseValue)
	}
	if b.notifier != nil {
		b.notifier.NotifyBlockFound(job.Template.Height, blockHashHex(header))
	}
}

func blockHashHex(flippedHeader []byte) string {
	hash := doubleSHA256(flippedHeader)
	// present the hash the way block explorers do: reversed to big-endian.
	rev := make([]byte, len(hash))
	for i, v := range hash {
		rev[len(hash)-1-i] = v
	}
	return hex.EncodeToString(rev)
}
