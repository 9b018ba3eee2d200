package main

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"sync"
	"time"
)

// GBTTransaction is one entry of getblocktemplate's "transactions" array.
type GBTTransaction struct {
	Data string
	Txid string
}

// Template is an immutable snapshot of the node's next-block description.
type Template struct {
	Height            int64
	PreviousBlockHash string // hex, natural byte order
	CoinbaseValue     int64
	WitnessCommitment []byte // optional, decoded
	Bits              [4]byte
	Target            *big.Int
	MinTime           int64
	CurTime           int64
	Version           uint32
	Transactions      []GBTTransaction
	Clean             bool // true when PreviousBlockHash changed from the prior Template
}

// Job is an immutable unit of work derived from a Template and broadcast to
// miners as mining.notify. coinb1/coinb2 are not baked with a payout
// address: coinbaseHalves(script) lets each session (and the
// ShareValidator, at submission time) rebind the job to its own authorized
// address.
type Job struct {
	ID                string
	Template          *Template
	MerkleBranches    []string // hex, natural byte order
	Version           uint32
	Bits              [4]byte
	NTime             uint32
	CleanJobs         bool
	PrevHashFlippedHex string // flip_32(prevhash), as sent on the wire
	CreatedAt         time.Time

	height            int64
	scriptTime        int64
	coinbaseValue     int64
	witnessCommitment []byte
}

// coinbaseHalves derives the coinb1/coinb2 hex pair for this job bound to a
// specific payout scriptPubKey.
func (j *Job) coinbaseHalves(payoutScript []byte) (coinb1Hex, coinb2Hex string) {
	return buildCoinbaseHalves(j.height, j.scriptTime, jobBuilderCoinbaseTag, extranonce1Size, extranonce2Size, payoutScript, j.coinbaseValue, j.witnessCommitment)
}

// jobBuilderCoinbaseTag is set once at startup from configuration.
var jobBuilderCoinbaseTag = defaultCoinbaseTag

// JobManager owns the bounded job history and builds new Jobs from
// Templates. It is the sole writer of that history; readers look up a Job
// by id under a short read lock and then use the returned *Job without
// holding any lock.
type JobManager struct {
	mu       sync.RWMutex
	jobs     map[string]*Job
	order    []string // oldest first, capped at maxRecentJobs
	nextID   uint64
	current  *Job
}

func NewJobManager() *JobManager {
	return &JobManager{jobs: make(map[string]*Job)}
}

// BuildJob converts a Template into a new Job, evicting the oldest job if
// the history is already at capacity.
func (jm *JobManager) BuildJob(tmpl *Template) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	jm.nextID++
	id := strconv.FormatUint(jm.nextID, 16)

	txids := make([][]byte, 0, len(tmpl.Transactions))
	for _, tx := range tmpl.Transactions {
		b, err := hex.DecodeString(tx.Txid)
		if err != nil {
			continue
		}
		txids = append(txids, b)
	}

	prevHashBytes, err := hex.DecodeString(tmpl.PreviousBlockHash)
	var prevFlippedHex string
	if err == nil && len(prevHashBytes) == 32 {
		prevFlippedHex = hex.EncodeToString(flip32Copy(prevHashBytes))
	}

	job := &Job{
		ID:                 id,
		Template:           tmpl,
		MerkleBranches:     buildMerkleBranches(txids),
		Version:            tmpl.Version,
		Bits:               tmpl.Bits,
		NTime:              uint32(tmpl.CurTime),
		CleanJobs:          tmpl.Clean,
		PrevHashFlippedHex: prevFlippedHex,
		CreatedAt:          time.Now(),
		height:             tmpl.Height,
		scriptTime:         tmpl.CurTime,
		coinbaseValue:      tmpl.CoinbaseValue,
		witnessCommitment:  tmpl.WitnessCommitment,
	}

	jm.jobs[id] = job
	jm.order = append(jm.order, id)
	if len(jm.order) > maxRecentJobs {
		evictID := jm.order[0]
		jm.order = jm.order[1:]
		delete(jm.jobs, evictID)
	}
	jm.current = job
	return job
}

// Lookup returns the job with the given id, if it is still within the
// bounded history.
func (jm *JobManager) Lookup(id string) (*Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()
	j, ok := jm.jobs[id]
	return j, ok
}

// Current returns the most recently built job, if any.
func (jm *JobManager) Current() (*Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()
	return jm.current, jm.current != nil
}

// History returns a snapshot of retained job ids, oldest first.
func (jm *JobManager) History() []string {
	jm.mu.RLock()
	defer jm.mu.RUnlock()
	out := make([]string, len(jm.order))
	copy(out, jm.order)
	return out
}

