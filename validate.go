package main

import (
	"encoding/hex"
	"time"
)

// ShareOutcome is the result of validating a mining.submit.
type ShareOutcome int

const (
	Accepted ShareOutcome = iota
	AcceptedBlock
	RejectStale
	RejectDuplicate
	RejectLowDifficulty
	RejectInvalidJob
	RejectMalformed
	RejectUnauthorized
	RejectBadTime
)

func (o ShareOutcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case AcceptedBlock:
		return "accepted_block"
	case RejectStale:
		return "stale"
	case RejectDuplicate:
		return "duplicate"
	case RejectLowDifficulty:
		return "low_difficulty"
	case RejectInvalidJob:
		return "invalid_job"
	case RejectMalformed:
		return "malformed"
	case RejectUnauthorized:
		return "unauthorized"
	case RejectBadTime:
		return "bad_time"
	default:
		return "unknown"
	}
}

// ckpool-convention JSON-RPC error codes for the reject outcomes.
func (o ShareOutcome) errorCode() int {
	switch o {
	case RejectLowDifficulty:
		return 23
	case RejectInvalidJob, RejectStale:
		return 21
	case RejectDuplicate:
		return 22
	default:
		return 20
	}
}

func (o ShareOutcome) errorMessage() string {
	switch o {
	case RejectLowDifficulty:
		return "Low difficulty"
	case RejectInvalidJob, RejectStale:
		return "Job not found"
	case RejectDuplicate:
		return "Duplicate share"
	default:
		return "Other/Bad time"
	}
}

// SubmitParams carries the parsed fields of a mining.submit.
type SubmitParams struct {
	JobID       string
	Extranonce2 string // hex
	NTimeHex    string // hex, 4 bytes, big-endian as seen on the wire
	NonceHex    string // hex, 4 bytes, big-endian as seen on the wire
	VersionHex  string // hex, 4 bytes, optional ("" if absent)
}

// SubmissionFingerprint is used for at-most-once share accounting.
type SubmissionFingerprint struct {
	JobID       string
	Extranonce2 string
	NTime       string
	Nonce       string
	Version     string
}

// ShareResult is the outcome of ShareValidator.Validate plus the data needed
// to log/persist/forward it.
type ShareResult struct {
	Outcome   ShareOutcome
	Hash      []byte // flip_80 double-SHA-256 digest, natural byte order
	Header    []byte // flip_80 form of the 80-byte header
	Coinbase  []byte
	Job       *Job
}

// ShareValidator reconstructs headers from submissions and compares them
// against a session's pool target and the network target.
type ShareValidator struct {
	jobs   *JobManager
	submit *BlockSubmitter
}

func NewShareValidator(jobs *JobManager, submitter *BlockSubmitter) *ShareValidator {
	return &ShareValidator{jobs: jobs, submit: submitter}
}

// Validate reconstructs the header a submission implies and checks it against
// the session's pool difficulty and the network target. extranonce1 and
// payoutScript are taken from the session; the session's currently pinned
// difficulty and its negotiated version-rolling mask (0 if none negotiated)
// govern the low-difficulty and version checks below. The fingerprint is
// recorded only once a submission clears every rejection path, so an
// identical resubmission after a malformed or low-difficulty verdict is
// re-evaluated rather than bounced as a duplicate.
func (sv *ShareValidator) Validate(sess *Session, p SubmitParams) ShareResult {
	job, ok := sv.jobs.Lookup(p.JobID)
	if !ok {
		return ShareResult{Outcome: RejectInvalidJob}
	}

	extranonce2, err := hex.DecodeString(p.Extranonce2)
	if err != nil || len(extranonce2) != extranonce2Size {
		return ShareResult{Outcome: RejectMalformed, Job: job}
	}
	ntimeBytes, err := hex.DecodeString(p.NTimeHex)
	if err != nil || len(ntimeBytes) != 4 {
		return ShareResult{Outcome: RejectMalformed, Job: job}
	}
	nonceBytes, err := hex.DecodeString(p.NonceHex)
	if err != nil || len(nonceBytes) != 4 {
		return ShareResult{Outcome: RejectMalformed, Job: job}
	}
	var versionBytes []byte
	if p.VersionHex != "" {
		versionBytes, err = hex.DecodeString(p.VersionHex)
		if err != nil || len(versionBytes) != 4 {
			return ShareResult{Outcome: RejectMalformed, Job: job}
		}
	}

	ntime := beUint32(ntimeBytes)
	now := time.Now().Unix()
	if int64(ntime) < job.Template.MinTime || int64(ntime) > now+7200 {
		return ShareResult{Outcome: RejectBadTime, Job: job}
	}

	effectiveVersion := job.Version
	if versionBytes != nil {
		submitted := beUint32(versionBytes)
		if sess.versionMask != 0 {
			effectiveVersion = (job.Version &^ sess.versionMask) | (submitted & sess.versionMask)
		} else if submitted != job.Version {
			return ShareResult{Outcome: RejectMalformed, Job: job}
		} else {
			effectiveVersion = submitted
		}
	}

	fp := SubmissionFingerprint{JobID: p.JobID, Extranonce2: p.Extranonce2, NTime: p.NTimeHex, Nonce: p.NonceHex, Version: p.VersionHex}
	if sess.seenFingerprint(fp) {
		return ShareResult{Outcome: RejectDuplicate, Job: job}
	}

	coinb1Hex, coinb2Hex := job.coinbaseHalves(sess.payoutScript)
	coinbase, coinbaseTxid, err := assembleCoinbase(coinb1Hex, coinb2Hex, sess.extranonce1, extranonce2)
	if err != nil {
		return ShareResult{Outcome: RejectMalformed, Job: job}
	}

	merkleRoot, err := foldMerkleBranches(coinbaseTxid, job.MerkleBranches)
	if err != nil {
		return ShareResult{Outcome: RejectMalformed, Job: job}
	}
	flip32(merkleRoot)

	prevHashBytes, err := hex.DecodeString(job.Template.PreviousBlockHash)
	if err != nil || len(prevHashBytes) != 32 {
		return ShareResult{Outcome: RejectMalformed, Job: job}
	}
	prevFlipped := flip32Copy(prevHashBytes)

	header := make([]byte, 80)
	putBE32(header[0:4], effectiveVersion)
	copy(header[4:36], prevFlipped)
	copy(header[36:68], merkleRoot)
	copy(header[68:72], ntimeBytes)
	copy(header[72:76], job.Bits[:])
	copy(header[76:80], nonceBytes)

	hash := doubleSHA256(header)
	hashInt := leBytesToInt(hash)

	shareTarget := targetFromDifficulty(sess.difficulty())
	if hashInt.Cmp(shareTarget) > 0 {
		return ShareResult{Outcome: RejectLowDifficulty, Job: job, Header: header, Hash: hash}
	}

	sess.recordFingerprint(fp)

	networkTarget := targetFromBits(job.Bits)
	result := ShareResult{Outcome: Accepted, Job: job, Header: header, Hash: hash, Coinbase: coinbase}
	if hashInt.Cmp(networkTarget) <= 0 {
		result.Outcome = AcceptedBlock
		if sv.submit != nil {
			sv.submit.Submit(job, header, coinbase)
		}
	}
	return result
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func putBE32(dst []byte, v uint32) {
	dst[0] = byte(v >> 24)
	dst[1] = byte(v >> 16)
	dst[2] = byte(v >> 8)
	dst[3] = byte(v)
}
