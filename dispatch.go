package main

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

// Coordinator wires together the components a Session's dispatch loop
// needs: the job history, the address codec's network params, the share
// validator, the registry (for broadcast-triggering side effects), the
// store and metrics.
type Coordinator struct {
	jobs      *JobManager
	registry  *SessionRegistry
	validator *ShareValidator
	store     *Store
	metrics   *Metrics
	params    *chaincfg.Params

	defaultDifficulty         float64
	acceptSuggestedDifficulty bool
	serverVersionMask         uint32
}

// dispatch handles one decoded Stratum request and returns the response to
// write back (nil if no response is due, e.g. a notification-only method or
// one that already wrote its own response/notifications directly).
func (c *Coordinator) dispatch(ctx context.Context, sess *Session, req StratumRequest) *StratumResponse {
	sess.touch()
	switch req.Method {
	case "mining.subscribe":
		return c.handleSubscribe(sess, req)
	case "mining.configure":
		return c.handleConfigure(sess, req)
	case "mining.authorize":
		return c.handleAuthorize(sess, req)
	case "mining.suggest_difficulty":
		c.handleSuggestDifficulty(sess, req)
		return nil
	case "mining.submit":
		return c.handleSubmit(sess, req)
	case "client.get_version":
		return &StratumResponse{ID: req.ID, Result: "solopool/1.0", Error: nil}
	case "client.reconnect":
		return &StratumResponse{ID: req.ID, Result: true, Error: nil}
	default:
		return &StratumResponse{ID: req.ID, Result: nil, Error: stratumError(-3, "unknown method")}
	}
}

func (c *Coordinator) handleSubscribe(sess *Session, req StratumRequest) *StratumResponse {
	sess.extranonce1 = nextExtranonce1()
	sess.extranonce1Hex = hexExtranonce1(sess.extranonce1)
	sess.setState(StateSubscribed)
	subID := sess.id
	result := []any{
		[]any{[]any{"mining.notify", subID}},
		sess.extranonce1Hex,
		extranonce2Size,
	}
	return &StratumResponse{ID: req.ID, Result: result, Error: nil}
}

func (c *Coordinator) handleConfigure(sess *Session, req StratumRequest) *StratumResponse {
	result := map[string]any{}
	if len(req.Params) >= 2 {
		features, _ := req.Params[0].([]any)
		extra, _ := req.Params[1].(map[string]any)
		wantsRolling := false
		for _, f := range features {
			if s, ok := f.(string); ok && s == "version-rolling" {
				wantsRolling = true
			}
		}
		if wantsRolling {
			clientMaskHex, _ := extra["version-rolling.mask"].(string)
			clientMask := c.serverVersionMask
			if clientMaskHex != "" {
				if b, err := hex.DecodeString(clientMaskHex); err == nil && len(b) == 4 {
					clientMask = beUint32(b) & c.serverVersionMask
				}
			}
			sess.versionMask = clientMask
			result["version-rolling"] = true
			result["version-rolling.mask"] = fmt.Sprintf("%08x", clientMask)
		} else {
			result["version-rolling"] = false
		}
	}
	sess.setConfigured()
	return &StratumResponse{ID: req.ID, Result: result, Error: nil}
}

func (c *Coordinator) handleAuthorize(sess *Session, req StratumRequest) *StratumResponse {
	if len(req.Params) < 1 {
		return &StratumResponse{ID: req.ID, Result: false, Error: stratumError(20, "missing username")}
	}
	username, _ := req.Params[0].(string)
	address, label := splitWorkerLogin(username)

	script, err := scriptForAddress(address, c.params)
	if err != nil {
		return &StratumResponse{ID: req.ID, Result: false, Error: nil}
	}

	sess.payoutScript = script
	sess.address = address
	sess.workerName = label
	if sess.workerName == "" {
		sess.workerName = address
	}
	sess.setDifficulty(c.defaultDifficulty)
	sess.setState(StateAuthorized)

	resp := &StratumResponse{ID: req.ID, Result: true, Error: nil}

	if job, ok := c.jobs.Current(); ok {
		notifySession(sess, job)
	}
	return resp
}

func (c *Coordinator) handleSuggestDifficulty(sess *Session, req StratumRequest) {
	if !sess.isAuthorized() {
		return
	}
	if len(req.Params) < 1 {
		return
	}
	diff, ok := toFloat(req.Params[0])
	if !ok || diff <= 0 {
		return
	}
	if c.acceptSuggestedDifficulty {
		sess.setDifficulty(diff)
	}
}

func (c *Coordinator) handleSubmit(sess *Session, req StratumRequest) *StratumResponse {
	if !sess.isAuthorized() {
		return &StratumResponse{ID: req.ID, Result: false, Error: stratumError(24, "unauthorized worker")}
	}
	if len(req.Params) < 5 {
		return &StratumResponse{ID: req.ID, Result: false, Error: stratumError(20, "Other/Bad time")}
	}
	jobID, _ := req.Params[1].(string)
	extranonce2, _ := req.Params[2].(string)
	ntimeHex, _ := req.Params[3].(string)
	nonceHex, _ := req.Params[4].(string)
	versionHex := ""
	if len(req.Params) >= 6 {
		versionHex, _ = req.Params[5].(string)
	}

	sess.setState(StateActive)
	result := c.validator.Validate(sess, SubmitParams{
		JobID:       jobID,
		Extranonce2: extranonce2,
		NTimeHex:    ntimeHex,
		NonceHex:    nonceHex,
		VersionHex:  versionHex,
	})

	if c.store != nil && (result.Outcome == Accepted || result.Outcome == AcceptedBlock) {
		c.store.RecordShare(sess.workerName, addressOf(sess), sess.difficulty(), result.Outcome == AcceptedBlock)
	}
	if c.metrics != nil {
		c.metrics.RecordShare(result.Outcome)
	}

	switch result.Outcome {
	case Accepted, AcceptedBlock:
		return &StratumResponse{ID: req.ID, Result: true, Error: nil}
	default:
		return &StratumResponse{ID: req.ID, Result: false, Error: stratumError(result.Outcome.errorCode(), result.Outcome.errorMessage())}
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func addressOf(sess *Session) string {
	return sess.address
}
