package main

import (
	"encoding/hex"
	"fmt"
)

// buildCoinbaseOutputs writes the coinbase transaction's output vector: the
// single payout output carrying the full block reward first, then the
// optional witness-commitment OP_RETURN output (value 0) as the second.
func buildCoinbaseOutputs(payoutScript []byte, value int64, commitmentScript []byte) []byte {
	count := uint64(1)
	if len(commitmentScript) > 0 {
		count++
	}
	buf := writeVarInt(nil, count)
	buf = writeUint64LE(buf, uint64(value))
	buf = writeVarInt(buf, uint64(len(payoutScript)))
	buf = append(buf, payoutScript...)
	if len(commitmentScript) > 0 {
		buf = writeUint64LE(buf, 0)
		buf = writeVarInt(buf, uint64(len(commitmentScript)))
		buf = append(buf, commitmentScript...)
	}
	return buf
}

// buildCoinbaseHalves builds the coinb1/coinb2 hex halves of a coinbase
// transaction parameterized by a payout scriptPubKey: coinb1 runs through
// the scriptSig-length prefix, the height and timestamp pushes, and the
// push-length byte of the extranonce placeholder; coinb2
// runs from immediately after the (extranonce1‖extranonce2) placeholder
// through the end of the transaction.
// The miner (or, server-side, the ShareValidator) assembles the full
// coinbase as coinb1 ‖ extranonce1 ‖ extranonce2 ‖ coinb2.
func buildCoinbaseHalves(height int64, scriptTime int64, coinbaseTag string, extranonce1Size, extranonce2Size int, payoutScript []byte, coinbaseValue int64, witnessCommitment []byte) (coinb1Hex, coinb2Hex string) {
	heightPush := serializeNumberScript(height)
	timePush := serializeNumberScript(scriptTime)
	placeholderLen := extranonce1Size + extranonce2Size

	scriptSigPart1 := make([]byte, 0, len(heightPush)+len(timePush)+2)
	scriptSigPart1 = append(scriptSigPart1, heightPush...)
	scriptSigPart1 = append(scriptSigPart1, timePush...)
	scriptSigPart1 = append(scriptSigPart1, byte(placeholderLen))

	scriptSigPart2 := serializeStringScript([]byte(coinbaseTag))

	scriptSigLen := len(scriptSigPart1) + placeholderLen + len(scriptSigPart2)

	var coinb1 []byte
	coinb1 = writeUint32LE(coinb1, 1) // version
	coinb1 = writeVarInt(coinb1, 1)   // in_count
	coinb1 = append(coinb1, make([]byte, 32)...)
	coinb1 = writeUint32LE(coinb1, 0xffffffff)
	coinb1 = writeVarInt(coinb1, uint64(scriptSigLen))
	coinb1 = append(coinb1, scriptSigPart1...)

	var commitmentScript []byte
	if len(witnessCommitment) > 0 {
		commitmentScript = append([]byte{0x6a, byte(len(witnessCommitment))}, witnessCommitment...)
	}

	var coinb2 []byte
	coinb2 = append(coinb2, scriptSigPart2...)
	coinb2 = writeUint32LE(coinb2, 0) // sequence
	coinb2 = append(coinb2, buildCoinbaseOutputs(payoutScript, coinbaseValue, commitmentScript)...)
	coinb2 = writeUint32LE(coinb2, 0) // locktime

	return hex.EncodeToString(coinb1), hex.EncodeToString(coinb2)
}

// assembleCoinbase reconstructs the full coinbase transaction bytes and its
// double-SHA-256 txid from a coinb1/coinb2 pair plus the per-session
// extranonce1 and the submission's extranonce2.
func assembleCoinbase(coinb1Hex, coinb2Hex string, extranonce1, extranonce2 []byte) (tx []byte, txid []byte, err error) {
	coinb1, err := hex.DecodeString(coinb1Hex)
	if err != nil {
		return nil, nil, fmt.Errorf("decode coinb1: %w", err)
	}
	coinb2, err := hex.DecodeString(coinb2Hex)
	if err != nil {
		return nil, nil, fmt.Errorf("decode coinb2: %w", err)
	}
	tx = make([]byte, 0, len(coinb1)+len(extranonce1)+len(extranonce2)+len(coinb2))
	tx = append(tx, coinb1...)
	tx = append(tx, extranonce1...)
	tx = append(tx, extranonce2...)
	tx = append(tx, coinb2...)
	h := doubleSHA256(tx)
	return tx, h, nil
}
