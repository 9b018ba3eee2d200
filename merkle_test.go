package main

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func randomHash(seed byte) []byte {
	h := make([]byte, 32)
	for i := range h {
		h[i] = seed + byte(i)
	}
	return h
}

// TestMerkleConsistency checks that folding a coinbase hash through the
// branches buildMerkleBranches produced for a transaction set is
// deterministic (same coinbase, same root) and that a different coinbase
// hash folds to a different root.
func TestMerkleConsistency(t *testing.T) {
	tx1, tx2, tx3 := randomHash(1), randomHash(2), randomHash(3)
	branches := buildMerkleBranches([][]byte{tx1, tx2, tx3})
	if len(branches) == 0 {
		t.Fatalf("expected non-empty branch list")
	}

	coinbase := randomHash(0x42)
	root1, err := foldMerkleBranches(coinbase, branches)
	if err != nil {
		t.Fatalf("fold failed: %v", err)
	}
	root2, err := foldMerkleBranches(coinbase, branches)
	if err != nil {
		t.Fatalf("fold failed: %v", err)
	}
	if !bytes.Equal(root1, root2) {
		t.Fatalf("folding the same inputs twice produced different roots")
	}

	otherCoinbase := randomHash(0x99)
	root3, err := foldMerkleBranches(otherCoinbase, branches)
	if err != nil {
		t.Fatalf("fold failed: %v", err)
	}
	if bytes.Equal(root1, root3) {
		t.Fatalf("different coinbase hashes must not fold to the same root")
	}
}

func TestBuildMerkleBranchesSingleTx(t *testing.T) {
	tx := randomHash(7)
	branches := buildMerkleBranches([][]byte{tx})
	if len(branches) != 1 {
		t.Fatalf("expected exactly one branch entry for a single non-coinbase tx, got %d", len(branches))
	}
	if branches[0] != hex.EncodeToString(tx) {
		t.Fatalf("single-tx branch should equal that tx's own hash")
	}
}

func TestBuildMerkleBranchesEmpty(t *testing.T) {
	branches := buildMerkleBranches(nil)
	if len(branches) != 0 {
		t.Fatalf("expected no branches for an empty tx set")
	}
}

func TestFoldMerkleBranchesBadHex(t *testing.T) {
	_, err := foldMerkleBranches(randomHash(1), []string{"not-hex"})
	if err != errInvalidMerkleBranch {
		t.Fatalf("expected errInvalidMerkleBranch, got %v", err)
	}
}
