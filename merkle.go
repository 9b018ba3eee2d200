package main

import "encoding/hex"

// buildMerkleBranches computes, for an ordered list of non-coinbase txids
// (natural byte order, as returned by the node), the list of sibling hashes
// a coinbase txid would combine with when folded up the block's merkle
// tree. Odd levels duplicate their last element, per Bitcoin convention.
func buildMerkleBranches(txids [][]byte) []string {
	if len(txids) == 0 {
		return []string{}
	}
	layer := make([][]byte, 1+len(txids))
	layer[0] = nil // placeholder for the not-yet-known coinbase txid
	copy(layer[1:], txids)

	steps := make([]string, 0, 16)
	n := len(layer)
	for n > 1 {
		steps = append(steps, hex.EncodeToString(layer[1]))
		if n%2 == 1 {
			layer = append(layer, layer[n-1])
			n++
		}
		next := make([][]byte, 0, n/2)
		for i := 2; i+1 < n; i += 2 {
			joined := append(append([]byte{}, layer[i]...), layer[i+1]...)
			next = append(next, doubleSHA256(joined))
		}
		layer = append([][]byte{nil}, next...)
		n = len(layer)
	}
	return steps
}

// foldMerkleBranches combines a coinbase hash (natural byte order) with the
// ordered branch list to recover the merkle root, natural byte order.
func foldMerkleBranches(coinbaseHash []byte, branches []string) ([]byte, error) {
	root := append([]byte(nil), coinbaseHash...)
	var sibling [32]byte
	var concat [64]byte
	for _, b := range branches {
		n, err := hex.Decode(sibling[:], []byte(b))
		if err != nil || n != 32 {
			return nil, errInvalidMerkleBranch
		}
		copy(concat[:32], root)
		copy(concat[32:], sibling[:])
		root = doubleSHA256(concat[:])
	}
	return root, nil
}
