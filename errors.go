package main

import "errors"

var (
	errInvalidMerkleBranch = errors.New("invalid merkle branch")
	errJobNotFound         = errors.New("job not found")
	errStaleTemplate       = errors.New("template unchanged")
	errBadExtranonce2      = errors.New("bad extranonce2 length")
	errBadTimeField        = errors.New("ntime/nonce must be 4 bytes")
)
