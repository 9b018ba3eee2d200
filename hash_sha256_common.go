package main

// sha256SumFunc computes a single SHA-256 digest. The concrete implementation
// is selected at init time by a build-tag-gated file so the hot path can use
// a SIMD-accelerated routine without the rest of the package caring.
type sha256SumFunc func([]byte) [32]byte

var sha256Sum sha256SumFunc
