package main

import (
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
)

// chainParamsForNetwork maps the `network` config key to btcd chain params.
// Unknown values fall back to mainnet, matching the pack's own convention.
func chainParamsForNetwork(network string) *chaincfg.Params {
	switch strings.ToLower(strings.TrimSpace(network)) {
	case "test", "testnet", "testnet3":
		return &chaincfg.TestNet3Params
	case "regtest", "regression", "regressiontest":
		return &chaincfg.RegressionNetParams
	case "main", "mainnet", "":
		return &chaincfg.MainNetParams
	default:
		return &chaincfg.MainNetParams
	}
}
