package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// errInvalidAddress is returned by scriptForAddress whenever the address
// cannot be decoded or does not belong to the configured network; callers
// turn it into RejectUnauthorized.
var errInvalidAddress = errors.New("invalid payout address")

// scriptForAddress validates addr against params and derives its
// scriptPubKey. It accepts bech32/bech32m segwit addresses (P2WPKH, P2WSH,
// P2TR) and base58 P2PKH/P2SH addresses, letting btcd do the heavy lifting
// rather than hand-parsing bech32/base58 payloads.
func scriptForAddress(addr string, params *chaincfg.Params) ([]byte, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" || params == nil {
		return nil, fmt.Errorf("%w: empty address", errInvalidAddress)
	}

	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidAddress, err)
	}
	if !decoded.IsForNet(params) {
		return nil, fmt.Errorf("%w: %s is not valid for %s", errInvalidAddress, addr, params.Name)
	}

	switch decoded.(type) {
	case *btcutil.AddressPubKeyHash,
		*btcutil.AddressScriptHash,
		*btcutil.AddressWitnessPubKeyHash,
		*btcutil.AddressWitnessScriptHash,
		*btcutil.AddressTaproot:
		// supported destination kinds
	default:
		return nil, fmt.Errorf("%w: unsupported address kind", errInvalidAddress)
	}

	script, err := txscript.PayToAddrScript(decoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidAddress, err)
	}
	return script, nil
}

// splitWorkerLogin splits a Stratum mining.authorize username of the form
// "<address>.<workername>" into its payout address and display label, per
// ckpool-solo convention. The label is optional and purely cosmetic.
func splitWorkerLogin(username string) (address, label string) {
	if i := strings.IndexByte(username, '.'); i >= 0 {
		return username[:i], username[i+1:]
	}
	return username, ""
}
