package main

import (
	"errors"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
)

func TestScriptForAddressMainnetP2PKH(t *testing.T) {
	script, err := scriptForAddress("1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("expected valid P2PKH address, got error: %v", err)
	}
	if len(script) == 0 {
		t.Fatalf("expected non-empty script")
	}
}

func TestScriptForAddressMainnetBech32(t *testing.T) {
	script, err := scriptForAddress("bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", &chaincfg.MainNetParams)
	if err != nil {
		t.Fatalf("expected valid bech32 address, got error: %v", err)
	}
	if len(script) == 0 {
		t.Fatalf("expected non-empty script")
	}
}

func TestScriptForAddressWrongNetworkRejected(t *testing.T) {
	// a mainnet address presented against testnet params must fail.
	_, err := scriptForAddress("1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", &chaincfg.TestNet3Params)
	if err == nil {
		t.Fatalf("expected error for cross-network address")
	}
	if !errors.Is(err, errInvalidAddress) {
		t.Fatalf("expected errInvalidAddress, got %v", err)
	}
}

func TestScriptForAddressGarbageRejected(t *testing.T) {
	_, err := scriptForAddress("not-a-bitcoin-address", &chaincfg.MainNetParams)
	if !errors.Is(err, errInvalidAddress) {
		t.Fatalf("expected errInvalidAddress, got %v", err)
	}
}

func TestSplitWorkerLogin(t *testing.T) {
	cases := []struct {
		in, address, label string
	}{
		{"bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq.rig1", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", "rig1"},
		{"bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", ""},
	}
	for _, c := range cases {
		address, label := splitWorkerLogin(c.in)
		if address != c.address || label != c.label {
			t.Fatalf("splitWorkerLogin(%q) = (%q, %q), want (%q, %q)", c.in, address, label, c.address, c.label)
		}
	}
}
