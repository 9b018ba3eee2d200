package main

import (
	"math/big"
	"testing"
)

func testTemplate(height int64, prevHash string) *Template {
	return &Template{
		Height:            height,
		PreviousBlockHash: prevHash,
		CoinbaseValue:     50 * 1e8,
		Bits:              [4]byte{0x20, 0x7f, 0xff, 0xff},
		Target:            big.NewInt(1),
		CurTime:           1700000000,
		Version:           1,
		Clean:             true,
	}
}

// TestJobManagerHistoryBounded checks that building 6 consecutive jobs
// evicts the oldest once the 5-job cap is exceeded, and that a lookup
// against the evicted job fails.
func TestJobManagerHistoryBounded(t *testing.T) {
	jm := NewJobManager()
	var ids []string
	for i := 0; i < 6; i++ {
		job := jm.BuildJob(testTemplate(int64(100+i), "00"))
		ids = append(ids, job.ID)
	}

	if _, ok := jm.Lookup(ids[0]); ok {
		t.Fatalf("expected the first job (J1) to have been evicted")
	}
	for _, id := range ids[1:] {
		if _, ok := jm.Lookup(id); !ok {
			t.Fatalf("expected job %s to still be retained", id)
		}
	}

	history := jm.History()
	if len(history) != maxRecentJobs {
		t.Fatalf("expected history length %d, got %d", maxRecentJobs, len(history))
	}
	if history[len(history)-1] != ids[len(ids)-1] {
		t.Fatalf("expected newest job last in history")
	}
}

func TestJobManagerCurrent(t *testing.T) {
	jm := NewJobManager()
	if _, ok := jm.Current(); ok {
		t.Fatalf("expected no current job before any BuildJob call")
	}
	j1 := jm.BuildJob(testTemplate(1, "00"))
	if _, ok := jm.Current(); !ok {
		t.Fatalf("expected a current job after BuildJob")
	}
	j2 := jm.BuildJob(testTemplate(2, "00"))
	cur, _ := jm.Current()
	if cur.ID != j2.ID {
		t.Fatalf("expected current job to be the most recently built one")
	}
	if j1.ID == j2.ID {
		t.Fatalf("expected distinct job ids across BuildJob calls")
	}
}

func TestJobCoinbaseHalvesRebindsPerAddress(t *testing.T) {
	jm := NewJobManager()
	job := jm.BuildJob(testTemplate(1, "00"))

	poolScript := []byte{0x51}
	workerScript := []byte{0x52}

	coinb1a, coinb2a := job.coinbaseHalves(poolScript)
	coinb1b, coinb2b := job.coinbaseHalves(workerScript)

	if coinb1a != coinb1b {
		t.Fatalf("coinb1 should not depend on payout script: %q != %q", coinb1a, coinb1b)
	}
	if coinb2a == coinb2b {
		t.Fatalf("coinb2 must differ when payout scripts differ")
	}
}
