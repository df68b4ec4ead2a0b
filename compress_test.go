package huffblock

import (
	"bytes"
	"math/rand"
	"testing"
)

// roundTrip compresses src once and decodes the result, asserting it
// matches src exactly. It returns CompressBlock's output, or nil when
// CompressBlock chose to store the block uncompressed.
func roundTrip(t *testing.T, src []byte, persisted *PersistedTable, preferRepeat bool, single bool) []byte {
	t.Helper()

	ws := NewWorkspace()
	out, headerPresent, err := CompressBlock(ws, src, persisted, preferRepeat, 0, 0, single, nil)
	if err != nil {
		t.Fatalf("CompressBlock: %v", err)
	}

	switch len(out) {
	case 0:
		return nil
	case 1:
		decoded := bytes.Repeat(out, len(src))
		if !bytes.Equal(decoded, src) {
			t.Fatalf("RLE round trip mismatch: got %v, want %v", decoded, src)
		}
		return out
	default:
		var tbl *CTable
		mb := 0
		if !headerPresent {
			tbl = &persisted.Table
			mb = persisted.MaxBits
		}
		decoded, _, _, err := DecompressBlock(out, len(src), 0, single, headerPresent, tbl, mb)
		if err != nil {
			t.Fatalf("DecompressBlock: %v", err)
		}
		if !bytes.Equal(decoded, src) {
			t.Fatalf("round trip mismatch:\ngot  %v\nwant %v", decoded, src)
		}
		return out
	}
}

func TestCompressBlockEmptyInput(t *testing.T) {
	ws := NewWorkspace()
	out, _, err := CompressBlock(ws, nil, nil, false, 0, 0, true, nil)
	if err != nil {
		t.Fatalf("CompressBlock: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("empty input: got %d bytes, want the 0-length store sentinel", len(out))
	}
}

func TestCompressBlockRLE(t *testing.T) {
	src := []byte("AAAA")
	out := roundTrip(t, src, nil, false, true)
	if len(out) != 1 {
		t.Fatalf("RLE input: got %d bytes, want the 1-length sentinel", len(out))
	}
	if out[0] != 'A' {
		t.Fatalf("RLE byte = %q, want 'A'", out[0])
	}
}

func TestCompressBlockTooFlatToCompress(t *testing.T) {
	src := []byte("ABABABAB")
	out := roundTrip(t, src, nil, false, true)
	if len(out) != 0 {
		t.Fatalf("flat alternating input: got %d bytes, want the 0-length store sentinel", len(out))
	}
}

func TestCompressBlockBalancedTwoSymbols(t *testing.T) {
	src := make([]byte, 1024)
	for i := 0; i < 512; i++ {
		src[i] = 'A'
	}
	for i := 512; i < 1024; i++ {
		src[i] = 'B'
	}
	rand.New(rand.NewSource(4)).Shuffle(len(src), func(i, j int) { src[i], src[j] = src[j], src[i] })

	out := roundTrip(t, src, nil, false, true)
	if len(out) == 0 {
		t.Fatal("expected a compressed result for a balanced two-symbol block")
	}
	if len(out) >= len(src) {
		t.Fatalf("compressed size %d did not shrink %d-byte input", len(out), len(src))
	}
}

func TestCompressBlockZipfian64KiB(t *testing.T) {
	const n = 64 << 10
	rng := rand.New(rand.NewSource(5))

	src := make([]byte, n)
	for i := range src {
		// A crude Zipfian-ish sampler: repeatedly halve the remaining
		// range so low symbol values dominate.
		v := 0
		for rng.Intn(2) == 0 && v < 250 {
			v++
		}
		src[i] = byte(v)
	}

	ws := NewWorkspace()
	out, headerPresent, err := CompressBlock(ws, src, nil, false, 0, 0, false, nil)
	if err != nil {
		t.Fatalf("CompressBlock: %v", err)
	}
	if len(out) <= 1 {
		t.Fatalf("expected a real compressed payload for a skewed 64KiB block, got length %d", len(out))
	}

	decoded, usedTable, usedMaxBits, err := DecompressBlock(out, n, 0, false, headerPresent, nil, 0)
	if err != nil {
		t.Fatalf("DecompressBlock: %v", err)
	}
	if !bytes.Equal(decoded, src) {
		t.Fatal("round trip mismatch on Zipfian block")
	}
	if usedMaxBits > DefaultCodeLength {
		t.Fatalf("maxBits = %d, want <= %d", usedMaxBits, DefaultCodeLength)
	}
	if usedTable.MaxLen() > DefaultCodeLength {
		t.Fatalf("table MaxLen = %d, want <= %d", usedTable.MaxLen(), DefaultCodeLength)
	}
}

func TestCompressBlockOneOfEach(t *testing.T) {
	src := make([]byte, 256)
	for i := range src {
		src[i] = byte(i)
	}

	ws := NewWorkspace()
	out, headerPresent, err := CompressBlock(ws, src, nil, false, 0, 0, true, nil)
	if err != nil {
		t.Fatalf("CompressBlock: %v", err)
	}

	if len(out) == 0 {
		return
	}

	var tbl *CTable
	if !headerPresent {
		t.Fatal("a one-shot call can never have a persisted table to reuse")
	}
	decoded, _, _, err := DecompressBlock(out, len(src), 0, true, headerPresent, tbl, 0)
	if err != nil {
		t.Fatalf("DecompressBlock: %v", err)
	}
	if !bytes.Equal(decoded, src) {
		t.Fatal("round trip mismatch on one-of-each block")
	}
}

func TestCompressBlockRejectsOversizedSource(t *testing.T) {
	ws := NewWorkspace()
	src := make([]byte, MaxBlockSize+1)
	if _, _, err := CompressBlock(ws, src, nil, false, 0, 0, true, nil); err == nil {
		t.Fatal("expected an error for a source exceeding MaxBlockSize")
	}
}

// TestCompressBlockRepeatReuse exercises the persisted-table path across
// several blocks sharing the same skewed distribution: the second block
// on should be able to reuse the first's table rather than rebuilding
// and retransmitting a header.
func TestCompressBlockRepeatReuse(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	makeBlock := func() []byte {
		src := make([]byte, 4096)
		for i := range src {
			v := 0
			for rng.Intn(3) != 0 && v < 20 {
				v++
			}
			src[i] = byte(v)
		}
		return src
	}

	persisted := &PersistedTable{}
	ws := NewWorkspace()

	first := makeBlock()
	out1, headerPresent1, err := CompressBlock(ws, first, persisted, true, 0, 0, false, nil)
	if err != nil {
		t.Fatalf("block 1: CompressBlock: %v", err)
	}
	if len(out1) <= 1 {
		t.Fatalf("block 1: expected a real compressed payload, got length %d", len(out1))
	}
	if !headerPresent1 {
		t.Fatal("block 1: the first block must carry a table header")
	}
	if persisted.State == RepeatNone {
		t.Fatal("block 1: expected a usable table to be persisted after a fresh build")
	}

	decoded1, _, _, err := DecompressBlock(out1, len(first), 0, false, headerPresent1, nil, 0)
	if err != nil {
		t.Fatalf("block 1: DecompressBlock: %v", err)
	}
	if !bytes.Equal(decoded1, first) {
		t.Fatal("block 1: round trip mismatch")
	}

	second := makeBlock()
	out2, headerPresent2, err := CompressBlock(ws, second, persisted, true, 0, 0, false, nil)
	if err != nil {
		t.Fatalf("block 2: CompressBlock: %v", err)
	}
	if len(out2) <= 1 && len(out2) != 0 {
		t.Fatalf("block 2: unexpected length %d", len(out2))
	}

	if !headerPresent2 {
		decoded2, _, _, err := DecompressBlock(out2, len(second), 0, false, false, &persisted.Table, persisted.MaxBits)
		if err != nil {
			t.Fatalf("block 2: DecompressBlock (reused table): %v", err)
		}
		if !bytes.Equal(decoded2, second) {
			t.Fatal("block 2: round trip mismatch with reused table")
		}
	}
}
