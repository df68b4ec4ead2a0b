package huffblock

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestBitWriterReaderRoundTrip(t *testing.T) {
	w := newBitWriter(nil)
	bits := []struct {
		v uint64
		l int
	}{
		{0x1, 1},
		{0x5, 3},
		{0x0, 2},
		{0x3FF, 10},
		{0x1, 1},
		{0x123456789, 33},
	}

	for _, b := range bits {
		w.WriteBits(b.v, b.l)
	}
	out := w.Close()

	r := newBitReader(out)
	for _, b := range bits {
		got := r.Peek(b.l)
		if got != b.v {
			t.Fatalf("Peek(%d) = %#x, want %#x", b.l, got, b.v)
		}
		r.Skip(b.l)
	}
}

func randomSource(rng *rand.Rand, n int, alphabet int) []byte {
	src := make([]byte, n)
	for i := range src {
		src[i] = byte(rng.Intn(alphabet))
	}
	return src
}

func TestSingleStreamRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	for _, n := range []int{0, 1, 2, 17, 512, 4096} {
		src := randomSource(rng, n, 6)
		count := countOf(src)
		maxSymbolValue := 5
		table := buildForCounts(t, count, maxSymbolValue, DefaultCodeLength)
		maxBits := table.MaxLen()

		payload := encodeSingleStream(src, &table)
		got, err := decodeSingleStream(payload, n, &table, maxBits)
		if err != nil {
			t.Fatalf("n=%d: decodeSingleStream: %v", n, err)
		}
		if !bytes.Equal(got, src) {
			t.Fatalf("n=%d: round trip mismatch", n)
		}
	}
}

func TestFourStreamRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for _, n := range []int{0, 1, 3, 4, 100, 4001} {
		src := randomSource(rng, n, 10)
		count := countOf(src)
		maxSymbolValue := 9
		table := buildForCounts(t, count, maxSymbolValue, DefaultCodeLength)
		maxBits := table.MaxLen()

		payload := encodeFourStreams(src, &table)
		got, err := decodeFourStreams(payload, n, &table, maxBits)
		if err != nil {
			t.Fatalf("n=%d: decodeFourStreams: %v", n, err)
		}
		if !bytes.Equal(got, src) {
			t.Fatalf("n=%d: round trip mismatch", n)
		}
	}
}

func TestQuarterSizes(t *testing.T) {
	cases := []struct {
		n    int
		want [4]int
	}{
		{0, [4]int{0, 0, 0, 0}},
		{1, [4]int{1, 0, 0, 0}},
		{4, [4]int{1, 1, 1, 1}},
		{10, [4]int{3, 3, 3, 1}},
		{9, [4]int{3, 3, 3, 0}},
	}

	for _, tc := range cases {
		got := quarterSizes(tc.n)
		if got != tc.want {
			t.Fatalf("quarterSizes(%d) = %v, want %v", tc.n, got, tc.want)
		}
	}
}

func TestDecodeSymbolsRejectsCorruptStream(t *testing.T) {
	// An all-empty LUT has no symbol assigned to any bit pattern, so any
	// attempted decode must fail rather than silently emit garbage.
	const maxBits = 4
	lut := make([]lutEntry, 1<<maxBits)

	if _, err := decodeSymbols([]byte{0xFF, 0xFF}, 1, lut, maxBits); err == nil {
		t.Fatal("expected an error decoding with an empty LUT")
	}
}
