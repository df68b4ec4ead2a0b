package huffblock

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

// WriteTable serializes table's code lengths for symbols [0, maxSymbolValue]
// and appends the result to dst, returning the extended slice. It chooses
// between the FSE-compressed and raw-packed weight encodings by trial,
// per §4.E, and never transmits the last symbol's weight: it is recovered
// by the reader via Kraft completion.
//
// log, if non-nil, receives a one-line diagnostic trace (which encoding
// was chosen, and an xxhash of the weight vector so two tables can be
// compared for "did this change" without dumping the whole table).
func WriteTable(dst []byte, table *CTable, maxSymbolValue int, log io.Writer) ([]byte, error) {
	if maxSymbolValue <= 0 || maxSymbolValue > MaxSymbolValue {
		return nil, newErr(CodeMaxSymbolTooLarge, "symbol value out of range")
	}

	maxBits := table.MaxLen()
	if maxBits > MaxCodeLength {
		return nil, newErr(CodeTableLogTooLarge, "code length exceeds cap")
	}

	weights := make([]byte, maxSymbolValue)
	for s := 0; s < maxSymbolValue; s++ {
		if table[s].NBits == 0 {
			weights[s] = 0
			continue
		}
		weights[s] = byte(maxBits + 1 - int(table[s].NBits))
	}

	if log != nil {
		fmt.Fprintf(log, "write_table: M=%d maxBits=%d weights_hash=%x\n",
			maxSymbolValue, maxBits, xxhash.Sum64(weights))
	}

	if fsePayload, ok, err := defaultWeightCoder.compress(weights); err != nil {
		return nil, err
	} else if ok && len(fsePayload) > 1 && len(fsePayload) < maxSymbolValue/2 {
		if log != nil {
			fmt.Fprintf(log, "write_table: fse encoding, %d bytes\n", len(fsePayload))
		}
		dst = append(dst, byte(len(fsePayload)))
		dst = append(dst, fsePayload...)
		return dst, nil
	}

	if maxSymbolValue > 128 {
		return nil, newErr(CodeGeneric, "too many symbols for raw weight header")
	}

	if log != nil {
		fmt.Fprintf(log, "write_table: raw encoding, %d symbols\n", maxSymbolValue)
	}

	dst = append(dst, byte(128+maxSymbolValue-1))
	for i := 0; i < maxSymbolValue; i += 2 {
		hi := weights[i]
		var lo byte
		if i+1 < maxSymbolValue {
			lo = weights[i+1]
		}
		dst = append(dst, hi<<4|lo)
	}

	return dst, nil
}

// ReadTable is the inverse of WriteTable: it parses a table header from
// the front of src, reconstructs the full CTable (including the omitted
// last symbol's weight, recovered via Kraft completion) and returns the
// table, the number of header bytes consumed, and the table's max code
// length.
func ReadTable(src []byte, maxSymbolValue int) (table CTable, consumed int, maxBits int, err error) {
	if len(src) == 0 {
		return CTable{}, 0, 0, ErrCorruptTable
	}
	if maxSymbolValue <= 0 || maxSymbolValue > MaxSymbolValue {
		return CTable{}, 0, 0, newErr(CodeMaxSymbolTooLarge, "symbol value out of range")
	}

	header := src[0]
	var weights []byte

	if header >= 128 {
		n := int(header-128) + 1
		need := (n + 1) / 2
		if len(src) < 1+need {
			return CTable{}, 0, 0, ErrCorruptTable
		}
		if n != maxSymbolValue {
			return CTable{}, 0, 0, ErrCorruptTable
		}

		weights = make([]byte, n)
		packed := src[1 : 1+need]
		for i := 0; i < n; i++ {
			b := packed[i/2]
			if i%2 == 0 {
				weights[i] = b >> 4
			} else {
				weights[i] = b & 0x0F
			}
		}
		consumed = 1 + need
	} else {
		h := int(header)
		if h <= 1 {
			return CTable{}, 0, 0, ErrCorruptTable
		}
		if len(src) < 1+h {
			return CTable{}, 0, 0, ErrCorruptTable
		}
		weights, err = defaultWeightCoder.decompress(src[1:1+h], maxSymbolValue)
		if err != nil {
			return CTable{}, 0, 0, err
		}
		consumed = 1 + h
	}

	lengths, log2L, err := weightsToLengths(weights, maxSymbolValue)
	if err != nil {
		return CTable{}, 0, 0, err
	}

	table = CTable{}
	var nodes [2*(MaxSymbolValue+1) + 2]node
	nonNullRank := 0
	for s := 0; s <= maxSymbolValue; s++ {
		if lengths[s] == 0 {
			continue
		}
		nonNullRank++
		nodes[nonNullRank] = node{count: 0, symbol: uint8(s), nBits: lengths[s]}
	}
	// Canonical assignment only needs lengths to be grouped consecutively
	// per rank; it does not depend on count-sorted order (see
	// assignCodewords), so any stable placement of the occurring symbols
	// into nodes[1..nonNullRank] is sufficient here.
	assignCodewords(&table, nodes[:], nonNullRank, log2L)

	return table, consumed, log2L, nil
}

// weightsToLengths reconstructs per-symbol code lengths from a
// transmitted weight vector of maxSymbolValue entries (symbols
// [0..maxSymbolValue-1]), recovering the omitted maxSymbolValue-th
// symbol's weight via Kraft completion: each weight w>0 occupies
// 2^(w-1) of the 2^L "leaf slots" of a depth-L complete binary tree;
// the omitted symbol takes whatever slots are left.
func weightsToLengths(weights []byte, maxSymbolValue int) (lengths [MaxSymbolValue + 1]uint8, l int, err error) {
	var partial uint64
	for _, w := range weights {
		if w > MaxCodeLength {
			return lengths, 0, ErrCorruptTable
		}
		if w > 0 {
			partial += uint64(1) << (w - 1)
		}
	}

	if partial == 0 {
		return lengths, 0, ErrCorruptTable
	}

	l = bits.Len64(partial)
	if l > MaxCodeLength {
		return lengths, 0, newErr(CodeTableLogTooLarge, "reconstructed table log exceeds cap")
	}

	total := uint64(1) << uint(l)
	rest := total - partial

	var lastWeight byte
	if rest != 0 {
		lastWeight = byte(bits.Len64(rest))
		if uint64(1)<<(lastWeight-1) != rest {
			return lengths, 0, ErrCorruptTable
		}
	}

	for s, w := range weights {
		if w > 0 {
			lengths[s] = uint8(l + 1 - int(w))
		}
	}
	if lastWeight > 0 {
		lengths[maxSymbolValue] = uint8(l + 1 - int(lastWeight))
	}

	return lengths, l, nil
}
