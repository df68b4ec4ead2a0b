package huffblock

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// PersistedTable is the caller-owned slot compress_block reads and
// mutates to implement the previous-table reuse heuristic (§4.G steps
// 2, 5, 8, 10). Concurrent callers must each use their own slot (§5).
type PersistedTable struct {
	Table          CTable
	MaxBits        int
	MaxSymbolValue int
	State          RepeatState
}

// CompressBlock runs the full §4.G pipeline over src and returns the
// bytes to emit for this block, plus whether those bytes begin with a
// table header (false when a persisted table was reused without
// retransmitting it, and also for the 0- and 1-byte sentinel results;
// this matches the higher-level framer's contract: it
// alone knows a table header was skipped and must remember the table
// used to decode).
//
// The returned slice's length carries the same tri-state meaning as the
// spec's sentinel return values: len == 0 means "store the block
// uncompressed", len == 1 means "RLE, the one byte is the repeated
// value", anything else is the compressed payload.
//
// requestedLog is the caller's preferred code-length cap (0 picks
// DefaultCodeLength); maxSymbolValue of 0 is treated as MaxSymbolValue.
// log, if non-nil, receives a diagnostic trace of the decisions made.
func CompressBlock(
	ws *Workspace,
	src []byte,
	persisted *PersistedTable,
	preferRepeat bool,
	requestedLog int,
	maxSymbolValue int,
	singleStream bool,
	log io.Writer,
) (out []byte, headerPresent bool, err error) {
	srcSize := len(src)
	if srcSize == 0 {
		return nil, false, nil
	}
	if srcSize > MaxBlockSize {
		return nil, false, newErr(CodeSrcTooLarge, "block exceeds MaxBlockSize")
	}
	if maxSymbolValue == 0 {
		maxSymbolValue = MaxSymbolValue
	}
	if maxSymbolValue > MaxSymbolValue {
		return nil, false, newErr(CodeMaxSymbolTooLarge, "symbol value out of range")
	}

	// Step 2: repeat fast path, no validation at all — an intentional
	// caller contract for RepeatValid (see §9's open question).
	if preferRepeat && persisted != nil && persisted.State == RepeatValid {
		if log != nil {
			fmt.Fprintf(log, "compress_block: repeat-valid fast path, %d bytes\n", srcSize)
		}
		payload := emit(src, &persisted.Table, singleStream)
		return payload, false, nil
	}

	count := ws.count[:maxSymbolValue+1]
	usedMax, maxCount := countHistogram(count, maxSymbolValue, src)

	if int(maxCount) == srcSize {
		if log != nil {
			fmt.Fprintf(log, "compress_block: RLE, byte=%#02x\n", src[0])
		}
		return []byte{src[0]}, false, nil
	}
	if int(maxCount) <= (srcSize>>7)+1 {
		if log != nil {
			fmt.Fprintf(log, "compress_block: too flat to compress (maxCount=%d)\n", maxCount)
		}
		return nil, false, nil
	}

	// Step 5: validated repeat path.
	if persisted != nil && persisted.State == RepeatCheck {
		if !validateCTable(&persisted.Table, count, usedMax) {
			persisted.State = RepeatNone
		}
	}
	if preferRepeat && persisted != nil && persisted.State != RepeatNone {
		if log != nil {
			fmt.Fprintf(log, "compress_block: repeat-checked path\n")
		}
		payload := emit(src, &persisted.Table, singleStream)
		persisted.State = RepeatValid
		return payload, false, nil
	}

	// Step 6-7: build and serialize a fresh table.
	huffLog := optimalTableLog(requestedLog, srcSize, usedMax)
	table, err := BuildCTable(ws, count, usedMax, huffLog)
	if err != nil {
		return nil, false, err
	}

	header, err := WriteTable(nil, &table, usedMax, log)
	if err != nil {
		return nil, false, err
	}
	hSize := len(header)

	// Step 8: reuse-cost heuristic against the persisted table.
	if persisted != nil && persisted.State != RepeatNone {
		oldCost := estimatedCost(&persisted.Table, count, usedMax)
		newCost := estimatedCost(&table, count, usedMax)

		if log != nil {
			oldHeader, _ := WriteTable(nil, &persisted.Table, persisted.MaxSymbolValue, nil)
			fmt.Fprintf(log, "compress_block: oldCost=%d newCost=%d hSize=%d old_hash=%x\n",
				oldCost, newCost, hSize, xxhash.Sum64(oldHeader))
		}

		if oldCost <= uint64(hSize)+newCost || hSize+12 >= srcSize {
			payload := emit(src, &persisted.Table, singleStream)
			persisted.State = RepeatValid
			return payload, false, nil
		}
	}

	// Step 9: incompressibility check before paying the stream-encode cost.
	if hSize+12 >= srcSize {
		if log != nil {
			fmt.Fprintf(log, "compress_block: header too large relative to block (%d+12 >= %d)\n", hSize, srcSize)
		}
		return nil, false, nil
	}

	// Step 10: emit with the fresh table and persist it for next time.
	payload := emit(src, &table, singleStream)

	dst := make([]byte, 0, hSize+len(payload))
	dst = append(dst, header...)
	dst = append(dst, payload...)

	if persisted != nil {
		persisted.Table = table
		persisted.MaxBits = huffLog
		persisted.MaxSymbolValue = usedMax
		persisted.State = RepeatCheck
	}

	if len(dst) >= srcSize-1 {
		if log != nil {
			fmt.Fprintf(log, "compress_block: fresh table not beneficial (%d >= %d-1)\n", len(dst), srcSize)
		}
		return nil, false, nil
	}

	return dst, true, nil
}

func emit(src []byte, table *CTable, singleStream bool) []byte {
	if singleStream {
		return encodeSingleStream(src, table)
	}
	return encodeFourStreams(src, table)
}

// DecompressBlock is CompressBlock's inverse for a single block, given
// the same framing parameters the caller used to produce it. headerPresent
// must match what CompressBlock returned for this block; when false, the
// caller must supply the table (and its maxBits) that was actually used,
// since it was never retransmitted.
//
// It also returns the table and maxBits actually used to decode, so a
// framer chaining several blocks can hold onto them for the next
// headerPresent == false block without re-deriving anything.
func DecompressBlock(
	payload []byte,
	srcSize int,
	maxSymbolValue int,
	singleStream bool,
	headerPresent bool,
	table *CTable,
	maxBits int,
) (out []byte, usedTable CTable, usedMaxBits int, err error) {
	if maxSymbolValue == 0 {
		maxSymbolValue = MaxSymbolValue
	}

	var t CTable
	mb := maxBits

	if headerPresent {
		var consumed int
		t, consumed, mb, err = ReadTable(payload, maxSymbolValue)
		if err != nil {
			return nil, CTable{}, 0, err
		}
		payload = payload[consumed:]
	} else {
		if table == nil {
			return nil, CTable{}, 0, newErr(CodeGeneric, "headerPresent=false requires a table")
		}
		t = *table
	}

	if singleStream {
		out, err = decodeSingleStream(payload, srcSize, &t, mb)
	} else {
		out, err = decodeFourStreams(payload, srcSize, &t, mb)
	}
	if err != nil {
		return nil, CTable{}, 0, err
	}
	return out, t, mb, nil
}
