package huffblock

import "github.com/klauspost/compress/fse"

// fseMaxTableLog is the table-log cap the spec fixes for compressing the
// weight vector: weights only ever span a tiny alphabet (0..MaxCodeLength),
// so a larger table would waste header bytes without helping the ratio.
const fseMaxTableLog = 6

// weightCoder is the external FSE sub-coder, treated as a sealed black
// box by the rest of this package: write_table and read_table only ever
// call it through this interface, never touch its internals. The default
// implementation wraps github.com/klauspost/compress/fse, the production
// Go implementation of the tabled-ANS coder zstd-family Huffman tables
// use for exactly this purpose.
type weightCoder interface {
	// compress attempts to entropy-code weights. ok is false if FSE
	// declined (e.g. RLE-able or incompressible input); err is non-nil
	// only for a genuine coder fault.
	compress(weights []byte) (out []byte, ok bool, err error)
	// decompress restores exactly n weight bytes from a payload
	// previously produced by compress.
	decompress(payload []byte, n int) ([]byte, error)
}

type fseWeightCoder struct{}

func (fseWeightCoder) compress(weights []byte) ([]byte, bool, error) {
	var s fse.Scratch
	s.MaxSymbolValue = MaxCodeLength
	s.TableLog = fseMaxTableLog

	out, err := fse.Compress(weights, &s)
	if err != nil {
		// fse.ErrIncompressible / fse.ErrUseRLE are expected declines,
		// not coder faults: write_table falls back to the raw packing.
		return nil, false, nil
	}
	return out, true, nil
}

func (fseWeightCoder) decompress(payload []byte, n int) ([]byte, error) {
	var s fse.Scratch
	s.MaxSymbolValue = MaxCodeLength
	s.TableLog = fseMaxTableLog
	s.Out = make([]byte, 0, n)

	out, err := fse.Decompress(payload, &s)
	if err != nil {
		return nil, newErr(CodeGeneric, "fse: "+err.Error())
	}
	if len(out) != n {
		return nil, ErrCorruptTable
	}
	return out, nil
}

// defaultWeightCoder is used whenever a caller does not supply one
// explicitly; it is a package-level var (not a const) so tests can swap
// in a fake that forces either branch of write_table deterministically.
var defaultWeightCoder weightCoder = fseWeightCoder{}
