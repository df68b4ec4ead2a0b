package huffblock

import "encoding/binary"

// quarterSizes splits n bytes into the four partitions the four-stream
// layout uses: three equal quarters rounded up, and a remainder that
// absorbs whatever's left (which can be smaller, or occasionally zero).
func quarterSizes(n int) [4]int {
	q := (n + 3) / 4
	var sizes [4]int
	remaining := n
	for i := 0; i < 3; i++ {
		sizes[i] = min(q, remaining)
		remaining -= sizes[i]
	}
	sizes[3] = remaining
	return sizes
}

// encodeSingleStream writes src as one Huffman-coded bitstream.
func encodeSingleStream(src []byte, table *CTable) []byte {
	return encodeSymbols(nil, src, table)
}

func decodeSingleStream(payload []byte, n int, table *CTable, maxBits int) ([]byte, error) {
	lut := buildDecodeLUT(table, maxBits)
	return decodeSymbols(payload, n, lut, maxBits)
}

// encodeFourStreams splits src into four quarters and encodes each
// independently, prefixing a 6-byte jump table of the first three
// streams' lengths (little-endian uint16) per §6. Four independent
// streams let a decoder process them in parallel; building that
// parallelism is left to the caller since this package is
// single-threaded per block (§5).
func encodeFourStreams(src []byte, table *CTable) []byte {
	sizes := quarterSizes(len(src))

	var payloads [4][]byte
	off := 0
	for i, sz := range sizes {
		payloads[i] = encodeSymbols(nil, src[off:off+sz], table)
		off += sz
	}

	dst := make([]byte, 6)
	binary.LittleEndian.PutUint16(dst[0:2], uint16(len(payloads[0])))
	binary.LittleEndian.PutUint16(dst[2:4], uint16(len(payloads[1])))
	binary.LittleEndian.PutUint16(dst[4:6], uint16(len(payloads[2])))
	for _, p := range payloads {
		dst = append(dst, p...)
	}
	return dst
}

func decodeFourStreams(payload []byte, n int, table *CTable, maxBits int) ([]byte, error) {
	if len(payload) < 6 {
		return nil, ErrCorruptTable
	}

	len1 := int(binary.LittleEndian.Uint16(payload[0:2]))
	len2 := int(binary.LittleEndian.Uint16(payload[2:4]))
	len3 := int(binary.LittleEndian.Uint16(payload[4:6]))

	body := payload[6:]
	if len1+len2+len3 > len(body) {
		return nil, ErrCorruptTable
	}
	p1 := body[:len1]
	p2 := body[len1 : len1+len2]
	p3 := body[len1+len2 : len1+len2+len3]
	p4 := body[len1+len2+len3:]

	sizes := quarterSizes(n)
	lut := buildDecodeLUT(table, maxBits)

	out := make([]byte, 0, n)
	for i, p := range [4][]byte{p1, p2, p3, p4} {
		chunk, err := decodeSymbols(p, sizes[i], lut, maxBits)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}
