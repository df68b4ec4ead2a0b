package huffblock

// BuildCTable runs the full tree-construction pipeline (sort, build,
// length-limit, canonical assignment) over count[0..maxSymbolValue] and
// returns a length-limited canonical code table with every codeword no
// longer than maxBits.
//
// maxSymbolValue of 0 is treated as MaxSymbolValue, matching the
// convention that a caller who didn't bother scanning for the true upper
// bound gets the full byte range. A maxBits outside [1, MaxCodeLength]
// is replaced by DefaultCodeLength.
//
// ws is caller-owned scratch memory; BuildCTable does not allocate beyond
// the CTable value it returns.
func BuildCTable(ws *Workspace, count []uint32, maxSymbolValue int, maxBits int) (CTable, error) {
	if maxSymbolValue == 0 {
		maxSymbolValue = MaxSymbolValue
	}
	if maxSymbolValue > MaxSymbolValue {
		return CTable{}, newErr(CodeMaxSymbolTooLarge, "symbol value exceeds 255")
	}
	if maxBits <= 0 || maxBits > MaxCodeLength {
		maxBits = DefaultCodeLength
	}

	ws.table = CTable{}

	sortByFrequency(ws.nodes[:], count, maxSymbolValue)
	_, nonNullRank := buildUnconstrainedTree(ws.nodes[:], maxSymbolValue)

	if nonNullRank == 0 {
		return ws.table, nil
	}

	enforceMaxDepth(ws.nodes[:], nonNullRank, maxBits)
	assignCodewords(&ws.table, ws.nodes[:], nonNullRank, maxBits)

	return ws.table, nil
}

// validateCTable reports whether table already assigns a nonzero code to
// every symbol with a nonzero count, i.e. whether it is safe to reuse for
// a block with this histogram without rebuilding (§4.G step 5, §9 open
// question: it does not re-validate codeword range, only coverage).
func validateCTable(table *CTable, count []uint32, maxSymbolValue int) bool {
	for s := 0; s <= maxSymbolValue; s++ {
		if count[s] > 0 && table[s].NBits == 0 {
			return false
		}
	}
	return true
}

// estimatedCost returns the number of bits a table would need to encode
// the given histogram, ignoring table-header overhead. Used by
// compress_block's reuse heuristic (§4.G step 8).
func estimatedCost(table *CTable, count []uint32, maxSymbolValue int) uint64 {
	var total uint64
	for s := 0; s <= maxSymbolValue; s++ {
		total += uint64(table[s].NBits) * uint64(count[s])
	}
	return total
}
