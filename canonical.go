package huffblock

// assignCodewords converts per-symbol code lengths into canonical
// codewords and writes the result into table.
//
// nodes[1..nonNullRank] holds one entry per occurring symbol with its
// final (length-limited) nBits; maxBits is the table's cap (so nbPerRank
// has maxBits+1 slots, index 0 unused). Symbols not present among those
// nodes keep their CElt zero value, matching the "nBits == 0 means the
// symbol does not occur" convention.
func assignCodewords(table *CTable, nodes []node, nonNullRank int, maxBits int) {
	var nbPerRank [MaxCodeLength + 1]uint16
	for n := 1; n <= nonNullRank; n++ {
		nbPerRank[nodes[n].nBits]++
	}

	var valPerRank [MaxCodeLength + 2]uint16
	min := uint16(0)
	for l := maxBits; l > 0; l-- {
		valPerRank[l] = min
		min += nbPerRank[l]
		min >>= 1
	}

	// Scatter lengths into the table by symbol first...
	for n := 1; n <= nonNullRank; n++ {
		table[nodes[n].symbol].NBits = nodes[n].nBits
	}

	// ...then assign codeword values walking symbols in increasing
	// order, so that symbols sharing a length get consecutive, ordered
	// codewords regardless of the count-sorted order they were built in.
	for s := 0; s <= MaxSymbolValue; s++ {
		if table[s].NBits == 0 {
			continue
		}
		table[s].Value = valPerRank[table[s].NBits]
		valPerRank[table[s].NBits]++
	}
}
