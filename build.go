package huffblock

// buildUnconstrainedTree runs the classic two-cursor Huffman merge over
// nodes[1..numSymbols+1] (already sorted descending by count, see
// sortByFrequency) and fills in each leaf's nBits with its unconstrained
// optimal code length. It returns the index of the root node and
// nonNullRank, the index of the last leaf with a nonzero count.
//
// nodes must have capacity for the sentinel (index 0), numSymbols+1
// leaves, and nonNullRank-1 internal nodes, i.e. at least
// 2*(numSymbols+1)+1 entries.
func buildUnconstrainedTree(nodes []node, numSymbols int) (nodeRoot, nonNullRank int) {
	numLeaves := numSymbols + 1

	nonNullRank = numLeaves
	for nonNullRank > 0 && nodes[nonNullRank].count == 0 {
		nonNullRank--
	}

	if nonNullRank == 0 {
		// No symbols at all; nothing to build.
		return 0, 0
	}

	if nonNullRank == 1 {
		// A single symbol occurs: it gets a 1-bit code by convention;
		// the caller's RLE/degenerate-input shortcuts normally prevent
		// this path from mattering, but we keep it well-defined.
		nodes[1].nBits = 1
		return 1, 1
	}

	startNode := numLeaves + 1

	lowS := nonNullRank
	lowN := startNode
	nodeNb := startNode
	nodeRoot = nodeNb + lowS - 2

	// First merge is unconditional: lowN's slot has no count yet, so it
	// cannot be compared against.
	nodes[nodeNb].count = nodes[lowS].count + nodes[lowS-1].count
	nodes[lowS].parent = uint16(nodeNb)
	nodes[lowS-1].parent = uint16(nodeNb)
	nodeNb++
	lowS -= 2

	for n := nodeNb; n <= nodeRoot; n++ {
		nodes[n].count = futureCount
	}
	nodes[0].count = sentinelCount

	for nodeNb <= nodeRoot {
		n1 := pickLowest(nodes, &lowS, &lowN)
		n2 := pickLowest(nodes, &lowS, &lowN)

		nodes[nodeNb].count = nodes[n1].count + nodes[n2].count
		nodes[n1].parent = uint16(nodeNb)
		nodes[n2].parent = uint16(nodeNb)
		nodeNb++
	}

	nodes[nodeRoot].nBits = 0
	for n := nodeRoot - 1; n >= startNode; n-- {
		nodes[n].nBits = nodes[nodes[n].parent].nBits + 1
	}
	for n := 0; n <= nonNullRank; n++ {
		nodes[n].nBits = nodes[nodes[n].parent].nBits + 1
	}

	return nodeRoot, nonNullRank
}

// pickLowest advances whichever of *lowS (descending through leaves) or
// *lowN (ascending through internal nodes) currently points at the
// cheaper node, and returns the index it picked.
func pickLowest(nodes []node, lowS, lowN *int) int {
	if nodes[*lowS].count < nodes[*lowN].count {
		idx := *lowS
		*lowS--
		return idx
	}
	idx := *lowN
	*lowN++
	return idx
}
