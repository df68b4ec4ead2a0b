package huffblock

import "math/bits"

// noSymbol marks an empty rankLast slot: "no node currently sits at this
// length". The spec's C ancestor uses a literal 0xF0F0F0F0 sentinel value;
// we use an ordinary signed -1.
const noSymbol = -1

// enforceMaxDepth rewrites nodes[1..nonNullRank].nBits, already filled in
// by buildUnconstrainedTree, so that none exceeds maxBits, while keeping
// the code complete (Kraft equality). It minimizes the number of bits
// added relative to the unconstrained optimum by always lengthening the
// cheapest (lowest-count) codeword that can pay for the next unit of
// deficit.
//
// nodes[0] (the sentinel) is never touched; leaves occupy [1,
// nonNullRank] and are sorted by non-increasing count, so nBits is
// non-decreasing as the index grows.
func enforceMaxDepth(nodes []node, nonNullRank int, maxBits int) {
	if nonNullRank < 1 {
		return
	}

	largestBits := int(nodes[nonNullRank].nBits)
	if largestBits <= maxBits {
		return
	}

	// Step 1: clamp every over-long leaf to maxBits, tracking the
	// resulting Kraft deficit in units of 2^-maxBits.
	baseCost := 1 << uint(largestBits-maxBits)
	totalCost := 0
	n := nonNullRank

	for nodes[n].nBits > uint8(maxBits) {
		totalCost += baseCost - (1 << uint(largestBits-int(nodes[n].nBits)))
		nodes[n].nBits = uint8(maxBits)
		n--
	}
	for nodes[n].nBits == uint8(maxBits) {
		n--
	}
	// n now indexes the largest-count leaf whose code is still shorter
	// than maxBits.

	totalCost >>= uint(largestBits - maxBits)

	var rankLast [MaxCodeLength + 2]int
	for i := range rankLast {
		rankLast[i] = noSymbol
	}

	currentNbBits := maxBits
	for pos := n; pos >= 1; pos-- {
		if int(nodes[pos].nBits) >= currentNbBits {
			continue
		}
		currentNbBits = int(nodes[pos].nBits)
		rankLast[maxBits-currentNbBits] = pos
	}

	// Step 2: repay the deficit by lengthening the cheapest codewords we
	// can find, one unit of cost at a time.
	for totalCost > 0 {
		nBitsToDecrease := bits.Len(uint(totalCost))

		for ; nBitsToDecrease > 1; nBitsToDecrease-- {
			highPos := rankLast[nBitsToDecrease]
			lowPos := rankLast[nBitsToDecrease-1]
			if highPos == noSymbol {
				continue
			}
			if lowPos == noSymbol {
				break
			}
			highTotal := nodes[highPos].count
			lowTotal := 2 * nodes[lowPos].count
			if highTotal <= lowTotal {
				break
			}
		}

		for nBitsToDecrease <= maxBits+1 && rankLast[nBitsToDecrease] == noSymbol {
			nBitsToDecrease++
		}

		totalCost -= 1 << uint(nBitsToDecrease-1)

		if rankLast[nBitsToDecrease-1] == noSymbol {
			rankLast[nBitsToDecrease-1] = rankLast[nBitsToDecrease]
		}

		nodes[rankLast[nBitsToDecrease]].nBits++

		if rankLast[nBitsToDecrease] == 1 {
			// Reached the largest-count real leaf; this rank is spent.
			rankLast[nBitsToDecrease] = noSymbol
		} else {
			rankLast[nBitsToDecrease]--
			if int(nodes[rankLast[nBitsToDecrease]].nBits) != maxBits-nBitsToDecrease {
				rankLast[nBitsToDecrease] = noSymbol
			}
		}
	}

	// Step 3: the repay loop can overshoot; shorten leaves at length
	// maxBits to maxBits-1, one unit at a time, until it is exactly zero.
	for totalCost < 0 {
		if rankLast[1] == noSymbol {
			for nodes[n].nBits == uint8(maxBits) {
				n--
			}
			nodes[n+1].nBits--
			rankLast[1] = n + 1
			totalCost++
			continue
		}
		nodes[rankLast[1]+1].nBits--
		rankLast[1]++
		totalCost++
	}
}
