package huffblock

// MaxSymbolValue is the largest byte value the codec ever sees; symbols
// live in [0, MaxSymbolValue].
const MaxSymbolValue = 255

// MaxCodeLength is the hard cap on canonical codeword length. Weights are
// packed in 4 bits, so L+1 must fit in a nibble.
const MaxCodeLength = 12

// DefaultCodeLength is the length cap used when a caller does not request
// a specific one.
const DefaultCodeLength = 11

// MaxBlockSize is the largest source buffer CompressBlock will accept in
// one call.
const MaxBlockSize = 128 << 10

// sentinelCount is an unreachable count used to seed rank boundaries so
// real nodes are never mistaken for the cheapest candidate.
const sentinelCount = uint32(1) << 31

// futureCount seeds internal-node slots that have not been constructed
// yet, so they never look attractive to the merge cursors before they
// exist.
const futureCount = uint32(1) << 30

// node is a scratch entry used only during tree construction. It doubles
// as a leaf (symbol, count) and, once merged, an internal node (count is
// the sum of its two children).
//
// Index 0 of a node slice is always the sentinel; live leaves occupy
// [1, maxSymbolValue+1], internal nodes occupy [maxSymbolValue+2, ...).
type node struct {
	count  uint32
	parent uint16
	symbol uint8
	nBits  uint8
}

// CElt is one symbol's entry in a code table: a canonical codeword
// right-aligned in nBits bits. nBits == 0 means the symbol never occurs.
type CElt struct {
	Value uint16
	NBits uint8
}

// CTable is a code table indexed by symbol value, conceptually length
// 256 regardless of how many symbols actually occur.
type CTable [MaxSymbolValue + 1]CElt

// MaxLen returns the longest nBits among occurring symbols.
func (t *CTable) MaxLen() int {
	m := 0
	for _, e := range t {
		if int(e.NBits) > m {
			m = int(e.NBits)
		}
	}
	return m
}

// RepeatState tags whether a persisted table from a prior block may be
// reused for the next one.
type RepeatState int

const (
	// RepeatNone: no usable persisted table.
	RepeatNone RepeatState = iota
	// RepeatCheck: a persisted table exists but must be validated against
	// the current block's histogram before reuse.
	RepeatCheck
	// RepeatValid: the persisted table is known-good and may be reused
	// without validation.
	RepeatValid
)

func (s RepeatState) String() string {
	switch s {
	case RepeatNone:
		return "none"
	case RepeatCheck:
		return "check"
	case RepeatValid:
		return "valid"
	default:
		return "invalid"
	}
}

// Workspace is caller-owned scratch memory reused across calls to avoid
// per-block allocation in the hot path. Its layout mirrors the spec's
// contract: a histogram, a transient code table, and a node array, all
// sized to the worst case (257 symbol slots, 2*256+2 nodes).
type Workspace struct {
	count [MaxSymbolValue + 2]uint32
	table CTable
	nodes [2*(MaxSymbolValue+1) + 2]node
}

// NewWorkspace allocates a fresh scratch workspace. Callers that compress
// many blocks should allocate one Workspace and reuse it.
func NewWorkspace() *Workspace {
	return &Workspace{}
}
