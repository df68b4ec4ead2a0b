// Package huffblock implements the encoder half of a canonical,
// length-limited Huffman codec used as the final entropy stage of a
// general-purpose block compressor.
//
// Given a byte buffer it builds an optimal prefix code constrained to a
// maximum code length, serializes the resulting code table compactly, and
// emits the input encoded under that table as one or four independent
// bitstream partitions.
//
// # Overview
//
// The pipeline for a single block is:
//
//	bytes -> histogram -> sort -> tree -> length-limit -> canonical codes -> table + stream
//
// [BuildCTable] runs the tree-construction and length-limiting stages and
// returns a [CTable]; [WriteTable] and [ReadTable] serialize and parse the
// compact (or FSE-compressed) weight-vector form of that table;
// [CompressBlock] orchestrates the whole pipeline for one block, including
// the RLE and incompressibility shortcuts and the previous-table reuse
// heuristic; [DecompressBlock] is its inverse.
//
// # Non-goals
//
// Adaptive/online Huffman coding, arithmetic coding, and streaming
// (block-at-a-time only) are out of scope, as is multi-threading within a
// single block.
package huffblock
