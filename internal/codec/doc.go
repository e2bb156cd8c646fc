// Package codec implements the length-prefixed binary wire encoding shared
// by every RPC payload in the system: scalars, byte arrays, ordered
// sequences, mappings, and tagged variants. See the package-level Writer and
// Reader types for the read/write halves of the contract.
//
// The encoding is intentionally simple and stable across versions:
//
//   - signed/unsigned integers: little-endian fixed width
//   - floats: IEEE-754 little-endian
//   - byte sequences: [u64 length][bytes]
//   - ordered sequences of T: [u64 count][T...]
//   - mappings K->V: [u64 count][(K,V)...]
//   - tagged unions: [u8 tag][payload...]
//
// Every wire payload in internal/rpc and internal/shardserver is expressed
// in terms of this codec so that the byte layout is identical regardless of
// which transport carried it.
package codec
