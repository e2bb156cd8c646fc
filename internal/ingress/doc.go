// Package ingress implements the parallel streaming graph loader: a
// single reader goroutine fills bounded line buffers from a (optionally
// gzip-compressed) file, a fixed-size worker pool parses each buffer with
// one of the builtin line formats, and each worker flushes its parsed
// edges through an internal/client.Client batch call.
//
// The snap/tsv/adj parsers reproduce each format's edge cases precisely:
// snap's '#' comment lines, adj's cnt-vs-actual-target-count mismatch as a
// parse error, and both formats silently dropping self-edges. Each worker
// accumulates a per-buffer batch of client.EdgeInsert in a local slice and
// flushes it once the buffer is fully consumed.
package ingress
