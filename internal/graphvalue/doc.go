// Package graphvalue implements the tagged scalar stored in a single field
// of a single vertex or edge row: six variants (VidI64, IntI64, DoubleF64,
// String, Blob, DoubleVec) with null/delta-commit/modified bookkeeping,
// expressed as an immutable-by-convention Go value rather than a tagged
// union the caller must explicitly free.
package graphvalue
