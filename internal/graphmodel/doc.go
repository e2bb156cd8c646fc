// Package graphmodel defines the identifier types and row/schema shapes
// that every other package in this module builds on; the tagged scalar
// field value itself lives in internal/graphvalue. Rows are handed back by value, never as owned raw pointers the
// caller must free.
package graphmodel
