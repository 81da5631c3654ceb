// Package bm25 provides a BM25-based lexical search index.
//
// The index is an in-memory inverted index keyed by lower-cased terms. Text
// is split on line breaks, separators and punctuation.
//
// # Serialization
//
// MarshalJSON writes the document table, field lengths and postings in the
// layout used by MiniSearch (serializationVersion 2), and Options returns the
// matching constructor options, so a viewer can restore the index with
// MiniSearch.loadJSON. Terms are written in sorted order.
//
// # Parameters
//
// Uses standard BM25 parameters: k1=1.2, b=0.75
//
// # Thread Safety
//
// The index is safe for concurrent reads and writes.
package bm25
