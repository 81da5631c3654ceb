// Package lexical defines the interface for the full-text indexes built over
// text properties.
//
// # Built-in Implementation
//
// The bm25 subpackage provides an in-memory BM25 index whose serialized
// state can be loaded by the browser-side search layer:
//
//	import "github.com/hupe1980/tilesindex/lexical/bm25"
//
//	idx := bm25.New("name")
//	_ = idx.Add(0, "Town Hall")
//	state, _ := json.Marshal(idx)
//
// # Custom Implementations
//
// Implement the Index interface and pass a Factory to the indexer:
//
//	type Index interface {
//	    Add(rowID uint32, text string) error
//	    Search(text string, k int) ([]Candidate, error)
//	    Options() any
//	    MarshalJSON() ([]byte, error)
//	}
package lexical
