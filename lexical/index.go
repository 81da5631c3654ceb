package lexical

// Candidate is one search hit.
type Candidate struct {
	RowID uint32
	Score float64
}

// Index is the interface for a lexical search index over one property.
type Index interface {
	// Add indexes text for a feature row.
	Add(rowID uint32, text string) error
	// Search performs a keyword search and returns up to k candidates,
	// best first.
	Search(text string, k int) ([]Candidate, error)
	// Options returns the configuration a loader needs to restore the index.
	Options() any
	// MarshalJSON serializes the index state.
	MarshalJSON() ([]byte, error)
}

// Factory creates an empty index for the named field.
type Factory func(field string) Index
