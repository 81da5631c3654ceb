package bm25

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/tilesindex/lexical"
)

const (
	k1 = 1.2
	b  = 0.75
)

type posting struct {
	doc   uint32 // short id, dense in insertion order
	count int
}

// MemoryIndex is a simple in-memory BM25 index over a single field.
type MemoryIndex struct {
	mu          sync.RWMutex
	field       string
	inverted    map[string][]posting
	rowIDs      []uint32 // short id -> row id
	docLengths  []int    // short id -> token count
	totalLength int64
}

// New creates a new MemoryIndex for field.
func New(field string) *MemoryIndex {
	return &MemoryIndex{
		field:    field,
		inverted: make(map[string][]posting),
	}
}

// NewFactory returns a lexical.Factory producing MemoryIndexes.
func NewFactory() lexical.Factory {
	return func(field string) lexical.Index { return New(field) }
}

// Ensure MemoryIndex implements lexical.Index
var _ lexical.Index = (*MemoryIndex)(nil)

func isSeparator(r rune) bool {
	return r == '\n' || r == '\r' || unicode.Is(unicode.Z, r) || unicode.IsPunct(r)
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, isSeparator)
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

// Add indexes text for rowID. Every call adds a new document.
func (idx *MemoryIndex) Add(rowID uint32, text string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	tokens := tokenize(text)
	doc := uint32(len(idx.rowIDs))
	idx.rowIDs = append(idx.rowIDs, rowID)
	idx.docLengths = append(idx.docLengths, len(tokens))
	idx.totalLength += int64(len(tokens))

	// Count term frequencies
	tf := make(map[string]int)
	for _, t := range tokens {
		tf[t]++
	}
	for t, count := range tf {
		idx.inverted[t] = append(idx.inverted[t], posting{doc: doc, count: count})
	}
	return nil
}

// Len returns the number of indexed documents.
func (idx *MemoryIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.rowIDs)
}

// Search scores every document containing at least one query term and
// returns the k best. Ties keep insertion order.
func (idx *MemoryIndex) Search(text string, k int) ([]lexical.Candidate, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	docCount := len(idx.rowIDs)
	if docCount == 0 || k <= 0 {
		return nil, nil
	}
	avgDL := float64(idx.totalLength) / float64(docCount)

	scores := make(map[uint32]float64)
	seen := make(map[string]bool)
	for _, t := range tokenize(text) {
		if seen[t] {
			continue
		}
		seen[t] = true

		postings, ok := idx.inverted[t]
		if !ok {
			continue
		}
		idf := computeIDF(docCount, len(postings))
		for _, p := range postings {
			tf := float64(p.count)
			docLen := float64(idx.docLengths[p.doc])

			// BM25 formula
			num := tf * (k1 + 1)
			denom := tf + k1*(1-b+b*(docLen/avgDL))
			scores[p.doc] += idf * (num / denom)
		}
	}

	candidates := make([]lexical.Candidate, 0, len(scores))
	docs := make([]uint32, 0, len(scores))
	for doc := range scores {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		si, sj := scores[docs[i]], scores[docs[j]]
		if si != sj {
			return si > sj
		}
		return docs[i] < docs[j]
	})
	for _, doc := range docs {
		if len(candidates) == k {
			break
		}
		candidates = append(candidates, lexical.Candidate{RowID: idx.rowIDs[doc], Score: scores[doc]})
	}
	return candidates, nil
}

func computeIDF(docCount, df int) float64 {
	// IDF = log(1 + (N - n + 0.5) / (n + 0.5))
	N := float64(docCount)
	n := float64(df)
	return math.Log(1 + (N-n+0.5)/(n+0.5))
}

// Options are the constructor options matching the serialized state.
type Options struct {
	Fields        []string      `json:"fields"`
	IDField       string        `json:"idField"`
	StoreFields   []string      `json:"storeFields"`
	SearchOptions SearchOptions `json:"searchOptions"`
}

// SearchOptions carries the ranking parameters.
type SearchOptions struct {
	BM25 Params `json:"bm25"`
}

// Params are the BM25 ranking parameters.
type Params struct {
	K float64 `json:"k"`
	B float64 `json:"b"`
	D float64 `json:"d"`
}

// Options implements lexical.Index.
func (idx *MemoryIndex) Options() any {
	return Options{
		Fields:        []string{idx.field},
		IDField:       "id",
		StoreFields:   []string{},
		SearchOptions: SearchOptions{BM25: Params{K: k1, B: b}},
	}
}

type state struct {
	DocumentCount        int               `json:"documentCount"`
	NextID               int               `json:"nextId"`
	DocumentIDs          map[string]uint32 `json:"documentIds"`
	FieldIDs             map[string]int    `json:"fieldIds"`
	FieldLength          map[string][]int  `json:"fieldLength"`
	AverageFieldLength   []float64         `json:"averageFieldLength"`
	StoredFields         map[string]any    `json:"storedFields"`
	DirtCount            int               `json:"dirtCount"`
	Index                [][2]any          `json:"index"`
	SerializationVersion int               `json:"serializationVersion"`
}

// MarshalJSON writes the index state.
func (idx *MemoryIndex) MarshalJSON() ([]byte, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := len(idx.rowIDs)
	st := state{
		DocumentCount:        n,
		NextID:               n,
		DocumentIDs:          make(map[string]uint32, n),
		FieldIDs:             map[string]int{idx.field: 0},
		FieldLength:          make(map[string][]int, n),
		AverageFieldLength:   []float64{0},
		StoredFields:         map[string]any{},
		Index:                make([][2]any, 0, len(idx.inverted)),
		SerializationVersion: 2,
	}
	if n > 0 {
		st.AverageFieldLength[0] = float64(idx.totalLength) / float64(n)
	}
	for doc, rowID := range idx.rowIDs {
		key := strconv.Itoa(doc)
		st.DocumentIDs[key] = rowID
		st.FieldLength[key] = []int{idx.docLengths[doc]}
	}

	terms := make([]string, 0, len(idx.inverted))
	for t := range idx.inverted {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	for _, t := range terms {
		freqs := make(map[string]int, len(idx.inverted[t]))
		for _, p := range idx.inverted[t] {
			freqs[strconv.Itoa(int(p.doc))] = p.count
		}
		st.Index = append(st.Index, [2]any{t, map[string]map[string]int{"0": freqs}})
	}

	return gojson.Marshal(st)
}
