package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/hupe1980/tilesindex/internal/table"
	"github.com/hupe1980/tilesindex/model"
)

type pair struct {
	rowID int
	value float64
}

// NumericBuilder indexes a property as numbers.
//
// Values are parsed like JavaScript parseFloat. Values that do not parse are
// kept as NaN so every row appears in the artifact, but they do not widen the
// range.
type NumericBuilder struct {
	property string
	pairs    []pair
	rng      Range
	valid    bool
}

// NewNumericBuilder creates a numeric builder for property.
func NewNumericBuilder(property string) *NumericBuilder {
	return &NumericBuilder{property: property}
}

// Property implements Builder.
func (b *NumericBuilder) Property() string { return b.property }

// Type implements Builder.
func (b *NumericBuilder) Type() Type { return TypeNumeric }

// Add implements Builder.
func (b *NumericBuilder) Add(rowID int, value any) {
	v := model.ParseFloat(value)
	if !math.IsNaN(v) {
		if !b.valid {
			b.rng = Range{Min: v, Max: v}
			b.valid = true
		} else {
			b.rng.Min = math.Min(v, b.rng.Min)
			b.rng.Max = math.Max(v, b.rng.Max)
		}
	}
	b.pairs = append(b.pairs, pair{rowID: rowID, value: v})
}

// Range returns the range of valid values and whether there was any.
func (b *NumericBuilder) Range() (Range, bool) { return b.rng, b.valid }

// Sorted returns the (rowId, value) pairs ordered by value. The sort is
// stable and NaN values go last.
func (b *NumericBuilder) Sorted() [][2]float64 {
	sorted := make([]pair, len(b.pairs))
	copy(sorted, b.pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, vj := sorted[i].value, sorted[j].value
		if math.IsNaN(vj) {
			return !math.IsNaN(vi)
		}
		return vi < vj
	})

	out := make([][2]float64, len(sorted))
	for i, p := range sorted {
		out[i] = [2]float64{float64(p.rowID), p.value}
	}
	return out
}

// Write implements Builder.
func (b *NumericBuilder) Write(ctx context.Context, sink Sink, fileID int) (Definition, error) {
	if !b.valid {
		return nil, fmt.Errorf("%w: index for property %q is empty", model.ErrEmptyIndex, b.property)
	}

	sorted := b.Sorted()
	rows := make([][]any, len(sorted))
	for i, p := range sorted {
		rows[i] = []any{int(p[0]), p[1]}
	}
	data, err := table.Encode([]string{"dataRowId", "value"}, rows)
	if err != nil {
		return nil, err
	}

	url, err := sink.Put(ctx, strconv.Itoa(fileID)+".csv", data)
	if err != nil {
		return nil, err
	}
	return &NumericDefinition{Type: TypeNumeric, URL: url, Range: b.rng}, nil
}
