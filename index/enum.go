package index

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/tilesindex/internal/conv"
	"github.com/hupe1980/tilesindex/internal/table"
	"github.com/hupe1980/tilesindex/model"
)

// EnumBuilder groups rows by the string form of a property value.
// Missing and null values are not indexed.
type EnumBuilder struct {
	property string
	keys     []string
	rows     map[string]*roaring.Bitmap
	err      error
}

// NewEnumBuilder creates an enum builder for property.
func NewEnumBuilder(property string) *EnumBuilder {
	return &EnumBuilder{
		property: property,
		rows:     make(map[string]*roaring.Bitmap),
	}
}

// Property implements Builder.
func (b *EnumBuilder) Property() string { return b.property }

// Type implements Builder.
func (b *EnumBuilder) Type() Type { return TypeEnum }

// Add implements Builder. Values are grouped by their string form, so a
// null value forms the group "null". A row id outside the uint32 range fails
// the following Write.
func (b *EnumBuilder) Add(rowID int, value any) {
	if b.err != nil {
		return
	}
	row, err := conv.IntToUint32(rowID)
	if err != nil {
		b.err = fmt.Errorf("enum index %q: row %d: %w", b.property, rowID, err)
		return
	}
	key := model.ToString(value)
	bm, ok := b.rows[key]
	if !ok {
		bm = roaring.New()
		b.rows[key] = bm
		b.keys = append(b.keys, key)
	}
	bm.Add(row)
}

// Values returns the distinct values in first-seen order.
func (b *EnumBuilder) Values() []string {
	return append([]string(nil), b.keys...)
}

// Rows returns the ascending row ids of value.
func (b *EnumBuilder) Rows(value string) []uint32 {
	bm, ok := b.rows[value]
	if !ok {
		return nil
	}
	return bm.ToArray()
}

// Write implements Builder.
func (b *EnumBuilder) Write(ctx context.Context, sink Sink, fileID int) (Definition, error) {
	if b.err != nil {
		return nil, b.err
	}
	def := &EnumDefinition{
		Type:   TypeEnum,
		Keys:   b.Values(),
		Values: make(map[string]EnumValue, len(b.keys)),
	}

	for valueID, key := range b.keys {
		bm := b.rows[key]
		w := make([][]any, 0, bm.GetCardinality())
		it := bm.Iterator()
		for it.HasNext() {
			w = append(w, []any{int(it.Next())})
		}
		data, err := table.Encode([]string{"dataRowId"}, w)
		if err != nil {
			return nil, err
		}

		url, err := sink.Put(ctx, fmt.Sprintf("%d-%d.csv", fileID, valueID), data)
		if err != nil {
			return nil, err
		}
		count, err := conv.Uint64ToInt(bm.GetCardinality())
		if err != nil {
			return nil, err
		}
		def.Values[key] = EnumValue{Count: count, URL: url}
	}
	return def, nil
}
