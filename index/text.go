package index

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/internal/conv"
	"github.com/hupe1980/tilesindex/lexical"
	"github.com/hupe1980/tilesindex/model"
)

// TextBuilder feeds the string form of a property into a lexical index.
// Missing and null values add an empty document so row ids stay aligned.
type TextBuilder struct {
	property string
	codec    codec.Codec
	index    lexical.Index
	err      error
}

// NewTextBuilder creates a text builder for property.
func NewTextBuilder(property string, opts ...Option) *TextBuilder {
	o := applyOptions(opts)
	return &TextBuilder{
		property: property,
		codec:    o.codec,
		index:    o.lexical(property),
	}
}

// Property implements Builder.
func (b *TextBuilder) Property() string { return b.property }

// Type implements Builder.
func (b *TextBuilder) Type() Type { return TypeText }

// Index returns the underlying lexical index.
func (b *TextBuilder) Index() lexical.Index { return b.index }

// Add implements Builder.
func (b *TextBuilder) Add(rowID int, value any) {
	if b.err != nil {
		return
	}
	text := ""
	if value != nil {
		text = model.ToString(value)
	}
	row, err := conv.IntToUint32(rowID)
	if err != nil {
		b.err = fmt.Errorf("text index %q: row %d: %w", b.property, rowID, err)
		return
	}
	if err := b.index.Add(row, text); err != nil {
		b.err = fmt.Errorf("text index %q row %d: %w", b.property, rowID, err)
	}
}

type textArtifact struct {
	Index   lexical.Index `json:"index"`
	Options any           `json:"options"`
}

// Write implements Builder.
func (b *TextBuilder) Write(ctx context.Context, sink Sink, fileID int) (Definition, error) {
	if b.err != nil {
		return nil, b.err
	}

	data, err := b.codec.Marshal(textArtifact{Index: b.index, Options: b.index.Options()})
	if err != nil {
		return nil, fmt.Errorf("text index %q: %w", b.property, err)
	}

	url, err := sink.Put(ctx, strconv.Itoa(fileID)+".json", data)
	if err != nil {
		return nil, err
	}
	return &TextDefinition{Type: TypeText, URL: url}, nil
}
