package b3dm

import (
	"fmt"
	"sort"

	"github.com/hupe1980/tilesindex/model"
)

// Keys of a batch table that carry metadata instead of feature properties.
var reservedKeys = map[string]bool{
	"extensions": true,
	"extras":     true,
}

// BatchTable is the parsed batch table of a payload.
type BatchTable struct {
	JSON   map[string]any
	Binary []byte
}

// Columns holds one value per batch id for every batch-table property.
type Columns map[string][]any

// Columns decodes every property into a column of batchLength values. Inline
// arrays shorter than batchLength are padded with nil. Every other value must
// be a binary descriptor and is decoded from the binary body; anything else
// fails with ErrMalformedInput.
func (bt *BatchTable) Columns(batchLength int) (Columns, error) {
	cols := make(Columns, len(bt.JSON))
	for name, raw := range bt.JSON {
		if reservedKeys[name] {
			continue
		}

		col := make([]any, batchLength)
		switch v := raw.(type) {
		case []any:
			copy(col, v)
		default:
			p, err := ParseBinaryProperty(v)
			if err != nil {
				return nil, fmt.Errorf("batch table property %q: %w", name, err)
			}
			values, err := ReadBinaryProperty(p, bt.Binary, batchLength)
			if err != nil {
				return nil, fmt.Errorf("batch table property %q: %w", name, err)
			}
			col = values
		}
		cols[name] = col
	}
	return cols, nil
}

// Feature returns the properties of one batch id.
func (c Columns) Feature(batchID int) model.Properties {
	props := make(model.Properties, len(c))
	for name, col := range c {
		if batchID < len(col) {
			props[name] = col[batchID]
		} else {
			props[name] = nil
		}
	}
	return props
}

// Names returns the property names in sorted order.
func (c Columns) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
