package config

import (
	"fmt"
	"slices"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/index"
	"github.com/hupe1980/tilesindex/model"
)

// IndexSpec configures the index of one property.
type IndexSpec struct {
	Property string
	Type     index.Type
}

// PositionProperties names feature properties that override the computed
// position.
type PositionProperties struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Height    string `json:"height,omitempty"`
}

// Indexes is the parsed index configuration document.
type Indexes struct {
	IDProperty string
	// Specs keeps document order; a spec's position is its artifact file id.
	Specs              []IndexSpec
	ExtraProperties    []string
	PositionProperties *PositionProperties
}

type indexesDoc struct {
	IDProperty         *string             `json:"idProperty"`
	Indexes            gojson.RawMessage   `json:"indexes"`
	ExtraProperties    []string            `json:"extraProperties"`
	PositionProperties *PositionProperties `json:"positionProperties"`
}

type indexDoc struct {
	Type *string `json:"type"`
}

// ParseIndexes decodes and validates an index configuration document.
func ParseIndexes(data []byte, c codec.Codec) (*Indexes, error) {
	c = codec.Or(c)

	var doc indexesDoc
	if err := codec.Decode(c, data, &doc); err != nil {
		return nil, fmt.Errorf("%w: index config: %v", model.ErrMalformedInput, err)
	}
	if doc.IDProperty == nil || *doc.IDProperty == "" {
		return nil, fmt.Errorf("%w: index config: idProperty must be a non-empty string", model.ErrMalformedInput)
	}
	if len(doc.Indexes) == 0 || string(doc.Indexes) == "null" {
		return nil, fmt.Errorf("%w: index config: indexes must be an object", model.ErrMalformedInput)
	}

	keys, raw, err := index.DecodeOrdered(doc.Indexes)
	if err != nil {
		return nil, fmt.Errorf("%w: index config: indexes must be an object: %v", model.ErrMalformedInput, err)
	}

	known := index.Types()
	cfg := &Indexes{
		IDProperty:         *doc.IDProperty,
		Specs:              make([]IndexSpec, 0, len(keys)),
		ExtraProperties:    doc.ExtraProperties,
		PositionProperties: doc.PositionProperties,
	}
	for _, property := range keys {
		var spec indexDoc
		if err := c.Unmarshal(raw[property], &spec); err != nil {
			return nil, fmt.Errorf("%w: index config %q: %v", model.ErrMalformedInput, property, err)
		}
		if spec.Type == nil {
			return nil, fmt.Errorf("%w: index config %q: missing type", model.ErrMalformedInput, property)
		}
		t := index.Type(*spec.Type)
		if !slices.Contains(known, t) {
			return nil, fmt.Errorf("%w: index config %q: expected index type to be one of %v, got %q",
				model.ErrMalformedInput, property, known, *spec.Type)
		}
		cfg.Specs = append(cfg.Specs, IndexSpec{Property: property, Type: t})
	}

	if p := cfg.PositionProperties; p != nil && (p.Latitude == "" || p.Longitude == "") {
		return nil, fmt.Errorf("%w: index config: positionProperties needs latitude and longitude", model.ErrMalformedInput)
	}
	return cfg, nil
}
