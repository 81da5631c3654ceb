// Package tileset parses 3D Tiles tileset documents and walks their tile
// hierarchy, decoding every b3dm payload into per-feature records.
package tileset

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/geom"
	"github.com/hupe1980/tilesindex/model"
)

// Tileset is a parsed tileset document.
type Tileset struct {
	Asset Asset `json:"asset"`
	Root  *Tile `json:"root"`
}

// Asset carries tileset-wide metadata.
type Asset struct {
	Version    string  `json:"version"`
	GltfUpAxis *UpAxis `json:"gltfUpAxis,omitempty"`
}

// UpAxis is a model up-axis declared either by name ("X", "Y", "Z") or by
// number (0, 1, 2).
type UpAxis struct {
	geom.Axis
}

// UnmarshalJSON accepts both the string and the numeric forms.
func (u *UpAxis) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	switch strings.ToUpper(strings.Trim(s, `"`)) {
	case "X", "0":
		u.Axis = geom.AxisX
	case "Y", "1":
		u.Axis = geom.AxisY
	case "Z", "2":
		u.Axis = geom.AxisZ
	default:
		return fmt.Errorf("%w: unknown gltfUpAxis %s", model.ErrMalformedInput, s)
	}
	return nil
}

// MarshalJSON writes the string form.
func (u UpAxis) MarshalJSON() ([]byte, error) {
	return []byte(`"` + u.Axis.String() + `"`), nil
}

// UpAxis returns the declared model up-axis, defaulting to Y.
func (ts *Tileset) UpAxis() geom.Axis {
	if ts.Asset.GltfUpAxis == nil {
		return geom.AxisY
	}
	return ts.Asset.GltfUpAxis.Axis
}

// Tile is one node of the tile tree.
type Tile struct {
	BoundingVolume *BoundingVolume `json:"boundingVolume,omitempty"`
	Transform      []float64       `json:"transform,omitempty"`
	Content        *Content        `json:"content,omitempty"`
	Children       []*Tile         `json:"children,omitempty"`
}

// Content references a tile payload or an external tileset.
type Content struct {
	URI string `json:"uri,omitempty"`
	// URL is the pre-1.0 name of URI.
	URL string `json:"url,omitempty"`
}

// Ref returns the content reference, preferring uri over url.
func (c *Content) Ref() string {
	if c == nil {
		return ""
	}
	if c.URI != "" {
		return c.URI
	}
	return c.URL
}

// Parse decodes and validates a tileset document.
func Parse(data []byte, cd codec.Codec) (*Tileset, error) {
	ts := &Tileset{}
	if err := codec.Decode(cd, data, ts); err != nil {
		return nil, fmt.Errorf("%w: tileset: %w", model.ErrMalformedInput, err)
	}
	if ts.Root == nil {
		return nil, fmt.Errorf("%w: tileset has no root tile", model.ErrMalformedInput)
	}
	if err := validate(ts.Root); err != nil {
		return nil, err
	}
	return ts, nil
}

func validate(root *Tile) error {
	stack := []*Tile{root}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t == nil {
			return fmt.Errorf("%w: null tile", model.ErrMalformedInput)
		}
		if t.Transform != nil && len(t.Transform) != 16 {
			return fmt.Errorf("%w: tile transform has %d values, want 16", model.ErrMalformedInput, len(t.Transform))
		}
		if err := t.BoundingVolume.validate(); err != nil {
			return err
		}
		stack = append(stack, t.Children...)
	}
	return nil
}
