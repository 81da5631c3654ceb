package tilesindex

import (
	"math"

	"github.com/hupe1980/tilesindex/config"
	"github.com/hupe1980/tilesindex/model"
)

// Aggregator deduplicates tile features by the value of the id property.
//
// Rows keep the order in which an id was first seen. A later feature with
// the same id replaces the whole row, so with the walker's phase order the
// most detailed level of detail wins.
//
// A feature whose id property is absent or null is dropped and counted in
// Dropped instead of being filed under the id "undefined" or "null"; those
// would merge every unidentified feature of the tileset into one row.
type Aggregator struct {
	idProperty string
	overrides  *config.PositionProperties

	rows  []model.Feature
	byID  map[string]int
	read  int
	drops int
}

// NewAggregator creates an Aggregator keyed by idProperty. overrides may be
// nil.
func NewAggregator(idProperty string, overrides *config.PositionProperties) *Aggregator {
	return &Aggregator{
		idProperty: idProperty,
		overrides:  overrides,
		byID:       make(map[string]int),
	}
}

// Add records a tile feature. It reports false when the feature carries no
// id value and was dropped.
func (a *Aggregator) Add(tf model.TileFeature) bool {
	a.read++

	raw, ok := tf.Properties[a.idProperty]
	if !ok || raw == nil {
		a.drops++
		return false
	}

	f := model.Feature{
		ID:          model.ToString(raw),
		Position:    tf.Position,
		HasPosition: tf.HasPosition,
		Properties:  tf.Properties,
	}
	a.applyOverrides(&f)

	if i, ok := a.byID[f.ID]; ok {
		a.rows[i] = f
		return true
	}
	a.byID[f.ID] = len(a.rows)
	a.rows = append(a.rows, f)
	return true
}

// applyOverrides replaces position components with feature properties that
// are truthy and numeric.
func (a *Aggregator) applyOverrides(f *model.Feature) {
	if a.overrides == nil {
		return
	}
	override := func(name string, dst *float64) bool {
		if name == "" {
			return false
		}
		v, ok := f.Properties[name]
		if !ok || !model.Truthy(v) {
			return false
		}
		n := model.ParseFloat(v)
		if math.IsNaN(n) {
			return false
		}
		*dst = n
		return true
	}

	lat := override(a.overrides.Latitude, &f.Position.Latitude)
	lon := override(a.overrides.Longitude, &f.Position.Longitude)
	override(a.overrides.Height, &f.Position.Height)
	if lat && lon {
		f.HasPosition = true
	}
}

// Features returns the rows in first-seen order. The slice index is the
// row id used by every index.
func (a *Aggregator) Features() []model.Feature {
	return a.rows
}

// Len returns the number of unique features.
func (a *Aggregator) Len() int { return len(a.rows) }

// Read returns the number of tile features added, including dropped ones.
func (a *Aggregator) Read() int { return a.read }

// Dropped returns the number of tile features without an id value.
func (a *Aggregator) Dropped() int { return a.drops }
