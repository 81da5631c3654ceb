package model

import "fmt"

// Properties maps a batch-table property name to the value of one feature.
type Properties map[string]any

// Clone returns a shallow copy of the properties.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Position is a geographic position. Latitude and Longitude are in degrees,
// Height uses the units of the source data.
type Position struct {
	Latitude  float64
	Longitude float64
	Height    float64
}

// String returns a string representation of the Position.
func (p Position) String() string {
	return fmt.Sprintf("Pos(%.5f,%.5f,%.3f)", p.Latitude, p.Longitude, p.Height)
}

// Feature is one row of the aggregated feature table.
type Feature struct {
	// ID is the stringified value of the configured id property.
	ID string
	// Position is only meaningful when HasPosition is set.
	Position    Position
	HasPosition bool
	Properties  Properties
}

// TileFeature is a single batch entry read from a tile, before aggregation.
type TileFeature struct {
	// URI of the tile payload the feature was read from.
	URI         string
	BatchID     int
	Position    Position
	HasPosition bool
	Properties  Properties
}
