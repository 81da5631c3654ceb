// Package model defines the core types shared by the tilesindex packages.
//
// # Data Types
//
//   - Properties: per-feature attribute values decoded from a batch table
//   - Position: geographic position in degrees plus a height
//   - Feature: one aggregated feature keyed by its id property
//
// # Values
//
// Batch-table values arrive as decoded JSON (float64, string, bool, nil,
// []any, map[string]any) or as numbers read from a binary blob. The helpers in
// value.go stringify and parse them the way a browser-side search viewer does,
// so artifacts line up with what the viewer computes at query time.
package model
