package tilesindex

import (
	"github.com/hupe1980/tilesindex/model"
	"github.com/hupe1980/tilesindex/tileset"
)

var (
	// ErrMalformedInput is returned for configuration, tileset and descriptor
	// documents of the wrong shape.
	ErrMalformedInput = model.ErrMalformedInput

	// ErrBinaryFormat is returned for undecodable tile payloads.
	ErrBinaryFormat = model.ErrBinaryFormat

	// ErrMissingData is returned when a tile has no usable BATCH_LENGTH.
	ErrMissingData = model.ErrMissingData

	// ErrEmptyIndex is returned when a numeric index never saw a number.
	ErrEmptyIndex = model.ErrEmptyIndex
)

// TileError attributes a failure to one tile or tileset document.
//
// The underlying error can be accessed via errors.Unwrap.
type TileError = tileset.TileError
