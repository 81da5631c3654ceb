package model

import "errors"

var (
	// ErrMalformedInput is returned when a configuration, tileset or descriptor
	// document misses a required field or carries a field of the wrong shape.
	ErrMalformedInput = errors.New("malformed input")

	// ErrBinaryFormat is returned for bad magic, unsupported versions, unknown
	// component or element types, and offsets that fall outside a buffer.
	ErrBinaryFormat = errors.New("binary format error")

	// ErrMissingData is returned when a tile has no usable BATCH_LENGTH.
	ErrMissingData = errors.New("missing data")

	// ErrEmptyIndex is returned when a numeric index never saw a valid number.
	ErrEmptyIndex = errors.New("empty index")
)
