package tileset

import "fmt"

// TileError attributes a failure to one tile payload or tileset document.
//
// The original underlying error can be accessed via errors.Unwrap.
type TileError struct {
	URI   string
	cause error
}

// NewTileError wraps err with the URI it happened at.
func NewTileError(uri string, err error) *TileError {
	return &TileError{URI: uri, cause: err}
}

func (e *TileError) Error() string {
	return fmt.Sprintf("tile %s: %v", e.URI, e.cause)
}

func (e *TileError) Unwrap() error { return e.cause }
