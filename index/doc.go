// Package index builds the search artifacts for one feature property.
//
// Three index types are supported:
//
//   - Numeric: (rowId, value) pairs sorted by value, plus the value range
//   - Enum: one rowId list per distinct value
//   - Text: the serialized state of a lexical index
//
// Builders consume a property's values in feature row order and write their
// artifacts through a Sink when the walk is complete. The returned
// Definition is what the manifest records for the property.
//
// # Builder Interface
//
//	type Builder interface {
//	    Property() string
//	    Type() Type
//	    Add(rowID int, value any)
//	    Write(ctx, sink, fileID) (Definition, error)
//	}
//
// Artifacts are named after the builder's position in the configuration:
// "<fileId>.csv" for numeric, "<fileId>-<valueId>.csv" for enum values and
// "<fileId>.json" for text.
package index
