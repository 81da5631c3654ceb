// Package config parses the index configuration document and loads the
// runtime settings of the indexer.
//
// The index configuration names the feature id property and the indexes to
// build:
//
//	{
//	  "idProperty": "id",
//	  "indexes": {"height": {"type": "numeric"}, "use": {"type": "enum"}},
//	  "extraProperties": ["name"],
//	  "positionProperties": {"latitude": "lat", "longitude": "lon"}
//	}
//
// Runtime settings come from an optional YAML file overridden by
// TILESINDEX_* environment variables.
package config
