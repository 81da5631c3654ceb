package index

import (
	"bytes"
	"encoding/json"
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/tilesindex/model"
)

// Definition is the manifest entry of a built index.
type Definition interface {
	IndexType() Type
}

// Range is the closed interval of valid numeric values.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// NumericDefinition describes a numeric index.
type NumericDefinition struct {
	Type  Type   `json:"type"`
	URL   string `json:"url"`
	Range Range  `json:"range"`
}

// IndexType implements Definition.
func (d *NumericDefinition) IndexType() Type { return TypeNumeric }

// EnumValue locates the row list of one enum value.
type EnumValue struct {
	Count int    `json:"count"`
	URL   string `json:"url"`
}

// EnumDefinition describes an enum index. Values keep first-seen order.
type EnumDefinition struct {
	Type   Type
	Keys   []string
	Values map[string]EnumValue
}

// IndexType implements Definition.
func (d *EnumDefinition) IndexType() Type { return TypeEnum }

// MarshalJSON writes values in Keys order.
func (d *EnumDefinition) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	if err := writeJSON(&buf, d.Type); err != nil {
		return nil, err
	}
	buf.WriteString(`,"values":{`)
	for i, k := range d.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, d.Values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

// UnmarshalJSON reads values preserving document order.
func (d *EnumDefinition) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Type              `json:"type"`
		Values gojson.RawMessage `json:"values"`
	}
	if err := gojson.Unmarshal(data, &raw); err != nil {
		return err
	}
	keys, values, err := decodeOrdered[EnumValue](raw.Values)
	if err != nil {
		return err
	}
	d.Type, d.Keys, d.Values = raw.Type, keys, values
	return nil
}

// TextDefinition describes a text index.
type TextDefinition struct {
	Type Type   `json:"type"`
	URL  string `json:"url"`
}

// IndexType implements Definition.
func (d *TextDefinition) IndexType() Type { return TypeText }

// DecodeDefinition decodes a manifest entry according to its type field.
func DecodeDefinition(data []byte) (Definition, error) {
	var head struct {
		Type Type `json:"type"`
	}
	if err := gojson.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: index definition: %v", model.ErrMalformedInput, err)
	}

	var def Definition
	switch head.Type {
	case TypeNumeric:
		def = &NumericDefinition{}
	case TypeEnum:
		def = &EnumDefinition{}
	case TypeText:
		def = &TextDefinition{}
	default:
		return nil, fmt.Errorf("%w: unknown index type %q", model.ErrMalformedInput, head.Type)
	}
	if err := gojson.Unmarshal(data, def); err != nil {
		return nil, fmt.Errorf("%w: %s index definition: %v", model.ErrMalformedInput, head.Type, err)
	}
	return def, nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	b, err := gojson.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// decodeOrdered decodes a JSON object into its keys in document order and
// a map of values.
func decodeOrdered[T any](data []byte) ([]string, map[string]T, error) {
	values := make(map[string]T)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, values, nil
	}

	// Token streaming keeps the key order a map would lose
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected key, got %v", tok)
		}
		var v T
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = v
	}
	return keys, values, nil
}

// DecodeOrdered is decodeOrdered for raw JSON values, used by the manifest.
func DecodeOrdered(data []byte) ([]string, map[string]json.RawMessage, error) {
	return decodeOrdered[json.RawMessage](data)
}
