package b3dm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/tilesindex/model"
)

// FeatureTable is the parsed feature table of a payload.
type FeatureTable struct {
	JSON   map[string]any
	Binary []byte
}

// BatchLength returns BATCH_LENGTH. A missing, non-numeric or negative value
// yields ErrMissingData.
func (ft *FeatureTable) BatchLength() (int, error) {
	raw, ok := ft.JSON["BATCH_LENGTH"]
	if !ok {
		return 0, fmt.Errorf("%w: BATCH_LENGTH not set", model.ErrMissingData)
	}
	f, ok := raw.(float64)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: invalid BATCH_LENGTH %v", model.ErrMissingData, raw)
	}
	return int(f), nil
}

// RTCCenter returns RTC_CENTER, which is either an inline [x, y, z] array or
// a {byteOffset} reference to three float32s in the binary body.
func (ft *FeatureTable) RTCCenter() ([3]float64, bool, error) {
	var center [3]float64

	raw, ok := ft.JSON["RTC_CENTER"]
	if !ok || raw == nil {
		return center, false, nil
	}

	switch v := raw.(type) {
	case []any:
		if len(v) < 3 {
			return center, false, fmt.Errorf("%w: RTC_CENTER needs 3 components, got %d", model.ErrMalformedInput, len(v))
		}
		for i := range center {
			f, ok := v[i].(float64)
			if !ok {
				return center, false, fmt.Errorf("%w: RTC_CENTER component %d is not a number", model.ErrMalformedInput, i)
			}
			center[i] = f
		}
		return center, true, nil
	case map[string]any:
		off, ok := v["byteOffset"].(float64)
		if !ok || off < 0 {
			return center, false, fmt.Errorf("%w: RTC_CENTER byteOffset missing", model.ErrMalformedInput)
		}
		start := int(off)
		if start+12 > len(ft.Binary) {
			return center, false, fmt.Errorf("%w: RTC_CENTER at %d exceeds feature table body of %d bytes", model.ErrBinaryFormat, start, len(ft.Binary))
		}
		for i := range center {
			bits := binary.LittleEndian.Uint32(ft.Binary[start+4*i:])
			center[i] = float64(math.Float32frombits(bits))
		}
		return center, true, nil
	default:
		return center, false, fmt.Errorf("%w: RTC_CENTER has type %T", model.ErrMalformedInput, raw)
	}
}
